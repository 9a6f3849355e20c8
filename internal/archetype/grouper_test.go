package archetype

import (
	"testing"

	"github.com/ramonehamilton/ptcg-meta/internal/model"
)

func deck(archetype string, cards ...model.CardEntry) model.Deck {
	if len(cards) == 0 {
		cards = []model.CardEntry{{Name: "Filler", Count: 1}}
	}
	return model.Deck{Archetype: archetype, Cards: cards}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"fast_fire", "fast fire"},
		{"Fast Fire", "fast fire"},
		{"  Fast   Fire  ", "fast fire"},
		{"FAST_FIRE", "fast fire"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.input); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Fast Fire", "Fast_Fire"},
		{"Lost Box / Kyogre", "Lost_Box__Kyogre"},
		{`Weird<>:"Name`, "WeirdName"},
	}
	for _, tt := range tests {
		if got := Slug(tt.input); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildReportsMergesSpellingVariants(t *testing.T) {
	decks := []model.Deck{
		deck("fast_fire"),
		deck("Fast Fire"),
		deck("FAST  FIRE"),
	}

	result := BuildReports(decks, 1, nil)
	if len(result.Index) != 1 {
		t.Fatalf("got %d index entries, want variants merged into 1", len(result.Index))
	}
	entry := result.Index[0]
	if entry.DeckCount != 3 {
		t.Errorf("DeckCount = %d, want 3", entry.DeckCount)
	}
	// Display label keeps the first-seen original spelling.
	if entry.DisplayName != "fast_fire" {
		t.Errorf("DisplayName = %q, want first-seen fast_fire", entry.DisplayName)
	}
}

func TestBuildReportsMinDeckCount(t *testing.T) {
	decks := []model.Deck{
		deck("Big Deck"), deck("Big Deck"), deck("Big Deck"),
		deck("Fringe"),
	}

	result := BuildReports(decks, 2, nil)
	if len(result.Index) != 1 || result.Index[0].DisplayName != "Big Deck" {
		t.Errorf("index = %+v, want only Big Deck past the threshold", result.Index)
	}
	// Below-threshold decks are still retained for downstream exports.
	if got := len(result.DecksByArchetype["fringe"]); got != 1 {
		t.Errorf("retained fringe decks = %d, want 1", got)
	}
}

func TestBuildReportsIndexOrdering(t *testing.T) {
	decks := []model.Deck{
		deck("Beta"), deck("Beta"),
		deck("Alpha"), deck("Alpha"),
		deck("Gamma"), deck("Gamma"), deck("Gamma"),
	}

	result := BuildReports(decks, 1, nil)
	got := make([]string, len(result.Index))
	for i, e := range result.Index {
		got[i] = e.DisplayName
	}
	want := []string{"Gamma", "Alpha", "Beta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index order = %v, want %v (count desc, name asc)", got, want)
		}
	}
}

func TestBuildReportsSkipsBlankArchetype(t *testing.T) {
	decks := []model.Deck{
		deck("Real Deck"),
		deck(""),
		deck("   "),
	}

	result := BuildReports(decks, 1, nil)
	if len(result.Index) != 1 {
		t.Errorf("got %d groups, want blank archetypes skipped", len(result.Index))
	}
}

func TestBuildReportsThumbnail(t *testing.T) {
	decks := []model.Deck{
		deck("Charizard",
			model.CardEntry{Name: "Rare Candy", Count: 4, Category: "trainer"},
			model.CardEntry{Name: "Charizard ex", Set: "OBF", Number: "125", Count: 3, Category: "pokemon"},
			model.CardEntry{Name: "Pidgey", Set: "OBF", Number: "162", Count: 2, Category: "pokemon"},
		),
		deck("Charizard",
			model.CardEntry{Name: "Charizard ex", Set: "OBF", Number: "125", Count: 3, Category: "pokemon"},
		),
	}

	result := BuildReports(decks, 1, nil)
	file := result.Files["Charizard"]
	if file == nil {
		t.Fatalf("missing Charizard report; files: %v", result.Files)
	}
	thumb := file.Thumbnail
	if thumb == nil {
		t.Fatal("no thumbnail selected")
	}
	// Most-played Pokémon printing wins, not the trainer ranked above it.
	if thumb.Name != "Charizard ex" || thumb.Set != "OBF" || thumb.Number != "125" {
		t.Errorf("thumbnail = %+v, want Charizard ex OBF/125", thumb)
	}
}

func TestBuildReportsReportData(t *testing.T) {
	decks := []model.Deck{
		deck("Mono", model.CardEntry{Name: "Zubat", Count: 4}),
		deck("Mono", model.CardEntry{Name: "Zubat", Count: 4}),
	}

	result := BuildReports(decks, 1, nil)
	file := result.Files["Mono"]
	if file == nil || file.Data == nil {
		t.Fatal("missing report data for Mono")
	}
	if file.Data.DeckTotal != 2 {
		t.Errorf("DeckTotal = %d, want group size 2", file.Data.DeckTotal)
	}
	if len(file.Data.Items) != 1 || file.Data.Items[0].Found != 2 {
		t.Errorf("items = %+v, want Zubat found in both decks", file.Data.Items)
	}
}
