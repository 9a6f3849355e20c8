package model

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"bare iso date", "2025-06-01", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2025-06-01T15:04:05Z", time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)},
		{"comma-suffixed label", "2025-06-01, Regional Lille", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "soon", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDeckValid(t *testing.T) {
	var nilDeck *Deck
	if nilDeck.Valid() {
		t.Error("nil deck reported valid")
	}
	empty := &Deck{ID: "d1"}
	if empty.Valid() {
		t.Error("cardless deck reported valid")
	}
	ok := &Deck{Cards: []CardEntry{{Name: "Zubat", Count: 1}}}
	if !ok.Valid() {
		t.Error("deck with cards reported invalid")
	}
}

func TestDeckHasSuccessTag(t *testing.T) {
	d := &Deck{SuccessTags: []string{"Top8", "winner"}}
	if !d.HasSuccessTag("top8") {
		t.Error("case-insensitive tag lookup failed")
	}
	if d.HasSuccessTag("top4") {
		t.Error("absent tag reported present")
	}
}

func TestDeckHashStable(t *testing.T) {
	a := &Deck{Cards: []CardEntry{
		{Name: "Zubat", Set: "S1", Number: "9", Count: 4},
		{Name: "Rare Candy", Count: 2},
	}}
	// Same cards, different line order.
	b := &Deck{Cards: []CardEntry{
		{Name: "Rare Candy", Count: 2},
		{Name: "Zubat", Set: "S1", Number: "9", Count: 4},
	}}
	if a.Hash() != b.Hash() {
		t.Error("hash depends on card line order")
	}
	if len(a.ShortHash()) != 10 {
		t.Errorf("ShortHash length = %d, want 10", len(a.ShortHash()))
	}

	c := &Deck{Cards: []CardEntry{
		{Name: "Zubat", Set: "S1", Number: "9", Count: 3},
		{Name: "Rare Candy", Count: 2},
	}}
	if a.Hash() == c.Hash() {
		t.Error("different copy counts produced identical hashes")
	}
}

func TestAnonymizePlayer(t *testing.T) {
	p1 := AnonymizePlayer("Alice Example")
	p2 := AnonymizePlayer("Alice Example")
	if p1 != p2 {
		t.Error("anonymization not stable")
	}
	if len(p1) != 10 {
		t.Errorf("pseudonym length = %d, want 10", len(p1))
	}
	if p1 == "Alice Example" {
		t.Error("name passed through unhashed")
	}
}

func TestPairingIsBye(t *testing.T) {
	bye := &Pairing{Player1: "alice", Winner: "alice"}
	if !bye.IsBye() {
		t.Error("missing opponent not detected as bye")
	}
	real := &Pairing{Player1: "alice", Player2: "bob", Winner: "bob"}
	if real.IsBye() {
		t.Error("real pairing reported as bye")
	}
}

func TestSortTournamentsByDate(t *testing.T) {
	list := []Tournament{
		{ID: "c", Date: "2025-06-15"},
		{ID: "b", Date: "2025-06-01"},
		{ID: "a", Date: "2025-06-15"},
	}
	SortTournamentsByDate(list)

	want := []string{"b", "a", "c"}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("order = %v, want %v (date asc, ID tiebreak)", ids(list), want)
		}
	}
}

func ids(list []Tournament) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}
