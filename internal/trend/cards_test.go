package trend

import (
	"testing"

	"github.com/ramonehamilton/ptcg-meta/internal/card"
	"github.com/ramonehamilton/ptcg-meta/internal/model"
)

func cardDeck(tournamentID string, cards ...model.CardEntry) model.Deck {
	return model.Deck{TournamentID: tournamentID, Archetype: "Any", Cards: cards}
}

func TestBuildCardTrendReportPlayrate(t *testing.T) {
	tournaments := []model.Tournament{tournament("t1", "2025-06-01", 32)}
	decks := []model.Deck{
		cardDeck("t1", model.CardEntry{Name: "Rare Candy", Count: 4}),
		cardDeck("t1", model.CardEntry{Name: "Rare Candy", Count: 2}),
		cardDeck("t1", model.CardEntry{Name: "Nest Ball", Count: 4}),
		cardDeck("t1", model.CardEntry{Name: "Nest Ball", Count: 4}),
	}

	r := BuildCardTrendReport(decks, tournaments, Options{Now: testNow}, nil)
	candy := seriesByName(t, r, "Rare Candy")
	// Playrate counts decks containing the card, not copies.
	if candy.Timeline[0].Decks != 2 {
		t.Errorf("Decks = %d, want 2", candy.Timeline[0].Decks)
	}
	if candy.Timeline[0].Share != 50.0 {
		t.Errorf("Share = %v, want 50 (2 of 4 decks)", candy.Timeline[0].Share)
	}
}

func TestBuildCardTrendReportMergesPrintings(t *testing.T) {
	tournaments := []model.Tournament{tournament("t1", "2025-06-01", 32)}
	decks := []model.Deck{
		cardDeck("t1",
			model.CardEntry{Name: "Pikachu", Set: "S1", Number: "1", Count: 2},
			model.CardEntry{Name: "Pikachu", Set: "S2", Number: "5", Count: 2},
		),
	}

	r := BuildCardTrendReport(decks, tournaments, Options{Now: testNow}, nil)
	pika := seriesByName(t, r, "Pikachu")
	// Two printings in one deck still count that deck once.
	if pika.Timeline[0].Decks != 1 {
		t.Errorf("Decks = %d, want 1", pika.Timeline[0].Decks)
	}
	if pika.Timeline[0].Share != 100.0 {
		t.Errorf("Share = %v, want 100", pika.Timeline[0].Share)
	}
}

func TestBuildCardTrendReportAppliesSynonyms(t *testing.T) {
	n := card.NewNormalizer(&card.SynonymTable{
		Synonyms: map[string]string{
			"Pikachu::PR::012": "Pikachu::S1::001",
		},
	})
	tournaments := []model.Tournament{tournament("t1", "2025-06-01", 32)}
	decks := []model.Deck{
		cardDeck("t1", model.CardEntry{Name: "Pikachu", Set: "PR", Number: "12", Count: 1}),
		cardDeck("t1", model.CardEntry{Name: "Pikachu", Set: "S1", Number: "1", Count: 1}),
	}

	r := BuildCardTrendReport(decks, tournaments, Options{Now: testNow}, n)
	if len(r.Series) != 1 {
		t.Fatalf("got %d series, want promo merged into 1", len(r.Series))
	}
	if r.Series[0].Timeline[0].Decks != 2 {
		t.Errorf("Decks = %d, want 2", r.Series[0].Timeline[0].Decks)
	}
}

func TestBuildCardTrendReportIgnoresZeroCopies(t *testing.T) {
	tournaments := []model.Tournament{tournament("t1", "2025-06-01", 32)}
	decks := []model.Deck{
		cardDeck("t1",
			model.CardEntry{Name: "Ghost", Count: 0},
			model.CardEntry{Name: "Real", Count: 1},
		),
	}

	r := BuildCardTrendReport(decks, tournaments, Options{Now: testNow}, nil)
	for _, s := range r.Series {
		if s.DisplayName == "Ghost" {
			t.Errorf("zero-copy card produced a series: %+v", s)
		}
	}
}
