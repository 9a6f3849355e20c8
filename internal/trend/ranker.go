package trend

import (
	"sort"

	"github.com/ramonehamilton/ptcg-meta/internal/report"
)

// Movement is one card's playrate delta between the two most recent
// timeline periods.
type Movement struct {
	Name     string  `json:"name"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Delta    float64 `json:"delta"`
}

// Ranking is the rising/falling output of the card trend ranker.
type Ranking struct {
	Rising        []Movement `json:"rising"`
	Falling       []Movement `json:"falling"`
	CardsAnalyzed int        `json:"cardsAnalyzed"`
}

// RankRisingFalling derives rising and falling card lists from playrate
// deltas. The baseline is fixed: delta compares the latest timeline
// period against the immediately-previous one; a card whose series has a
// single period is measured against a zero baseline. A card with zero
// current-period playrate never ranks as rising, whatever its delta.
// Rising sorts by delta descending and falling ascending, ties broken by
// card name, each truncated to topCount.
func RankRisingFalling(cardSeries []Series, topCount int) *Ranking {
	ranking := &Ranking{CardsAnalyzed: len(cardSeries)}
	if topCount < 1 {
		topCount = 10
	}

	movements := make([]Movement, 0, len(cardSeries))
	for _, s := range cardSeries {
		if len(s.Timeline) == 0 {
			continue
		}
		current := s.Timeline[len(s.Timeline)-1].Share
		previous := 0.0
		if len(s.Timeline) > 1 {
			previous = s.Timeline[len(s.Timeline)-2].Share
		}
		movements = append(movements, Movement{
			Name:     s.DisplayName,
			Current:  current,
			Previous: previous,
			Delta:    report.Round2(current - previous),
		})
	}

	rising := make([]Movement, 0, len(movements))
	falling := make([]Movement, 0, len(movements))
	for _, m := range movements {
		// A card that vanished cannot be rising, even when baseline
		// noise makes its delta positive.
		if m.Delta > 0 && m.Current > 0 {
			rising = append(rising, m)
		}
		if m.Delta < 0 {
			falling = append(falling, m)
		}
	}

	sort.Slice(rising, func(i, j int) bool {
		if rising[i].Delta != rising[j].Delta {
			return rising[i].Delta > rising[j].Delta
		}
		return rising[i].Name < rising[j].Name
	})
	sort.Slice(falling, func(i, j int) bool {
		if falling[i].Delta != falling[j].Delta {
			return falling[i].Delta < falling[j].Delta
		}
		return falling[i].Name < falling[j].Name
	})

	if len(rising) > topCount {
		rising = rising[:topCount]
	}
	if len(falling) > topCount {
		falling = falling[:topCount]
	}
	ranking.Rising = rising
	ranking.Falling = falling
	return ranking
}
