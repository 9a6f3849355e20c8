// Package report builds aggregated per-card play-rate reports from deck
// lists. The builder is a pure function over its inputs plus the card
// identity normalizer; it holds no state and mutates nothing it is given.
package report

import (
	"math"
	"sort"

	"github.com/ramonehamilton/ptcg-meta/internal/card"
	"github.com/ramonehamilton/ptcg-meta/internal/model"
)

// Dist is one bucket of a card's copy-count histogram: how many decks
// played exactly Copies copies. Percent is relative to the card's found
// count, so the players across a card's buckets sum to found.
type Dist struct {
	Copies  int     `json:"copies"`
	Players int     `json:"players"`
	Percent float64 `json:"percent"`
}

// CardItem is one aggregated card in a report.
type CardItem struct {
	Rank     int     `json:"rank"`
	Name     string  `json:"name"`
	Found    int     `json:"found"`
	Total    int     `json:"total"`
	Pct      float64 `json:"pct"`
	Dist     []Dist  `json:"dist,omitempty"`
	Set      string  `json:"set,omitempty"`
	Number   string  `json:"number,omitempty"`
	UID      string  `json:"uid,omitempty"`
	Category string  `json:"category,omitempty"`
}

// ParsedReport is the aggregated output for one scope (a tournament or
// an archetype's decks).
type ParsedReport struct {
	DeckTotal int        `json:"deckTotal"`
	Items     []CardItem `json:"items"`

	// Corrections lists out-of-contract scalars that were coerced to
	// safe defaults while parsing. Not serialized.
	Corrections []*ValidationError `json:"-"`
}

// Round2 rounds to two decimal places, the precision used for every
// report percentage.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Generate builds a report from a flat list of decks sharing a scope.
// deckCountHint is advisory: when it is less than 1 the deck total falls
// back to the number of structurally valid decks. Nil or empty input
// produces an empty report, never an error.
func Generate(decks []model.Deck, deckCountHint int, n *card.Normalizer) *ParsedReport {
	if n == nil {
		n = card.NewNormalizer(nil)
	}

	validDecks := 0
	type cardAgg struct {
		name     string
		set      string
		number   string
		category card.Category
		copies   []int // one per-deck total copies entry
	}
	aggs := make(map[string]*cardAgg)

	for i := range decks {
		deck := &decks[i]
		if !deck.Valid() {
			continue
		}
		validDecks++

		// Total copies per resolved UID within this deck; duplicate
		// lines for the same printing sum together.
		perDeck := make(map[string]int)
		for _, entry := range deck.Cards {
			if entry.Name == "" {
				continue
			}
			count := entry.Count
			if count < 0 {
				count = 0
			}
			uid := n.Resolve(entry.Name, entry.Set, entry.Number)
			perDeck[uid] += count
			if _, ok := aggs[uid]; !ok {
				name, set, number := card.ParseUID(uid)
				aggs[uid] = &cardAgg{
					name:   name,
					set:    set,
					number: number,
					category: card.Classify(card.CardInput{
						Name:        entry.Name,
						Category:    entry.Category,
						TrainerType: entry.TrainerType,
						EnergyType:  entry.EnergyType,
					}),
				}
			}
		}
		for uid, total := range perDeck {
			if total < 1 {
				continue
			}
			aggs[uid].copies = append(aggs[uid].copies, total)
		}
	}

	deckTotal := deckCountHint
	if deckTotal < 1 {
		deckTotal = validDecks
	}

	uids := make([]string, 0, len(aggs))
	for uid, agg := range aggs {
		if len(agg.copies) == 0 {
			continue
		}
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool {
		fi, fj := len(aggs[uids[i]].copies), len(aggs[uids[j]].copies)
		if fi != fj {
			return fi > fj
		}
		return uids[i] < uids[j]
	})

	items := make([]CardItem, 0, len(uids))
	for rank, uid := range uids {
		agg := aggs[uid]
		found := len(agg.copies)

		hist := make(map[int]int)
		for _, c := range agg.copies {
			hist[c]++
		}
		copiesKeys := make([]int, 0, len(hist))
		for c := range hist {
			copiesKeys = append(copiesKeys, c)
		}
		sort.Ints(copiesKeys)
		dist := make([]Dist, 0, len(copiesKeys))
		for _, c := range copiesKeys {
			dist = append(dist, Dist{
				Copies:  c,
				Players: hist[c],
				Percent: Round2(float64(hist[c]) / float64(found) * 100),
			})
		}

		pct := 0.0
		if deckTotal > 0 {
			pct = Round2(float64(found) / float64(deckTotal) * 100)
		}

		item := CardItem{
			Rank:     rank + 1,
			Name:     agg.name,
			Found:    found,
			Total:    deckTotal,
			Pct:      pct,
			Dist:     dist,
			Category: agg.category.Kind.String(),
		}
		if agg.set != "" && agg.number != "" {
			item.Set = agg.set
			item.Number = agg.number
			item.UID = uid
		}
		items = append(items, item)
	}

	return &ParsedReport{DeckTotal: deckTotal, Items: items}
}
