package report

import (
	"sort"
	"strings"

	"github.com/ramonehamilton/ptcg-meta/internal/model"
)

// IndexEntry aggregates a card across all of its printings, keyed by
// base name. Sets lists the set codes observed for the card.
type IndexEntry struct {
	Found int      `json:"found"`
	Total int      `json:"total"`
	Pct   float64  `json:"pct"`
	Dist  []Dist   `json:"dist,omitempty"`
	Sets  []string `json:"sets"`
}

// Index is a per-card lookup across a deck pool, keyed by display name.
type Index struct {
	DeckTotal int                   `json:"deckTotal"`
	Cards     map[string]IndexEntry `json:"cards"`
}

// CardIndex builds the per-card index for a deck pool. Unlike Generate
// it merges every printing of a card under its base name, so a deck
// running two printings of one Pokémon counts once with its copies
// summed.
func CardIndex(decks []model.Deck) *Index {
	type agg struct {
		display string
		copies  []int
		sets    map[string]struct{}
	}
	aggs := make(map[string]*agg)
	deckTotal := 0

	for i := range decks {
		deck := &decks[i]
		if !deck.Valid() {
			continue
		}
		deckTotal++

		perDeck := make(map[string]int)
		for _, entry := range deck.Cards {
			if entry.Name == "" {
				continue
			}
			count := entry.Count
			if count < 0 {
				count = 0
			}
			key := strings.ToLower(entry.Name)
			perDeck[key] += count
			a, ok := aggs[key]
			if !ok {
				a = &agg{display: entry.Name, sets: make(map[string]struct{})}
				aggs[key] = a
			}
			if entry.Set != "" {
				a.sets[strings.ToUpper(entry.Set)] = struct{}{}
			}
		}
		for key, total := range perDeck {
			if total < 1 {
				continue
			}
			aggs[key].copies = append(aggs[key].copies, total)
		}
	}

	index := &Index{DeckTotal: deckTotal, Cards: make(map[string]IndexEntry, len(aggs))}
	for _, a := range aggs {
		found := len(a.copies)
		if found == 0 {
			continue
		}

		hist := make(map[int]int)
		for _, c := range a.copies {
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

		sets := make([]string, 0, len(a.sets))
		for s := range a.sets {
			sets = append(sets, s)
		}
		sort.Strings(sets)

		pct := 0.0
		if deckTotal > 0 {
			pct = Round2(float64(found) / float64(deckTotal) * 100)
		}
		index.Cards[a.display] = IndexEntry{
			Found: found,
			Total: deckTotal,
			Pct:   pct,
			Dist:  dist,
			Sets:  sets,
		}
	}

	return index
}
