// Package archetype partitions decks by normalized archetype name and
// produces one aggregated report per group, along with the index used to
// list archetypes and the retained per-archetype deck lists.
package archetype

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ramonehamilton/ptcg-meta/internal/card"
	"github.com/ramonehamilton/ptcg-meta/internal/model"
	"github.com/ramonehamilton/ptcg-meta/internal/report"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	forbiddenPattern  = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// NormalizeName canonicalizes an archetype name for grouping: lowercase,
// underscores become spaces, whitespace collapsed and trimmed. "fast_fire"
// and "Fast Fire" normalize to the same key.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "_", " "))
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(name, " "))
}

// Slug derives a filename-safe base from a display name: spaces become
// underscores and path-hostile characters are stripped.
func Slug(displayName string) string {
	s := strings.ReplaceAll(displayName, " ", "_")
	return forbiddenPattern.ReplaceAllString(s, "")
}

// Thumbnail identifies the card used as an archetype's thumbnail image:
// the group's most-played Pokémon printing.
type Thumbnail struct {
	Name   string `json:"name"`
	Set    string `json:"set"`
	Number string `json:"number"`
}

// Report is one archetype's aggregated output.
type Report struct {
	Base        string               `json:"base"`
	DisplayName string               `json:"displayName"`
	DeckCount   int                  `json:"deckCount"`
	Data        *report.ParsedReport `json:"data"`
	Thumbnail   *Thumbnail           `json:"thumbnail,omitempty"`
}

// IndexEntry is one row of the archetype index.
type IndexEntry struct {
	Base        string     `json:"base"`
	DisplayName string     `json:"displayName"`
	DeckCount   int        `json:"deckCount"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
}

// Result bundles the grouper's outputs: per-archetype report files, the
// sorted index, and the filtered deck list per archetype (needed by
// downstream per-archetype deck exports).
type Result struct {
	Files            map[string]*Report      `json:"files"`
	Index            []IndexEntry            `json:"index"`
	DecksByArchetype map[string][]model.Deck `json:"-"`
}

// BuildReports groups decks by normalized archetype name and builds a
// report for every group with at least minDeckCount decks. The display
// label of a group is the first-seen original spelling. The index is
// sorted by deck count descending, display name ascending on ties.
func BuildReports(decks []model.Deck, minDeckCount int, n *card.Normalizer) *Result {
	if minDeckCount < 1 {
		minDeckCount = 1
	}

	groups := make(map[string][]model.Deck)
	display := make(map[string]string)
	var order []string

	for i := range decks {
		deck := &decks[i]
		if !deck.Valid() {
			continue
		}
		key := NormalizeName(deck.Archetype)
		if key == "" {
			continue
		}
		if _, seen := display[key]; !seen {
			display[key] = strings.TrimSpace(deck.Archetype)
			order = append(order, key)
		}
		groups[key] = append(groups[key], *deck)
	}

	result := &Result{
		Files:            make(map[string]*Report),
		DecksByArchetype: make(map[string][]model.Deck),
	}

	for _, key := range order {
		groupDecks := groups[key]
		result.DecksByArchetype[key] = groupDecks
		if len(groupDecks) < minDeckCount {
			continue
		}

		data := report.Generate(groupDecks, len(groupDecks), n)
		entry := &Report{
			Base:        Slug(display[key]),
			DisplayName: display[key],
			DeckCount:   len(groupDecks),
			Data:        data,
			Thumbnail:   thumbnailFor(data),
		}
		result.Files[entry.Base] = entry
		result.Index = append(result.Index, IndexEntry{
			Base:        entry.Base,
			DisplayName: entry.DisplayName,
			DeckCount:   entry.DeckCount,
			Thumbnail:   entry.Thumbnail,
		})
	}

	sort.Slice(result.Index, func(i, j int) bool {
		if result.Index[i].DeckCount != result.Index[j].DeckCount {
			return result.Index[i].DeckCount > result.Index[j].DeckCount
		}
		return result.Index[i].DisplayName < result.Index[j].DisplayName
	})

	return result
}

// thumbnailFor picks the most-played Pokémon printing from a report.
// Items are already ranked by found descending, so the first Pokémon
// with printing metadata wins.
func thumbnailFor(data *report.ParsedReport) *Thumbnail {
	for _, item := range data.Items {
		if item.Category != card.KindPokemon.String() {
			continue
		}
		if item.Set == "" || item.Number == "" {
			continue
		}
		return &Thumbnail{Name: item.Name, Set: item.Set, Number: item.Number}
	}
	return nil
}
