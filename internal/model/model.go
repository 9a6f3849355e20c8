// Package model defines the domain types shared by the aggregation engine:
// decks, tournaments, standings and pairings as supplied by upstream
// collaborators. All values are treated as immutable once handed to the
// engine.
package model

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// CardEntry is a single line of a decklist. Set and Number optionally
// identify a specific printing; when absent the card is tracked by name
// only (generic trainers and energy).
type CardEntry struct {
	Name        string `json:"name"`
	Set         string `json:"set,omitempty"`
	Number      string `json:"number,omitempty"`
	Count       int    `json:"count"`
	Category    string `json:"category,omitempty"`
	TrainerType string `json:"trainerType,omitempty"`
	EnergyType  string `json:"energyType,omitempty"`
	AceSpec     bool   `json:"aceSpec,omitempty"`
}

// Deck is one player's tournament entry.
type Deck struct {
	ID             string      `json:"id"`
	Player         string      `json:"player,omitempty"`
	Placing        int         `json:"placing,omitempty"`
	TournamentID   string      `json:"tournamentId,omitempty"`
	TournamentDate string      `json:"tournamentDate,omitempty"`
	TournamentName string      `json:"tournamentName,omitempty"`
	Archetype      string      `json:"archetype"`
	SuccessTags    []string    `json:"successTags,omitempty"`
	Cards          []CardEntry `json:"cards"`
}

// Valid reports whether the deck is structurally usable for aggregation:
// it must carry at least one card entry.
func (d *Deck) Valid() bool {
	return d != nil && len(d.Cards) > 0
}

// HasSuccessTag reports whether the deck carries the given success tag
// (for example "top8" or "winner").
func (d *Deck) HasSuccessTag(tag string) bool {
	for _, t := range d.SuccessTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Hash returns a stable identity for the decklist: the SHA-1 of the
// canonically sorted card lines, matching the upstream report format.
// The first ten hex characters serve as a deck ID.
func (d *Deck) Hash() string {
	lines := make([]string, 0, len(d.Cards))
	for _, c := range d.Cards {
		lines = append(lines, fmt.Sprintf("%dx%s%s%s", c.Count, c.Name, c.Set, c.Number))
	}
	sort.Strings(lines)
	payload, _ := json.Marshal(lines)
	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the ten-character deck ID derived from Hash.
func (d *Deck) ShortHash() string {
	return d.Hash()[:10]
}

// AnonymizePlayer returns a stable pseudonym for a player name, the
// ten-character SHA-1 prefix used by the upstream exporter.
func AnonymizePlayer(name string) string {
	sum := sha1.Sum([]byte(name))
	return hex.EncodeToString(sum[:])[:10]
}

// Tournament describes one event. DeckTotal may be absent or invalid in
// upstream data; consumers fall back to the count of valid decks.
type Tournament struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Players   int    `json:"players"`
	DeckTotal int    `json:"deckTotal,omitempty"`
}

// ParseDate parses the tournament date, accepting full RFC 3339
// timestamps and bare ISO dates. The zero time is returned for
// unparseable input.
func (t *Tournament) ParseDate() time.Time {
	return ParseDate(t.Date)
}

// ParseDate parses an ISO-8601 date string ("2006-01-02" or RFC 3339).
// Returns the zero time when the value cannot be parsed.
func ParseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts.UTC()
	}
	// Tolerate a "YYYY-MM-DD, Event Name" folder-style prefix.
	if idx := strings.IndexByte(value, ','); idx > 0 {
		return ParseDate(value[:idx])
	}
	return time.Time{}
}

// Pairing is one reported match between two players. Winner is the
// winning player's ID, "0" for a tie, or "-1" for a double loss. An
// absent Player2 marks a bye.
type Pairing struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2,omitempty"`
	Winner  string `json:"winner"`
}

// IsBye reports whether the pairing had no opponent.
func (p *Pairing) IsBye() bool {
	return strings.TrimSpace(p.Player2) == ""
}

// PairingsData holds one tournament's standings (player → archetype) and
// its pairing records.
type PairingsData struct {
	TournamentID string            `json:"tournamentId"`
	Standings    map[string]string `json:"standings"`
	Pairings     []Pairing         `json:"pairings"`
}

// SortTournamentsByDate orders tournaments chronologically ascending,
// breaking date ties by ID so the order is deterministic.
func SortTournamentsByDate(tournaments []Tournament) {
	sort.SliceStable(tournaments, func(i, j int) bool {
		di, dj := tournaments[i].ParseDate(), tournaments[j].ParseDate()
		if di.Equal(dj) {
			return tournaments[i].ID < tournaments[j].ID
		}
		return di.Before(dj)
	})
}
