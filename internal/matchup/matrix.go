// Package matchup aggregates win/loss/tie outcomes between a target
// archetype and every opponent archetype from tournament pairing
// records.
package matchup

import (
	"math"
	"strings"

	"github.com/ramonehamilton/ptcg-meta/internal/archetype"
	"github.com/ramonehamilton/ptcg-meta/internal/model"
)

// MinGames is the sample-size gate: an opponent entry is only emitted
// once at least this many games are recorded against it, so single-game
// "matchups" never show up.
const MinGames = 3

// Entry is the aggregated record against one opponent archetype.
// WinRate is wins/total rounded to a whole percent.
type Entry struct {
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Ties    int `json:"ties"`
	Total   int `json:"total"`
	WinRate int `json:"winRate"`
}

// Winner sentinel values in pairing records. Any other value is the
// winning player's ID.
const (
	WinnerTie        = "0"
	WinnerDoubleLoss = "-1"
)

// BuildMatrix tallies the target archetype's matchups across all
// supplied tournaments. Opponent keys are display names (first-seen
// spelling); a mirror pairing tallies under the target's own name.
// Pairings are skipped when either player's archetype is unknown or the
// pairing was a bye. A double loss counts exactly one loss for the
// target side.
func BuildMatrix(targetArchetype string, data []model.PairingsData) map[string]Entry {
	targetKey := archetype.NormalizeName(targetArchetype)
	if targetKey == "" {
		return map[string]Entry{}
	}

	type tally struct {
		display            string
		wins, losses, ties int
	}
	tallies := make(map[string]*tally)

	record := func(opponent string, wins, losses, ties int) {
		key := archetype.NormalizeName(opponent)
		t, ok := tallies[key]
		if !ok {
			t = &tally{display: strings.TrimSpace(opponent)}
			tallies[key] = t
		}
		t.wins += wins
		t.losses += losses
		t.ties += ties
	}

	for _, tournament := range data {
		for _, pairing := range tournament.Pairings {
			if pairing.IsBye() {
				continue
			}
			arch1, ok1 := tournament.Standings[pairing.Player1]
			arch2, ok2 := tournament.Standings[pairing.Player2]
			if !ok1 || !ok2 || strings.TrimSpace(arch1) == "" || strings.TrimSpace(arch2) == "" {
				continue
			}

			key1 := archetype.NormalizeName(arch1)
			key2 := archetype.NormalizeName(arch2)
			if key1 != targetKey && key2 != targetKey {
				continue
			}

			// In a mirror both seats are the target; tally the game once
			// from player1's perspective.
			targetPlayer, opponent := pairing.Player1, arch2
			if key1 != targetKey {
				targetPlayer, opponent = pairing.Player2, arch1
			}

			switch pairing.Winner {
			case WinnerTie:
				record(opponent, 0, 0, 1)
			case WinnerDoubleLoss:
				record(opponent, 0, 1, 0)
			case targetPlayer:
				record(opponent, 1, 0, 0)
			default:
				record(opponent, 0, 1, 0)
			}
		}
	}

	matrix := make(map[string]Entry)
	for _, t := range tallies {
		total := t.wins + t.losses + t.ties
		if total < MinGames {
			continue
		}
		matrix[t.display] = Entry{
			Wins:    t.wins,
			Losses:  t.losses,
			Ties:    t.ties,
			Total:   total,
			WinRate: int(math.Round(float64(t.wins) / float64(total) * 100)),
		}
	}
	return matrix
}
