package trend

import (
	"strings"

	"github.com/ramonehamilton/ptcg-meta/internal/card"
	"github.com/ramonehamilton/ptcg-meta/internal/model"
	"github.com/ramonehamilton/ptcg-meta/internal/report"
)

// BuildCardTrendReport builds per-card playrate timelines. It differs
// from BuildTrendReport only in what a bucket value means: the share of
// decks in the bucket that contain the card at all, with printings
// merged through the normalizer under the card's base name.
func BuildCardTrendReport(decks []model.Deck, tournaments []model.Tournament, opts Options, n *card.Normalizer) *Report {
	opts = opts.withDefaults()
	if n == nil {
		n = card.NewNormalizer(nil)
	}
	surviving, buckets, decksByBucket := prepare(decks, tournaments, opts)

	display := make(map[string]string)
	perBucket := make(map[string]map[string]int) // card key -> bucket key -> decks containing it
	var order []string

	for _, b := range buckets {
		for i := range decksByBucket[b.key] {
			d := &decksByBucket[b.key][i]

			// A deck counts once per card no matter how many printings
			// or copies it runs.
			seen := make(map[string]struct{})
			for _, entry := range d.Cards {
				if entry.Name == "" || entry.Count < 1 {
					continue
				}
				uid := n.Resolve(entry.Name, entry.Set, entry.Number)
				base := card.BaseName(uid)
				key := strings.ToLower(base)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				if _, ok := display[key]; !ok {
					display[key] = base
					perBucket[key] = make(map[string]int)
					order = append(order, key)
				}
				perBucket[key][b.key]++
			}
		}
	}

	series := assembleSeries(buckets, order, display, perBucket, opts, playrateOfBucket)
	return &Report{
		Tournaments: surviving,
		Series:      series,
		Meta:        metaFor(surviving),
	}
}

// playrateOfBucket computes a card's playrate against the decks actually
// present in the bucket (not the reported deck total, which can exceed
// the decklists published).
func playrateOfBucket(decks int, b *timeBucket) float64 {
	if b.deckCount <= 0 {
		return 0
	}
	return report.Round2(float64(decks) / float64(b.deckCount) * 100)
}
