// Package trend builds per-archetype and per-card usage timelines across
// an ordered sequence of tournaments, and ranks cards by playrate
// movement. Timelines are dense: every qualifying series has one entry
// per surviving time bucket, with zero-usage buckets backfilled.
package trend

import (
	"sort"
	"strings"
	"time"

	"github.com/ramonehamilton/ptcg-meta/internal/archetype"
	"github.com/ramonehamilton/ptcg-meta/internal/model"
	"github.com/ramonehamilton/ptcg-meta/internal/report"
)

// MinTournamentPlayers is the global player-count floor. Smaller events
// are low-confidence and are dropped from the tournament list and every
// timeline before any grouping happens.
const MinTournamentPlayers = 16

// Granularity selects how tournaments are bucketed along the timeline.
type Granularity string

const (
	// GranularityTournament emits one bucket per tournament.
	GranularityTournament Granularity = "tournament"
	// GranularityDaily sums tournaments sharing a calendar day.
	GranularityDaily Granularity = "daily"
	// GranularityWeekly sums tournaments sharing an ISO week.
	GranularityWeekly Granularity = "weekly"
)

// Options configures timeline construction.
type Options struct {
	// MinAppearances is the number of buckets a series must have
	// non-zero decks in to be included at all. Backfilled zero entries
	// never count. Default 1.
	MinAppearances int

	// Now is the reference instant; tournaments dated after it are
	// excluded as data errors. Defaults to the current time.
	Now time.Time

	// SuccessFilter, when set, keeps only decks carrying the given
	// success tag (for example "top8").
	SuccessFilter string

	// Granularity defaults to GranularityTournament.
	Granularity Granularity
}

func (o Options) withDefaults() Options {
	if o.MinAppearances < 1 {
		o.MinAppearances = 1
	}
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	if o.Granularity == "" {
		o.Granularity = GranularityTournament
	}
	return o
}

// Bucket is one timeline entry. For merged (daily/weekly) buckets,
// TournamentIDs records every tournament summed into the bucket.
type Bucket struct {
	TournamentID  string   `json:"tournamentId,omitempty"`
	TournamentIDs []string `json:"tournamentIds,omitempty"`
	Date          string   `json:"date"`
	Decks         int      `json:"decks"`
	Share         float64  `json:"share"`
}

// Series is one archetype's (or card's) usage timeline. Appearances is
// the count of buckets with non-zero decks; the timeline itself always
// spans every surviving bucket.
type Series struct {
	DisplayName string   `json:"displayName"`
	Appearances int      `json:"appearances"`
	Timeline    []Bucket `json:"timeline"`
}

// Meta carries the bucket counts for the surviving tournaments.
type Meta struct {
	TournamentCount int `json:"tournamentCount"`
	DayCount        int `json:"dayCount"`
	WeekCount       int `json:"weekCount"`
}

// Report is a complete trend report.
type Report struct {
	Tournaments []model.Tournament `json:"tournaments"`
	Series      []Series           `json:"series"`
	Meta        Meta               `json:"meta"`
}

// timeBucket is the internal dense-matrix column: a set of tournaments
// sharing a date key, with the summed deck denominators.
type timeBucket struct {
	key       string
	date      string
	ids       []string
	deckTotal int
	deckCount int // structurally valid decks, denominator fallback
}

// BuildTrendReport builds per-archetype share timelines. Filtering,
// merging and backfilling follow a fixed order: the player-count filter
// is global and applied first, then archetype names merge by normalized
// key, then the dense (series x bucket) matrix is built so the no-gaps
// invariant holds mechanically, then MinAppearances prunes series.
func BuildTrendReport(decks []model.Deck, tournaments []model.Tournament, opts Options) *Report {
	opts = opts.withDefaults()
	surviving, buckets, decksByBucket := prepare(decks, tournaments, opts)

	display := make(map[string]string)
	perBucket := make(map[string]map[string]int) // archetype key -> bucket key -> decks
	var order []string

	for _, b := range buckets {
		for i := range decksByBucket[b.key] {
			d := &decksByBucket[b.key][i]
			key := archetype.NormalizeName(d.Archetype)
			if key == "" {
				continue
			}
			if _, seen := display[key]; !seen {
				display[key] = strings.TrimSpace(d.Archetype)
				perBucket[key] = make(map[string]int)
				order = append(order, key)
			}
			perBucket[key][b.key]++
		}
	}

	series := assembleSeries(buckets, order, display, perBucket, opts, shareOfDeckTotal)
	return &Report{
		Tournaments: surviving,
		Series:      series,
		Meta:        metaFor(surviving),
	}
}

// shareOfDeckTotal computes an archetype's share against the reported
// deck total, falling back to the bucket's valid-deck count.
func shareOfDeckTotal(decks int, b *timeBucket) float64 {
	total := b.deckTotal
	if total <= 0 {
		total = b.deckCount
	}
	if total <= 0 {
		return 0
	}
	return report.Round2(float64(decks) / float64(total) * 100)
}

// prepare applies the global tournament filter, sorts chronologically,
// forms time buckets for the requested granularity, and indexes decks by
// bucket.
func prepare(decks []model.Deck, tournaments []model.Tournament, opts Options) ([]model.Tournament, []*timeBucket, map[string][]model.Deck) {
	surviving := make([]model.Tournament, 0, len(tournaments))
	for _, t := range tournaments {
		if t.Players < MinTournamentPlayers {
			continue
		}
		date := t.ParseDate()
		if date.IsZero() || date.After(opts.Now) {
			continue
		}
		surviving = append(surviving, t)
	}
	model.SortTournamentsByDate(surviving)

	bucketKey := func(t *model.Tournament) (key, date string) {
		switch opts.Granularity {
		case GranularityDaily:
			d := DayKey(t.ParseDate())
			return d, d
		case GranularityWeekly:
			w := WeekKey(t.ParseDate())
			return w, w
		default:
			return t.ID, t.ParseDate().Format("2006-01-02")
		}
	}

	var buckets []*timeBucket
	bucketByKey := make(map[string]*timeBucket)
	bucketByTournament := make(map[string]*timeBucket)
	deckCountByTournament := make(map[string]int)

	for i := range decks {
		d := &decks[i]
		if !d.Valid() {
			continue
		}
		if opts.SuccessFilter != "" && !d.HasSuccessTag(opts.SuccessFilter) {
			continue
		}
		deckCountByTournament[d.TournamentID]++
	}

	for i := range surviving {
		t := &surviving[i]
		key, date := bucketKey(t)
		b, ok := bucketByKey[key]
		if !ok {
			b = &timeBucket{key: key, date: date}
			bucketByKey[key] = b
			buckets = append(buckets, b)
		}
		b.ids = append(b.ids, t.ID)
		if t.DeckTotal > 0 {
			b.deckTotal += t.DeckTotal
		} else {
			b.deckTotal += deckCountByTournament[t.ID]
		}
		b.deckCount += deckCountByTournament[t.ID]
		bucketByTournament[t.ID] = b
	}

	decksByBucket := make(map[string][]model.Deck)
	for i := range decks {
		d := &decks[i]
		if !d.Valid() {
			continue
		}
		if opts.SuccessFilter != "" && !d.HasSuccessTag(opts.SuccessFilter) {
			continue
		}
		b, ok := bucketByTournament[d.TournamentID]
		if !ok {
			continue // deck from a filtered-out tournament
		}
		decksByBucket[b.key] = append(decksByBucket[b.key], *d)
	}

	return surviving, buckets, decksByBucket
}

// assembleSeries performs the dense outer join over (series x bucket):
// every series that survives MinAppearances gets exactly one timeline
// entry per bucket, with zero-deck buckets backfilled. shareFn turns a
// per-bucket deck count into the series value.
func assembleSeries(
	buckets []*timeBucket,
	order []string,
	display map[string]string,
	perBucket map[string]map[string]int,
	opts Options,
	shareFn func(decks int, b *timeBucket) float64,
) []Series {
	var out []Series
	for _, key := range order {
		counts := perBucket[key]
		appearances := 0
		for _, n := range counts {
			if n > 0 {
				appearances++
			}
		}
		if appearances < opts.MinAppearances {
			continue
		}

		timeline := make([]Bucket, 0, len(buckets))
		for _, b := range buckets {
			n := counts[b.key]
			entry := Bucket{Date: b.date, Decks: n, Share: shareFn(n, b)}
			if len(b.ids) == 1 {
				entry.TournamentID = b.ids[0]
			} else {
				entry.TournamentIDs = append([]string(nil), b.ids...)
			}
			timeline = append(timeline, entry)
		}
		out = append(out, Series{
			DisplayName: display[key],
			Appearances: appearances,
			Timeline:    timeline,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := totalDecks(out[i]), totalDecks(out[j])
		if ti != tj {
			return ti > tj
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return out
}

func totalDecks(s Series) int {
	total := 0
	for _, b := range s.Timeline {
		total += b.Decks
	}
	return total
}

func metaFor(surviving []model.Tournament) Meta {
	days := make(map[string]struct{})
	weeks := make(map[string]struct{})
	for _, t := range surviving {
		date := t.ParseDate()
		days[DayKey(date)] = struct{}{}
		weeks[WeekKey(date)] = struct{}{}
	}
	return Meta{
		TournamentCount: len(surviving),
		DayCount:        len(days),
		WeekCount:       len(weeks),
	}
}
