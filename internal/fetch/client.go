// Package fetch is the data-gathering boundary of the engine. It pulls
// tournament lists, decklists and pairing records from remote report
// storage with bounded parallelism, memoized in-flight requests and
// best-effort partial-failure handling. The aggregation core never does
// I/O; everything it consumes arrives through this package or from
// local files.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/ptcg-meta/internal/card"
	"github.com/ramonehamilton/ptcg-meta/internal/model"
	"github.com/ramonehamilton/ptcg-meta/internal/version"
)

const (
	rateLimitDelay = 200 * time.Millisecond
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second

	defaultConcurrency = 4
	synonymCacheTTL    = 24 * time.Hour
)

// Config configures the report storage client.
type Config struct {
	// BaseURL is the root of the report storage, e.g. a CDN bucket.
	BaseURL string

	// Concurrency bounds parallel per-tournament fetches. Values
	// outside 1..8 fall back to the default of 4.
	Concurrency int

	// RequestTimeout is the per-request HTTP timeout.
	RequestTimeout time.Duration

	// UserAgent identifies the client to the storage host.
	UserAgent string
}

// DefaultConfig returns default client configuration for a base URL.
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:        baseURL,
		Concurrency:    defaultConcurrency,
		RequestTimeout: requestTimeout,
		UserAgent:      "ptcg-meta/" + version.GetVersion(),
	}
}

// Diagnostic records a tournament that failed to fetch and was excluded
// from aggregation.
type Diagnostic struct {
	TournamentID string `json:"tournamentId"`
	Stage        string `json:"stage"`
	Err          string `json:"error"`
}

// Client fetches report JSON with rate limiting, retries and a memoized
// in-flight request table so concurrent callers asking for the same
// resource share one fetch.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	concurrency int
	rateLimiter *rate.Limiter
	flight      singleflight.Group

	mu          sync.Mutex
	synonyms    *card.SynonymTable
	synonymsExp time.Time
}

// NewClient creates a report storage client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig("")
	}
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	concurrency := config.Concurrency
	if concurrency < 1 || concurrency > 8 {
		concurrency = defaultConcurrency
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     config.BaseURL,
		userAgent:   config.UserAgent,
		concurrency: concurrency,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
	}
}

// TournamentData bundles everything fetched for one tournament.
type TournamentData struct {
	Tournament model.Tournament
	Decks      []model.Deck
	Pairings   *model.PairingsData
}

// BatchResult is the outcome of a batched fetch: the tournaments that
// loaded, plus diagnostics for the ones that did not.
type BatchResult struct {
	Tournaments []*TournamentData
	Diagnostics []Diagnostic
}

// Tournaments fetches the tournament list.
func (c *Client) Tournaments(ctx context.Context) ([]model.Tournament, error) {
	var list []model.Tournament
	if err := c.getJSON(ctx, "reports/tournaments.json", &list); err != nil {
		return nil, fmt.Errorf("fetch tournament list: %w", err)
	}
	return list, nil
}

// Decks fetches one tournament's decklists.
func (c *Client) Decks(ctx context.Context, tournamentID string) ([]model.Deck, error) {
	var decks []model.Deck
	path := fmt.Sprintf("reports/%s/decks.json", tournamentID)
	if err := c.getJSON(ctx, path, &decks); err != nil {
		return nil, fmt.Errorf("fetch decks for %s: %w", tournamentID, err)
	}
	for i := range decks {
		decks[i].TournamentID = tournamentID
	}
	return decks, nil
}

// Pairings fetches one tournament's standings and pairing records.
func (c *Client) Pairings(ctx context.Context, tournamentID string) (*model.PairingsData, error) {
	var data model.PairingsData
	path := fmt.Sprintf("reports/%s/pairings.json", tournamentID)
	if err := c.getJSON(ctx, path, &data); err != nil {
		return nil, fmt.Errorf("fetch pairings for %s: %w", tournamentID, err)
	}
	data.TournamentID = tournamentID
	return &data, nil
}

// Synonyms fetches the card synonym table, caching it for 24 hours.
func (c *Client) Synonyms(ctx context.Context) (*card.SynonymTable, error) {
	c.mu.Lock()
	if c.synonyms != nil && time.Now().Before(c.synonymsExp) {
		table := c.synonyms
		c.mu.Unlock()
		return table, nil
	}
	c.mu.Unlock()

	var table card.SynonymTable
	if err := c.getJSON(ctx, "assets/card-synonyms.json", &table); err != nil {
		return nil, fmt.Errorf("fetch synonym table: %w", err)
	}

	c.mu.Lock()
	c.synonyms = &table
	c.synonymsExp = time.Now().Add(synonymCacheTTL)
	c.mu.Unlock()
	return &table, nil
}

// FetchAll gathers decks and pairings for every listed tournament with
// bounded parallelism. One tournament failing records a diagnostic and
// excludes it; the rest of the batch proceeds. The returned tournaments
// keep the input order.
func (c *Client) FetchAll(ctx context.Context, tournaments []model.Tournament) *BatchResult {
	results := make([]*TournamentData, len(tournaments))
	var mu sync.Mutex
	var diagnostics []Diagnostic

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i := range tournaments {
		g.Go(func() error {
			t := tournaments[i]

			decks, err := c.decksShared(ctx, t.ID)
			if err != nil {
				mu.Lock()
				diagnostics = append(diagnostics, Diagnostic{TournamentID: t.ID, Stage: "decks", Err: err.Error()})
				mu.Unlock()
				slog.Warn("tournament excluded from aggregation", "tournament", t.ID, "stage", "decks", "error", err)
				return nil
			}

			data := &TournamentData{Tournament: t, Decks: decks}
			pairings, err := c.pairingsShared(ctx, t.ID)
			if err != nil {
				// Pairings are optional; decks alone still feed the
				// report and trend builders.
				mu.Lock()
				diagnostics = append(diagnostics, Diagnostic{TournamentID: t.ID, Stage: "pairings", Err: err.Error()})
				mu.Unlock()
			} else {
				data.Pairings = pairings
			}

			results[i] = data
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures become diagnostics

	out := &BatchResult{Diagnostics: diagnostics}
	for _, r := range results {
		if r != nil {
			out.Tournaments = append(out.Tournaments, r)
		}
	}
	sort.SliceStable(out.Diagnostics, func(i, j int) bool {
		return out.Diagnostics[i].TournamentID < out.Diagnostics[j].TournamentID
	})
	return out
}

// decksShared memoizes concurrent deck fetches per tournament.
func (c *Client) decksShared(ctx context.Context, tournamentID string) ([]model.Deck, error) {
	v, err, _ := c.flight.Do("decks:"+tournamentID, func() (any, error) {
		return c.Decks(ctx, tournamentID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Deck), nil
}

// pairingsShared memoizes concurrent pairings fetches per tournament.
func (c *Client) pairingsShared(ctx context.Context, tournamentID string) (*model.PairingsData, error) {
	v, err, _ := c.flight.Do("pairings:"+tournamentID, func() (any, error) {
		return c.Pairings(ctx, tournamentID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.PairingsData), nil
}

// getJSON performs a rate-limited GET with retries and decodes the
// response body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				lastErr = readErr
				continue
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			// Not transient; retrying will not conjure the file.
			return fmt.Errorf("%s: %w", path, errNotFound(resp.StatusCode))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%s: status %d", path, resp.StatusCode)
			continue
		default:
			return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
		}
	}
	return fmt.Errorf("%s: all %d attempts failed: %w", path, maxRetries, lastErr)
}

type errNotFound int

func (e errNotFound) Error() string {
	return fmt.Sprintf("not found (status %d)", int(e))
}
