// Command ptcg-meta regenerates aggregated tournament reports: per-card
// play-rate reports, archetype reports, trend timelines, rising/falling
// card rankings and matchup matrices. Inputs come from a local reports
// directory or from remote report storage; outputs are JSON files and,
// optionally, a SQLite report store and HTML charts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ramonehamilton/ptcg-meta/internal/archetype"
	"github.com/ramonehamilton/ptcg-meta/internal/card"
	"github.com/ramonehamilton/ptcg-meta/internal/charts"
	"github.com/ramonehamilton/ptcg-meta/internal/config"
	"github.com/ramonehamilton/ptcg-meta/internal/fetch"
	"github.com/ramonehamilton/ptcg-meta/internal/matchup"
	"github.com/ramonehamilton/ptcg-meta/internal/model"
	"github.com/ramonehamilton/ptcg-meta/internal/report"
	"github.com/ramonehamilton/ptcg-meta/internal/storage"
	"github.com/ramonehamilton/ptcg-meta/internal/trend"
	"github.com/ramonehamilton/ptcg-meta/internal/version"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to TOML config file")
		inputDir    = flag.String("input", "", "Local reports directory (overrides source.base_url)")
		matchTarget = flag.String("matchups", "", "Archetype to build a matchup matrix for")
		renderHTML  = flag.Bool("charts", false, "Render trend charts in addition to JSON")
		showVersion = flag.Bool("version", false, "Print the version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("ptcg-meta", version.GetVersion())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx := context.Background()

	batches, diagnostics, err := gather(ctx, cfg, *inputDir)
	if err != nil {
		log.Fatalf("Failed to gather tournament data: %v", err)
	}
	log.Printf("Loaded %d tournaments (%d diagnostics)", len(batches), len(diagnostics))

	// Trends only consider tournaments whose decks actually loaded.
	tournaments := make([]model.Tournament, 0, len(batches))
	for _, batch := range batches {
		tournaments = append(tournaments, batch.Tournament)
	}

	normalizer, err := loadNormalizer(ctx, cfg, *inputDir)
	if err != nil {
		log.Printf("Synonym table unavailable, using identity resolution: %v", err)
		normalizer = card.NewNormalizer(nil)
	}

	var store *storage.DB
	if cfg.Storage.Path != "" {
		dbCfg := storage.DefaultConfig(cfg.Storage.Path)
		dbCfg.AutoMigrate = cfg.Storage.Migrate
		store, err = storage.Open(dbCfg)
		if err != nil {
			log.Fatalf("Failed to open report store: %v", err)
		}
		defer store.Close()
	}

	var allDecks []model.Deck
	var allPairings []model.PairingsData
	for _, batch := range batches {
		decks := batch.Decks
		if cfg.Aggregation.AnonymizeNames {
			for i := range decks {
				decks[i].Player = model.AnonymizePlayer(decks[i].Player)
			}
		}
		allDecks = append(allDecks, decks...)
		if batch.Pairings != nil {
			allPairings = append(allPairings, *batch.Pairings)
		}

		master := report.Generate(decks, batch.Tournament.DeckTotal, normalizer)
		index := report.CardIndex(decks)
		groups := archetype.BuildReports(decks, cfg.Aggregation.MinDeckCount, normalizer)

		if err := emitTournament(ctx, cfg, store, batch.Tournament, master, index, groups); err != nil {
			log.Fatalf("Failed to write reports for %s: %v", batch.Tournament.ID, err)
		}
	}

	opts := trend.Options{
		MinAppearances: cfg.Aggregation.MinAppearances,
		SuccessFilter:  cfg.Aggregation.SuccessFilter,
		Granularity:    trend.Granularity(cfg.Aggregation.Granularity),
	}
	trends := trend.BuildTrendReport(allDecks, tournaments, opts)
	cardTrends := trend.BuildCardTrendReport(allDecks, tournaments, opts, normalizer)
	ranking := trend.RankRisingFalling(cardTrends.Series, cfg.Aggregation.TopCount)

	if err := emitGlobal(ctx, cfg, store, trends, cardTrends, ranking, diagnostics); err != nil {
		log.Fatalf("Failed to write trend reports: %v", err)
	}
	log.Printf("Trend reports written: %d series across %d tournaments",
		len(trends.Series), trends.Meta.TournamentCount)

	if *matchTarget != "" {
		matrix := matchup.BuildMatrix(*matchTarget, allPairings)
		name := archetype.Slug(*matchTarget)
		if err := writeJSON(filepath.Join(cfg.Storage.OutDir, "matchups", name+".json"), matrix); err != nil {
			log.Fatalf("Failed to write matchup matrix: %v", err)
		}
		if store != nil {
			if err := store.SaveReport(ctx, "", storage.KindMatchups, name, matrix); err != nil {
				log.Fatalf("Failed to store matchup matrix: %v", err)
			}
		}
		log.Printf("Matchup matrix for %q: %d opponents", *matchTarget, len(matrix))
	}

	if *renderHTML || cfg.Charts.Enabled {
		if err := renderCharts(cfg, trends, ranking); err != nil {
			log.Printf("Chart rendering failed: %v", err)
		}
	}
}

// gather loads the tournament list and per-tournament data either from
// a local reports directory or from remote storage.
func gather(ctx context.Context, cfg *config.Config, inputDir string) ([]*fetch.TournamentData, []fetch.Diagnostic, error) {
	if inputDir != "" {
		return gatherLocal(inputDir)
	}
	if cfg.Source.BaseURL == "" {
		return nil, nil, fmt.Errorf("no -input directory and no source.base_url configured")
	}

	clientCfg := fetch.DefaultConfig(cfg.Source.BaseURL)
	clientCfg.Concurrency = cfg.Source.Concurrency
	if timeout, err := cfg.GetSourceTimeout(); err == nil {
		clientCfg.RequestTimeout = timeout
	}
	client := fetch.NewClient(clientCfg)

	tournaments, err := client.Tournaments(ctx)
	if err != nil {
		return nil, nil, err
	}
	result := client.FetchAll(ctx, tournaments)
	return result.Tournaments, result.Diagnostics, nil
}

// gatherLocal reads reports/tournaments.json plus per-tournament
// decks.json and pairings.json files from disk. A tournament whose deck
// file is missing or malformed is excluded with a diagnostic, matching
// the remote client's partial-failure behavior.
func gatherLocal(dir string) ([]*fetch.TournamentData, []fetch.Diagnostic, error) {
	var tournaments []model.Tournament
	if err := readJSON(filepath.Join(dir, "tournaments.json"), &tournaments); err != nil {
		return nil, nil, fmt.Errorf("read tournament list: %w", err)
	}

	var batches []*fetch.TournamentData
	var diagnostics []fetch.Diagnostic
	for _, t := range tournaments {
		var decks []model.Deck
		if err := readJSON(filepath.Join(dir, t.ID, "decks.json"), &decks); err != nil {
			diagnostics = append(diagnostics, fetch.Diagnostic{TournamentID: t.ID, Stage: "decks", Err: err.Error()})
			continue
		}
		for i := range decks {
			decks[i].TournamentID = t.ID
			decks[i].TournamentDate = t.Date
			decks[i].TournamentName = t.Name
		}
		batch := &fetch.TournamentData{Tournament: t, Decks: decks}

		var pairings model.PairingsData
		if err := readJSON(filepath.Join(dir, t.ID, "pairings.json"), &pairings); err == nil {
			pairings.TournamentID = t.ID
			batch.Pairings = &pairings
		}
		batches = append(batches, batch)
	}
	return batches, diagnostics, nil
}

// loadNormalizer builds the card normalizer from a local synonym file
// when configured, falling back to the remote synonym table.
func loadNormalizer(ctx context.Context, cfg *config.Config, inputDir string) (*card.Normalizer, error) {
	if cfg.Source.SynonymFile != "" {
		table, err := card.LoadSynonymTable(cfg.Source.SynonymFile)
		if err != nil {
			return nil, err
		}
		return card.NewNormalizer(table), nil
	}
	if inputDir != "" {
		table, err := card.LoadSynonymTable(filepath.Join(inputDir, "card-synonyms.json"))
		if err != nil {
			return nil, err
		}
		return card.NewNormalizer(table), nil
	}
	client := fetch.NewClient(fetch.DefaultConfig(cfg.Source.BaseURL))
	table, err := client.Synonyms(ctx)
	if err != nil {
		return nil, err
	}
	return card.NewNormalizer(table), nil
}

func emitTournament(ctx context.Context, cfg *config.Config, store *storage.DB, t model.Tournament,
	master *report.ParsedReport, index *report.Index, groups *archetype.Result) error {

	base := filepath.Join(cfg.Storage.OutDir, t.ID)
	if err := writeJSON(filepath.Join(base, "master.json"), master); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(base, "cardIndex.json"), index); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(base, "archetypes", "index.json"), groups.Index); err != nil {
		return err
	}
	for slug, file := range groups.Files {
		if err := writeJSON(filepath.Join(base, "archetypes", slug+".json"), file.Data); err != nil {
			return err
		}
	}

	if store == nil {
		return nil
	}
	if err := store.SaveReport(ctx, t.ID, storage.KindMaster, "", master); err != nil {
		return err
	}
	if err := store.SaveReport(ctx, t.ID, storage.KindCardIndex, "", index); err != nil {
		return err
	}
	for slug, file := range groups.Files {
		if err := store.SaveReport(ctx, t.ID, storage.KindArchetype, slug, file.Data); err != nil {
			return err
		}
	}
	return nil
}

func emitGlobal(ctx context.Context, cfg *config.Config, store *storage.DB,
	trends, cardTrends *trend.Report, ranking *trend.Ranking, diagnostics []fetch.Diagnostic) error {

	out := cfg.Storage.OutDir
	if err := writeJSON(filepath.Join(out, "trends.json"), trends); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(out, "cardTrends.json"), cardTrends); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(out, "cardMovements.json"), ranking); err != nil {
		return err
	}
	if len(diagnostics) > 0 {
		if err := writeJSON(filepath.Join(out, "diagnostics.json"), diagnostics); err != nil {
			return err
		}
	}

	if store == nil {
		return nil
	}
	if err := store.SaveReport(ctx, "", storage.KindTrends, "", trends); err != nil {
		return err
	}
	if err := store.SaveReport(ctx, "", storage.KindCardTrend, "", cardTrends); err != nil {
		return err
	}
	return nil
}

func renderCharts(cfg *config.Config, trends *trend.Report, ranking *trend.Ranking) error {
	if err := os.MkdirAll(cfg.Charts.OutDir, 0o755); err != nil {
		return err
	}
	chartCfg := charts.DefaultChartConfig()
	chartCfg.Width = cfg.Charts.Width
	chartCfg.Height = cfg.Charts.Height
	chartCfg.Title = "Archetype usage"
	chartCfg.Subtitle = fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02"))

	if err := charts.RenderTrendChart(trends, chartCfg, filepath.Join(cfg.Charts.OutDir, "trends.html")); err != nil {
		return err
	}
	chartCfg.Title = "Rising and falling cards"
	return charts.RenderMovementChart(ranking, chartCfg, filepath.Join(cfg.Charts.OutDir, "movements.html"))
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// writeJSON writes a JSON file atomically: marshal to a temp file in the
// target directory, then rename over the destination.
func writeJSON(path string, payload any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
