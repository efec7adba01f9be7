package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jonathan/jobpilot/internal/aggregate"
	"github.com/jonathan/jobpilot/internal/config"
	"github.com/jonathan/jobpilot/internal/db"
	"github.com/jonathan/jobpilot/internal/logging"
	"github.com/jonathan/jobpilot/internal/match"
	"github.com/jonathan/jobpilot/internal/sources"
	"github.com/jonathan/jobpilot/internal/tracker"
)

// loadConfig resolves the effective config: file values when --config is
// given, defaults otherwise, environment fallbacks for secrets.
func loadConfig() (*config.Config, error) {
	cfg := config.Defaults()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if verbose {
		cfg.Verbose = true
	}
	if jsonLog {
		cfg.JSONLog = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.JSONLog, cfg.Verbose)
}

// buildAdapters assembles the source set. Career-page boards come first so
// their postings win merges; the public boards are always registered.
func buildAdapters(cfg *config.Config) []sources.Adapter {
	var adapters []sources.Adapter

	if len(cfg.GreenhouseBoards) > 0 {
		companies := make([]sources.GreenhouseCompany, 0, len(cfg.GreenhouseBoards))
		for _, slug := range cfg.GreenhouseBoards {
			companies = append(companies, sources.GreenhouseCompany{Slug: slug, Name: slug})
		}
		adapters = append(adapters, sources.NewGreenhouse(companies))
	}
	if len(cfg.LeverCompanies) > 0 {
		companies := make([]sources.LeverCompany, 0, len(cfg.LeverCompanies))
		for _, slug := range cfg.LeverCompanies {
			companies = append(companies, sources.LeverCompany{Slug: slug, Name: slug})
		}
		adapters = append(adapters, sources.NewLever(companies))
	}

	adapters = append(adapters,
		sources.NewIndeed(),
		sources.NewJobStreet(),
		sources.NewLinkedIn(),
	)
	return adapters
}

func newAggregator(cfg *config.Config, log *zap.Logger) *aggregate.Aggregator {
	return aggregate.New(buildAdapters(cfg), aggregate.Options{
		PerSourceTimeout: cfg.PerSourceTimeout,
		GlobalBudget:     cfg.GlobalBudget,
		MaxConcurrent:    cfg.MaxConcurrent,
	}, log)
}

// stores bundles the persistence surface. database is nil when running
// in-memory.
type stores struct {
	database *db.DB
	tracker  *tracker.Tracker
	cache    match.Cache
}

func (s *stores) Close() {
	if s.database != nil {
		s.database.Close()
	}
}

// openStores connects to PostgreSQL when configured, falling back to
// process-local state otherwise.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.DatabaseURL == "" {
		return &stores{
			tracker: tracker.New(tracker.NewMemory()),
			cache:   match.NewMemoryCache(),
		}, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to prepare database: %w", err)
	}
	return &stores{
		database: database,
		tracker:  tracker.New(database.Attempts()),
		cache:    database.Scores(),
	}, nil
}

// newEngine builds the match engine. Without an API key the embedder is nil
// and the engine scores in keyword mode from the start.
func newEngine(ctx context.Context, cfg *config.Config, cache match.Cache, log *zap.Logger) (*match.Engine, func(), error) {
	if cfg.APIKey == "" {
		return match.New(nil, cache, log), func() {}, nil
	}
	embedder, err := match.NewGeminiEmbedder(ctx, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init embedding backend: %w", err)
	}
	return match.New(embedder, cache, log), func() { embedder.Close() }, nil
}
