// Package app wires configuration into the price lookup workflow.
// Both the HTTP server and the pricecheck CLI start from here.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricematrix/backend/config"
	"github.com/pricematrix/backend/internal/domain"
	"github.com/pricematrix/backend/internal/infrastructure/cache"
	"github.com/pricematrix/backend/internal/infrastructure/llm"
	"github.com/pricematrix/backend/internal/infrastructure/scraper"
	"github.com/pricematrix/backend/internal/usecase"
)

// Components holds the wired workflow and the resources that must be released on exit
type Components struct {
	Service *usecase.PriceService
	Catalog *usecase.Catalog
	db      *sqlx.DB
}

// Close releases the store connection, if any
func (c *Components) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// SetupLogger configures the global zerolog logger for the environment
func SetupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Build connects the store, LLM and scraper described by cfg and returns the workflow
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	components := &Components{}

	store, err := buildStore(cfg.Store, components)
	if err != nil {
		return nil, err
	}

	llmClient, err := llm.NewClient(ctx, llm.Config{
		Backend:  cfg.LLM.Backend,
		APIKey:   cfg.LLM.APIKey,
		Project:  cfg.LLM.Project,
		Location: cfg.LLM.Location,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		_ = components.Close()
		return nil, err
	}
	log.Info().Str("backend", cfg.LLM.Backend).Str("extract_model", cfg.LLM.ExtractModel).
		Str("match_model", cfg.LLM.MatchModel).Msg("LLM configured")

	scraperClient := scraper.NewClient(scraper.Config{
		AmazonURL:         cfg.Scraper.AmazonURL,
		FlipkartURL:       cfg.Scraper.FlipkartURL,
		UserAgent:         cfg.Scraper.UserAgent,
		MaxChars:          cfg.Scraper.MaxChars,
		Timeout:           cfg.Scraper.Timeout,
		RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
		Burst:             cfg.Scraper.Burst,
	})

	debug := cfg.Server.Environment == "development"
	scraperClient.SetDebug(debug)

	components.Service = usecase.NewPriceService(
		store,
		scraperClient,
		llm.NewExtractor(llmClient, cfg.LLM.ExtractModel),
		llm.NewMatcher(llmClient, cfg.LLM.MatchModel),
		usecase.PriceServiceConfig{
			ParallelScrape:     cfg.Workflow.ParallelScrape,
			EnableDebugLogging: debug,
		},
	)

	components.Catalog = usecase.NewCatalog(store, nil)

	log.Info().Bool("parallel_scrape", cfg.Workflow.ParallelScrape).Msg("price workflow ready")
	return components, nil
}

// BuildCatalog connects only the store; LLM and scraper settings are ignored and Service stays nil
func BuildCatalog(cfg *config.Config) (*Components, error) {
	components := &Components{}
	store, err := buildStore(cfg.Store, components)
	if err != nil {
		return nil, err
	}
	components.Catalog = usecase.NewCatalog(store, nil)
	return components, nil
}

func buildStore(cfg config.StoreConfig, components *Components) (domain.PriceStore, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn().Str("component", "store").Msg("using in-memory store, prices are lost on restart")
		return cache.NewMemoryStore(nil), nil
	case cache.DriverPostgres, cache.DriverSQLite:
		db, err := cache.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := cache.Migrate(db.DB, cfg.Driver); err != nil {
				_ = db.Close()
				return nil, err
			}
			log.Info().Str("component", "store").Msg("migrations completed successfully")
		}
		components.db = db
		log.Info().Str("component", "store").Str("driver", cfg.Driver).Msg("store connected")
		return cache.NewSQLStore(db, nil), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
