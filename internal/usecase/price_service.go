package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pricematrix/backend/internal/domain"
)

// PriceServiceConfig holds configuration for the price service
type PriceServiceConfig struct {
	// ParallelScrape fetches both retailers concurrently instead of one after the other
	ParallelScrape     bool
	EnableDebugLogging bool
	// Now is the clock used for freshness; defaults to time.Now
	Now func() time.Time
}

// PriceService runs the lookup workflow: resolve -> cache check -> scrape both -> persist
type PriceService struct {
	store          domain.PriceStore
	resolver       *Resolver
	fetcher        *PriceFetcher
	catalog        *Catalog
	parallelScrape bool
	now            func() time.Time
}

// NewPriceService creates a price service with its collaborators
func NewPriceService(
	store domain.PriceStore,
	pages domain.PageFetcher,
	extractor domain.PriceExtractor,
	matcher domain.ProductMatcher,
	config PriceServiceConfig,
) *PriceService {
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &PriceService{
		store:          store,
		resolver:       NewResolver(matcher, ResolverConfig{EnableDebugLogging: config.EnableDebugLogging}),
		fetcher:        NewPriceFetcher(pages, extractor),
		catalog:        NewCatalog(store, now),
		parallelScrape: config.ParallelScrape,
		now:            now,
	}
}

// Lookup returns current prices for a free-text product description.
// A record written today is served from the store; otherwise both retailers are
// scraped and the record is overwritten. Any failure aborts the whole request
// and nothing is persisted.
func (s *PriceService) Lookup(ctx context.Context, query string) (*domain.PriceLookup, error) {
	query = normalizeQuery(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	knownNames, err := s.store.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	name, err := s.resolver.Resolve(ctx, query, knownNames)
	if err != nil {
		logLLMFailure(err, query)
		return nil, fmt.Errorf("resolve %q: %w", query, err)
	}

	record, err := s.store.Lookup(ctx, name)
	switch {
	case err == nil:
		if record.FreshAt(s.now()) {
			log.Info().Str("component", "orchestrator").Str("product", name).Msg("served from cache")
			return &domain.PriceLookup{
				ProductName:   record.ProductName,
				PriceAmazon:   record.PriceAmazon,
				PriceFlipkart: record.PriceFlipkart,
				Status:        domain.StatusFromCache,
				LastUpdated:   record.LastUpdated,
			}, nil
		}
	case errors.Is(err, domain.ErrRecordNotFound):
	default:
		return nil, err
	}

	log.Info().Str("component", "orchestrator").Str("product", name).Msg("fetching fresh prices")
	prices, err := s.scrapeAll(ctx, name)
	if err != nil {
		logLLMFailure(err, name)
		return nil, fmt.Errorf("scrape %q: %w", name, err)
	}

	record, err = s.store.Upsert(ctx, name, prices[domain.RetailerAmazon], prices[domain.RetailerFlipkart])
	if err != nil {
		return nil, err
	}

	return &domain.PriceLookup{
		ProductName:   record.ProductName,
		PriceAmazon:   record.PriceAmazon,
		PriceFlipkart: record.PriceFlipkart,
		Status:        domain.StatusUpdatedScrape,
		LastUpdated:   record.LastUpdated,
	}, nil
}

// ListProducts returns every cached record with its freshness as of now
func (s *PriceService) ListProducts(ctx context.Context) ([]domain.ProductView, error) {
	return s.catalog.ListProducts(ctx)
}

// scrapeAll fetches every retailer; the result is complete or an error, never partial
func (s *PriceService) scrapeAll(ctx context.Context, name string) (map[domain.Retailer]float64, error) {
	prices := make([]float64, len(domain.Retailers))

	if s.parallelScrape {
		g, gctx := errgroup.WithContext(ctx)
		for i, retailer := range domain.Retailers {
			g.Go(func() error {
				price, err := s.fetcher.FetchPrice(gctx, retailer, name)
				prices[i] = price
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, retailer := range domain.Retailers {
			price, err := s.fetcher.FetchPrice(ctx, retailer, name)
			if err != nil {
				return nil, err
			}
			prices[i] = price
		}
	}

	result := make(map[domain.Retailer]float64, len(prices))
	for i, retailer := range domain.Retailers {
		result[retailer] = prices[i]
	}
	return result, nil
}

// normalizeQuery trims and collapses whitespace; case and punctuation carry variant information
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// maxLoggedRawChars bounds the LLM text copied into a log line
const maxLoggedRawChars = 500

// logLLMFailure records the raw text of an unparsable LLM response before the request is aborted
func logLLMFailure(err error, product string) {
	var malformed *domain.MalformedResponseError
	if !errors.As(err, &malformed) {
		return
	}
	raw := truncateRunes(malformed.Raw, maxLoggedRawChars)
	log.Error().Str("component", "orchestrator").Str("product", product).
		Str("endpoint", malformed.Endpoint).Str("raw", raw).Err(malformed.Err).
		Msg("unparsable LLM response, request aborted")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
