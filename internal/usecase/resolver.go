package usecase

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/pricematrix/backend/internal/domain"
)

// ResolverConfig holds configuration for the identity resolver
type ResolverConfig struct {
	EnableDebugLogging bool
}

// Resolver maps a free-text query onto a known canonical product name
type Resolver struct {
	matcher            domain.ProductMatcher
	enableDebugLogging bool
}

// NewResolver creates a resolver backed by an LLM product matcher
func NewResolver(matcher domain.ProductMatcher, config ResolverConfig) *Resolver {
	return &Resolver{
		matcher:            matcher,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Resolve returns the known name the query refers to, or the query itself for a new product.
// With no known names the matcher is not consulted. Matcher failures fail the resolution.
func (r *Resolver) Resolve(ctx context.Context, query string, knownNames []string) (string, error) {
	if len(knownNames) == 0 {
		return query, nil
	}

	decision, err := r.matcher.MatchProduct(ctx, query, knownNames)
	if err != nil {
		return "", err
	}

	index, ok := validIndex(decision.MatchIndex, len(knownNames))
	if !ok {
		// 0 is the expected "no match"; anything else is an LLM indexing slip, still a new product
		if decision.MatchIndex != 0 {
			log.Warn().Str("component", "resolver").Str("query", query).
				Float64("match_index", decision.MatchIndex).Int("known", len(knownNames)).
				Str("reasoning", decision.Reasoning).Msg("match index out of range, treating as new product")
		} else if r.enableDebugLogging {
			log.Debug().Str("component", "resolver").Str("query", query).
				Str("reasoning", decision.Reasoning).Msg("no match, new product")
		}
		return query, nil
	}

	matched := knownNames[index-1]
	if r.enableDebugLogging {
		log.Debug().Str("component", "resolver").Str("query", query).Str("matched", matched).
			Str("reasoning", decision.Reasoning).Msg("matched known product")
	}
	return matched, nil
}

// validIndex accepts only whole numbers in [1, n]
func validIndex(raw float64, n int) (int, bool) {
	if raw != math.Trunc(raw) || raw < 1 || raw > float64(n) {
		return 0, false
	}
	return int(raw), true
}
