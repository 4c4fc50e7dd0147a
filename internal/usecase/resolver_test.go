package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricematrix/backend/internal/domain"
)

func TestResolver_EmptyCatalogSkipsMatcher(t *testing.T) {
	matcher := &fakeMatcher{decision: &domain.MatchDecision{MatchIndex: 1}}
	resolver := NewResolver(matcher, ResolverConfig{})

	name, err := resolver.Resolve(context.Background(), "iPhone 15 128GB Black", nil)

	require.NoError(t, err)
	assert.Equal(t, "iPhone 15 128GB Black", name)
	assert.Zero(t, matcher.calls)
}

func TestResolver_IndexMapping(t *testing.T) {
	known := []string{"A", "B", "C"}

	tests := []struct {
		name     string
		index    float64
		expected string
	}{
		{name: "first", index: 1, expected: "A"},
		{name: "second", index: 2, expected: "B"},
		{name: "last", index: 3, expected: "C"},
		{name: "no match", index: 0, expected: "query"},
		{name: "past end", index: 99, expected: "query"},
		{name: "one past end", index: 4, expected: "query"},
		{name: "negative", index: -1, expected: "query"},
		{name: "fractional", index: 1.5, expected: "query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matcher := &fakeMatcher{decision: &domain.MatchDecision{MatchIndex: tt.index, Reasoning: "test"}}
			resolver := NewResolver(matcher, ResolverConfig{EnableDebugLogging: true})

			name, err := resolver.Resolve(context.Background(), "query", known)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
			assert.Equal(t, 1, matcher.calls)
			assert.Equal(t, known, matcher.lastList)
		})
	}
}

func TestResolver_MatcherFailure(t *testing.T) {
	malformed := &domain.MalformedResponseError{Endpoint: "identity_resolution", Raw: "oops", Err: errors.New("not json")}
	resolver := NewResolver(&fakeMatcher{err: malformed}, ResolverConfig{})

	_, err := resolver.Resolve(context.Background(), "query", []string{"A"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedLLMResponse)
}

func TestValidIndex(t *testing.T) {
	tests := []struct {
		raw   float64
		n     int
		index int
		ok    bool
	}{
		{raw: 1, n: 1, index: 1, ok: true},
		{raw: 0, n: 1},
		{raw: 2, n: 1},
		{raw: 2.0000001, n: 5},
		{raw: -3, n: 5},
	}

	for _, tt := range tests {
		index, ok := validIndex(tt.raw, tt.n)
		assert.Equal(t, tt.ok, ok, "raw=%v n=%d", tt.raw, tt.n)
		assert.Equal(t, tt.index, index, "raw=%v n=%d", tt.raw, tt.n)
	}
}
