package usecase

import (
	"context"
	"sync"

	"github.com/pricematrix/backend/internal/domain"
)

type fakeMatcher struct {
	decision *domain.MatchDecision
	err      error
	calls    int
	lastList []string
}

func (m *fakeMatcher) MatchProduct(ctx context.Context, query string, knownNames []string) (*domain.MatchDecision, error) {
	m.calls++
	m.lastList = knownNames
	if m.err != nil {
		return nil, m.err
	}
	return m.decision, nil
}

type fakePages struct {
	mu      sync.Mutex
	errs    map[domain.Retailer]error
	queries map[domain.Retailer][]string
	order   []domain.Retailer
}

func (p *fakePages) FetchPageText(ctx context.Context, retailer domain.Retailer, query string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.queries == nil {
		p.queries = make(map[domain.Retailer][]string)
	}
	p.queries[retailer] = append(p.queries[retailer], query)
	p.order = append(p.order, retailer)
	if err := p.errs[retailer]; err != nil {
		return "", err
	}
	return "page:" + string(retailer), nil
}

func (p *fakePages) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, q := range p.queries {
		total += len(q)
	}
	return total
}

func (p *fakePages) fetchOrder() []domain.Retailer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Retailer(nil), p.order...)
}

// fakeExtractor answers by page text, so each retailer can be given its own price
type fakeExtractor struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
}

func (e *fakeExtractor) ExtractPrice(ctx context.Context, pageText, query string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.errs[pageText]; err != nil {
		return 0, err
	}
	return e.prices[pageText], nil
}

func newExtractor(amazon, flipkart float64) *fakeExtractor {
	return &fakeExtractor{prices: map[string]float64{
		"page:amazon":   amazon,
		"page:flipkart": flipkart,
	}}
}
