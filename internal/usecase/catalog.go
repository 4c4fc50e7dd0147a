package usecase

import (
	"context"
	"time"

	"github.com/pricematrix/backend/internal/domain"
)

// Catalog is the read-only view of the price store; it needs no LLM or scraper
type Catalog struct {
	store domain.PriceStore
	now   func() time.Time
}

// NewCatalog creates a catalog over store; now defaults to time.Now
func NewCatalog(store domain.PriceStore, now func() time.Time) *Catalog {
	if now == nil {
		now = time.Now
	}
	return &Catalog{store: store, now: now}
}

// ListProducts returns every cached record with its freshness as of now
func (c *Catalog) ListProducts(ctx context.Context) ([]domain.ProductView, error) {
	records, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now()
	views := make([]domain.ProductView, 0, len(records))
	for i := range records {
		views = append(views, domain.ProductView{
			ProductRecord: records[i],
			Fresh:         records[i].FreshAt(now),
		})
	}
	return views, nil
}
