package usecase

import (
	"context"
	"fmt"

	"github.com/pricematrix/backend/internal/domain"
)

// PriceFetcher scrapes one retailer and extracts the price of a product from the page
type PriceFetcher struct {
	pages     domain.PageFetcher
	extractor domain.PriceExtractor
}

// NewPriceFetcher combines a page fetcher and a price extractor
func NewPriceFetcher(pages domain.PageFetcher, extractor domain.PriceExtractor) *PriceFetcher {
	return &PriceFetcher{pages: pages, extractor: extractor}
}

// FetchPrice returns the current price of query at retailer; 0.0 means not listed
func (f *PriceFetcher) FetchPrice(ctx context.Context, retailer domain.Retailer, query string) (float64, error) {
	text, err := f.pages.FetchPageText(ctx, retailer, query)
	if err != nil {
		return 0, err
	}

	price, err := f.extractor.ExtractPrice(ctx, text, query)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", retailer, err)
	}
	return price, nil
}
