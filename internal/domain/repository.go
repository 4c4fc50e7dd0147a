package domain

import "context"

// PriceStore persists the latest prices per canonical product name
type PriceStore interface {
	// ListNames returns every known product name in a stable order
	ListNames(ctx context.Context) ([]string, error)
	// Lookup returns the record for name or ErrRecordNotFound
	Lookup(ctx context.Context, name string) (*ProductRecord, error)
	// Upsert writes both prices under name and stamps last_updated with the store clock
	Upsert(ctx context.Context, name string, priceAmazon, priceFlipkart float64) (*ProductRecord, error)
	// List returns every record ordered by product name
	List(ctx context.Context) ([]ProductRecord, error)
}

// PageFetcher fetches a retailer search page for a query and reduces it to bounded plain text
type PageFetcher interface {
	FetchPageText(ctx context.Context, retailer Retailer, query string) (string, error)
}

// PriceExtractor asks an LLM for the price of the exact product variant in page text.
// A price of 0.0 is a valid "not found" answer.
type PriceExtractor interface {
	ExtractPrice(ctx context.Context, pageText, query string) (float64, error)
}

// ProductMatcher asks an LLM whether query names one of the known products
type ProductMatcher interface {
	MatchProduct(ctx context.Context, query string, knownNames []string) (*MatchDecision, error)
}
