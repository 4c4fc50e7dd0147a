package domain

import "time"

// Retailer identifies one of the two supported e-commerce sources
type Retailer string

const (
	RetailerAmazon   Retailer = "amazon"
	RetailerFlipkart Retailer = "flipkart"
)

// Retailers lists the supported retailers in scrape order
var Retailers = []Retailer{RetailerAmazon, RetailerFlipkart}

// Lookup status strings reported to the caller
const (
	StatusFromCache     = "from cache"
	StatusUpdatedScrape = "updated via scrape"
)

// ProductRecord is the cached price knowledge for one canonical product name.
// A price of 0.0 means the retailer page did not contain the product.
type ProductRecord struct {
	ProductName   string    `json:"productName" db:"product_name"`
	PriceAmazon   float64   `json:"priceAmazon" db:"price_amazon"`
	PriceFlipkart float64   `json:"priceFlipkart" db:"price_flipkart"`
	LastUpdated   time.Time `json:"lastUpdated" db:"last_updated"`
}

// FreshAt reports whether the record was written on the same calendar date as now,
// in now's location. A record written at 23:59 is stale one minute later.
func (r *ProductRecord) FreshAt(now time.Time) bool {
	if r == nil || r.LastUpdated.IsZero() {
		return false
	}
	y1, m1, d1 := r.LastUpdated.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Price returns the stored price for a retailer
func (r *ProductRecord) Price(retailer Retailer) float64 {
	switch retailer {
	case RetailerAmazon:
		return r.PriceAmazon
	case RetailerFlipkart:
		return r.PriceFlipkart
	}
	return 0
}

// LookupRequest is the body of a price lookup request
type LookupRequest struct {
	Query string `json:"query" binding:"required"`
}

// PriceLookup is the result of one price lookup workflow run
type PriceLookup struct {
	ProductName   string    `json:"productName"`
	PriceAmazon   float64   `json:"priceAmazon"`
	PriceFlipkart float64   `json:"priceFlipkart"`
	Status        string    `json:"status"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// ProductView is a cached record annotated with its freshness
type ProductView struct {
	ProductRecord
	Fresh bool `json:"fresh"`
}

// MatchDecision is the parsed answer of the identity matching call.
// MatchIndex is 1-based into the known names; 0 means no match.
type MatchDecision struct {
	MatchIndex float64 `json:"match_index"`
	Reasoning  string  `json:"reasoning"`
}
