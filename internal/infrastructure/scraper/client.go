package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/pricematrix/backend/internal/domain"
)

// DefaultUserAgent is a desktop Chrome user agent; retailers serve reduced pages to unknown agents
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds scraper settings
type Config struct {
	AmazonURL         string
	FlipkartURL       string
	UserAgent         string
	MaxChars          int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// searchParams maps each retailer to its search query parameter
var searchParams = map[domain.Retailer]string{
	domain.RetailerAmazon:   "k",
	domain.RetailerFlipkart: "q",
}

// Client fetches retailer search pages and cleans them for extraction
type Client struct {
	collector   *colly.Collector
	rateLimiter *rate.Limiter
	searchURLs  map[domain.Retailer]string
	maxChars    int
	debug       bool
}

// NewClient creates a scraper client. Fetches share one rate limiter.
func NewClient(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 2
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)

	return &Client{
		collector:   collector,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		searchURLs: map[domain.Retailer]string{
			domain.RetailerAmazon:   cfg.AmazonURL,
			domain.RetailerFlipkart: cfg.FlipkartURL,
		},
		maxChars: cfg.MaxChars,
	}
}

// SetDebug enables per-request logging of fetched pages
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SearchURL builds the retailer search URL for query; spaces encode as '+'
func (c *Client) SearchURL(retailer domain.Retailer, query string) (string, error) {
	base, ok := c.searchURLs[retailer]
	param, known := searchParams[retailer]
	if !ok || !known || base == "" {
		return "", fmt.Errorf("unsupported retailer %q", retailer)
	}
	params := url.Values{}
	params.Set(param, query)
	return fmt.Sprintf("%s?%s", base, params.Encode()), nil
}

// FetchPage returns the raw search results page for query
func (c *Client) FetchPage(ctx context.Context, retailer domain.Retailer, query string) ([]byte, error) {
	reqURL, err := c.SearchURL(retailer, query)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	// colly has no context support; bail out before the request if already cancelled
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collector := c.collector.Clone()
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		r.Headers.Set("Referer", "https://www.google.com/")
	})

	var (
		body     []byte
		status   int
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
	})
	collector.OnError(func(r *colly.Response, err error) {
		status = r.StatusCode
		fetchErr = err
	})

	if err := collector.Visit(reqURL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		log.Warn().Str("component", "scraper").Str("retailer", string(retailer)).
			Int("status", status).Err(fetchErr).Msg("page fetch failed")
		return nil, fmt.Errorf("%w: %s status %d: %v", domain.ErrFetchFailed, retailer, status, fetchErr)
	}

	if c.debug {
		log.Debug().Str("component", "scraper").Str("retailer", string(retailer)).
			Str("url", reqURL).Int("bytes", len(body)).Msg("page fetched")
	}
	return body, nil
}

// FetchPageText fetches the search page and reduces it to bounded plain text
func (c *Client) FetchPageText(ctx context.Context, retailer domain.Retailer, query string) (string, error) {
	body, err := c.FetchPage(ctx, retailer, query)
	if err != nil {
		return "", err
	}

	text, err := CleanPage(body, c.maxChars)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrFetchFailed, retailer, err)
	}

	if c.debug {
		log.Debug().Str("component", "scraper").Str("retailer", string(retailer)).
			Int("chars", len([]rune(text))).Msg("page cleaned")
	}
	return text, nil
}
