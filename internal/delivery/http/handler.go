package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pricematrix/backend/internal/domain"
)

// PriceUsecase is the workflow the HTTP layer drives
type PriceUsecase interface {
	Lookup(ctx context.Context, query string) (*domain.PriceLookup, error)
	ListProducts(ctx context.Context) ([]domain.ProductView, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	prices PriceUsecase
}

// NewHandler creates a new HTTP handler
func NewHandler(prices PriceUsecase) *Handler {
	return &Handler{prices: prices}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricematrix-backend",
		"version": "1.0.0",
	})
}

// LookupPrice runs the price lookup workflow for one product description
func (h *Handler) LookupPrice(c *gin.Context) {
	if h.prices == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "price service not configured"})
		return
	}

	var req domain.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a non-empty \"query\""})
		return
	}

	result, err := h.prices.Lookup(c.Request.Context(), req.Query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListProducts returns every cached product with its freshness
func (h *Handler) ListProducts(c *gin.Context) {
	if h.prices == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "price service not configured"})
		return
	}

	products, err := h.prices.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		// driver and connection details stay in the log
		log.Error().Err(err).Str("component", "http").
			Str("request_id", c.GetString(requestIDKey)).Int("status", status).
			Msg("request failed")
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// statusForError maps workflow errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrMalformedLLMResponse),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
