package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when the product query is empty
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRecordNotFound is returned when no cached record exists for a product name
	ErrRecordNotFound = errors.New("product record not found")

	// ErrMalformedLLMResponse is returned when LLM output does not match the expected schema
	ErrMalformedLLMResponse = errors.New("malformed LLM response")

	// ErrLLMUnavailable is returned when the LLM request itself fails
	ErrLLMUnavailable = errors.New("LLM request failed")

	// ErrFetchFailed is returned when a retailer page cannot be fetched
	ErrFetchFailed = errors.New("retailer page fetch failed")

	// ErrStoreUnavailable is returned when the price store cannot be reached
	ErrStoreUnavailable = errors.New("price store unavailable")

	// ErrRateLimited is returned when a client exceeds its request budget
	ErrRateLimited = errors.New("rate limit exceeded")
)

// MalformedResponseError carries the raw LLM text that failed to parse.
// It matches ErrMalformedLLMResponse with errors.Is.
type MalformedResponseError struct {
	Endpoint string
	Raw      string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedLLMResponse, e.Endpoint, e.Err)
}

func (e *MalformedResponseError) Unwrap() []error {
	return []error{ErrMalformedLLMResponse, e.Err}
}
