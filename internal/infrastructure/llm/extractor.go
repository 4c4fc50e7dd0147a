package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/pricematrix/backend/internal/domain"
)

const endpointPriceExtraction = "price_extraction"

const extractorInstruction = `You are a data extractor. Extract the PRICE for the specific product variant requested. ` +
	`Return ONLY a JSON object: {"price": float}. If not found, return {"price": 0.0}.`

var priceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"price": {Type: genai.TypeNumber, Description: "price of the exact variant, 0.0 when absent"},
	},
	Required: []string{"price"},
}

// Extractor reads a product price out of cleaned search results text
type Extractor struct {
	gen   Generator
	model string
}

// NewExtractor creates a price extractor that calls model through gen
func NewExtractor(gen Generator, model string) *Extractor {
	return &Extractor{gen: gen, model: model}
}

// ExtractPrice returns the price of query in pageText; 0.0 means not found
func (e *Extractor) ExtractPrice(ctx context.Context, pageText, query string) (float64, error) {
	raw, err := e.gen.GenerateJSON(ctx, Prompt{
		Model:  e.model,
		System: extractorInstruction,
		User:   fmt.Sprintf("Query: %s\n\nSearch Results Text: %s", query, pageText),
		Schema: priceSchema,
	})
	if err != nil {
		return 0, err
	}
	return ParsePrice(raw)
}

// ParsePrice decodes a {"price": float} response.
// A missing or negative price is malformed; 0.0 is a valid "not found".
func ParsePrice(raw string) (float64, error) {
	var payload struct {
		Price *float64 `json:"price"`
	}
	text := trimJSON(raw)
	if !strings.HasPrefix(text, "{") {
		return 0, malformed(endpointPriceExtraction, raw, errors.New("response is not a JSON object"))
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return 0, malformed(endpointPriceExtraction, raw, err)
	}
	if payload.Price == nil {
		return 0, malformed(endpointPriceExtraction, raw, errors.New("missing price field"))
	}
	if *payload.Price < 0 {
		return 0, malformed(endpointPriceExtraction, raw, fmt.Errorf("negative price %v", *payload.Price))
	}
	return *payload.Price, nil
}

func malformed(endpoint, raw string, err error) error {
	return &domain.MalformedResponseError{Endpoint: endpoint, Raw: raw, Err: err}
}
