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

const endpointIdentityResolution = "identity_resolution"

const matcherTemplate = `You are a strict product matcher.
User Query: %q
Existing Products:
%s

MATCHING RULES BY CATEGORY:

Electronics (TVs, Monitors, Laptops):
- Different screen sizes = DIFFERENT products (43" ≠ 55" ≠ 65")
- Different storage/RAM = DIFFERENT products (128GB ≠ 256GB, 8GB RAM ≠ 16GB RAM)
- Examples: "Sony 43 inch TV" ≠ "Sony 55 inch TV"

Phones/Tablets:
- Different storage/RAM = DIFFERENT products (iPhone 15 128GB ≠ iPhone 15 256GB)
- Different colors = SAME product (iPhone 15 Black = iPhone 15 White)

Clothing/Shoes:
- Different sizes = DIFFERENT products (Size 8 ≠ Size 10)
- Different colors = SAME product (Red Shoe = Blue Shoe of same model)

General Rule:
- Different MODEL NAMES = DIFFERENT products (Adidas Jauntza ≠ Adidas Supernova)
- Only COSMETIC differences (color) = SAME product

Return ONLY JSON: {"match_index": number_or_0, "reasoning": "brief explanation"}`

var matchSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"match_index": {Type: genai.TypeInteger, Description: "1-based index of the matching product, 0 for none"},
		"reasoning":   {Type: genai.TypeString},
	},
	Required: []string{"match_index", "reasoning"},
}

// Matcher asks an LLM whether a query names an already known product
type Matcher struct {
	gen   Generator
	model string
}

// NewMatcher creates a product matcher that calls model through gen
func NewMatcher(gen Generator, model string) *Matcher {
	return &Matcher{gen: gen, model: model}
}

// MatchProduct presents knownNames (1-indexed) and query to the LLM and returns its decision.
// The index is returned as given; range checking belongs to the caller.
func (m *Matcher) MatchProduct(ctx context.Context, query string, knownNames []string) (*domain.MatchDecision, error) {
	raw, err := m.gen.GenerateJSON(ctx, Prompt{
		Model:  m.model,
		User:   BuildMatchPrompt(query, knownNames),
		Schema: matchSchema,
	})
	if err != nil {
		return nil, err
	}
	return ParseMatch(raw)
}

// BuildMatchPrompt renders the matching rubric with a numbered product list
func BuildMatchPrompt(query string, knownNames []string) string {
	var list strings.Builder
	for i, name := range knownNames {
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "%d. %s", i+1, name)
	}
	return fmt.Sprintf(matcherTemplate, query, list.String())
}

// ParseMatch decodes a {"match_index": int, "reasoning": string} response.
// A missing index means no match; a non-numeric one is malformed.
func ParseMatch(raw string) (*domain.MatchDecision, error) {
	var payload struct {
		MatchIndex *float64 `json:"match_index"`
		Reasoning  string   `json:"reasoning"`
	}
	text := trimJSON(raw)
	if !strings.HasPrefix(text, "{") {
		return nil, malformed(endpointIdentityResolution, raw, errors.New("response is not a JSON object"))
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, malformed(endpointIdentityResolution, raw, err)
	}

	decision := &domain.MatchDecision{Reasoning: payload.Reasoning}
	if payload.MatchIndex != nil {
		decision.MatchIndex = *payload.MatchIndex
	}
	return decision, nil
}
