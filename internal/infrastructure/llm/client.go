package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/pricematrix/backend/internal/domain"
)

// Supported genai backends
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// Config holds the LLM connection settings
type Config struct {
	Backend  string
	APIKey   string
	Project  string
	Location string
	BaseURL  string
	Timeout  time.Duration
}

// Prompt is one structured-output request: the response must be JSON matching Schema
type Prompt struct {
	Model  string
	System string
	User   string
	Schema *genai.Schema
}

// Generator turns a prompt into raw JSON text
type Generator interface {
	GenerateJSON(ctx context.Context, prompt Prompt) (string, error)
}

// Client is a Generator backed by the Gemini API or Vertex AI
type Client struct {
	client  *genai.Client
	timeout time.Duration
}

// NewClient creates a genai-backed client for cfg.Backend
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	clientCfg := &genai.ClientConfig{}
	switch cfg.Backend {
	case BackendGemini, "":
		clientCfg.Backend = genai.BackendGeminiAPI
		clientCfg.APIKey = cfg.APIKey
	case BackendVertex:
		clientCfg.Backend = genai.BackendVertexAI
		clientCfg.Project = cfg.Project
		clientCfg.Location = cfg.Location
	default:
		return nil, fmt.Errorf("unsupported LLM backend %q", cfg.Backend)
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init genai client: %w", err)
	}
	return NewClientFromGenAI(client, cfg.Timeout), nil
}

// NewClientFromGenAI wraps an existing genai client
func NewClientFromGenAI(c *genai.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{client: c, timeout: timeout}
}

// GenerateJSON runs one deterministic (temperature 0) JSON-mode generation
func (c *Client) GenerateJSON(ctx context.Context, prompt Prompt) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   prompt.Schema,
	}
	if prompt.System != "" {
		config.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	started := time.Now()
	resp, err := c.client.Models.GenerateContent(callCtx, prompt.Model, genai.Text(prompt.User), config)
	if err != nil {
		log.Warn().Str("component", "llm").Str("model", prompt.Model).Err(err).Msg("generation failed")
		return "", fmt.Errorf("%w: %s: %v", domain.ErrLLMUnavailable, prompt.Model, err)
	}

	text := resp.Text()
	log.Debug().Str("component", "llm").Str("model", prompt.Model).
		Dur("latency", time.Since(started)).Int("chars", len(text)).Msg("generation complete")
	return text, nil
}

// trimJSON strips whitespace and a markdown code fence some models wrap JSON in
func trimJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
