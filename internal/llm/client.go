// path: internal/llm/client.go
// Package llm implements LLMClient (spec §4.C): text completion and
// embedding against a primary/fallback engine pair, treated as a black-box
// text/embedding producer reached over net/http the same way the teacher's
// social adapters call their providers by hand.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/techappsUT/socialqueue-ucb/internal/apperr"
	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
)

// DefaultTimeout is the mandatory per-call timeout (spec §5).
const DefaultTimeout = 60 * time.Second

// Engine names an LLM provider configured for this deployment.
type Engine string

// EngineConfig carries a single engine's endpoint and credential.
type EngineConfig struct {
	Name       Engine
	BaseURL    string
	APIKey     string
	Model      string
}

// Client calls out to the primary/fallback/embedding engines over HTTP.
type Client struct {
	http       *http.Client
	primary    EngineConfig
	fallback   EngineConfig
	embedding  EngineConfig
	logger     common.Logger
}

// New constructs a Client from the three configured engine slots
// (internal/config.LLMConfig feeds these three).
func New(primary, fallback, embedding EngineConfig, logger common.Logger) *Client {
	return &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		primary:   primary,
		fallback:  fallback,
		embedding: embedding,
		logger:    logger,
	}
}

type completionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// Generate calls the named engine ("primary" or "fallback") and returns the
// produced text only; the caller stamps Revision.engineUsed from the engine
// it passed in.
func (c *Client) Generate(ctx context.Context, engine Engine, prompt string) (string, error) {
	cfg := c.configFor(engine)
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	body, err := json.Marshal(completionRequest{Model: cfg.Model, Prompt: prompt})
	if err != nil {
		return "", apperr.Wrap(apperr.ClassValidation, "marshal generate request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(apperr.ClassValidation, "build generate request", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", apperr.Wrap(apperr.ClassNetwork, "generate call timed out", err)
		}
		return "", apperr.Wrap(apperr.ClassNetwork, "generate call failed", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return "", err
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Wrap(apperr.ClassProvider, "decode generate response", err)
	}
	return out.Text, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Vector []float32 `json:"vector"`
}

// Embed always uses the configured embedding engine (spec §4.C: "embed
// uses a single engine").
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	body, err := json.Marshal(embeddingRequest{Model: c.embedding.Model, Input: text})
	if err != nil {
		return nil, apperr.Wrap(apperr.ClassValidation, "marshal embed request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.embedding.BaseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Wrap(apperr.ClassValidation, "build embed request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.embedding.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperr.Wrap(apperr.ClassNetwork, "embed call timed out", err)
		}
		return nil, apperr.Wrap(apperr.ClassNetwork, "embed call failed", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperr.Wrap(apperr.ClassProvider, "decode embed response", err)
	}
	return out.Vector, nil
}

func (c *Client) configFor(engine Engine) EngineConfig {
	if engine == c.fallback.Name {
		return c.fallback
	}
	return c.primary
}

// classifyStatus maps an HTTP status to the taxonomy ContentPipeline's
// engine-fallback decision relies on (spec §4.C/§4.G: rate-limit, timeout
// and 5xx are "provider-quality failures").
func classifyStatus(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests:
		return apperr.New(apperr.ClassRateLimit, "llm engine rate limited")
	case status >= 500:
		return apperr.New(apperr.ClassProvider, fmt.Sprintf("llm engine returned %d", status))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.New(apperr.ClassAuth, "llm engine rejected credentials")
	default:
		return apperr.New(apperr.ClassProvider, fmt.Sprintf("llm engine returned %d", status))
	}
}
