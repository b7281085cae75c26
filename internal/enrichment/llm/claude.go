// Package llm provides the two LLMProvider implementations the
// enrichment engine can be configured with, grounded on the teacher's
// internal/infra/summarizer package (client construction, circuit breaker
// + retry wiring, structured config-from-env).
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"catchup-feed/internal/enrichment"
	"catchup-feed/internal/resilience/circuitbreaker"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"
)

// ClaudeConfig configures the Claude extraction provider.
type ClaudeConfig struct {
	Model     string
	MaxTokens int
}

// DefaultClaudeConfig mirrors the teacher's LoadClaudeConfig defaults,
// substituting a newer model identifier.
func DefaultClaudeConfig() ClaudeConfig {
	return ClaudeConfig{
		Model:     string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens: 2048,
	}
}

// Claude implements enrichment.LLMProvider's extraction half using
// Anthropic's Messages API. Anthropic has no embeddings endpoint, so
// Embed is delegated to an injected EmbeddingCaller (typically an
// OpenAI-compatible embeddings-only client) — see DESIGN.md.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         ClaudeConfig
	embedder       EmbeddingCaller
}

// EmbeddingCaller is the minimal embedding capability Claude delegates to.
type EmbeddingCaller interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewClaude builds a Claude provider. embedder may be an *OpenAI provider
// constructed solely for its Embed method, or any other EmbeddingCaller.
func NewClaude(apiKey string, config ClaudeConfig, embedder EmbeddingCaller) *Claude {
	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		config:         config,
		embedder:       embedder,
	}
}

// Extract calls Claude with the versioned extraction prompt and parses the
// tolerant-JSON response.
func (c *Claude) Extract(ctx context.Context, title, body string) (*enrichment.ExtractionResult, error) {
	prompt := enrichment.BuildExtractionPrompt(title, body)

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doExtract(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, fmt.Errorf("claude api unavailable: circuit breaker open")
		}
		return nil, err
	}
	return result.(*enrichment.ExtractionResult), nil
}

func (c *Claude) doExtract(ctx context.Context, prompt string) (*enrichment.ExtractionResult, error) {
	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return nil, fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return nil, fmt.Errorf("claude api returned unexpected response type")
	}

	slog.Debug("claude extraction completed", slog.Duration("duration", duration))
	return enrichment.ParseExtraction(textBlock.Text)
}

// Embed delegates to the configured EmbeddingCaller.
func (c *Claude) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.embedder == nil {
		return nil, fmt.Errorf("claude provider: no embedding caller configured")
	}
	return c.embedder.Embed(ctx, text)
}
