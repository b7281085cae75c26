package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/enrichment"
	"catchup-feed/internal/resilience/circuitbreaker"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// OpenAIConfig configures the OpenAI extraction + embedding provider. The
// BaseURL is configurable so any OpenAI-compatible chat-completions
// endpoint can be targeted (spec.md §6's "LLM RPC (outbound)").
type OpenAIConfig struct {
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
}

// DefaultOpenAIConfig mirrors the teacher's OpenAI summarizer defaults,
// substituting an embeddings-capable chat model.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		ChatModel:      openai.GPT4oMini,
		EmbeddingModel: string(openai.SmallEmbedding3),
	}
}

// OpenAI implements enrichment.LLMProvider's extraction and embedding
// halves using go-openai, grounded on the teacher's OpenAI summarizer
// (internal/infra/summarizer/openai.go): same circuit breaker config,
// same chat-completion call shape.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         OpenAIConfig
}

// NewOpenAI builds an OpenAI provider. apiKey and config.BaseURL are
// sourced from environment configuration at wiring time.
func NewOpenAI(apiKey string, config OpenAIConfig) *OpenAI {
	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAI{
		client:         openai.NewClientWithConfig(clientConfig),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		config:         config,
	}
}

// Extract calls the chat-completions endpoint with the versioned
// extraction prompt and parses the tolerant-JSON response.
func (o *OpenAI) Extract(ctx context.Context, title, body string) (*enrichment.ExtractionResult, error) {
	prompt := enrichment.BuildExtractionPrompt(title, body)

	result, err := o.circuitBreaker.Execute(func() (interface{}, error) {
		return o.doExtract(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, fmt.Errorf("openai api unavailable: circuit breaker open")
		}
		return nil, err
	}
	return result.(*enrichment.ExtractionResult), nil
}

func (o *OpenAI) doExtract(ctx context.Context, prompt string) (*enrichment.ExtractionResult, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.config.ChatModel,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api returned empty response")
	}
	return enrichment.ParseExtraction(resp.Choices[0].Message.Content)
}

// Embed calls the embeddings endpoint with the configured model, sized to
// entity.EmbeddingDimension.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, enrichment.EmbedTimeout)
	defer cancel()

	start := time.Now()
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(o.config.EmbeddingModel),
		Dimensions: entity.EmbeddingDimension,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings api error (after %s): %w", time.Since(start), err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings api returned empty response")
	}
	return resp.Data[0].Embedding, nil
}
