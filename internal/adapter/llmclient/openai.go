package llmclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"news-analyzer/internal/domain"
)

// OpenAIGenerator adapts OpenAI chat completions to the LLMClient interface.
type OpenAIGenerator struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewOpenAIGenerator constructs a generator for the given chat model.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIGenerator{
		client: &client,
		model:  openai.ChatModel(model),
	}
}

// Generate sends the prompt as a single user message.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (*domain.LLMResponse, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	choice := resp.Choices[0]
	return &domain.LLMResponse{
		Text: strings.TrimSpace(choice.Message.Content),
		Done: choice.FinishReason != "length",
	}, nil
}

// Version returns the wrapped model name.
func (g *OpenAIGenerator) Version() string {
	return string(g.model)
}

var _ domain.LLMClient = (*OpenAIGenerator)(nil)

// OpenAIEmbedder adapts OpenAI embeddings to the VectorEncoder interface.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIEmbedder constructs an embedder with a fixed output
// dimensionality so vectors stay compatible with the index schema.
func NewOpenAIEmbedder(apiKey, model string, dimensions int) *OpenAIEmbedder {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIEmbedder{
		client:     &client,
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
	}
}

// Encode embeds the texts in one batch request, preserving input order.
func (e *OpenAIEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      e.model,
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions: openai.Int(int64(e.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vector := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vector[j] = float32(v)
		}
		embeddings[i] = vector
	}
	return embeddings, nil
}

// Version returns the wrapped model name.
func (e *OpenAIEmbedder) Version() string {
	return string(e.model)
}

var _ domain.VectorEncoder = (*OpenAIEmbedder)(nil)
