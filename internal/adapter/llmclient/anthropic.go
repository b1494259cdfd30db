package llmclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"news-analyzer/internal/domain"
)

const anthropicMaxTokens = 8192

// AnthropicGenerator adapts the Anthropic Messages API to the LLMClient
// interface. Anthropic offers no embedding endpoint, so this provider covers
// generation only.
type AnthropicGenerator struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicGenerator constructs a generator for the given model.
func NewAnthropicGenerator(apiKey, model string) *AnthropicGenerator {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicGenerator{
		client: &client,
		model:  anthropic.Model(model),
	}
}

// Generate sends the prompt as a single user message and concatenates the
// text blocks of the reply.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (*domain.LLMResponse, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("no response from anthropic")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}

	return &domain.LLMResponse{
		Text: strings.TrimSpace(sb.String()),
		Done: resp.StopReason != anthropic.StopReasonMaxTokens,
	}, nil
}

// Version returns the wrapped model name.
func (g *AnthropicGenerator) Version() string {
	return string(g.model)
}

var _ domain.LLMClient = (*AnthropicGenerator)(nil)
