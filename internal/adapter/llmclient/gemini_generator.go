package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"news-analyzer/internal/domain"
	"news-analyzer/internal/infra/httpclient"
)

const (
	geminiBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	generationTemperature = 0.2
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateContentRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// GeminiGenerator sends prompts to the Gemini generateContent endpoint with
// JSON-mode output requested.
type GeminiGenerator struct {
	BaseURL string
	Model   string
	APIKey  string
	Client  *http.Client
}

// NewGeminiGenerator constructs a generator for the given model.
func NewGeminiGenerator(apiKey, model string, timeout time.Duration) *GeminiGenerator {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeminiGenerator{
		BaseURL: geminiBaseURL,
		Model:   model,
		APIKey:  apiKey,
		Client:  httpclient.NewPooledClient(timeout),
	}
}

// Generate sends the prompt and returns the concatenated candidate text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (*domain.LLMResponse, error) {
	reqBody := generateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      generationTemperature,
			ResponseMimeType: "application/json",
		},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.BaseURL, "/"), g.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var genResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}
	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("generation response has no candidates")
	}

	var sb strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return &domain.LLMResponse{
		Text: strings.TrimSpace(sb.String()),
		Done: genResp.Candidates[0].FinishReason != "MAX_TOKENS",
	}, nil
}

// Version returns the wrapped model name.
func (g *GeminiGenerator) Version() string {
	return g.Model
}

var _ domain.LLMClient = (*GeminiGenerator)(nil)
