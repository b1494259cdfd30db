package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"news-analyzer/internal/domain"
	"news-analyzer/internal/infra/httpclient"
)

type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type embedContentRequest struct {
	Model                string        `json:"model"`
	Content              geminiContent `json:"content"`
	OutputDimensionality int           `json:"outputDimensionality,omitempty"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

// GeminiEmbedder encodes texts through the Gemini batchEmbedContents endpoint.
type GeminiEmbedder struct {
	BaseURL    string
	Model      string
	APIKey     string
	Dimensions int
	Client     *http.Client
}

// NewGeminiEmbedder constructs an embedder for the given model and output
// dimensionality.
func NewGeminiEmbedder(apiKey, model string, dimensions int, timeout time.Duration) *GeminiEmbedder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiEmbedder{
		BaseURL:    geminiBaseURL,
		Model:      model,
		APIKey:     apiKey,
		Dimensions: dimensions,
		Client:     httpclient.NewPooledClient(timeout),
	}
}

// Encode embeds the texts in one batch request, preserving input order.
func (e *GeminiEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	slog.Info("gemini_embed_started",
		slog.Int("text_count", len(texts)),
		slog.String("model", e.Model),
	)
	start := time.Now()

	reqBody := batchEmbedRequest{Requests: make([]embedContentRequest, len(texts))}
	for i, text := range texts {
		reqBody.Requests[i] = embedContentRequest{
			Model:                "models/" + e.Model,
			Content:              geminiContent{Parts: []geminiPart{{Text: text}}},
			OutputDimensionality: e.Dimensions,
		}
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents", strings.TrimRight(e.BaseURL, "/"), e.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", e.APIKey)

	resp, err := e.Client.Do(req)
	if err != nil {
		slog.Error("gemini_embed_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil, fmt.Errorf("failed to call embedding endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("gemini_embed_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil, fmt.Errorf("embedding endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var embedResp batchEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}

	embeddings := make([][]float32, len(embedResp.Embeddings))
	for i, emb := range embedResp.Embeddings {
		embeddings[i] = emb.Values
	}

	slog.Info("gemini_embed_completed",
		slog.Int("embedding_count", len(embeddings)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return embeddings, nil
}

// Version returns the wrapped model name.
func (e *GeminiEmbedder) Version() string {
	return e.Model
}

var _ domain.VectorEncoder = (*GeminiEmbedder)(nil)
