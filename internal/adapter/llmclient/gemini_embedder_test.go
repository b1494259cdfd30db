package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiEmbedder_Encode(t *testing.T) {
	var capturedPath string
	var capturedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))

		_, _ = w.Write([]byte(`{
			"embeddings": [
				{"values": [0.1, 0.2, 0.3]},
				{"values": [0.4, 0.5, 0.6]}
			]
		}`))
	}))
	defer server.Close()

	emb := NewGeminiEmbedder("test-key", "text-embedding-004", 3, 10*time.Second)
	emb.BaseURL = server.URL

	vectors, err := emb.Encode(context.Background(), []string{"first", "second"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vectors[0])
	assert.Equal(t, []float32{0.4, 0.5, 0.6}, vectors[1])

	assert.Equal(t, "/models/text-embedding-004:batchEmbedContents", capturedPath)

	requests := capturedBody["requests"].([]any)
	require.Len(t, requests, 2)
	first := requests[0].(map[string]any)
	assert.Equal(t, "models/text-embedding-004", first["model"])
	assert.Equal(t, float64(3), first["outputDimensionality"])
}

func TestGeminiEmbedder_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid key"}`, http.StatusForbidden)
	}))
	defer server.Close()

	emb := NewGeminiEmbedder("bad-key", "text-embedding-004", 768, 10*time.Second)
	emb.BaseURL = server.URL

	_, err := emb.Encode(context.Background(), []string{"text"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
