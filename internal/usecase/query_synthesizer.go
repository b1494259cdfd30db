package usecase

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"news-analyzer/internal/domain"
)

// EmbeddingDimensions is the fixed dimensionality of query vectors. The
// passage index is built with the same setting; a mismatch is a hard error.
const EmbeddingDimensions = 768

const defaultEmbedCacheSize = 128

// QuerySynthesizer builds the semantic-search query for a company and turns
// it into an embedding vector. Query text is deterministic per company, so
// embeddings are cached to avoid repeated backend calls.
type QuerySynthesizer struct {
	encoder domain.VectorEncoder
	cache   *lru.Cache[string, []float32]
	logger  *slog.Logger
}

// NewQuerySynthesizer creates a synthesizer with an LRU embedding cache.
func NewQuerySynthesizer(encoder domain.VectorEncoder, cacheSize int, logger *slog.Logger) *QuerySynthesizer {
	if cacheSize <= 0 {
		cacheSize = defaultEmbedCacheSize
	}
	cache, _ := lru.New[string, []float32](cacheSize)
	return &QuerySynthesizer{encoder: encoder, cache: cache, logger: logger}
}

// BuildQuery renders the retrieval query for a company.
func (s *QuerySynthesizer) BuildQuery(companyName string) string {
	return fmt.Sprintf("%s latest news, earnings reports, stock price and market dynamics", companyName)
}

// Embed converts text into a fixed-dimensionality vector. Backend failures
// and dimension mismatches surface as EmbeddingError; callers must treat that
// as a hard stop for the affected company.
func (s *QuerySynthesizer) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := s.cache.Get(text); ok {
		s.logger.Debug("embedding_cache_hit", slog.String("text", text))
		return cached, nil
	}

	vectors, err := s.encoder.Encode(ctx, []string{text})
	if err != nil {
		return nil, &domain.EmbeddingError{Err: err}
	}
	if len(vectors) != 1 {
		return nil, &domain.EmbeddingError{Err: fmt.Errorf("expected 1 embedding, got %d", len(vectors))}
	}
	if len(vectors[0]) != EmbeddingDimensions {
		return nil, &domain.EmbeddingError{Err: fmt.Errorf("expected %d dimensions, got %d", EmbeddingDimensions, len(vectors[0]))}
	}

	s.cache.Add(text, vectors[0])
	return vectors[0], nil
}
