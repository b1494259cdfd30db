package usecase

import (
	"context"
	"log/slog"

	"news-analyzer/internal/domain"
)

// SemanticRetriever runs vector-similarity search restricted to a candidate
// set of news ids. The candidate set narrows the search space to items the
// relational store already tagged as relevant; ranking within that set is
// purely by similarity to the synthesized query.
type SemanticRetriever struct {
	index  domain.PassageIndex
	logger *slog.Logger
}

// NewSemanticRetriever creates a retriever over the passage index.
func NewSemanticRetriever(index domain.PassageIndex, logger *slog.Logger) *SemanticRetriever {
	return &SemanticRetriever{index: index, logger: logger}
}

// Search returns passages ranked by descending similarity. An empty candidate
// set short-circuits without touching the backend; a backend error degrades
// to an empty result.
func (r *SemanticRetriever) Search(ctx context.Context, queryVector []float32, candidateIDs []string, topK int) []domain.RetrievedPassage {
	if len(candidateIDs) == 0 {
		r.logger.Debug("vector_search_skipped_no_candidates")
		return nil
	}

	passages, err := r.index.Search(ctx, queryVector, candidateIDs, topK)
	if err != nil {
		r.logger.Warn("vector_search_failed",
			slog.Int("candidates", len(candidateIDs)),
			slog.String("error", err.Error()),
		)
		return nil
	}

	r.logger.Debug("vector_search_completed",
		slog.Int("candidates", len(candidateIDs)),
		slog.Int("matches", len(passages)),
	)
	return passages
}
