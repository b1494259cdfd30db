package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"news-analyzer/internal/domain"
)

type passageIndex struct {
	pool *pgxpool.Pool
}

// NewPassageIndex creates the pgvector-backed PassageIndex.
func NewPassageIndex(pool *pgxpool.Pool) domain.PassageIndex {
	return &passageIndex{pool: pool}
}

// Search ranks passages by cosine similarity against the query vector,
// restricted to the given news ids. Filter-then-rank: the id restriction is
// applied before ordering so the top-k slots are never wasted on passages
// outside the candidate set.
func (r *passageIndex) Search(ctx context.Context, queryVector []float32, candidateNewsIDs []string, topK int) ([]domain.RetrievedPassage, error) {
	if len(candidateNewsIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, metadata, 1 - (embedding <=> $1) AS score
		FROM news_passages
		WHERE metadata->>'news_id' = ANY($2)
		ORDER BY embedding <=> $1
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(queryVector), candidateNewsIDs, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}
	defer rows.Close()

	var passages []domain.RetrievedPassage
	for rows.Next() {
		var (
			p       domain.RetrievedPassage
			rawMeta []byte
		)
		if err := rows.Scan(&p.ID, &rawMeta, &p.Score); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		p.Metadata = decodeMetadata(rawMeta)
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return passages, nil
}

// decodeMetadata maps the stored JSONB onto the passage metadata. Older
// ingestion runs wrote article_* key names, so each field falls back through
// the historical aliases.
func decodeMetadata(raw []byte) domain.PassageMetadata {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.PassageMetadata{}
	}

	return domain.PassageMetadata{
		NewsID:      metaString(fields, "news_id"),
		Title:       metaString(fields, "article_title", "title"),
		Content:     metaString(fields, "text", "content"),
		PublishedAt: metaString(fields, "article_published_time", "published_at"),
		Source:      metaString(fields, "source"),
		URL:         metaString(fields, "article_url", "url"),
	}
}

func metaString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
