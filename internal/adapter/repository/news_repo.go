package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"news-analyzer/internal/domain"
)

type newsRepository struct {
	pool *pgxpool.Pool
}

// NewNewsRepository creates a new NewsRepository.
func NewNewsRepository(pool *pgxpool.Pool) domain.NewsRepository {
	return &newsRepository{pool: pool}
}

func (r *newsRepository) ListNewsSince(ctx context.Context, since time.Time) ([]domain.NewsItem, error) {
	query := `
		SELECT id, COALESCE(title, ''), COALESCE(companies, '{}'), published_at
		FROM news
		WHERE published_at >= $1
		ORDER BY published_at DESC
	`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	var items []domain.NewsItem
	for rows.Next() {
		var item domain.NewsItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Companies, &item.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan news item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}
