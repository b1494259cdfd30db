package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"news-analyzer/internal/domain"
)

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(pool *pgxpool.Pool) domain.CompanyRepository {
	return &companyRepository{pool: pool}
}

type dbExecutor interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func (r *companyRepository) getExecutor(ctx context.Context) dbExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *companyRepository) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	query := `
		SELECT id, name, COALESCE(article_count, 0), COALESCE(last_article_count, 0)
		FROM companies
		ORDER BY name ASC
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CurrentArticleCount, &c.LastArticleCount); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return companies, nil
}

func (r *companyRepository) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	query := `
		SELECT id, name, COALESCE(article_count, 0), COALESCE(last_article_count, 0), summary_24hrs
		FROM companies
		WHERE name = $1
	`
	row := r.getExecutor(ctx).QueryRow(ctx, query, name)

	var c domain.Company
	err := row.Scan(&c.ID, &c.Name, &c.CurrentArticleCount, &c.LastArticleCount, &c.Summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan company: %w", err)
	}
	return &c, nil
}

func (r *companyRepository) GetArticleCounts(ctx context.Context, companyID string) (int, int, error) {
	query := `
		SELECT COALESCE(article_count, 0), COALESCE(last_article_count, 0)
		FROM companies
		WHERE id = $1
	`
	row := r.getExecutor(ctx).QueryRow(ctx, query, companyID)

	var current, last int
	if err := row.Scan(&current, &last); err != nil {
		return 0, 0, fmt.Errorf("failed to scan article counts: %w", err)
	}
	return current, last, nil
}

func (r *companyRepository) UpdateLastArticleCount(ctx context.Context, companyID string, count int) error {
	query := `
		UPDATE companies
		SET last_article_count = $1, updated_at = NOW()
		WHERE id = $2
	`
	tag, err := r.getExecutor(ctx).Exec(ctx, query, count, companyID)
	if err != nil {
		return fmt.Errorf("failed to update last article count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %s not found", companyID)
	}
	return nil
}

// UpdateSummary stores the serialized analysis result. A nil payload clears
// the column so stale summaries do not outlive the news they describe.
func (r *companyRepository) UpdateSummary(ctx context.Context, companyID string, payload []byte) error {
	query := `
		UPDATE companies
		SET summary_24hrs = $1, updated_at = NOW()
		WHERE id = $2
	`
	var arg interface{}
	if payload != nil {
		arg = payload
	}
	tag, err := r.getExecutor(ctx).Exec(ctx, query, arg, companyID)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %s not found", companyID)
	}
	return nil
}
