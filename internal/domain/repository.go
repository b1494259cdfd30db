package domain

import (
	"context"
	"time"
)

// CompanyRepository defines the operations on the companies table.
// No transactional guarantees are assumed across calls; callers that need
// atomicity wrap calls in a TransactionManager.
type CompanyRepository interface {
	// ListCompanies returns every tracked company.
	ListCompanies(ctx context.Context) ([]Company, error)

	// GetByName retrieves a company by exact name, including its persisted
	// summary. Returns nil, nil when not found.
	GetByName(ctx context.Context, name string) (*Company, error)

	// GetArticleCounts reads the current and last-analyzed 24h article counts.
	GetArticleCounts(ctx context.Context, companyID string) (current, last int, err error)

	// UpdateLastArticleCount advances the analysis checkpoint.
	UpdateLastArticleCount(ctx context.Context, companyID string, count int) error

	// UpdateSummary stores the serialized analysis result in summary_24hrs.
	// A nil payload clears the column to NULL.
	UpdateSummary(ctx context.Context, companyID string, summary []byte) error
}

// NewsRepository reads news metadata from the relational store.
type NewsRepository interface {
	// ListNewsSince returns all news items published at or after the threshold.
	ListNewsSince(ctx context.Context, since time.Time) ([]NewsItem, error)
}

// PassageIndex performs vector-similarity search over indexed news passages.
type PassageIndex interface {
	// Search ranks passages by similarity to the query vector, restricted to
	// the candidate news ids. Results are ordered by descending score.
	Search(ctx context.Context, queryVector []float32, candidateNewsIDs []string, topK int) ([]RetrievedPassage, error)
}

// TransactionManager runs a function within a database transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
