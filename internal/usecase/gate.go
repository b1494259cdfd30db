package usecase

import (
	"context"
	"log/slog"

	"news-analyzer/internal/domain"
)

// ArticleCountGate decides whether a company needs re-analysis by comparing
// its current 24h article count against the checkpoint from the last run.
// Any change, up or down, triggers analysis.
type ArticleCountGate struct {
	companies domain.CompanyRepository
	logger    *slog.Logger
}

// NewArticleCountGate creates a gate backed by the company repository.
func NewArticleCountGate(companies domain.CompanyRepository, logger *slog.Logger) *ArticleCountGate {
	return &ArticleCountGate{companies: companies, logger: logger}
}

// ShouldAnalyze reports whether the company's article count changed since the
// last analysis, along with the current count observed. A failed read fails
// open: the company gets analyzed rather than silently skipped.
func (g *ArticleCountGate) ShouldAnalyze(ctx context.Context, companyID string) (bool, int) {
	current, last, err := g.companies.GetArticleCounts(ctx, companyID)
	if err != nil {
		g.logger.Warn("gate_read_failed",
			slog.String("company_id", companyID),
			slog.String("error", err.Error()),
		)
		return true, 0
	}

	g.logger.Debug("gate_checked",
		slog.String("company_id", companyID),
		slog.Int("current", current),
		slog.Int("last", last),
	)
	return current != last, current
}

// Commit advances the checkpoint to the count captured at gate-check time.
// Called for every terminal status except skipped, including zero-article
// runs, so an unchanged zero does not re-trigger analysis.
func (g *ArticleCountGate) Commit(ctx context.Context, companyID string, count int) error {
	if err := g.companies.UpdateLastArticleCount(ctx, companyID, count); err != nil {
		return &domain.PersistenceError{Op: "checkpoint commit", Err: err}
	}
	return nil
}
