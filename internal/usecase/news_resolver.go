package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"news-analyzer/internal/domain"
)

// NewsIDResolver finds the ids of news items published within a time window
// that mention a given company.
type NewsIDResolver struct {
	news   domain.NewsRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewNewsIDResolver creates a resolver over the news repository.
func NewNewsIDResolver(news domain.NewsRepository, logger *slog.Logger) *NewsIDResolver {
	return &NewsIDResolver{news: news, now: time.Now, logger: logger}
}

// Resolve returns the ids of news items from the last `hours` hours tagged
// with the company. Matching is exact first, substring second; the substring
// pass covers inconsistent company-name tagging upstream. A store failure or
// an empty match yields an empty slice, never an error.
func (r *NewsIDResolver) Resolve(ctx context.Context, companyName string, hours int) []string {
	since := r.now().Add(-time.Duration(hours) * time.Hour)

	items, err := r.news.ListNewsSince(ctx, since)
	if err != nil {
		r.logger.Warn("news_lookup_failed",
			slog.String("company", companyName),
			slog.Int("hours", hours),
			slog.String("error", err.Error()),
		)
		return nil
	}

	var ids []string
	for _, item := range items {
		if mentionsCompany(item.Companies, companyName) {
			ids = append(ids, item.ID)
		}
	}

	r.logger.Debug("news_ids_resolved",
		slog.String("company", companyName),
		slog.Int("fetched", len(items)),
		slog.Int("matched", len(ids)),
	)
	return ids
}

func mentionsCompany(tagged []string, name string) bool {
	for _, t := range tagged {
		if t == name {
			return true
		}
	}
	for _, t := range tagged {
		if strings.Contains(t, name) {
			return true
		}
	}
	return false
}
