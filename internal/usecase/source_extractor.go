package usecase

import (
	"math"
	"sort"

	"news-analyzer/internal/domain"
)

// SourceExtractor turns retrieved passages into the deduplicated, ranked
// source list attached to an analysis result.
type SourceExtractor struct{}

// NewSourceExtractor creates an extractor instance (currently stateless).
func NewSourceExtractor() SourceExtractor {
	return SourceExtractor{}
}

// Extract deduplicates passages by URL (first occurrence wins, empty URLs are
// dropped), rounds scores to 3 decimal places, and sorts descending by score.
// The sort is stable so ties keep their input order.
func (SourceExtractor) Extract(passages []domain.RetrievedPassage) []domain.Source {
	seen := make(map[string]struct{}, len(passages))
	var sources []domain.Source

	for _, p := range passages {
		url := p.Metadata.URL
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}

		newsID := p.Metadata.NewsID
		if newsID == "" {
			newsID = p.ID
		}

		sources = append(sources, domain.Source{
			NewsID:      newsID,
			Title:       p.Metadata.Title,
			Source:      p.Metadata.Source,
			PublishedAt: p.Metadata.PublishedAt,
			URL:         url,
			Score:       math.Round(p.Score*1000) / 1000,
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Score > sources[j].Score
	})
	return sources
}
