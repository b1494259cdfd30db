package domain

import "time"

// Company is a tracked company whose news coverage gets analyzed.
// CurrentArticleCount is maintained by the ingestion pipeline; LastArticleCount
// is the checkpoint this system advances after each completed analysis.
type Company struct {
	ID                  string
	Name                string
	CurrentArticleCount int
	LastArticleCount    int
	// Summary holds the raw JSON persisted in summary_24hrs, nil when unset.
	// Only populated by lookups that ask for it.
	Summary []byte
}

// NewsItem is a news record from the relational store. Read-only here.
type NewsItem struct {
	ID          string
	Companies   []string
	PublishedAt time.Time
	Title       string
}
