package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeMetadata_ModernKeys(t *testing.T) {
	meta := decodeMetadata([]byte(`{
		"news_id": "n-1",
		"title": "Acme launches product",
		"content": "Full article text",
		"published_at": "2026-08-01T09:00:00Z",
		"source": "Example Wire",
		"url": "https://e.example/1"
	}`))

	assert.Equal(t, "n-1", meta.NewsID)
	assert.Equal(t, "Acme launches product", meta.Title)
	assert.Equal(t, "Full article text", meta.Content)
	assert.Equal(t, "2026-08-01T09:00:00Z", meta.PublishedAt)
	assert.Equal(t, "Example Wire", meta.Source)
	assert.Equal(t, "https://e.example/1", meta.URL)
}

func TestDecodeMetadata_LegacyArticleKeys(t *testing.T) {
	meta := decodeMetadata([]byte(`{
		"news_id": "n-2",
		"article_title": "Older ingestion format",
		"text": "Legacy body text",
		"article_published_time": "2025-01-15T12:00:00Z",
		"article_url": "https://e.example/2"
	}`))

	assert.Equal(t, "Older ingestion format", meta.Title)
	assert.Equal(t, "Legacy body text", meta.Content)
	assert.Equal(t, "2025-01-15T12:00:00Z", meta.PublishedAt)
	assert.Equal(t, "https://e.example/2", meta.URL)
}

func TestDecodeMetadata_PrefersLegacyKeyWhenBothPresent(t *testing.T) {
	meta := decodeMetadata([]byte(`{
		"article_title": "legacy title",
		"title": "modern title"
	}`))

	assert.Equal(t, "legacy title", meta.Title)
}

func TestDecodeMetadata_MalformedYieldsEmpty(t *testing.T) {
	meta := decodeMetadata([]byte(`not json`))

	assert.Empty(t, meta.NewsID)
	assert.Empty(t, meta.Title)
}
