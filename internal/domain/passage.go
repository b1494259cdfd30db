package domain

// PassageMetadata is the normalized metadata attached to an indexed passage.
// The index stores both legacy (title, content, published_at, url) and
// article-prefixed (article_title, text, article_published_time, article_url)
// key sets; repositories resolve the fallback chain so the rest of the system
// only ever sees these named fields.
type PassageMetadata struct {
	NewsID      string
	Title       string
	Content     string
	PublishedAt string
	Source      string
	URL         string
}

// RetrievedPassage is one vector-search match with its similarity score.
type RetrievedPassage struct {
	ID       string
	Score    float64
	Metadata PassageMetadata
}

// Source is a deduplicated, ranked citation entry surfaced alongside a digest.
type Source struct {
	NewsID      string  `json:"news_id"`
	Title       string  `json:"title"`
	Source      string  `json:"source"`
	PublishedAt string  `json:"published_at"`
	URL         string  `json:"url"`
	Score       float64 `json:"score"`
}
