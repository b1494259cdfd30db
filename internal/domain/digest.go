package domain

// AnalysisStatus classifies the outcome of one company's analysis.
type AnalysisStatus string

const (
	StatusSuccess        AnalysisStatus = "success"
	StatusNoNews         AnalysisStatus = "no_news"
	StatusNoVectorData   AnalysisStatus = "no_vector_data"
	StatusNoData         AnalysisStatus = "no_data"
	StatusPartialSuccess AnalysisStatus = "partial_success"
	StatusSkipped        AnalysisStatus = "skipped"
	StatusError          AnalysisStatus = "error"
)

// Citation anchors a summary in a verifiable excerpt of a specific news item.
type Citation struct {
	NewsID  string `json:"news_id"`
	Content string `json:"content"`
}

// Summary is one aspect of a topic with its supporting citations.
type Summary struct {
	Aspect    string     `json:"aspect"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations"`
}

// Topic groups summaries under a concrete news event.
type Topic struct {
	Topic     string    `json:"topic"`
	Summaries []Summary `json:"summaries"`
}

// Digest is the structured fact/opinion document produced by generation.
type Digest struct {
	Facts    []Topic        `json:"facts"`
	Opinions []Topic        `json:"opinions"`
	Status   AnalysisStatus `json:"status,omitempty"`
	Message  string         `json:"message,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// AnalysisResult is the per-company outcome of one analysis run.
// Analysis is nil for the no-content statuses.
type AnalysisResult struct {
	Company        string         `json:"company"`
	NewsCount      int            `json:"news_count"`
	Analysis       *Digest        `json:"analysis"`
	Sources        []Source       `json:"sources"`
	TimeRangeHours int            `json:"time_range_hours"`
	Status         AnalysisStatus `json:"status"`
	Message        string         `json:"message,omitempty"`
	Error          string         `json:"error,omitempty"`
	UpdatedAt      string         `json:"updated_at,omitempty"`
}
