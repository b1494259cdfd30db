package report

import (
	"fmt"
	"strings"

	"news-analyzer/internal/domain"
)

const divider = "================================================================"

// Formatter renders analysis results as a plain-text report for terminals
// and log archives.
type Formatter struct{}

func NewFormatter() Formatter {
	return Formatter{}
}

// FormatResult renders one company's analysis.
func (f Formatter) FormatResult(result domain.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString(divider + "\n")
	sb.WriteString(fmt.Sprintf("Company: %s\n", result.Company))
	sb.WriteString(fmt.Sprintf("Time range: last %d hours\n", result.TimeRangeHours))
	sb.WriteString(fmt.Sprintf("Status: %s\n", result.Status))
	if result.NewsCount > 0 {
		sb.WriteString(fmt.Sprintf("News items: %d\n", result.NewsCount))
	}
	if result.Message != "" {
		sb.WriteString(fmt.Sprintf("Note: %s\n", result.Message))
	}
	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("Error: %s\n", result.Error))
	}
	sb.WriteString(divider + "\n")

	if result.Analysis == nil {
		return sb.String()
	}

	f.writeTopics(&sb, "FACTS", result.Analysis.Facts)
	f.writeTopics(&sb, "OPINIONS", result.Analysis.Opinions)
	f.writeSources(&sb, result.Sources)

	return sb.String()
}

// FormatRun renders a whole run, one section per analyzed company.
func (f Formatter) FormatRun(results []domain.AnalysisResult, analyzed, skipped, failed int) string {
	var sb strings.Builder

	for _, result := range results {
		sb.WriteString(f.FormatResult(result))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Run summary: %d analyzed, %d skipped, %d failed\n", analyzed, skipped, failed))
	return sb.String()
}

func (f Formatter) writeTopics(sb *strings.Builder, heading string, topics []domain.Topic) {
	if len(topics) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("\n%s\n", heading))
	for i, topic := range topics {
		sb.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, topic.Topic))
		for _, summary := range topic.Summaries {
			sb.WriteString(fmt.Sprintf("   [%s]\n", summary.Aspect))
			sb.WriteString(fmt.Sprintf("   %s\n", summary.Content))
			for _, citation := range summary.Citations {
				excerpt := citation.Content
				if len(excerpt) > 160 {
					excerpt = excerpt[:160] + "..."
				}
				sb.WriteString(fmt.Sprintf("   > (%s) %s\n", citation.NewsID, excerpt))
			}
		}
	}
}

func (f Formatter) writeSources(sb *strings.Builder, sources []domain.Source) {
	if len(sources) == 0 {
		return
	}

	sb.WriteString("\nSOURCES\n")
	for i, source := range sources {
		sb.WriteString(fmt.Sprintf("%d. %s (score %.3f)\n", i+1, source.Title, source.Score))
		if source.Source != "" || source.PublishedAt != "" {
			sb.WriteString(fmt.Sprintf("   %s %s\n", source.Source, source.PublishedAt))
		}
		sb.WriteString(fmt.Sprintf("   %s\n", source.URL))
	}
}
