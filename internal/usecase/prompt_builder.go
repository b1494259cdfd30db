package usecase

import (
	"fmt"
	"strings"

	"news-analyzer/internal/domain"
)

// shortContentThreshold marks passages whose content is too short to cite
// without the model pulling in surrounding context.
const shortContentThreshold = 200

// DigestPromptBuilder renders retrieved passages and the structured-extraction
// instructions into the prompts sent to the LLM.
type DigestPromptBuilder struct{}

// NewDigestPromptBuilder creates a prompt builder (currently stateless).
func NewDigestPromptBuilder() DigestPromptBuilder {
	return DigestPromptBuilder{}
}

// FormatPassages renders each passage into a delimited block exposing its real
// news id and full metadata, so citations can carry verifiable identifiers.
func (b DigestPromptBuilder) FormatPassages(passages []domain.RetrievedPassage) string {
	var sb strings.Builder
	for _, p := range passages {
		meta := p.Metadata
		newsID := meta.NewsID
		if newsID == "" {
			newsID = p.ID
		}

		sb.WriteString(fmt.Sprintf("===== NEWS ID: %s =====\n", newsID))
		sb.WriteString(fmt.Sprintf("Title: %s\n", meta.Title))
		sb.WriteString(fmt.Sprintf("Published: %s\n", meta.PublishedAt))
		sb.WriteString(fmt.Sprintf("Source: %s\n", meta.Source))
		sb.WriteString(fmt.Sprintf("URL: %s\n", meta.URL))
		sb.WriteString(fmt.Sprintf("Full content: %s\n", meta.Content))
		if len(meta.Content) < shortContentThreshold {
			sb.WriteString("[Note: this item is short; when citing it, preserve the surrounding context so the citation stays verifiable]\n")
		}
		sb.WriteString("==================\n\n")
	}
	return sb.String()
}

// BuildAnalysisPrompt composes the structured-extraction prompt. The model
// must separate facts from opinions, anchor every summary in a concrete
// event, attach citations with real news ids, and emit JSON only.
func (b DigestPromptBuilder) BuildAnalysisPrompt(companyName, newsContent string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Analyze the following recent news about %s, focusing on concrete events that actually happened.\n\n", companyName))
	sb.WriteString("Core requirements:\n")
	sb.WriteString("1. Each topic must describe a specific news event so the reader immediately knows what happened, not a broad theme bucket.\n")
	sb.WriteString("2. Each aspect must focus on concrete details of the event.\n")
	sb.WriteString("3. Content must include the key specifics: who, when, where, amounts, products, plans.\n")
	sb.WriteString("4. Citations must carry enough original text to support every key claim in the summary.\n\n")

	sb.WriteString(newsContent)
	sb.WriteString("\n")

	sb.WriteString("Output the analysis as JSON in exactly this shape:\n\n")
	sb.WriteString(digestSchemaExample(companyName))
	sb.WriteString("\n")

	sb.WriteString("Guidance:\n")
	sb.WriteString(fmt.Sprintf("- Put objectively reported events under \"facts\"; put predictions, evaluations and commentary about %s under \"opinions\".\n", companyName))
	sb.WriteString("- Prefer content with verifiable specifics (names, companies, products, amounts, dates).\n")
	sb.WriteString("- Stay objective; extract from the news, do not editorialize.\n")
	sb.WriteString("- Every citation's news_id must be one of the real NEWS IDs above, and its content must be an excerpt of the original text.\n\n")

	sb.WriteString("Hard requirements:\n")
	sb.WriteString("1. The output must be valid JSON.\n")
	sb.WriteString("2. Topics name concrete events, not broad themes.\n")
	sb.WriteString("3. Content carries concrete, verifiable information.\n")
	sb.WriteString("4. Citations give sufficient original-text support.\n")
	sb.WriteString("5. Output JSON only, with no other text.\n")

	return sb.String()
}

// BuildRepairPrompt asks the model to reformat malformed output into the
// required schema without altering its content.
func (b DigestPromptBuilder) BuildRepairPrompt(malformed string) string {
	var sb strings.Builder

	sb.WriteString("Fix the following malformed JSON so it becomes valid JSON.\n\n")
	sb.WriteString("Original text:\n")
	sb.WriteString(malformed)
	sb.WriteString("\n\n")
	sb.WriteString("Requirements:\n")
	sb.WriteString("1. Return only the repaired JSON, with no explanation or other text.\n")
	sb.WriteString("2. Keep the original data content; fix formatting problems only.\n")
	sb.WriteString("3. The result must contain both the \"facts\" and \"opinions\" arrays.\n")
	sb.WriteString("4. If a required field is missing from the original text, add it as an empty array.\n\n")
	sb.WriteString("Correct JSON structure example:\n")
	sb.WriteString(digestSchemaExample("the company"))

	return sb.String()
}

func digestSchemaExample(companyName string) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	sb.WriteString("  \"facts\": [\n")
	sb.WriteString("    {\n")
	sb.WriteString(fmt.Sprintf("      \"topic\": \"one sentence naming the concrete event (e.g. %s signs a partnership with X, %s launches product Y)\",\n", companyName, companyName))
	sb.WriteString("      \"summaries\": [\n")
	sb.WriteString("        {\n")
	sb.WriteString("          \"aspect\": \"core event information\",\n")
	sb.WriteString("          \"content\": \"who did what, when and where, amounts involved, concrete plans\",\n")
	sb.WriteString("          \"citations\": [\n")
	sb.WriteString("            {\"news_id\": \"a real news id from above\", \"content\": \"the original passage containing these specifics\"}\n")
	sb.WriteString("          ]\n")
	sb.WriteString("        }\n")
	sb.WriteString("      ]\n")
	sb.WriteString("    }\n")
	sb.WriteString("  ],\n")
	sb.WriteString("  \"opinions\": [\n")
	sb.WriteString("    {\n")
	sb.WriteString(fmt.Sprintf("      \"topic\": \"an evaluation or prediction about a specific %s event\",\n", companyName))
	sb.WriteString("      \"summaries\": [\n")
	sb.WriteString("        {\n")
	sb.WriteString("          \"aspect\": \"market or expert view\",\n")
	sb.WriteString("          \"content\": \"who holds the view, the predicted impact, the stated assessment\",\n")
	sb.WriteString("          \"citations\": [\n")
	sb.WriteString("            {\"news_id\": \"a real news id from above\", \"content\": \"the original passage containing this view\"}\n")
	sb.WriteString("          ]\n")
	sb.WriteString("        }\n")
	sb.WriteString("      ]\n")
	sb.WriteString("    }\n")
	sb.WriteString("  ]\n")
	sb.WriteString("}\n")
	return sb.String()
}
