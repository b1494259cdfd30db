package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"news-analyzer/internal/domain"
)

// DigestValidator parses and structurally checks the JSON emitted by the LLM.
// LLM output is not contractually reliable JSON, so parsing tries three
// shapes in order: the raw text, the text with Markdown code fences stripped,
// and the first balanced {...} span inside it.
type DigestValidator struct{}

// NewDigestValidator creates a validator instance (currently stateless).
func NewDigestValidator() DigestValidator {
	return DigestValidator{}
}

// Validate runs the parse ladder and the recursive structure check, returning
// the decoded digest on success.
func (v DigestValidator) Validate(raw string) (*domain.Digest, error) {
	candidate, data, err := v.parse(raw)
	if err != nil {
		return nil, err
	}
	if err := validateDigestShape(data); err != nil {
		return nil, err
	}

	var digest domain.Digest
	if err := json.Unmarshal([]byte(candidate), &digest); err != nil {
		return nil, fmt.Errorf("failed to decode digest: %w", err)
	}
	if digest.Facts == nil {
		digest.Facts = []domain.Topic{}
	}
	if digest.Opinions == nil {
		digest.Opinions = []domain.Topic{}
	}
	return &digest, nil
}

// parse returns the JSON substring that parsed and its generic decoding.
func (v DigestValidator) parse(raw string) (string, map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil, errors.New("llm response is empty")
	}

	if data, ok := decodeObject(trimmed); ok {
		return trimmed, data, nil
	}

	unfenced := stripCodeFences(trimmed)
	if data, ok := decodeObject(unfenced); ok {
		return unfenced, data, nil
	}

	// Last resort: the span from the first '{' to the last '}'.
	start := strings.Index(unfenced, "{")
	end := strings.LastIndex(unfenced, "}")
	if start >= 0 && end > start {
		span := unfenced[start : end+1]
		if data, ok := decodeObject(span); ok {
			return span, data, nil
		}
	}

	return "", nil, errors.New("no parseable JSON object in llm response")
}

func decodeObject(text string) (map[string]any, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, false
	}
	return data, true
}

func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// validateDigestShape checks the candidate recursively down to citation
// level. A missing key anywhere is treated the same as a parse failure.
func validateDigestShape(data map[string]any) error {
	for _, section := range []string{"facts", "opinions"} {
		raw, ok := data[section]
		if !ok {
			return fmt.Errorf("missing %q", section)
		}
		topics, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("%q must be an array", section)
		}
		if err := validateTopics(section, topics); err != nil {
			return err
		}
	}
	return nil
}

func validateTopics(section string, topics []any) error {
	for i, rawTopic := range topics {
		topic, ok := rawTopic.(map[string]any)
		if !ok {
			return fmt.Errorf("%s[%d] must be an object", section, i)
		}
		if _, ok := topic["topic"]; !ok {
			return fmt.Errorf("%s[%d] missing topic", section, i)
		}
		rawSummaries, ok := topic["summaries"]
		if !ok {
			return fmt.Errorf("%s[%d] missing summaries", section, i)
		}
		summaries, ok := rawSummaries.([]any)
		if !ok {
			return fmt.Errorf("%s[%d].summaries must be an array", section, i)
		}
		for j, rawSummary := range summaries {
			summary, ok := rawSummary.(map[string]any)
			if !ok {
				return fmt.Errorf("%s[%d].summaries[%d] must be an object", section, i, j)
			}
			for _, field := range []string{"aspect", "content"} {
				if _, ok := summary[field]; !ok {
					return fmt.Errorf("%s[%d].summaries[%d] missing %s", section, i, j, field)
				}
			}
			rawCitations, ok := summary["citations"]
			if !ok {
				return fmt.Errorf("%s[%d].summaries[%d] missing citations", section, i, j)
			}
			citations, ok := rawCitations.([]any)
			if !ok {
				return fmt.Errorf("%s[%d].summaries[%d].citations must be an array", section, i, j)
			}
			for k, rawCitation := range citations {
				citation, ok := rawCitation.(map[string]any)
				if !ok {
					return fmt.Errorf("%s[%d].summaries[%d].citations[%d] must be an object", section, i, j, k)
				}
				for _, field := range []string{"news_id", "content"} {
					if _, ok := citation[field]; !ok {
						return fmt.Errorf("%s[%d].summaries[%d].citations[%d] missing %s", section, i, j, k, field)
					}
				}
			}
		}
	}
	return nil
}
