package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mercuryedi/mercury/internal/model"
)

// extractJSON isolates the JSON body from a model response, tolerating
// markdown code fences and surrounding prose.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if idx := strings.Index(content, "```json"); idx >= 0 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}

	// Fall back to the outermost brace pair
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}

	return content
}

// parseExtractionResponse decodes a model response into a transaction
// record and confidence score.
func parseExtractionResponse(content string) (ExtractionResult, error) {
	body := extractJSON(content)

	var record model.TransactionRecord
	if err := json.Unmarshal([]byte(body), &record); err != nil {
		return ExtractionResult{}, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	result := ExtractionResult{Record: record}
	if record.ConfidenceScore != nil {
		result.Confidence = *record.ConfidenceScore
	}

	return result, nil
}
