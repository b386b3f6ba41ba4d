// Package engine orchestrates one document conversion run: profile
// lookup, extraction, validation, and assembly.
package engine

import (
	"context"

	"github.com/mercuryedi/mercury/internal/llm"
)

// Extractor populates a transaction record from source text.
type Extractor interface {
	ExtractRecord(ctx context.Context, req llm.ExtractionRequest) (llm.ExtractionResult, error)
}

// Retriever returns the most relevant stored chunks for a query, used
// when a document exceeds the extraction token budget.
type Retriever interface {
	RelevantChunks(ctx context.Context, query string, filter map[string]string, n int) ([]string, error)
}
