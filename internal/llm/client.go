package llm

import (
	"context"

	"github.com/mercuryedi/mercury/internal/model"
)

// Client defines the interface for structured-extraction providers.
type Client interface {
	// ExtractRecord populates a transaction record from free-form text.
	ExtractRecord(ctx context.Context, req ExtractionRequest) (ExtractionResult, error)
}

// ExtractionRequest describes one extraction call.
type ExtractionRequest struct {
	// Text is the source natural-language document.
	Text string
	// TransactionType selects the target record shape (e.g. "810").
	TransactionType string
	// MetadataSummary gives the model context about the expected segment
	// inventory.
	MetadataSummary string
}

// ExtractionResult contains the populated record and the provider's
// overall confidence.
type ExtractionResult struct {
	Record     model.TransactionRecord
	Confidence float64
}

// Config holds the provider configuration.
type Config struct {
	Provider          string
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float64
	MaxTokens         int
	RequestsPerMinute int
	CacheTTL          int // seconds; 0 uses the default
}
