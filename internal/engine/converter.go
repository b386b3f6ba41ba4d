package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mercuryedi/mercury/internal/common"
	"github.com/mercuryedi/mercury/internal/edi"
	"github.com/mercuryedi/mercury/internal/llm"
	"github.com/mercuryedi/mercury/internal/model"
	"github.com/mercuryedi/mercury/internal/service"
	"github.com/mercuryedi/mercury/internal/storage"
)

// agencyByStandard maps a document profile's standard label to the
// schema-namespace agency code the definitions are stored under.
var agencyByStandard = map[string]string{
	"EDI/X12": "X",
	"EDIFACT": "E",
}

// Config tunes a converter.
type Config struct {
	// TokenBudget is the estimated-token ceiling above which the source
	// text is replaced by retrieved chunks. Zero disables the check.
	TokenBudget int
	// RetrievalChunks is how many chunks to retrieve for oversized
	// documents.
	RetrievalChunks int
	Retry           service.RetryOptions
	Validator       edi.ValidatorConfig
}

// Converter runs the end-to-end conversion pipeline for one document.
type Converter struct {
	store     service.Storage
	extractor Extractor
	retriever Retriever
	validator *edi.Validator
	encoder   *edi.Encoder
	cfg       Config
}

// NewConverter wires a converter. retriever may be nil, in which case
// oversized documents are sent to the extractor whole.
func NewConverter(store service.Storage, extractor Extractor, retriever Retriever, cfg Config) *Converter {
	if cfg.RetrievalChunks <= 0 {
		cfg.RetrievalChunks = 5
	}
	return &Converter{
		store:     store,
		extractor: extractor,
		retriever: retriever,
		validator: edi.NewValidator(cfg.Validator),
		encoder:   edi.NewEncoder(store),
		cfg:       cfg,
	}
}

// Convert runs the pipeline for one document and returns the result.
// With buildEDI false the run stops after extraction and validation and
// the result carries the extraction_only status.
//
// Blocking validation findings gate assembly: the result is returned
// with needs_review status and no segments. An assembly failure yields
// the failed status with the encoder error recorded as a finding;
// segments are never partial.
func (c *Converter) Convert(ctx context.Context, interchangeSender, documentID string, buildEDI bool) (*model.ConversionResult, error) {
	runID := uuid.NewString()

	common.LogInfo("Starting conversion", common.Fields{
		"run_id":      runID,
		"sender":      interchangeSender,
		"document_id": documentID,
	})

	profile, err := c.store.GetDocumentProfile(ctx, interchangeSender, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document profile: %w", err)
	}

	agency, ok := agencyByStandard[profile.Standard]
	if !ok {
		return nil, fmt.Errorf("%w: unknown standard %q", common.ErrInvalidConfig, profile.Standard)
	}

	text, err := c.store.GetRawDocument(ctx, profile.DocumentID+storage.RawTextSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to load source text: %w", err)
	}

	text, err = c.budgetedText(ctx, text, profile, documentID)
	if err != nil {
		return nil, err
	}

	summary, err := c.segmentSummary(ctx, profile, agency)
	if err != nil {
		common.LogDebug("Segment summary unavailable", common.Fields{
			"run_id": runID,
			"error":  err.Error(),
		})
		summary = ""
	}

	var extraction llm.ExtractionResult
	err = common.WithRetry(ctx, func() error {
		var extractErr error
		extraction, extractErr = c.extractor.ExtractRecord(ctx, llm.ExtractionRequest{
			Text:            text,
			TransactionType: profile.TransactionSetID,
			MetadataSummary: summary,
		})
		return extractErr
	}, c.cfg.Retry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExtractionFailed, err)
	}

	rec := extraction.Record
	if rec.ConfidenceScore == nil && extraction.Confidence > 0 {
		conf := extraction.Confidence
		rec.ConfidenceScore = &conf
	}

	findings := c.validator.Validate(&rec, profile.TransactionSetID)

	result := &model.ConversionResult{
		Record:   rec,
		RunID:    runID,
		Findings: findings,
	}

	if !buildEDI {
		result.Status = model.StatusExtractionOnly
		return result, nil
	}

	if model.HasBlocking(findings) {
		common.LogInfo("Blocking findings, skipping assembly", common.Fields{
			"run_id":   runID,
			"findings": len(findings),
		})
		result.Status = model.StatusNeedsReview
		return result, nil
	}

	assembler := edi.NewAssembler(c.encoder, agency, profile.Version)
	segments, err := assembler.Assemble(ctx, &rec, profile.TransactionSetID)
	if err != nil {
		common.LogError(err, "Assembly failed", common.Fields{"run_id": runID})
		result.Status = model.StatusFailed
		result.Findings = append(result.Findings, model.Finding{
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("assembly failed: %v", err),
		})
		return result, nil
	}

	result.Segments = segments
	result.Status = model.StatusSuccess

	common.LogInfo("Conversion complete", common.Fields{
		"run_id":   runID,
		"segments": len(segments),
		"status":   result.Status,
	})

	return result, nil
}

// budgetedText swaps the full document text for retrieved chunks when
// the estimate exceeds the token budget and a retriever is configured.
func (c *Converter) budgetedText(ctx context.Context, text string, profile *model.DocumentProfile, documentID string) (string, error) {
	if c.cfg.TokenBudget <= 0 || c.retriever == nil {
		return text, nil
	}
	if llm.EstimateTokens(text) <= c.cfg.TokenBudget {
		return text, nil
	}

	query := fmt.Sprintf(
		"key fields for a %s transaction: parties, line items, quantities, prices, totals, dates, references",
		profile.TransactionSetID)

	chunks, err := c.retriever.RelevantChunks(ctx, query, map[string]string{"doc_id": documentID}, c.cfg.RetrievalChunks)
	if err != nil {
		return "", fmt.Errorf("chunk retrieval failed: %w", err)
	}
	if len(chunks) == 0 {
		// Nothing indexed for this document; fall back to the full text.
		return text, nil
	}

	return strings.Join(chunks, "\n"), nil
}

// segmentSummary renders the expected segment inventory for the
// document type as extraction context.
func (c *Converter) segmentSummary(ctx context.Context, profile *model.DocumentProfile, agency string) (string, error) {
	order, err := c.encoder.Cache().DocumentSegmentOrder(ctx, profile.TransactionSetID, agency, profile.Version)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, usage := range storage.DeduplicateSegmentOrder(order) {
		desc, err := c.store.GetSegmentDescription(ctx, usage.SegmentID, agency, profile.Version)
		if err != nil {
			desc = ""
		}
		if desc != "" {
			fmt.Fprintf(&b, "%s: %s\n", usage.SegmentID, desc)
		} else {
			fmt.Fprintf(&b, "%s\n", usage.SegmentID)
		}
	}
	return b.String(), nil
}
