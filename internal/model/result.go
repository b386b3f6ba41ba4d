package model

import "fmt"

// FindingSeverity grades a validation finding.
type FindingSeverity string

// Finding severities. Errors block assembly; warnings are advisory.
const (
	SeverityError   FindingSeverity = "ERROR"
	SeverityWarning FindingSeverity = "WARNING"
)

// Finding is one validation observation about a transaction record.
type Finding struct {
	Severity FindingSeverity
	Message  string
}

// Blocking reports whether the finding should prevent assembly.
func (f Finding) Blocking() bool {
	return f.Severity == SeverityError
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Severity, f.Message)
}

// HasBlocking reports whether any finding in the list is blocking.
func HasBlocking(findings []Finding) bool {
	for _, f := range findings {
		if f.Blocking() {
			return true
		}
	}
	return false
}

// ConversionStatus describes the outcome of one conversion run.
type ConversionStatus string

// Conversion outcomes.
const (
	StatusSuccess        ConversionStatus = "success"
	StatusNeedsReview    ConversionStatus = "needs_review"
	StatusFailed         ConversionStatus = "failed"
	StatusExtractionOnly ConversionStatus = "extraction_only"
)

// ConversionResult is the orchestrator-facing output of one conversion:
// the populated record, the emitted segments (possibly empty), the
// validation findings, and the overall status.
type ConversionResult struct {
	Record   TransactionRecord
	RunID    string
	Status   ConversionStatus
	Segments []string
	Findings []Finding
}

// FindingStrings renders the findings as tagged report lines.
func (r *ConversionResult) FindingStrings() []string {
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.String()
	}
	return out
}
