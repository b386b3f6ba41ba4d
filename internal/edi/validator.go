package edi

import (
	"fmt"
	"math"

	"github.com/mercuryedi/mercury/internal/model"
)

// ValidatorConfig carries the tunable validation thresholds.
type ValidatorConfig struct {
	// AmountTolerance is the maximum absolute difference allowed between
	// the stated total and the sum of line extended amounts.
	AmountTolerance float64
	// ConfidenceFloor is the extraction confidence below which an
	// advisory finding is raised.
	ConfidenceFloor float64
}

// DefaultValidatorConfig returns the standard thresholds.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		AmountTolerance: 0.01,
		ConfidenceFloor: 0.7,
	}
}

// Validator checks a transaction record for structural and business
// completeness before assembly. Findings are data, never errors; the
// orchestrator decides whether blocking findings gate assembly.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator creates a validator with the given thresholds. Zero
// thresholds fall back to the defaults.
func NewValidator(cfg ValidatorConfig) *Validator {
	defaults := DefaultValidatorConfig()
	if cfg.AmountTolerance <= 0 {
		cfg.AmountTolerance = defaults.AmountTolerance
	}
	if cfg.ConfidenceFloor <= 0 {
		cfg.ConfidenceFloor = defaults.ConfidenceFloor
	}
	return &Validator{cfg: cfg}
}

// Validate returns the graded findings for a record under the given
// document type.
func (v *Validator) Validate(rec *model.TransactionRecord, documentType string) []model.Finding {
	var findings []model.Finding

	blocking := func(format string, args ...any) {
		findings = append(findings, model.Finding{
			Severity: model.SeverityError,
			Message:  fmt.Sprintf(format, args...),
		})
	}
	advisory := func(format string, args ...any) {
		findings = append(findings, model.Finding{
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	switch documentType {
	case model.TransactionTypeInvoice:
		if rec.InvoiceNumber == "" {
			blocking("missing mandatory invoice number")
		}
		if rec.InvoiceDate == "" {
			blocking("missing mandatory invoice date")
		}
	case model.TransactionTypePurchaseOrder:
		if rec.PONumber == "" {
			blocking("missing mandatory PO number")
		}
		if rec.PODate == "" {
			advisory("missing PO date (recommended)")
		}
	}

	if rec.Buyer == nil && rec.Seller == nil {
		advisory("no buyer or seller information found")
	}
	if documentType == model.TransactionTypePurchaseOrder && rec.Buyer == nil {
		advisory("missing buyer information (BY party)")
	}
	if documentType == model.TransactionTypeInvoice && rec.BillTo == nil {
		advisory("missing bill-to information (BT party)")
	}

	if len(rec.Items) == 0 {
		blocking("no line items found")
	}
	for idx, item := range rec.Items {
		line := idx + 1
		if item.Quantity == nil && item.Status != model.ItemStatusCancelled {
			blocking("line %d missing quantity", line)
		}
		if item.UnitPrice == nil {
			advisory("line %d missing unit price", line)
		}
		if item.ItemID == "" && item.StockNumber == "" && item.BuyerPartNumber == "" {
			advisory("line %d missing item ID", line)
		}
	}

	if rec.TotalAmount != nil && len(rec.Items) > 0 {
		var calculated float64
		for _, item := range rec.Items {
			if item.Status == model.ItemStatusCancelled {
				continue
			}
			if item.Quantity != nil && item.UnitPrice != nil {
				calculated += *item.Quantity * *item.UnitPrice
			}
		}
		if math.Abs(calculated-*rec.TotalAmount) > v.cfg.AmountTolerance {
			advisory("total amount mismatch (stated: %.2f, calculated: %.2f)", *rec.TotalAmount, calculated)
		}
	}

	if rec.ConfidenceScore != nil && *rec.ConfidenceScore < v.cfg.ConfidenceFloor {
		advisory("low extraction confidence (%.2f)", *rec.ConfidenceScore)
	}

	return findings
}
