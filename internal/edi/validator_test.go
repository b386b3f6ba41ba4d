package edi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercuryedi/mercury/internal/model"
)

func findingMessages(findings []model.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Message
	}
	return out
}

func TestValidateInvoiceMandatoryFields(t *testing.T) {
	v := NewValidator(DefaultValidatorConfig())

	rec := &model.TransactionRecord{}
	findings := v.Validate(rec, model.TransactionTypeInvoice)

	assert.True(t, model.HasBlocking(findings))
	messages := findingMessages(findings)
	assert.Contains(t, messages, "missing mandatory invoice number")
	assert.Contains(t, messages, "missing mandatory invoice date")
	assert.Contains(t, messages, "no line items found")
}

func TestValidatePurchaseOrderFields(t *testing.T) {
	v := NewValidator(DefaultValidatorConfig())

	t.Run("missing PO number blocks", func(t *testing.T) {
		rec := &model.TransactionRecord{
			Items: []model.LineItem{{LineNumber: 1, Quantity: fptr(1), UnitPrice: fptr(1), ItemID: "A"}},
		}
		findings := v.Validate(rec, model.TransactionTypePurchaseOrder)
		assert.True(t, model.HasBlocking(findings))
		assert.Contains(t, findingMessages(findings), "missing mandatory PO number")
	})

	t.Run("missing PO date is only advisory", func(t *testing.T) {
		rec := &model.TransactionRecord{
			PONumber: "PO-1",
			Buyer:    &model.Party{Name: "B"},
			Items:    []model.LineItem{{LineNumber: 1, Quantity: fptr(1), UnitPrice: fptr(1), ItemID: "A"}},
		}
		findings := v.Validate(rec, model.TransactionTypePurchaseOrder)
		assert.False(t, model.HasBlocking(findings))
		assert.Contains(t, findingMessages(findings), "missing PO date (recommended)")
	})
}

func TestValidateLineItems(t *testing.T) {
	v := NewValidator(DefaultValidatorConfig())

	t.Run("missing quantity blocks", func(t *testing.T) {
		rec := &model.TransactionRecord{
			InvoiceNumber: "I1",
			InvoiceDate:   "20250101",
			Items:         []model.LineItem{{LineNumber: 1, UnitPrice: fptr(1), ItemID: "A"}},
		}
		findings := v.Validate(rec, model.TransactionTypeInvoice)
		assert.True(t, model.HasBlocking(findings))
		assert.Contains(t, findingMessages(findings), "line 1 missing quantity")
	})

	t.Run("cancelled line tolerates missing quantity", func(t *testing.T) {
		rec := &model.TransactionRecord{
			InvoiceNumber: "I1",
			InvoiceDate:   "20250101",
			BillTo:        &model.Party{Name: "B"},
			Buyer:         &model.Party{Name: "B"},
			Items: []model.LineItem{
				{LineNumber: 1, Status: model.ItemStatusCancelled, UnitPrice: fptr(1), ItemID: "A"},
			},
		}
		findings := v.Validate(rec, model.TransactionTypeInvoice)
		assert.False(t, model.HasBlocking(findings))
	})

	t.Run("missing price and item id are advisory", func(t *testing.T) {
		rec := &model.TransactionRecord{
			InvoiceNumber: "I1",
			InvoiceDate:   "20250101",
			Items:         []model.LineItem{{LineNumber: 1, Quantity: fptr(1)}},
		}
		findings := v.Validate(rec, model.TransactionTypeInvoice)
		messages := findingMessages(findings)
		assert.Contains(t, messages, "line 1 missing unit price")
		assert.Contains(t, messages, "line 1 missing item ID")
	})
}

func TestValidateTotalTolerance(t *testing.T) {
	base := func(total float64) *model.TransactionRecord {
		return &model.TransactionRecord{
			InvoiceNumber: "I1",
			InvoiceDate:   "20250101",
			BillTo:        &model.Party{Name: "B"},
			Buyer:         &model.Party{Name: "B"},
			Items: []model.LineItem{
				{LineNumber: 1, Quantity: fptr(5), UnitPrice: fptr(362.34), ItemID: "A"},
			},
			TotalAmount: &total,
		}
	}

	t.Run("within default tolerance", func(t *testing.T) {
		v := NewValidator(DefaultValidatorConfig())
		findings := v.Validate(base(1811.70), model.TransactionTypeInvoice)
		assert.Empty(t, findings)
	})

	t.Run("beyond default tolerance", func(t *testing.T) {
		v := NewValidator(DefaultValidatorConfig())
		findings := v.Validate(base(1900.00), model.TransactionTypeInvoice)
		require.Len(t, findings, 1)
		assert.Equal(t, model.SeverityWarning, findings[0].Severity)
		assert.Equal(t, "total amount mismatch (stated: 1900.00, calculated: 1811.70)", findings[0].Message)
	})

	t.Run("wider configured tolerance accepts the gap", func(t *testing.T) {
		v := NewValidator(ValidatorConfig{AmountTolerance: 100, ConfidenceFloor: 0.7})
		findings := v.Validate(base(1900.00), model.TransactionTypeInvoice)
		assert.Empty(t, findings)
	})

	t.Run("cancelled lines are excluded from the sum", func(t *testing.T) {
		v := NewValidator(DefaultValidatorConfig())
		rec := base(1811.70)
		rec.Items = append(rec.Items, model.LineItem{
			LineNumber: 2, Status: model.ItemStatusCancelled,
			Quantity: fptr(100), UnitPrice: fptr(9.99), ItemID: "B",
		})
		findings := v.Validate(rec, model.TransactionTypeInvoice)
		assert.Empty(t, findings)
	})
}

func TestValidateConfidenceFloor(t *testing.T) {
	base := func(confidence float64) *model.TransactionRecord {
		return &model.TransactionRecord{
			InvoiceNumber:   "I1",
			InvoiceDate:     "20250101",
			BillTo:          &model.Party{Name: "B"},
			Buyer:           &model.Party{Name: "B"},
			Items:           []model.LineItem{{LineNumber: 1, Quantity: fptr(1), UnitPrice: fptr(1), ItemID: "A"}},
			ConfidenceScore: &confidence,
		}
	}

	t.Run("below the floor warns", func(t *testing.T) {
		v := NewValidator(DefaultValidatorConfig())
		findings := v.Validate(base(0.5), model.TransactionTypeInvoice)
		require.Len(t, findings, 1)
		assert.Equal(t, "low extraction confidence (0.50)", findings[0].Message)
		assert.False(t, findings[0].Blocking())
	})

	t.Run("at the floor is silent", func(t *testing.T) {
		v := NewValidator(DefaultValidatorConfig())
		findings := v.Validate(base(0.7), model.TransactionTypeInvoice)
		assert.Empty(t, findings)
	})

	t.Run("raised floor catches more", func(t *testing.T) {
		v := NewValidator(ValidatorConfig{AmountTolerance: 0.01, ConfidenceFloor: 0.9})
		findings := v.Validate(base(0.85), model.TransactionTypeInvoice)
		require.Len(t, findings, 1)
	})
}

func TestNewValidatorDefaultsZeroThresholds(t *testing.T) {
	v := NewValidator(ValidatorConfig{})
	assert.Equal(t, DefaultValidatorConfig(), v.cfg)
}
