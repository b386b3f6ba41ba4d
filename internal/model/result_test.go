package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindingBlocking(t *testing.T) {
	err := Finding{Severity: SeverityError, Message: "missing mandatory invoice number"}
	warn := Finding{Severity: SeverityWarning, Message: "missing unit price"}

	assert.True(t, err.Blocking())
	assert.False(t, warn.Blocking())
	assert.Equal(t, "ERROR: missing mandatory invoice number", err.String())
	assert.Equal(t, "WARNING: missing unit price", warn.String())
}

func TestHasBlocking(t *testing.T) {
	assert.False(t, HasBlocking(nil))
	assert.False(t, HasBlocking([]Finding{{Severity: SeverityWarning}}))
	assert.True(t, HasBlocking([]Finding{
		{Severity: SeverityWarning},
		{Severity: SeverityError},
	}))
}

func TestFindingStrings(t *testing.T) {
	result := ConversionResult{
		Findings: []Finding{
			{Severity: SeverityError, Message: "no line items found"},
			{Severity: SeverityWarning, Message: "missing PO date (recommended)"},
		},
	}
	assert.Equal(t, []string{
		"ERROR: no line items found",
		"WARNING: missing PO date (recommended)",
	}, result.FindingStrings())
}

func TestContactByFunction(t *testing.T) {
	rec := TransactionRecord{
		Contacts: []Contact{
			{FunctionCode: "BD", Name: "FIRST"},
			{FunctionCode: "AP", Name: "SECOND"},
			{FunctionCode: "BD", Name: "THIRD"},
		},
	}

	contact := rec.ContactByFunction("BD")
	assert.NotNil(t, contact)
	assert.Equal(t, "FIRST", contact.Name)
	assert.Nil(t, rec.ContactByFunction("SR"))
}

func TestElementSpecMandatory(t *testing.T) {
	assert.True(t, ElementSpec{Requirement: RequirementMandatory}.Mandatory())
	assert.False(t, ElementSpec{Requirement: RequirementOptional}.Mandatory())
	assert.False(t, ElementSpec{}.Mandatory())
}
