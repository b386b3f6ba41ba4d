package edi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mercuryedi/mercury/internal/model"
)

func TestFormatElement(t *testing.T) {
	tests := []struct {
		value any
		name  string
		want  string
		spec  model.ElementSpec
	}{
		{
			name:  "nil value renders empty",
			value: nil,
			spec:  model.ElementSpec{Type: model.ElementTypeAlphanumeric},
			want:  "",
		},
		{
			name:  "empty string renders empty regardless of type",
			value: "",
			spec:  model.ElementSpec{Type: model.ElementTypeNumeric},
			want:  "",
		},
		{
			name:  "eight character date passes through",
			value: "20240827",
			spec:  model.ElementSpec{Type: model.ElementTypeDate, MaximumLength: 8},
			want:  "20240827",
		},
		{
			name:  "short date is not padded",
			value: "240827",
			spec:  model.ElementSpec{Type: model.ElementTypeDate, MaximumLength: 8},
			want:  "240827",
		},
		{
			name:  "real with no fraction renders as integer",
			value: 5.0,
			spec:  model.ElementSpec{Type: model.ElementTypeReal},
			want:  "5",
		},
		{
			name:  "real with fraction keeps the fraction",
			value: 362.34,
			spec:  model.ElementSpec{Type: model.ElementTypeReal},
			want:  "362.34",
		},
		{
			name:  "implied decimal with fraction keeps the point",
			value: 10.5,
			spec:  model.ElementSpec{Type: model.ElementTypeDecimal},
			want:  "10.5",
		},
		{
			name:  "whole number type strips the decimal point",
			value: "10.5",
			spec:  model.ElementSpec{Type: model.ElementTypeNumeric},
			want:  "105",
		},
		{
			name:  "integer input on numeric type",
			value: 42,
			spec:  model.ElementSpec{Type: model.ElementTypeNumeric},
			want:  "42",
		},
		{
			name:  "alphanumeric passes through",
			value: "WIDGET-A",
			spec:  model.ElementSpec{Type: model.ElementTypeAlphanumeric, MaximumLength: 20},
			want:  "WIDGET-A",
		},
		{
			name:  "alphanumeric truncates silently to maximum length",
			value: "ABCDEFGHIJ",
			spec:  model.ElementSpec{Type: model.ElementTypeAlphanumeric, MaximumLength: 4},
			want:  "ABCD",
		},
		{
			name:  "identifier with no maximum is untouched",
			value: "LONG-IDENTIFIER-VALUE",
			spec:  model.ElementSpec{Type: model.ElementTypeIdentifier},
			want:  "LONG-IDENTIFIER-VALUE",
		},
		{
			name:  "mandatory empty still renders empty",
			value: "",
			spec:  model.ElementSpec{Type: model.ElementTypeAlphanumeric, Requirement: model.RequirementMandatory},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatElement(tt.value, tt.spec)
			assert.Equal(t, tt.want, got)
		})
	}
}
