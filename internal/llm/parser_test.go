package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "json code fence",
			content: "Here is the data:\n```json\n{\"invoice_number\": \"I1\"}\n```\nDone.",
			want:    `{"invoice_number": "I1"}`,
		},
		{
			name:    "plain code fence",
			content: "```\n{\"invoice_number\": \"I1\"}\n```",
			want:    `{"invoice_number": "I1"}`,
		},
		{
			name:    "unterminated fence",
			content: "```json\n{\"invoice_number\": \"I1\"}",
			want:    `{"invoice_number": "I1"}`,
		},
		{
			name:    "bare json",
			content: `{"invoice_number": "I1"}`,
			want:    `{"invoice_number": "I1"}`,
		},
		{
			name:    "surrounding prose falls back to the brace pair",
			content: `The extracted record is {"invoice_number": "I1"} as requested.`,
			want:    `{"invoice_number": "I1"}`,
		},
		{
			name:    "nested braces keep the outermost pair",
			content: `prefix {"a": {"b": 1}} suffix`,
			want:    `{"a": {"b": 1}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.content))
		})
	}
}

func TestParseExtractionResponse(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		content := "```json\n" + `{
			"transaction_type": "810",
			"invoice_number": "6GYNT 2",
			"invoice_date": "20240827",
			"items": [
				{"line_number": 1, "quantity": 5, "unit_of_measure": "PK", "unit_price": 362.34, "nsn": "6515-01-561-6204"}
			],
			"total_amount": 1811.70,
			"confidence_score": 0.92
		}` + "\n```"

		result, err := parseExtractionResponse(content)
		require.NoError(t, err)

		assert.Equal(t, "6GYNT 2", result.Record.InvoiceNumber)
		assert.Equal(t, 0.92, result.Confidence)
		require.Len(t, result.Record.Items, 1)
		item := result.Record.Items[0]
		assert.Equal(t, "6515-01-561-6204", item.StockNumber)
		require.NotNil(t, item.Quantity)
		assert.Equal(t, 5.0, *item.Quantity)
		require.NotNil(t, result.Record.TotalAmount)
		assert.Equal(t, 1811.70, *result.Record.TotalAmount)
	})

	t.Run("missing confidence defaults to zero", func(t *testing.T) {
		result, err := parseExtractionResponse(`{"invoice_number": "I1"}`)
		require.NoError(t, err)
		assert.Zero(t, result.Confidence)
		assert.Nil(t, result.Record.ConfidenceScore)
	})

	t.Run("null optional fields stay nil", func(t *testing.T) {
		result, err := parseExtractionResponse(`{
			"invoice_number": "I1",
			"total_amount": null,
			"bill_to": null,
			"items": [{"line_number": 1, "quantity": null}]
		}`)
		require.NoError(t, err)
		assert.Nil(t, result.Record.TotalAmount)
		assert.Nil(t, result.Record.BillTo)
		require.Len(t, result.Record.Items, 1)
		assert.Nil(t, result.Record.Items[0].Quantity)
	})

	t.Run("invalid json fails", func(t *testing.T) {
		_, err := parseExtractionResponse("not json at all")
		require.Error(t, err)
	})
}
