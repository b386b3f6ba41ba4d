package llm

import (
	"fmt"
	"strings"
)

const extractionSystemPrompt = "You are an expert trade-document data extraction specialist. " +
	"You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, " +
	"markdown formatting, or commentary before or after the JSON. Start your response " +
	"directly with { and end with }."

// buildExtractionPrompt renders the structured-extraction prompt for one
// document.
func buildExtractionPrompt(req ExtractionRequest) string {
	var b strings.Builder

	b.WriteString("Extract transaction data from the text below into structured JSON.\n\n")
	b.WriteString("**Extract:**\n")
	b.WriteString("1. Header: transaction type, PO/invoice number & date, currency (default USD)\n")
	b.WriteString("2. Parties: buyer, seller, bill_to, ship_to, remit_to, issuer (name, identifier, qualifier, address)\n")
	b.WriteString("3. Payment terms: discount %, days, net days\n")
	b.WriteString("4. Carrier: routing, SCAC code, transport method\n")
	b.WriteString("5. Line items: line#, quantity, UOM, price, amount, item ID, description, pack_size, nsn, status\n")
	b.WriteString("6. References: PO, DP, MR, PD, IA, AN, CN, TN with qualifiers\n")
	b.WriteString("7. Dates: ship, delivery dates (YYYYMMDD format)\n")
	b.WriteString("8. Service charges: indicator (C/A), amount, code\n")
	b.WriteString("9. Code lists and financial accounting breakdowns if present\n")
	b.WriteString("10. Totals: subtotal, total, line count\n\n")

	fmt.Fprintf(&b, "**Transaction Type:** %s\n\n", req.TransactionType)
	fmt.Fprintf(&b, "**Natural Language Text:**\n%s\n\n", req.Text)

	if req.MetadataSummary != "" {
		fmt.Fprintf(&b, "**Expected Fields Reference (from metadata):**\n%s\n\n", req.MetadataSummary)
	}

	b.WriteString("Output the extracted data as a single JSON object plus a top-level " +
		"confidence_score between 0 and 1.\n\n")
	b.WriteString("IMPORTANT:\n")
	b.WriteString("- Return ONLY the JSON structure, no explanations or commentary\n")
	b.WriteString("- Use null for missing values\n")
	b.WriteString("- Keep the notes field brief (max 50 words)\n")
	b.WriteString("- Extract only what's explicitly in the text\n")

	return b.String()
}
