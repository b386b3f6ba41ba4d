package llm

// EstimateTokens returns a rough token count for prompt budgeting.
// English prose and structured text average about four characters per
// token, which is close enough to decide whether a document fits in a
// single extraction request.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(text)/4 + 1
}
