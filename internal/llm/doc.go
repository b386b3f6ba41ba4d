// Package llm provides language model interfaces for structured
// transaction extraction. It supports OpenAI-compatible endpoints with
// retry logic, rate limiting, and response caching.
package llm
