package llm

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mercuryedi/mercury/internal/common"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAIClient implements the Client interface against any
// OpenAI-compatible chat-completions endpoint.
type openAIClient struct {
	httpClient  *http.Client
	cache       *responseCache
	limiter     *rateLimiter
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI-compatible API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4-turbo-preview"
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second

	return &openAIClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   cfg.MaxTokens,
		cache:       newResponseCache(cacheTTL),
		limiter:     newRateLimiter(cfg.RequestsPerMinute),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// ExtractRecord sends a structured-extraction request.
func (c *openAIClient) ExtractRecord(ctx context.Context, req ExtractionRequest) (ExtractionResult, error) {
	prompt := buildExtractionPrompt(req)
	cacheKey := fmt.Sprintf("%x", sha256.Sum256([]byte(prompt)))

	if cached, ok := c.cache.get(cacheKey); ok {
		return cached, nil
	}

	if err := c.limiter.wait(ctx); err != nil {
		return ExtractionResult{}, err
	}

	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": extractionSystemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
	}
	if c.maxTokens > 0 {
		requestBody["max_tokens"] = c.maxTokens
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", strings.NewReader(string(jsonBody)))
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ExtractionResult{}, fmt.Errorf("%w: %s", common.ErrRateLimit, string(body))
	case resp.StatusCode != http.StatusOK:
		return ExtractionResult{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return ExtractionResult{}, fmt.Errorf("failed to parse API response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return ExtractionResult{}, fmt.Errorf("API returned no choices")
	}

	result, err := parseExtractionResponse(apiResp.Choices[0].Message.Content)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("%w: %v", common.ErrExtractionFailed, err)
	}

	c.cache.set(cacheKey, result)
	return result, nil
}

// Close releases the client's background resources.
func (c *openAIClient) Close() {
	c.cache.Close()
	c.limiter.Close()
}
