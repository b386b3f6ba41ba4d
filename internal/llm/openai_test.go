package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercuryedi/mercury/internal/common"
)

func newExtractionServer(t *testing.T, calls *atomic.Int32, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOpenAIClientExtractRecord(t *testing.T) {
	var calls atomic.Int32
	server := newExtractionServer(t, &calls,
		"```json\n{\"invoice_number\": \"I1\", \"confidence_score\": 0.88}\n```")
	defer server.Close()

	client, err := newOpenAIClient(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		RequestsPerMinute: 600,
	})
	require.NoError(t, err)

	result, err := client.ExtractRecord(context.Background(), ExtractionRequest{
		Text:            "Invoice I1 from ACME",
		TransactionType: "810",
	})
	require.NoError(t, err)
	assert.Equal(t, "I1", result.Record.InvoiceNumber)
	assert.Equal(t, 0.88, result.Confidence)
}

func TestOpenAIClientCachesIdenticalRequests(t *testing.T) {
	var calls atomic.Int32
	server := newExtractionServer(t, &calls, `{"invoice_number": "I1"}`)
	defer server.Close()

	client, err := newOpenAIClient(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		RequestsPerMinute: 600,
	})
	require.NoError(t, err)

	req := ExtractionRequest{Text: "Invoice I1", TransactionType: "810"}
	_, err = client.ExtractRecord(context.Background(), req)
	require.NoError(t, err)
	_, err = client.ExtractRecord(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIClientRateLimitResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		RequestsPerMinute: 600,
	})
	require.NoError(t, err)

	_, err = client.ExtractRecord(context.Background(), ExtractionRequest{Text: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRateLimit)
}

func TestOpenAIClientMalformedContent(t *testing.T) {
	var calls atomic.Int32
	server := newExtractionServer(t, &calls, "I could not find any structured data.")
	defer server.Close()

	client, err := newOpenAIClient(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		RequestsPerMinute: 600,
	})
	require.NoError(t, err)

	_, err = client.ExtractRecord(context.Background(), ExtractionRequest{Text: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionFailed)
}

func TestNewOpenAIClientRequiresAPIKey(t *testing.T) {
	_, err := newOpenAIClient(Config{})
	require.Error(t, err)
}

func TestNewClientFactory(t *testing.T) {
	t.Run("openai provider", func(t *testing.T) {
		client, err := NewClient(Config{Provider: "openai", APIKey: "k"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("empty provider defaults to openai", func(t *testing.T) {
		client, err := NewClient(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("unknown provider fails", func(t *testing.T) {
		_, err := NewClient(Config{Provider: "mystery", APIKey: "k"})
		require.Error(t, err)
	})
}
