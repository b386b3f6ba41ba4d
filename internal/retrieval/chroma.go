// Package retrieval fetches relevant document chunks from a vector
// store when a raw document is too large to send to the extraction
// model in one request.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mercuryedi/mercury/internal/common"
)

// Retriever queries a Chroma-compatible vector store over HTTP.
type Retriever struct {
	httpClient *http.Client
	baseURL    string
	collection string

	// resolved collection ID, looked up lazily
	collectionID string
}

// Config holds connection settings for the vector store.
type Config struct {
	BaseURL    string
	Collection string
	Timeout    time.Duration
}

// NewRetriever creates a retriever for the given collection.
func NewRetriever(cfg Config) (*Retriever, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("retrieval base URL: %w", common.ErrMissingConfig)
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("retrieval collection name: %w", common.ErrMissingConfig)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Retriever{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
	}, nil
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type queryRequest struct {
	QueryTexts []string          `json:"query_texts"`
	NResults   int               `json:"n_results"`
	Where      map[string]string `json:"where,omitempty"`
	Include    []string          `json:"include"`
}

type queryResponse struct {
	Documents [][]string `json:"documents"`
}

// RelevantChunks returns up to n document chunks matching the query,
// optionally filtered by metadata (e.g. document ID).
func (r *Retriever) RelevantChunks(ctx context.Context, query string, filter map[string]string, n int) ([]string, error) {
	if n <= 0 {
		n = 5
	}

	id, err := r.resolveCollection(ctx)
	if err != nil {
		return nil, err
	}

	reqBody := queryRequest{
		QueryTexts: []string{query},
		NResults:   n,
		Where:      filter,
		Include:    []string{"documents"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s/query", r.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector store query failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read query response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector store returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var qr queryResponse
	if err := json.Unmarshal(respBody, &qr); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}

	if len(qr.Documents) == 0 {
		return nil, nil
	}
	return qr.Documents[0], nil
}

// resolveCollection looks up the collection ID by name and caches it.
func (r *Retriever) resolveCollection(ctx context.Context) (string, error) {
	if r.collectionID != "" {
		return r.collectionID, nil
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s", r.baseURL, r.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create collection request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("collection lookup failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read collection response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("collection %q: %w", r.collection, common.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("collection lookup returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var cr collectionResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("failed to parse collection response: %w", err)
	}
	if cr.ID == "" {
		return "", fmt.Errorf("collection %q has no ID: %w", r.collection, common.ErrNotFound)
	}

	r.collectionID = cr.ID
	return r.collectionID, nil
}
