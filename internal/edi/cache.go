package edi

import (
	"context"
	"fmt"
	"sync"

	"github.com/mercuryedi/mercury/internal/model"
	"github.com/mercuryedi/mercury/internal/service"
)

// SchemaCache memoizes segment layouts and document segment orderings in
// front of a SchemaStore. Entries are immutable once written and keyed by
// the (id, agency, version) composite, so concurrent lookup-or-fetch races
// only risk a redundant fetch, never stale data. The cache is never
// invalidated: schema is assumed static for the lifetime of the cache.
type SchemaCache struct {
	store    service.SchemaStore
	layouts  map[string][]model.ElementSpec
	ordering map[string][]model.SegmentUsage
	mu       sync.RWMutex
}

// NewSchemaCache creates an empty cache backed by the given store.
func NewSchemaCache(store service.SchemaStore) *SchemaCache {
	return &SchemaCache{
		store:    store,
		layouts:  make(map[string][]model.ElementSpec),
		ordering: make(map[string][]model.SegmentUsage),
	}
}

func cacheKey(id, agency, version string) string {
	return fmt.Sprintf("%s_%s_%s", id, agency, version)
}

// SegmentLayout returns the ordered element specs for a segment, fetching
// and memoizing on first use. The store's custom-then-base precedence is
// preserved; a segment absent from both tiers is a hard error.
func (c *SchemaCache) SegmentLayout(ctx context.Context, segmentID, agency, version string) ([]model.ElementSpec, error) {
	key := cacheKey(segmentID, agency, version)

	c.mu.RLock()
	layout, ok := c.layouts[key]
	c.mu.RUnlock()
	if ok {
		return layout, nil
	}

	layout, err := c.store.GetSegmentLayout(ctx, segmentID, agency, version)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve layout for segment %s: %w", segmentID, err)
	}

	c.mu.Lock()
	c.layouts[key] = layout
	c.mu.Unlock()

	return layout, nil
}

// DocumentSegmentOrder returns the ordered segment usage entries for a
// transaction set, fetching and memoizing on first use.
func (c *SchemaCache) DocumentSegmentOrder(ctx context.Context, transactionSetID, agency, version string) ([]model.SegmentUsage, error) {
	key := cacheKey(transactionSetID, agency, version)

	c.mu.RLock()
	usages, ok := c.ordering[key]
	c.mu.RUnlock()
	if ok {
		return usages, nil
	}

	usages, err := c.store.GetDocumentSegmentOrder(ctx, transactionSetID, agency, version)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve segment order for %s: %w", transactionSetID, err)
	}

	c.mu.Lock()
	c.ordering[key] = usages
	c.mu.Unlock()

	return usages, nil
}
