package edi

import (
	"context"
	"fmt"
	"sync"

	"github.com/mercuryedi/mercury/internal/common"
	"github.com/mercuryedi/mercury/internal/model"
)

// fakeSchemaStore serves generic alphanumeric layouts for a fixed set of
// segments and counts fetches so cache behavior can be observed.
type fakeSchemaStore struct {
	layouts      map[string][]model.ElementSpec
	order        map[string][]model.SegmentUsage
	mu           sync.Mutex
	layoutCalls  int
	orderCalls   int
	descriptions map[string]string
}

func (s *fakeSchemaStore) GetSegmentLayout(_ context.Context, segmentID, _, _ string) ([]model.ElementSpec, error) {
	s.mu.Lock()
	s.layoutCalls++
	s.mu.Unlock()

	layout, ok := s.layouts[segmentID]
	if !ok {
		return nil, fmt.Errorf("segment %s: %w", segmentID, common.ErrSchemaNotFound)
	}
	return layout, nil
}

func (s *fakeSchemaStore) GetDocumentSegmentOrder(_ context.Context, transactionSetID, _, _ string) ([]model.SegmentUsage, error) {
	s.mu.Lock()
	s.orderCalls++
	s.mu.Unlock()

	order, ok := s.order[transactionSetID]
	if !ok {
		return nil, fmt.Errorf("transaction set %s: %w", transactionSetID, common.ErrSchemaNotFound)
	}
	return order, nil
}

func (s *fakeSchemaStore) GetSegmentDescription(_ context.Context, segmentID, _, _ string) (string, error) {
	desc, ok := s.descriptions[segmentID]
	if !ok {
		return "", fmt.Errorf("segment %s: %w", segmentID, common.ErrNotFound)
	}
	return desc, nil
}

// genericLayout builds an alphanumeric layout with positions 1..n.
func genericLayout(n int) []model.ElementSpec {
	specs := make([]model.ElementSpec, 0, n)
	for pos := 1; pos <= n; pos++ {
		specs = append(specs, model.ElementSpec{
			Position:    pos,
			Type:        model.ElementTypeAlphanumeric,
			Requirement: model.RequirementOptional,
		})
	}
	return specs
}

// newTestStore covers every segment the assemblers can emit.
func newTestStore() *fakeSchemaStore {
	widths := map[string]int{
		"BIG": 10, "BEG": 12, "CUR": 5, "N1": 6, "N3": 2, "N4": 6,
		"PER": 9, "LM": 3, "LQ": 2, "FA1": 3, "FA2": 2, "IT1": 15,
		"REF": 3, "DTM": 6, "ITD": 15, "CAD": 8, "TD5": 15, "SAC": 16,
		"TDS": 4, "CTT": 7, "FOB": 9, "N9": 7, "MTX": 4, "PO1": 25,
		"PID": 9, "PO4": 18, "AMT": 3,
	}

	layouts := make(map[string][]model.ElementSpec, len(widths))
	for segmentID, width := range widths {
		layouts[segmentID] = genericLayout(width)
	}

	return &fakeSchemaStore{
		layouts: layouts,
		order: map[string][]model.SegmentUsage{
			"810": {
				{Position: 10, SegmentID: "BIG", Requirement: "M"},
				{Position: 20, SegmentID: "N1", Requirement: "O"},
				{Position: 30, SegmentID: "IT1", Requirement: "M"},
				{Position: 40, SegmentID: "TDS", Requirement: "M"},
			},
		},
		descriptions: map[string]string{
			"BIG": "Beginning Segment for Invoice",
			"IT1": "Baseline Item Data (Invoice)",
		},
	}
}
