package edi

import (
	"context"
	"fmt"
	"strings"

	"github.com/mercuryedi/mercury/internal/common"
	"github.com/mercuryedi/mercury/internal/service"
)

// Default output separators.
const (
	DefaultElementSeparator  = "*"
	DefaultSegmentTerminator = "~"
)

// Encoder builds single segments from sparse position→value maps using
// schema layouts resolved through a SchemaCache.
type Encoder struct {
	cache             *SchemaCache
	elementSeparator  string
	segmentTerminator string
}

// EncoderOption customizes an Encoder.
type EncoderOption func(*Encoder)

// WithSeparators overrides the element separator and segment terminator.
func WithSeparators(element, terminator string) EncoderOption {
	return func(e *Encoder) {
		if element != "" {
			e.elementSeparator = element
		}
		if terminator != "" {
			e.segmentTerminator = terminator
		}
	}
}

// NewEncoder creates an encoder backed by the given schema store.
func NewEncoder(store service.SchemaStore, opts ...EncoderOption) *Encoder {
	e := &Encoder{
		cache:             NewSchemaCache(store),
		elementSeparator:  DefaultElementSeparator,
		segmentTerminator: DefaultSegmentTerminator,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache exposes the encoder's schema cache for callers that need ordering
// lookups against the same memoized snapshot.
func (e *Encoder) Cache() *SchemaCache {
	return e.cache
}

// Encode builds one segment from a sparse position→value map.
//
// The segment identifier leads, followed by one formatted token per
// position from 1 through the layout's highest position. Positions with no
// spec or no value emit empty tokens; a mandatory position with an empty
// value still emits empty rather than failing, since completeness is the
// validator's job. Trailing empty tokens are trimmed down to, at minimum,
// the identifier token.
func (e *Encoder) Encode(ctx context.Context, segmentID string, values map[int]any, agency, version string) (string, error) {
	layout, err := e.cache.SegmentLayout(ctx, segmentID, agency, version)
	if err != nil {
		return "", err
	}
	if len(layout) == 0 {
		return "", fmt.Errorf("no layout rows for segment %s: %w", segmentID, common.ErrSchemaNotFound)
	}

	byPosition := make(map[int]int, len(layout))
	maxPosition := 0
	for i, spec := range layout {
		byPosition[spec.Position] = i
		if spec.Position > maxPosition {
			maxPosition = spec.Position
		}
	}

	tokens := make([]string, 0, maxPosition+1)
	tokens = append(tokens, segmentID)

	for pos := 1; pos <= maxPosition; pos++ {
		idx, ok := byPosition[pos]
		if !ok {
			tokens = append(tokens, "")
			continue
		}
		tokens = append(tokens, FormatElement(values[pos], layout[idx]))
	}

	for len(tokens) > 1 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}

	return strings.Join(tokens, e.elementSeparator) + e.segmentTerminator, nil
}
