// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mercuryedi/mercury/internal/model"
)

// SchemaStore is the schema/definition lookup consumed by the encoder and
// assembler. Implementations must resolve custom (per-tenant) definitions
// before falling back to the base definition set.
type SchemaStore interface {
	// GetSegmentLayout returns the ordered element specs for a segment.
	// Returns an error wrapping common.ErrSchemaNotFound when no layout
	// exists in either tier.
	GetSegmentLayout(ctx context.Context, segmentID, agency, version string) ([]model.ElementSpec, error)

	// GetDocumentSegmentOrder returns the ordered segment usage entries for
	// a transaction set.
	GetDocumentSegmentOrder(ctx context.Context, transactionSetID, agency, version string) ([]model.SegmentUsage, error)

	// GetSegmentDescription returns the human-readable description of a segment.
	GetSegmentDescription(ctx context.Context, segmentID, agency, version string) (string, error)
}

// DocumentStore resolves inbound documents and their metadata.
type DocumentStore interface {
	GetDocumentProfile(ctx context.Context, interchangeSender, documentID string) (*model.DocumentProfile, error)
	GetRawDocument(ctx context.Context, docID string) (string, error)
	SaveRawDocument(ctx context.Context, docID, text string) error
	SaveDocumentProfile(ctx context.Context, profile *model.DocumentProfile) error
}

// Storage is the full persistence contract implemented by the SQLite layer.
type Storage interface {
	SchemaStore
	DocumentStore

	// Schema management
	ImportElementDefs(ctx context.Context, agency, version, segmentID string, specs []model.ElementSpec, custom bool) error
	ImportSegmentUsage(ctx context.Context, agency, version, transactionSetID string, usages []model.SegmentUsage, custom bool) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
