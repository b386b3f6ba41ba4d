package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mercuryedi/mercury/internal/common"
	"github.com/mercuryedi/mercury/internal/model"
)

// RawDocumentSuffix values distinguish the stored representations of one
// logical document.
const (
	RawTextSuffix    = "_NL"
	RawEncodedSuffix = "_EDI"
)

// GetDocumentProfile returns the schema-namespace metadata for one
// inbound document.
func (s *SQLiteStorage) GetDocumentProfile(ctx context.Context, interchangeSender, documentID string) (*model.DocumentProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(interchangeSender, "interchangeSender"); err != nil {
		return nil, err
	}
	if err := validateString(documentID, "documentID"); err != nil {
		return nil, err
	}

	query := `
		SELECT interchange_sender, document_id, standard, version, transaction_set_id
		FROM document_profiles
		WHERE interchange_sender = ? AND document_id = ?`

	var profile model.DocumentProfile
	err := s.db.QueryRowContext(ctx, query, interchangeSender, documentID).Scan(
		&profile.InterchangeSender, &profile.DocumentID, &profile.Standard,
		&profile.Version, &profile.TransactionSetID,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document profile %s/%s: %w", interchangeSender, documentID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document profile: %w", err)
	}

	return &profile, nil
}

// SaveDocumentProfile stores or replaces a document profile.
func (s *SQLiteStorage) SaveDocumentProfile(ctx context.Context, profile *model.DocumentProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("profile cannot be nil")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO document_profiles
			(interchange_sender, document_id, standard, version, transaction_set_id)
		VALUES (?, ?, ?, ?, ?)`,
		profile.InterchangeSender, profile.DocumentID, profile.Standard,
		profile.Version, profile.TransactionSetID)
	if err != nil {
		return fmt.Errorf("failed to save document profile: %w", err)
	}
	return nil
}

// GetRawDocument returns the stored text for a document id (callers
// append the representation suffix, e.g. "_NL" for source text).
func (s *SQLiteStorage) GetRawDocument(ctx context.Context, docID string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(docID, "docID"); err != nil {
		return "", err
	}

	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT raw_text FROM raw_documents WHERE doc_id = ?`, docID).Scan(&text)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("raw document %s: %w", docID, common.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query raw document: %w", err)
	}
	return text, nil
}

// SaveRawDocument stores or replaces the text for a document id.
func (s *SQLiteStorage) SaveRawDocument(ctx context.Context, docID, text string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(docID, "docID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO raw_documents (doc_id, raw_text) VALUES (?, ?)`,
		docID, text)
	if err != nil {
		return fmt.Errorf("failed to save raw document: %w", err)
	}
	return nil
}
