package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mercuryedi/mercury/internal/common"
	"github.com/mercuryedi/mercury/internal/model"
)

// GetSegmentLayout returns the ordered element specs for a segment. The
// custom definition table is consulted first; only when it yields no rows
// does the lookup fall back to the base table. Tenants can therefore
// override individual segments without touching base schema data.
func (s *SQLiteStorage) GetSegmentLayout(ctx context.Context, segmentID, agency, version string) ([]model.ElementSpec, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(segmentID, "segmentID"); err != nil {
		return nil, err
	}

	specs, err := s.querySegmentLayout(ctx, "custom_element_usage_defs", segmentID, agency, version)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		specs, err = s.querySegmentLayout(ctx, "element_usage_defs", segmentID, agency, version)
		if err != nil {
			return nil, err
		}
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("segment %s (%s/%s): %w", segmentID, agency, version, common.ErrSchemaNotFound)
	}

	slog.Debug("resolved segment layout",
		"segment_id", segmentID,
		"agency", agency,
		"version", version,
		"elements", len(specs))
	return specs, nil
}

func (s *SQLiteStorage) querySegmentLayout(ctx context.Context, table, segmentID, agency, version string) ([]model.ElementSpec, error) {
	query := fmt.Sprintf(`
		SELECT position, element_id, description, requirement_designator,
		       type, minimum_length, maximum_length, composite_element
		FROM %s
		WHERE segment_id = ? AND agency = ? AND version = ?
		ORDER BY position ASC`, table)

	rows, err := s.db.QueryContext(ctx, query, segmentID, agency, version)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var specs []model.ElementSpec
	for rows.Next() {
		var spec model.ElementSpec
		var elementID, description, requirement, elementType, composite sql.NullString
		if err := rows.Scan(&spec.Position, &elementID, &description, &requirement,
			&elementType, &spec.MinimumLength, &spec.MaximumLength, &composite); err != nil {
			return nil, fmt.Errorf("failed to scan element spec: %w", err)
		}
		spec.ElementID = elementID.String
		spec.Description = description.String
		spec.Requirement = requirement.String
		spec.Type = elementType.String
		spec.CompositeElement = composite.String
		specs = append(specs, spec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating element specs: %w", err)
	}
	return specs, nil
}

// GetDocumentSegmentOrder returns the ordered segment usage entries for a
// transaction set, custom table first.
func (s *SQLiteStorage) GetDocumentSegmentOrder(ctx context.Context, transactionSetID, agency, version string) ([]model.SegmentUsage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionSetID, "transactionSetID"); err != nil {
		return nil, err
	}

	usages, err := s.querySegmentUsage(ctx, "custom_segment_usage", transactionSetID, agency, version)
	if err != nil {
		return nil, err
	}
	if len(usages) == 0 {
		usages, err = s.querySegmentUsage(ctx, "segment_usage", transactionSetID, agency, version)
		if err != nil {
			return nil, err
		}
	}

	if len(usages) == 0 {
		return nil, fmt.Errorf("transaction set %s (%s/%s): %w", transactionSetID, agency, version, common.ErrSchemaNotFound)
	}
	return usages, nil
}

func (s *SQLiteStorage) querySegmentUsage(ctx context.Context, table, transactionSetID, agency, version string) ([]model.SegmentUsage, error) {
	query := fmt.Sprintf(`
		SELECT position, segment_id, requirement_designator, maximum_usage,
		       maximum_loop_repeat, loop_id, section
		FROM %s
		WHERE transaction_set_id = ? AND agency = ? AND version = ?
		ORDER BY position ASC`, table)

	rows, err := s.db.QueryContext(ctx, query, transactionSetID, agency, version)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var usages []model.SegmentUsage
	for rows.Next() {
		var usage model.SegmentUsage
		var requirement, loopID, section sql.NullString
		if err := rows.Scan(&usage.Position, &usage.SegmentID, &requirement,
			&usage.MaximumUsage, &usage.MaximumLoopRepeat, &loopID, &section); err != nil {
			return nil, fmt.Errorf("failed to scan segment usage: %w", err)
		}
		usage.Requirement = requirement.String
		usage.LoopID = loopID.String
		usage.Section = section.String
		usages = append(usages, usage)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segment usage: %w", err)
	}
	return usages, nil
}

// GetSegmentDescription returns the human-readable description for a
// segment, custom table first.
func (s *SQLiteStorage) GetSegmentDescription(ctx context.Context, segmentID, agency, version string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	for _, table := range []string{"custom_segment_descriptions", "segment_descriptions"} {
		query := fmt.Sprintf(`
			SELECT description FROM %s
			WHERE segment_id = ? AND agency = ? AND version = ?
			LIMIT 1`, table)

		var description sql.NullString
		err := s.db.QueryRowContext(ctx, query, segmentID, agency, version).Scan(&description)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to query %s: %w", table, err)
		}
		return description.String, nil
	}

	return "", fmt.Errorf("segment description %s (%s/%s): %w", segmentID, agency, version, common.ErrNotFound)
}

// DeduplicateSegmentOrder removes repeated segment ids from an ordered
// usage listing, keeping the first occurrence by position.
func DeduplicateSegmentOrder(usages []model.SegmentUsage) []model.SegmentUsage {
	seen := make(map[string]bool, len(usages))
	out := make([]model.SegmentUsage, 0, len(usages))
	for _, usage := range usages {
		if seen[usage.SegmentID] {
			continue
		}
		seen[usage.SegmentID] = true
		out = append(out, usage)
	}
	return out
}
