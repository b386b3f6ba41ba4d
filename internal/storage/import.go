package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mercuryedi/mercury/internal/model"
)

// ImportElementDefs bulk-loads the element specs for one segment into the
// base or custom definition table, replacing any existing rows for the
// same (segment, agency, version) key.
func (s *SQLiteStorage) ImportElementDefs(ctx context.Context, agency, version, segmentID string, specs []model.ElementSpec, custom bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(segmentID, "segmentID"); err != nil {
		return err
	}

	table := "element_usage_defs"
	if custom {
		table = "custom_element_usage_defs"
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE segment_id = ? AND agency = ? AND version = ?`, table),
		segmentID, agency, version); err != nil {
		return fmt.Errorf("failed to clear existing element defs: %w", err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (agency, version, segment_id, position, element_id,
			description, requirement_designator, type, minimum_length,
			maximum_length, composite_element)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)

	for _, spec := range specs {
		if _, err := tx.ExecContext(ctx, insert,
			agency, version, segmentID, spec.Position, spec.ElementID,
			spec.Description, spec.Requirement, spec.Type,
			spec.MinimumLength, spec.MaximumLength, spec.CompositeElement); err != nil {
			return fmt.Errorf("failed to insert element def for %s position %d: %w", segmentID, spec.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit element defs import: %w", err)
	}
	return nil
}

// ImportSegmentUsage bulk-loads the ordered segment listing for one
// transaction set, replacing any existing rows for the same key.
func (s *SQLiteStorage) ImportSegmentUsage(ctx context.Context, agency, version, transactionSetID string, usages []model.SegmentUsage, custom bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionSetID, "transactionSetID"); err != nil {
		return err
	}

	table := "segment_usage"
	if custom {
		table = "custom_segment_usage"
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE transaction_set_id = ? AND agency = ? AND version = ?`, table),
		transactionSetID, agency, version); err != nil {
		return fmt.Errorf("failed to clear existing segment usage: %w", err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (agency, version, transaction_set_id, position,
			segment_id, requirement_designator, maximum_usage,
			maximum_loop_repeat, loop_id, section)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)

	for _, usage := range usages {
		if _, err := tx.ExecContext(ctx, insert,
			agency, version, transactionSetID, usage.Position,
			usage.SegmentID, usage.Requirement, usage.MaximumUsage,
			usage.MaximumLoopRepeat, usage.LoopID, usage.Section); err != nil {
			return fmt.Errorf("failed to insert segment usage %s position %d: %w", usage.SegmentID, usage.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit segment usage import: %w", err)
	}
	return nil
}

// ElementDefRow is one parsed mapping-file row: an element spec tagged
// with the segment it belongs to.
type ElementDefRow struct {
	SegmentID string
	Spec      model.ElementSpec
}

// ReadElementDefsCSV parses element definitions from a mapping CSV with a
// header row. Recognized columns: segment_id, position, element_id,
// description, requirement_designator, type, minimum_length,
// maximum_length, composite_element.
func ReadElementDefsCSV(r io.Reader) ([]ElementDefRow, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return parseElementDefRows(records)
}

// ReadElementDefsXLSX parses element definitions from the first sheet of
// a mapping workbook.
func ReadElementDefsXLSX(path string) ([]ElementDefRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return parseElementDefRows(rows)
}

func parseElementDefRows(records [][]string) ([]ElementDefRow, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("mapping file has no data rows")
	}

	columns := indexColumns(records[0])
	required := []string{"segment_id", "position"}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("mapping file missing required column %q", name)
		}
	}

	var out []ElementDefRow
	for i, record := range records[1:] {
		segmentID := cell(record, columns, "segment_id")
		if segmentID == "" {
			continue
		}

		position, err := strconv.Atoi(cell(record, columns, "position"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid position: %w", i+2, err)
		}

		out = append(out, ElementDefRow{
			SegmentID: segmentID,
			Spec: model.ElementSpec{
				Position:         position,
				ElementID:        cell(record, columns, "element_id"),
				Description:      cell(record, columns, "description"),
				Requirement:      cell(record, columns, "requirement_designator"),
				Type:             cell(record, columns, "type"),
				MinimumLength:    cellInt(record, columns, "minimum_length"),
				MaximumLength:    cellInt(record, columns, "maximum_length"),
				CompositeElement: cell(record, columns, "composite_element"),
			},
		})
	}

	return out, nil
}

// SegmentUsageRow is one parsed mapping-file row: a segment usage entry
// tagged with its transaction set.
type SegmentUsageRow struct {
	TransactionSetID string
	Usage            model.SegmentUsage
}

// ReadSegmentUsageCSV parses segment usage entries from a mapping CSV
// with a header row. Recognized columns: transaction_set_id, position,
// segment_id, requirement_designator, maximum_usage, maximum_loop_repeat,
// loop_id, section.
func ReadSegmentUsageCSV(r io.Reader) ([]SegmentUsageRow, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return parseSegmentUsageRows(records)
}

// ReadSegmentUsageXLSX parses segment usage entries from the first sheet
// of a mapping workbook.
func ReadSegmentUsageXLSX(path string) ([]SegmentUsageRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return parseSegmentUsageRows(rows)
}

func parseSegmentUsageRows(records [][]string) ([]SegmentUsageRow, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("mapping file has no data rows")
	}

	columns := indexColumns(records[0])
	required := []string{"transaction_set_id", "position", "segment_id"}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("mapping file missing required column %q", name)
		}
	}

	var out []SegmentUsageRow
	for i, record := range records[1:] {
		transactionSetID := cell(record, columns, "transaction_set_id")
		if transactionSetID == "" {
			continue
		}

		position, err := strconv.Atoi(cell(record, columns, "position"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid position: %w", i+2, err)
		}

		out = append(out, SegmentUsageRow{
			TransactionSetID: transactionSetID,
			Usage: model.SegmentUsage{
				Position:          position,
				SegmentID:         cell(record, columns, "segment_id"),
				Requirement:       cell(record, columns, "requirement_designator"),
				MaximumUsage:      cellInt(record, columns, "maximum_usage"),
				MaximumLoopRepeat: cellInt(record, columns, "maximum_loop_repeat"),
				LoopID:            cell(record, columns, "loop_id"),
				Section:           cell(record, columns, "section"),
			},
		})
	}

	return out, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func cell(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func cellInt(record []string, columns map[string]int, name string) int {
	v, err := strconv.Atoi(cell(record, columns, name))
	if err != nil {
		return 0
	}
	return v
}
