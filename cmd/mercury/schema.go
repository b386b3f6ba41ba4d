package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mercuryedi/mercury/internal/cli"
	"github.com/mercuryedi/mercury/internal/model"
	"github.com/mercuryedi/mercury/internal/storage"
)

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage segment and element definitions",
	}

	cmd.AddCommand(schemaImportElementsCmd())
	cmd.AddCommand(schemaImportUsageCmd())

	return cmd
}

func schemaImportElementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-elements <file>",
		Short: "Import element definitions from a mapping file",
		Long: `Load per-segment element definitions from a CSV or XLSX mapping file
with a header row. Rows are grouped by segment and replace any existing
definitions for the same segment, agency, and version.

Examples:
  mercury schema import-elements defs.csv --agency X --schema-version 004010
  mercury schema import-elements partner.xlsx --custom`,
		Args: cobra.ExactArgs(1),
		RunE: runSchemaImportElements,
	}

	addSchemaImportFlags(cmd)
	return cmd
}

func schemaImportUsageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-usage <file>",
		Short: "Import transaction-set segment orderings from a mapping file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchemaImportUsage,
	}

	addSchemaImportFlags(cmd)
	return cmd
}

func addSchemaImportFlags(cmd *cobra.Command) {
	cmd.Flags().String("agency", "X", "Schema agency code")
	cmd.Flags().String("schema-version", "004010", "Schema version")
	cmd.Flags().Bool("custom", false, "Load into the custom (override) tier")
}

func runSchemaImportElements(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]
	agency, _ := cmd.Flags().GetString("agency")
	schemaVersion, _ := cmd.Flags().GetString("schema-version")
	custom, _ := cmd.Flags().GetBool("custom")

	rows, err := readElementDefs(path)
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	bySegment := make(map[string][]model.ElementSpec)
	for _, row := range rows {
		bySegment[row.SegmentID] = append(bySegment[row.SegmentID], row.Spec)
	}

	for segmentID, specs := range bySegment {
		if err := store.ImportElementDefs(ctx, agency, schemaVersion, segmentID, specs, custom); err != nil {
			return fmt.Errorf("failed to import %s: %w", segmentID, err)
		}
		slog.Info("Imported element definitions",
			"segment", segmentID,
			"elements", len(specs),
			"custom", custom)
	}

	fmt.Fprintln(os.Stdout, cli.FormatSuccess(
		fmt.Sprintf("Imported %d definitions across %d segments", len(rows), len(bySegment))))
	return nil
}

func runSchemaImportUsage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]
	agency, _ := cmd.Flags().GetString("agency")
	schemaVersion, _ := cmd.Flags().GetString("schema-version")
	custom, _ := cmd.Flags().GetBool("custom")

	rows, err := readSegmentUsage(path)
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	bySet := make(map[string][]model.SegmentUsage)
	for _, row := range rows {
		bySet[row.TransactionSetID] = append(bySet[row.TransactionSetID], row.Usage)
	}

	for transactionSetID, usages := range bySet {
		if err := store.ImportSegmentUsage(ctx, agency, schemaVersion, transactionSetID, usages, custom); err != nil {
			return fmt.Errorf("failed to import %s: %w", transactionSetID, err)
		}
		slog.Info("Imported segment usage",
			"transaction_set", transactionSetID,
			"segments", len(usages),
			"custom", custom)
	}

	fmt.Fprintln(os.Stdout, cli.FormatSuccess(
		fmt.Sprintf("Imported %d entries across %d transaction sets", len(rows), len(bySet))))
	return nil
}

func readElementDefs(path string) ([]storage.ElementDefRow, error) {
	if isWorkbook(path) {
		return storage.ReadElementDefsXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return storage.ReadElementDefsCSV(f)
}

func readSegmentUsage(path string) ([]storage.SegmentUsageRow, error) {
	if isWorkbook(path) {
		return storage.ReadSegmentUsageXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return storage.ReadSegmentUsageCSV(f)
}

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}
