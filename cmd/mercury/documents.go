package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mercuryedi/mercury/internal/cli"
	"github.com/mercuryedi/mercury/internal/model"
	"github.com/mercuryedi/mercury/internal/storage"
)

func documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Register inbound documents",
	}

	cmd.AddCommand(documentsAddCmd())

	return cmd
}

func documentsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <sender> <document-id> <text-file>",
		Short: "Register a document profile and its source text",
		Long: `Store a document's source text and its profile: which standard,
version, and transaction set the conversion should target.

Examples:
  mercury documents add ACME INV-1001 invoice.txt --transaction-set 810
  mercury documents add ACME PO-2001 order.txt --transaction-set 850`,
		Args: cobra.ExactArgs(3),
		RunE: runDocumentsAdd,
	}

	cmd.Flags().String("standard", "EDI/X12", "Target standard")
	cmd.Flags().String("schema-version", "004010", "Schema version")
	cmd.Flags().String("transaction-set", "810", "Transaction set ID")

	return cmd
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sender := args[0]
	documentID := args[1]
	textPath := args[2]

	standard, _ := cmd.Flags().GetString("standard")
	schemaVersion, _ := cmd.Flags().GetString("schema-version")
	transactionSet, _ := cmd.Flags().GetString("transaction-set")

	text, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("failed to read document text: %w", err)
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	profile := &model.DocumentProfile{
		InterchangeSender: sender,
		DocumentID:        documentID,
		Standard:          standard,
		Version:           schemaVersion,
		TransactionSetID:  transactionSet,
	}
	if err := store.SaveDocumentProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to save document profile: %w", err)
	}

	if err := store.SaveRawDocument(ctx, documentID+storage.RawTextSuffix, string(text)); err != nil {
		return fmt.Errorf("failed to save document text: %w", err)
	}

	slog.Info("Registered document",
		"sender", sender,
		"document_id", documentID,
		"transaction_set", transactionSet,
		"bytes", len(text))

	fmt.Fprintln(os.Stdout, cli.FormatSuccess(
		fmt.Sprintf("Registered %s/%s for transaction set %s", sender, documentID, transactionSet)))
	return nil
}
