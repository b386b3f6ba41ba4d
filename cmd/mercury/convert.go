package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mercuryedi/mercury/internal/cli"
	"github.com/mercuryedi/mercury/internal/edi"
	"github.com/mercuryedi/mercury/internal/engine"
	"github.com/mercuryedi/mercury/internal/model"
	"github.com/mercuryedi/mercury/internal/service"
	"github.com/mercuryedi/mercury/internal/storage"
)

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <sender> <document-id>...",
		Short: "Convert stored documents to EDI segments",
		Long: `Extract structured data from stored document text and assemble the
EDI segment sequence for each document's registered transaction set.

Examples:
  mercury convert ACME INV-1001              # Convert one document
  mercury convert ACME INV-1001 INV-1002     # Convert a batch
  mercury convert ACME INV-1001 --no-build   # Extraction and validation only`,
		Args: cobra.MinimumNArgs(2),
		RunE: runConvert,
	}

	// Flags
	cmd.Flags().Bool("no-build", false, "Stop after extraction and validation")
	cmd.Flags().Bool("save", false, "Store the emitted segments alongside the source")
	cmd.Flags().Int("token-budget", 0, "Estimated-token ceiling before chunk retrieval kicks in (0 = never)")
	cmd.Flags().Int("chunks", 5, "Chunks to retrieve for oversized documents")

	_ = viper.BindPFlag("convert.no_build", cmd.Flags().Lookup("no-build"))
	_ = viper.BindPFlag("convert.save", cmd.Flags().Lookup("save"))
	_ = viper.BindPFlag("convert.token_budget", cmd.Flags().Lookup("token-budget"))
	_ = viper.BindPFlag("convert.chunks", cmd.Flags().Lookup("chunks"))

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sender := args[0]
	documentIDs := args[1:]
	noBuild := viper.GetBool("convert.no_build")
	save := viper.GetBool("convert.save")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	if migrateErr := store.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("failed to run migrations: %w", migrateErr)
	}

	extractor, err := createExtractionClient()
	if err != nil {
		return fmt.Errorf("failed to create extraction client: %w", err)
	}

	var retriever engine.Retriever
	if r, retrErr := createRetriever(); retrErr != nil {
		return retrErr
	} else if r != nil {
		retriever = r
	}

	converter := engine.NewConverter(store, extractor, retriever, engine.Config{
		TokenBudget:     viper.GetInt("convert.token_budget"),
		RetrievalChunks: viper.GetInt("convert.chunks"),
		Retry: service.RetryOptions{
			MaxAttempts: viper.GetInt("llm.max_retries"),
		},
		Validator: edi.ValidatorConfig{
			AmountTolerance: viper.GetFloat64("validation.amount_tolerance"),
			ConfidenceFloor: viper.GetFloat64("validation.confidence_floor"),
		},
	})

	var bar = cli.NewDocumentProgressBar(os.Stderr, len(documentIDs))
	failures := 0

	for _, docID := range documentIDs {
		result, convErr := converter.Convert(ctx, sender, docID, !noBuild)
		if convErr != nil {
			failures++
			fmt.Fprintln(os.Stdout, cli.FormatError(fmt.Sprintf("%s: %v", docID, convErr)))
			_ = bar.Add(1)
			continue
		}

		cli.RenderResult(os.Stdout, docID, result)

		if save && result.Status == model.StatusSuccess {
			encoded := strings.Join(result.Segments, "\n")
			if saveErr := store.SaveRawDocument(ctx, docID+storage.RawEncodedSuffix, encoded); saveErr != nil {
				return fmt.Errorf("failed to store encoded output for %s: %w", docID, saveErr)
			}
		}

		_ = bar.Add(1)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed", failures, len(documentIDs))
	}

	slog.Info("Conversion run complete", "documents", len(documentIDs))
	return nil
}
