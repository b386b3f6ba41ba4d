package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mercuryedi/mercury/internal/cli"
	"github.com/mercuryedi/mercury/internal/edi"
	"github.com/mercuryedi/mercury/internal/engine"
	"github.com/mercuryedi/mercury/internal/service"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <sender> <document-id>...",
		Short: "Extract and validate records without assembling segments",
		Long: `Run extraction and validation only. Each result carries the populated
record and any findings, with no segment output. Equivalent to
"convert --no-build".

Examples:
  mercury extract ACME INV-1001
  mercury extract ACME INV-1001 INV-1002`,
		Args: cobra.MinimumNArgs(2),
		RunE: runExtract,
	}

	cmd.Flags().Int("token-budget", 0, "Estimated-token ceiling before chunk retrieval kicks in (0 = never)")
	cmd.Flags().Int("chunks", 5, "Chunks to retrieve for oversized documents")

	_ = viper.BindPFlag("convert.token_budget", cmd.Flags().Lookup("token-budget"))
	_ = viper.BindPFlag("convert.chunks", cmd.Flags().Lookup("chunks"))

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sender := args[0]
	documentIDs := args[1:]

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

	failures := 0
	for _, docID := range documentIDs {
		result, convErr := converter.Convert(ctx, sender, docID, false)
		if convErr != nil {
			failures++
			fmt.Fprintln(os.Stdout, cli.FormatError(fmt.Sprintf("%s: %v", docID, convErr)))
			continue
		}
		cli.RenderResult(os.Stdout, docID, result)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed", failures, len(documentIDs))
	}
	return nil
}
