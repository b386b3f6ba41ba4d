package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mercuryedi/mercury/internal/cli"
	"github.com/mercuryedi/mercury/internal/edi"
)

func encodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <segment-id> [pos=value]...",
		Short: "Encode a single segment from positional values",
		Long: `Encode one segment against its stored layout, for inspecting schema
definitions and separator handling.

Examples:
  mercury encode BIG 1=20240827 2=INV-1001
  mercury encode N1 1=BT 3=10 4=WWWWWW --agency X --schema-version 004010`,
		Args: cobra.MinimumNArgs(1),
		RunE: runEncode,
	}

	// Flags
	cmd.Flags().String("agency", "X", "Schema agency code")
	cmd.Flags().String("schema-version", "004010", "Schema version")

	return cmd
}

func runEncode(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	segmentID := strings.ToUpper(args[0])
	agency, _ := cmd.Flags().GetString("agency")
	schemaVersion, _ := cmd.Flags().GetString("schema-version")

	values := make(map[int]any, len(args)-1)
	for _, arg := range args[1:] {
		pos, value, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("invalid value %q (expected pos=value)", arg)
		}
		position, err := strconv.Atoi(pos)
		if err != nil || position < 1 {
			return fmt.Errorf("invalid position %q", pos)
		}
		values[position] = value
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	encoder := edi.NewEncoder(store)
	segment, err := encoder.Encode(ctx, segmentID, values, agency, schemaVersion)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", segmentID, err)
	}

	fmt.Fprintln(os.Stdout, cli.SegmentStyle.Render(segment))
	return nil
}
