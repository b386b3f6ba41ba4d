package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/mercuryedi/mercury/internal/model"
)

// RenderResult writes a conversion result as a styled report.
func RenderResult(w io.Writer, documentID string, result *model.ConversionResult) {
	var b strings.Builder

	fmt.Fprintf(&b, "Run ID: %s\n", SubtleStyle.Render(result.RunID))
	fmt.Fprintf(&b, "Status: %s\n", renderStatus(result.Status))

	if len(result.Findings) > 0 {
		b.WriteString("\nFindings:\n")
		for _, f := range result.Findings {
			b.WriteString("  " + renderFinding(f) + "\n")
		}
	}

	if len(result.Segments) > 0 {
		fmt.Fprintf(&b, "\nSegments (%d):\n", len(result.Segments))
		for _, seg := range result.Segments {
			b.WriteString("  " + SegmentStyle.Render(seg) + "\n")
		}
	}

	if _, err := fmt.Fprintln(w, RenderBox("Conversion: "+documentID, b.String())); err != nil {
		slog.Warn("Failed to write result box", "error", err)
	}
}

func renderStatus(status model.ConversionStatus) string {
	switch status {
	case model.StatusSuccess:
		return SuccessStyle.Render(string(status))
	case model.StatusFailed:
		return ErrorStyle.Render(string(status))
	case model.StatusNeedsReview:
		return WarningStyle.Render(string(status))
	default:
		return SubtleStyle.Render(string(status))
	}
}

func renderFinding(f model.Finding) string {
	if f.Blocking() {
		return FormatError(f.String())
	}
	return FormatWarning(f.String())
}

// NewDocumentProgressBar creates a progress bar for batch document
// conversion.
func NewDocumentProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Converting documents...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
