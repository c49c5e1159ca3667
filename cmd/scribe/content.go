package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/dispatch"
)

// addContentFlags registers the three mutually exclusive content sources.
func addContentFlags(cmd *cobra.Command) {
	cmd.Flags().String("content", "", "Page body in storage-format markup")
	cmd.Flags().String("content-file", "", "Read the page body from a file")
	cmd.Flags().Bool("content-stdin", false, "Read the page body from stdin")
	cmd.MarkFlagsMutuallyExclusive("content", "content-file", "content-stdin")
}

// readContent returns the page body from whichever content flag was set.
func readContent(cmd *cobra.Command, stdin io.Reader) (string, error) {
	content, _ := cmd.Flags().GetString("content")
	file, _ := cmd.Flags().GetString("content-file")
	fromStdin, _ := cmd.Flags().GetBool("content-stdin")

	switch {
	case cmd.Flags().Changed("content"):
		return content, nil
	case file != "":
		data, err := os.ReadFile(file) // #nosec G304 - user-chosen input file
		if err != nil {
			return "", fmt.Errorf("read content file: %w", err)
		}
		return string(data), nil
	case fromStdin:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read content from stdin: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("no content given")
	}
}

// mustReadContent is readContent for command handlers.
func mustReadContent(cmd *cobra.Command) string {
	content, err := readContent(cmd, os.Stdin)
	if err != nil {
		FatalErrorWithHint(err.Error(), "Pass --content, --content-file or --content-stdin", dispatch.ExitUsage)
	}
	return content
}
