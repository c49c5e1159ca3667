package main

import (
	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/debug"
	"github.com/scribe-docs/scribe/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:     "mcp",
	GroupID: "setup",
	Short:   "Serve scribe operations as MCP tools over stdio",
	Long: `Run an MCP server on stdin/stdout. Every operation is exposed as a tool with
underscores in place of hyphens (create_page, document_session, ...). Tool
results are the same JSON documents --json prints.

Diagnostics go to stderr; set SCRIBE_DEBUG=1 to see them.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		server := mcpserver.New(newDispatcher(), Version, debug.Logger())
		debug.Logf("mcp: serving on stdio\n")
		if err := mcpserver.Serve(rootCtx, server); err != nil && rootCtx.Err() == nil {
			FatalError("mcp server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
