package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/dispatch"
)

var callCmd = &cobra.Command{
	Use:     "call OPERATION [ARGS_JSON|-]",
	GroupID: "setup",
	Short:   "Run any operation with a JSON argument object",
	Long: `Run an operation by name with its arguments as one JSON object, the same
shape the MCP tools accept. Pass - to read the arguments from stdin.
The result is always printed as JSON.`,
	Example: `  scribe call search-page '{"title":"Runbook"}'
  scribe call --list`,
	Args: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if list, _ := cmd.Flags().GetBool("list"); list {
			for _, op := range dispatch.New(nil, nil).Operations() {
				fmt.Println(op)
			}
			return
		}

		req := dispatch.Request{Op: args[0]}
		if len(args) == 2 {
			raw, err := readArgs(args[1], os.Stdin)
			if err != nil {
				FatalErrorWithHint(err.Error(), "Arguments must be one JSON object", dispatch.ExitUsage)
			}
			req.Args = raw
		}
		jsonOutput = true
		emitResult(newDispatcher().Dispatch(rootCtx, req))
	},
}

func init() {
	callCmd.Flags().Bool("list", false, "List operation names")
	rootCmd.AddCommand(callCmd)
}

// readArgs returns the argument JSON given inline or, for "-", on stdin.
func readArgs(arg string, stdin io.Reader) (json.RawMessage, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		if data, err = io.ReadAll(stdin); err != nil {
			return nil, fmt.Errorf("read arguments: %w", err)
		}
	}
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") || !json.Valid([]byte(trimmed)) {
		return nil, fmt.Errorf("invalid JSON arguments")
	}
	return json.RawMessage(trimmed), nil
}
