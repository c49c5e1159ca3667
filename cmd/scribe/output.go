package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/scribe-docs/scribe/internal/dispatch"
	"github.com/scribe-docs/scribe/internal/ui"
)

// outputJSON outputs data as pretty-printed JSON to stdout.
func outputJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		exit(dispatch.ExitFailure)
	}
}

// emitResult prints res as JSON or as human-readable text and exits with the
// result's exit code when it is not a success.
func emitResult(res *dispatch.Result) {
	if jsonOutput {
		outputJSON(res)
	} else {
		if res.Data != nil {
			fmt.Print(renderData(res.Data))
		}
		if !res.OK {
			printFailure(res)
		}
	}
	if code := res.ExitCode(); code != dispatch.ExitOK {
		exit(code)
	}
}

func printFailure(res *dispatch.Result) {
	e := res.Error
	if e == nil {
		fmt.Fprintf(os.Stderr, "%s %s failed\n", ui.RenderFailIcon(), res.Op)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", ui.RenderFailIcon(), e.Message)
	if e.Page != nil && res.Data == nil {
		fmt.Fprintf(os.Stderr, "  Page: %s (%s)\n", e.Page.Title, orDash(e.Page.URL))
	}
	if e.Hint != "" {
		fmt.Fprintf(os.Stderr, "  %s %s\n", ui.RenderMuted("Hint:"), e.Hint)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
