package main

import (
	"fmt"
	"os"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/dispatch"
)

// FatalError writes an error message to stderr and exits with code 1.
// Use this for failures that prevent the command from completing.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	exit(dispatch.ExitFailure)
}

// FatalErrorWithHint writes an error message with a hint to stderr and exits
// with the given code.
//
// Example:
//
//	FatalErrorWithHint("no content given", "Pass --content, --content-file or --content-stdin", dispatch.ExitUsage)
func FatalErrorWithHint(message, hint string, code int) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	exit(code)
}

// FatalAPIError reports an error from one of the internal packages, with the
// hint and exit code its kind maps to.
func FatalAPIError(err error) {
	kind := apierr.KindOf(err)
	if jsonOutput {
		outputJSON(&dispatch.Result{Error: &dispatch.ErrorBody{Kind: kind, Message: err.Error(), Hint: dispatch.Hint(kind)}})
		exit(exitCodeFor(kind))
	}
	FatalErrorWithHint(err.Error(), dispatch.Hint(kind), exitCodeFor(kind))
}

// WarnError writes a warning message to stderr and returns.
// Use this for auxiliary steps whose failure should not stop the command.
func WarnError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

func exitCodeFor(kind apierr.Kind) int {
	return (&dispatch.Result{Error: &dispatch.ErrorBody{Kind: kind}}).ExitCode()
}
