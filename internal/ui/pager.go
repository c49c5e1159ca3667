package ui

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// PagerOptions controls pager behavior
type PagerOptions struct {
	// NoPager disables the pager (--no-pager flag on preview)
	NoPager bool
}

// shouldUsePager is false when the pager is disabled by option or by
// SCRIBE_NO_PAGER, in agent mode, and when stdout is not a terminal.
func shouldUsePager(opts PagerOptions) bool {
	if opts.NoPager || IsAgentMode() || os.Getenv("SCRIBE_NO_PAGER") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// pagerCommand checks SCRIBE_PAGER, then PAGER, and defaults to "less".
func pagerCommand() []string {
	for _, env := range []string{"SCRIBE_PAGER", "PAGER"} {
		if parts := strings.Fields(os.Getenv(env)); len(parts) > 0 {
			return parts
		}
	}
	return []string{"less"}
}

func terminalHeight() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	_, height, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return height
}

// ToPager writes content through a pager when stdout is a terminal and the
// content is taller than it; otherwise content goes straight to out.
func ToPager(out io.Writer, content string, opts PagerOptions) error {
	if !shouldUsePager(opts) {
		_, err := io.WriteString(out, content)
		return err
	}
	if h := terminalHeight(); h > 0 && strings.Count(content, "\n")+1 <= h-1 {
		_, err := io.WriteString(out, content)
		return err
	}

	parts := pagerCommand()
	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager command comes from SCRIBE_PAGER/PAGER
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// -R keeps colors, -F quits when the content fits, -X leaves the screen alone.
	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		cmd.Env = append(cmd.Env, "LESS=-RFX")
	}
	return cmd.Run()
}
