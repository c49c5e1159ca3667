package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor follows the NO_COLOR and CLICOLOR conventions, then falls
// back to whether stdout is a terminal.
func ShouldUseColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if v := os.Getenv("CLICOLOR_FORCE"); v != "" && v != "0" {
		return true
	}
	return IsTerminal()
}

// ShouldUseEmoji reports whether status icons may be printed.
func ShouldUseEmoji() bool {
	if os.Getenv("SCRIBE_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}

// IsAgentMode reports whether output is consumed by an agent rather than a
// person. Agent mode skips markdown rendering and the pager.
func IsAgentMode() bool {
	return os.Getenv("SCRIBE_AGENT_MODE") == "1"
}

// ColorProfile returns the profile styles render with.
func ColorProfile() termenv.Profile {
	if !ShouldUseColor() {
		return termenv.Ascii
	}
	p := termenv.NewOutput(os.Stdout).EnvColorProfile()
	if p == termenv.Ascii && os.Getenv("CLICOLOR_FORCE") != "" {
		p = termenv.ANSI256
	}
	return p
}

// ApplyColorProfile makes every lipgloss style honour ColorProfile.
func ApplyColorProfile() {
	lipgloss.SetColorProfile(ColorProfile())
}

// TerminalWidth returns the stdout width, or fallback when unknown.
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
