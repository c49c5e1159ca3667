// Package ui provides terminal styling for scribe CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Ayu theme color palette
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
)

var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	// CategoryStyle is used for section headers.
	CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	// LabelStyle is used for the keys of key/value output.
	LabelStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Status icons
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconInfo = "ℹ"
)

// TreeChild prefixes child pages in tree output.
const TreeChild = "└─ "

// SeparatorLight is a horizontal rule.
const SeparatorLight = "──────────────────────────────────────────"

func RenderPass(s string) string   { return PassStyle.Render(s) }
func RenderWarn(s string) string   { return WarnStyle.Render(s) }
func RenderFail(s string) string   { return FailStyle.Render(s) }
func RenderMuted(s string) string  { return MutedStyle.Render(s) }
func RenderAccent(s string) string { return AccentStyle.Render(s) }

// RenderCategory renders a section header in uppercase with accent color.
func RenderCategory(s string) string {
	return CategoryStyle.Render(strings.ToUpper(s))
}

// RenderSeparator renders the light separator line in muted color.
func RenderSeparator() string {
	return MutedStyle.Render(SeparatorLight)
}

func icon(style lipgloss.Style, glyph, plain string) string {
	if !ShouldUseEmoji() {
		return style.Render(plain)
	}
	return style.Render(glyph)
}

// RenderPassIcon renders the pass icon, or "ok" without emoji support.
func RenderPassIcon() string { return icon(PassStyle, IconPass, "ok") }

// RenderWarnIcon renders the warning icon, or "warning" without emoji support.
func RenderWarnIcon() string { return icon(WarnStyle, IconWarn, "warning") }

// RenderFailIcon renders the fail icon, or "error" without emoji support.
func RenderFailIcon() string { return icon(FailStyle, IconFail, "error") }

// RenderInfoIcon renders the info icon, or "info" without emoji support.
func RenderInfoIcon() string { return icon(AccentStyle, IconInfo, "info") }
