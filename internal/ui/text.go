package ui

import (
	"strings"
	"unicode/utf8"
)

// TruncateSimple shortens text to maxLen runes with a "..." suffix.
func TruncateSimple(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string([]rune(text)[:maxLen-3]) + "..."
}

// WrapText wraps text at word boundaries to fit within maxWidth, keeping
// existing line breaks.
func WrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 80
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, maxWidth)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, maxWidth int) string {
	if utf8.RuneCountInString(line) <= maxWidth {
		return line
	}
	var b strings.Builder
	width := 0
	for _, word := range strings.Fields(line) {
		n := utf8.RuneCountInString(word)
		switch {
		case width == 0:
		case width+1+n <= maxWidth:
			b.WriteByte(' ')
			width++
		default:
			b.WriteByte('\n')
			width = 0
		}
		b.WriteString(word)
		width += n
	}
	return b.String()
}

// Indent prefixes every non-empty line of text.
func Indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// KeyValues renders label/value rows with the values aligned. Rows with an
// empty value are skipped.
func KeyValues(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		if r[1] != "" && utf8.RuneCountInString(r[0]) > width {
			width = utf8.RuneCountInString(r[0])
		}
	}
	var b strings.Builder
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(r[0]))
		b.WriteString(LabelStyle.Render(r[0] + ":"))
		b.WriteString(pad + " ")
		b.WriteString(r[1])
		b.WriteByte('\n')
	}
	return b.String()
}
