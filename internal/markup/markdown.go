package markup

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ToMarkdown converts rendered storage markup to Markdown for terminal
// previews. It covers the elements and macros this package emits; anything
// else contributes its text only.
func ToMarkdown(c Content) (string, error) {
	dec := xml.NewDecoder(strings.NewReader("<scribe-root>" + string(c) + "</scribe-root>"))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity

	var m mdWriter
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed storage markup: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			m.start(t)
		case xml.EndElement:
			m.end(t)
		case xml.CharData:
			m.text(string(t))
		}
	}
	m.flush()
	return strings.TrimRight(m.out.String(), "\n") + "\n", nil
}

type mdList struct {
	ordered bool
	n       int
}

type mdWriter struct {
	out  strings.Builder
	line strings.Builder

	heading int
	prefix  string
	lists   []mdList
	hrefs   []string

	macros    []string
	panels    []int // out offsets where open panels start
	param     string
	paramVal  strings.Builder
	codeLang  string
	codeTitle string
	inBody    bool
	code      strings.Builder

	rows   [][]string
	cells  []string
	cell   strings.Builder
	inCell bool
}

func (m *mdWriter) inline() *strings.Builder {
	if m.inCell {
		return &m.cell
	}
	return &m.line
}

// flush ends the current block.
func (m *mdWriter) flush() {
	text := strings.TrimSpace(m.line.String())
	m.line.Reset()
	if text == "" {
		return
	}
	switch {
	case m.heading > 0:
		m.out.WriteString(strings.Repeat("#", m.heading) + " " + text + "\n\n")
	case m.prefix != "":
		m.out.WriteString(m.prefix + text + "\n")
	default:
		m.out.WriteString(text + "\n\n")
	}
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (m *mdWriter) start(t xml.StartElement) {
	switch t.Name.Local {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		m.flush()
		m.heading, _ = strconv.Atoi(t.Name.Local[1:])
	case "p":
		if !m.inCell {
			m.flush()
		}
	case "ul", "ol":
		m.flush()
		m.lists = append(m.lists, mdList{ordered: t.Name.Local == "ol"})
	case "li":
		m.flush()
		if len(m.lists) > 0 {
			l := &m.lists[len(m.lists)-1]
			l.n++
			marker := "- "
			if l.ordered {
				marker = strconv.Itoa(l.n) + ". "
			}
			m.prefix = strings.Repeat("  ", len(m.lists)-1) + marker
		}
	case "strong", "b":
		m.inline().WriteString("**")
	case "em", "i":
		m.inline().WriteString("_")
	case "code":
		m.inline().WriteString("`")
	case "a":
		m.hrefs = append(m.hrefs, attr(t, "href"))
		m.inline().WriteString("[")
	case "br":
		m.inline().WriteString(" ")
	case "table":
		m.flush()
		m.rows = nil
	case "tr":
		m.cells = nil
	case "th", "td":
		m.inCell = true
		m.cell.Reset()
	case "structured-macro":
		name := attr(t, "name")
		m.macros = append(m.macros, name)
		switch name {
		case "code":
			m.flush()
			m.codeLang, m.codeTitle = "", ""
			m.code.Reset()
		case "info", "note", "warning", "tip":
			m.flush()
			m.panels = append(m.panels, m.out.Len())
		}
	case "parameter":
		m.param = attr(t, "name")
		m.paramVal.Reset()
	case "plain-text-body":
		m.inBody = true
	}
}

func (m *mdWriter) end(t xml.EndElement) {
	switch t.Name.Local {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		m.flush()
		m.heading = 0
	case "p":
		if !m.inCell {
			m.flush()
		}
	case "li":
		m.flush()
		m.prefix = ""
	case "ul", "ol":
		m.flush()
		if len(m.lists) > 0 {
			m.lists = m.lists[:len(m.lists)-1]
		}
		if len(m.lists) == 0 {
			m.out.WriteString("\n")
		}
	case "strong", "b":
		m.inline().WriteString("**")
	case "em", "i":
		m.inline().WriteString("_")
	case "code":
		m.inline().WriteString("`")
	case "a":
		href := ""
		if n := len(m.hrefs); n > 0 {
			href, m.hrefs = m.hrefs[n-1], m.hrefs[:n-1]
		}
		m.inline().WriteString("](" + href + ")")
	case "th", "td":
		m.inCell = false
		m.cells = append(m.cells, strings.TrimSpace(strings.ReplaceAll(m.cell.String(), "|", `\|`)))
	case "tr":
		m.rows = append(m.rows, m.cells)
	case "table":
		m.writeTable()
	case "parameter":
		if m.currentMacro() == "code" {
			switch m.param {
			case "language":
				m.codeLang = m.paramVal.String()
			case "title":
				m.codeTitle = m.paramVal.String()
			}
		}
		m.param = ""
	case "plain-text-body":
		m.inBody = false
	case "structured-macro":
		name := m.currentMacro()
		if n := len(m.macros); n > 0 {
			m.macros = m.macros[:n-1]
		}
		switch name {
		case "code":
			if m.codeTitle != "" {
				m.out.WriteString("**" + m.codeTitle + "**\n\n")
			}
			m.out.WriteString("```" + m.codeLang + "\n" + m.code.String() + "\n```\n\n")
		case "info", "note", "warning", "tip":
			m.flush()
			m.closePanel(name)
		}
	}
}

func (m *mdWriter) text(s string) {
	switch {
	case m.inBody:
		m.code.WriteString(s)
	case m.param != "":
		m.paramVal.WriteString(s)
	default:
		if strings.TrimSpace(s) == "" && m.inline().Len() == 0 {
			return
		}
		m.inline().WriteString(strings.ReplaceAll(s, "\n", " "))
	}
}

func (m *mdWriter) currentMacro() string {
	if n := len(m.macros); n > 0 {
		return m.macros[n-1]
	}
	return ""
}

// closePanel rewrites everything written since the panel opened as a
// blockquote labelled with the panel kind.
func (m *mdWriter) closePanel(kind string) {
	n := len(m.panels)
	if n == 0 {
		return
	}
	startAt := m.panels[n-1]
	m.panels = m.panels[:n-1]

	all := m.out.String()
	inner := strings.TrimRight(all[startAt:], "\n")
	var b strings.Builder
	b.WriteString("> **" + strings.ToUpper(kind[:1]) + kind[1:] + "**\n")
	for _, l := range strings.Split(inner, "\n") {
		if l == "" {
			b.WriteString(">\n")
			continue
		}
		b.WriteString("> " + l + "\n")
	}
	m.out.Reset()
	m.out.WriteString(all[:startAt])
	m.out.WriteString(b.String() + "\n")
}

func (m *mdWriter) writeTable() {
	if len(m.rows) == 0 {
		return
	}
	width := 0
	for _, r := range m.rows {
		if len(r) > width {
			width = len(r)
		}
	}
	row := func(cells []string) string {
		padded := make([]string, width)
		copy(padded, cells)
		return "| " + strings.Join(padded, " | ") + " |\n"
	}
	m.out.WriteString(row(m.rows[0]))
	m.out.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
	for _, r := range m.rows[1:] {
		m.out.WriteString(row(r))
	}
	m.out.WriteString("\n")
	m.rows = nil
}
