// Package markup renders scribe records into the knowledge base's storage
// format: XHTML plus ac:structured-macro elements for code blocks, panels
// and the table of contents.
//
// Rendering is pure. The same record always produces the same bytes, which
// is why timestamps travel inside the records instead of being read from the
// clock here. Every Render function validates its output with Validate before
// returning it, so callers never hand malformed markup to the transport.
package markup

import (
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/scribe-docs/scribe/internal/apierr"
)

// Content is rendered storage-format markup.
type Content string

func (c Content) String() string { return string(c) }

// Escape makes user text safe to embed as element content or attribute value.
func Escape(s string) string {
	return html.EscapeString(xmlText(s))
}

// xmlText reduces s to characters XML 1.0 can carry. Terminal escape
// sequences are stripped whole, invalid UTF-8 becomes U+FFFD and any other
// code point outside the XML Char range is dropped.
func xmlText(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	if strings.IndexByte(s, 0x1b) >= 0 {
		s = ansi.Strip(s)
	}
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s)
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	default:
		return r >= 0x10000 && r <= 0x10FFFF
	}
}

// cdataTerminator cannot appear inside a CDATA section. It is split across
// two adjacent sections so the code reads back byte for byte.
const cdataTerminator = "]]>"

// EscapeCDATA prepares code for embedding in a CDATA section.
func EscapeCDATA(code string) string {
	return strings.ReplaceAll(xmlText(code), cdataTerminator, "]]]]><![CDATA[>")
}

// PanelType selects the colour and icon of a panel macro.
type PanelType string

const (
	PanelInfo    PanelType = "info"
	PanelNote    PanelType = "note"
	PanelWarning PanelType = "warning"
	PanelTip     PanelType = "tip"
)

// CodeOptions tunes a code macro.
type CodeOptions struct {
	Title         string
	NoLineNumbers bool
}

// CodeBlock renders one code macro. Unknown languages fall back to plain text.
func CodeBlock(code, language string, opts CodeOptions) string {
	var b strings.Builder
	b.WriteString(`<ac:structured-macro ac:name="code" ac:schema-version="1">`)
	fmt.Fprintf(&b, `<ac:parameter ac:name="language">%s</ac:parameter>`, Escape(NormalizeLanguage(language)))
	if !opts.NoLineNumbers {
		b.WriteString(`<ac:parameter ac:name="linenumbers">true</ac:parameter>`)
	}
	if opts.Title != "" {
		fmt.Fprintf(&b, `<ac:parameter ac:name="title">%s</ac:parameter>`, Escape(opts.Title))
	}
	b.WriteString(`<ac:plain-text-body><![CDATA[`)
	b.WriteString(EscapeCDATA(code))
	b.WriteString(`]]></ac:plain-text-body></ac:structured-macro>`)
	return b.String()
}

// Panel wraps already rendered markup in a panel macro.
func Panel(kind PanelType, inner string) string {
	switch kind {
	case PanelInfo, PanelNote, PanelWarning, PanelTip:
	default:
		kind = PanelInfo
	}
	return fmt.Sprintf(`<ac:structured-macro ac:name="%s" ac:schema-version="1"><ac:rich-text-body>%s</ac:rich-text-body></ac:structured-macro>`, kind, inner)
}

// TableOfContents renders the toc macro.
func TableOfContents() string {
	return `<ac:structured-macro ac:name="toc" ac:schema-version="1" />`
}

// Link renders an anchor. The href is escaped like any other user text.
func Link(href, text string) string {
	if href == "" {
		return Escape(text)
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, Escape(href), Escape(text))
}

// page accumulates a document section by section.
type page struct {
	b strings.Builder
}

func (p *page) raw(s string) {
	if p.b.Len() > 0 {
		p.b.WriteByte('\n')
	}
	p.b.WriteString(s)
}

func (p *page) heading(text string) {
	p.raw("<h2>" + Escape(text) + "</h2>")
}

func (p *page) subheading(inner string) {
	p.raw("<h3>" + inner + "</h3>")
}

func (p *page) para(text string) {
	p.raw("<p>" + Escape(text) + "</p>")
}

// list renders items in input order; ordered selects <ol> over <ul>.
func (p *page) list(items []string, ordered bool) {
	tag := "ul"
	if ordered {
		tag = "ol"
	}
	var b strings.Builder
	b.WriteString("<" + tag + ">")
	for _, it := range items {
		b.WriteString("<li>" + Escape(it) + "</li>")
	}
	b.WriteString("</" + tag + ">")
	p.raw(b.String())
}

// table renders a header row and body rows. Cells are pre-rendered markup.
func (p *page) table(header []string, rows [][]string) {
	var b strings.Builder
	b.WriteString("<table>")
	if len(header) > 0 {
		b.WriteString("<thead><tr>")
		for _, h := range header {
			b.WriteString("<th>" + Escape(h) + "</th>")
		}
		b.WriteString("</tr></thead>")
	}
	b.WriteString("<tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + cell + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	p.raw(b.String())
}

// fieldTable renders a vertical key/value table with <th> keys.
func fieldTable(rows [][2]string) string {
	var b strings.Builder
	b.WriteString("<table><tbody>")
	for _, r := range rows {
		b.WriteString("<tr><th>" + Escape(r[0]) + "</th><td>" + r[1] + "</td></tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

// finish validates and returns the accumulated document.
func (p *page) finish() (Content, error) {
	c := Content(p.b.String())
	if err := Validate(c); err != nil {
		return "", &apierr.Error{Kind: apierr.KindInvalidInput, Op: "render", Err: err}
	}
	return c, nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

const timestampLayout = "2006-01-02 15:04:05"
