package markup

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Validate checks that c is well-formed: every element closed in order and
// every CDATA section terminated. Macro namespaces are not resolved.
func Validate(c Content) error {
	dec := xml.NewDecoder(strings.NewReader("<scribe-root>" + string(c) + "</scribe-root>"))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity

	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("malformed storage markup: %w", err)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if depth != 0 {
		return fmt.Errorf("malformed storage markup: %d unclosed element(s)", depth)
	}
	return nil
}

// CodeBlocks returns the bodies of the code macros in document order.
func CodeBlocks(c Content) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader("<scribe-root>" + string(c) + "</scribe-root>"))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity

	var (
		blocks []string
		inCode bool
		inBody bool
		cur    strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return blocks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("malformed storage markup: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "structured-macro" && macroName(t) == "code" {
				inCode = true
			}
			if inCode && t.Name.Local == "plain-text-body" {
				inBody = true
				cur.Reset()
			}
		case xml.CharData:
			if inBody {
				cur.Write(t)
			}
		case xml.EndElement:
			if inBody && t.Name.Local == "plain-text-body" {
				inBody = false
				blocks = append(blocks, cur.String())
			}
			if inCode && t.Name.Local == "structured-macro" {
				inCode = false
			}
		}
	}
}

func macroName(t xml.StartElement) string {
	for _, a := range t.Attr {
		if a.Name.Local == "name" {
			return a.Value
		}
	}
	return ""
}
