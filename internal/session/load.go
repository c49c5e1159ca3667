// Package session reads work-session records and project documentation
// bundles from files. YAML, TOML and JSON are accepted; the format follows
// the file extension.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/types"
)

// Format is a record file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Stdin is the path that reads from standard input.
const Stdin = "-"

// maxRecordSize bounds record files; code snippets make them large, but not
// this large.
const maxRecordSize = 32 << 20

// FormatFor picks the format from a file name. Unknown extensions and
// standard input are treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json", "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q (want yaml, toml or json)", name)
}

// LoadRecord reads a WorkSessionRecord from path, or from stdin when path is "-".
func LoadRecord(path string, stdin io.Reader) (*types.WorkSessionRecord, error) {
	var r types.WorkSessionRecord
	if err := load(path, stdin, &r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, apierr.Wrap(apierr.KindInvalidInput, "load session "+path, err)
	}
	return &r, nil
}

// LoadProjectDocs reads a ProjectDocs bundle from path, or from stdin when
// path is "-".
func LoadProjectDocs(path string, stdin io.Reader) (*types.ProjectDocs, error) {
	var d types.ProjectDocs
	if err := load(path, stdin, &d); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, apierr.Wrap(apierr.KindInvalidInput, "load project docs "+path, err)
	}
	return &d, nil
}

// Decode parses data in the given format into v.
func Decode(data []byte, format Format, v interface{}) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	case FormatTOML:
		_, err := toml.Decode(string(data), v)
		return err
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	}
}

// Encode writes v in the given format. Used by the CLI to print templates.
func Encode(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(v)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func load(path string, stdin io.Reader, v interface{}) error {
	op := "load " + path
	var (
		data []byte
		err  error
	)
	if path == Stdin {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err = io.ReadAll(io.LimitReader(stdin, maxRecordSize))
	} else {
		// #nosec G304 -- path is explicit user input
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return apierr.Wrap(apierr.KindInvalidInput, op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return apierr.New(apierr.KindInvalidInput, op, "file is empty")
	}
	if err := Decode(data, FormatFor(path), v); err != nil {
		return apierr.Wrap(apierr.KindInvalidInput, op, fmt.Errorf("parse %s: %w", FormatFor(path), err))
	}
	return nil
}
