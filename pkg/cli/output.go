// Package cli holds the output helpers shared by the lyrebird commands:
// structured result rendering (yaml, json, raw) and human-readable units
// for durations and byte sizes.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// Format selects how a command renders its result.
type Format string

const (
	// FormatYAML renders the result as YAML. This is the default.
	FormatYAML Format = "yaml"
	// FormatJSON renders the result as indented JSON.
	FormatJSON Format = "json"
	// FormatRaw writes strings and byte slices verbatim; anything else
	// falls back to YAML.
	FormatRaw Format = "raw"
)

// ParseFormat validates a user-supplied format flag. The empty string
// means FormatYAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatYAML, nil
	case FormatYAML, FormatJSON, FormatRaw:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// Write renders v to w in the given format.
func Write(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatRaw:
		switch data := v.(type) {
		case []byte:
			_, err := w.Write(data)
			return err
		case string:
			_, err := io.WriteString(w, data)
			return err
		}
		return writeYAML(w, v)
	case FormatYAML, "":
		return writeYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format %q", f)
	}
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}
