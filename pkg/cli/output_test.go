package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for s, want := range map[string]Format{
		"":     FormatYAML,
		"yaml": FormatYAML,
		"json": FormatJSON,
		"raw":  FormatRaw,
	} {
		got, err := ParseFormat(s)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", s, got, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat accepted unsupported format")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, map[string]any{"name": "test", "value": 123}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if out["name"] != "test" {
		t.Errorf("name = %v, want test", out["name"])
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, map[string]string{"name": "test"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "name: test") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteRaw(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatRaw, "raw string data"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "raw string data" {
		t.Errorf("output = %q", buf.String())
	}

	// Structured values fall back to YAML.
	buf.Reset()
	if err := Write(&buf, FormatRaw, map[string]int{"count": 42}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "count: 42") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Format("xml"), "x"); err == nil {
		t.Error("Write accepted unsupported format")
	}
}
