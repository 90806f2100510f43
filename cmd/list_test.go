package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

const listTestConfig = `
envlist: [unit]
environments:
  - name: unit
    description: unit tests
    deps: [pytest]
    commands:
      - [pytest]
  - name: lint
    commands:
      - [flake8]
`

func withTestConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Error writing config: %v", err)
	}
	original := rootConfigPath
	rootConfigPath = path
	t.Cleanup(func() { rootConfigPath = original })
}

func TestListTableOutput(t *testing.T) {
	withTestConfig(t, listTestConfig)

	cmd := newListCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := runList(cmd, nil); err != nil {
		t.Fatalf("Error running list: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"unit", "lint", "pytest"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q. Got: %q", want, output)
		}
	}
}

func TestListJSONOutput(t *testing.T) {
	withTestConfig(t, listTestConfig)

	cmd := newListCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	listOutput = "json"
	defer func() { listOutput = "table" }()

	if err := runList(cmd, nil); err != nil {
		t.Fatalf("Error running list: %v", err)
	}

	var infos []environmentInfo
	if err := json.Unmarshal(buf.Bytes(), &infos); err != nil {
		t.Fatalf("Error decoding JSON output: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 environments, got %d", len(infos))
	}
	if infos[0].Name != "unit" || !infos[0].Default {
		t.Errorf("Expected unit to be first and default, got %+v", infos[0])
	}
	if infos[1].Name != "lint" || infos[1].Default {
		t.Errorf("Expected lint to be second and non-default, got %+v", infos[1])
	}
}

func TestTruncateCellKeepsRunesIntact(t *testing.T) {
	value := strings.Repeat("déjà-vü ", 10)

	truncated := truncateCell(value, 10)
	if !utf8.ValidString(truncated) {
		t.Errorf("Expected truncation to preserve UTF-8, got %q", truncated)
	}
	if !strings.Contains(truncated, "déjà") {
		t.Errorf("Expected truncated value to keep leading runes, got %q", truncated)
	}

	short := "déjà"
	if got := truncateCell(short, 10); got != short {
		t.Errorf("Expected short value to pass through, got %q", got)
	}
}

func TestListRejectsInvalidOutput(t *testing.T) {
	withTestConfig(t, listTestConfig)

	cmd := newListCmd()
	listOutput = "xml"
	defer func() { listOutput = "table" }()

	if err := runList(cmd, nil); err == nil {
		t.Error("Expected error for invalid output format")
	}
}
