package mcpserver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func toolRequest(name string, arguments map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: struct {
			Name      string    `json:"name"`
			Arguments any       `json:"arguments,omitempty"`
			Meta      *mcp.Meta `json:"_meta,omitempty"`
		}{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

const validYAML = `
envlist: [unit]
environments:
  - name: unit
    description: unit tests
    deps: [pytest]
    commands:
      - [pytest, "{posargs}"]
  - name: lint
    commands:
      - [flake8]
`

func TestHandleListEnvironments(t *testing.T) {
	s := New(writeConfig(t, validYAML), "test")

	result, err := s.handleListEnvironments(context.Background(), toolRequest("tenv_list_environments", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textContent(t, result)
	assert.Contains(t, text, `"name": "unit"`)
	assert.Contains(t, text, `"name": "lint"`)
	assert.Contains(t, text, `"default": true`)
}

func TestHandleValidateConfig(t *testing.T) {
	s := New(writeConfig(t, validYAML), "test")

	result, err := s.handleValidateConfig(context.Background(), toolRequest("tenv_validate_config", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "configuration valid")
}

func TestHandleValidateConfig_Invalid(t *testing.T) {
	s := New(writeConfig(t, `
environments:
  - name: unit
    deps: ["-bad-dep"]
`), "test")

	result, err := s.handleValidateConfig(context.Background(), toolRequest("tenv_validate_config", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleRunEnvironment_MissingName(t *testing.T) {
	s := New(writeConfig(t, validYAML), "test")

	result, err := s.handleRunEnvironment(context.Background(), toolRequest("tenv_run_environment", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything fn wrote to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	original := os.Stdout
	reader, writer, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = writer
	defer func() { os.Stdout = original }()

	fn()

	require.NoError(t, writer.Close())
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	return string(data)
}

func TestHandleRunEnvironment_NoStdout(t *testing.T) {
	// Stdout is the JSON-RPC stream on the stdio transport; a run must not
	// write to it.
	workdir := t.TempDir()
	s := New(writeConfig(t, fmt.Sprintf(`
workdir: %s
environments:
  - name: unit
    skip_install: true
    allowlist_externals: ["*"]
    commands:
      - ["true"]
`, workdir)), "test")

	var result *mcp.CallToolResult
	var err error
	stdout := captureStdout(t, func() {
		result, err = s.handleRunEnvironment(context.Background(), toolRequest("tenv_run_environment",
			map[string]interface{}{"name": "unit"}))
	})

	require.NoError(t, err)
	require.False(t, result.IsError, "run should pass: %s", textContent(t, result))
	assert.Empty(t, stdout, "tool handler must not write to stdout")
}

func TestHandleRunEnvironment_Unknown(t *testing.T) {
	s := New(writeConfig(t, validYAML), "test")

	result, err := s.handleRunEnvironment(context.Background(), toolRequest("tenv_run_environment",
		map[string]interface{}{"name": "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "unknown environment")
}
