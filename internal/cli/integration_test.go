package cli_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI runs the shapeview binary through go run and returns stdout, stderr
// and the run error.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestCLI_FileInputOutput tests the CLI with file input and output
func TestCLI_FileInputOutput(t *testing.T) {
	tempDir := t.TempDir()

	jsonContent := `{
		"name": "John Doe",
		"address": {"street": "123 Main St", "city": "Anytown"},
		"phones": [
			{"type": "home", "number": "555-1234"},
			{"type": "work", "number": "555-5678"}
		],
		"active": true
	}`
	jsonFile := filepath.Join(tempDir, "person.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0o644))
	outputFile := filepath.Join(tempDir, "person.md")

	_, stderr, err := runCLI(t, "", "-i", jsonFile, "-o", outputFile, "-F", "markdown")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Contains(t, stderr, "Output written to "+outputFile)

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	md := string(content)

	assert.Contains(t, md, "**File:** "+jsonFile+" json")
	assert.Contains(t, md, "| name | John Doe |")
	assert.Contains(t, md, "| active | true |")

	// Nested values get their own sections, in breadth-first order
	address := strings.Index(md, "### $.address")
	phones := strings.Index(md, "### $.phones")
	require.GreaterOrEqual(t, address, 0)
	require.GreaterOrEqual(t, phones, 0)
	assert.Less(t, address, phones)
	assert.Contains(t, md, "| type | number |")
	assert.Contains(t, md, "| work | 555-5678 |")
}

// TestCLI_StdinStdout tests piping JSON through the CLI
func TestCLI_StdinStdout(t *testing.T) {
	stdout, stderr, err := runCLI(t, `[{"item": "apple", "qty": 3}, {"item": "pear"}]`, "-F", "text")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.True(t, strings.HasPrefix(stdout, "File: stdin json\n"))
	assert.Regexp(t, `item\s+│\s+qty`, stdout)
	assert.Regexp(t, `apple\s+│\s+3`, stdout)
}

func TestCLI_YAMLFile(t *testing.T) {
	yamlFile := filepath.Join(t.TempDir(), "service.yaml")
	yamlContent := `defaults: &defaults
  replicas: 2
  image: app:1.0
service:
  <<: *defaults
  name: api
`
	require.NoError(t, os.WriteFile(yamlFile, []byte(yamlContent), 0o644))

	stdout, stderr, err := runCLI(t, "", "-F", "markdown", yamlFile)
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Contains(t, stdout, "**File:** "+yamlFile+" yaml")
	assert.Contains(t, stdout, "### $.service")
	assert.Contains(t, stdout, "| replicas | 2 |")
	assert.Contains(t, stdout, "| name | api |")
}

func TestCLI_JSONDescriptors(t *testing.T) {
	stdout, stderr, err := runCLI(t, `{"tags": ["a", "b"]}`, "-F", "json")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	want := `{"shape":"nestedObject","fields":{"tags":{"shape":"simpleArray","items":["a","b"]}}}`
	assert.JSONEq(t, want, stdout)
}

func TestCLI_Summary(t *testing.T) {
	stdout, stderr, err := runCLI(t, `{"rows": [{"a": 1}, {"b": 2}]}`, "-F", "summary")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Contains(t, stdout, "nodes")
	assert.Contains(t, stdout, "widest table")
	assert.Contains(t, stdout, "$.rows (2 columns)")
}

func TestCLI_SourceFile(t *testing.T) {
	pyFile := filepath.Join(t.TempDir(), "app.py")
	require.NoError(t, os.WriteFile(pyFile, []byte("x = 42\n"), 0o644))

	stdout, stderr, err := runCLI(t, "", "-F", "json", pyFile)
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Contains(t, stdout, `"module"`)
	assert.Contains(t, stdout, `"integer"`)
}

// TestCLI_InvalidJSON tests the CLI with invalid JSON input
func TestCLI_InvalidJSON(t *testing.T) {
	_, stderr, err := runCLI(t, `{"name": "broken",}`)
	require.Error(t, err)
	assert.Contains(t, stderr, "Parsing error:")
	assert.Contains(t, stderr, "For help, run: shapeview --help")
}

func TestCLI_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")

	_, stderr, err := runCLI(t, "", "-i", missing)
	require.Error(t, err)
	assert.Contains(t, stderr, "Input error: file '"+missing+"' not found")
}

// TestCLI_EmptyInput tests the CLI with no input on stdin
func TestCLI_EmptyInput(t *testing.T) {
	_, stderr, err := runCLI(t, "", "-F", "text")
	require.Error(t, err)
	assert.Contains(t, stderr, "Input error:")
}

func TestCLI_UnknownFormat(t *testing.T) {
	_, stderr, err := runCLI(t, `{}`, "-F", "pdf")
	require.Error(t, err)
	assert.Contains(t, stderr, "Configuration error:")
	assert.Contains(t, stderr, "pdf")
}

func TestCLI_NegativeMaxDepth(t *testing.T) {
	_, stderr, err := runCLI(t, `{"a": {"b": 1}}`, "--max-depth=-1")
	require.Error(t, err)
	assert.Contains(t, stderr, "Configuration error:")
	assert.Contains(t, stderr, "invalid max_depth -1")
}

// TestCLI_Version tests the version flag
func TestCLI_Version(t *testing.T) {
	stdout, _, err := runCLI(t, "", "-v")
	require.NoError(t, err)
	assert.Contains(t, stdout, "shapeview version 0.1.0")
}

// TestCLI_Help tests the help flag
func TestCLI_Help(t *testing.T) {
	stdout, _, err := runCLI(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage: shapeview")
	assert.Contains(t, stdout, "--max-depth")
	assert.Contains(t, stdout, "--watch")
}
