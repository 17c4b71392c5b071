package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const definition = `
name: gauge block
unit: mm
value: 25.0
series:
  readings: [25.01, 25.03, 24.99, 25.02, 25.00]
sources:
  - {name: calibration, uncertainty: 0.01, type: B}
`

func writeDefinition(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTextReport(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	path := writeDefinition(t, "gauge.yaml", definition)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-f", path, "-k", "3"}, nil, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Series: 5 readings")
	assert.Contains(t, out, "Uncertainty Budget: gauge block")
	assert.Contains(t, out, "repeatability")
	assert.Contains(t, out, "Expanded uncertainty (k=3)")
	assert.Contains(t, out, "Result:")
}

func TestCoverageOverrideReachesResult(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	path := writeDefinition(t, "gauge.yaml", definition)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-f", path, "-json", "-k", "3"}, nil, &stdout, &stderr), stderr.String())

	var out reportJSON
	require.NoError(t, sonic.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, 3.0, out.Coverage)
	require.NotNil(t, out.Result)
	require.NotNil(t, out.Expanded)
	assert.InDelta(t, out.Expanded.Value, out.Result.Uncertainty, 1e-12)
	assert.InDelta(t, 3*out.Combined.Value, out.Result.Uncertainty, 1e-12)
}

func TestJSONReport(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	path := writeDefinition(t, "gauge.yaml", definition)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-f", path, "-json"}, nil, &stdout, &stderr), stderr.String())

	var out reportJSON
	require.NoError(t, sonic.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "gauge block", out.Name)
	assert.Equal(t, 5, out.Readings)
	assert.Equal(t, 2.0, out.Coverage)
	require.Len(t, out.Contributions, 2)
	assert.Equal(t, "repeatability", out.Contributions[0].Name)
	require.NotNil(t, out.Result)
	assert.Equal(t, 25.0, out.Result.Value)
	assert.InDelta(t, 2*out.Combined.Value, out.Result.Uncertainty, 1e-12)
}

func TestErrors(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run(nil, nil, &stdout, &stderr))
	assert.Equal(t, 1, run([]string{"-f", filepath.Join(t.TempDir(), "missing.yaml")}, nil, &stdout, &stderr))
	assert.Equal(t, 1, run([]string{"-f", writeDefinition(t, "empty.yaml", "name: x")}, nil, &stdout, &stderr))
	assert.Equal(t, 1, run([]string{"-f", writeDefinition(t, "bad.toml", "name = ")}, nil, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"-f", "x.yaml", "-k", "-1"}, nil, &stdout, &stderr))
	assert.Equal(t, 1, run([]string{"-f", "x.yaml", "-format", "json"}, nil, &stdout, &stderr))
	assert.Equal(t, 1, run([]string{"-f", "-", "-format", "ini"}, strings.NewReader(definition), &stdout, &stderr))
	assert.Equal(t, 1, run([]string{"-f", filepath.Join(t.TempDir(), "*.yaml")}, nil, &stdout, &stderr))
	assert.Empty(t, stdout.String())
}

func TestStdin(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-f", "-"}, strings.NewReader(definition), &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "Uncertainty Budget: gauge block")

	toml := "name = \"resistor\"\nunit = \"ohm\"\n\n[[sources]]\nname = \"meter\"\nuncertainty = 0.2\ntype = \"B\"\n"
	stdout.Reset()
	require.Equal(t, 0, run([]string{"-f", "-", "-format", "toml", "-json"}, strings.NewReader(toml), &stdout, &stderr), stderr.String())
	var out reportJSON
	require.NoError(t, sonic.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "resistor", out.Name)
	assert.Equal(t, "Ω", out.Combined.Unit)
}

func TestGlob(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(definition), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(strings.Replace(definition, "gauge block", "second block", 1)), 0o600))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-f", filepath.Join(dir, "*.yaml"), "-json"}, nil, &stdout, &stderr), stderr.String())

	var out []reportJSON
	require.NoError(t, sonic.Unmarshal(stdout.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "gauge block", out[0].Name)
	assert.Equal(t, "second block", out[1].Name)

	stdout.Reset()
	require.Equal(t, 0, run([]string{"-f", filepath.Join(dir, "*.yaml")}, nil, &stdout, &stderr), stderr.String())
	assert.Equal(t, 2, strings.Count(stdout.String(), "Uncertainty Budget:"))
}
