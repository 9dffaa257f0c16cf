package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out := captureStdout(func() {
		require.NoError(t, newTestRoot("init", "--out", path).Execute())
	})
	assert.Contains(t, out, "Wrote sample config to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bru2openapi configuration")
}

func TestInit_SampleConfigKeysAreAccepted(t *testing.T) {
	t.Parallel()

	// Uncommenting every documented key must yield a config readConfigFile accepts.
	var lines []string
	for _, line := range strings.Split(sampleConfigYAML, "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, ": ") && !strings.Contains(line, "(") {
			lines = append(lines, strings.TrimPrefix(line, "# "))
		}
	}
	require.NotEmpty(t, lines)
	path := filepath.Join(t.TempDir(), "all.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	fc, err := readConfigFile(path)
	require.NoError(t, err)
	require.NotNil(t, fc.Input)
	assert.Equal(t, "./bruno", *fc.Input)
	require.NotNil(t, fc.BaseURL)
	assert.Equal(t, "https://api.example.com", *fc.BaseURL)
	require.NotNil(t, fc.LogFile)
	require.NotNil(t, fc.TypesOut)
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	err := newTestRoot("init", "--out", path).Execute()
	require.Error(t, err)
	_, ok := err.(usageError)
	assert.True(t, ok, "expected usage error, got %T: %v", err, err)

	captureStdout(func() {
		require.NoError(t, newTestRoot("init", "--out", path, "--force").Execute())
	})
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "x", string(data))
}
