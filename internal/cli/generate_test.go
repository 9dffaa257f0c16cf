package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/bru2openapi/internal/contract"
)

// These tests swap the package-level runners, so they do not run in parallel.

func captureGenerate(t *testing.T) **GenerateConfig {
	t.Helper()
	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })
	return &captured
}

func newTestRoot(args ...string) *cobra.Command {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root
}

func TestGenerateConfigDefaults(t *testing.T) {
	captured := captureGenerate(t)

	require.NoError(t, newTestRoot("generate").Execute())
	cfg := *captured
	require.NotNil(t, cfg)
	assert.Equal(t, "./bruno", cfg.Input)
	assert.Equal(t, "./openapi.json", cfg.Output)
	assert.Equal(t, "API", cfg.Title)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, contract.FormatJSON, cfg.format)
	assert.False(t, cfg.HoistSchemas)
	assert.False(t, cfg.Validate)
	assert.False(t, cfg.Watch)
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured := captureGenerate(t)

	err := newTestRoot(
		"--verbose",
		"generate",
		"--input", "collection",
		"--output", "./build/api.yml",
		"--title", " Users API ",
		"--version", "2.1.0",
		"--description", "demo",
		"--base-url", "https://api.example.com",
		"--hoist-schemas",
		"--validate",
	).Execute()
	require.NoError(t, err)

	cfg := *captured
	require.NotNil(t, cfg)
	assert.Equal(t, "collection", cfg.Input)
	assert.Equal(t, "./build/api.yml", cfg.Output)
	assert.Equal(t, "Users API", cfg.Title)
	assert.Equal(t, "2.1.0", cfg.Version)
	assert.Equal(t, "demo", cfg.Description)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, contract.FormatYAML, cfg.format)
	assert.True(t, cfg.HoistSchemas)
	assert.True(t, cfg.Validate)
	assert.True(t, cfg.Verbose)
}

func TestGenerateConfigPrecedence(t *testing.T) {
	captured := captureGenerate(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.TrimSpace(`input: from-config
output: config.yaml
title: Config Title
version: 3
base_url: https://config.example.com
Hoist-Schemas: true
validate: "yes"
verbose: true
typesOut: ./types
`) + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	err := newTestRoot(
		"--config", configPath,
		"generate",
		"--input", "from-flag",
		"--hoist-schemas=false",
		"--format", "json",
	).Execute()
	require.NoError(t, err)

	cfg := *captured
	require.NotNil(t, cfg)
	assert.Equal(t, "from-flag", cfg.Input)
	assert.Equal(t, "config.yaml", cfg.Output)
	assert.Equal(t, "Config Title", cfg.Title)
	assert.Equal(t, "3", cfg.Version)
	assert.Equal(t, "https://config.example.com", cfg.BaseURL)
	assert.False(t, cfg.HoistSchemas, "flag overrides config")
	assert.True(t, cfg.Validate)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, contract.FormatJSON, cfg.format, "explicit format beats the extension")
	assert.Equal(t, configPath, cfg.ConfigPath)
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	captureGenerate(t)

	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("unknown: value\n"), 0o600))

	err := newTestRoot("--config", configPath, "generate").Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))
	assert.Contains(t, err.Error(), "unknown field")
}

func TestGenerateConfigBadValues(t *testing.T) {
	captureGenerate(t)

	err := newTestRoot("generate", "--format", "toml").Execute()
	require.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "unsupported format")

	err = newTestRoot("generate", "--input", "  ").Execute()
	require.ErrorIs(t, err, ErrUsage)

	err = newTestRoot("--log-level", "loud", "generate").Execute()
	require.ErrorIs(t, err, ErrUsage)

	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("validate: maybe\n"), 0o600))
	err = newTestRoot("--config", configPath, "generate").Execute()
	require.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "invalid boolean")
}
