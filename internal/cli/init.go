package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigFile = "bru2openapi.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample bru2openapi configuration file",
		Long:  "Scaffold a commented bru2openapi configuration file that documents available options.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{OutputPath: out, Force: force, Verbose: verbose})
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")
	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force && st.Mode().IsRegular() {
		return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML documents every key readConfigFile accepts.
const sampleConfigYAML = `# bru2openapi configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Directory holding the Bruno collection. Each top-level folder becomes a tag.
# input: ./bruno

# Where generate writes the contract; .yaml/.yml selects YAML output.
# output: ./openapi.json

# Contract info block.
# title: API
# version: 1.0.0
# description: Generated from the Bruno collection

# Server URL listed under servers.
# baseUrl: https://api.example.com

# Force the output format (json|yaml) regardless of the output extension.
# format: json

# Move inferred types into components.schemas and reference them with $ref.
# hoistSchemas: false

# Validate the contract before writing it.
# validate: false

# Keep running and regenerate when .bru files change.
# watch: false

# Where the types command writes <domain>/types.ts.
# typesOut: ./src/apis/types

# Preview planned type files without writing them (types command).
# dryRun: false

# Overwrite a non-empty types output directory (types command).
# force: false

# Logging level (debug|info|warn|error) and an optional rotating log file.
# verbose: false
# logLevel: info
# logFile: ./logs/bru2openapi.log
`
