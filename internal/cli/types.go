package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/bru2openapi/internal/emitter/tsemitter"
)

const defaultTypesOut = "./src/apis/types"

// TypesConfig captures the inputs of the types command.
type TypesConfig struct {
	Input      string
	Out        string
	DryRun     bool
	Force      bool
	ConfigPath string
	Verbose    bool
}

var typesRunner = runTypes

func newTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Generate TypeScript declarations from a Bruno collection",
		Long: "Generate one types.ts file per collection folder, holding interfaces inferred from " +
			"request bodies and documented response examples.",
		Example: strings.TrimSpace(`  bru2openapi types --input ./bruno --out ./src/apis/types
  bru2openapi types --dry-run`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveTypesConfig(cmd)
			if err != nil {
				return err
			}
			return typesRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", defaultInput, "Directory containing the Bruno collection")
	flags.String("out", defaultTypesOut, "Directory that receives <domain>/types.ts")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite a non-empty output directory")
	return cmd
}

func resolveTypesConfig(cmd *cobra.Command) (*TypesConfig, error) {
	cfg := TypesConfig{Input: defaultInput, Out: defaultTypesOut}

	fc, path, err := configFromFlag(cmd.Flags())
	if err != nil {
		return nil, err
	}
	cfg.ConfigPath = path
	setString(&cfg.Input, fc.Input)
	setString(&cfg.Out, fc.TypesOut)
	setBool(&cfg.DryRun, fc.DryRun)
	setBool(&cfg.Force, fc.Force)
	setBool(&cfg.Verbose, fc.Verbose)

	flags := cmd.Flags()
	for _, o := range []struct {
		name string
		dst  *string
	}{{"input", &cfg.Input}, {"out", &cfg.Out}} {
		if err := overrideString(flags, o.name, o.dst); err != nil {
			return nil, err
		}
	}
	for _, o := range []struct {
		name string
		dst  *bool
	}{{"dry-run", &cfg.DryRun}, {"force", &cfg.Force}, {"verbose", &cfg.Verbose}} {
		if err := overrideBool(flags, o.name, o.dst); err != nil {
			return nil, err
		}
	}

	cfg.Input = strings.TrimSpace(cfg.Input)
	cfg.Out = strings.TrimSpace(cfg.Out)
	if cfg.Input == "" {
		return nil, newUsageError("types: --input must not be empty")
	}
	if cfg.Out == "" {
		return nil, newUsageError("types: --out must not be empty")
	}
	return &cfg, nil
}

func runTypes(ctx context.Context, cfg *TypesConfig) error {
	logger := slog.Default()
	coll, err := collect(cfg.Input, logger)
	if err != nil {
		return err
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}
	res, err := tsemitter.Emit(ctx, coll.Files, tsemitter.Options{
		OutDir: cfg.Out,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Logger: logger,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	if cfg.DryRun {
		paths := make([]string, 0, len(res.Planned))
		for _, p := range res.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(res.Planned), paths)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Wrote %d type files to %s\n", len(res.Planned), absOut)
	return nil
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}
