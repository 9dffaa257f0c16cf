package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/bru2openapi/internal/bru"
	"github.com/mark3labs/bru2openapi/internal/contract"
)

const (
	defaultInput  = "./bruno"
	defaultOutput = "./openapi.json"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input        string
	Output       string
	Title        string
	Version      string
	Description  string
	BaseURL      string
	Format       string
	HoistSchemas bool
	Validate     bool
	Watch        bool
	ConfigPath   string
	Verbose      bool

	format contract.Format
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Input:   defaultInput,
		Output:  defaultOutput,
		Title:   "API",
		Version: "1.0.0",
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an OpenAPI contract from a Bruno collection",
		Long: "Generate an OpenAPI 3.0 contract from a directory of Bruno .bru request files. " +
			"Response schemas are inferred from JSON examples in docs blocks and request schemas from JSON bodies.",
		Example: strings.TrimSpace(`  bru2openapi generate --input ./bruno --output ./openapi.json
  bru2openapi generate --output api.yaml --title "Users API" --hoist-schemas --validate
  bru2openapi --config bru2openapi.yaml generate --watch`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", defaultInput, "Directory containing the Bruno collection")
	flags.String("output", defaultOutput, "Where to write the contract")
	flags.String("title", "API", "info.title of the contract")
	flags.String("version", "1.0.0", "info.version of the contract")
	flags.String("description", "", "info.description of the contract")
	flags.String("base-url", "", "Server URL to list under servers")
	flags.String("format", "", "Output format (json|yaml); inferred from --output when omitted")
	flags.Bool("hoist-schemas", false, "Write inferred types to components.schemas and reference them")
	flags.Bool("validate", false, "Validate the contract before writing it")
	flags.Bool("watch", false, "Regenerate whenever a .bru file changes")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	fc, path, err := configFromFlag(cmd.Flags())
	if err != nil {
		return nil, err
	}
	cfg.ConfigPath = path
	setString(&cfg.Input, fc.Input)
	setString(&cfg.Output, fc.Output)
	setString(&cfg.Title, fc.Title)
	setString(&cfg.Version, fc.Version)
	setString(&cfg.Description, fc.Description)
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.Format, fc.Format)
	setBool(&cfg.HoistSchemas, fc.HoistSchemas)
	setBool(&cfg.Validate, fc.Validate)
	setBool(&cfg.Watch, fc.Watch)
	setBool(&cfg.Verbose, fc.Verbose)

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	for name, dst := range map[string]*string{
		"input":       &cfg.Input,
		"output":      &cfg.Output,
		"title":       &cfg.Title,
		"version":     &cfg.Version,
		"description": &cfg.Description,
		"base-url":    &cfg.BaseURL,
		"format":      &cfg.Format,
	} {
		if err := overrideString(flags, name, dst); err != nil {
			return err
		}
	}
	for name, dst := range map[string]*bool{
		"hoist-schemas": &cfg.HoistSchemas,
		"validate":      &cfg.Validate,
		"watch":         &cfg.Watch,
		"verbose":       &cfg.Verbose,
	} {
		if err := overrideBool(flags, name, dst); err != nil {
			return err
		}
	}
	return nil
}

func overrideString(flags *pflag.FlagSet, name string, dst *string) error {
	if !flags.Changed(name) {
		return nil
	}
	value, err := flags.GetString(name)
	if err != nil {
		return err
	}
	*dst = strings.TrimSpace(value)
	return nil
}

func overrideBool(flags *pflag.FlagSet, name string, dst *bool) error {
	if !flags.Changed(name) {
		return nil
	}
	value, err := flags.GetBool(name)
	if err != nil {
		return err
	}
	*dst = value
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Output = strings.TrimSpace(c.Output)
	c.Title = strings.TrimSpace(c.Title)
	c.Version = strings.TrimSpace(c.Version)
	c.Description = strings.TrimSpace(c.Description)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input must not be empty")
	}
	if c.Output == "" {
		return newUsageError("generate: --output must not be empty")
	}
	format, err := contract.ParseFormat(c.Format, c.Output)
	if err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	c.format = format
	return nil
}

func (c *GenerateConfig) buildOptions(logger *slog.Logger) contract.Options {
	return contract.Options{
		Title:        c.Title,
		Version:      c.Version,
		Description:  c.Description,
		BaseURL:      c.BaseURL,
		HoistSchemas: c.HoistSchemas,
		Logger:       logger,
	}
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger := slog.Default()
	if cfg.Watch {
		return watchCollection(ctx, cfg.Input, logger, func() error {
			_, err := generateOnce(ctx, cfg, logger)
			return err
		})
	}
	_, err := generateOnce(ctx, cfg, logger)
	return err
}

// generateSummary reports what one generation pass produced.
type generateSummary struct {
	Output     string
	Files      int
	Failures   int
	Operations int
	Tags       int
}

func generateOnce(ctx context.Context, cfg *GenerateConfig, logger *slog.Logger) (*generateSummary, error) {
	coll, err := collect(cfg.Input, logger)
	if err != nil {
		return nil, err
	}

	doc := contract.Build(coll.Files, cfg.buildOptions(logger))

	if cfg.Validate {
		if err := contract.Validate(ctx, doc); err != nil {
			return nil, contractErrorMessage(err)
		}
	}

	absOut := cfg.Output
	if ap, err := filepath.Abs(cfg.Output); err == nil {
		absOut = ap
	}
	if err := contract.WriteFile(cfg.Output, doc, cfg.format); err != nil {
		return nil, wrapOutputError(err, absOut)
	}

	sum := &generateSummary{
		Output:   absOut,
		Files:    len(coll.Files),
		Failures: len(coll.Failures),
		Tags:     len(doc.Tags),
	}
	for _, ops := range contract.Operations(doc) {
		sum.Operations += len(ops)
	}
	logger.Info("contract written", "output", absOut, "operations", sum.Operations, "files", sum.Files, "failures", sum.Failures)
	fmt.Fprintf(os.Stdout, "Wrote %s (%d operations from %d files, %d tags)\n", absOut, sum.Operations, sum.Files, sum.Tags)
	return sum, nil
}

// collect walks the collection and logs per-file failures as warnings. Only a
// missing or unusable root is fatal.
func collect(root string, logger *slog.Logger) (*bru.Collection, error) {
	coll, err := bru.Collect(root)
	if err != nil {
		var le *bru.LoadError
		if errors.As(err, &le) && le.Code == bru.InputError {
			return nil, newUsageError(fmt.Sprintf("input: %s", le.Message))
		}
		return nil, err
	}
	for _, f := range coll.Failures {
		logger.Warn("skipping unreadable file", "file", f.Path, "error", f.Err)
	}
	logger.Debug("collection loaded", "root", coll.Root, "files", len(coll.Files), "failures", len(coll.Failures))
	return coll, nil
}

func contractErrorMessage(err error) error {
	var ce *contract.ContractError
	if !errors.As(err, &ce) {
		return err
	}
	prefix := fmt.Sprintf("contract %s", strings.ToLower(string(ce.Code)))
	if ce.Location != "" {
		prefix = fmt.Sprintf("%s in %s", prefix, ce.Location)
	}
	if ce.JSONPointer != "" {
		prefix = fmt.Sprintf("%s at %s", prefix, ce.JSONPointer)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

func wrapOutputError(err error, out string) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "directory") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different output location or use --force when appropriate.", out, msg))
	}
	return err
}
