package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark3labs/bru2openapi/internal/logging"
)

// Execute runs the bru2openapi CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	closeLog := func() error { return nil }

	cmd := &cobra.Command{
		Use:   "bru2openapi",
		Short: "Generate OpenAPI contracts and TypeScript types from Bruno collections",
		Long: "bru2openapi reads a directory of Bruno .bru request files and produces an OpenAPI 3.0 contract, " +
			"inferring JSON schemas from request bodies and documented response examples.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveLogConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Stderr = cmd.ErrOrStderr()
			_, cleanup, err := logging.Setup(cfg)
			if err != nil {
				return newUsageError(fmt.Sprintf("logging: %v", err))
			}
			closeLog = cleanup
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLog()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	flagErr := func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	}
	cmd.SetFlagErrorFunc(flagErr)

	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file path (YAML or JSON)")
	pf.BoolP("verbose", "v", false, "Enable verbose logging output (implies --log-level debug)")
	pf.String("log-level", "info", "Log level (debug|info|warn|error)")
	pf.String("log-file", "", "Write logs to this rotating file instead of stderr")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newTypesCmd(), newValidateCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagErr)
		cmd.AddCommand(sub)
	}
	return cmd
}

func resolveLogConfig(cmd *cobra.Command) (logging.Config, error) {
	cfg := logging.DefaultConfig()
	var verbose bool

	// init may run before any config file exists.
	if cmd.Name() != "init" {
		fc, _, err := configFromFlag(cmd.Flags())
		if err != nil {
			return cfg, err
		}
		setString(&cfg.Level, fc.LogLevel)
		setString(&cfg.FilePath, fc.LogFile)
		setBool(&verbose, fc.Verbose)
	}

	flags := cmd.Flags()
	if err := overrideString(flags, "log-level", &cfg.Level); err != nil {
		return cfg, err
	}
	if err := overrideString(flags, "log-file", &cfg.FilePath); err != nil {
		return cfg, err
	}
	if err := overrideBool(flags, "verbose", &verbose); err != nil {
		return cfg, err
	}
	if verbose {
		cfg.Level = "debug"
	}
	return cfg, nil
}
