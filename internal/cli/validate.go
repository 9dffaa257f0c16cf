package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/bru2openapi/internal/contract"
)

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "validate <contract>",
		Short:   "Validate an OpenAPI contract file",
		Long:    "Load a JSON or YAML OpenAPI 3 contract from disk and run structural validation over it.",
		Example: "  bru2openapi validate ./openapi.json",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return newUsageError(fmt.Sprintf("validate: expected exactly one contract path\n\n%s", cmd.UsageString()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateRunner(cmd.Context(), strings.TrimSpace(args[0]))
		},
	}
}

func runValidate(ctx context.Context, path string) error {
	doc, err := contract.Load(ctx, path)
	if err != nil {
		return contractErrorMessage(err)
	}
	ops := 0
	for _, byMethod := range contract.Operations(doc) {
		ops += len(byMethod)
	}
	fmt.Fprintf(os.Stdout, "%s is valid (OpenAPI %s, %d operations)\n", path, doc.OpenAPI, ops)
	return nil
}
