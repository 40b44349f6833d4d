package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions carries the global flags every subcommand reads.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand wires up the canon CLI: complete runs Knuth-Bendix
// completion over a session, simplify answers normal-form queries
// against a completed session, validate compiles a session without
// completing it.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "canon",
		Short: "canon - confluent term rewriting for generic signatures",
		Long: "Completes seed rewrite rules derived from generic signatures into a\n" +
			"confluent system and answers normal-form queries over it.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(
		NewCompleteCommand(opts),
		NewSimplifyCommand(opts),
		NewValidateCommand(opts),
	)

	return cmd
}
