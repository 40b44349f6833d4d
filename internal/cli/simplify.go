package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/typelattice/canon/internal/compiler"
	"github.com/typelattice/canon/internal/rewrite"
)

// SimplifyOptions holds flags for the simplify command.
type SimplifyOptions struct {
	*CompleteOptions
}

// SimplifyData is the JSON payload for a simplify run.
type SimplifyData struct {
	Result string `json:"result"` // completion outcome
	Term   string `json:"term"`   // input term as given
	Normal string `json:"normal"` // normal form after completion
}

// NewSimplifyCommand creates the simplify command.
func NewSimplifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimplifyOptions{CompleteOptions: &CompleteOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "simplify <session.cue> <term>",
		Short: "Reduce a term to normal form against a completed session",
		Long: `Compile a CUE session file, run completion, then reduce the given term
to normal form. After a successful completion the normal form is unique,
so equal normal forms answer equivalence queries over generic parameters.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimplify(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 10000, "maximum rule insertions during completion")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 20, "maximum depth of generated rules")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "trace rule insertion, simplification and merging to stderr")

	return cmd
}

func runSimplify(opts *SimplifyOptions, path, termText string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	session, err := LoadSessionFile(path)
	if err != nil {
		formatter.Failure(errorCode(err), err.Error())
		return err
	}

	term, err := compiler.ParseTerm(termText, session.Graph)
	if err != nil {
		formatter.Failure(errorCode(err), err.Error())
		return WrapExitError(ExitFailure, "parsing term", err)
	}

	system, result := completeSession(session, opts.CompleteOptions, cmd)
	formatter.VerboseLog("Completion finished: %s", result)
	if result != rewrite.CompletionSuccess && opts.Format != "json" {
		// Without a confluent system the normal form below may not be
		// unique; say so on stderr like complete does.
		fmt.Fprintf(cmd.ErrOrStderr(), "result: %s\n", result)
	}

	system.Simplify(&term)

	if opts.Format == "json" {
		return formatter.Success(SimplifyData{
			Result: result.String(),
			Term:   termText,
			Normal: term.String(),
		})
	}
	return formatter.Success(fmt.Sprintf("%s\n", term.String()))
}
