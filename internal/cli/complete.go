package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/typelattice/canon/internal/compiler"
	"github.com/typelattice/canon/internal/rewrite"
)

// CompleteOptions holds flags for the complete command.
type CompleteOptions struct {
	*RootOptions
	MaxIterations int
	MaxDepth      int
	Debug         bool
}

// CompleteData is the JSON payload for a completion run.
type CompleteData struct {
	Result string   `json:"result"` // "success", "max_iterations", "max_depth"
	Rules  []string `json:"rules"`  // rendered rules, deleted entries included
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "complete <session.cue>",
		Short: "Run confluent completion over a session's seed rules",
		Long: `Compile a CUE session file, run Knuth-Bendix completion over its seed
rules and print the final rewrite system.

Budget exhaustion (max_iterations, max_depth) is a normal outcome, not a
failure: the rules printed are valid but the system may not be confluent.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 10000, "maximum rule insertions during completion")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 20, "maximum depth of generated rules")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "trace rule insertion, simplification and merging to stderr")

	return cmd
}

func runComplete(opts *CompleteOptions, path string, cmd *cobra.Command) error {
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

	formatter.VerboseLog("Compiled %d seed rule(s), %d protocol(s)", len(session.Seeds), len(session.Graph.Protocols()))

	system, result := completeSession(session, opts, cmd)

	formatter.VerboseLog("Completion finished: %s", result)
	if result != rewrite.CompletionSuccess && opts.Format != "json" {
		// Budget exhaustion still exits 0, but the caller has to hear
		// about it: the rules on stdout may not be confluent. JSON mode
		// carries the result in the payload instead.
		fmt.Fprintf(cmd.ErrOrStderr(), "result: %s\n", result)
	}

	if opts.Format == "json" {
		rules := make([]string, 0)
		for _, rule := range system.Rules() {
			rules = append(rules, rule.String())
		}
		return formatter.Success(CompleteData{Result: result.String(), Rules: rules})
	}

	var out strings.Builder
	if err := system.Dump(&out); err != nil {
		return err
	}
	return formatter.Success(out.String())
}

// completeSession builds a system from a compiled session and runs
// completion with the command's budgets and debug settings.
func completeSession(session *compiler.Session, opts *CompleteOptions, cmd *cobra.Command) (*rewrite.System, rewrite.CompletionResult) {
	system := rewrite.NewSystem()
	if opts.Debug {
		system.DebugAdd = true
		system.DebugSimplify = true
		system.DebugMerge = true
		system.DebugWriter = cmd.ErrOrStderr()
	}
	system.Initialize(session.Seeds, session.Graph)
	result := system.ComputeConfluentCompletion(opts.MaxIterations, opts.MaxDepth)
	return system, result
}
