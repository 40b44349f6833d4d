package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/typelattice/canon/internal/compiler"
	"github.com/typelattice/canon/internal/protograph"
)

// ValidateData is the JSON payload for a validate run.
type ValidateData struct {
	Protocols int `json:"protocols"`
	Rules     int `json:"rules"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate <session.cue>",
		Short:         "Compile a session file and report errors without completing",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(rootOpts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	session, err := LoadSessionFile(path)
	if err != nil {
		formatter.Failure(errorCode(err), err.Error())
		return err
	}

	data := ValidateData{
		Protocols: len(session.Graph.Protocols()),
		Rules:     len(session.Seeds),
	}
	if formatter.Format == "json" {
		return formatter.Success(data)
	}
	return formatter.Success(fmt.Sprintf("session ok: %d protocol(s), %d seed rule(s)\n", data.Protocols, data.Rules))
}

// errorCode extracts a stable error code from compiler, parser and graph
// errors for structured output.
func errorCode(err error) string {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compileErr.Code
	}
	var parseErr *compiler.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Code
	}
	var graphErr *protograph.GraphError
	if errors.As(err, &graphErr) {
		return graphErr.Code
	}
	return "E001"
}
