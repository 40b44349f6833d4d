package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout, stderr
// and the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func sessionPath(name string) string {
	return filepath.Join("testdata", name)
}

func TestCompleteCommand_Text(t *testing.T) {
	out, _, err := execute(t, "complete", sessionPath("collection.cue"))
	require.NoError(t, err)

	want := "Rewrite system: {\n" +
		"- τ_0_0.[Sequence] => τ_0_0\n" +
		"- τ_0_0.[Collection] => τ_0_0\n" +
		"}\n"
	assert.Equal(t, want, out)
}

func TestCompleteCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "complete", sessionPath("collection.cue"))
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)

	data, ok := response.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "success", data["result"])

	rules, ok := data["rules"].([]any)
	require.True(t, ok)
	assert.Len(t, rules, 2)
	assert.Contains(t, rules, "τ_0_0.[Collection] => τ_0_0")
}

func TestCompleteCommand_BudgetExitReportsResult(t *testing.T) {
	// No -v: budget exhaustion must still land on stderr. The exit is
	// clean and the rules so far are printed, but the caller has to be
	// told the system may not be confluent.
	out, errOut, err := execute(t, "complete", "--max-depth", "1", sessionPath("overlap.cue"))
	require.NoError(t, err)

	assert.Contains(t, errOut, "result: max_depth")
	assert.Contains(t, out, "Z.W => X.V")
}

func TestCompleteCommand_BudgetExitJSON(t *testing.T) {
	out, errOut, err := execute(t, "--format", "json", "complete", "--max-depth", "1", sessionPath("overlap.cue"))
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	data, ok := response.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "max_depth", data["result"])
	assert.NotContains(t, errOut, "result: max_depth", "JSON mode carries the result in the payload")
}

func TestCompleteCommand_UnknownProtocol(t *testing.T) {
	_, errOut, err := execute(t, "complete", sessionPath("unknown-protocol.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "unknown protocol")
}

func TestCompleteCommand_MissingFile(t *testing.T) {
	_, _, err := execute(t, "complete", sessionPath("nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSimplifyCommand(t *testing.T) {
	out, _, err := execute(t, "simplify", sessionPath("collection.cue"), "τ_0_0.[Collection].[Sequence]")
	require.NoError(t, err)
	assert.Equal(t, "τ_0_0\n", out)
}

func TestSimplifyCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "simplify", sessionPath("collection.cue"), "τ_0_0.[Collection]")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Equal(t, "ok", response.Status)

	data, ok := response.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "τ_0_0", data["normal"])
}

func TestSimplifyCommand_BudgetExitReportsResult(t *testing.T) {
	out, errOut, err := execute(t, "simplify", "--max-depth", "1", sessionPath("overlap.cue"), "X.Y.W")
	require.NoError(t, err)

	assert.Contains(t, errOut, "result: max_depth")
	assert.Equal(t, "X.V\n", out)
}

func TestSimplifyCommand_BadTerm(t *testing.T) {
	_, errOut, err := execute(t, "simplify", sessionPath("collection.cue"), "τ_0_0..A")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "E202")
}

func TestValidateCommand(t *testing.T) {
	out, _, err := execute(t, "validate", sessionPath("collection.cue"))
	require.NoError(t, err)
	assert.Equal(t, "session ok: 2 protocol(s), 2 seed rule(s)\n", out)
}

func TestValidateCommand_ReportsCompileError(t *testing.T) {
	_, errOut, err := execute(t, "validate", sessionPath("unknown-protocol.cue"))
	require.Error(t, err)
	assert.Contains(t, errOut, "E205")
}

func TestRootCommand_RejectsBadFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "validate", sessionPath("collection.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVerboseGoesToStderr(t *testing.T) {
	out, errOut, err := execute(t, "-v", "complete", sessionPath("collection.cue"))
	require.NoError(t, err)

	assert.Contains(t, errOut, "Completion finished: success")
	assert.NotContains(t, out, "Completion finished")
}
