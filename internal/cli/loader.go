package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/typelattice/canon/internal/compiler"
)

// LoadSessionFile reads a CUE session file and compiles it. The session
// struct may live under a top-level "session" field or be the file's
// root value.
func LoadSessionFile(path string) (*compiler.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("reading session file %s", path), err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("parsing session file %s", path), err)
	}

	if nested := value.LookupPath(cue.ParsePath("session")); nested.Exists() {
		value = nested
	}

	session, err := compiler.CompileSession(value)
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("compiling session file %s", path), err)
	}
	return session, nil
}
