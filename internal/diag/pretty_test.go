package diag_test

import (
	"bytes"
	"testing"

	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/diag"
	"github.com/stretchr/testify/assert"
)

func TestPrettyErrorPlainBuffer(t *testing.T) {
	// bytes.Buffer is never a *os.File, so PrettyError must degrade to
	// plain, uncolored text regardless of the environment running the test.
	err := diag.New(diag.CannotUnify, ast.Location{
		File:  "query.flux",
		Start: ast.Position{Line: 3, Column: 5},
		End:   ast.Position{Line: 3, Column: 9},
		Source: "x = 1\ny = 2\nz = x + true\n",
	}, "cannot unify %s with %s", "int", "bool")

	var buf bytes.Buffer
	out := diag.PrettyError(&buf, err)

	assert.Contains(t, out, "query.flux:3:5")
	assert.Contains(t, out, "cannot unify int with bool")
	assert.Contains(t, out, "[CannotUnify]")
	assert.NotContains(t, out, "\033[", "a non-terminal writer must not receive ANSI escapes")
	assert.Contains(t, out, "z = x + true")
}

func TestPrintErrorsWritesEveryError(t *testing.T) {
	errs := diag.Errors{
		diag.New(diag.UnresolvedSymbol, ast.Location{File: "a.flux"}, "unresolved symbol %q", "foo"),
		diag.New(diag.MissingArgument, ast.Location{File: "a.flux"}, "missing argument %q", "bar"),
	}

	var buf bytes.Buffer
	diag.PrintErrors(&buf, errs)

	out := buf.String()
	assert.Contains(t, out, "unresolved symbol \"foo\"")
	assert.Contains(t, out, "missing argument \"bar\"")
}
