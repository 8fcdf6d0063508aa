package parser_test

import (
	"testing"

	"github.com/fluxlang/fluxc/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileWellFormedSources(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"simple assignment", "x = 5"},
		{"package clause", "package main\n\nx = 5"},
		{"import", "package main\n\nimport \"lib/math\"\n\nx = 1"},
		{"function", "f = (x, y) => x + y"},
		{"duration literal", "d = 1h30m"},
		{"pipe chain", "x = data |> filter() |> limit(n: 5)"},
		{"record literal", `r = {a: 1, b: "two"}`},
		{"record with", `r2 = {r with a: 2}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			file := parser.ParseFile(c.name+".flux", c.source)
			require.NotNil(t, file)
			assert.Empty(t, file.Errors, "unexpected parse errors: %v", file.Errors)
			assert.NotEmpty(t, file.Body, "expected at least one statement")
		})
	}
}

func TestParseFileRecoversFromSyntaxErrors(t *testing.T) {
	// A parser over a total grammar never panics and never returns nil,
	// even over garbage input; every offending span becomes a Bad* node
	// plus a recorded error string rather than an aborted parse.
	file := parser.ParseFile("broken.flux", "x = = = ;;; )(")
	require.NotNil(t, file)
	assert.NotEmpty(t, file.Errors)
}

func TestParseFileEmptySource(t *testing.T) {
	file := parser.ParseFile("empty.flux", "")
	require.NotNil(t, file)
	assert.Empty(t, file.Body)
	assert.Empty(t, file.Errors)
}
