package semantic_test

import (
	"strings"
	"testing"

	"github.com/fluxlang/fluxc/internal/parser"
	"github.com/fluxlang/fluxc/internal/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convertSource(t *testing.T, src string) (*semantic.File, []string) {
	t.Helper()
	file := parser.ParseFile("t.flux", src)
	conv := semantic.NewConverter("main", nil)
	sf, errs := conv.Convert(file)
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return sf, msgs
}

func variableNames(sf *semantic.File) []string {
	var names []string
	for _, st := range sf.Body {
		if v, ok := st.(*semantic.Variable); ok {
			names = append(names, v.Symbol.Name)
		}
	}
	return names
}

func TestConvertVariableBindsWellFormedInitializer(t *testing.T) {
	sf, errs := convertSource(t, "x = 5")
	require.Empty(t, errs)
	assert.Contains(t, variableNames(sf), "x")
}

func TestConvertVariableSkipsMalformedInitializer(t *testing.T) {
	// `x = ()` never produces a value: the parser recovers from the missing
	// `=>` by salvaging an incomplete function literal, and the converter
	// must not let that failure still bind x.
	sf, errs := convertSource(t, "x = ()")

	assert.NotContains(t, variableNames(sf), "x")
	require.NotEmpty(t, errs)
	found := false
	for _, m := range errs {
		if strings.Contains(m, "ARROW") {
			found = true
		}
	}
	assert.True(t, found, "expected an ARROW-related diagnostic, got %v", errs)
}
