package resolver_test

import (
	"path/filepath"
	"testing"

	"github.com/fluxlang/fluxc/internal/config"
	"github.com/fluxlang/fluxc/internal/diag"
	"github.com/fluxlang/fluxc/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Prelude = nil // universe/influxdata packages aren't part of these fixtures
	return cfg
}

func TestResolveSimpleImport(t *testing.T) {
	archive := txtar.Parse([]byte(`
-- a/a.flux --
package a

x = 5

-- b/b.flux --
package b

import "a"

y = a.x
`))
	r := resolver.New(resolver.NewTxtarLoader(archive), testConfig())

	pe, err := r.Resolve("b")
	require.NoError(t, err)
	assert.False(t, pe.Errors.HasErrors(), "unexpected errors: %v", pe.Errors)
	assert.Contains(t, pe.Exports, "y")
}

func TestResolveDetectsImportCycle(t *testing.T) {
	archive := txtar.Parse([]byte(`
-- a/a.flux --
package a

import "b"

x = b.y

-- b/b.flux --
package b

import "a"

y = a.x
`))
	r := resolver.New(resolver.NewTxtarLoader(archive), testConfig())

	_, err := r.Resolve("a")
	require.Error(t, err)

	derr, ok := err.(*diag.Error)
	require.True(t, ok, "expected *diag.Error, got %T", err)
	assert.Equal(t, diag.ImportCycle, derr.Kind)
}

func TestResolveCachesWithinOneResolver(t *testing.T) {
	archive := txtar.Parse([]byte(`
-- a/a.flux --
package a

x = 5
`))
	r := resolver.New(resolver.NewTxtarLoader(archive), testConfig())

	first, err := r.Resolve("a")
	require.NoError(t, err)
	second, err := r.Resolve("a")
	require.NoError(t, err)
	assert.Same(t, first, second, "a second Resolve of the same path should hit the in-memory cache")
}

func TestResolverDiskCachePersistsExports(t *testing.T) {
	archive := txtar.Parse([]byte(`
-- a/a.flux --
package a

x = 5
`))
	cfg := testConfig()
	cfg.ResolverCacheDir = filepath.Join(t.TempDir(), "flcache")

	first := resolver.New(resolver.NewTxtarLoader(archive), cfg)
	pe1, err := first.Resolve("a")
	require.NoError(t, err)
	require.Contains(t, pe1.Exports, "x")

	entries, err := filepath.Glob(filepath.Join(cfg.ResolverCacheDir, "*.flcache"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "resolving one error-free package should write exactly one cache file")

	// A second Resolver instance, with its own empty in-memory cache but
	// pointed at the same source and the same cache directory, recomputes
	// the same hash and reads the already-written file straight back.
	second := resolver.New(resolver.NewTxtarLoader(archive), cfg)
	pe2, err := second.Resolve("a")
	require.NoError(t, err)
	require.Contains(t, pe2.Exports, "x")
	assert.Equal(t, pe1.Exports["x"].String(), pe2.Exports["x"].String())
}
