// Package resolver implements a memoized, cycle-detecting package loader:
// given an import path, it locates the path's source
// files, parses and converts them as one package, recursively resolves
// every import the package makes, infers the result against the
// appropriate prelude, and caches the resulting PackageExports for the
// process lifetime.
package resolver

import (
	"sort"
	"strings"
	"sync"

	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/config"
	"github.com/fluxlang/fluxc/internal/diag"
	"github.com/fluxlang/fluxc/internal/infer"
	"github.com/fluxlang/fluxc/internal/parser"
	"github.com/fluxlang/fluxc/internal/semantic"
	"github.com/fluxlang/fluxc/internal/types"
)

// PackageExports is one resolved package's public surface: the generalized
// PolyType of every top-level binding whose name does not start with an
// underscore, plus whatever
// diagnostics its own conversion and inference produced. It is treated as
// immutable once returned — the resolver caches it for the process
// lifetime, so nothing downstream may mutate the map or its PolyTypes.
type PackageExports struct {
	Path    string
	Exports map[string]*types.PolyType
	Errors  diag.Errors
}

// SourceLoader discovers the *.flux source files backing an import path,
// returning file name -> contents. DirLoader reads a real stdlib tree;
// tests back this with a txtar archive instead.
type SourceLoader interface {
	Load(path string) (map[string]string, error)
}

// internalPreludePaths are inferred under a minimal internal prelude
// (true, false and now only; it binds no location primitive) rather than
// the full prelude,
// because they are either the prelude itself or one of a small hard-coded
// set of system packages the full prelude would otherwise need to import
// from — which would recurse forever.
var internalPreludePaths = map[string]bool{
	"universe":            true,
	"influxdata/influxdb": true,
	"system":              true,
}

// Resolver is the shared, mutex-protected cache plus the in-flight DFS
// state. Its cache is the only shared mutable state in the whole design.
type Resolver struct {
	loader SourceLoader
	cfg    *config.Config

	mu    sync.Mutex
	cache map[string]*PackageExports
	seen  map[string]bool
	done  map[string]bool
	stack []string
}

func New(loader SourceLoader, cfg *config.Config) *Resolver {
	return &Resolver{
		loader: loader,
		cfg:    cfg,
		cache:  map[string]*PackageExports{},
		seen:   map[string]bool{},
		done:   map[string]bool{},
	}
}

// Resolve implements resolve(path) -> PackageExports | ImportError. A
// seen-but-not-done path is a back edge: cycle detection synthesizes an
// ImportCycle naming the path and, in traversal order, the cycle that
// produced it. The lock is held only around the seen/done/cache
// bookkeeping, never across the recursive resolution itself, so a cycle
// is detected without ever deadlocking on its own path.
func (r *Resolver) Resolve(path string) (*PackageExports, error) {
	r.mu.Lock()
	if pe, ok := r.cache[path]; ok {
		r.mu.Unlock()
		return pe, nil
	}
	if r.seen[path] && !r.done[path] {
		cycle := append(append([]string{}, r.stack...), path)
		r.mu.Unlock()
		return nil, diag.NewImportCycle(path, cycle)
	}
	r.seen[path] = true
	r.stack = append(r.stack, path)
	r.mu.Unlock()

	pe, err := r.resolveUncached(path)

	r.mu.Lock()
	r.stack = r.stack[:len(r.stack)-1]
	r.done[path] = true
	if err == nil {
		r.cache[path] = pe
	}
	r.mu.Unlock()

	return pe, err
}

func (r *Resolver) resolveUncached(path string) (*PackageExports, error) {
	files, err := r.loader.Load(path)
	if err != nil {
		return nil, diag.New(diag.InvalidImportPath, ast.Location{}, "cannot load package %q: %v", path, err)
	}
	if len(files) == 0 {
		return nil, diag.New(diag.InvalidImportPath, ast.Location{}, "package %q has no source files", path)
	}

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	key := cacheKey(path, names, files)
	if exports, ok := r.loadCache(key); ok {
		return &PackageExports{Path: path, Exports: exports}, nil
	}

	var errs diag.Errors
	pkgName := "main"
	var mergedImports []*ast.ImportDeclaration
	var mergedBody []ast.Statement
	var fileLoc ast.Location

	for i, n := range names {
		f := parser.ParseFile(n, files[n])
		if i == 0 {
			fileLoc = f.Loc
		}
		if f.Package != nil && f.Package.Name != nil {
			if i == 0 {
				pkgName = f.Package.Name.Name
			} else if f.Package.Name.Name != pkgName {
				errs.Add(diag.New(diag.InvalidImportPath, f.Loc, "file %q declares package %q, expected %q", n, f.Package.Name.Name, pkgName))
			}
		}
		mergedImports = append(mergedImports, f.Imports...)
		mergedBody = append(mergedBody, f.Body...)
	}

	importSet := map[string]bool{}
	for _, imp := range mergedImports {
		importSet[imp.Path.Value] = true
	}
	importList := make([]string, 0, len(importSet))
	for p := range importSet {
		importList = append(importList, p)
	}
	sort.Strings(importList)

	importExports := map[string]map[string]*types.PolyType{}
	for _, imp := range importList {
		pe, err := r.Resolve(imp)
		if err != nil {
			if derr, ok := err.(*diag.Error); ok {
				if derr.Kind == diag.ImportCycle {
					return nil, derr
				}
				errs.Add(derr)
				continue
			}
			return nil, err
		}
		importExports[imp] = pe.Exports
	}

	prelude := r.preludeFor(path)
	preludeSymbols := make(map[string]semantic.Symbol, len(prelude))
	for name := range prelude {
		preludeSymbols[name] = semantic.Symbol{Package: "prelude", Name: name, ID: "prelude#" + name}
	}

	inf := infer.New(buildPreludeEnv(prelude, preludeSymbols))
	for p, exp := range importExports {
		inf.BindImport(p, exp)
	}

	merged := &ast.File{BaseNode: ast.BaseNode{Loc: fileLoc}, Name: path, Imports: mergedImports, Body: mergedBody}
	conv := semantic.NewConverter(pkgName, preludeSymbols)
	sf, cErrs := conv.Convert(merged)
	errs = append(errs, cErrs...)

	infErrs := inf.File(sf)
	errs = append(errs, infErrs...)

	exports := map[string]*types.PolyType{}
	for _, st := range sf.Body {
		v, ok := st.(*semantic.Variable)
		if !ok || strings.HasPrefix(v.Symbol.Name, "_") {
			continue
		}
		if poly, ok := inf.Env().Lookup(v.Symbol.ID); ok {
			exports[v.Symbol.Name] = poly
		}
	}

	if !errs.HasErrors() {
		r.storeCache(key, exports)
	}

	return &PackageExports{Path: path, Exports: exports, Errors: errs}, nil
}

// preludeFor selects the minimal internal prelude for the prelude
// packages and the small hard-coded system-package set, the full prelude
// for everything else.
func (r *Resolver) preludeFor(path string) map[string]*types.PolyType {
	if internalPreludePaths[path] {
		return internalPrelude()
	}
	return r.fullPrelude()
}

func internalPrelude() map[string]*types.PolyType {
	boolT := &types.PolyType{Expr: types.TBuiltin{Name: types.Bool}}
	timeT := &types.PolyType{Expr: types.TBuiltin{Name: types.Time}}
	return map[string]*types.PolyType{
		"true":  boolT,
		"false": boolT,
		"now":   timeT,
	}
}

// fullPrelude resolves every package named by the configured prelude
// order (universe before influxdata/influxdb, both before any user
// package) and flattens their exports into one environment. Later
// packages in the order win on name collision, matching universe being
// the innermost/lowest-precedence layer beneath influxdb.
func (r *Resolver) fullPrelude() map[string]*types.PolyType {
	order := r.cfg.Prelude
	if len(order) == 0 {
		order = []string{"universe", "influxdata/influxdb"}
	}
	out := map[string]*types.PolyType{}
	for _, p := range order {
		pe, err := r.Resolve(p)
		if err != nil {
			continue
		}
		for name, poly := range pe.Exports {
			out[name] = poly
		}
	}
	return out
}

func buildPreludeEnv(prelude map[string]*types.PolyType, symbols map[string]semantic.Symbol) *infer.Env {
	env := infer.NewEnv()
	for name, poly := range prelude {
		sym, ok := symbols[name]
		if !ok {
			continue
		}
		env.Bind(sym.ID, poly)
	}
	return env
}
