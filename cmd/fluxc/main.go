// Command fluxc is the compiler frontend's CLI: a thin driver over
// parser/astcheck/semantic/infer/resolver exposing the same programmatic
// entry points an editor integration would call directly. Subcommands are
// dispatched by hand off of os.Args, no flag package.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fluxlang/fluxc/internal/astcheck"
	"github.com/fluxlang/fluxc/internal/config"
	"github.com/fluxlang/fluxc/internal/diag"
	"github.com/fluxlang/fluxc/internal/infer"
	"github.com/fluxlang/fluxc/internal/parser"
	"github.com/fluxlang/fluxc/internal/resolver"
	"github.com/fluxlang/fluxc/internal/semantic"
)

var cfg *config.Config

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	loaded, err := config.Load("flux.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "flux.yaml: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		cmdParse(os.Args[2:])
	case "check_ast":
		cmdCheckAST(os.Args[2:])
	case "analyze":
		cmdAnalyze(os.Args[2:])
	case "find_var_type":
		cmdFindVarType(os.Args[2:])
	case "stdlib_exports":
		cmdStdlibExports(os.Args[2:])
	case "help", "-help", "--help":
		usage()
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fluxc <command> [args]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  parse <file>                    parse a single file, report AST errors")
	fmt.Fprintln(os.Stderr, "  check_ast <file>                run the structural checker over a parsed file")
	fmt.Fprintln(os.Stderr, "  analyze <file>                  convert and infer a single detached file")
	fmt.Fprintln(os.Stderr, "  find_var_type <file> <name>     print the inferred type of a top-level binding")
	fmt.Fprintln(os.Stderr, "  stdlib_exports [root]           resolve every package under a stdlib tree")
}

func readSource(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return string(b)
}

func printErrors(errs diag.Errors) {
	if cfg != nil && cfg.PrettyError {
		diag.PrintErrors(os.Stderr, errs)
		return
	}
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e.Error())
	}
}

func cmdParse(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fluxc parse <file>")
		os.Exit(1)
	}
	file := parser.ParseFile(args[0], readSource(args[0]))
	pkgName := "main"
	if file.Package != nil && file.Package.Name != nil {
		pkgName = file.Package.Name.Name
	}
	fmt.Printf("package %s, %d import(s), %d statement(s)\n", pkgName, len(file.Imports), len(file.Body))
	if len(file.Errors) > 0 {
		for _, e := range file.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		os.Exit(1)
	}
}

func cmdCheckAST(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fluxc check_ast <file>")
		os.Exit(1)
	}
	file := parser.ParseFile(args[0], readSource(args[0]))
	errs := astcheck.CheckFile(file)
	printErrors(errs)
	if errs.HasErrors() {
		os.Exit(1)
	}
	fmt.Println("ok")
}

// analyzeFile runs the parse/check/convert/infer stages over one detached
// file against an empty prelude, the same path ConvertProcessor/
// InferProcessor take in internal/pipeline.
func analyzeFile(path string) (*semantic.File, *infer.Infer, diag.Errors) {
	var errs diag.Errors
	file := parser.ParseFile(path, readSource(path))
	errs = append(errs, astcheck.CheckFile(file)...)

	conv := semantic.NewConverter("main", nil)
	sf, cErrs := conv.Convert(file)
	errs = append(errs, cErrs...)

	inf := infer.New(infer.NewEnv())
	iErrs := inf.File(sf)
	errs = append(errs, iErrs...)

	return sf, inf, errs
}

func cmdAnalyze(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fluxc analyze <file>")
		os.Exit(1)
	}
	_, _, errs := analyzeFile(args[0])
	printErrors(errs)
	if errs.HasErrors() {
		os.Exit(1)
	}
	fmt.Println("ok")
}

func cmdFindVarType(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: fluxc find_var_type <file> <name>")
		os.Exit(1)
	}
	sf, inf, errs := analyzeFile(args[0])
	t := infer.FindVarType(inf, sf, args[1])
	fmt.Printf("%s : %s\n", args[1], t)
	if errs.HasErrors() {
		printErrors(errs)
	}
}

func cmdStdlibExports(args []string) {
	root := cfg.StdlibRoot
	if len(args) > 0 {
		root = args[0]
	}
	rcfg := *cfg
	rcfg.StdlibRoot = root

	r := resolver.New(resolver.DirLoader{Root: root}, &rcfg)
	paths, err := discoverStdlibPaths(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, p := range paths {
		pe, err := r.Resolve(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
			continue
		}
		names := make([]string, 0, len(pe.Exports))
		for name := range pe.Exports {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("%s:\n", p)
		for _, name := range names {
			fmt.Printf("  %s : %s\n", name, pe.Exports[name])
		}
		printErrors(pe.Errors)
	}
}

// discoverStdlibPaths walks root for every directory containing at least
// one non-test source file and returns their import paths, relative to
// root, in a stable order.
func discoverStdlibPaths(root string) ([]string, error) {
	seen := map[string]bool{}
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name := d.Name()
		if !strings.HasSuffix(name, config.SourceFileExt) || strings.HasSuffix(name, "_test"+config.SourceFileExt) {
			return nil
		}
		rel, err := filepath.Rel(root, filepath.Dir(p))
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if !seen[rel] {
			seen[rel] = true
			paths = append(paths, rel)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}
