// Package astcheck implements the read-only structural diagnostics pass
// that runs after parsing and before semantic conversion. It never
// rewrites the tree; it only promotes node-level parse diagnostics and
// a handful of package-wide structural rules into the closed diag.Kind
// taxonomy, ahead of full type analysis.
package astcheck

import (
	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/diag"
)

// CheckFile runs the structural pass over a single file and returns every
// diagnostic found, in tree order.
func CheckFile(file *ast.File) diag.Errors {
	var errs diag.Errors
	c := &checker{errs: &errs}
	ast.Walk(c, file)
	return errs
}

// CheckPackage runs CheckFile over every file in pkg and additionally
// enforces the package-wide invariant that every file agree on the
// package's name.
func CheckPackage(pkg *ast.Package) diag.Errors {
	var errs diag.Errors
	var name string
	var named bool

	for _, f := range pkg.Files {
		errs = append(errs, CheckFile(f)...)

		clauseName := "main"
		if f.Package != nil && f.Package.Name != nil {
			clauseName = f.Package.Name.Name
		}
		if !named {
			name, named = clauseName, true
			continue
		}
		if clauseName != name {
			errs.Add(diag.New(diag.UnexpectedToken, f.Loc,
				"file declares package %q, want %q", clauseName, name))
		}
	}
	return errs
}

// checker walks the tree once, turning every BaseNode.Errors entry into a
// located diag.Error and flagging a handful of node shapes the parser
// cannot reject outright but that are never valid once assembled.
type checker struct {
	errs *diag.Errors
}

func (c *checker) Visit(n ast.Node) bool {
	for _, msg := range n.Base().Errors {
		c.errs.Add(diag.New(kindFor(n), n.Base().Loc, "%s", msg))
	}

	switch node := n.(type) {
	case *ast.BinaryExpr:
		if node.Operator == "" {
			c.errs.Add(diag.New(diag.InvalidOperator, node.Loc, "empty binary operator"))
		}
	case *ast.Property:
		if node.Key == nil {
			c.errs.Add(diag.New(diag.UnexpectedTokenForPropertyKey, node.Loc, "missing property key"))
		}
		if _, bad := node.Key.(*ast.BadExpr); bad {
			c.errs.Add(diag.New(diag.UnexpectedTokenForPropertyKey, node.Loc, "invalid property key"))
		}
	case *ast.ObjectExpr:
		seen := map[string]bool{}
		for _, p := range node.Properties {
			name := propertyKeyName(p.Key)
			if name == "" {
				continue
			}
			if seen[name] {
				c.errs.Add(diag.New(diag.MissingComma, p.Loc, "duplicate property %q", name))
			}
			seen[name] = true
		}
	}
	return true
}

func (c *checker) Done(ast.Node) {}

func propertyKeyName(k ast.PropertyKey) string {
	switch key := k.(type) {
	case *ast.Identifier:
		return key.Name
	case *ast.StringLit:
		return key.Value
	default:
		return ""
	}
}

// kindFor maps a node's Go type to the closed taxonomy member its parser
// diagnostics most plausibly belong to. Errors on a BadExpr map to
// InvalidExpression and on a BadStmt to UnexpectedToken; errors on a
// Property map to MissingPropertyValue and on an ImportDeclaration to
// InvalidImportPath; everything else is reported under UnexpectedToken as
// a catch-all, since
// the parser stage itself does not tag the specific Kind inline.
func kindFor(n ast.Node) diag.Kind {
	switch n.(type) {
	case *ast.BadExpr:
		return diag.InvalidExpression
	case *ast.BadStmt:
		return diag.UnexpectedToken
	case *ast.Property:
		return diag.MissingPropertyValue
	case *ast.ImportDeclaration:
		return diag.InvalidImportPath
	default:
		return diag.UnexpectedToken
	}
}
