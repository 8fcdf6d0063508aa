package pipeline

import (
	"github.com/fluxlang/fluxc/internal/astcheck"
	"github.com/fluxlang/fluxc/internal/infer"
	"github.com/fluxlang/fluxc/internal/parser"
	"github.com/fluxlang/fluxc/internal/semantic"
)

// ParseProcessor runs the scanner/parser over ctx.Source. The parser is
// infallible: this stage never itself records an error, it only produces
// the AST the later stages inspect.
type ParseProcessor struct{}

func (ParseProcessor) Process(ctx *PipelineContext) *PipelineContext {
	ctx.File = parser.ParseFile(ctx.FileName, ctx.Source)
	return ctx
}

// AstCheckProcessor runs the read-only structural pass and appends
// whatever it finds; it never mutates ctx.File.
type AstCheckProcessor struct{}

func (AstCheckProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.File == nil {
		return ctx
	}
	ctx.Errors = append(ctx.Errors, astcheck.CheckFile(ctx.File)...)
	return ctx
}

// ConvertProcessor lowers the checked AST into the semantic graph,
// resolving every identifier against prelude (an empty map is a
// defensible prelude-less default for a single detached file; a caller
// wiring a real package through resolver.Resolver supplies its own
// prelude symbols instead of using this processor).
type ConvertProcessor struct {
	PackageName string
	Prelude     map[string]semantic.Symbol
}

func (c ConvertProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.File == nil {
		return ctx
	}
	pkgName := c.PackageName
	if pkgName == "" {
		pkgName = "main"
	}
	conv := semantic.NewConverter(pkgName, c.Prelude)
	sf, errs := conv.Convert(ctx.File)
	ctx.Package = sf
	ctx.Errors = append(ctx.Errors, errs...)
	return ctx
}

// InferProcessor runs the constraint solver over the converted package,
// rewriting every node's type slot in place.
type InferProcessor struct {
	Prelude *infer.Env
}

func (ip InferProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Package == nil {
		return ctx
	}
	prelude := ip.Prelude
	if prelude == nil {
		prelude = infer.NewEnv()
	}
	inf := infer.New(prelude)
	errs := inf.File(ctx.Package)
	ctx.Infer = inf
	ctx.Errors = append(ctx.Errors, errs...)
	return ctx
}
