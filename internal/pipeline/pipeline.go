// Package pipeline chains the compiler stages behind one Processor
// interface: a Pipeline runs a fixed Processor sequence over a shared
// PipelineContext, continuing past a stage that records errors so later
// stages (and callers like an LSP) still see whatever the earlier stages
// managed to produce.
package pipeline

import (
	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/diag"
	"github.com/fluxlang/fluxc/internal/infer"
	"github.com/fluxlang/fluxc/internal/semantic"
)

// PipelineContext threads one source file's state through every stage.
type PipelineContext struct {
	FileName string
	Source   string

	File    *ast.File
	Package *semantic.File
	Infer   *infer.Infer

	Errors diag.Errors
}

func NewPipelineContext(fileName, source string) *PipelineContext {
	return &PipelineContext{FileName: fileName, Source: source}
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline runs a fixed Processor sequence.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order. A stage is never skipped because an
// earlier one recorded errors — only a nil File/Package, checked by each
// stage itself, short-circuits the work that stage would otherwise do.
func (p *Pipeline) Run(initial *PipelineContext) *PipelineContext {
	ctx := initial
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
	}
	return ctx
}
