// Package pipeline wires the lexer, parser, and execution stages
// together behind a shared PipelineContext, a reusable Processor chain
// so cmd/ruchy, editor tooling, and tests all drive the same stage
// sequence.
package pipeline

import (
	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/diagnostics"
)

// PipelineContext threads source text, derived artifacts, and
// accumulated diagnostics through each Processor in turn. Processors
// run in order even after an error so a caller (e.g. a future LSP
// surface) can recover parse diagnostics alongside lex diagnostics.
type PipelineContext struct {
	FileName string
	Source   string

	Program *ast.Program

	Diagnostics diagnostics.Bag

	// Result carries whatever a terminal stage (interpret/compile)
	// produced, typed per-stage by convention rather than by interface,
	// since stages know what they put there.
	Result any
}

// NewPipelineContext seeds a context for a single source file.
func NewPipelineContext(fileName, source string) *PipelineContext {
	return &PipelineContext{FileName: fileName, Source: source}
}

// HasErrors reports whether any stage so far has recorded a diagnostic.
func (c *PipelineContext) HasErrors() bool {
	return c.Diagnostics.HasErrors()
}

// Processor is one stage of the pipeline (ParseStage, or
// backend.ExecutionProcessor). It must not panic on malformed input; it records
// problems on ctx.Diagnostics and returns the (possibly unchanged) ctx.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

// New builds a pipeline from an ordered stage list.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage over ctx in order.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors to collect diagnostics from all stages
		// (e.g. a future LSP surface needs both parse and semantic errors).
	}
	return ctx
}
