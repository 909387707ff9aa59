package pipeline

import (
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/parser"
)

// ParseStage runs the lexer and parser over ctx.Source, leaving the
// resulting *ast.Program on ctx.Program and any syntax diagnostics
// merged into ctx.Diagnostics. Later stages (the execution backends) can
// safely run even when ctx.Program is partial, since the parser
// recovers at statement boundaries (see Parser.synchronize).
var ParseStage Processor = ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
	l := lexer.New(ctx.Source)
	p := parser.New(l)
	ctx.Program = p.ParseProgram()
	ctx.Diagnostics.Merge(p.Errors())
	return ctx
})
