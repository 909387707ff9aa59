// Package backend selects and drives an execution engine over a parsed
// program: the tree-walk evaluator, or the direct-threaded engine with
// transparent fallback to tree-walk for unsupported statements.
package backend

import (
	"io"
	"os"

	"github.com/paiml/ruchy-sub014/internal/diagnostics"
	"github.com/paiml/ruchy-sub014/internal/pipeline"
	"github.com/paiml/ruchy-sub014/internal/token"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// Backend executes the program a pipeline context carries.
type Backend interface {
	Run(ctx *pipeline.PipelineContext) (value.Value, error)
	Name() string
}

// VMModeEnv is the environment variable selecting the engine: unset or
// "ast" runs the tree-walk evaluator, "bytecode" enables the
// direct-threaded engine for compatible expressions.
const VMModeEnv = "RUCHY_VM_MODE"

// Select returns the backend the environment asks for.
func Select(out io.Writer) Backend {
	if os.Getenv(VMModeEnv) == "bytecode" {
		return NewVM(out)
	}
	return NewTreeWalk(out)
}

// ExecutionProcessor adapts a Backend to a pipeline stage, leaving the
// result value on ctx.Result and recording runtime failures as
// diagnostics instead of aborting the pipeline.
type ExecutionProcessor struct {
	Backend Backend
}

func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil || ctx.HasErrors() {
		return ctx
	}
	result, err := p.Backend.Run(ctx)
	if err != nil {
		ctx.Diagnostics.Addf(diagnostics.ErrRuntime, token.Token{}, "%s", err.Error())
		return ctx
	}
	ctx.Result = result
	return ctx
}
