package backend

import (
	"fmt"
	"io"

	"github.com/paiml/ruchy-sub014/internal/actor"
	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/modules"
	"github.com/paiml/ruchy-sub014/internal/pipeline"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// TreeWalkBackend runs programs through the tree-walk evaluator with
// the actor runtime and module loader wired in.
type TreeWalkBackend struct {
	out io.Writer
}

func NewTreeWalk(out io.Writer) *TreeWalkBackend {
	return &TreeWalkBackend{out: out}
}

func (b *TreeWalkBackend) Name() string { return "tree-walk" }

// NewInterp builds a fully wired evaluator for one program run: actor
// runtime attached, module loader rooted at file.
func NewInterp(out io.Writer, file string) *interp.Interp {
	in := interp.New()
	if out != nil {
		in.Out = out
	}
	if file != "" {
		in.CurrentFile = file
	}
	in.Actors = actor.NewRuntime()
	loader := modules.NewLoader()
	loader.NewInterp = func() *interp.Interp {
		m := interp.New()
		m.Actors = in.Actors
		m.Out = in.Out
		return m
	}
	in.Loader = loader
	return in
}

func (b *TreeWalkBackend) Run(ctx *pipeline.PipelineContext) (value.Value, error) {
	if ctx.Program == nil {
		return nil, fmt.Errorf("no AST to execute")
	}
	in := NewInterp(b.out, ctx.FileName)
	return in.Run(ctx.Program)
}
