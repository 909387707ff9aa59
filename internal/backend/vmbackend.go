package backend

import (
	"fmt"
	"io"

	"github.com/paiml/ruchy-sub014/internal/pipeline"
	"github.com/paiml/ruchy-sub014/internal/value"
	"github.com/paiml/ruchy-sub014/internal/vm"
)

// VMBackend routes each top-level statement through the direct-threaded
// engine when its expression compiles, and transparently falls back to
// the tree-walk evaluator otherwise. Both paths share one evaluator
// instance, so variables defined by fallen-back statements are visible
// to compiled ones through LoadVar.
type VMBackend struct {
	out io.Writer
}

func NewVM(out io.Writer) *VMBackend {
	return &VMBackend{out: out}
}

func (b *VMBackend) Name() string { return "direct-threaded" }

func (b *VMBackend) Run(ctx *pipeline.PipelineContext) (value.Value, error) {
	if ctx.Program == nil {
		return nil, fmt.Errorf("no AST to execute")
	}
	in := NewInterp(b.out, ctx.FileName)
	machine := vm.NewMachine()
	var last value.Value = value.NilValue
	for _, stmt := range ctx.Program.Statements {
		if chunk, ok := vm.CompileProgramStatement(stmt); ok {
			v, err := machine.Run(chunk, in.GlobalEnv)
			if err != nil {
				return nil, err
			}
			last = v
			continue
		}
		v, err := in.RunStatement(stmt)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}
