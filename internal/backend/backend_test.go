package backend_test

import (
	"bytes"
	"testing"

	"github.com/paiml/ruchy-sub014/internal/backend"
	"github.com/paiml/ruchy-sub014/internal/pipeline"
	"github.com/paiml/ruchy-sub014/internal/value"
)

func runWith(t *testing.T, b backend.Backend, src string) (value.Value, string) {
	t.Helper()
	ctx := pipeline.NewPipelineContext("test.ruchy", src)
	ctx = pipeline.ParseStage.Process(ctx)
	if ctx.HasErrors() {
		t.Fatalf("parse: %v", ctx.Diagnostics.Items()[0])
	}
	var out bytes.Buffer
	v, err := b.Run(ctx)
	if err != nil {
		t.Fatalf("%s: %v", b.Name(), err)
	}
	return v, out.String()
}

// Both backends must agree on programs mixing engine-supported and
// fallback statements.
func TestBackendsAgree(t *testing.T) {
	programs := []string{
		"1 + 2 * 3",
		"let x = 7; x * 6",
		"fun sq(n) { n * n }; sq(9)",
		`if 2 > 1 { "yes" } else { "no" }`,
	}
	for _, src := range programs {
		tw, _ := runWith(t, backend.NewTreeWalk(nil), src)
		vm, _ := runWith(t, backend.NewVM(nil), src)
		if !value.Equal(tw, vm) {
			t.Errorf("%q: tree-walk %s, vm %s", src, tw.Inspect(), vm.Inspect())
		}
	}
}

func TestSelectByEnv(t *testing.T) {
	t.Setenv(backend.VMModeEnv, "")
	if got := backend.Select(nil).Name(); got != "tree-walk" {
		t.Fatalf("default backend = %s", got)
	}
	t.Setenv(backend.VMModeEnv, "ast")
	if got := backend.Select(nil).Name(); got != "tree-walk" {
		t.Fatalf("ast backend = %s", got)
	}
	t.Setenv(backend.VMModeEnv, "bytecode")
	if got := backend.Select(nil).Name(); got != "direct-threaded" {
		t.Fatalf("bytecode backend = %s", got)
	}
}

func TestExecutionProcessorRecordsRuntimeErrors(t *testing.T) {
	ctx := pipeline.NewPipelineContext("test.ruchy", "1 / 0")
	p := pipeline.New(pipeline.ParseStage, backend.NewExecutionProcessor(backend.NewTreeWalk(nil)))
	ctx = p.Run(ctx)
	if !ctx.HasErrors() {
		t.Fatal("runtime error should surface as a diagnostic")
	}
}
