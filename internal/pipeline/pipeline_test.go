package pipeline

import (
	"testing"
)

func TestParseStagePopulatesProgram(t *testing.T) {
	ctx := NewPipelineContext("t.ruchy", "let x = 1")
	ctx = ParseStage.Process(ctx)
	if ctx.Program == nil || len(ctx.Program.Statements) != 1 {
		t.Fatalf("program = %+v", ctx.Program)
	}
	if ctx.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", ctx.Diagnostics.Items())
	}
}

func TestStagesRunInOrderAndContinueOnError(t *testing.T) {
	var order []string
	mk := func(name string) Processor {
		return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
			order = append(order, name)
			return ctx
		})
	}
	ctx := NewPipelineContext("t.ruchy", "let = broken")
	New(ParseStage, mk("a"), mk("b")).Run(ctx)
	if !ctx.HasErrors() {
		t.Fatal("expected parse diagnostics")
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("later stages should still run: %v", order)
	}
}
