package vm_test

import (
	"testing"

	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/parser"
	"github.com/paiml/ruchy-sub014/internal/value"
	"github.com/paiml/ruchy-sub014/internal/vm"
)

func parseExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("parse %q: %v", src, p.Errors().Items()[0])
	}
	return prog.Statements[0].(*ast.ExpressionStatement).Expr
}

// TestEngineMatchesTreeWalk is the equivalence property: for every
// expression the engine accepts, it must produce the same value as the
// tree-walk evaluator.
func TestEngineMatchesTreeWalk(t *testing.T) {
	exprs := []string{
		"1 + 2 * 3",
		"(1 + 2) * 3",
		"10 / 4",
		"10.0 / 4.0",
		"1 + 2.5",
		"7 % 3",
		"2 ** 8",
		"-5 + 3",
		"1 < 2",
		"2 <= 2",
		"3 > 4",
		"1 == 1",
		"1 == 1.0",
		"1 != 2",
		"true && false",
		"true || false",
		"false && true",
		"!true",
		"~7",
		"1 & 3",
		"1 | 4",
		"5 ^ 1",
		"1 << 6",
		"64 >> 3",
		"if 1 < 2 { 10 } else { 20 }",
		"if false { 10 }",
		"1 < 2 ? 100 : 200",
		"x + y",
		"x * x + y",
		"if x < y { x } else { y }",
	}
	for _, src := range exprs {
		expr := parseExpr(t, src)

		in := interp.New()
		in.GlobalEnv.Define("x", value.Integer{Value: 4})
		in.GlobalEnv.Define("y", value.Integer{Value: 9})

		chunk, ok := vm.Compile(expr)
		if !ok {
			t.Errorf("%q: engine rejected a supported expression", src)
			continue
		}
		got, err := vm.NewMachine().Run(chunk, in.GlobalEnv)
		if err != nil {
			t.Errorf("%q: engine error %v", src, err)
			continue
		}

		want, werr := treeWalk(in, expr)
		if werr != nil {
			t.Errorf("%q: tree-walk error %v", src, werr)
			continue
		}
		if !value.Equal(got, want) {
			t.Errorf("%q: engine %s, tree-walk %s", src, got.Inspect(), want.Inspect())
		}
	}
}

func treeWalk(in *interp.Interp, expr ast.Expression) (value.Value, error) {
	v, err := in.RunStatement(&ast.ExpressionStatement{Expr: expr})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func TestExplicitReturn(t *testing.T) {
	chunk, ok := vm.Compile(parseExpr(t, "return 2 + 3"))
	if !ok {
		t.Fatal("engine rejected return")
	}
	v, err := vm.NewMachine().Run(chunk, interp.New().GlobalEnv)
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := v.(value.Integer); !ok || n.Value != 5 {
		t.Fatalf("got %s, want 5", v.Inspect())
	}
}

func TestErrorsMatchTreeWalk(t *testing.T) {
	for _, src := range []string{"1 / 0", "7 % 0", "undefined_name"} {
		expr := parseExpr(t, src)
		chunk, ok := vm.Compile(expr)
		if !ok {
			t.Fatalf("%q: expected the engine to accept this", src)
		}
		in := interp.New()
		if _, err := vm.NewMachine().Run(chunk, in.GlobalEnv); err == nil {
			t.Errorf("%q: engine should fail like the tree-walk does", src)
		}
	}
}

func TestUnsupportedFallsBack(t *testing.T) {
	for _, src := range []string{
		"let x = 1",
		"[1, 2, 3]",
		"f(1)",
		"while true { 1 }",
		`"str" + "cat"`,
		"match 1 { _ => 1 }",
	} {
		if _, ok := vm.Compile(parseExpr(t, src)); ok {
			t.Errorf("%q: engine should reject and fall back to tree-walk", src)
		}
	}
}

func TestShortCircuitSkipsRight(t *testing.T) {
	// Right side divides by zero; && must not reach it.
	chunk, ok := vm.Compile(parseExpr(t, "false && 1 / 0 == 1"))
	if !ok {
		t.Fatal("engine rejected short-circuit expression")
	}
	v, err := vm.NewMachine().Run(chunk, interp.New().GlobalEnv)
	if err != nil {
		t.Fatalf("short-circuit evaluated the right operand: %v", err)
	}
	if b, ok := v.(value.Bool); !ok || b.Value {
		t.Fatalf("got %s, want false", v.Inspect())
	}
}

func TestMachineReuse(t *testing.T) {
	m := vm.NewMachine()
	env := interp.New().GlobalEnv
	for i := 0; i < 3; i++ {
		chunk, _ := vm.Compile(parseExpr(t, "2 + 3"))
		v, err := m.Run(chunk, env)
		if err != nil || v.(value.Integer).Value != 5 {
			t.Fatalf("run %d: %v %v", i, v, err)
		}
	}
}
