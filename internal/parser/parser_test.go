package parser_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/parser"
	"github.com/paiml/ruchy-sub014/internal/printer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("parse errors in %q: %v", src, p.Errors().Items()[0])
	}
	return prog
}

func firstExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	prog := parse(t, src)
	if len(prog.Statements) == 0 {
		t.Fatalf("no statements parsed from %q", src)
	}
	es, ok := prog.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T, not expression", prog.Statements[0])
	}
	return es.Expr
}

func TestPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3).
	bin, ok := firstExpr(t, "1 + 2 * 3").(*ast.BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("top operator = %v", bin)
	}
	right, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || right.Op != "*" {
		t.Fatalf("right = %T", bin.Right)
	}

	// ** is right-associative: 2 ** 3 ** 1 has ** at the top.
	pow, ok := firstExpr(t, "2 ** 3 ** 1").(*ast.BinaryExpr)
	if !ok || pow.Op != "**" {
		t.Fatalf("pow = %v", pow)
	}

	// Comparison binds looser than arithmetic.
	cmp, ok := firstExpr(t, "a + 1 < b * 2").(*ast.BinaryExpr)
	if !ok || cmp.Op != "<" {
		t.Fatalf("cmp = %v", cmp)
	}
}

func TestLambdaVsBitwiseOr(t *testing.T) {
	if _, ok := firstExpr(t, "|x| x + 1").(*ast.LambdaExpr); !ok {
		t.Fatal("|x| x + 1 should be a lambda")
	}
	bin, ok := firstExpr(t, "let q = a | b; q").(*ast.LetExpr).Value.(*ast.BinaryExpr)
	if !ok || bin.Op != "|" {
		t.Fatalf("a | b should be bitwise or, got %v", bin)
	}
}

func TestCallArgumentsNotComparisons(t *testing.T) {
	call, ok := firstExpr(t, "f(a < b, c > d)").(*ast.CallExpr)
	if !ok {
		t.Fatal("expected call")
	}
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(call.Args))
	}
}

func TestSendAndAsk(t *testing.T) {
	if _, ok := firstExpr(t, "c ! Inc").(*ast.SendExpr); !ok {
		t.Fatal("expected SendExpr")
	}
	if _, ok := firstExpr(t, "c <? Get").(*ast.AskExpr); !ok {
		t.Fatal("expected AskExpr")
	}
}

func TestSpansWithinSource(t *testing.T) {
	src := "let x = 1 + 2\nfun f(a) { a * x }\n"
	prog := parse(t, src)
	ast.Walk(prog, func(n ast.Node) bool {
		sp := n.Span()
		if sp.Start > sp.End {
			t.Errorf("%T: span start %d > end %d", n, sp.Start, sp.End)
		}
		if sp.End > len(src) {
			t.Errorf("%T: span end %d beyond source length %d", n, sp.End, len(src))
		}
		return true
	})
}

func TestErrorRecoveryCollectsMultiple(t *testing.T) {
	src := "let = 5\nfun ok() { 1 }\nlet = 6\n"
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if !p.Errors().HasErrors() {
		t.Fatal("expected parse errors")
	}
	if len(p.Errors().Items()) < 2 {
		t.Fatalf("got %d errors, want at least 2 (recovery)", len(p.Errors().Items()))
	}
	// A best-effort AST still comes back.
	if prog == nil || len(prog.Statements) == 0 {
		t.Fatal("expected a best-effort AST")
	}
}

func TestParserNeverPanics(t *testing.T) {
	inputs := []string{
		"", "}{", "let", "fun", "match {", "((((", "actor {", "1 +",
		"try", "if", "[1, 2", "\"unterminated", "impl for", "x ! ", "::",
	}
	for _, src := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("panic on %q: %v", src, r)
				}
			}()
			p := parser.New(lexer.New(src))
			p.ParseProgram()
		}()
	}
}

func TestAttributes(t *testing.T) {
	fn, ok := firstExpr(t, "#[inline(always)]\nfun hot(x) { x }").(*ast.FunctionDecl)
	if !ok {
		t.Fatal("expected FunctionDecl")
	}
	attrs := fn.Attributes()
	if len(attrs) != 1 || attrs[0].Name != "inline" || len(attrs[0].Args) != 1 || attrs[0].Args[0] != "always" {
		t.Fatalf("attrs = %+v", attrs)
	}
}

func TestActorDeclShape(t *testing.T) {
	src := `actor Counter {
    count: i32 = 0
    receive {
        Inc => { self.count = self.count + 1; self.count }
        Add(n: i32) => { self.count = self.count + n }
    }
    hook on_start { println("up") }
}`
	decl, ok := firstExpr(t, src).(*ast.ActorDecl)
	if !ok {
		t.Fatal("expected ActorDecl")
	}
	if decl.Name != "Counter" || len(decl.State) != 1 || len(decl.Arms) != 2 {
		t.Fatalf("decl = %+v", decl)
	}
	if decl.Hooks.OnStart == nil {
		t.Fatal("on_start hook missing")
	}
	if decl.Arms[1].MessageName != "Add" || len(decl.Arms[1].Params) != 1 {
		t.Fatalf("second arm = %+v", decl.Arms[1])
	}
}

func TestSupervisorDecl(t *testing.T) {
	src := `supervisor Guard {
    strategy one_for_all
    children [Counter, Logger]
}`
	decl, ok := firstExpr(t, src).(*ast.SupervisorDecl)
	if !ok {
		t.Fatal("expected SupervisorDecl")
	}
	if decl.Strategy != "one_for_all" || len(decl.Children) != 2 {
		t.Fatalf("decl = %+v", decl)
	}
}

func TestAsyncActorFlag(t *testing.T) {
	prog := parse(t, "async actor Logger { receive { Log(msg) => { println(msg) } } }")
	es := prog.Statements[0].(*ast.ExpressionStatement)
	decl := es.Expr.(*ast.ActorDecl)
	if !decl.IsAsync {
		t.Fatal("async actor should set IsAsync")
	}
}

// Snapshot the canonical formatting of a representative program; this
// pins both the parser's shape and the printer's layout.
func TestFormatSnapshot(t *testing.T) {
	src := `
struct Point { x: i32, y: i32 }
enum Shape { Circle(f64), Rect(f64, f64) }
fun area(s) {
    match s {
        Shape::Circle(r) => 3.14 * r * r,
        Shape::Rect(w, h) => w * h,
    }
}
let shapes = [Shape::Circle(1.0), Shape::Rect(2.0, 3.0)]
for s in shapes { println(area(s)) }
try { throw "boom" } catch e => { println(e) } finally { println("done") }
`
	prog := parse(t, src)
	snaps.MatchSnapshot(t, printer.Format(prog))
}

func TestFormatIdempotent(t *testing.T) {
	src := "fun add(a, b) { a + b }\nlet x = add(1, 2)\n"
	once := printer.Format(parse(t, src))
	twice := printer.Format(parse(t, once))
	if once != twice {
		t.Fatalf("formatting is not idempotent:\n-- once --\n%s\n-- twice --\n%s", once, twice)
	}
}
