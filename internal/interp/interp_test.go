package interp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/parser"
	"github.com/paiml/ruchy-sub014/internal/value"
)

func mustParse(t *testing.T, src string) *parser.Parser {
	t.Helper()
	return parser.New(lexer.New(src))
}

func run(t *testing.T, src string) (value.Value, error) {
	t.Helper()
	p := mustParse(t, src)
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("parse errors in %q: %v", src, p.Errors().Items()[0])
	}
	in := interp.New()
	in.Out = &bytes.Buffer{}
	return in.Run(prog)
}

func runOutput(t *testing.T, src string) (value.Value, string, error) {
	t.Helper()
	p := mustParse(t, src)
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("parse errors in %q: %v", src, p.Errors().Items()[0])
	}
	var out bytes.Buffer
	in := interp.New()
	in.Out = &out
	v, err := in.Run(prog)
	return v, out.String(), err
}

func wantInt(t *testing.T, src string, want int64) {
	t.Helper()
	v, err := run(t, src)
	if err != nil {
		t.Fatalf("%q: %v", src, err)
	}
	got, ok := v.(value.Integer)
	if !ok || got.Value != want {
		t.Fatalf("%q = %s, want Integer(%d)", src, v.Inspect(), want)
	}
}

func wantStr(t *testing.T, src string, want string) {
	t.Helper()
	v, err := run(t, src)
	if err != nil {
		t.Fatalf("%q: %v", src, err)
	}
	got, ok := v.(value.Str)
	if !ok || got.Value != want {
		t.Fatalf("%q = %s, want %q", src, v.Inspect(), want)
	}
}

func TestLetAndArithmetic(t *testing.T) {
	wantInt(t, "let x = 10; x + 5", 15)
	wantInt(t, "2 + 3 * 4", 14)
	wantInt(t, "(2 + 3) * 4", 20)
	wantInt(t, "2 ** 10", 1024)
	wantInt(t, "7 % 3", 1)
	wantInt(t, "1 << 4", 16)
	wantInt(t, "~0", -1)
}

func TestFloatPromotion(t *testing.T) {
	v, err := run(t, "1 + 2.5")
	if err != nil {
		t.Fatal(err)
	}
	f, ok := v.(value.Float)
	if !ok || f.Value != 3.5 {
		t.Fatalf("1 + 2.5 = %s", v.Inspect())
	}
}

func TestDivisionByZero(t *testing.T) {
	if _, err := run(t, "1 / 0"); err == nil || !strings.Contains(err.Error(), "division by zero") {
		t.Fatalf("err = %v, want division by zero", err)
	}
	if _, err := run(t, "1.0 / 0.0"); err == nil {
		t.Fatal("float division by zero should fail")
	}
}

func TestEqualityNeverCoerces(t *testing.T) {
	for src, want := range map[string]bool{
		"1 == 1.0":     false,
		`1 == "1"`:     false,
		"1 == 1":       true,
		`"a" == "a"`:   true,
		"1 != 1.0":     true,
		"(1,2)==(1,2)": true,
	} {
		v, err := run(t, src)
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		if b, ok := v.(value.Bool); !ok || b.Value != want {
			t.Errorf("%q = %s, want %v", src, v.Inspect(), want)
		}
	}
}

func TestZeroIsTruthy(t *testing.T) {
	wantStr(t, `if 0 { "then" } else { "else" }`, "then")
	wantStr(t, `if "" { "then" } else { "else" }`, "then")
	wantStr(t, `if false { "then" } else { "else" }`, "else")
	wantStr(t, `if null { "then" } else { "else" }`, "else")
}

func TestIfWithoutElseYieldsNil(t *testing.T) {
	v, err := run(t, "if false { 1 }")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(value.Nil); !ok {
		t.Fatalf("got %s, want nil", v.Inspect())
	}
}

func TestForLoopOverRange(t *testing.T) {
	v, out, err := runOutput(t, "for i in 0..3 { println(i) }")
	if err != nil {
		t.Fatal(err)
	}
	if out != "0\n1\n2\n" {
		t.Fatalf("output = %q", out)
	}
	if _, ok := v.(value.Nil); !ok {
		t.Fatalf("for returned %s, want nil", v.Inspect())
	}
}

func TestInclusiveRange(t *testing.T) {
	wantInt(t, "let mut s = 0; for i in 1..=4 { s = s + i }; s", 10)
}

func TestWhileAndBreakValue(t *testing.T) {
	wantInt(t, "let mut i = 0; while i < 10 { i = i + 1 }; i", 10)
	wantInt(t, "let mut i = 0; loop { i = i + 1; if i == 5 { break i * 2 } }", 10)
}

func TestContinue(t *testing.T) {
	wantInt(t, "let mut s = 0; for i in 0..6 { if i % 2 == 1 { continue }; s = s + i }; s", 6)
}

func TestMatchGuards(t *testing.T) {
	wantStr(t, `match -1 { n if n < 0 => "neg", 0 => "zero", _ => "pos" }`, "neg")
	wantStr(t, `match 0 { n if n < 0 => "neg", 0 => "zero", _ => "pos" }`, "zero")
	wantStr(t, `match 7 { n if n < 0 => "neg", 0 => "zero", _ => "pos" }`, "pos")
}

func TestMatchNonExhaustive(t *testing.T) {
	if _, err := run(t, "match 3 { 1 => 1, 2 => 2 }"); err == nil {
		t.Fatal("expected non-exhaustive match error")
	}
}

func TestMatchPatterns(t *testing.T) {
	wantInt(t, "match (1, 2) { (a, b) => a + b }", 3)
	wantInt(t, "match [1, 2, 3] { [first, ..rest] => first + rest.len() }", 3)
	wantStr(t, `match 5 { 1..=3 => "low", 4..=6 => "mid", _ => "high" }`, "mid")
	wantStr(t, `match 2 { 1 | 2 | 3 => "small", _ => "big" }`, "small")
}

func TestFunctionsAndDefaults(t *testing.T) {
	wantInt(t, "fun add(a, b) { a + b }; add(2, 3)", 5)
	wantInt(t, "fun greet(n, bang = 1) { n + bang }; greet(2)", 3)
	wantInt(t, "fun fib(n) { if n < 2 { n } else { fib(n-1) + fib(n-2) } }; fib(10)", 55)
}

func TestArityMismatch(t *testing.T) {
	if _, err := run(t, "fun f(a, b) { a }; f(1)"); err == nil {
		t.Fatal("expected arity error")
	}
}

func TestClosuresCaptureByReference(t *testing.T) {
	wantInt(t, `
		let mut count = 0
		let inc = || count = count + 1
		inc()
		inc()
		count
	`, 2)
}

func TestLambdaParams(t *testing.T) {
	wantInt(t, "let double = |x| x * 2; double(21)", 42)
	wantInt(t, "[1, 2, 3].map(|x| x * x).sum()", 14)
}

func TestEnvScopeRestored(t *testing.T) {
	// A block's bindings vanish with the block; outer bindings survive.
	wantInt(t, "let x = 1; { let x = 99; x }; x", 1)
	if _, err := run(t, "{ let inner = 5; inner }; inner"); err == nil {
		t.Fatal("inner should be out of scope after the block")
	}
}

func TestAssignmentUpdatesNearestEnclosing(t *testing.T) {
	wantInt(t, "let mut x = 1; { x = 5 }; x", 5)
}

func TestStructsAndImpl(t *testing.T) {
	wantInt(t, `
		struct Point { x: i32, y: i32 }
		impl Point {
			fun sum(self) { self.x + self.y }
		}
		let p = Point(3, 4)
		p.sum()
	`, 7)
}

func TestEnumVariants(t *testing.T) {
	wantStr(t, `
		enum Color { Red, Green, Blue }
		let c = Color::Green
		match c { Color::Red => "r", Color::Green => "g", _ => "b" }
	`, "g")
}

func TestOptionResult(t *testing.T) {
	wantInt(t, "Some(5).unwrap()", 5)
	wantInt(t, "None.unwrap_or(9)", 9)
	wantInt(t, "fun f() { Ok(4)? + 1 }; f()", 5)
	v, err := run(t, "fun f() { let x = None?; 99 }; f()")
	if err != nil {
		t.Fatal(err)
	}
	ev, ok := v.(*value.EnumVal)
	if !ok || ev.Variant != "None" {
		t.Fatalf("got %s, want None", v.Inspect())
	}
}

func TestThrowCatch(t *testing.T) {
	wantInt(t, "try { throw 42 } catch e => { e + 1 }", 43)
}

func TestCatchPatternMismatchReRaises(t *testing.T) {
	_, err := run(t, `try { throw "x" } catch n: Integer => { 0 }`)
	if err == nil || !strings.Contains(err.Error(), "x") {
		t.Fatalf("err = %v, want re-raised \"x\"", err)
	}
}

func TestFinallyRuns(t *testing.T) {
	_, out, err := runOutput(t, `
		try { throw 1 } catch e => { println("caught") } finally { println("finally") }
	`)
	if err != nil {
		t.Fatal(err)
	}
	if out != "caught\nfinally\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestRuntimeErrorsAreCatchable(t *testing.T) {
	wantStr(t, `
		try { 1 / 0 } catch e => { e.type }
	`, "ArithmeticError")
	wantStr(t, `
		try { missing_name } catch e => { e.type }
	`, "NameError")
}

func TestIndexing(t *testing.T) {
	wantInt(t, "[10, 20, 30][1]", 20)
	if _, err := run(t, "[1][5]"); err == nil {
		t.Fatal("expected index error")
	}
	if _, err := run(t, "[1][-1]"); err == nil {
		t.Fatal("negative index must be an error")
	}
}

func TestStringMethods(t *testing.T) {
	wantStr(t, `"hello".to_upper()`, "HELLO")
	wantInt(t, `"héllo".len()`, 5)
	wantInt(t, `"1,2,3".split(",").len()`, 3)
	wantInt(t, `"41".parse_int().unwrap() + 1`, 42)
}

func TestArrayMethods(t *testing.T) {
	wantInt(t, "let a = [1, 2]; a.push(3); a.len()", 3)
	wantInt(t, "[1, 2, 3].filter(|x| x > 1).len()", 2)
	wantInt(t, "[1, 2, 3].reduce(0, |acc, x| acc + x)", 6)
	wantStr(t, `["a", "b"].join("-")`, "a-b")
}

func TestCompoundAssignAndIncDec(t *testing.T) {
	wantInt(t, "let mut x = 10; x += 5; x", 15)
	wantInt(t, "let mut x = 10; x++; x", 11)
	wantInt(t, "let mut x = 10; let y = x++; y", 10)
	wantInt(t, "let mut x = 10; let y = ++x; y", 11)
}

func TestTernaryAndCast(t *testing.T) {
	wantInt(t, "let x = 5; x > 3 ? 1 : 0", 1)
	wantInt(t, "2.9 as Integer", 2)
	wantStr(t, "12 as String", "12")
}

func TestShortCircuit(t *testing.T) {
	// The right operand would divide by zero; && must not evaluate it.
	v, err := run(t, "false && (1 / 0 == 1)")
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := v.(value.Bool); !ok || b.Value {
		t.Fatalf("got %s", v.Inspect())
	}
	v, err = run(t, "true || (1 / 0 == 1)")
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := v.(value.Bool); !ok || !b.Value {
		t.Fatalf("got %s", v.Inspect())
	}
}

func TestStringConcatAndIteration(t *testing.T) {
	wantStr(t, `"foo" + "bar"`, "foobar")
	wantInt(t, `let mut n = 0; for c in "abc" { n = n + 1 }; n`, 3)
}

func TestModuleDecl(t *testing.T) {
	wantInt(t, "module m { fun two() { 2 } }; m.two() * 3", 6)
}

func TestUncaughtThrowSurfacesAsError(t *testing.T) {
	_, err := run(t, "throw 7")
	if err == nil || !strings.Contains(err.Error(), "uncaught") {
		t.Fatalf("err = %v", err)
	}
}

func TestDeepRecursionFailsGracefully(t *testing.T) {
	_, err := run(t, "fun f(n) { f(n + 1) }; f(0)")
	if err == nil || !strings.Contains(err.Error(), "stack overflow") {
		t.Fatalf("err = %v, want stack overflow", err)
	}
}
