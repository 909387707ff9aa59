package codegen_test

import (
	goparser "go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/paiml/ruchy-sub014/internal/codegen"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/parser"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("parse: %v", p.Errors().Items()[0])
	}
	out, err := codegen.Generate(prog)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return out
}

// checkCompiles asserts the emitted text is syntactically valid Go —
// the strongest check available without invoking the toolchain.
func checkCompiles(t *testing.T, goSrc string) {
	t.Helper()
	fset := token.NewFileSet()
	if _, err := goparser.ParseFile(fset, "main.go", goSrc, 0); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, goSrc)
	}
}

func TestGenerateHello(t *testing.T) {
	out := generate(t, `let x = 10
println(x + 5)`)
	checkCompiles(t, out)
	for _, want := range []string{"package main", "func main()", "rPrint", "rAdd"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateFunctionsAndRecursion(t *testing.T) {
	out := generate(t, `
fun fib(n) { if n < 2 { n } else { fib(n-1) + fib(n-2) } }
println(fib(10))
`)
	checkCompiles(t, out)
	if !strings.Contains(out, "var u_fib func(...any) any") {
		t.Error("function declarations should be hoisted")
	}
}

func TestGenerateControlFlow(t *testing.T) {
	out := generate(t, `
let mut total = 0
for i in 0..10 {
    if i % 2 == 0 { continue }
    total = total + i
}
while total > 0 { total = total - 7; break }
loop { break 1 }
`)
	checkCompiles(t, out)
	for _, want := range []string{"rIter", "rBreak", "rContinue", "rMakeRange"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateMatch(t *testing.T) {
	out := generate(t, `
let v = 5
match v {
    n if n < 0 => println("neg"),
    0 => println("zero"),
    1..=9 => println("digit"),
    _ => println("big"),
}
`)
	checkCompiles(t, out)
	if !strings.Contains(out, "rInRange") {
		t.Error("range pattern should lower through rInRange")
	}
}

func TestGenerateStructEnumImpl(t *testing.T) {
	out := generate(t, `
struct Point { x: i32, y: i32 }
enum Shape { Circle(f64), Dot }
impl Point { fun norm(self) { self.x * self.x + self.y * self.y } }
let p = Point(3, 4)
println(p.norm())
let s = Shape::Dot
match s { Shape::Circle(r) => r, Shape::Dot => 0.0 }
`)
	checkCompiles(t, out)
	for _, want := range []string{"rStruct", "rRegisterMethod", "rEnum", "rEnumIs"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateActor(t *testing.T) {
	out := generate(t, `
actor Counter {
    count: i32 = 0
    receive {
        Inc => { self.count = self.count + 1; self.count }
    }
}
let c = spawn Counter
c ! Inc
println(c <? Inc)
`)
	checkCompiles(t, out)
	for _, want := range []string{"rSpawn", "rActorSend", "rActorAsk"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateTryCatch(t *testing.T) {
	out := generate(t, `
try { throw 42 } catch e => { println(e) } finally { println("done") }
`)
	checkCompiles(t, out)
	if !strings.Contains(out, "rThrown") {
		t.Error("throw should lower through rThrown")
	}
}

func TestGenerateClosuresAndMethods(t *testing.T) {
	out := generate(t, `
let xs = [1, 2, 3]
let doubled = xs.map(|x| x * 2)
println(doubled.join(","))
`)
	checkCompiles(t, out)
	if !strings.Contains(out, "rDispatch") {
		t.Error("method calls should lower through rDispatch")
	}
}
