package modules_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/modules"
	"github.com/paiml/ruchy-sub014/internal/parser"
	"github.com/paiml/ruchy-sub014/internal/value"
)

func write(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRelativeFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "mathlib.ruchy", `
fun double(x) { x * 2 }
let answer = 21
`)
	main := write(t, dir, "main.ruchy", "")

	loader := modules.NewLoader()
	exports, err := loader.Load(main, "./mathlib.ruchy")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := exports["double"]; !ok {
		t.Fatal("double should be exported")
	}
	if v, ok := exports["answer"]; !ok || !value.Equal(v, value.Integer{Value: 21}) {
		t.Fatalf("answer = %v", v)
	}
}

func TestBareNameResolution(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "util.ruchy", "let marker = 1")
	main := write(t, dir, "main.ruchy", "")

	loader := modules.NewLoader()
	if _, err := loader.Load(main, "util"); err != nil {
		t.Fatal(err)
	}
}

func TestExplicitExportsRestrict(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "lib.ruchy", `
fun public_fn(x) { x }
fun private_fn(x) { x }
export public_fn
`)
	main := write(t, dir, "main.ruchy", "")
	loader := modules.NewLoader()
	exports, err := loader.Load(main, "./lib.ruchy")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := exports["public_fn"]; !ok {
		t.Fatal("public_fn should be exported")
	}
	if _, ok := exports["private_fn"]; ok {
		t.Fatal("private_fn should not be exported")
	}
}

func TestCyclicImportIsError(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.ruchy", `import "./b.ruchy"`)
	write(t, dir, "b.ruchy", `import "./a.ruchy"`)
	main := write(t, dir, "main.ruchy", "")

	loader := modules.NewLoader()
	loader.NewInterp = func() *interp.Interp {
		in := interp.New()
		in.Loader = loader
		return in
	}
	_, err := loader.Load(main, "./a.ruchy")
	if err == nil || !strings.Contains(err.Error(), "cyclic") {
		t.Fatalf("err = %v, want cyclic import", err)
	}
}

func TestMissingModule(t *testing.T) {
	loader := modules.NewLoader()
	if _, err := loader.Load("main.ruchy", "./nope.ruchy"); err == nil {
		t.Fatal("missing module should error")
	}
}

func TestImportThroughInterpreter(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "mathlib.ruchy", "fun triple(x) { x * 3 }")
	main := write(t, dir, "main.ruchy", `
import { triple } from "./mathlib.ruchy"
triple(14)
`)
	src, _ := os.ReadFile(main)
	p := parser.New(lexer.New(string(src)))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("parse: %v", p.Errors().Items()[0])
	}
	loader := modules.NewLoader()
	in := interp.New()
	in.CurrentFile = main
	in.Loader = loader
	v, err := in.Run(prog)
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(v, value.Integer{Value: 42}) {
		t.Fatalf("triple(14) = %s", v.Inspect())
	}
}

func TestInlineImports(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "lib.ruchy", "fun helper(x) { x + 1 }")
	main := write(t, dir, "main.ruchy", `
import "./lib.ruchy"
helper(1)
`)
	loader := modules.NewLoader()
	prog, err := loader.ParseFile(main)
	if err != nil {
		t.Fatal(err)
	}
	inlined, err := loader.InlineImports(main, prog)
	if err != nil {
		t.Fatal(err)
	}
	// The import is gone, replaced by lib's top-level items.
	if len(inlined.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(inlined.Statements))
	}
	in := interp.New()
	v, err := in.Run(inlined)
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(v, value.Integer{Value: 2}) {
		t.Fatalf("inlined run = %s", v.Inspect())
	}
}
