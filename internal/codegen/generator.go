// Package codegen lowers a Ruchy AST to standalone Go source text.
// The lowering is syntax-directed: every expression form becomes a Go
// expression over a small dynamic runtime (the prelude) whose helpers
// reproduce the interpreter's observable semantics — truthiness,
// numeric promotion, division-by-zero, non-local control flow, and
// the actor mailbox runtime. The platform compiler then turns the
// generated file into a native binary (internal/compiler).
package codegen

import (
	"fmt"
	"strings"

	"github.com/paiml/ruchy-sub014/internal/ast"
)

// Generator emits one Go source file for one (already import-inlined)
// program.
type Generator struct {
	buf  strings.Builder
	errs []string
	// enums maps enum type name -> variant -> payload arity, collected
	// in a first pass so qualified names can lower to constructors.
	enums map[string]map[string]int
	// asyncDepth tracks lexical async blocks so spawns under them
	// select the mailbox runtime.
	asyncDepth int
	tmp        int
	// scopes tracks names already declared per Go scope, so a second
	// `let x` in the same scope lowers to an assignment instead of a
	// duplicate declaration.
	scopes []map[string]bool
}

func (g *Generator) pushScope() { g.scopes = append(g.scopes, map[string]bool{}) }
func (g *Generator) popScope()  { g.scopes = g.scopes[:len(g.scopes)-1] }
func (g *Generator) declare(name string) bool {
	top := g.scopes[len(g.scopes)-1]
	if top[name] {
		return false
	}
	top[name] = true
	return true
}

// Generate lowers prog to a complete Go `package main` file.
func Generate(prog *ast.Program) (string, error) {
	g := &Generator{enums: map[string]map[string]int{}}
	g.collectDecls(prog)

	g.buf.WriteString("package main\n\n")
	g.buf.WriteString("import (\n\t\"fmt\"\n\t\"math\"\n\t\"reflect\"\n\t\"sort\"\n\t\"strconv\"\n\t\"strings\"\n\t\"sync\"\n)\n")
	g.buf.WriteString(prelude)
	g.buf.WriteString(preludeDispatch)

	g.pushScope()
	g.buf.WriteString("\nfunc main() {\n")
	// Hoist function declarations so mutual recursion resolves.
	for _, stmt := range prog.Statements {
		if fn, ok := exprOf(stmt).(*ast.FunctionDecl); ok && fn.Name != "" {
			fmt.Fprintf(&g.buf, "\tvar %s func(...any) any\n\t_ = %s\n", g.ident(fn.Name), g.ident(fn.Name))
		}
	}
	for _, stmt := range prog.Statements {
		g.genTopStatement(stmt)
	}
	g.buf.WriteString("}\n")

	if len(g.errs) > 0 {
		return "", fmt.Errorf("codegen: %s", strings.Join(g.errs, "; "))
	}
	return g.buf.String(), nil
}

func exprOf(stmt ast.Statement) ast.Expression {
	if es, ok := stmt.(*ast.ExpressionStatement); ok {
		return es.Expr
	}
	if e, ok := stmt.(ast.Expression); ok {
		return e
	}
	return nil
}

func (g *Generator) collectDecls(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		if en, ok := exprOf(stmt).(*ast.EnumDecl); ok {
			variants := map[string]int{}
			for _, v := range en.Variants {
				variants[v.Name] = len(v.Fields)
			}
			g.enums[en.Name] = variants
		}
	}
}

func (g *Generator) errf(format string, args ...any) string {
	g.errs = append(g.errs, fmt.Sprintf(format, args...))
	return "nil"
}

// ident mangles a user name so it can never collide with a Go keyword
// or a prelude helper.
func (g *Generator) ident(name string) string {
	return "u_" + strings.ReplaceAll(name, "::", "__")
}

func (g *Generator) fresh(prefix string) string {
	g.tmp++
	return fmt.Sprintf("%s%d", prefix, g.tmp)
}

func (g *Generator) genTopStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		g.genStatementExpr(s.Expr, "\t")
	case *ast.ImportDecl:
		// Imports are inlined before codegen; a survivor is a bug in
		// the driver, not a user error.
		g.errf("unresolved import %q reached codegen", s.Path)
	case *ast.ExportDecl:
		// Nothing to emit; exports only matter to the module loader.
	case *ast.ModuleDecl:
		for _, sub := range s.Body {
			g.genTopStatement(sub)
		}
	case ast.Expression:
		g.genStatementExpr(s, "\t")
	}
}

// genStatementExpr emits one statement-position expression.
func (g *Generator) genStatementExpr(e ast.Expression, indent string) {
	switch n := e.(type) {
	case *ast.LetExpr:
		g.genLet(n, indent)
	case *ast.FunctionDecl:
		g.genFunctionDecl(n, indent)
	case *ast.StructDecl:
		g.genStructDecl(n, indent)
	case *ast.EnumDecl:
		// Variants lower at use sites; the declaration has no runtime
		// footprint of its own.
	case *ast.TraitDecl:
		// Traits only constrain impls; nothing to emit.
	case *ast.ImplDecl:
		g.genImplDecl(n, indent)
	case *ast.ActorDecl:
		g.genActorDecl(n, indent)
	case *ast.SupervisorDecl:
		// Supervision is an interpreter-runtime feature; compiled
		// programs construct their actors directly.
	case *ast.AssignExpr:
		g.genAssign(n, indent)
	case *ast.CompoundAssignExpr:
		lv := g.genExpr(&ast.BinaryExpr{Op: n.Op, Left: n.Target, Right: n.Value})
		g.genAssignTo(n.Target, lv, indent)
	default:
		fmt.Fprintf(&g.buf, "%s_ = %s\n", indent, g.genExpr(e))
	}
}

func (g *Generator) genLet(n *ast.LetExpr, indent string) {
	val := g.genExpr(n.Value)
	switch p := n.Pattern.(type) {
	case ast.IdentifierPattern:
		name := g.ident(p.Name)
		if !g.declare(p.Name) {
			fmt.Fprintf(&g.buf, "%s%s = %s\n", indent, name, val)
			return
		}
		fmt.Fprintf(&g.buf, "%svar %s any = %s\n%s_ = %s\n", indent, name, val, indent, name)
	case ast.TuplePattern:
		tmp := g.fresh("let")
		fmt.Fprintf(&g.buf, "%s%s := %s\n", indent, tmp, val)
		for i, sub := range p.Elements {
			id, ok := sub.(ast.IdentifierPattern)
			if !ok {
				g.errf("unsupported let pattern element %T", sub)
				continue
			}
			name := g.ident(id.Name)
			fmt.Fprintf(&g.buf, "%svar %s any = rIndex(%s, int64(%d))\n%s_ = %s\n", indent, name, tmp, i, indent, name)
		}
	default:
		g.errf("unsupported let pattern %T", n.Pattern)
	}
}

func (g *Generator) genFunctionDecl(n *ast.FunctionDecl, indent string) {
	name := g.ident(n.Name)
	fmt.Fprintf(&g.buf, "%s%s = %s\n%s_ = %s\n", indent, name, g.genClosure(n.Params, n.Body), indent, name)
}

// genClosure lowers a parameter list plus body into a func(...any) any
// literal: defaults bind lazily, a rReturn panic unwinds to this frame.
func (g *Generator) genClosure(params []ast.Param, body ast.Expression) string {
	g.pushScope()
	defer g.popScope()
	for _, p := range params {
		g.declare(p.Name)
	}
	var b strings.Builder
	b.WriteString("func(args ...any) any {\n")
	for i, p := range params {
		def := "nil"
		if p.Default != nil {
			def = "func() any { return " + g.genExpr(p.Default) + " }"
		}
		fmt.Fprintf(&b, "\t%s := rArg(args, %d, %s)\n\t_ = %s\n", g.ident(p.Name), i, def, g.ident(p.Name))
	}
	b.WriteString("\tvar ret any\n")
	b.WriteString("\tfunc() {\n")
	b.WriteString("\t\tdefer func() {\n\t\t\tif r := recover(); r != nil {\n\t\t\t\tif rv, ok := r.(rReturn); ok { ret = rv.v; return }\n\t\t\t\tpanic(r)\n\t\t\t}\n\t\t}()\n")
	fmt.Fprintf(&b, "\t\tret = %s\n", g.genExpr(body))
	b.WriteString("\t}()\n")
	b.WriteString("\treturn ret\n}")
	return b.String()
}

func (g *Generator) genStructDecl(n *ast.StructDecl, indent string) {
	name := g.ident(n.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "%svar %s any = func(args ...any) any {\n", indent, name)
	fmt.Fprintf(&b, "%s\tfields := map[string]any{}\n", indent)
	for i, f := range n.Fields {
		fmt.Fprintf(&b, "%s\tif len(args) > %d { fields[%q] = args[%d] }\n", indent, i, f.Name, i)
	}
	fmt.Fprintf(&b, "%s\treturn &rStruct{name: %q, fields: fields}\n%s}\n%s_ = %s\n", indent, n.Name, indent, indent, name)
	g.buf.WriteString(b.String())
}

func (g *Generator) genImplDecl(n *ast.ImplDecl, indent string) {
	for _, m := range n.Methods {
		fmt.Fprintf(&g.buf, "%srRegisterMethod(%q, %q, %s)\n", indent, n.TypeName, m.Name, g.genClosure(m.Params, m.Body))
	}
}

func (g *Generator) genActorDecl(n *ast.ActorDecl, indent string) {
	name := g.ident(n.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "%svar %s = map[string]func(*rActor, ...any) any{\n", indent, name+"_handlers")
	for _, arm := range n.Arms {
		fmt.Fprintf(&b, "%s\t%q: func(self *rActor, args ...any) any {\n", indent, arm.MessageName)
		for i, p := range arm.Params {
			fmt.Fprintf(&b, "%s\t\t%s := rArg(args, %d, func() any { return nil })\n%s\t\t_ = %s\n",
				indent, g.ident(p.Name), i, indent, g.ident(p.Name))
		}
		// Inside a handler `self` is the actor; field access and
		// assignment route through rField/rSetField.
		fmt.Fprintf(&b, "%s\t\tvar %s any = self\n%s\t\t_ = %s\n", indent, g.ident("self"), indent, g.ident("self"))
		fmt.Fprintf(&b, "%s\t\treturn %s\n%s\t},\n", indent, g.genExpr(arm.Body), indent)
	}
	fmt.Fprintf(&b, "%s}\n%s_ = %s\n", indent, indent, name+"_handlers")

	async := "false"
	if n.IsAsync {
		async = "true"
	}
	fmt.Fprintf(&b, "%svar %s any = func(args ...any) any {\n", indent, name)
	fmt.Fprintf(&b, "%s\tfields := map[string]any{}\n", indent)
	for i, f := range n.State {
		def := "nil"
		if f.Default != nil {
			def = g.genExpr(f.Default)
		}
		fmt.Fprintf(&b, "%s\tif len(args) > %d { fields[%q] = args[%d] } else { fields[%q] = %s }\n",
			indent, i, f.Name, i, f.Name, def)
	}
	fmt.Fprintf(&b, "%s\treturn rSpawn(fields, %s, %s)\n%s}\n%s_ = %s\n", indent, name+"_handlers", async, indent, indent, name)
	g.buf.WriteString(b.String())
}

func (g *Generator) genAssign(n *ast.AssignExpr, indent string) {
	g.genAssignTo(n.Target, g.genExpr(n.Value), indent)
}

func (g *Generator) genAssignTo(target ast.Expression, val string, indent string) {
	switch t := target.(type) {
	case *ast.Identifier:
		fmt.Fprintf(&g.buf, "%s%s = %s\n", indent, g.ident(t.Name), val)
	case *ast.FieldAccessExpr:
		fmt.Fprintf(&g.buf, "%srSetField(%s, %q, %s)\n", indent, g.genExpr(t.Receiver), t.Field, val)
	case *ast.IndexExpr:
		fmt.Fprintf(&g.buf, "%srSetIndex(%s, %s, %s)\n", indent, g.genExpr(t.Receiver), g.genExpr(t.Index), val)
	default:
		g.errf("unsupported assignment target %T", target)
	}
}

// assignExprTo is the expression-position form of genAssignTo, used
// where an assignment appears inside a larger expression.
func (g *Generator) assignExprTo(target ast.Expression, val string) string {
	switch t := target.(type) {
	case *ast.Identifier:
		return fmt.Sprintf("func() any { %s = %s; return %s }()", g.ident(t.Name), val, g.ident(t.Name))
	case *ast.FieldAccessExpr:
		return fmt.Sprintf("func() any { v := %s; rSetField(%s, %q, v); return v }()", val, g.genExpr(t.Receiver), t.Field)
	case *ast.IndexExpr:
		return fmt.Sprintf("func() any { v := %s; rSetIndex(%s, %s, v); return v }()", val, g.genExpr(t.Receiver), g.genExpr(t.Index))
	default:
		return g.errf("unsupported assignment target %T", target)
	}
}
