package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paiml/ruchy-sub014/internal/ast"
)

// genExpr lowers one expression to a Go expression string. Forms that
// need statements (blocks, loops, match, try) lower to immediately
// invoked function literals so every Ruchy expression stays an
// expression on the Go side too.
func (g *Generator) genExpr(e ast.Expression) string {
	switch n := e.(type) {
	case nil:
		return "nil"
	case *ast.IntLiteral:
		return fmt.Sprintf("int64(%d)", n.Value)
	case *ast.FloatLiteral:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *ast.BoolLiteral:
		return strconv.FormatBool(n.Value)
	case *ast.StringLiteral:
		return strconv.Quote(n.Value)
	case *ast.CharLiteral:
		return strconv.Quote(string(n.Value))
	case *ast.ByteLiteral:
		return fmt.Sprintf("int64(%d)", n.Value)
	case *ast.NullLiteral, *ast.UnitLiteral:
		return "nil"
	case *ast.Identifier:
		return g.genIdentifier(n)
	case *ast.QualifiedNameExpr:
		return g.genQualifiedName(n)
	case *ast.ListExpr:
		return g.genList(n.Elements)
	case *ast.TupleExpr:
		return g.genList(n.Elements)
	case *ast.ArrayInitExpr:
		return fmt.Sprintf("func() any { n, _ := any(%s).(int64); out := make([]any, n); v := any(%s); for i := range out { out[i] = v }; return out }()",
			g.genExpr(n.Size), g.genExpr(n.Value))
	case *ast.RangeExpr:
		return fmt.Sprintf("rMakeRange(%s, %s, %t)", g.genExpr(n.Start), g.genExpr(n.End), n.Inclusive)
	case *ast.BinaryExpr:
		return g.genBinary(n)
	case *ast.UnaryExpr:
		return g.genUnary(n)
	case *ast.IncDecExpr:
		return g.genIncDec(n)
	case *ast.BlockExpr:
		return g.genBlockExpr(n)
	case *ast.IfExpr:
		els := "nil"
		if n.Else != nil {
			els = g.genExpr(n.Else)
		}
		return fmt.Sprintf("func() any { if rTruthy(%s) { return %s }; return %s }()",
			g.genExpr(n.Condition), g.genBlockExpr(n.Then), els)
	case *ast.TernaryExpr:
		return fmt.Sprintf("func() any { if rTruthy(%s) { return %s }; return %s }()",
			g.genExpr(n.Condition), g.genExpr(n.Then), g.genExpr(n.Else))
	case *ast.MatchExpr:
		return g.genMatch(n)
	case *ast.WhileExpr:
		return g.genWhile(n)
	case *ast.ForExpr:
		return g.genFor(n)
	case *ast.LoopExpr:
		return g.genLoop(n)
	case *ast.BreakExpr:
		val := "nil"
		if n.Value != nil {
			val = g.genExpr(n.Value)
		}
		return fmt.Sprintf("func() any { panic(rBreak{label: %q, v: %s}) }()", n.Label, val)
	case *ast.ContinueExpr:
		return fmt.Sprintf("func() any { panic(rContinue{label: %q}) }()", n.Label)
	case *ast.ReturnExpr:
		val := "nil"
		if n.Value != nil {
			val = g.genExpr(n.Value)
		}
		return fmt.Sprintf("func() any { panic(rReturn{v: %s}) }()", val)
	case *ast.LetExpr:
		// Expression-position let (e.g. inside a block tail): bind then
		// yield nil like the interpreter.
		return fmt.Sprintf("func() any { %s; return nil }()", g.letAsStatements(n))
	case *ast.AssignExpr:
		return g.assignExprTo(n.Target, g.genExpr(n.Value))
	case *ast.CompoundAssignExpr:
		return g.assignExprTo(n.Target, g.genExpr(&ast.BinaryExpr{Op: n.Op, Left: n.Target, Right: n.Value}))
	case *ast.LambdaExpr:
		return g.genClosure(n.Params, n.Body)
	case *ast.FunctionDecl:
		return g.genClosure(n.Params, n.Body)
	case *ast.CallExpr:
		return g.genCall(n)
	case *ast.MethodCallExpr:
		return g.genMethodCall(n)
	case *ast.FieldAccessExpr:
		return fmt.Sprintf("rField(%s, %q)", g.genExpr(n.Receiver), n.Field)
	case *ast.IndexExpr:
		return fmt.Sprintf("rIndex(%s, %s)", g.genExpr(n.Receiver), g.genExpr(n.Index))
	case *ast.TypeCastExpr:
		return fmt.Sprintf("rCast(%s, %q)", g.genExpr(n.Value), typeName(n.Target))
	case *ast.CtorExpr:
		return g.genCtor(n.Name, n.Args)
	case *ast.SpreadExpr:
		return g.genExpr(n.Value)
	case *ast.ThrowExpr:
		return fmt.Sprintf("func() any { panic(rThrown{v: %s}) }()", g.genExpr(n.Value))
	case *ast.TryExpr:
		return g.genPostfixTry(n)
	case *ast.TryCatchExpr:
		return g.genTryCatch(n)
	case *ast.SpawnExpr:
		return g.genSpawn(n)
	case *ast.SendExpr:
		return g.genSend(n)
	case *ast.AskExpr:
		name, args, ok := messageOf(n.Message)
		if !ok {
			return g.errf("ask message must name a receive arm")
		}
		return fmt.Sprintf("rActorAsk(rAsActor(%s), %q, %s)", g.genExpr(n.Target), name, g.genList(args))
	case *ast.AwaitExpr:
		return g.genExpr(n.Value)
	case *ast.AsyncBlockExpr:
		g.asyncDepth++
		out := g.genBlockExpr(n.Body)
		g.asyncDepth--
		return out
	case *ast.MacroInvocationExpr:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = g.genExpr(a)
		}
		return g.genNamedCall(n.Name, args)
	default:
		return g.errf("unsupported expression %T in codegen", e)
	}
}

func (g *Generator) genIdentifier(n *ast.Identifier) string {
	switch n.Name {
	case "println", "print":
		return "func(args ...any) any { return rPrint(args...) }"
	}
	return g.ident(n.Name)
}

func (g *Generator) genQualifiedName(n *ast.QualifiedNameExpr) string {
	if variants, ok := g.enums[n.Module]; ok {
		if arity, ok := variants[n.Name]; ok {
			if arity == 0 {
				return fmt.Sprintf("&rEnum{typeName: %q, variant: %q}", n.Module, n.Name)
			}
			return fmt.Sprintf("func(args ...any) any { return &rEnum{typeName: %q, variant: %q, payload: args} }", n.Module, n.Name)
		}
	}
	return g.ident(n.Module + "::" + n.Name)
}

func (g *Generator) genList(elems []ast.Expression) string {
	parts := make([]string, 0, len(elems))
	spread := false
	for _, e := range elems {
		if sp, ok := e.(*ast.SpreadExpr); ok {
			spread = true
			parts = append(parts, "rIter("+g.genExpr(sp.Value)+")...")
			continue
		}
		parts = append(parts, g.genExpr(e))
	}
	if !spread {
		return "[]any{" + strings.Join(parts, ", ") + "}"
	}
	// Spreads need append chains.
	out := "[]any{}"
	for _, p := range parts {
		if strings.HasSuffix(p, "...") {
			out = "append(" + out + ", " + p + ")"
		} else {
			out = "append(" + out + ", " + p + ")"
		}
	}
	return out
}

func (g *Generator) genBinary(n *ast.BinaryExpr) string {
	l, r := g.genExpr(n.Left), g.genExpr(n.Right)
	switch n.Op {
	case "+":
		return fmt.Sprintf("rAdd(%s, %s)", l, r)
	case "-":
		return fmt.Sprintf("rSub(%s, %s)", l, r)
	case "*":
		return fmt.Sprintf("rMul(%s, %s)", l, r)
	case "/":
		return fmt.Sprintf("rDiv(%s, %s)", l, r)
	case "%":
		return fmt.Sprintf("rMod(%s, %s)", l, r)
	case "**":
		return fmt.Sprintf("rPow(%s, %s)", l, r)
	case "==":
		return fmt.Sprintf("rEq(%s, %s)", l, r)
	case "!=":
		return fmt.Sprintf("!rEq(%s, %s)", l, r)
	case "<", "<=", ">", ">=":
		return fmt.Sprintf("rCmp(%q, %s, %s)", n.Op, l, r)
	case "&&":
		return fmt.Sprintf("func() any { if !rTruthy(%s) { return false }; return rTruthy(%s) }()", l, r)
	case "||":
		return fmt.Sprintf("func() any { if rTruthy(%s) { return true }; return rTruthy(%s) }()", l, r)
	case "&", "|", "^", "<<", ">>":
		return fmt.Sprintf("rBit(%q, %s, %s)", n.Op, l, r)
	default:
		return g.errf("unsupported binary operator %q", n.Op)
	}
}

func (g *Generator) genUnary(n *ast.UnaryExpr) string {
	v := g.genExpr(n.Operand)
	switch n.Op {
	case "-":
		return fmt.Sprintf("rNeg(%s)", v)
	case "!":
		return fmt.Sprintf("!rTruthy(%s)", v)
	case "~":
		return fmt.Sprintf("rBit(\"^\", int64(-1), %s)", v)
	default:
		return g.errf("unsupported unary operator %q", n.Op)
	}
}

func (g *Generator) genIncDec(n *ast.IncDecExpr) string {
	op := "rAdd"
	if n.Op == "--" {
		op = "rSub"
	}
	target, ok := n.Target.(*ast.Identifier)
	if !ok {
		return g.errf("unsupported increment target %T", n.Target)
	}
	name := g.ident(target.Name)
	if n.Prefix {
		return fmt.Sprintf("func() any { %s = %s(%s, int64(1)); return %s }()", name, op, name, name)
	}
	return fmt.Sprintf("func() any { old := %s; %s = %s(%s, int64(1)); return old }()", name, name, op, name)
}

func (g *Generator) letAsStatements(n *ast.LetExpr) string {
	id, ok := n.Pattern.(ast.IdentifierPattern)
	if !ok {
		return g.errf("unsupported let pattern %T", n.Pattern)
	}
	name := g.ident(id.Name)
	if !g.declare(id.Name) {
		return fmt.Sprintf("%s = %s", name, g.genExpr(n.Value))
	}
	return fmt.Sprintf("var %s any = %s; _ = %s", name, g.genExpr(n.Value), name)
}

// genBlockExpr lowers a block to an IIFE yielding the last statement's
// value. Declarations inside the block become local vars of the
// closure, which reproduces the interpreter's block scoping.
func (g *Generator) genBlockExpr(b *ast.BlockExpr) string {
	if b == nil || len(b.Statements) == 0 {
		return "nil"
	}
	g.pushScope()
	defer g.popScope()
	var sb strings.Builder
	sb.WriteString("func() any {\n")
	sb.WriteString("\tvar last any\n\t_ = last\n")
	for _, stmt := range b.Statements {
		e := exprOf(stmt)
		if e == nil {
			continue
		}
		switch x := e.(type) {
		case *ast.LetExpr:
			sb.WriteString("\t" + g.letAsStatements(x) + "\n\tlast = nil\n")
		case *ast.FunctionDecl:
			name := g.ident(x.Name)
			fmt.Fprintf(&sb, "\tvar %s func(...any) any\n\t_ = %s\n\t%s = %s\n\tlast = nil\n",
				name, name, name, g.genClosure(x.Params, x.Body))
		case *ast.AssignExpr:
			fmt.Fprintf(&sb, "\tlast = %s\n", g.assignExprTo(x.Target, g.genExpr(x.Value)))
		default:
			fmt.Fprintf(&sb, "\tlast = %s\n", g.genExpr(e))
		}
	}
	sb.WriteString("\treturn last\n}()")
	return sb.String()
}

func (g *Generator) genCall(n *ast.CallExpr) string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = g.genExpr(a)
	}
	if ident, ok := n.Fn.(*ast.Identifier); ok {
		return g.genNamedCall(ident.Name, args)
	}
	return fmt.Sprintf("rCall(%s, %s)", g.genExpr(n.Fn), strings.Join(args, ", "))
}

// genNamedCall special-cases the builtin free functions; everything
// else dispatches through rCall so arity stays dynamic.
func (g *Generator) genNamedCall(name string, args []string) string {
	joined := strings.Join(args, ", ")
	switch name {
	case "println", "print":
		return "rPrint(" + joined + ")"
	case "len":
		return "rLen(" + joined + ")"
	case "panic":
		return "rFail(rInspect(" + joined + "))"
	case "assert":
		cond := "false"
		if len(args) > 0 {
			cond = args[0]
		}
		return fmt.Sprintf("func() any { if !rTruthy(%s) { rFail(\"assertion failed\") }; return nil }()", cond)
	case "Some", "Ok", "Err":
		return fmt.Sprintf("&rEnum{typeName: %q, variant: %q, payload: []any{%s}}", ctorType(name), name, joined)
	case "None":
		return "&rEnum{typeName: \"Option\", variant: \"None\"}"
	}
	return fmt.Sprintf("rCall(%s, %s)", g.ident(name), joined)
}

func ctorType(name string) string {
	if name == "Some" || name == "None" {
		return "Option"
	}
	return "Result"
}

func (g *Generator) genCtor(name string, argExprs []ast.Expression) string {
	args := make([]string, len(argExprs))
	for i, a := range argExprs {
		args[i] = g.genExpr(a)
	}
	if name == "None" {
		return "&rEnum{typeName: \"Option\", variant: \"None\"}"
	}
	return fmt.Sprintf("&rEnum{typeName: %q, variant: %q, payload: []any{%s}}", ctorType(name), name, strings.Join(args, ", "))
}

func (g *Generator) genMethodCall(n *ast.MethodCallExpr) string {
	args := make([]string, 0, len(n.Args)+2)
	args = append(args, g.genExpr(n.Receiver), strconv.Quote(n.Method))
	for _, a := range n.Args {
		args = append(args, g.genExpr(a))
	}
	return "rDispatch(" + strings.Join(args, ", ") + ")"
}

func typeName(t ast.TypeNode) string {
	if named, ok := t.(*ast.NamedType); ok {
		return named.Name
	}
	return ""
}

func messageOf(msg ast.Expression) (string, []ast.Expression, bool) {
	switch m := msg.(type) {
	case *ast.Identifier:
		return m.Name, nil, true
	case *ast.CallExpr:
		if ident, ok := m.Fn.(*ast.Identifier); ok {
			return ident.Name, m.Args, true
		}
	}
	return "", nil, false
}

func (g *Generator) genSpawn(n *ast.SpawnExpr) string {
	switch target := n.Actor.(type) {
	case *ast.Identifier:
		return fmt.Sprintf("rCall(%s)", g.ident(target.Name))
	case *ast.CallExpr:
		return g.genExpr(target)
	default:
		return g.errf("unsupported spawn target %T", n.Actor)
	}
}

func (g *Generator) genSend(n *ast.SendExpr) string {
	name, args, ok := messageOf(n.Message)
	if !ok {
		// `name!(args)` macro form.
		if call, isCall := n.Message.(*ast.CallExpr); isCall {
			return g.genExpr(&ast.CallExpr{Fn: n.Target, Args: call.Args})
		}
		return g.errf("send message must name a receive arm")
	}
	return fmt.Sprintf("func() any { rActorSend(rAsActor(%s), %q, %s); return nil }()",
		g.genExpr(n.Target), name, g.genList(args))
}

// genPostfixTry lowers `e?`: Ok/Some unwrap, Err throws its payload,
// None returns None from the enclosing function.
func (g *Generator) genPostfixTry(n *ast.TryExpr) string {
	return fmt.Sprintf(`func() any {
	v := %s
	if rEnumIs(v, "Ok") || rEnumIs(v, "Some") { return rEnumPayload(v, 0) }
	if rEnumIs(v, "None") { panic(rReturn{v: v}) }
	if rEnumIs(v, "Err") { panic(rThrown{v: rEnumPayload(v, 0)}) }
	return rFail("? requires an Option or Result value")
}()`, g.genExpr(n.Value))
}

func (g *Generator) genTryCatch(n *ast.TryCatchExpr) string {
	var sb strings.Builder
	sb.WriteString("func() (out any) {\n")
	if n.Finally != nil {
		fmt.Fprintf(&sb, "\tdefer func() { _ = %s }()\n", g.genBlockExpr(n.Finally))
	}
	sb.WriteString("\tdefer func() {\n\t\tif r := recover(); r != nil {\n\t\t\tt, ok := r.(rThrown)\n\t\t\tif !ok { panic(r) }\n\t\t\terrv := t.v\n\t\t\t_ = errv\n")
	for _, clause := range n.Catches {
		sb.WriteString("\t\t\t{\n")
		sb.WriteString("\t\t\t\tmatched := true\n")
		binds := g.patternBindings(clause.Pattern)
		for _, b := range binds {
			fmt.Fprintf(&sb, "\t\t\t\tvar %s any\n\t\t\t\t_ = %s\n", b, b)
		}
		g.genPatternStmts(&sb, "\t\t\t\t", "errv", clause.Pattern)
		fmt.Fprintf(&sb, "\t\t\t\tif matched { out = %s; return }\n", g.genBlockExpr(clause.Body))
		sb.WriteString("\t\t\t}\n")
	}
	sb.WriteString("\t\t\tpanic(r)\n\t\t}\n\t}()\n")
	fmt.Fprintf(&sb, "\tout = %s\n\treturn out\n}()", g.genBlockExpr(n.Body))
	return sb.String()
}
