// Package printer renders an AST back to canonical source text, the
// engine behind `ruchy format`. Comments are not preserved; the
// printer emits a normalized layout with four-space indentation.
package printer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/paiml/ruchy-sub014/internal/ast"
)

// CodePrinter accumulates formatted source.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func New() *CodePrinter {
	return &CodePrinter{}
}

// Format renders a whole program.
func Format(prog *ast.Program) string {
	p := New()
	for _, stmt := range prog.Statements {
		p.writeIndent()
		p.printStatement(stmt)
		p.buf.WriteString("\n")
	}
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

func (p *CodePrinter) printStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		p.printExpr(s.Expr)
	case *ast.ImportDecl:
		p.buf.WriteString("import " + strconv.Quote(s.Path))
		if s.Alias != "" {
			p.buf.WriteString(" as " + s.Alias)
		}
		if len(s.Names) > 0 {
			p.buf.WriteString(" { " + strings.Join(s.Names, ", ") + " }")
		}
	case *ast.ExportDecl:
		if s.All {
			p.buf.WriteString("export *")
		} else {
			p.buf.WriteString("export " + strings.Join(s.Names, ", "))
		}
	case *ast.ModuleDecl:
		p.buf.WriteString("module " + s.Name + " {")
		p.indent++
		for _, sub := range s.Body {
			p.buf.WriteString("\n")
			p.writeIndent()
			p.printStatement(sub)
		}
		p.indent--
		p.buf.WriteString("\n")
		p.writeIndent()
		p.buf.WriteString("}")
	case ast.Expression:
		p.printExpr(s)
	}
}

func (p *CodePrinter) printExpr(e ast.Expression) {
	switch n := e.(type) {
	case nil:
	case *ast.IntLiteral:
		p.buf.WriteString(strconv.FormatInt(n.Value, 10) + n.Suffix)
	case *ast.FloatLiteral:
		s := strconv.FormatFloat(n.Value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		p.buf.WriteString(s)
	case *ast.BoolLiteral:
		p.buf.WriteString(strconv.FormatBool(n.Value))
	case *ast.StringLiteral:
		p.buf.WriteString(strconv.Quote(n.Value))
	case *ast.CharLiteral:
		p.buf.WriteString("'" + string(n.Value) + "'")
	case *ast.ByteLiteral:
		fmt.Fprintf(&p.buf, "%db", n.Value)
	case *ast.NullLiteral:
		p.buf.WriteString("null")
	case *ast.UnitLiteral:
		p.buf.WriteString("unit")
	case *ast.Identifier:
		p.buf.WriteString(n.Name)
	case *ast.QualifiedNameExpr:
		p.buf.WriteString(n.Module + "::" + n.Name)
	case *ast.ListExpr:
		p.buf.WriteString("[")
		p.printExprList(n.Elements)
		p.buf.WriteString("]")
	case *ast.TupleExpr:
		p.buf.WriteString("(")
		p.printExprList(n.Elements)
		p.buf.WriteString(")")
	case *ast.ArrayInitExpr:
		p.buf.WriteString("[")
		p.printExpr(n.Value)
		p.buf.WriteString("; ")
		p.printExpr(n.Size)
		p.buf.WriteString("]")
	case *ast.BinaryExpr:
		p.printExpr(n.Left)
		p.buf.WriteString(" " + n.Op + " ")
		p.printExpr(n.Right)
	case *ast.UnaryExpr:
		p.buf.WriteString(n.Op)
		p.printExpr(n.Operand)
	case *ast.IncDecExpr:
		if n.Prefix {
			p.buf.WriteString(n.Op)
			p.printExpr(n.Target)
		} else {
			p.printExpr(n.Target)
			p.buf.WriteString(n.Op)
		}
	case *ast.RangeExpr:
		p.printExpr(n.Start)
		if n.Inclusive {
			p.buf.WriteString("..=")
		} else {
			p.buf.WriteString("..")
		}
		p.printExpr(n.End)
	case *ast.BlockExpr:
		p.printBlock(n)
	case *ast.IfExpr:
		p.buf.WriteString("if ")
		p.printExpr(n.Condition)
		p.buf.WriteString(" ")
		p.printBlock(n.Then)
		if n.Else != nil {
			p.buf.WriteString(" else ")
			p.printExpr(n.Else)
		}
	case *ast.TernaryExpr:
		p.printExpr(n.Condition)
		p.buf.WriteString(" ? ")
		p.printExpr(n.Then)
		p.buf.WriteString(" : ")
		p.printExpr(n.Else)
	case *ast.MatchExpr:
		p.printMatch(n)
	case *ast.WhileExpr:
		p.buf.WriteString("while ")
		p.printExpr(n.Condition)
		p.buf.WriteString(" ")
		p.printBlock(n.Body)
	case *ast.ForExpr:
		p.buf.WriteString("for ")
		p.printPattern(n.Pattern)
		p.buf.WriteString(" in ")
		p.printExpr(n.Iter)
		p.buf.WriteString(" ")
		p.printBlock(n.Body)
	case *ast.LoopExpr:
		p.buf.WriteString("loop ")
		p.printBlock(n.Body)
	case *ast.BreakExpr:
		p.buf.WriteString("break")
		if n.Value != nil {
			p.buf.WriteString(" ")
			p.printExpr(n.Value)
		}
	case *ast.ContinueExpr:
		p.buf.WriteString("continue")
	case *ast.ReturnExpr:
		p.buf.WriteString("return")
		if n.Value != nil {
			p.buf.WriteString(" ")
			p.printExpr(n.Value)
		}
	case *ast.LetExpr:
		p.buf.WriteString("let ")
		p.printPattern(n.Pattern)
		if n.TypeAnno != nil {
			p.buf.WriteString(": " + typeString(n.TypeAnno))
		}
		p.buf.WriteString(" = ")
		p.printExpr(n.Value)
	case *ast.AssignExpr:
		p.printExpr(n.Target)
		p.buf.WriteString(" = ")
		p.printExpr(n.Value)
	case *ast.CompoundAssignExpr:
		p.printExpr(n.Target)
		p.buf.WriteString(" " + n.Op + "= ")
		p.printExpr(n.Value)
	case *ast.LambdaExpr:
		p.buf.WriteString("|")
		p.printParams(n.Params)
		p.buf.WriteString("| ")
		p.printExpr(n.Body)
	case *ast.FunctionDecl:
		p.printFunction(n)
	case *ast.StructDecl:
		p.printStruct(n)
	case *ast.EnumDecl:
		p.printEnum(n)
	case *ast.TraitDecl:
		p.buf.WriteString("trait " + n.Name + " { }")
	case *ast.ImplDecl:
		p.printImpl(n)
	case *ast.ActorDecl:
		p.printActor(n)
	case *ast.SupervisorDecl:
		p.printSupervisor(n)
	case *ast.CallExpr:
		p.printExpr(n.Fn)
		p.buf.WriteString("(")
		p.printExprList(n.Args)
		p.buf.WriteString(")")
	case *ast.MethodCallExpr:
		p.printExpr(n.Receiver)
		p.buf.WriteString("." + n.Method + "(")
		p.printExprList(n.Args)
		p.buf.WriteString(")")
	case *ast.FieldAccessExpr:
		p.printExpr(n.Receiver)
		if n.Optional {
			p.buf.WriteString("?." + n.Field)
		} else {
			p.buf.WriteString("." + n.Field)
		}
	case *ast.IndexExpr:
		p.printExpr(n.Receiver)
		p.buf.WriteString("[")
		p.printExpr(n.Index)
		p.buf.WriteString("]")
	case *ast.TypeCastExpr:
		p.printExpr(n.Value)
		p.buf.WriteString(" as " + typeString(n.Target))
	case *ast.CtorExpr:
		p.buf.WriteString(n.Name)
		if len(n.Args) > 0 {
			p.buf.WriteString("(")
			p.printExprList(n.Args)
			p.buf.WriteString(")")
		}
	case *ast.SpreadExpr:
		p.buf.WriteString("...")
		p.printExpr(n.Value)
	case *ast.ThrowExpr:
		p.buf.WriteString("throw ")
		p.printExpr(n.Value)
	case *ast.TryExpr:
		p.printExpr(n.Value)
		p.buf.WriteString("?")
	case *ast.TryCatchExpr:
		p.printTryCatch(n)
	case *ast.SpawnExpr:
		p.buf.WriteString("spawn ")
		p.printExpr(n.Actor)
	case *ast.SendExpr:
		p.printExpr(n.Target)
		p.buf.WriteString(" ! ")
		p.printExpr(n.Message)
	case *ast.AskExpr:
		p.printExpr(n.Target)
		p.buf.WriteString(" <? ")
		p.printExpr(n.Message)
	case *ast.AwaitExpr:
		p.buf.WriteString("await ")
		p.printExpr(n.Value)
	case *ast.AsyncBlockExpr:
		p.buf.WriteString("async ")
		p.printBlock(n.Body)
	case *ast.MacroInvocationExpr:
		p.buf.WriteString(n.Name + "!(")
		p.printExprList(n.Args)
		p.buf.WriteString(")")
	default:
		fmt.Fprintf(&p.buf, "/* %T */", e)
	}
}

func (p *CodePrinter) printExprList(list []ast.Expression) {
	for i, e := range list {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.printExpr(e)
	}
}

func (p *CodePrinter) printBlock(b *ast.BlockExpr) {
	if b == nil || len(b.Statements) == 0 {
		p.buf.WriteString("{ }")
		return
	}
	p.buf.WriteString("{")
	p.indent++
	for _, stmt := range b.Statements {
		p.buf.WriteString("\n")
		p.writeIndent()
		p.printStatement(stmt)
	}
	p.indent--
	p.buf.WriteString("\n")
	p.writeIndent()
	p.buf.WriteString("}")
}

func (p *CodePrinter) printMatch(n *ast.MatchExpr) {
	p.buf.WriteString("match ")
	p.printExpr(n.Scrutinee)
	p.buf.WriteString(" {")
	p.indent++
	for _, arm := range n.Arms {
		p.buf.WriteString("\n")
		p.writeIndent()
		p.printPattern(arm.Pattern)
		if arm.Guard != nil {
			p.buf.WriteString(" if ")
			p.printExpr(arm.Guard)
		}
		p.buf.WriteString(" => ")
		p.printExpr(arm.Body)
		p.buf.WriteString(",")
	}
	p.indent--
	p.buf.WriteString("\n")
	p.writeIndent()
	p.buf.WriteString("}")
}

func (p *CodePrinter) printParams(params []ast.Param) {
	for i, param := range params {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.buf.WriteString(param.Name)
		if param.TypeAnno != nil {
			p.buf.WriteString(": " + typeString(param.TypeAnno))
		}
		if param.Default != nil {
			p.buf.WriteString(" = ")
			p.printExpr(param.Default)
		}
	}
}

func (p *CodePrinter) printFunction(n *ast.FunctionDecl) {
	if n.Pub {
		p.buf.WriteString("pub ")
	}
	if n.Async {
		p.buf.WriteString("async ")
	}
	p.buf.WriteString("fun " + n.Name + "(")
	p.printParams(n.Params)
	p.buf.WriteString(")")
	if n.ReturnType != nil {
		p.buf.WriteString(" -> " + typeString(n.ReturnType))
	}
	p.buf.WriteString(" ")
	p.printBlock(n.Body)
}

func (p *CodePrinter) printStruct(n *ast.StructDecl) {
	p.buf.WriteString("struct " + n.Name + " {")
	p.indent++
	for _, f := range n.Fields {
		p.buf.WriteString("\n")
		p.writeIndent()
		p.buf.WriteString(f.Name)
		if f.TypeAnno != nil {
			p.buf.WriteString(": " + typeString(f.TypeAnno))
		}
		p.buf.WriteString(",")
	}
	p.indent--
	p.buf.WriteString("\n")
	p.writeIndent()
	p.buf.WriteString("}")
}

func (p *CodePrinter) printEnum(n *ast.EnumDecl) {
	p.buf.WriteString("enum " + n.Name + " {")
	p.indent++
	for _, v := range n.Variants {
		p.buf.WriteString("\n")
		p.writeIndent()
		p.buf.WriteString(v.Name)
		if len(v.Fields) > 0 {
			types := make([]string, len(v.Fields))
			for i, f := range v.Fields {
				types[i] = typeString(f.TypeAnno)
			}
			p.buf.WriteString("(" + strings.Join(types, ", ") + ")")
		}
		p.buf.WriteString(",")
	}
	p.indent--
	p.buf.WriteString("\n")
	p.writeIndent()
	p.buf.WriteString("}")
}

func (p *CodePrinter) printImpl(n *ast.ImplDecl) {
	p.buf.WriteString("impl ")
	if n.TraitName != "" {
		p.buf.WriteString(n.TraitName + " for ")
	}
	p.buf.WriteString(n.TypeName + " {")
	p.indent++
	for _, m := range n.Methods {
		p.buf.WriteString("\n")
		p.writeIndent()
		p.printFunction(m)
	}
	p.indent--
	p.buf.WriteString("\n")
	p.writeIndent()
	p.buf.WriteString("}")
}

func (p *CodePrinter) printActor(n *ast.ActorDecl) {
	if n.IsAsync {
		p.buf.WriteString("async ")
	}
	p.buf.WriteString("actor " + n.Name + " {")
	p.indent++
	for _, f := range n.State {
		p.buf.WriteString("\n")
		p.writeIndent()
		p.buf.WriteString(f.Name)
		if f.TypeAnno != nil {
			p.buf.WriteString(": " + typeString(f.TypeAnno))
		}
		if f.Default != nil {
			p.buf.WriteString(" = ")
			p.printExpr(f.Default)
		}
	}
	if len(n.Arms) > 0 {
		p.buf.WriteString("\n")
		p.writeIndent()
		p.buf.WriteString("receive {")
		p.indent++
		for _, arm := range n.Arms {
			p.buf.WriteString("\n")
			p.writeIndent()
			p.buf.WriteString(arm.MessageName)
			if len(arm.Params) > 0 {
				p.buf.WriteString("(")
				p.printParams(arm.Params)
				p.buf.WriteString(")")
			}
			if arm.Guard != nil {
				p.buf.WriteString(" if ")
				p.printExpr(arm.Guard)
			}
			p.buf.WriteString(" => ")
			p.printBlock(arm.Body)
		}
		p.indent--
		p.buf.WriteString("\n")
		p.writeIndent()
		p.buf.WriteString("}")
	}
	p.printHook("on_start", n.Hooks.OnStart)
	p.printHook("on_stop", n.Hooks.OnStop)
	p.printHook("on_error", n.Hooks.OnError)
	p.printHook("on_restart", n.Hooks.OnRestart)
	p.indent--
	p.buf.WriteString("\n")
	p.writeIndent()
	p.buf.WriteString("}")
}

func (p *CodePrinter) printHook(name string, body *ast.BlockExpr) {
	if body == nil {
		return
	}
	p.buf.WriteString("\n")
	p.writeIndent()
	p.buf.WriteString("hook " + name + " ")
	p.printBlock(body)
}

func (p *CodePrinter) printSupervisor(n *ast.SupervisorDecl) {
	p.buf.WriteString("supervisor " + n.Name + " {")
	p.indent++
	p.buf.WriteString("\n")
	p.writeIndent()
	p.buf.WriteString("strategy " + n.Strategy)
	p.buf.WriteString("\n")
	p.writeIndent()
	p.buf.WriteString("children [" + strings.Join(n.Children, ", ") + "]")
	p.indent--
	p.buf.WriteString("\n")
	p.writeIndent()
	p.buf.WriteString("}")
}

func (p *CodePrinter) printTryCatch(n *ast.TryCatchExpr) {
	p.buf.WriteString("try ")
	p.printBlock(n.Body)
	for _, c := range n.Catches {
		p.buf.WriteString(" catch ")
		p.printPattern(c.Pattern)
		p.buf.WriteString(" => ")
		p.printBlock(c.Body)
	}
	if n.Finally != nil {
		p.buf.WriteString(" finally ")
		p.printBlock(n.Finally)
	}
}

func (p *CodePrinter) printPattern(pat ast.Pattern) {
	switch pt := pat.(type) {
	case ast.WildcardPattern:
		p.buf.WriteString("_")
	case ast.IdentifierPattern:
		p.buf.WriteString(pt.Name)
	case ast.LiteralPattern:
		p.printExpr(pt.Value)
	case ast.QualifiedNamePattern:
		p.buf.WriteString(strings.Join(pt.Parts, "::"))
	case ast.TuplePattern:
		p.buf.WriteString("(")
		for i, sub := range pt.Elements {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.printPattern(sub)
		}
		p.buf.WriteString(")")
	case ast.ListPattern:
		p.buf.WriteString("[")
		for i, sub := range pt.Elements {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.printPattern(sub)
		}
		p.buf.WriteString("]")
	case ast.StructPattern:
		if positional(pt) {
			p.buf.WriteString(pt.Name + "(")
			for i, f := range pt.Fields {
				if i > 0 {
					p.buf.WriteString(", ")
				}
				p.printPattern(f.SubPat)
			}
			p.buf.WriteString(")")
			return
		}
		p.buf.WriteString(pt.Name + " { ")
		for i, f := range pt.Fields {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(f.Name)
			if f.SubPat != nil {
				p.buf.WriteString(": ")
				p.printPattern(f.SubPat)
			}
		}
		if pt.HasRest {
			p.buf.WriteString(", ..")
		}
		p.buf.WriteString(" }")
	case ast.RestPattern:
		p.buf.WriteString("..")
	case ast.RestNamedPattern:
		p.buf.WriteString(".." + pt.Name)
	case ast.OrPattern:
		for i, sub := range pt.Alternatives {
			if i > 0 {
				p.buf.WriteString(" | ")
			}
			p.printPattern(sub)
		}
	case ast.TypedPattern:
		p.buf.WriteString(pt.Name + ": " + pt.TypeName)
	case ast.RangePattern:
		p.printExpr(pt.Start)
		if pt.Inclusive {
			p.buf.WriteString("..=")
		} else {
			p.buf.WriteString("..")
		}
		p.printExpr(pt.End)
	}
}

func typeString(t ast.TypeNode) string {
	switch tt := t.(type) {
	case *ast.NamedType:
		return tt.Name
	case *ast.GenericType:
		params := make([]string, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = typeString(p)
		}
		return tt.BaseName + "<" + strings.Join(params, ", ") + ">"
	case *ast.FunctionType:
		params := make([]string, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = typeString(p)
		}
		return "fun(" + strings.Join(params, ", ") + ") -> " + typeString(tt.Return)
	case *ast.TupleType:
		parts := make([]string, len(tt.Elements))
		for i, p := range tt.Elements {
			parts[i] = typeString(p)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ast.ListType:
		return "[" + typeString(tt.Element) + "]"
	case *ast.ArrayType:
		return "[" + typeString(tt.Element) + "; " + strconv.Itoa(tt.Size) + "]"
	case *ast.ReferenceType:
		if tt.Mutable {
			return "&mut " + typeString(tt.Inner)
		}
		return "&" + typeString(tt.Inner)
	case *ast.OptionalType:
		return typeString(tt.Inner) + "?"
	default:
		return ""
	}
}

// positional reports whether a struct pattern came from variant-payload
// syntax (`Shape::Circle(r)`): every field is an index with a
// sub-pattern, so it round-trips through the paren form.
func positional(pt ast.StructPattern) bool {
	if len(pt.Fields) == 0 || pt.HasRest {
		return false
	}
	for i, f := range pt.Fields {
		if f.SubPat == nil || f.Name != strconv.Itoa(i) {
			return false
		}
	}
	return true
}
