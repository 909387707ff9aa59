// Package ast defines the Ruchy abstract syntax tree: expressions,
// patterns, syntactic types, and the top-level declarations that make
// up a program.
package ast

import "github.com/paiml/ruchy-sub014/internal/token"

// Span is a byte-offset range into the source text that produced a node.
// The zero value (0,0) is used for synthetic nodes built by the
// interpreter itself (e.g. desugared constructs).
type Span struct {
	Start int
	End   int
}

// Attribute is a `#[name(args...)]`-style annotation attached to an
// expression.
type Attribute struct {
	Name string
	Args []string
}

// Node is the root of every AST type: every node can report its span
// and the token that introduced it, which diagnostics anchor to.
type Node interface {
	Span() Span
	Token() token.Token
}

// Expression is any node that evaluates to a Value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that appears at block level. In Ruchy most
// statements are expression statements; a few (import/export/module
// declarations) are statement-only.
type Statement interface {
	Node
	statementNode()
}

// Base is embedded by every concrete node to provide Span/Token without
// repeating the boilerplate on each type. It is exported so that
// packages building AST nodes directly (the parser, desugaring in the
// interpreter) can construct node literals.
type Base struct {
	span  Span
	tok   token.Token
	attrs []Attribute
}

func (b Base) Span() Span         { return b.span }
func (b Base) Token() token.Token { return b.tok }

// Attributes returns the `#[...]` annotations attached to this node.
func (b Base) Attributes() []Attribute { return b.attrs }

// WithAttributes attaches annotations, replacing any already present.
func (b *Base) WithAttributes(attrs []Attribute) { b.attrs = attrs }

// NewBase builds the common Span/Token payload for a node spanning
// source bytes [start,end), introduced by tok.
func NewBase(tok token.Token, start, end int) Base {
	return Base{tok: tok, span: Span{Start: start, End: end}}
}

// base/newBase are kept as package-local aliases so ast's own
// constructors read the same as before the export.
type base = Base

func newBase(tok token.Token, start, end int) base {
	return NewBase(tok, start, end)
}

// Program is the root node produced by parsing one source file.
type Program struct {
	base
	Statements []Statement
}

func (p *Program) statementNode() {}

// Walk visits n and every descendant in a stable, deterministic order,
// calling fn on each node. Walk stops descending into a subtree when fn
// returns false for its root.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// Children returns the immediate child nodes of n in source order. It is
// the single place that knows how to decompose every node kind, which
// keeps Walk (and anything else that needs traversal: formatting,
// portability analysis, dependency-graph construction) consistent.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Program:
		out := make([]Node, 0, len(v.Statements))
		for _, s := range v.Statements {
			out = append(out, s)
		}
		return out
	case *ExpressionStatement:
		return []Node{v.Expr}
	case *LetExpr:
		out := []Node{v.Value}
		if v.Body != nil {
			out = append(out, v.Body)
		}
		return out
	case *BlockExpr:
		out := make([]Node, 0, len(v.Statements))
		for _, s := range v.Statements {
			out = append(out, s)
		}
		return out
	case *BinaryExpr:
		return []Node{v.Left, v.Right}
	case *UnaryExpr:
		return []Node{v.Operand}
	case *CallExpr:
		out := []Node{v.Fn}
		for _, a := range v.Args {
			out = append(out, a)
		}
		return out
	case *MethodCallExpr:
		out := []Node{v.Receiver}
		for _, a := range v.Args {
			out = append(out, a)
		}
		return out
	case *FieldAccessExpr:
		return []Node{v.Receiver}
	case *IndexExpr:
		return []Node{v.Receiver, v.Index}
	case *RangeExpr:
		out := []Node{}
		if v.Start != nil {
			out = append(out, v.Start)
		}
		if v.End != nil {
			out = append(out, v.End)
		}
		return out
	case *IfExpr:
		out := []Node{v.Condition, v.Then}
		if v.Else != nil {
			out = append(out, v.Else)
		}
		return out
	case *MatchExpr:
		out := []Node{v.Scrutinee}
		for _, a := range v.Arms {
			out = append(out, a.Body)
		}
		return out
	case *WhileExpr:
		return []Node{v.Condition, v.Body}
	case *ForExpr:
		return []Node{v.Iter, v.Body}
	case *LoopExpr:
		return []Node{v.Body}
	case *ReturnExpr:
		if v.Value != nil {
			return []Node{v.Value}
		}
	case *BreakExpr:
		if v.Value != nil {
			return []Node{v.Value}
		}
	case *ListExpr:
		out := make([]Node, 0, len(v.Elements))
		for _, e := range v.Elements {
			out = append(out, e)
		}
		return out
	case *TupleExpr:
		out := make([]Node, 0, len(v.Elements))
		for _, e := range v.Elements {
			out = append(out, e)
		}
		return out
	case *AssignExpr:
		return []Node{v.Target, v.Value}
	case *CompoundAssignExpr:
		return []Node{v.Target, v.Value}
	case *LambdaExpr:
		return []Node{v.Body}
	case *FunctionDecl:
		return []Node{v.Body}
	case *TernaryExpr:
		return []Node{v.Condition, v.Then, v.Else}
	case *TypeCastExpr:
		return []Node{v.Value}
	case *SpawnExpr:
		return []Node{v.Actor}
	case *SendExpr:
		return []Node{v.Target, v.Message}
	case *AskExpr:
		return []Node{v.Target, v.Message}
	case *ThrowExpr:
		return []Node{v.Value}
	case *TryExpr:
		return []Node{v.Value}
	case *TryCatchExpr:
		out := []Node{v.Body}
		for _, c := range v.Catches {
			out = append(out, c.Body)
		}
		if v.Finally != nil {
			out = append(out, v.Finally)
		}
		return out
	case *AwaitExpr:
		return []Node{v.Value}
	case *AsyncBlockExpr:
		return []Node{v.Body}
	case *SpreadExpr:
		return []Node{v.Value}
	case *IncDecExpr:
		return []Node{v.Target}
	case *CtorExpr:
		out := make([]Node, 0, len(v.Args))
		for _, a := range v.Args {
			out = append(out, a)
		}
		return out
	case *ArrayInitExpr:
		return []Node{v.Value}
	case *StructDecl, *EnumDecl, *TraitDecl, *ImplDecl, *Identifier,
		*QualifiedNameExpr, *MacroInvocationExpr, *ImportDecl, *ExportDecl,
		*ModuleDecl, *IntLiteral, *FloatLiteral, *BoolLiteral, *StringLiteral,
		*CharLiteral, *ByteLiteral, *NullLiteral, *UnitLiteral, *ActorDecl:
		return nil
	}
	return nil
}
