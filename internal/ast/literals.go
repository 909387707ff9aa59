package ast

import "github.com/paiml/ruchy-sub014/internal/token"

// IntLiteral is a signed 64-bit integer literal, with its optional
// numeric suffix (e.g. `10i64`) preserved for diagnostics.
type IntLiteral struct {
	Base
	Value  int64
	Suffix string
}

func NewIntLiteral(tok token.Token, value int64, suffix string, start, end int) *IntLiteral {
	return &IntLiteral{Base: NewBase(tok, start, end), Value: value, Suffix: suffix}
}
func (*IntLiteral) expressionNode() {}

// FloatLiteral is a 64-bit floating point literal.
type FloatLiteral struct {
	Base
	Value float64
}

func NewFloatLiteral(tok token.Token, value float64, start, end int) *FloatLiteral {
	return &FloatLiteral{Base: NewBase(tok, start, end), Value: value}
}
func (*FloatLiteral) expressionNode() {}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Base
	Value bool
}

func NewBoolLiteral(tok token.Token, value bool, start, end int) *BoolLiteral {
	return &BoolLiteral{Base: NewBase(tok, start, end), Value: value}
}
func (*BoolLiteral) expressionNode() {}

// StringLiteral is an owned character sequence, already unescaped by the lexer.
type StringLiteral struct {
	Base
	Value string
}

func NewStringLiteral(tok token.Token, value string, start, end int) *StringLiteral {
	return &StringLiteral{Base: NewBase(tok, start, end), Value: value}
}
func (*StringLiteral) expressionNode() {}

// CharLiteral is a single Unicode scalar value.
type CharLiteral struct {
	Base
	Value rune
}

func NewCharLiteral(tok token.Token, value rune, start, end int) *CharLiteral {
	return &CharLiteral{Base: NewBase(tok, start, end), Value: value}
}
func (*CharLiteral) expressionNode() {}

// ByteLiteral is a value in 0..=255.
type ByteLiteral struct {
	Base
	Value byte
}

func NewByteLiteral(tok token.Token, value byte, start, end int) *ByteLiteral {
	return &ByteLiteral{Base: NewBase(tok, start, end), Value: value}
}
func (*ByteLiteral) expressionNode() {}

// NullLiteral is the `null` literal.
type NullLiteral struct{ Base }

func NewNullLiteral(tok token.Token, start, end int) *NullLiteral {
	return &NullLiteral{Base: NewBase(tok, start, end)}
}
func (*NullLiteral) expressionNode() {}

// UnitLiteral is the `unit` literal / `()`.
type UnitLiteral struct{ Base }

func NewUnitLiteral(tok token.Token, start, end int) *UnitLiteral {
	return &UnitLiteral{Base: NewBase(tok, start, end)}
}
func (*UnitLiteral) expressionNode() {}

// Identifier is a bare name reference.
type Identifier struct {
	Base
	Name string
}

func NewIdentifier(tok token.Token, name string, start, end int) *Identifier {
	return &Identifier{Base: NewBase(tok, start, end), Name: name}
}
func (*Identifier) expressionNode() {}

// QualifiedNameExpr is `module::name`.
type QualifiedNameExpr struct {
	Base
	Module string
	Name   string
}

func (*QualifiedNameExpr) expressionNode() {}

// ListExpr is a `[a, b, c]` list literal.
type ListExpr struct {
	Base
	Elements []Expression
}

func (*ListExpr) expressionNode() {}

// TupleExpr is a `(a, b, c)` tuple literal.
type TupleExpr struct {
	Base
	Elements []Expression
}

func (*TupleExpr) expressionNode() {}

// ArrayInitExpr is `[value; size]`.
type ArrayInitExpr struct {
	Base
	Value Expression
	Size  Expression
}

func (*ArrayInitExpr) expressionNode() {}
