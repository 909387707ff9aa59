package ast

// StructField is one field of a struct declaration.
type StructField struct {
	Name     string
	TypeAnno TypeNode
	Default  Expression
	Pub      bool
}

// StructDecl is `[pub] struct Name { fields... }`.
type StructDecl struct {
	Base
	Name   string
	Fields []StructField
	Pub    bool
}

func (*StructDecl) statementNode()  {}
func (*StructDecl) expressionNode() {}

// EnumVariant is one variant of an enum declaration; Fields is empty for
// a unit variant, populated (unnamed, via synthetic "0","1",...) for a
// tuple-style variant, or named for a struct-style variant.
type EnumVariant struct {
	Name   string
	Fields []StructField
}

// EnumDecl is `[pub] enum Name { variants... }`.
type EnumDecl struct {
	Base
	Name     string
	Variants []EnumVariant
	Pub      bool
}

func (*EnumDecl) statementNode()  {}
func (*EnumDecl) expressionNode() {}

// TraitMethodSig is one method signature declared inside a trait.
type TraitMethodSig struct {
	Name       string
	Params     []Param
	ReturnType TypeNode
	Default    *BlockExpr // nil if the trait leaves this method abstract
}

// TraitDecl is `trait Name { method signatures... }`.
type TraitDecl struct {
	Base
	Name    string
	Methods []TraitMethodSig
}

func (*TraitDecl) statementNode()  {}
func (*TraitDecl) expressionNode() {}

// ImplDecl is `impl [Trait for] Type { methods... }`.
type ImplDecl struct {
	Base
	TraitName string // empty for an inherent impl
	TypeName  string
	Methods   []*FunctionDecl
}

func (*ImplDecl) statementNode()  {}
func (*ImplDecl) expressionNode() {}
