package ast

import "github.com/paiml/ruchy-sub014/internal/token"

// TypeNode is a syntactic type annotation, never used for inference —
// the interpreter only consults it for actor parameter validation and
// native codegen's type mapping.
type TypeNode interface {
	Node
	typeNode()
}

type typeBase struct{ base }

func (typeBase) typeNode() {}

// NamedType is a bare type name, e.g. `Int`, `MyStruct`.
type NamedType struct {
	typeBase
	Name string
}

func NewNamedType(tok token.Token, name string, start, end int) *NamedType {
	return &NamedType{typeBase: typeBase{newBase(tok, start, end)}, Name: name}
}

// GenericType is `Base<Params...>`.
type GenericType struct {
	typeBase
	BaseName string
	Params   []TypeNode
}

// FunctionType is `(params...) -> ret`.
type FunctionType struct {
	typeBase
	Params []TypeNode
	Return TypeNode
}

// TupleType is `(t1, t2, ...)`.
type TupleType struct {
	typeBase
	Elements []TypeNode
}

// ArrayType is `[T; N]`.
type ArrayType struct {
	typeBase
	Element TypeNode
	Size    int
}

// ListType is `List<T>` sugar / `[T]`.
type ListType struct {
	typeBase
	Element TypeNode
}

// ReferenceType is `&T` or `&mut T`.
type ReferenceType struct {
	typeBase
	Mutable bool
	Inner   TypeNode
}

// OptionalType is `T?`.
type OptionalType struct {
	typeBase
	Inner TypeNode
}

// DataFrameColumn is one named, typed column of a DataFrame type.
type DataFrameColumn struct {
	Name string
	Type TypeNode
}

// DataFrameType is `DataFrame<{col: Type, ...}>`.
type DataFrameType struct {
	typeBase
	Columns []DataFrameColumn
}

// SeriesType is `Series<DType>`.
type SeriesType struct {
	typeBase
	DType TypeNode
}
