// Package value defines Ruchy's runtime value representation and the
// environment frame stack that bindings live in.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/paiml/ruchy-sub014/internal/ast"
)

// Kind tags a Value's runtime type.
type Kind string

const (
	IntegerKind Kind = "Integer"
	FloatKind   Kind = "Float"
	BoolKind    Kind = "Bool"
	NilKind     Kind = "Nil"
	StringKind  Kind = "String"
	ByteKind    Kind = "Byte"
	CharKind    Kind = "Char"
	ArrayKind   Kind = "Array"
	TupleKind   Kind = "Tuple"
	ObjectKind  Kind = "Object"
	RangeKind   Kind = "Range"
	ClosureKind Kind = "Closure"
	StructKind  Kind = "Struct"
	EnumKind    Kind = "Enum"
	ActorKind   Kind = "Actor"
	BuiltinKind Kind = "Builtin"
)

// Value is any runtime value the interpreter can produce or consume.
type Value interface {
	Kind() Kind
	Inspect() string
}

// Integer is a 64-bit signed integer.
type Integer struct{ Value int64 }

func (Integer) Kind() Kind        { return IntegerKind }
func (i Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

// Float is a 64-bit IEEE float.
type Float struct{ Value float64 }

func (Float) Kind() Kind        { return FloatKind }
func (f Float) Inspect() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

// Bool is a boolean.
type Bool struct{ Value bool }

func (Bool) Kind() Kind        { return BoolKind }
func (b Bool) Inspect() string { return strconv.FormatBool(b.Value) }

// Nil is the absence of a value, also standing in for Unit and null —
// they behave identically under truthiness and equality.
type Nil struct{}

func (Nil) Kind() Kind      { return NilKind }
func (Nil) Inspect() string { return "nil" }

// NilValue is the single shared Nil instance.
var NilValue = Nil{}

// Str is a reference-counted (via Go's GC) owned character sequence.
type Str struct{ Value string }

func (Str) Kind() Kind        { return StringKind }
func (s Str) Inspect() string { return s.Value }

// Byte is a value in 0..=255.
type Byte struct{ Value byte }

func (Byte) Kind() Kind        { return ByteKind }
func (b Byte) Inspect() string { return fmt.Sprintf("%db", b.Value) }

// Char is a single Unicode scalar value.
type Char struct{ Value rune }

func (Char) Kind() Kind        { return CharKind }
func (c Char) Inspect() string { return string(c.Value) }

// Array is a reference-counted, growable sequence.
type Array struct{ Elements []Value }

func (*Array) Kind() Kind { return ArrayKind }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Tuple is a fixed-size heterogeneous sequence.
type Tuple struct{ Elements []Value }

func (*Tuple) Kind() Kind { return TupleKind }
func (t *Tuple) Inspect() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.Inspect()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Object is an immutable string->Value map.
type Object struct{ Fields map[string]Value }

func (*Object) Kind() Kind { return ObjectKind }
func (o *Object) Inspect() string {
	keys := make([]string, 0, len(o.Fields))
	for k := range o.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + o.Fields[k].Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ObjectMut is a shared-ownership, interior-mutable string->Value map,
// guarded by a mutex so actor handlers (which hold one as `self`) can
// be invoked from either the synchronous or async dispatch path.
type ObjectMut struct {
	mu     sync.Mutex
	Fields map[string]Value
}

func NewObjectMut(fields map[string]Value) *ObjectMut {
	return &ObjectMut{Fields: fields}
}

func (*ObjectMut) Kind() Kind { return ObjectKind }
func (o *ObjectMut) Inspect() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	keys := make([]string, 0, len(o.Fields))
	for k := range o.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + o.Fields[k].Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (o *ObjectMut) Get(name string) (Value, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.Fields[name]
	return v, ok
}

func (o *ObjectMut) Set(name string, v Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Fields[name] = v
}

// Replace swaps the entire field map, used by supervisor restarts to
// reset an actor to its initial state while existing handles stay valid.
func (o *ObjectMut) Replace(fields map[string]Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Fields = fields
}

func (o *ObjectMut) Snapshot() map[string]Value {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]Value, len(o.Fields))
	for k, v := range o.Fields {
		out[k] = v
	}
	return out
}

// RangeVal is a `start..end` or `start..=end` value.
type RangeVal struct {
	Start     Value
	End       Value
	Inclusive bool
}

func (RangeVal) Kind() Kind { return RangeKind }
func (r RangeVal) Inspect() string {
	op := ".."
	if r.Inclusive {
		op = "..="
	}
	start, end := "", ""
	if r.Start != nil {
		start = r.Start.Inspect()
	}
	if r.End != nil {
		end = r.End.Inspect()
	}
	return start + op + end
}

// ClosureParam is one parameter binding slot of a Closure.
type ClosureParam struct {
	Name    string
	Default ast.Expression
}

// Closure is a lambda or named function value, capturing its defining
// environment by reference: assignments the defining frame receives
// after capture stay visible to the closure.
type Closure struct {
	Name    string
	Params  []ClosureParam
	Body    ast.Expression
	Env     *Environment
	IsAsync bool
}

func (*Closure) Kind() Kind        { return ClosureKind }
func (c *Closure) Inspect() string { return "<closure " + c.Name + ">" }

// Builtin is a host-implemented function exposed to Ruchy programs.
type Builtin struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (*Builtin) Kind() Kind        { return BuiltinKind }
func (b *Builtin) Inspect() string { return "<builtin " + b.Name + ">" }

// StructVal is an instance of a `struct` declaration.
type StructVal struct {
	TypeName string
	Fields   map[string]Value
}

func (*StructVal) Kind() Kind { return StructKind }
func (s *StructVal) Inspect() string {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + s.Fields[k].Inspect()
	}
	return s.TypeName + " { " + strings.Join(parts, ", ") + " }"
}

// EnumVal is an instance of an enum variant, including Option/Result
// sum-type values (Some/None/Ok/Err are represented as an EnumVal whose
// TypeName is synthesized as "Option"/"Result").
type EnumVal struct {
	TypeName string
	Variant  string
	Payload  []Value
}

func (*EnumVal) Kind() Kind { return EnumKind }
func (e *EnumVal) Inspect() string {
	if len(e.Payload) == 0 {
		return e.Variant
	}
	parts := make([]string, len(e.Payload))
	for i, p := range e.Payload {
		parts[i] = p.Inspect()
	}
	return e.Variant + "(" + strings.Join(parts, ", ") + ")"
}

// ActorHandle is an opaque reference into the actor runtime's table.
// The runtime itself lives in internal/actor; this
// package only needs to carry the id so values can reference actors
// without an import cycle.
type ActorHandle struct {
	ID    string
	Async bool
}

func (ActorHandle) Kind() Kind        { return ActorKind }
func (a ActorHandle) Inspect() string { return "<actor " + a.ID + ">" }

// Truthy: Bool(false) and Nil are
// false, everything else — including zero and empty string — is true.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case Bool:
		return x.Value
	case Nil:
		return false
	default:
		return true
	}
}

// Equal: Integer/Float are never equal across
// kinds, String/Integer are never equal; structural equality otherwise.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Integer:
		y, ok := b.(Integer)
		return ok && x.Value == y.Value
	case Float:
		y, ok := b.(Float)
		return ok && x.Value == y.Value
	case Bool:
		y, ok := b.(Bool)
		return ok && x.Value == y.Value
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Str:
		y, ok := b.(Str)
		return ok && x.Value == y.Value
	case Byte:
		y, ok := b.(Byte)
		return ok && x.Value == y.Value
	case Char:
		y, ok := b.(Char)
		return ok && x.Value == y.Value
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for k, v := range x.Fields {
			yv, ok := y.Fields[k]
			if !ok || !Equal(v, yv) {
				return false
			}
		}
		return true
	case *StructVal:
		y, ok := b.(*StructVal)
		if !ok || x.TypeName != y.TypeName || len(x.Fields) != len(y.Fields) {
			return false
		}
		for k, v := range x.Fields {
			yv, ok := y.Fields[k]
			if !ok || !Equal(v, yv) {
				return false
			}
		}
		return true
	case *EnumVal:
		y, ok := b.(*EnumVal)
		if !ok || x.TypeName != y.TypeName || x.Variant != y.Variant || len(x.Payload) != len(y.Payload) {
			return false
		}
		for i := range x.Payload {
			if !Equal(x.Payload[i], y.Payload[i]) {
				return false
			}
		}
		return true
	case ActorHandle:
		y, ok := b.(ActorHandle)
		return ok && x.ID == y.ID
	default:
		return false
	}
}

// TypeName returns the canonical runtime type name for a value, used by
// actor parameter validation and try/catch error objects.
func TypeName(v Value) string {
	switch v.(type) {
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case Nil:
		return "Nil"
	case Str:
		return "String"
	case Byte:
		return "Byte"
	case Char:
		return "Char"
	case *Array:
		return "Array"
	case *Tuple:
		return "Tuple"
	case *Object, *ObjectMut:
		return "Object"
	case RangeVal:
		return "Range"
	case *Closure, *Builtin:
		return "Function"
	case *StructVal:
		return v.(*StructVal).TypeName
	case *EnumVal:
		return v.(*EnumVal).TypeName
	case ActorHandle:
		return "Actor"
	default:
		return "Any"
	}
}
