package interp

import (
	"fmt"

	"github.com/paiml/ruchy-sub014/internal/value"
)

// errObject builds the Object value a thrown runtime error carries:
// `{type: kind-name, message}`, so handlers read `e.type` and
// `e.message`.
func errObject(kind, format string, args ...any) *value.Object {
	return &value.Object{Fields: map[string]value.Value{
		"type":    value.Str{Value: kind},
		"message": value.Str{Value: fmt.Sprintf(format, args...)},
	}}
}

// raise builds a throw signal directly from a kind/message pair, the
// uniform way every builtin runtime error (type mismatch, arithmetic,
// undefined name, arity mismatch) enters the throw/catch machinery.
func raise(kind, format string, args ...any) *signal {
	return throwSignal(errObject(kind, format, args...))
}

const (
	errKindType          = "TypeError"
	errKindArithmetic    = "ArithmeticError"
	errKindName          = "NameError"
	errKindIndex         = "IndexError"
	errKindArity         = "ArityError"
	errKindRuntime       = "RuntimeError"
	errKindField         = "FieldError"
	errKindModule        = "ModuleError"
	errKindNonExhaustive = "NonExhaustiveMatch"
)
