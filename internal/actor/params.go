package actor

import (
	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// paramTypeNames maps a declared handler parameter type name to the
// runtime type it must match. Names absent from the table mean "Any":
// the declared type is accepted without a check. The table is known to
// be non-exhaustive; accept-all is the deliberate conservative default.
var paramTypeNames = map[string]string{
	"i8":      "Integer",
	"i16":     "Integer",
	"i32":     "Integer",
	"i64":     "Integer",
	"u8":      "Integer",
	"u16":     "Integer",
	"u32":     "Integer",
	"u64":     "Integer",
	"int":     "Integer",
	"Integer": "Integer",
	"f32":     "Float",
	"f64":     "Float",
	"float":   "Float",
	"Float":   "Float",
	"bool":    "Bool",
	"Bool":    "Bool",
	"str":     "String",
	"String":  "String",
	"char":    "Char",
	"Char":    "Char",
	"byte":    "Byte",
	"Byte":    "Byte",
}

// validateArmParams checks each positional argument against the arm's
// declared parameter types before dispatch, identifying the handler,
// parameter index, expected and actual type on mismatch.
func validateArmParams(actorName string, arm *ast.ReceiveArm, args []value.Value) error {
	for i, p := range arm.Params {
		if i >= len(args) {
			break
		}
		named, ok := p.TypeAnno.(*ast.NamedType)
		if !ok {
			continue
		}
		expected, ok := paramTypeNames[named.Name]
		if !ok {
			continue
		}
		actual := value.TypeName(args[i])
		if actual != expected {
			return interp.TypeErrorf("%s.%s parameter %d (%s): expected %s, got %s",
				actorName, arm.MessageName, i, p.Name, expected, actual)
		}
	}
	return nil
}
