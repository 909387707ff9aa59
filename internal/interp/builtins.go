package interp

import (
	"fmt"

	"github.com/paiml/ruchy-sub014/internal/config"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// registerBuiltins installs the free-function builtins available in
// every Ruchy program's global scope, named after config's builtin
// name constants so the CLI and evaluator agree on spelling.
func registerBuiltins(in *Interp) {
	def := func(name string, fn func([]value.Value) (value.Value, error)) {
		in.GlobalEnv.Define(name, &value.Builtin{Name: name, Fn: fn})
	}

	// Bare `None` is a value, not a call, so it is bound here.
	in.GlobalEnv.Define(config.NoneCtorName, &value.EnumVal{TypeName: "Option", Variant: "None"})

	printArgs := func(args []value.Value) {
		for i, a := range args {
			if i > 0 {
				fmt.Fprint(in.Out, " ")
			}
			fmt.Fprint(in.Out, a.Inspect())
		}
	}
	def(config.PrintFuncName, func(args []value.Value) (value.Value, error) {
		printArgs(args)
		return value.NilValue, nil
	})
	def(config.PrintlnFuncName, func(args []value.Value) (value.Value, error) {
		printArgs(args)
		fmt.Fprintln(in.Out)
		return value.NilValue, nil
	})

	def(config.PanicFuncName, func(args []value.Value) (value.Value, error) {
		msg := "panic"
		if len(args) > 0 {
			msg = args[0].Inspect()
		}
		return nil, raise(errKindRuntime, "%s", msg)
	})

	def(config.LenFuncName, func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, raise(errKindArity, "len expects 1 argument")
		}
		n, err := lengthOf(args[0])
		if err != nil {
			return nil, err
		}
		return value.Integer{Value: int64(n)}, nil
	})

	def(config.TypeOfFuncName, func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, raise(errKindArity, "typeOf expects 1 argument")
		}
		return value.Str{Value: value.TypeName(args[0])}, nil
	})

	def("assert", func(args []value.Value) (value.Value, error) {
		if len(args) == 0 || !value.Truthy(args[0]) {
			msg := "assertion failed"
			if len(args) > 1 {
				if s, ok := args[1].(value.Str); ok {
					msg = s.Value
				}
			}
			return nil, raise(errKindRuntime, "%s", msg)
		}
		return value.NilValue, nil
	})
}

func lengthOf(v value.Value) (int, error) {
	switch x := v.(type) {
	case *value.Array:
		return len(x.Elements), nil
	case *value.Tuple:
		return len(x.Elements), nil
	case value.Str:
		return len([]rune(x.Value)), nil
	case *value.Object:
		return len(x.Fields), nil
	case *value.ObjectMut:
		return len(x.Snapshot()), nil
	default:
		return 0, raise(errKindType, "%s has no length", value.TypeName(v))
	}
}

// dispatchBuiltinMethod handles the fixed set of methods Ruchy's
// standard value kinds respond to directly (len/push/map/filter/...),
// checked before falling through to user `impl` blocks in evalMethodCall.
// The bool result reports whether method belonged to this built-in set.
func (in *Interp) dispatchBuiltinMethod(recv value.Value, method string, args []value.Value) (value.Value, bool, error) {
	switch r := recv.(type) {
	case *value.Array:
		return arrayMethod(in, r, method, args)
	case value.Str:
		return stringMethod(r, method, args)
	case *value.EnumVal:
		return enumMethod(r, method, args)
	case value.RangeVal:
		if method == "contains" && len(args) == 1 {
			return value.Bool{Value: inRange(args[0], r.Start, r.End, r.Inclusive)}, true, nil
		}
	}
	switch method {
	case "len":
		n, err := lengthOf(recv)
		if err != nil {
			return nil, true, err
		}
		return value.Integer{Value: int64(n)}, true, nil
	case "to_string":
		return value.Str{Value: recv.Inspect()}, true, nil
	}
	return nil, false, nil
}
