package codegen

// preludeDispatch holds the call/dispatch helpers the emitter leans
// on: uniform callable invocation, argument/default binding, impl
// method registration, and the small pattern-support predicates.
const preludeDispatch = `
func rCall(f any, args ...any) any {
	fn, ok := f.(func(...any) any)
	if !ok {
		return rFail("value is not callable")
	}
	return fn(args...)
}

func rArg(args []any, i int, def func() any) any {
	if i < len(args) {
		return args[i]
	}
	if def != nil {
		return def()
	}
	return rFail("missing argument")
}

func rAsActor(v any) *rActor {
	a, ok := v.(*rActor)
	if !ok {
		rFail("value is not an actor")
	}
	return a
}

func rSeqLen(v any, n int) bool {
	s, ok := v.([]any)
	return ok && len(s) == n
}

func rHasField(v any, name string) bool {
	switch x := v.(type) {
	case map[string]any:
		_, ok := x[name]
		return ok
	case *rStruct:
		_, ok := x.fields[name]
		return ok
	case *rEnum:
		i, err := strconv.Atoi(name)
		return err == nil && i < len(x.payload)
	}
	return false
}

func rFieldOrPayload(v any, name string) any {
	if e, ok := v.(*rEnum); ok {
		if i, err := strconv.Atoi(name); err == nil && i < len(e.payload) {
			return e.payload[i]
		}
	}
	return rField(v, name)
}

var _ = strconv.Atoi


func rTypeName(v any) string {
	switch x := v.(type) {
	case int64:
		return "Integer"
	case float64:
		return "Float"
	case bool:
		return "Bool"
	case string:
		return "String"
	case nil:
		return "Nil"
	case []any:
		return "Array"
	case map[string]any:
		return "Object"
	case *rStruct:
		return x.name
	case *rEnum:
		return x.typeName
	case *rActor:
		return "Actor"
	default:
		return "Any"
	}
}

var rImpls = map[string]map[string]func(...any) any{}

func rRegisterMethod(typeName, method string, fn func(...any) any) {
	m, ok := rImpls[typeName]
	if !ok {
		m = map[string]func(...any) any{}
		rImpls[typeName] = m
	}
	m[method] = fn
}

func rDispatch(recv any, name string, args ...any) any {
	if m, ok := rImpls[rTypeName(recv)]; ok {
		if fn, ok := m[name]; ok {
			return fn(append([]any{recv}, args...)...)
		}
	}
	return rMethod(recv, name, args...)
}

func rCast(v any, target string) any {
	switch target {
	case "Integer", "Int", "i32", "i64":
		switch x := v.(type) {
		case int64:
			return x
		case float64:
			return int64(x)
		case bool:
			if x {
				return int64(1)
			}
			return int64(0)
		}
	case "Float", "f32", "f64":
		switch x := v.(type) {
		case int64:
			return float64(x)
		case float64:
			return x
		}
	case "String":
		return rInspect(v)
	}
	return rFail("cannot cast value to " + target)
}
`
