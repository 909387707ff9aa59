package interp

import (
	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/value"
)

func (in *Interp) evalArgs(args []ast.Expression, env *value.Environment) ([]value.Value, error) {
	out := make([]value.Value, 0, len(args))
	for _, a := range args {
		if sp, ok := a.(*ast.SpreadExpr); ok {
			v, err := in.Eval(sp.Value, env)
			if err != nil {
				return nil, err
			}
			if arr, ok := v.(*value.Array); ok {
				out = append(out, arr.Elements...)
				continue
			}
			return nil, raise(errKindType, "cannot spread %s into call arguments", value.TypeName(v))
		}
		v, err := in.Eval(a, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (in *Interp) evalCall(n *ast.CallExpr, env *value.Environment) (value.Value, error) {
	// `name!(args)` parses as a SendExpr whose target isn't an actor, so
	// the only way a macro invocation reaches here is if it's reused as
	// a plain call target; handled directly in evalSend instead.
	fn, err := in.Eval(n.Fn, env)
	if err != nil {
		return nil, err
	}
	if actorDecl, ok := fn.(*actorDef); ok {
		args, err := in.evalArgs(n.Args, env)
		if err != nil {
			return nil, err
		}
		return in.spawnActor(actorDecl.decl, false, args)
	}
	args, err := in.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	return in.applyCallable(fn, args)
}

func (in *Interp) applyCallable(fn value.Value, args []value.Value) (value.Value, error) {
	switch f := fn.(type) {
	case *value.Builtin:
		v, err := f.Fn(args)
		if err != nil {
			return nil, err
		}
		return v, nil
	case *value.Closure:
		return in.applyClosure(f, args)
	default:
		return nil, raise(errKindType, "%s is not callable", value.TypeName(fn))
	}
}

// applyClosure binds args (falling back to each parameter's Default
// where an argument is missing) in a fresh scope enclosed over the
// closure's captured environment, then evaluates its body, converting
// a `return` signal into a plain value.
func (in *Interp) applyClosure(cl *value.Closure, args []value.Value) (value.Value, error) {
	if len(in.CallStack) > maxEvalDepth {
		return nil, raise(errKindRuntime, "stack overflow")
	}
	callEnv := value.NewEnclosedEnvironment(cl.Env)
	for i, p := range cl.Params {
		switch {
		case i < len(args):
			callEnv.Define(p.Name, args[i])
		case p.Default != nil:
			v, err := in.Eval(p.Default, callEnv)
			if err != nil {
				return nil, err
			}
			callEnv.Define(p.Name, v)
		default:
			return nil, raise(errKindArity, "missing argument %q calling %s", p.Name, cl.Name)
		}
	}
	in.CallStack = append(in.CallStack, CallFrame{Name: cl.Name})
	defer func() { in.CallStack = in.CallStack[:len(in.CallStack)-1] }()

	v, err := in.Eval(cl.Body, callEnv)
	if err != nil {
		if s, ok := isSignal(err, sigReturn); ok {
			return valueOrNil(s.value), nil
		}
		return nil, err
	}
	return v, nil
}

func (in *Interp) evalMethodCall(n *ast.MethodCallExpr, env *value.Environment) (value.Value, error) {
	recv, err := in.Eval(n.Receiver, env)
	if err != nil {
		return nil, err
	}
	args, err := in.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	if v, handled, err := in.dispatchBuiltinMethod(recv, n.Method, args); handled {
		return v, err
	}
	// Calling a callable field on an object/module record: `m.two()`.
	switch r := recv.(type) {
	case *value.Object:
		if f, ok := r.Fields[n.Method]; ok {
			return in.applyCallable(f, args)
		}
	case *value.ObjectMut:
		if f, ok := r.Get(n.Method); ok {
			if _, callable := f.(*value.Closure); callable {
				return in.applyCallable(f, args)
			}
			if _, callable := f.(*value.Builtin); callable {
				return in.applyCallable(f, args)
			}
		}
	}
	typeName := value.TypeName(recv)
	if methods, ok := in.Impls[typeName]; ok {
		if fn, ok := methods[n.Method]; ok {
			cl := &value.Closure{Name: fn.Name, Params: paramsToClosureParams(fn.Params), Body: fn.Body, Env: in.GlobalEnv}
			return in.applyClosure(cl, append([]value.Value{recv}, args...))
		}
	}
	if h, ok := recv.(value.ActorHandle); ok {
		return in.evalActorMethod(h, n.Method, args)
	}
	return nil, raise(errKindField, "no method %q on %s", n.Method, typeName)
}

func (in *Interp) evalFieldAccess(n *ast.FieldAccessExpr, env *value.Environment) (value.Value, error) {
	recv, err := in.Eval(n.Receiver, env)
	if err != nil {
		return nil, err
	}
	if n.Optional {
		if _, isNil := recv.(value.Nil); isNil {
			return value.NilValue, nil
		}
	}
	switch r := recv.(type) {
	case *value.StructVal:
		if v, ok := r.Fields[n.Field]; ok {
			return v, nil
		}
	case *value.Object:
		if v, ok := r.Fields[n.Field]; ok {
			return v, nil
		}
	case *value.ObjectMut:
		if v, ok := r.Get(n.Field); ok {
			return v, nil
		}
	case *value.EnumVal:
		if idx, ok := fieldIndexName(n.Field); ok && idx < len(r.Payload) {
			return r.Payload[idx], nil
		}
	case *value.Tuple:
		if idx, ok := fieldIndexName(n.Field); ok && idx < len(r.Elements) {
			return r.Elements[idx], nil
		}
	}
	return nil, raise(errKindField, "no field %q on %s", n.Field, value.TypeName(recv))
}

func fieldIndexName(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	n := 0
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (in *Interp) evalIndex(n *ast.IndexExpr, env *value.Environment) (value.Value, error) {
	recv, err := in.Eval(n.Receiver, env)
	if err != nil {
		return nil, err
	}
	idx, err := in.Eval(n.Index, env)
	if err != nil {
		return nil, err
	}
	switch r := recv.(type) {
	case *value.Array:
		i, ok := idx.(value.Integer)
		if !ok {
			return nil, raise(errKindType, "array index must be an Integer")
		}
		if i.Value < 0 || int(i.Value) >= len(r.Elements) {
			return nil, raise(errKindIndex, "index %d out of bounds (len %d)", i.Value, len(r.Elements))
		}
		return r.Elements[i.Value], nil
	case *value.Tuple:
		i, ok := idx.(value.Integer)
		if !ok || i.Value < 0 || int(i.Value) >= len(r.Elements) {
			return nil, raise(errKindIndex, "tuple index out of bounds")
		}
		return r.Elements[i.Value], nil
	case value.Str:
		i, ok := idx.(value.Integer)
		if !ok {
			return nil, raise(errKindType, "string index must be an Integer")
		}
		runes := []rune(r.Value)
		if i.Value < 0 || int(i.Value) >= len(runes) {
			return nil, raise(errKindIndex, "index out of bounds")
		}
		return value.Char{Value: runes[i.Value]}, nil
	case *value.Object:
		if s, ok := idx.(value.Str); ok {
			if v, ok := r.Fields[s.Value]; ok {
				return v, nil
			}
		}
	case *value.ObjectMut:
		if s, ok := idx.(value.Str); ok {
			if v, ok := r.Get(s.Value); ok {
				return v, nil
			}
		}
	}
	return nil, raise(errKindType, "cannot index %s", value.TypeName(recv))
}

func (in *Interp) evalTypeCast(n *ast.TypeCastExpr, env *value.Environment) (value.Value, error) {
	v, err := in.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	target := typeNodeName(n.Target)
	switch target {
	case "Integer", "Int":
		switch x := v.(type) {
		case value.Integer:
			return x, nil
		case value.Float:
			return value.Integer{Value: int64(x.Value)}, nil
		case value.Char:
			return value.Integer{Value: int64(x.Value)}, nil
		case value.Byte:
			return value.Integer{Value: int64(x.Value)}, nil
		case value.Bool:
			if x.Value {
				return value.Integer{Value: 1}, nil
			}
			return value.Integer{Value: 0}, nil
		}
	case "Float":
		switch x := v.(type) {
		case value.Integer:
			return value.Float{Value: float64(x.Value)}, nil
		case value.Float:
			return x, nil
		}
	case "String":
		return value.Str{Value: v.Inspect()}, nil
	}
	return nil, raise(errKindType, "cannot cast %s as %s", value.TypeName(v), target)
}

func typeNodeName(t ast.TypeNode) string {
	if named, ok := t.(*ast.NamedType); ok {
		return named.Name
	}
	return ""
}

func (in *Interp) evalCtor(n *ast.CtorExpr, env *value.Environment) (value.Value, error) {
	args, err := in.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	switch n.Name {
	case "Some":
		return &value.EnumVal{TypeName: "Option", Variant: "Some", Payload: args}, nil
	case "None":
		return &value.EnumVal{TypeName: "Option", Variant: "None"}, nil
	case "Ok":
		return &value.EnumVal{TypeName: "Result", Variant: "Ok", Payload: args}, nil
	case "Err":
		return &value.EnumVal{TypeName: "Result", Variant: "Err", Payload: args}, nil
	default:
		return nil, raise(errKindRuntime, "unknown constructor %q", n.Name)
	}
}
