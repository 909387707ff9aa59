package interp

import (
	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/value"
)

func (in *Interp) evalLet(n *ast.LetExpr, env *value.Environment) (value.Value, error) {
	v, err := in.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if !in.matchPattern(n.Pattern, v, env) {
		return nil, raise(errKindRuntime, "let pattern did not match value")
	}
	if n.Body != nil {
		return in.Eval(n.Body, env)
	}
	return value.NilValue, nil
}

// assignTo writes v to the storage location target denotes: a plain
// identifier (nearest enclosing definition, per the set_variable
// resolution), a field access, or an index expression.
func (in *Interp) assignTo(target ast.Expression, v value.Value, env *value.Environment) error {
	switch t := target.(type) {
	case *ast.Identifier:
		env.SetVariable(t.Name, v)
		return nil
	case *ast.FieldAccessExpr:
		recv, err := in.Eval(t.Receiver, env)
		if err != nil {
			return err
		}
		switch r := recv.(type) {
		case *value.ObjectMut:
			r.Set(t.Field, v)
			return nil
		case *value.StructVal:
			r.Fields[t.Field] = v
			return nil
		default:
			return raise(errKindField, "cannot assign field %q on %s", t.Field, value.TypeName(recv))
		}
	case *ast.IndexExpr:
		recv, err := in.Eval(t.Receiver, env)
		if err != nil {
			return err
		}
		idx, err := in.Eval(t.Index, env)
		if err != nil {
			return err
		}
		arr, ok := recv.(*value.Array)
		if !ok {
			return raise(errKindType, "cannot index-assign into %s", value.TypeName(recv))
		}
		i, ok := idx.(value.Integer)
		if !ok || i.Value < 0 || int(i.Value) >= len(arr.Elements) {
			return raise(errKindIndex, "index out of bounds")
		}
		arr.Elements[i.Value] = v
		return nil
	default:
		return raise(errKindRuntime, "invalid assignment target")
	}
}

func (in *Interp) evalAssign(n *ast.AssignExpr, env *value.Environment) (value.Value, error) {
	v, err := in.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if err := in.assignTo(n.Target, v, env); err != nil {
		return nil, err
	}
	return v, nil
}

func (in *Interp) evalCompoundAssign(n *ast.CompoundAssignExpr, env *value.Environment) (value.Value, error) {
	cur, err := in.Eval(n.Target, env)
	if err != nil {
		return nil, err
	}
	rhs, err := in.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	var next value.Value
	switch n.Op {
	case "&&":
		next = value.Bool{Value: value.Truthy(cur) && value.Truthy(rhs)}
	case "||":
		next = value.Bool{Value: value.Truthy(cur) || value.Truthy(rhs)}
	default:
		next, err = evalArith(n.Op, cur, rhs)
		if err != nil {
			return nil, err
		}
	}
	if err := in.assignTo(n.Target, next, env); err != nil {
		return nil, err
	}
	return next, nil
}

func paramsToClosureParams(params []ast.Param) []value.ClosureParam {
	out := make([]value.ClosureParam, len(params))
	for i, p := range params {
		out[i] = value.ClosureParam{Name: p.Name, Default: p.Default}
	}
	return out
}

func (in *Interp) evalLambda(n *ast.LambdaExpr, env *value.Environment) (value.Value, error) {
	return &value.Closure{Params: paramsToClosureParams(n.Params), Body: n.Body, Env: env}, nil
}

func (in *Interp) evalFunctionDecl(n *ast.FunctionDecl, env *value.Environment) (value.Value, error) {
	cl := &value.Closure{Name: n.Name, Params: paramsToClosureParams(n.Params), Body: n.Body, Env: env, IsAsync: n.Async}
	env.Define(n.Name, cl)
	return cl, nil
}

func (in *Interp) evalStructDecl(n *ast.StructDecl, env *value.Environment) (value.Value, error) {
	in.Structs[n.Name] = n
	ctor := &value.Builtin{Name: n.Name, Fn: func(args []value.Value) (value.Value, error) {
		fields := map[string]value.Value{}
		for i, f := range n.Fields {
			if i < len(args) {
				fields[f.Name] = args[i]
			}
		}
		return &value.StructVal{TypeName: n.Name, Fields: fields}, nil
	}}
	env.Define(n.Name, ctor)
	return ctor, nil
}

func (in *Interp) evalEnumDecl(n *ast.EnumDecl, env *value.Environment) (value.Value, error) {
	in.Enums[n.Name] = n
	for _, variant := range n.Variants {
		name := variant.Name
		if len(variant.Fields) == 0 {
			env.Define(n.Name+"::"+name, &value.EnumVal{TypeName: n.Name, Variant: name})
		} else {
			env.Define(n.Name+"::"+name, makeVariantCtor(n.Name, name))
		}
	}
	return value.NilValue, nil
}

func (in *Interp) evalTraitDecl(n *ast.TraitDecl, env *value.Environment) (value.Value, error) {
	in.Traits[n.Name] = n
	return value.NilValue, nil
}

func (in *Interp) evalImplDecl(n *ast.ImplDecl, env *value.Environment) (value.Value, error) {
	methods, ok := in.Impls[n.TypeName]
	if !ok {
		methods = map[string]*ast.FunctionDecl{}
		in.Impls[n.TypeName] = methods
	}
	for _, m := range n.Methods {
		methods[m.Name] = m
	}
	if trait, ok := in.Traits[n.TraitName]; ok {
		for _, sig := range trait.Methods {
			if _, has := methods[sig.Name]; !has && sig.Default != nil {
				methods[sig.Name] = &ast.FunctionDecl{Name: sig.Name, Params: sig.Params, ReturnType: sig.ReturnType, Body: sig.Default}
			}
		}
	}
	return value.NilValue, nil
}

func (in *Interp) evalActorDecl(n *ast.ActorDecl, env *value.Environment) (value.Value, error) {
	env.Define(n.Name, &actorDef{decl: n})
	return value.NilValue, nil
}

// actorDef is the Value wrapper binding an actor type's name to its
// declaration, so `spawn Counter(0)` can look it up via env.Get like
// any other callable.
type actorDef struct {
	decl *ast.ActorDecl
}

func (*actorDef) Kind() value.Kind  { return "ActorDef" }
func (a *actorDef) Inspect() string { return "<actor-def " + a.decl.Name + ">" }

func (in *Interp) evalSupervisorDecl(n *ast.SupervisorDecl, env *value.Environment) (value.Value, error) {
	switch n.Strategy {
	case "one_for_one", "one_for_all", "rest_for_one":
	default:
		return nil, raise(errKindRuntime, "unknown supervision strategy %q", n.Strategy)
	}
	env.Define(n.Name, &supervisorDef{decl: n})
	return value.NilValue, nil
}

// supervisorDef binds a supervisor type name to its declaration, the
// supervisor-side twin of actorDef.
type supervisorDef struct {
	decl *ast.SupervisorDecl
}

func (*supervisorDef) Kind() value.Kind  { return "SupervisorDef" }
func (s *supervisorDef) Inspect() string { return "<supervisor-def " + s.decl.Name + ">" }
