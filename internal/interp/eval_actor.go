package interp

import (
	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/utils"
	"github.com/paiml/ruchy-sub014/internal/value"
)

func (in *Interp) spawnActor(decl *ast.ActorDecl, async bool, args []value.Value) (value.Value, error) {
	if in.Actors == nil {
		return nil, raise(errKindRuntime, "actor runtime not configured")
	}
	return in.Actors.Spawn(in, decl, async, args)
}

func (in *Interp) evalSpawn(n *ast.SpawnExpr, env *value.Environment) (value.Value, error) {
	var name string
	var argExprs []ast.Expression
	switch target := n.Actor.(type) {
	case *ast.Identifier:
		name = target.Name
	case *ast.CallExpr:
		ident, ok := target.Fn.(*ast.Identifier)
		if !ok {
			return nil, raise(errKindRuntime, "spawn target must name an actor type")
		}
		name = ident.Name
		argExprs = target.Args
	default:
		return nil, raise(errKindRuntime, "spawn target must name an actor type")
	}
	v, ok := env.Get(name)
	if !ok {
		return nil, raise(errKindName, "undefined actor %q", name)
	}
	args, err := in.evalArgs(argExprs, env)
	if err != nil {
		return nil, err
	}
	switch def := v.(type) {
	case *actorDef:
		async := def.decl.IsAsync || in.asyncDepth > 0
		return in.spawnActor(def.decl, async, args)
	case *supervisorDef:
		if in.Actors == nil {
			return nil, raise(errKindRuntime, "actor runtime not configured")
		}
		return in.Actors.SpawnSupervisor(in, def.decl)
	default:
		return nil, raise(errKindType, "%q is not an actor", name)
	}
}

// messageParts splits a message expression into its handler name and
// argument expressions. Messages are syntactic: `Inc` and `Add(2)` name
// a receive arm, they are never evaluated as ordinary expressions.
func messageParts(msg ast.Expression) (string, []ast.Expression, bool) {
	switch m := msg.(type) {
	case *ast.Identifier:
		return m.Name, nil, true
	case *ast.CallExpr:
		if ident, ok := m.Fn.(*ast.Identifier); ok {
			return ident.Name, m.Args, true
		}
	case *ast.QualifiedNameExpr:
		return m.Name, nil, true
	}
	return "", nil, false
}

// evalSend implements both `target ! message` and macro invocation
// `name!(args)`: the grammar slot is shared (the lexer emits BANG for
// both positions), so evaluation is what tells them apart — if the
// target names a known builtin/macro rather than an actor handle, this
// dispatches as a call instead of a fire-and-forget send.
func (in *Interp) evalSend(n *ast.SendExpr, env *value.Environment) (value.Value, error) {
	target, err := in.Eval(n.Target, env)
	if err != nil {
		return nil, err
	}
	if handle, ok := target.(value.ActorHandle); ok {
		name, argExprs, ok := messageParts(n.Message)
		if !ok {
			return nil, raise(errKindRuntime, "message must name a receive arm")
		}
		args, err := in.evalArgs(argExprs, env)
		if err != nil {
			return nil, err
		}
		if in.Actors == nil {
			return nil, raise(errKindRuntime, "actor runtime not configured")
		}
		if err := in.Actors.Send(in, handle, name, args); err != nil {
			return nil, err
		}
		return value.NilValue, nil
	}
	// Not an actor: treat as macro invocation `target!(args)`. The
	// parenthesised arguments parse as a unit, a tuple, or one grouped
	// expression.
	argExprs := []ast.Expression{n.Message}
	switch m := n.Message.(type) {
	case *ast.UnitLiteral:
		argExprs = nil
	case *ast.TupleExpr:
		argExprs = m.Elements
	}
	args, err := in.evalArgs(argExprs, env)
	if err != nil {
		return nil, err
	}
	return in.applyCallable(target, args)
}

func (in *Interp) evalAsk(n *ast.AskExpr, env *value.Environment) (value.Value, error) {
	target, err := in.Eval(n.Target, env)
	if err != nil {
		return nil, err
	}
	handle, ok := target.(value.ActorHandle)
	if !ok {
		return nil, raise(errKindType, "ask target is not an actor")
	}
	name, argExprs, ok := messageParts(n.Message)
	if !ok {
		return nil, raise(errKindRuntime, "message must name a receive arm")
	}
	args, err := in.evalArgs(argExprs, env)
	if err != nil {
		return nil, err
	}
	if in.Actors == nil {
		return nil, raise(errKindRuntime, "actor runtime not configured")
	}
	return in.Actors.Ask(in, handle, name, args)
}

func (in *Interp) evalThrow(n *ast.ThrowExpr, env *value.Environment) (value.Value, error) {
	v, err := in.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	return nil, throwSignal(v)
}

// evalTry implements the postfix `?` operator over Option/Result:
// Some(x)/Ok(x) unwraps to x, None/Err(e) propagates as a return (for
// Option, returning None) or a throw (for Result, throwing e).
func (in *Interp) evalTry(n *ast.TryExpr, env *value.Environment) (value.Value, error) {
	v, err := in.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	ev, ok := v.(*value.EnumVal)
	if !ok {
		return nil, raise(errKindType, "`?` requires an Option or Result value")
	}
	switch ev.Variant {
	case "Some", "Ok":
		if len(ev.Payload) > 0 {
			return ev.Payload[0], nil
		}
		return value.NilValue, nil
	case "None":
		return nil, returnSignal(&value.EnumVal{TypeName: "Option", Variant: "None"})
	case "Err":
		var payload value.Value = value.NilValue
		if len(ev.Payload) > 0 {
			payload = ev.Payload[0]
		}
		return nil, throwSignal(payload)
	default:
		return nil, raise(errKindType, "`?` requires an Option or Result value")
	}
}

func (in *Interp) evalTryCatch(n *ast.TryCatchExpr, env *value.Environment) (value.Value, error) {
	v, err := in.evalBlock(n.Body, env)
	if err != nil {
		if s, ok := isSignal(err, sigThrow); ok {
			for _, clause := range n.Catches {
				catchEnv := value.NewEnclosedEnvironment(env)
				if !in.matchPattern(clause.Pattern, s.value, catchEnv) {
					continue
				}
				cv, cerr := in.evalBlock(clause.Body, catchEnv)
				if n.Finally != nil {
					if _, ferr := in.evalBlock(n.Finally, env); ferr != nil {
						return nil, ferr
					}
				}
				return cv, cerr
			}
		}
		if n.Finally != nil {
			if _, ferr := in.evalBlock(n.Finally, env); ferr != nil {
				return nil, ferr
			}
		}
		return nil, err
	}
	if n.Finally != nil {
		if _, ferr := in.evalBlock(n.Finally, env); ferr != nil {
			return nil, ferr
		}
	}
	return v, nil
}

// evalMacroInvocation handles a MacroInvocationExpr on the rare path
// where a caller constructs one directly (the parser itself always
// produces a SendExpr for `name!(args)`, disambiguated in evalSend).
func (in *Interp) evalMacroInvocation(n *ast.MacroInvocationExpr, env *value.Environment) (value.Value, error) {
	fn, ok := env.Get(n.Name)
	if !ok {
		return nil, raise(errKindName, "undefined macro/function %q", n.Name)
	}
	args, err := in.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	return in.applyCallable(fn, args)
}

func (in *Interp) evalImportDecl(n *ast.ImportDecl, env *value.Environment) (value.Value, error) {
	if in.Loader == nil {
		return nil, raise(errKindModule, "module loading is not configured")
	}
	exports, err := in.Loader.Load(in.CurrentFile, n.Path)
	if err != nil {
		return nil, raise(errKindModule, "%s", err.Error())
	}
	if len(n.Names) > 0 {
		for _, name := range n.Names {
			v, ok := exports[name]
			if !ok {
				return nil, raise(errKindModule, "module %q does not export %q", n.Path, name)
			}
			env.Define(name, v)
		}
		return value.NilValue, nil
	}
	alias := n.Alias
	if alias == "" {
		alias = utils.ExtractModuleName(n.Path)
	}
	fields := make(map[string]value.Value, len(exports))
	for k, v := range exports {
		fields[k] = v
	}
	env.Define(alias, &value.Object{Fields: fields})
	return value.NilValue, nil
}

func (in *Interp) evalModuleDecl(n *ast.ModuleDecl, env *value.Environment) (value.Value, error) {
	inner := value.NewEnclosedEnvironment(env)
	for _, stmt := range n.Body {
		if _, err := in.evalStatement(stmt, inner); err != nil {
			return nil, err
		}
	}
	fields := inner.Store()
	env.Define(n.Name, &value.Object{Fields: fields})
	return value.NilValue, nil
}

// evalActorMethod handles the `send`/`ask`/`stop` methods on an actor
// handle: `c.send("Inc", args...)` mirrors `c ! Inc(args...)` with the
// message name supplied as a String value instead of syntax.
func (in *Interp) evalActorMethod(h value.ActorHandle, method string, args []value.Value) (value.Value, error) {
	if in.Actors == nil {
		return nil, raise(errKindRuntime, "actor runtime not configured")
	}
	switch method {
	case "stop":
		if err := in.Actors.Stop(in, h); err != nil {
			return nil, err
		}
		return value.NilValue, nil
	case "send", "ask":
		if len(args) == 0 {
			return nil, raise(errKindArity, "%s expects a message name", method)
		}
		name, ok := args[0].(value.Str)
		if !ok {
			return nil, raise(errKindType, "%s message name must be a String", method)
		}
		if method == "ask" {
			return in.Actors.Ask(in, h, name.Value, args[1:])
		}
		if err := in.Actors.Send(in, h, name.Value, args[1:]); err != nil {
			return nil, err
		}
		return value.NilValue, nil
	default:
		return nil, raise(errKindField, "no method %q on actor", method)
	}
}
