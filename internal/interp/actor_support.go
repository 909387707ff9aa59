package interp

import (
	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// The helpers in this file are the surface internal/actor calls back
// into: handler bodies and lifecycle hooks are ordinary Ruchy blocks
// and must run through the same Eval (and the same signal machinery)
// as everything else, without the actor package seeing private signal
// or error types.

// EvalHandler evaluates a receive-arm or hook body in a fresh scope
// over the global environment with bindings (self, parameters) defined,
// converting a `return` signal into its value.
func (in *Interp) EvalHandler(body *ast.BlockExpr, bindings map[string]value.Value) (value.Value, error) {
	if body == nil {
		return value.NilValue, nil
	}
	env := value.NewEnclosedEnvironment(in.GlobalEnv)
	for name, v := range bindings {
		env.Define(name, v)
	}
	v, err := in.evalBlock(body, env)
	if err != nil {
		if s, ok := isSignal(err, sigReturn); ok {
			return valueOrNil(s.value), nil
		}
		return nil, err
	}
	return v, nil
}

// EvalGuard evaluates a receive-arm guard with bindings in scope,
// reporting whether the arm should fire.
func (in *Interp) EvalGuard(guard ast.Expression, bindings map[string]value.Value) (bool, error) {
	if guard == nil {
		return true, nil
	}
	env := value.NewEnclosedEnvironment(in.GlobalEnv)
	for name, v := range bindings {
		env.Define(name, v)
	}
	v, err := in.Eval(guard, env)
	if err != nil {
		return false, err
	}
	return value.Truthy(v), nil
}

// EvalStateDefault evaluates an actor state-field default expression in
// the global scope; a nil default yields Nil.
func (in *Interp) EvalStateDefault(def ast.Expression) (value.Value, error) {
	if def == nil {
		return value.NilValue, nil
	}
	return in.Eval(def, in.GlobalEnv)
}

// LookupActorDecl resolves an actor type name to its declaration, used
// by supervisors to reconstruct children.
func (in *Interp) LookupActorDecl(name string) (*ast.ActorDecl, bool) {
	v, ok := in.GlobalEnv.Get(name)
	if !ok {
		return nil, false
	}
	def, ok := v.(*actorDef)
	if !ok {
		return nil, false
	}
	return def.decl, true
}

// ThrowPayload extracts the thrown Value from a handler error, so
// on_error hooks can receive it as a binding.
func ThrowPayload(err error) (value.Value, bool) {
	s, ok := err.(*signal)
	if !ok || s.kind != sigThrow {
		return nil, false
	}
	return s.value, true
}

// TypeErrorf and RuntimeErrorf build catchable runtime errors of the
// corresponding kinds for collaborating packages.
func TypeErrorf(format string, args ...any) error { return raise(errKindType, format, args...) }

func RuntimeErrorf(format string, args ...any) error { return raise(errKindRuntime, format, args...) }
