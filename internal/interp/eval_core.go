package interp

import (
	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/value"
)

func (in *Interp) evalIdentifier(n *ast.Identifier, env *value.Environment) (value.Value, error) {
	if v, ok := env.Get(n.Name); ok {
		return v, nil
	}
	return nil, raise(errKindName, "undefined name %q", n.Name)
}

func (in *Interp) evalQualifiedName(n *ast.QualifiedNameExpr, env *value.Environment) (value.Value, error) {
	if decl, ok := in.Enums[n.Module]; ok {
		for _, variant := range decl.Variants {
			if variant.Name == n.Name {
				if len(variant.Fields) == 0 {
					return &value.EnumVal{TypeName: n.Module, Variant: n.Name}, nil
				}
				return makeVariantCtor(n.Module, n.Name), nil
			}
		}
	}
	if v, ok := env.Get(n.Module + "::" + n.Name); ok {
		return v, nil
	}
	return nil, raise(errKindName, "undefined name %s::%s", n.Module, n.Name)
}

func makeVariantCtor(typeName, variant string) *value.Builtin {
	return &value.Builtin{Name: typeName + "::" + variant, Fn: func(args []value.Value) (value.Value, error) {
		return &value.EnumVal{TypeName: typeName, Variant: variant, Payload: args}, nil
	}}
}

func (in *Interp) evalListExpr(n *ast.ListExpr, env *value.Environment) (value.Value, error) {
	elems := make([]value.Value, 0, len(n.Elements))
	for _, e := range n.Elements {
		if sp, ok := e.(*ast.SpreadExpr); ok {
			sv, err := in.Eval(sp.Value, env)
			if err != nil {
				return nil, err
			}
			if arr, ok := sv.(*value.Array); ok {
				elems = append(elems, arr.Elements...)
				continue
			}
			return nil, raise(errKindType, "cannot spread %s into a list", value.TypeName(sv))
		}
		v, err := in.Eval(e, env)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return &value.Array{Elements: elems}, nil
}

func (in *Interp) evalArrayInitExpr(n *ast.ArrayInitExpr, env *value.Environment) (value.Value, error) {
	v, err := in.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	sizeV, err := in.Eval(n.Size, env)
	if err != nil {
		return nil, err
	}
	size, ok := sizeV.(value.Integer)
	if !ok {
		return nil, raise(errKindType, "array size must be an Integer")
	}
	elems := make([]value.Value, size.Value)
	for i := range elems {
		elems[i] = v
	}
	return &value.Array{Elements: elems}, nil
}

func (in *Interp) evalTupleExpr(n *ast.TupleExpr, env *value.Environment) (value.Value, error) {
	elems := make([]value.Value, len(n.Elements))
	for i, e := range n.Elements {
		v, err := in.Eval(e, env)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return &value.Tuple{Elements: elems}, nil
}

// evalBlock evaluates a block's statements in a fresh child scope,
// yielding the value of the last expression statement (or Nil/Unit).
func (in *Interp) evalBlock(n *ast.BlockExpr, env *value.Environment) (value.Value, error) {
	inner := value.NewEnclosedEnvironment(env)
	var last value.Value = value.NilValue
	for _, stmt := range n.Statements {
		v, err := in.evalStatement(stmt, inner)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (in *Interp) evalBinary(n *ast.BinaryExpr, env *value.Environment) (value.Value, error) {
	switch n.Op {
	case "&&":
		l, err := in.Eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(l) {
			return value.Bool{Value: false}, nil
		}
		r, err := in.Eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return value.Bool{Value: value.Truthy(r)}, nil
	case "||":
		l, err := in.Eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if value.Truthy(l) {
			return value.Bool{Value: true}, nil
		}
		r, err := in.Eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return value.Bool{Value: value.Truthy(r)}, nil
	}

	l, err := in.Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := in.Eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "==":
		return value.Bool{Value: value.Equal(l, r)}, nil
	case "!=":
		return value.Bool{Value: !value.Equal(l, r)}, nil
	case "<", "<=", ">", ">=":
		return evalCompare(n.Op, l, r)
	default:
		return evalArith(n.Op, l, r)
	}
}

func (in *Interp) evalUnary(n *ast.UnaryExpr, env *value.Environment) (value.Value, error) {
	v, err := in.Eval(n.Operand, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		switch x := v.(type) {
		case value.Integer:
			return value.Integer{Value: -x.Value}, nil
		case value.Float:
			return value.Float{Value: -x.Value}, nil
		}
		return nil, raise(errKindType, "cannot negate %s", value.TypeName(v))
	case "!":
		return value.Bool{Value: !value.Truthy(v)}, nil
	case "~":
		if x, ok := v.(value.Integer); ok {
			return value.Integer{Value: ^x.Value}, nil
		}
		return nil, raise(errKindType, "cannot bitwise-not %s", value.TypeName(v))
	default:
		return nil, raise(errKindType, "unknown unary operator %q", n.Op)
	}
}

func (in *Interp) evalIncDec(n *ast.IncDecExpr, env *value.Environment) (value.Value, error) {
	cur, err := in.Eval(n.Target, env)
	if err != nil {
		return nil, err
	}
	delta := int64(1)
	if n.Op == "--" {
		delta = -1
	}
	var next value.Value
	switch x := cur.(type) {
	case value.Integer:
		next = value.Integer{Value: x.Value + delta}
	case value.Float:
		next = value.Float{Value: x.Value + float64(delta)}
	default:
		return nil, raise(errKindType, "cannot increment/decrement %s", value.TypeName(cur))
	}
	if err := in.assignTo(n.Target, next, env); err != nil {
		return nil, err
	}
	if n.Prefix {
		return next, nil
	}
	return cur, nil
}

func (in *Interp) evalRange(n *ast.RangeExpr, env *value.Environment) (value.Value, error) {
	start, err := in.Eval(n.Start, env)
	if err != nil {
		return nil, err
	}
	end, err := in.Eval(n.End, env)
	if err != nil {
		return nil, err
	}
	return value.RangeVal{Start: start, End: end, Inclusive: n.Inclusive}, nil
}

func (in *Interp) evalIf(n *ast.IfExpr, env *value.Environment) (value.Value, error) {
	cond, err := in.Eval(n.Condition, env)
	if err != nil {
		return nil, err
	}
	if value.Truthy(cond) {
		return in.evalBlock(n.Then, env)
	}
	if n.Else != nil {
		return in.Eval(n.Else, env)
	}
	return value.NilValue, nil
}

func (in *Interp) evalTernary(n *ast.TernaryExpr, env *value.Environment) (value.Value, error) {
	cond, err := in.Eval(n.Condition, env)
	if err != nil {
		return nil, err
	}
	if value.Truthy(cond) {
		return in.Eval(n.Then, env)
	}
	return in.Eval(n.Else, env)
}

func (in *Interp) evalMatch(n *ast.MatchExpr, env *value.Environment) (value.Value, error) {
	scrutinee, err := in.Eval(n.Scrutinee, env)
	if err != nil {
		return nil, err
	}
	for _, arm := range n.Arms {
		armEnv := value.NewEnclosedEnvironment(env)
		if !in.matchPattern(arm.Pattern, scrutinee, armEnv) {
			continue
		}
		if arm.Guard != nil {
			g, err := in.Eval(arm.Guard, armEnv)
			if err != nil {
				return nil, err
			}
			if !value.Truthy(g) {
				continue
			}
		}
		return in.Eval(arm.Body, armEnv)
	}
	return nil, raise(errKindNonExhaustive, "no match arm matched value of type %s", value.TypeName(scrutinee))
}

func (in *Interp) evalWhile(n *ast.WhileExpr, env *value.Environment) (value.Value, error) {
	for {
		cond, err := in.Eval(n.Condition, env)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(cond) {
			return value.NilValue, nil
		}
		_, err = in.evalBlock(n.Body, env)
		if err != nil {
			if s, ok := isSignal(err, sigBreak); ok && (s.label == "" || s.label == n.Label) {
				return valueOrNil(s.value), nil
			}
			if s, ok := isSignal(err, sigContinue); ok && (s.label == "" || s.label == n.Label) {
				continue
			}
			return nil, err
		}
	}
}

func (in *Interp) evalFor(n *ast.ForExpr, env *value.Environment) (value.Value, error) {
	iter, err := in.Eval(n.Iter, env)
	if err != nil {
		return nil, err
	}
	items, err := in.materializeIterable(iter)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		iterEnv := value.NewEnclosedEnvironment(env)
		if !in.matchPattern(n.Pattern, item, iterEnv) {
			return nil, raise(errKindRuntime, "for-loop pattern did not match element")
		}
		_, err := in.evalBlock(n.Body, iterEnv)
		if err != nil {
			if s, ok := isSignal(err, sigBreak); ok && (s.label == "" || s.label == n.Label) {
				return valueOrNil(s.value), nil
			}
			if s, ok := isSignal(err, sigContinue); ok && (s.label == "" || s.label == n.Label) {
				continue
			}
			return nil, err
		}
	}
	return value.NilValue, nil
}

func (in *Interp) evalLoop(n *ast.LoopExpr, env *value.Environment) (value.Value, error) {
	for {
		_, err := in.evalBlock(n.Body, env)
		if err != nil {
			if s, ok := isSignal(err, sigBreak); ok && (s.label == "" || s.label == n.Label) {
				return valueOrNil(s.value), nil
			}
			if s, ok := isSignal(err, sigContinue); ok && (s.label == "" || s.label == n.Label) {
				continue
			}
			return nil, err
		}
	}
}

func (in *Interp) evalBreak(n *ast.BreakExpr, env *value.Environment) (value.Value, error) {
	var v value.Value
	if n.Value != nil {
		var err error
		v, err = in.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
	}
	return nil, breakSignal(n.Label, v)
}

func (in *Interp) evalReturn(n *ast.ReturnExpr, env *value.Environment) (value.Value, error) {
	var v value.Value = value.NilValue
	if n.Value != nil {
		var err error
		v, err = in.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
	}
	return nil, returnSignal(v)
}

func valueOrNil(v value.Value) value.Value {
	if v == nil {
		return value.NilValue
	}
	return v
}

// materializeIterable converts a Value into a concrete slice for `for`
// loops: Arrays iterate their elements, Ranges expand to Integers,
// Strings iterate Chars, Tuples iterate their elements.
func (in *Interp) materializeIterable(v value.Value) ([]value.Value, error) {
	switch x := v.(type) {
	case *value.Array:
		return x.Elements, nil
	case *value.Tuple:
		return x.Elements, nil
	case value.RangeVal:
		start, ok1 := x.Start.(value.Integer)
		end, ok2 := x.End.(value.Integer)
		if !ok1 || !ok2 {
			return nil, raise(errKindType, "range iteration requires Integer bounds")
		}
		var out []value.Value
		last := end.Value
		if x.Inclusive {
			last++
		}
		for i := start.Value; i < last; i++ {
			out = append(out, value.Integer{Value: i})
		}
		return out, nil
	case value.Str:
		var out []value.Value
		for _, r := range x.Value {
			out = append(out, value.Char{Value: r})
		}
		return out, nil
	default:
		return nil, raise(errKindType, "%s is not iterable", value.TypeName(v))
	}
}
