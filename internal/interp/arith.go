package interp

import (
	"math"

	"github.com/paiml/ruchy-sub014/internal/value"
)

// numPair coerces two numeric values for a binary arithmetic/comparison
// op: Integer op Integer stays Integer; any Float operand
// promotes both sides to Float; anything else is a type error left to
// the caller.
func numPair(l, r value.Value) (li int64, ri int64, lf, rf float64, isFloat, ok bool) {
	switch lv := l.(type) {
	case value.Integer:
		switch rv := r.(type) {
		case value.Integer:
			return lv.Value, rv.Value, 0, 0, false, true
		case value.Float:
			return 0, 0, float64(lv.Value), rv.Value, true, true
		}
	case value.Float:
		switch rv := r.(type) {
		case value.Integer:
			return 0, 0, lv.Value, float64(rv.Value), true, true
		case value.Float:
			return 0, 0, lv.Value, rv.Value, true, true
		}
	}
	return 0, 0, 0, 0, false, false
}

func evalArith(op string, l, r value.Value) (value.Value, error) {
	li, ri, lf, rf, isFloat, ok := numPair(l, r)
	if !ok {
		if s, sok := l.(value.Str); sok && op == "+" {
			if rs, rok := r.(value.Str); rok {
				return value.Str{Value: s.Value + rs.Value}, nil
			}
		}
		if a, aok := l.(*value.Array); aok && op == "+" {
			if b, bok := r.(*value.Array); bok {
				out := make([]value.Value, 0, len(a.Elements)+len(b.Elements))
				out = append(out, a.Elements...)
				out = append(out, b.Elements...)
				return &value.Array{Elements: out}, nil
			}
		}
		return nil, raise(errKindType, "cannot apply %q to %s and %s", op, value.TypeName(l), value.TypeName(r))
	}
	if isFloat {
		switch op {
		case "+":
			return value.Float{Value: lf + rf}, nil
		case "-":
			return value.Float{Value: lf - rf}, nil
		case "*":
			return value.Float{Value: lf * rf}, nil
		case "/":
			if rf == 0 {
				return nil, raise(errKindArithmetic, "division by zero")
			}
			return value.Float{Value: lf / rf}, nil
		case "%":
			if rf == 0 {
				return nil, raise(errKindArithmetic, "division by zero")
			}
			return value.Float{Value: math.Mod(lf, rf)}, nil
		case "**":
			return value.Float{Value: math.Pow(lf, rf)}, nil
		}
	}
	switch op {
	case "+":
		return value.Integer{Value: li + ri}, nil
	case "-":
		return value.Integer{Value: li - ri}, nil
	case "*":
		return value.Integer{Value: li * ri}, nil
	case "/":
		if ri == 0 {
			return nil, raise(errKindArithmetic, "division by zero")
		}
		return value.Integer{Value: li / ri}, nil
	case "%":
		if ri == 0 {
			return nil, raise(errKindArithmetic, "division by zero")
		}
		return value.Integer{Value: li % ri}, nil
	case "**":
		return value.Integer{Value: int64(math.Pow(float64(li), float64(ri)))}, nil
	case "&":
		return value.Integer{Value: li & ri}, nil
	case "|":
		return value.Integer{Value: li | ri}, nil
	case "^":
		return value.Integer{Value: li ^ ri}, nil
	case "<<":
		return value.Integer{Value: li << uint(ri)}, nil
	case ">>":
		return value.Integer{Value: li >> uint(ri)}, nil
	}
	return nil, raise(errKindType, "unknown operator %q", op)
}

func evalCompare(op string, l, r value.Value) (value.Value, error) {
	li, ri, lf, rf, isFloat, ok := numPair(l, r)
	if ok {
		var cmp int
		if isFloat {
			switch {
			case lf < rf:
				cmp = -1
			case lf > rf:
				cmp = 1
			}
		} else {
			switch {
			case li < ri:
				cmp = -1
			case li > ri:
				cmp = 1
			}
		}
		return value.Bool{Value: cmpResult(op, cmp)}, nil
	}
	if ls, lok := l.(value.Str); lok {
		if rs, rok := r.(value.Str); rok {
			var cmp int
			switch {
			case ls.Value < rs.Value:
				cmp = -1
			case ls.Value > rs.Value:
				cmp = 1
			}
			return value.Bool{Value: cmpResult(op, cmp)}, nil
		}
	}
	return nil, raise(errKindType, "cannot compare %s and %s", value.TypeName(l), value.TypeName(r))
}

func cmpResult(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

// Arith and Compare expose the evaluator's numeric semantics to the
// direct-threaded engine, so both execution paths share one definition
// and stay value-identical for every expression the engine accepts.
func Arith(op string, l, r value.Value) (value.Value, error) { return evalArith(op, l, r) }

func Compare(op string, l, r value.Value) (value.Value, error) { return evalCompare(op, l, r) }
