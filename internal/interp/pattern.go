package interp

import (
	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// matchPattern reports whether v matches pat, binding any names pat
// introduces into env as a side effect (bindings are only committed
// when the overall match succeeds — callers hand in a fresh enclosed
// environment per match arm and keep it only on success).
func (in *Interp) matchPattern(pat ast.Pattern, v value.Value, env *value.Environment) bool {
	switch p := pat.(type) {
	case ast.WildcardPattern:
		return true
	case ast.IdentifierPattern:
		if p.Name == "_" {
			return true
		}
		env.Define(p.Name, v)
		return true
	case ast.LiteralPattern:
		lv, err := in.Eval(p.Value, env)
		if err != nil {
			return false
		}
		return value.Equal(lv, v)
	case ast.RangePattern:
		start, err1 := in.Eval(p.Start, env)
		end, err2 := in.Eval(p.End, env)
		if err1 != nil || err2 != nil {
			return false
		}
		return inRange(v, start, end, p.Inclusive)
	case ast.QualifiedNamePattern:
		ev, ok := v.(*value.EnumVal)
		if !ok {
			return false
		}
		name := p.Parts[len(p.Parts)-1]
		return ev.Variant == name
	case ast.TuplePattern:
		t, ok := v.(*value.Tuple)
		if !ok || len(t.Elements) != len(p.Elements) {
			return false
		}
		for i, sub := range p.Elements {
			if !in.matchPattern(sub, t.Elements[i], env) {
				return false
			}
		}
		return true
	case ast.ListPattern:
		return matchSeqPattern(in, p.Elements, listElements(v), env)
	case ast.StructPattern:
		return in.matchStructPattern(p, v, env)
	case ast.RestPattern:
		return true
	case ast.RestNamedPattern:
		env.Define(p.Name, v)
		return true
	case ast.OrPattern:
		for _, alt := range p.Alternatives {
			if in.matchPattern(alt, v, env) {
				return true
			}
		}
		return false
	case ast.TypedPattern:
		if value.TypeName(v) != p.TypeName {
			return false
		}
		if p.Name != "" && p.Name != "_" {
			env.Define(p.Name, v)
		}
		return true
	default:
		return false
	}
}

// listElements extracts the element slice of an Array value, or nil if
// v isn't one (the caller's subsequent length check then fails cleanly).
func listElements(v value.Value) []value.Value {
	if a, ok := v.(*value.Array); ok {
		return a.Elements
	}
	return nil
}

// matchSeqPattern matches a fixed/rest-tailed pattern list against a
// concrete element slice, used by both ListPattern (array) matching.
func matchSeqPattern(in *Interp, pats []ast.Pattern, elems []value.Value, env *value.Environment) bool {
	restIdx := -1
	for i, p := range pats {
		switch p.(type) {
		case ast.RestPattern, ast.RestNamedPattern:
			restIdx = i
		}
	}
	if restIdx == -1 {
		if len(pats) != len(elems) {
			return false
		}
		for i, p := range pats {
			if !in.matchPattern(p, elems[i], env) {
				return false
			}
		}
		return true
	}
	before := pats[:restIdx]
	after := pats[restIdx+1:]
	if len(elems) < len(before)+len(after) {
		return false
	}
	for i, p := range before {
		if !in.matchPattern(p, elems[i], env) {
			return false
		}
	}
	restElems := elems[len(before) : len(elems)-len(after)]
	if named, ok := pats[restIdx].(ast.RestNamedPattern); ok && named.Name != "" {
		env.Define(named.Name, &value.Array{Elements: append([]value.Value{}, restElems...)})
	}
	for i, p := range after {
		if !in.matchPattern(p, elems[len(elems)-len(after)+i], env) {
			return false
		}
	}
	return true
}

func (in *Interp) matchStructPattern(p ast.StructPattern, v value.Value, env *value.Environment) bool {
	var fields map[string]value.Value
	var typeName string
	switch sv := v.(type) {
	case *value.StructVal:
		fields, typeName = sv.Fields, sv.TypeName
	case *value.EnumVal:
		typeName = sv.Variant
		fields = map[string]value.Value{}
		for i, pv := range sv.Payload {
			fields[indexName(i)] = pv
		}
	case *value.Object:
		fields, typeName = sv.Fields, p.Name
	case *value.ObjectMut:
		fields, typeName = sv.Snapshot(), p.Name
	default:
		return false
	}
	if p.Name != "" && typeName != "" && p.Name != typeName {
		return false
	}
	matched := map[string]bool{}
	for _, fp := range p.Fields {
		fv, ok := fields[fp.Name]
		if !ok {
			return false
		}
		matched[fp.Name] = true
		if fp.SubPat == nil {
			env.Define(fp.Name, fv)
			continue
		}
		if !in.matchPattern(fp.SubPat, fv, env) {
			return false
		}
	}
	if !p.HasRest && len(matched) != len(fields) {
		return false
	}
	return true
}

func indexName(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return string(digits[i])
	}
	n := i
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return string(buf)
}

func inRange(v, start, end value.Value, inclusive bool) bool {
	cmp := func(a, b value.Value) (int, bool) {
		af, aok := asFloat(a)
		bf, bok := asFloat(b)
		if !aok || !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	lo, ok1 := cmp(v, start)
	if !ok1 || lo < 0 {
		return false
	}
	hi, ok2 := cmp(v, end)
	if !ok2 {
		return false
	}
	if inclusive {
		return hi <= 0
	}
	return hi < 0
}

func asFloat(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Integer:
		return float64(x.Value), true
	case value.Float:
		return x.Value, true
	case value.Char:
		return float64(x.Value), true
	case value.Byte:
		return float64(x.Value), true
	default:
		return 0, false
	}
}
