package interp

import (
	"sort"
	"strconv"
	"strings"

	"github.com/paiml/ruchy-sub014/internal/value"
)

// arrayMethod is the builtin method table for Array receivers. The
// second result reports whether method named a builtin at all; false
// lets evalMethodCall fall through to user impl blocks.
func arrayMethod(in *Interp, arr *value.Array, method string, args []value.Value) (value.Value, bool, error) {
	switch method {
	case "len":
		return value.Integer{Value: int64(len(arr.Elements))}, true, nil
	case "is_empty":
		return value.Bool{Value: len(arr.Elements) == 0}, true, nil
	case "push":
		arr.Elements = append(arr.Elements, args...)
		return value.NilValue, true, nil
	case "pop":
		if len(arr.Elements) == 0 {
			return &value.EnumVal{TypeName: "Option", Variant: "None"}, true, nil
		}
		last := arr.Elements[len(arr.Elements)-1]
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		return &value.EnumVal{TypeName: "Option", Variant: "Some", Payload: []value.Value{last}}, true, nil
	case "first":
		if len(arr.Elements) == 0 {
			return &value.EnumVal{TypeName: "Option", Variant: "None"}, true, nil
		}
		return &value.EnumVal{TypeName: "Option", Variant: "Some", Payload: []value.Value{arr.Elements[0]}}, true, nil
	case "last":
		if len(arr.Elements) == 0 {
			return &value.EnumVal{TypeName: "Option", Variant: "None"}, true, nil
		}
		return &value.EnumVal{TypeName: "Option", Variant: "Some", Payload: []value.Value{arr.Elements[len(arr.Elements)-1]}}, true, nil
	case "contains":
		if len(args) != 1 {
			return nil, true, raise(errKindArity, "contains expects 1 argument")
		}
		for _, e := range arr.Elements {
			if value.Equal(e, args[0]) {
				return value.Bool{Value: true}, true, nil
			}
		}
		return value.Bool{Value: false}, true, nil
	case "reverse":
		out := make([]value.Value, len(arr.Elements))
		for i, e := range arr.Elements {
			out[len(arr.Elements)-1-i] = e
		}
		return &value.Array{Elements: out}, true, nil
	case "join":
		sep := ""
		if len(args) > 0 {
			s, ok := args[0].(value.Str)
			if !ok {
				return nil, true, raise(errKindType, "join separator must be a String")
			}
			sep = s.Value
		}
		parts := make([]string, len(arr.Elements))
		for i, e := range arr.Elements {
			parts[i] = e.Inspect()
		}
		return value.Str{Value: strings.Join(parts, sep)}, true, nil
	case "sum":
		var isum int64
		var fsum float64
		isFloat := false
		for _, e := range arr.Elements {
			switch x := e.(type) {
			case value.Integer:
				isum += x.Value
				fsum += float64(x.Value)
			case value.Float:
				isFloat = true
				fsum += x.Value
			default:
				return nil, true, raise(errKindType, "sum requires numeric elements, found %s", value.TypeName(e))
			}
		}
		if isFloat {
			return value.Float{Value: fsum}, true, nil
		}
		return value.Integer{Value: isum}, true, nil
	case "sorted":
		out := append([]value.Value{}, arr.Elements...)
		var sortErr error
		sort.SliceStable(out, func(i, j int) bool {
			af, aok := asFloat(out[i])
			bf, bok := asFloat(out[j])
			if aok && bok {
				return af < bf
			}
			as, aok2 := out[i].(value.Str)
			bs, bok2 := out[j].(value.Str)
			if aok2 && bok2 {
				return as.Value < bs.Value
			}
			if sortErr == nil {
				sortErr = raise(errKindType, "sorted requires comparable elements")
			}
			return false
		})
		if sortErr != nil {
			return nil, true, sortErr
		}
		return &value.Array{Elements: out}, true, nil
	case "map":
		if len(args) != 1 {
			return nil, true, raise(errKindArity, "map expects 1 argument")
		}
		out := make([]value.Value, len(arr.Elements))
		for i, e := range arr.Elements {
			v, err := in.applyCallable(args[0], []value.Value{e})
			if err != nil {
				return nil, true, err
			}
			out[i] = v
		}
		return &value.Array{Elements: out}, true, nil
	case "filter":
		if len(args) != 1 {
			return nil, true, raise(errKindArity, "filter expects 1 argument")
		}
		var out []value.Value
		for _, e := range arr.Elements {
			keep, err := in.applyCallable(args[0], []value.Value{e})
			if err != nil {
				return nil, true, err
			}
			if value.Truthy(keep) {
				out = append(out, e)
			}
		}
		return &value.Array{Elements: out}, true, nil
	case "reduce":
		if len(args) != 2 {
			return nil, true, raise(errKindArity, "reduce expects an initial value and a function")
		}
		acc := args[0]
		for _, e := range arr.Elements {
			v, err := in.applyCallable(args[1], []value.Value{acc, e})
			if err != nil {
				return nil, true, err
			}
			acc = v
		}
		return acc, true, nil
	case "each":
		if len(args) != 1 {
			return nil, true, raise(errKindArity, "each expects 1 argument")
		}
		for _, e := range arr.Elements {
			if _, err := in.applyCallable(args[0], []value.Value{e}); err != nil {
				return nil, true, err
			}
		}
		return value.NilValue, true, nil
	}
	return nil, false, nil
}

// stringMethod is the builtin method table for String receivers.
func stringMethod(s value.Str, method string, args []value.Value) (value.Value, bool, error) {
	switch method {
	case "len":
		return value.Integer{Value: int64(len([]rune(s.Value)))}, true, nil
	case "is_empty":
		return value.Bool{Value: s.Value == ""}, true, nil
	case "to_upper":
		return value.Str{Value: strings.ToUpper(s.Value)}, true, nil
	case "to_lower":
		return value.Str{Value: strings.ToLower(s.Value)}, true, nil
	case "trim":
		return value.Str{Value: strings.TrimSpace(s.Value)}, true, nil
	case "contains":
		sub, ok := oneStringArg(args)
		if !ok {
			return nil, true, raise(errKindType, "contains expects a String argument")
		}
		return value.Bool{Value: strings.Contains(s.Value, sub)}, true, nil
	case "starts_with":
		sub, ok := oneStringArg(args)
		if !ok {
			return nil, true, raise(errKindType, "starts_with expects a String argument")
		}
		return value.Bool{Value: strings.HasPrefix(s.Value, sub)}, true, nil
	case "ends_with":
		sub, ok := oneStringArg(args)
		if !ok {
			return nil, true, raise(errKindType, "ends_with expects a String argument")
		}
		return value.Bool{Value: strings.HasSuffix(s.Value, sub)}, true, nil
	case "split":
		sep, ok := oneStringArg(args)
		if !ok {
			return nil, true, raise(errKindType, "split expects a String argument")
		}
		parts := strings.Split(s.Value, sep)
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.Str{Value: p}
		}
		return &value.Array{Elements: out}, true, nil
	case "replace":
		if len(args) != 2 {
			return nil, true, raise(errKindArity, "replace expects 2 arguments")
		}
		from, ok1 := args[0].(value.Str)
		to, ok2 := args[1].(value.Str)
		if !ok1 || !ok2 {
			return nil, true, raise(errKindType, "replace expects String arguments")
		}
		return value.Str{Value: strings.ReplaceAll(s.Value, from.Value, to.Value)}, true, nil
	case "chars":
		var out []value.Value
		for _, r := range s.Value {
			out = append(out, value.Char{Value: r})
		}
		return &value.Array{Elements: out}, true, nil
	case "parse_int":
		n, err := strconv.ParseInt(strings.TrimSpace(s.Value), 10, 64)
		if err != nil {
			return &value.EnumVal{TypeName: "Result", Variant: "Err",
				Payload: []value.Value{value.Str{Value: "invalid integer: " + s.Value}}}, true, nil
		}
		return &value.EnumVal{TypeName: "Result", Variant: "Ok",
			Payload: []value.Value{value.Integer{Value: n}}}, true, nil
	case "parse_float":
		f, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
		if err != nil {
			return &value.EnumVal{TypeName: "Result", Variant: "Err",
				Payload: []value.Value{value.Str{Value: "invalid float: " + s.Value}}}, true, nil
		}
		return &value.EnumVal{TypeName: "Result", Variant: "Ok",
			Payload: []value.Value{value.Float{Value: f}}}, true, nil
	case "to_string":
		return s, true, nil
	}
	return nil, false, nil
}

func oneStringArg(args []value.Value) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	s, ok := args[0].(value.Str)
	return s.Value, ok
}

// enumMethod covers the Option/Result accessor methods every enum value
// responds to; non-Option/Result enums still get is_* checks by variant.
func enumMethod(e *value.EnumVal, method string, args []value.Value) (value.Value, bool, error) {
	payloadOrNil := func() value.Value {
		if len(e.Payload) > 0 {
			return e.Payload[0]
		}
		return value.NilValue
	}
	switch method {
	case "is_ok":
		return value.Bool{Value: e.Variant == "Ok"}, true, nil
	case "is_err":
		return value.Bool{Value: e.Variant == "Err"}, true, nil
	case "is_some":
		return value.Bool{Value: e.Variant == "Some"}, true, nil
	case "is_none":
		return value.Bool{Value: e.Variant == "None"}, true, nil
	case "unwrap":
		switch e.Variant {
		case "Ok", "Some":
			return payloadOrNil(), true, nil
		}
		return nil, true, raise(errKindRuntime, "called unwrap on %s", e.Inspect())
	case "unwrap_or":
		if len(args) != 1 {
			return nil, true, raise(errKindArity, "unwrap_or expects 1 argument")
		}
		switch e.Variant {
		case "Ok", "Some":
			return payloadOrNil(), true, nil
		}
		return args[0], true, nil
	case "expect":
		switch e.Variant {
		case "Ok", "Some":
			return payloadOrNil(), true, nil
		}
		msg := "expect failed"
		if len(args) > 0 {
			if s, ok := args[0].(value.Str); ok {
				msg = s.Value
			}
		}
		return nil, true, raise(errKindRuntime, "%s", msg)
	}
	return nil, false, nil
}
