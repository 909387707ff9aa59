package codegen

// prelude is the runtime library linked into every generated program:
// dynamic value helpers mirroring the interpreter's semantics
// (truthiness, numeric promotion, division-by-zero), non-local control
// sentinels for return/break/continue/throw, and the mailbox actor
// runtime that actor and async forms lower to. It is emitted at the
// top of the generated source so the output is a single, dependency-
// free Go file.
const prelude = `
type rReturn struct{ v any }
type rBreak struct {
	label string
	v     any
}
type rContinue struct{ label string }
type rThrown struct{ v any }

func rFail(msg string) any { panic(rThrown{map[string]any{"type": "RuntimeError", "message": msg}}) }

func rTruthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case nil:
		return false
	default:
		return true
	}
}

func rNums(l, r any) (int64, int64, float64, float64, bool, bool) {
	switch lv := l.(type) {
	case int64:
		switch rv := r.(type) {
		case int64:
			return lv, rv, 0, 0, false, true
		case float64:
			return 0, 0, float64(lv), rv, true, true
		}
	case float64:
		switch rv := r.(type) {
		case int64:
			return 0, 0, lv, float64(rv), true, true
		case float64:
			return 0, 0, lv, rv, true, true
		}
	}
	return 0, 0, 0, 0, false, false
}

func rAdd(l, r any) any {
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			return ls + rs
		}
	}
	if la, ok := l.([]any); ok {
		if ra, ok := r.([]any); ok {
			return append(append([]any{}, la...), ra...)
		}
	}
	li, ri, lf, rf, isF, ok := rNums(l, r)
	if !ok {
		return rFail("cannot add operands")
	}
	if isF {
		return lf + rf
	}
	return li + ri
}

func rSub(l, r any) any {
	li, ri, lf, rf, isF, ok := rNums(l, r)
	if !ok {
		return rFail("cannot subtract operands")
	}
	if isF {
		return lf - rf
	}
	return li - ri
}

func rMul(l, r any) any {
	li, ri, lf, rf, isF, ok := rNums(l, r)
	if !ok {
		return rFail("cannot multiply operands")
	}
	if isF {
		return lf * rf
	}
	return li * ri
}

func rDiv(l, r any) any {
	li, ri, lf, rf, isF, ok := rNums(l, r)
	if !ok {
		return rFail("cannot divide operands")
	}
	if isF {
		if rf == 0 {
			return rFail("division by zero")
		}
		return lf / rf
	}
	if ri == 0 {
		return rFail("division by zero")
	}
	return li / ri
}

func rMod(l, r any) any {
	li, ri, lf, rf, isF, ok := rNums(l, r)
	if !ok {
		return rFail("cannot take remainder of operands")
	}
	if isF {
		if rf == 0 {
			return rFail("division by zero")
		}
		return math.Mod(lf, rf)
	}
	if ri == 0 {
		return rFail("division by zero")
	}
	return li % ri
}

func rPow(l, r any) any {
	li, ri, lf, rf, isF, ok := rNums(l, r)
	if !ok {
		return rFail("cannot exponentiate operands")
	}
	if isF {
		return math.Pow(lf, rf)
	}
	return int64(math.Pow(float64(li), float64(ri)))
}

func rNeg(v any) any {
	switch x := v.(type) {
	case int64:
		return -x
	case float64:
		return -x
	}
	return rFail("cannot negate operand")
}

func rEq(l, r any) bool { return reflect.DeepEqual(l, r) }

func rCmp(op string, l, r any) bool {
	li, ri, lf, rf, isF, ok := rNums(l, r)
	var c int
	if ok {
		if isF {
			switch {
			case lf < rf:
				c = -1
			case lf > rf:
				c = 1
			}
		} else {
			switch {
			case li < ri:
				c = -1
			case li > ri:
				c = 1
			}
		}
	} else if ls, lok := l.(string); lok {
		rs, rok := r.(string)
		if !rok {
			rFail("cannot compare operands")
		}
		c = strings.Compare(ls, rs)
	} else {
		rFail("cannot compare operands")
	}
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	default:
		return c >= 0
	}
}

func rBit(op string, l, r any) any {
	li, lok := l.(int64)
	ri, rok := r.(int64)
	if !lok || !rok {
		return rFail("bitwise operator requires integers")
	}
	switch op {
	case "&":
		return li & ri
	case "|":
		return li | ri
	case "^":
		return li ^ ri
	case "<<":
		return li << uint(ri)
	default:
		return li >> uint(ri)
	}
}

type rRange struct {
	start, end int64
	inclusive  bool
}

func rMakeRange(start, end any, inclusive bool) any {
	s, ok1 := start.(int64)
	e, ok2 := end.(int64)
	if !ok1 || !ok2 {
		return rFail("range bounds must be integers")
	}
	return rRange{start: s, end: e, inclusive: inclusive}
}

func rIter(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case rRange:
		last := x.end
		if x.inclusive {
			last++
		}
		var out []any
		for i := x.start; i < last; i++ {
			out = append(out, i)
		}
		return out
	case string:
		var out []any
		for _, r := range x {
			out = append(out, string(r))
		}
		return out
	}
	rFail("cannot iterate over value")
	return nil
}

func rIndex(recv, idx any) any {
	switch x := recv.(type) {
	case []any:
		i, ok := idx.(int64)
		if !ok || i < 0 || int(i) >= len(x) {
			return rFail("index out of bounds")
		}
		return x[i]
	case map[string]any:
		k, ok := idx.(string)
		if !ok {
			return rFail("object index must be a string")
		}
		return x[k]
	case string:
		i, ok := idx.(int64)
		runes := []rune(x)
		if !ok || i < 0 || int(i) >= len(runes) {
			return rFail("index out of bounds")
		}
		return string(runes[i])
	}
	return rFail("cannot index value")
}

func rSetIndex(recv, idx, v any) {
	arr, ok := recv.([]any)
	if !ok {
		rFail("cannot index-assign value")
		return
	}
	i, ok := idx.(int64)
	if !ok || i < 0 || int(i) >= len(arr) {
		rFail("index out of bounds")
		return
	}
	arr[i] = v
}

type rStruct struct {
	name   string
	fields map[string]any
}

type rEnum struct {
	typeName string
	variant  string
	payload  []any
}

func rField(recv any, name string) any {
	switch x := recv.(type) {
	case map[string]any:
		if v, ok := x[name]; ok {
			return v
		}
	case *rStruct:
		if v, ok := x.fields[name]; ok {
			return v
		}
	case *rActor:
		x.mu.Lock()
		v, ok := x.fields[name]
		x.mu.Unlock()
		if ok {
			return v
		}
	}
	return rFail("no field " + name)
}

func rSetField(recv any, name string, v any) {
	switch x := recv.(type) {
	case map[string]any:
		x[name] = v
	case *rStruct:
		x.fields[name] = v
	case *rActor:
		x.mu.Lock()
		x.fields[name] = v
		x.mu.Unlock()
	default:
		rFail("cannot assign field " + name)
	}
}

func rLen(v any) any {
	switch x := v.(type) {
	case []any:
		return int64(len(x))
	case string:
		return int64(len([]rune(x)))
	case map[string]any:
		return int64(len(x))
	}
	return rFail("value has no length")
}

func rInspect(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return x
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = rInspect(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *rEnum:
		if len(x.payload) == 0 {
			return x.variant
		}
		parts := make([]string, len(x.payload))
		for i, e := range x.payload {
			parts[i] = rInspect(e)
		}
		return x.variant + "(" + strings.Join(parts, ", ") + ")"
	case *rStruct:
		keys := make([]string, 0, len(x.fields))
		for k := range x.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + rInspect(x.fields[k])
		}
		return x.name + " { " + strings.Join(parts, ", ") + " }"
	default:
		return fmt.Sprint(v)
	}
}

func rPrint(args ...any) any {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = rInspect(a)
	}
	fmt.Println(strings.Join(parts, " "))
	return nil
}

func rMethod(recv any, name string, args ...any) any {
	switch x := recv.(type) {
	case []any:
		switch name {
		case "len":
			return int64(len(x))
		case "contains":
			for _, e := range x {
				if rEq(e, args[0]) {
					return true
				}
			}
			return false
		case "join":
			sep := ""
			if len(args) > 0 {
				sep, _ = args[0].(string)
			}
			parts := make([]string, len(x))
			for i, e := range x {
				parts[i] = rInspect(e)
			}
			return strings.Join(parts, sep)
		case "map":
			fn := args[0].(func(...any) any)
			out := make([]any, len(x))
			for i, e := range x {
				out[i] = fn(e)
			}
			return out
		case "filter":
			fn := args[0].(func(...any) any)
			var out []any
			for _, e := range x {
				if rTruthy(fn(e)) {
					out = append(out, e)
				}
			}
			return out
		}
	case string:
		switch name {
		case "len":
			return int64(len([]rune(x)))
		case "to_upper":
			return strings.ToUpper(x)
		case "to_lower":
			return strings.ToLower(x)
		case "trim":
			return strings.TrimSpace(x)
		case "contains":
			s, _ := args[0].(string)
			return strings.Contains(x, s)
		}
	case *rEnum:
		switch name {
		case "is_ok":
			return x.variant == "Ok"
		case "is_err":
			return x.variant == "Err"
		case "is_some":
			return x.variant == "Some"
		case "is_none":
			return x.variant == "None"
		case "unwrap":
			if x.variant == "Ok" || x.variant == "Some" {
				if len(x.payload) > 0 {
					return x.payload[0]
				}
				return nil
			}
			return rFail("called unwrap on " + rInspect(x))
		}
	case *rActor:
		switch name {
		case "send":
			msg, _ := args[0].(string)
			rActorSend(x, msg, args[1:])
			return nil
		case "ask":
			msg, _ := args[0].(string)
			return rActorAsk(x, msg, args[1:])
		case "stop":
			rActorStop(x)
			return nil
		}
	}
	return rFail("no method " + name)
}

type rMessage struct {
	name string
	args []any
}

type rActor struct {
	mu       sync.Mutex
	fields   map[string]any
	handlers map[string]func(self *rActor, args ...any) any
	onStop   func(self *rActor)
	mailbox  chan rMessage
	async    bool
	wg       sync.WaitGroup
}

func rSpawn(fields map[string]any, handlers map[string]func(self *rActor, args ...any) any, async bool) *rActor {
	a := &rActor{fields: fields, handlers: handlers, async: async}
	if async {
		a.mailbox = make(chan rMessage, 64)
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			for m := range a.mailbox {
				if h, ok := a.handlers[m.name]; ok {
					h(a, m.args...)
				}
			}
		}()
	}
	return a
}

func rActorSend(a *rActor, name string, args []any) {
	if a.async {
		a.mailbox <- rMessage{name: name, args: args}
		return
	}
	if h, ok := a.handlers[name]; ok {
		h(a, args...)
		return
	}
	rFail("no handler for message " + name)
}

func rActorAsk(a *rActor, name string, args []any) any {
	if a.async {
		return rFail("ask is not supported on async actors")
	}
	if h, ok := a.handlers[name]; ok {
		return h(a, args...)
	}
	return rFail("no handler for message " + name)
}

func rActorStop(a *rActor) {
	if a.async {
		close(a.mailbox)
		a.wg.Wait()
	}
	if a.onStop != nil {
		a.onStop(a)
	}
}

func rEnumIs(v any, variant string) bool {
	e, ok := v.(*rEnum)
	return ok && e.variant == variant
}

func rEnumPayload(v any, i int) any {
	e, ok := v.(*rEnum)
	if !ok || i >= len(e.payload) {
		return rFail("enum payload out of range")
	}
	return e.payload[i]
}

func rInRange(v, start, end any, inclusive bool) bool {
	toF := func(x any) (float64, bool) {
		switch n := x.(type) {
		case int64:
			return float64(n), true
		case float64:
			return n, true
		}
		return 0, false
	}
	vf, ok1 := toF(v)
	sf, ok2 := toF(start)
	ef, ok3 := toF(end)
	if !ok1 || !ok2 || !ok3 {
		return false
	}
	if vf < sf {
		return false
	}
	if inclusive {
		return vf <= ef
	}
	return vf < ef
}

var _ = reflect.DeepEqual
var _ = sort.Strings
var _ = math.Mod
`
