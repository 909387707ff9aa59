package interp

import "github.com/paiml/ruchy-sub014/internal/value"

// signal carries non-local control flow (break/continue/return/throw)
// up through Eval's recursive descent as a Go error rather than a
// panic/recover pair — it never escapes to a Ruchy-visible value.
type signal struct {
	kind  signalKind
	label string
	value value.Value
}

type signalKind int

const (
	sigBreak signalKind = iota
	sigContinue
	sigReturn
	sigThrow
)

func (s *signal) Error() string {
	switch s.kind {
	case sigBreak:
		return "break outside loop"
	case sigContinue:
		return "continue outside loop"
	case sigReturn:
		return "return outside function"
	default:
		return "uncaught throw"
	}
}

func breakSignal(label string, v value.Value) *signal {
	return &signal{kind: sigBreak, label: label, value: v}
}
func continueSignal(label string) *signal { return &signal{kind: sigContinue, label: label} }
func returnSignal(v value.Value) *signal  { return &signal{kind: sigReturn, value: v} }
func throwSignal(v value.Value) *signal   { return &signal{kind: sigThrow, value: v} }

func isSignal(err error, kind signalKind) (*signal, bool) {
	s, ok := err.(*signal)
	if !ok || s.kind != kind {
		return nil, false
	}
	return s, true
}
