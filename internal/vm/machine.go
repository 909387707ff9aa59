package vm

import (
	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// Machine runs a compiled chunk. The operand stack is owned by one
// interpreter instance and reused across runs; the environment is only
// touched through loadVar, which delegates to the tree-walk scope
// chain.
type Machine struct {
	stack []value.Value
	chunk *Chunk
	env   *value.Environment

	done   bool
	result value.Value
}

// NewMachine creates a machine with a preallocated operand stack.
func NewMachine() *Machine {
	return &Machine{stack: make([]value.Value, 0, 64)}
}

// Run executes chunk against env and returns the expression's value:
// an explicit return's operand if one fired, otherwise the value left
// on top of the stack (Nil for an empty stack).
func (m *Machine) Run(chunk *Chunk, env *value.Environment) (value.Value, error) {
	m.stack = m.stack[:0]
	m.chunk = chunk
	m.env = env
	m.done = false
	m.result = nil

	pc := 0
	for pc < len(chunk.Code) && !m.done {
		ins := chunk.Code[pc]
		next, err := ins.Op(m, ins.Operand)
		if err != nil {
			return nil, err
		}
		if next == advance {
			pc++
		} else {
			pc = next
		}
	}
	if m.done {
		return m.result, nil
	}
	if len(m.stack) == 0 {
		return value.NilValue, nil
	}
	return m.pop(), nil
}

func (m *Machine) push(v value.Value) { m.stack = append(m.stack, v) }

func (m *Machine) pop() value.Value {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

// Instruction handlers. Each is a plain function value stored in the
// instruction stream; the dispatch loop calls straight through the
// pointer.

func opConst(m *Machine, operand int) (int, error) {
	m.push(m.chunk.Constants[operand])
	return advance, nil
}

func opLoadVar(m *Machine, operand int) (int, error) {
	name := m.chunk.Names[operand]
	v, ok := m.env.Get(name)
	if !ok {
		return 0, interp.RuntimeErrorf("undefined name %q", name)
	}
	m.push(v)
	return advance, nil
}

// makeArith builds the handler for one binary arithmetic operator,
// delegating to the evaluator's shared numeric semantics.
func makeArith(op string) Handler {
	return func(m *Machine, _ int) (int, error) {
		r := m.pop()
		l := m.pop()
		v, err := interp.Arith(op, l, r)
		if err != nil {
			return 0, err
		}
		m.push(v)
		return advance, nil
	}
}

func makeCompare(op string) Handler {
	return func(m *Machine, _ int) (int, error) {
		r := m.pop()
		l := m.pop()
		v, err := interp.Compare(op, l, r)
		if err != nil {
			return 0, err
		}
		m.push(v)
		return advance, nil
	}
}

func opEq(m *Machine, _ int) (int, error) {
	r := m.pop()
	l := m.pop()
	m.push(value.Bool{Value: value.Equal(l, r)})
	return advance, nil
}

func opNe(m *Machine, _ int) (int, error) {
	r := m.pop()
	l := m.pop()
	m.push(value.Bool{Value: !value.Equal(l, r)})
	return advance, nil
}

func opNeg(m *Machine, _ int) (int, error) {
	switch x := m.pop().(type) {
	case value.Integer:
		m.push(value.Integer{Value: -x.Value})
	case value.Float:
		m.push(value.Float{Value: -x.Value})
	default:
		return 0, interp.TypeErrorf("cannot negate %s", value.TypeName(x))
	}
	return advance, nil
}

func opNot(m *Machine, _ int) (int, error) {
	m.push(value.Bool{Value: !value.Truthy(m.pop())})
	return advance, nil
}

func opBitNot(m *Machine, _ int) (int, error) {
	x, ok := m.pop().(value.Integer)
	if !ok {
		return 0, interp.TypeErrorf("cannot bitwise-not non-Integer")
	}
	m.push(value.Integer{Value: ^x.Value})
	return advance, nil
}

// opTruthy normalizes the top of stack to its Bool truthiness, used by
// the jump-lowered && and || to match the tree-walk's result values.
func opTruthy(m *Machine, _ int) (int, error) {
	m.push(value.Bool{Value: value.Truthy(m.pop())})
	return advance, nil
}

func opJump(_ *Machine, operand int) (int, error) {
	return operand, nil
}

func opJumpIfFalse(m *Machine, operand int) (int, error) {
	if !value.Truthy(m.pop()) {
		return operand, nil
	}
	return advance, nil
}

func opPop(m *Machine, _ int) (int, error) {
	m.pop()
	return advance, nil
}

func opReturn(m *Machine, _ int) (int, error) {
	m.done = true
	if len(m.stack) > 0 {
		m.result = m.pop()
	} else {
		m.result = value.NilValue
	}
	return advance, nil
}
