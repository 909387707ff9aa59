// Package vm is the direct-threaded accelerator for hot numeric
// expressions: an opt-in subset of the AST is lowered to a flat stream
// of handler/operand records and executed by a single dispatch loop
// that invokes each record's handler function pointer — no central
// opcode switch. Anything the compiler does not accept falls back to
// the tree-walk evaluator; for every expression the engine does
// accept, it must produce the same value the tree-walk would.
package vm

import "github.com/paiml/ruchy-sub014/internal/value"

// Handler executes one instruction against the machine. It returns the
// absolute jump target, or advance to fall through to the next record.
type Handler func(m *Machine, operand int) (int, error)

// advance is the Handler result meaning "no jump, continue in order".
const advance = -1

// Instr is one compiled instruction: the handler to invoke and its
// immediate operand (a constants-pool index, a names-table index, or a
// jump target, depending on the handler).
type Instr struct {
	Op      Handler
	Operand int
}

// Chunk is a compiled expression: the instruction stream plus the
// constants pool and variable-name table it indexes into. A chunk is
// immutable after compilation and safe to re-run.
type Chunk struct {
	Code      []Instr
	Constants []value.Value
	Names     []string
}

func newChunk() *Chunk {
	return &Chunk{Code: make([]Instr, 0, 32)}
}

func (c *Chunk) emit(op Handler, operand int) int {
	c.Code = append(c.Code, Instr{Op: op, Operand: operand})
	return len(c.Code) - 1
}

// addConstant interns v and returns its pool index.
func (c *Chunk) addConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// addName interns a variable name for LoadVar and returns its index.
func (c *Chunk) addName(name string) int {
	for i, n := range c.Names {
		if n == name {
			return i
		}
	}
	c.Names = append(c.Names, name)
	return len(c.Names) - 1
}

// patch rewrites the operand of a previously emitted jump.
func (c *Chunk) patch(at, target int) {
	c.Code[at].Operand = target
}
