package vm

import (
	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// Compiler lowers the accepted AST subset — literals, variable loads,
// arithmetic and comparison, short-circuit logic, if/ternary, blocks
// of expression statements, and return — into a Chunk. Everything else
// makes Compile report false so the caller falls back to tree-walk.
type Compiler struct {
	chunk *Chunk
	ok    bool
}

// Compile lowers expr. The bool result reports whether the whole
// expression tree was in the accepted subset; on false the partial
// chunk must be discarded.
func Compile(expr ast.Expression) (*Chunk, bool) {
	c := &Compiler{chunk: newChunk(), ok: true}
	c.compile(expr)
	if !c.ok {
		return nil, false
	}
	return c.chunk, true
}

// CompileProgramStatement accepts the statement forms a top-level
// driver feeds through the engine: plain expression statements of the
// supported subset.
func CompileProgramStatement(stmt ast.Statement) (*Chunk, bool) {
	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		return nil, false
	}
	return Compile(es.Expr)
}

func (c *Compiler) unsupported() {
	c.ok = false
}

func (c *Compiler) compile(expr ast.Expression) {
	if !c.ok {
		return
	}
	switch n := expr.(type) {
	case *ast.IntLiteral:
		c.chunk.emit(opConst, c.chunk.addConstant(value.Integer{Value: n.Value}))
	case *ast.FloatLiteral:
		c.chunk.emit(opConst, c.chunk.addConstant(value.Float{Value: n.Value}))
	case *ast.BoolLiteral:
		c.chunk.emit(opConst, c.chunk.addConstant(value.Bool{Value: n.Value}))
	case *ast.NullLiteral, *ast.UnitLiteral:
		c.chunk.emit(opConst, c.chunk.addConstant(value.NilValue))
	case *ast.Identifier:
		c.chunk.emit(opLoadVar, c.chunk.addName(n.Name))
	case *ast.UnaryExpr:
		c.compileUnary(n)
	case *ast.BinaryExpr:
		c.compileBinary(n)
	case *ast.IfExpr:
		c.compileIf(n.Condition, blockAsExpr(n.Then), n.Else)
	case *ast.TernaryExpr:
		c.compileIf(n.Condition, n.Then, n.Else)
	case *ast.BlockExpr:
		c.compileBlock(n)
	case *ast.ReturnExpr:
		if n.Value != nil {
			c.compile(n.Value)
		} else {
			c.chunk.emit(opConst, c.chunk.addConstant(value.NilValue))
		}
		c.chunk.emit(opReturn, 0)
	default:
		c.unsupported()
	}
}

func (c *Compiler) compileUnary(n *ast.UnaryExpr) {
	c.compile(n.Operand)
	switch n.Op {
	case "-":
		c.chunk.emit(opNeg, 0)
	case "!":
		c.chunk.emit(opNot, 0)
	case "~":
		c.chunk.emit(opBitNot, 0)
	default:
		c.unsupported()
	}
}

func (c *Compiler) compileBinary(n *ast.BinaryExpr) {
	switch n.Op {
	case "&&":
		// L && R: if L is falsy the result is false without touching R.
		c.compile(n.Left)
		jFalse := c.chunk.emit(opJumpIfFalse, 0)
		c.compile(n.Right)
		c.chunk.emit(opTruthy, 0)
		jEnd := c.chunk.emit(opJump, 0)
		c.chunk.patch(jFalse, len(c.chunk.Code))
		c.chunk.emit(opConst, c.chunk.addConstant(value.Bool{Value: false}))
		c.chunk.patch(jEnd, len(c.chunk.Code))
		return
	case "||":
		// L || R: a truthy L short-circuits to true.
		c.compile(n.Left)
		jFalse := c.chunk.emit(opJumpIfFalse, 0)
		c.chunk.emit(opConst, c.chunk.addConstant(value.Bool{Value: true}))
		jEnd := c.chunk.emit(opJump, 0)
		c.chunk.patch(jFalse, len(c.chunk.Code))
		c.compile(n.Right)
		c.chunk.emit(opTruthy, 0)
		c.chunk.patch(jEnd, len(c.chunk.Code))
		return
	}
	c.compile(n.Left)
	c.compile(n.Right)
	switch n.Op {
	case "+", "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>":
		c.chunk.emit(makeArith(n.Op), 0)
	case "<", "<=", ">", ">=":
		c.chunk.emit(makeCompare(n.Op), 0)
	case "==":
		c.chunk.emit(opEq, 0)
	case "!=":
		c.chunk.emit(opNe, 0)
	default:
		c.unsupported()
	}
}

// compileIf lowers both branch shapes (if/else and ternary). A missing
// else pushes Nil, matching the tree-walk.
func (c *Compiler) compileIf(cond, then, els ast.Expression) {
	c.compile(cond)
	jElse := c.chunk.emit(opJumpIfFalse, 0)
	c.compile(then)
	jEnd := c.chunk.emit(opJump, 0)
	c.chunk.patch(jElse, len(c.chunk.Code))
	if els != nil {
		c.compile(els)
	} else {
		c.chunk.emit(opConst, c.chunk.addConstant(value.NilValue))
	}
	c.chunk.patch(jEnd, len(c.chunk.Code))
}

// compileBlock accepts blocks of pure expression statements: each
// non-final value is popped, the last is the block's value. Blocks
// containing declarations (let, fun, ...) are out of the subset since
// they would need scope pushes the engine does not model.
func (c *Compiler) compileBlock(n *ast.BlockExpr) {
	if n == nil {
		c.unsupported()
		return
	}
	if len(n.Statements) == 0 {
		c.chunk.emit(opConst, c.chunk.addConstant(value.NilValue))
		return
	}
	for i, stmt := range n.Statements {
		es, ok := stmt.(*ast.ExpressionStatement)
		if !ok {
			c.unsupported()
			return
		}
		c.compile(es.Expr)
		if i < len(n.Statements)-1 {
			c.chunk.emit(opPop, 0)
		}
	}
}

func blockAsExpr(b *ast.BlockExpr) ast.Expression {
	return b
}
