package ast

// ExpressionStatement wraps a bare expression used as a statement.
type ExpressionStatement struct {
	Base
	Expr Expression
}

func (*ExpressionStatement) statementNode() {}

// BlockExpr is a `{ ... }` sequence of statements; its value is the
// value of its final statement, or Nil if it has no statements.
type BlockExpr struct {
	Base
	Statements []Statement
}

func (*BlockExpr) expressionNode() {}

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	Base
	Op    string
	Left  Expression
	Right Expression
}

func (*BinaryExpr) expressionNode() {}

// UnaryExpr is `op operand` (prefix `-`, `!`, `~`).
type UnaryExpr struct {
	Base
	Op      string
	Operand Expression
}

func (*UnaryExpr) expressionNode() {}

// IncDecExpr is `++x`/`x++`/`--x`/`x--`.
type IncDecExpr struct {
	Base
	Op     string
	Target Expression
	Prefix bool
}

func (*IncDecExpr) expressionNode() {}

// CallExpr is `fn(args...)`.
type CallExpr struct {
	Base
	Fn   Expression
	Args []Expression
}

func (*CallExpr) expressionNode() {}

// MethodCallExpr is `receiver.method(args...)`.
type MethodCallExpr struct {
	Base
	Receiver Expression
	Method   string
	Args     []Expression
}

func (*MethodCallExpr) expressionNode() {}

// FieldAccessExpr is `receiver.field`; Optional is true for `receiver?.field`.
type FieldAccessExpr struct {
	Base
	Receiver Expression
	Field    string
	Optional bool
}

func (*FieldAccessExpr) expressionNode() {}

// IndexExpr is `receiver[index]`.
type IndexExpr struct {
	Base
	Receiver Expression
	Index    Expression
}

func (*IndexExpr) expressionNode() {}

// RangeExpr is `start..end` or `start..=end`.
type RangeExpr struct {
	Base
	Start     Expression
	End       Expression
	Inclusive bool
}

func (*RangeExpr) expressionNode() {}

// IfExpr is `if cond { ... } else { ... }`; Else is nil if there is no
// else branch, and may itself be an IfExpr for `else if`.
type IfExpr struct {
	Base
	Condition Expression
	Then      *BlockExpr
	Else      Expression
}

func (*IfExpr) expressionNode() {}

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	Base
	Condition Expression
	Then      Expression
	Else      Expression
}

func (*TernaryExpr) expressionNode() {}

// MatchArm is one `pattern [if guard] => body` arm of a match expression.
type MatchArm struct {
	Pattern Pattern
	Guard   Expression
	Body    Expression
}

// MatchExpr is `match scrutinee { arms... }`.
type MatchExpr struct {
	Base
	Scrutinee Expression
	Arms      []MatchArm
}

func (*MatchExpr) expressionNode() {}

// WhileExpr is `[label:] while cond { body }`.
type WhileExpr struct {
	Base
	Label     string
	Condition Expression
	Body      *BlockExpr
}

func (*WhileExpr) expressionNode() {}

// ForExpr is `[label:] for pattern in iter { body }`.
type ForExpr struct {
	Base
	Label   string
	Pattern Pattern
	Iter    Expression
	Body    *BlockExpr
}

func (*ForExpr) expressionNode() {}

// LoopExpr is `[label:] loop { body }`.
type LoopExpr struct {
	Base
	Label string
	Body  *BlockExpr
}

func (*LoopExpr) expressionNode() {}

// BreakExpr is `break [label] [value]`.
type BreakExpr struct {
	Base
	Label string
	Value Expression
}

func (*BreakExpr) expressionNode() {}

// ContinueExpr is `continue [label]`.
type ContinueExpr struct {
	Base
	Label string
}

func (*ContinueExpr) expressionNode() {}

// ReturnExpr is `return [value]`.
type ReturnExpr struct {
	Base
	Value Expression
}

func (*ReturnExpr) expressionNode() {}

// LetExpr is `let pattern [: type] = value [; body]`. When Body is nil,
// Let behaves as a plain statement-level binding; when present, Let is
// itself an expression whose value is Body's value (used for `let`
// chains desugared from sequential statements).
type LetExpr struct {
	Base
	Pattern  Pattern
	TypeAnno TypeNode
	Value    Expression
	Body     Expression
	Mutable  bool
}

func (*LetExpr) expressionNode() {}

// AssignExpr is `target = value`.
type AssignExpr struct {
	Base
	Target Expression
	Value  Expression
}

func (*AssignExpr) expressionNode() {}

// CompoundAssignExpr is `target op= value`.
type CompoundAssignExpr struct {
	Base
	Op     string
	Target Expression
	Value  Expression
}

func (*CompoundAssignExpr) expressionNode() {}

// Param is one parameter of a function or lambda.
type Param struct {
	Name       string
	TypeAnno   TypeNode
	Default    Expression
	IsVariadic bool
}

// LambdaExpr is `|params| body` or `|params| -> type { body }`.
type LambdaExpr struct {
	Base
	Params     []Param
	ReturnType TypeNode
	Body       Expression
}

func (*LambdaExpr) expressionNode() {}

// FunctionDecl is `[pub] fun name(params) [-> type] { body }`.
type FunctionDecl struct {
	Base
	Name       string
	Params     []Param
	ReturnType TypeNode
	Body       *BlockExpr
	Async      bool
	Pub        bool
}

func (*FunctionDecl) expressionNode() {}
func (*FunctionDecl) statementNode()  {}

// TypeCastExpr is `value as Type`.
type TypeCastExpr struct {
	Base
	Value  Expression
	Target TypeNode
}

func (*TypeCastExpr) expressionNode() {}

// ImportDecl is `import path [as alias]` or `import {names} from path`.
type ImportDecl struct {
	Base
	Path  string
	Alias string
	Names []string
}

func (*ImportDecl) statementNode() {}

// ExportDecl is `export name` or `export *`.
type ExportDecl struct {
	Base
	Names []string
	All   bool
}

func (*ExportDecl) statementNode() {}

// ModuleDecl is `module name { ... }`.
type ModuleDecl struct {
	Base
	Name string
	Body []Statement
}

func (*ModuleDecl) statementNode() {}

// SpawnExpr is `spawn Actor(args...)`.
type SpawnExpr struct {
	Base
	Actor Expression
}

func (*SpawnExpr) expressionNode() {}

// SendExpr is `target ! message` (fire-and-forget).
type SendExpr struct {
	Base
	Target  Expression
	Message Expression
}

func (*SendExpr) expressionNode() {}

// AskExpr is `target <? message` (request/response).
type AskExpr struct {
	Base
	Target  Expression
	Message Expression
}

func (*AskExpr) expressionNode() {}

// ThrowExpr is `throw value`.
type ThrowExpr struct {
	Base
	Value Expression
}

func (*ThrowExpr) expressionNode() {}

// TryExpr is the postfix `?` operator: unwrap or propagate.
type TryExpr struct {
	Base
	Value Expression
}

func (*TryExpr) expressionNode() {}

// CatchClause is one `catch pattern { body }` clause.
type CatchClause struct {
	Pattern Pattern
	Body    *BlockExpr
}

// TryCatchExpr is `try { body } catch p1 {...} catch p2 {...} finally {...}`.
type TryCatchExpr struct {
	Base
	Body    *BlockExpr
	Catches []CatchClause
	Finally *BlockExpr
}

func (*TryCatchExpr) expressionNode() {}

// AwaitExpr is `await value`.
type AwaitExpr struct {
	Base
	Value Expression
}

func (*AwaitExpr) expressionNode() {}

// AsyncBlockExpr is `async { body }`.
type AsyncBlockExpr struct {
	Base
	Body *BlockExpr
}

func (*AsyncBlockExpr) expressionNode() {}

// SpreadExpr is `...value` inside a list/tuple literal or call argument list.
type SpreadExpr struct {
	Base
	Value Expression
}

func (*SpreadExpr) expressionNode() {}

// CtorExpr constructs a `Some`/`None`/`Ok`/`Err` sum-type value.
type CtorExpr struct {
	Base
	Name string
	Args []Expression
}

func (*CtorExpr) expressionNode() {}

// MacroInvocationExpr is `name!(args...)`.
type MacroInvocationExpr struct {
	Base
	Name string
	Args []Expression
}

func (*MacroInvocationExpr) expressionNode() {}
