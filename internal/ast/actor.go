package ast

// StateField is one state field of an actor definition: name, declared
// type, and optional default value expression.
type StateField struct {
	Name     string
	TypeAnno TypeNode
	Default  Expression
}

// ReceiveArm is one `MessageName(params) [if guard] => body` arm of a
// `receive { ... }` block.
type ReceiveArm struct {
	MessageName string
	Params      []Param
	Guard       Expression
	Body        *BlockExpr
}

// Hooks bundles an actor's lifecycle callbacks; any may be nil.
type Hooks struct {
	OnStart   *BlockExpr
	OnStop    *BlockExpr
	OnError   *BlockExpr
	OnRestart *BlockExpr
}

// ActorDecl is an `actor Name { state...; receive arms...; hooks... }`
// definition. It is a statement-level declaration, but is represented as
// a specialized expression node so the parser and interpreter can treat
// it uniformly with other top-level bindings.
type ActorDecl struct {
	Base
	Name  string
	State []StateField
	Arms  []ReceiveArm
	Hooks Hooks
	// IsAsync marks an `async actor` declaration; its instances are
	// dispatched through the mailbox runtime instead of synchronously.
	IsAsync bool
}

func (*ActorDecl) statementNode()  {}
func (*ActorDecl) expressionNode() {}

// SupervisorDecl is a `supervisor Name { strategy ...; children [...] }`
// definition naming child actor types and a restart strategy.
type SupervisorDecl struct {
	Base
	Name     string
	Strategy string
	Children []string
}

func (*SupervisorDecl) statementNode()  {}
func (*SupervisorDecl) expressionNode() {}
