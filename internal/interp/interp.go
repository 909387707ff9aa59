// Package interp is Ruchy's tree-walk evaluator: a type-switch Eval
// over the AST, an environment frame chain for bindings, and control
// flow threaded as signal errors.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// maxEvalDepth bounds recursive Eval nesting so a runaway recursive
// Ruchy program fails with a catchable error instead of crashing the
// host process.
const maxEvalDepth = 4000

// ActorRuntime is the seam between the interpreter and the actor
// subsystem (internal/actor), kept as an interface here so this package
// never imports internal/actor — the actor package imports interp, not
// the other way around, since actor handlers are evaluated by calling
// back into an *Interp.
type ActorRuntime interface {
	Spawn(in *Interp, decl *ast.ActorDecl, async bool, args []value.Value) (value.Value, error)
	SpawnSupervisor(in *Interp, decl *ast.SupervisorDecl) (value.Value, error)
	Send(in *Interp, handle value.ActorHandle, message string, args []value.Value) error
	Ask(in *Interp, handle value.ActorHandle, message string, args []value.Value) (value.Value, error)
	Stop(in *Interp, handle value.ActorHandle) error
}

// CallFrame records one active function/method/closure invocation, for
// diagnostics and the recursion-depth guard.
type CallFrame struct {
	Name string
	Tok  ast.Span
}

// Interp is one interpreter instance: its global scope plus the
// type/trait/impl registries populated by top-level declarations.
type Interp struct {
	GlobalEnv *value.Environment
	Out       io.Writer

	// CurrentFile is the source file being evaluated, the anchor for
	// relative import resolution; "<stdin>" in the REPL and sessions.
	CurrentFile string

	Structs map[string]*ast.StructDecl
	Enums   map[string]*ast.EnumDecl
	Traits  map[string]*ast.TraitDecl
	// Impls maps a type name to its inherent + trait methods, keyed by
	// method name; later impl blocks for the same type add to the map.
	Impls map[string]map[string]*ast.FunctionDecl

	Actors ActorRuntime

	// Loader resolves and evaluates imported modules; nil disables
	// import support entirely (every ImportDecl becomes a ModuleError).
	Loader ModuleLoader

	CallStack []CallFrame
	evalDepth int
	// asyncDepth counts enclosing async blocks during evaluation; a
	// spawn under a nonzero depth selects the mailbox-dispatched actor
	// mode even when the actor type itself is not declared async.
	asyncDepth int
}

// ModuleLoader resolves an import path relative to a source file and
// returns the bindings it exports, letting internal/modules stay
// decoupled from the evaluator's concrete Interp type via an interface
// seam symmetric to ActorRuntime above.
type ModuleLoader interface {
	Load(fromFile, importPath string) (map[string]value.Value, error)
}

// New creates an interpreter with an empty global scope and registries.
func New() *Interp {
	in := &Interp{
		GlobalEnv:   value.NewEnvironment(),
		Out:         os.Stdout,
		CurrentFile: "<stdin>",
		Structs:     map[string]*ast.StructDecl{},
		Enums:       map[string]*ast.EnumDecl{},
		Traits:      map[string]*ast.TraitDecl{},
		Impls:       map[string]map[string]*ast.FunctionDecl{},
	}
	registerBuiltins(in)
	return in
}

// Run evaluates every top-level statement of prog in the global scope
// in order, returning the value of the final statement (REPL-style) or
// the first uncaught error/throw.
func (in *Interp) Run(prog *ast.Program) (value.Value, error) {
	var last value.Value = value.NilValue
	for _, stmt := range prog.Statements {
		v, err := in.RunStatement(stmt)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// RunStatement evaluates one top-level statement in the global scope,
// converting an uncaught throw into a user-facing error.
func (in *Interp) RunStatement(stmt ast.Statement) (value.Value, error) {
	v, err := in.evalStatement(stmt, in.GlobalEnv)
	if err != nil {
		if s, ok := err.(*signal); ok && s.kind == sigThrow {
			return nil, fmt.Errorf("uncaught error: %s", s.value.Inspect())
		}
		return nil, err
	}
	return v, nil
}

func (in *Interp) evalStatement(stmt ast.Statement, env *value.Environment) (value.Value, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return in.Eval(s.Expr, env)
	case *ast.ImportDecl:
		return in.evalImportDecl(s, env)
	case *ast.ExportDecl:
		return value.NilValue, nil
	case *ast.ModuleDecl:
		return in.evalModuleDecl(s, env)
	case ast.Expression:
		return in.Eval(s, env)
	default:
		return nil, raise(errKindRuntime, "unhandled statement %T", stmt)
	}
}

// Eval evaluates a single expression node in env.
func (in *Interp) Eval(node ast.Expression, env *value.Environment) (value.Value, error) {
	if node == nil {
		return value.NilValue, nil
	}
	in.evalDepth++
	if in.evalDepth > maxEvalDepth {
		in.evalDepth--
		return nil, raise(errKindRuntime, "stack overflow")
	}
	defer func() { in.evalDepth-- }()

	switch n := node.(type) {
	case *ast.IntLiteral:
		return value.Integer{Value: n.Value}, nil
	case *ast.FloatLiteral:
		return value.Float{Value: n.Value}, nil
	case *ast.BoolLiteral:
		return value.Bool{Value: n.Value}, nil
	case *ast.StringLiteral:
		return value.Str{Value: n.Value}, nil
	case *ast.CharLiteral:
		return value.Char{Value: n.Value}, nil
	case *ast.ByteLiteral:
		return value.Byte{Value: n.Value}, nil
	case *ast.NullLiteral:
		return value.NilValue, nil
	case *ast.UnitLiteral:
		return value.NilValue, nil
	case *ast.Identifier:
		return in.evalIdentifier(n, env)
	case *ast.QualifiedNameExpr:
		return in.evalQualifiedName(n, env)
	case *ast.ListExpr:
		return in.evalListExpr(n, env)
	case *ast.ArrayInitExpr:
		return in.evalArrayInitExpr(n, env)
	case *ast.TupleExpr:
		return in.evalTupleExpr(n, env)
	case *ast.BlockExpr:
		return in.evalBlock(n, env)
	case *ast.BinaryExpr:
		return in.evalBinary(n, env)
	case *ast.UnaryExpr:
		return in.evalUnary(n, env)
	case *ast.IncDecExpr:
		return in.evalIncDec(n, env)
	case *ast.RangeExpr:
		return in.evalRange(n, env)
	case *ast.IfExpr:
		return in.evalIf(n, env)
	case *ast.TernaryExpr:
		return in.evalTernary(n, env)
	case *ast.MatchExpr:
		return in.evalMatch(n, env)
	case *ast.WhileExpr:
		return in.evalWhile(n, env)
	case *ast.ForExpr:
		return in.evalFor(n, env)
	case *ast.LoopExpr:
		return in.evalLoop(n, env)
	case *ast.BreakExpr:
		return in.evalBreak(n, env)
	case *ast.ContinueExpr:
		return value.NilValue, continueSignal(n.Label)
	case *ast.ReturnExpr:
		return in.evalReturn(n, env)
	case *ast.LetExpr:
		return in.evalLet(n, env)
	case *ast.AssignExpr:
		return in.evalAssign(n, env)
	case *ast.CompoundAssignExpr:
		return in.evalCompoundAssign(n, env)
	case *ast.LambdaExpr:
		return in.evalLambda(n, env)
	case *ast.FunctionDecl:
		return in.evalFunctionDecl(n, env)
	case *ast.StructDecl:
		return in.evalStructDecl(n, env)
	case *ast.EnumDecl:
		return in.evalEnumDecl(n, env)
	case *ast.TraitDecl:
		return in.evalTraitDecl(n, env)
	case *ast.ImplDecl:
		return in.evalImplDecl(n, env)
	case *ast.ActorDecl:
		return in.evalActorDecl(n, env)
	case *ast.CallExpr:
		return in.evalCall(n, env)
	case *ast.MethodCallExpr:
		return in.evalMethodCall(n, env)
	case *ast.FieldAccessExpr:
		return in.evalFieldAccess(n, env)
	case *ast.IndexExpr:
		return in.evalIndex(n, env)
	case *ast.TypeCastExpr:
		return in.evalTypeCast(n, env)
	case *ast.CtorExpr:
		return in.evalCtor(n, env)
	case *ast.SpreadExpr:
		return in.Eval(n.Value, env)
	case *ast.SpawnExpr:
		return in.evalSpawn(n, env)
	case *ast.SendExpr:
		return in.evalSend(n, env)
	case *ast.AskExpr:
		return in.evalAsk(n, env)
	case *ast.ThrowExpr:
		return in.evalThrow(n, env)
	case *ast.TryExpr:
		return in.evalTry(n, env)
	case *ast.TryCatchExpr:
		return in.evalTryCatch(n, env)
	case *ast.AwaitExpr:
		return in.Eval(n.Value, env)
	case *ast.AsyncBlockExpr:
		in.asyncDepth++
		v, err := in.evalBlock(n.Body, value.NewEnclosedEnvironment(env))
		in.asyncDepth--
		return v, err
	case *ast.SupervisorDecl:
		return in.evalSupervisorDecl(n, env)
	case *ast.MacroInvocationExpr:
		return in.evalMacroInvocation(n, env)
	default:
		return nil, raise(errKindRuntime, "unhandled expression %T", node)
	}
}
