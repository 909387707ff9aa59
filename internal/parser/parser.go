// Package parser implements a recursive-descent, Pratt-precedence
// parser that turns a token stream into an AST, recovering from errors
// at statement boundaries instead of aborting on the first one.
package parser

import (
	"fmt"

	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/diagnostics"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/token"
)

type precedence int

const (
	LOWEST    precedence = iota
	ASK                  // <?
	SEND                 // !
	ASSIGN               // = += -= *= /=
	TERNARY              // ?:
	RANGE                // .. ..=
	LOGIC_OR             // ||
	LOGIC_AND            // &&
	BITOR                // & ^ |
	COMPARE              // < <= > >= == !=
	SHIFT                // << >>
	SUM                  // + -
	PRODUCT              // * / %
	POWER                // **
	PREFIX               // unary - ! ~ & ++ --
	POSTFIX              // ++ -- as postfix
	CALL                 // ()
	INDEX                // [] . ?.
)

var precedences = map[token.Type]precedence{
	token.ASK:         ASK,
	token.SEND:        SEND,
	token.ASSIGN:      ASSIGN,
	token.PLUSASSIGN:  ASSIGN,
	token.MINUSASSIGN: ASSIGN,
	token.STARASSIGN:  ASSIGN,
	token.SLASHASSIGN: ASSIGN,
	token.QUESTION:    TERNARY,
	token.DOTDOT:      RANGE,
	token.DOTDOTEQ:    RANGE,
	token.OR:          LOGIC_OR,
	token.AND:         LOGIC_AND,
	token.AMP:         BITOR,
	token.PIPE:        BITOR,
	token.CARET:       BITOR,
	token.LT:          COMPARE,
	token.LE:          COMPARE,
	token.GT:          COMPARE,
	token.GE:          COMPARE,
	token.EQ:          COMPARE,
	token.NE:          COMPARE,
	token.SHL:         SHIFT,
	token.SHR:         SHIFT,
	token.PLUS:        SUM,
	token.MINUS:       SUM,
	token.STAR:        PRODUCT,
	token.STARSTAR:    POWER,
	token.SLASH:       PRODUCT,
	token.PERCENT:     PRODUCT,
	token.LPAREN:      CALL,
	token.LBRACKET:    INDEX,
	token.DOT:         INDEX,
	token.QDOT:        INDEX,
	token.INCR:        POSTFIX,
	token.DECR:        POSTFIX,
	token.AS:          POSTFIX,
	token.BANG:        SEND,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser consumes a token stream (from the lexer) and produces an AST,
// accumulating diagnostics instead of stopping at the first error.
type Parser struct {
	l      *lexer.Lexer
	errors *diagnostics.Bag

	cur  token.Token
	peek token.Token

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: &diagnostics.Bag{}}
	p.prefixFns = map[token.Type]prefixParseFn{}
	p.infixFns = map[token.Type]infixParseFn{}

	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.CHAR, p.parseCharLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolLiteral)
	p.registerPrefix(token.FALSE, p.parseBoolLiteral)
	p.registerPrefix(token.NULL, p.parseNullLiteral)
	p.registerPrefix(token.UNIT, p.parseUnitLiteral)
	p.registerPrefix(token.LPAREN, p.parseGroupedOrTuple)
	p.registerPrefix(token.LBRACKET, p.parseListOrArrayInit)
	p.registerPrefix(token.LBRACE, p.parseBlockExpr)
	p.registerPrefix(token.MINUS, p.parseUnaryExpr)
	p.registerPrefix(token.BANG, p.parseUnaryExpr)
	p.registerPrefix(token.TILDE, p.parseUnaryExpr)
	p.registerPrefix(token.AMP, p.parseUnaryExpr)
	p.registerPrefix(token.INCR, p.parsePrefixIncDec)
	p.registerPrefix(token.DECR, p.parsePrefixIncDec)
	p.registerPrefix(token.PIPE, p.parseLambda)
	p.registerPrefix(token.OR, p.parseEmptyParamLambda)
	p.registerPrefix(token.IF, p.parseIfExpr)
	p.registerPrefix(token.MATCH, p.parseMatchExpr)
	p.registerPrefix(token.WHILE, p.parseWhileExpr)
	p.registerPrefix(token.FOR, p.parseForExpr)
	p.registerPrefix(token.LOOP, p.parseLoopExpr)
	p.registerPrefix(token.BREAK, p.parseBreakExpr)
	p.registerPrefix(token.CONTINUE, p.parseContinueExpr)
	p.registerPrefix(token.RETURN, p.parseReturnExpr)
	p.registerPrefix(token.THROW, p.parseThrowExpr)
	p.registerPrefix(token.TRY, p.parseTryCatchExpr)
	p.registerPrefix(token.LET, p.parseLetExpr)
	p.registerPrefix(token.FUN, p.parseFunctionDecl)
	p.registerPrefix(token.SPAWN, p.parseSpawnExpr)
	p.registerPrefix(token.AWAIT, p.parseAwaitExpr)
	p.registerPrefix(token.ASYNC, p.parseAsyncBlock)
	p.registerPrefix(token.ACTOR, p.parseActorDecl)
	p.registerPrefix(token.SUPERVISOR, p.parseSupervisorDecl)
	p.registerPrefix(token.STRUCT, p.parseStructDecl)
	p.registerPrefix(token.ENUM, p.parseEnumDecl)
	p.registerPrefix(token.TRAIT, p.parseTraitDecl)
	p.registerPrefix(token.IMPL, p.parseImplDecl)

	p.registerInfix(token.PLUS, p.parseBinaryExpr)
	p.registerInfix(token.MINUS, p.parseBinaryExpr)
	p.registerInfix(token.STAR, p.parseBinaryExpr)
	p.registerInfix(token.STARSTAR, p.parseBinaryExpr)
	p.registerInfix(token.SLASH, p.parseBinaryExpr)
	p.registerInfix(token.PERCENT, p.parseBinaryExpr)
	p.registerInfix(token.LT, p.parseBinaryExpr)
	p.registerInfix(token.LE, p.parseBinaryExpr)
	p.registerInfix(token.GT, p.parseBinaryExpr)
	p.registerInfix(token.GE, p.parseBinaryExpr)
	p.registerInfix(token.EQ, p.parseBinaryExpr)
	p.registerInfix(token.NE, p.parseBinaryExpr)
	p.registerInfix(token.AND, p.parseBinaryExpr)
	p.registerInfix(token.OR, p.parseBinaryExpr)
	p.registerInfix(token.AMP, p.parseBinaryExpr)
	p.registerInfix(token.PIPE, p.parseBinaryExpr)
	p.registerInfix(token.CARET, p.parseBinaryExpr)
	p.registerInfix(token.SHL, p.parseBinaryExpr)
	p.registerInfix(token.SHR, p.parseBinaryExpr)
	p.registerInfix(token.DOTDOT, p.parseRangeExpr)
	p.registerInfix(token.DOTDOTEQ, p.parseRangeExpr)
	p.registerInfix(token.LPAREN, p.parseCallExpr)
	p.registerInfix(token.LBRACKET, p.parseIndexExpr)
	p.registerInfix(token.DOT, p.parseFieldOrMethod)
	p.registerInfix(token.QDOT, p.parseFieldOrMethod)
	p.registerInfix(token.ASSIGN, p.parseAssignExpr)
	p.registerInfix(token.PLUSASSIGN, p.parseCompoundAssignExpr)
	p.registerInfix(token.MINUSASSIGN, p.parseCompoundAssignExpr)
	p.registerInfix(token.STARASSIGN, p.parseCompoundAssignExpr)
	p.registerInfix(token.SLASHASSIGN, p.parseCompoundAssignExpr)
	p.registerInfix(token.SEND, p.parseSendExpr)
	p.registerInfix(token.BANG, p.parseSendExpr)
	p.registerInfix(token.ASK, p.parseAskExpr)
	p.registerInfix(token.QUESTION, p.parseTernaryOrTry)
	p.registerInfix(token.INCR, p.parsePostfixIncDec)
	p.registerInfix(token.DECR, p.parsePostfixIncDec)
	p.registerInfix(token.AS, p.parseCastExpr)

	p.next()
	p.next()
	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixFns[t] = fn }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expect(t token.Type) bool {
	if p.peekIs(t) {
		p.next()
		return true
	}
	p.errorf("expected next token to be %v, got %v (%q)", t, p.peek.Type, p.peek.Lexeme)
	return false
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors.Add(diagnostics.New(diagnostics.ErrParse, p.cur, format, args...))
}

func (p *Parser) peekPrecedence() precedence {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() precedence {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

// Errors returns the diagnostics collected during parsing.
func (p *Parser) Errors() *diagnostics.Bag { return p.errors }

// ParseProgram parses an entire source file, synchronizing to the next
// top-level statement boundary on error so a single bad construct does
// not abort the whole parse.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		startErrs := len(p.errors.Items())
		stmt := p.parseTopLevelStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if len(p.errors.Items()) > startErrs {
			p.synchronize()
		}
		p.next()
	}
	return prog
}

func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) && !p.curIs(token.SEMI) {
		switch p.peek.Type {
		case token.LET, token.FUN, token.ACTOR, token.STRUCT, token.ENUM,
			token.TRAIT, token.IMPL, token.IMPORT, token.EXPORT, token.MODULE:
			return
		}
		p.next()
	}
}

func (p *Parser) parseTopLevelStatement() ast.Statement {
	// `#[name(args...)]` annotations attach to the statement that
	// follows them.
	var attrs []ast.Attribute
	for p.curIs(token.HASH) && p.peekIs(token.LBRACKET) {
		attrs = append(attrs, p.parseAttribute())
		p.next()
	}
	stmt := p.parseTopLevelStatementInner()
	if len(attrs) > 0 {
		if es, ok := stmt.(*ast.ExpressionStatement); ok {
			if setter, ok := es.Expr.(interface{ WithAttributes([]ast.Attribute) }); ok {
				setter.WithAttributes(attrs)
			}
		}
	}
	return stmt
}

// parseAttribute parses one `#[name(arg, ...)]`; p.cur is HASH on
// entry and RBRACKET on return.
func (p *Parser) parseAttribute() ast.Attribute {
	p.next() // cur = [
	if !p.expect(token.IDENT) {
		return ast.Attribute{}
	}
	attr := ast.Attribute{Name: p.cur.Lexeme}
	if p.peekIs(token.LPAREN) {
		p.next()
		for !p.peekIs(token.RPAREN) && !p.peekIs(token.EOF) {
			p.next()
			attr.Args = append(attr.Args, p.cur.Lexeme)
			if p.peekIs(token.COMMA) {
				p.next()
			}
		}
		p.next()
	}
	p.expect(token.RBRACKET)
	return attr
}

func (p *Parser) parseTopLevelStatementInner() ast.Statement {
	switch p.cur.Type {
	case token.IMPORT:
		return p.parseImportDecl()
	case token.EXPORT:
		return p.parseExportDecl()
	case token.MODULE:
		return p.parseModuleDecl()
	case token.PUB:
		p.next()
		switch p.cur.Type {
		case token.FUN:
			return &ast.ExpressionStatement{Expr: p.parseFunctionDeclFlags(true, false)}
		case token.STRUCT:
			return &ast.ExpressionStatement{Expr: p.parseStructDeclFlags(true)}
		case token.ENUM:
			return &ast.ExpressionStatement{Expr: p.parseEnumDeclFlags(true)}
		default:
			return p.parseExpressionStatement()
		}
	case token.ASYNC:
		if p.peekIs(token.FUN) {
			p.next()
			return &ast.ExpressionStatement{Expr: p.parseFunctionDeclFlags(false, true)}
		}
		if p.peekIs(token.ACTOR) {
			p.next()
			return &ast.ExpressionStatement{Expr: p.parseActorDeclFlags(true)}
		}
		return p.parseExpressionStatement()
	case token.IDENT:
		if p.peek.Type == token.COLON {
			return p.parseLabeledLoop()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	start := p.cur.Offset
	expr := p.parseExpression(LOWEST)
	stmt := &ast.ExpressionStatement{Expr: expr}
	_ = start
	if p.peekIs(token.SEMI) {
		p.next()
	}
	return stmt
}

func (p *Parser) parseExpression(prec precedence) ast.Expression {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		p.errorf("no prefix parse function for %v (%q)", p.cur.Type, p.cur.Lexeme)
		return nil
	}
	left := prefix()

	for !p.peekIs(token.SEMI) && prec < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peek.Type]
		if !ok {
			return left
		}
		p.next()
		left = infix(left)
	}
	return left
}

func spanOf(tok token.Token, end int) ast.Span {
	return ast.Span{Start: tok.Offset, End: end}
}

var _ = fmt.Sprintf
