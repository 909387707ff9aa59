package parser

import (
	"strconv"

	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/token"
)

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.cur
	if p.peekIs(token.DCOLON) {
		module := tok.Lexeme
		p.next() // cur = ::
		p.next() // cur = name
		return &ast.QualifiedNameExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+len(p.cur.Lexeme)), Module: module, Name: p.cur.Lexeme}
	}
	return ast.NewIdentifier(tok, tok.Lexeme, tok.Offset, tok.Offset+len(tok.Lexeme))
}

// ctorNames are the sum-type constructors given a dedicated AST node
// (ast.CtorExpr) instead of a plain call, per the data model's
// Ok/Err/Some/None constructors.
var ctorNames = map[string]bool{"Some": true, "None": true, "Ok": true, "Err": true}

func (p *Parser) parseIntLiteral() ast.Expression {
	tok := p.cur
	v, suffix, err := lexer.ParseIntLiteral(tok.Lexeme)
	if err != nil {
		p.errorf("invalid integer literal %q: %v", tok.Lexeme, err)
	}
	return ast.NewIntLiteral(tok, v, suffix, tok.Offset, tok.Offset+len(tok.Lexeme))
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.cur
	v, err := lexer.ParseFloatLiteral(tok.Lexeme)
	if err != nil {
		p.errorf("invalid float literal %q: %v", tok.Lexeme, err)
	}
	return ast.NewFloatLiteral(tok, v, tok.Offset, tok.Offset+len(tok.Lexeme))
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.cur
	return ast.NewStringLiteral(tok, tok.Lexeme, tok.Offset, tok.Offset+len(tok.Lexeme))
}

func (p *Parser) parseCharLiteral() ast.Expression {
	tok := p.cur
	r := rune(0)
	for _, c := range tok.Lexeme {
		r = c
		break
	}
	return ast.NewCharLiteral(tok, r, tok.Offset, tok.Offset+len(tok.Lexeme))
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	tok := p.cur
	return ast.NewBoolLiteral(tok, tok.Type == token.TRUE, tok.Offset, tok.Offset+len(tok.Lexeme))
}

func (p *Parser) parseNullLiteral() ast.Expression {
	tok := p.cur
	return ast.NewNullLiteral(tok, tok.Offset, tok.Offset+len(tok.Lexeme))
}

func (p *Parser) parseUnitLiteral() ast.Expression {
	tok := p.cur
	return ast.NewUnitLiteral(tok, tok.Offset, tok.Offset+len(tok.Lexeme))
}

// parseGroupedOrTuple handles `(expr)`, `()`, and `(a, b, ...)`.
func (p *Parser) parseGroupedOrTuple() ast.Expression {
	tok := p.cur
	if p.peekIs(token.RPAREN) {
		p.next()
		return ast.NewUnitLiteral(tok, tok.Offset, p.cur.Offset+1)
	}
	p.next()
	first := p.parseExpression(LOWEST)
	if p.peekIs(token.COMMA) {
		elems := []ast.Expression{first}
		for p.peekIs(token.COMMA) {
			p.next()
			if p.peekIs(token.RPAREN) {
				break
			}
			p.next()
			elems = append(elems, p.parseExpression(LOWEST))
		}
		p.expect(token.RPAREN)
		return &ast.TupleExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1), Elements: elems}
	}
	p.expect(token.RPAREN)
	return first
}

// parseListOrArrayInit handles `[a, b, c]` and `[value; size]`.
func (p *Parser) parseListOrArrayInit() ast.Expression {
	tok := p.cur
	if p.peekIs(token.RBRACKET) {
		p.next()
		return &ast.ListExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1)}
	}
	p.next()
	first := p.parseExpression(LOWEST)
	if p.peekIs(token.SEMI) {
		p.next()
		p.next()
		size := p.parseExpression(LOWEST)
		p.expect(token.RBRACKET)
		return &ast.ArrayInitExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1), Value: first, Size: size}
	}
	elems := []ast.Expression{first}
	for p.peekIs(token.COMMA) {
		p.next()
		if p.peekIs(token.RBRACKET) {
			break
		}
		p.next()
		elems = append(elems, p.parseExpression(LOWEST))
	}
	p.expect(token.RBRACKET)
	return &ast.ListExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1), Elements: elems}
}

// parseBlockExpr parses `{ stmt...; [expr] }`.
func (p *Parser) parseBlockExpr() ast.Expression {
	return p.parseBlock()
}

func (p *Parser) parseBlock() *ast.BlockExpr {
	tok := p.cur // '{'
	blk := &ast.BlockExpr{}
	p.next()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseTopLevelStatement()
		if stmt != nil {
			blk.Statements = append(blk.Statements, stmt)
		}
		p.next()
	}
	blk.Base = ast.NewBase(tok, tok.Offset, p.cur.Offset+1)
	return blk
}

func (p *Parser) parseUnaryExpr() ast.Expression {
	tok := p.cur
	op := tok.Lexeme
	p.next()
	operand := p.parseExpression(PREFIX)
	return &ast.UnaryExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Op: op, Operand: operand}
}

func (p *Parser) parsePrefixIncDec() ast.Expression {
	tok := p.cur
	op := tok.Lexeme
	p.next()
	target := p.parseExpression(PREFIX)
	return &ast.IncDecExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Op: op, Target: target, Prefix: true}
}

func (p *Parser) parsePostfixIncDec(left ast.Expression) ast.Expression {
	tok := p.cur
	return &ast.IncDecExpr{Base: ast.NewBase(tok, left.Span().Start, tok.Offset+2), Op: tok.Lexeme, Target: left, Prefix: false}
}

func (p *Parser) parseBinaryExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	op := tok.Lexeme
	prec := p.curPrecedence()
	p.next()
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset), Op: op, Left: left, Right: right}
}

func (p *Parser) parseRangeExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	inclusive := tok.Type == token.DOTDOTEQ
	p.next()
	var right ast.Expression
	if !p.curIs(token.RBRACE) && !p.curIs(token.RPAREN) && !p.curIs(token.RBRACKET) &&
		!p.curIs(token.SEMI) && !p.curIs(token.EOF) && !p.curIs(token.LBRACE) {
		right = p.parseExpression(RANGE)
	}
	return &ast.RangeExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset), Start: left, End: right, Inclusive: inclusive}
}

func (p *Parser) parseCallExpr(fn ast.Expression) ast.Expression {
	tok := p.cur
	args := p.parseExpressionList(token.RPAREN)
	if id, ok := fn.(*ast.Identifier); ok && ctorNames[id.Name] {
		return &ast.CtorExpr{Base: ast.NewBase(tok, fn.Span().Start, p.cur.Offset+1), Name: id.Name, Args: args}
	}
	return &ast.CallExpr{Base: ast.NewBase(tok, fn.Span().Start, p.cur.Offset+1), Fn: fn, Args: args}
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peekIs(end) {
		p.next()
		return list
	}
	p.next()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekIs(token.COMMA) {
		p.next()
		if p.peekIs(end) {
			break
		}
		p.next()
		list = append(list, p.parseExpression(LOWEST))
	}
	p.expect(end)
	return list
}

func (p *Parser) parseIndexExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	p.next()
	idx := p.parseExpression(LOWEST)
	p.expect(token.RBRACKET)
	return &ast.IndexExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset+1), Receiver: left, Index: idx}
}

func (p *Parser) parseFieldOrMethod(left ast.Expression) ast.Expression {
	tok := p.cur
	optional := tok.Type == token.QDOT
	if !p.expect(token.IDENT) {
		return left
	}
	name := p.cur.Lexeme
	if p.peekIs(token.LPAREN) {
		p.next()
		args := p.parseExpressionList(token.RPAREN)
		return &ast.MethodCallExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset+1), Receiver: left, Method: name, Args: args}
	}
	return &ast.FieldAccessExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset), Receiver: left, Field: name, Optional: optional}
}

func (p *Parser) parseAssignExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	p.next()
	value := p.parseExpression(ASSIGN - 1)
	return &ast.AssignExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset), Target: left, Value: value}
}

func (p *Parser) parseCompoundAssignExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	op := string(tok.Lexeme[0])
	p.next()
	value := p.parseExpression(ASSIGN - 1)
	return &ast.CompoundAssignExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset), Op: op, Target: left, Value: value}
}

func (p *Parser) parseSendExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	p.next()
	msg := p.parseExpression(SEND)
	return &ast.SendExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset), Target: left, Message: msg}
}

func (p *Parser) parseAskExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	p.next()
	msg := p.parseExpression(ASK)
	return &ast.AskExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset), Target: left, Message: msg}
}

// ternaryStart is the set of tokens that can begin a ternary's
// then-branch. A `?` followed by anything else is the postfix unwrap
// operator (`Ok(4)? + 1` keeps chaining as an expression).
var ternaryStart = map[token.Type]bool{
	token.IDENT: true, token.INT: true, token.FLOAT: true,
	token.STRING: true, token.CHAR: true, token.TRUE: true,
	token.FALSE: true, token.NULL: true, token.UNIT: true,
	token.LPAREN: true, token.LBRACKET: true, token.LBRACE: true,
	token.BANG: true, token.TILDE: true, token.IF: true,
	token.MATCH: true, token.PIPE: true,
}

// parseTernaryOrTry disambiguates `cond ? then : else` from the postfix
// `expr?` unwrap operator by whether the next token can start a
// then-branch.
func (p *Parser) parseTernaryOrTry(left ast.Expression) ast.Expression {
	tok := p.cur
	if !ternaryStart[p.peek.Type] {
		return &ast.TryExpr{Base: ast.NewBase(tok, left.Span().Start, tok.Offset+1), Value: left}
	}
	p.next()
	then := p.parseExpression(TERNARY)
	if !p.expect(token.COLON) {
		return &ast.TryExpr{Base: ast.NewBase(tok, left.Span().Start, tok.Offset+1), Value: left}
	}
	p.next()
	elseExpr := p.parseExpression(TERNARY)
	return &ast.TernaryExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset), Condition: left, Then: then, Else: elseExpr}
}

func (p *Parser) parseLambda() ast.Expression {
	tok := p.cur // '|'
	var params []ast.Param
	for !p.peekIs(token.PIPE) {
		p.next()
		name := p.cur.Lexeme
		param := ast.Param{Name: name}
		if p.peekIs(token.COLON) {
			p.next()
			p.next()
			param.TypeAnno = p.parseType()
		}
		params = append(params, param)
		if p.peekIs(token.COMMA) {
			p.next()
		}
	}
	p.next() // consume closing '|'
	var ret ast.TypeNode
	if p.peekIs(token.ARROW) {
		p.next()
		p.next()
		ret = p.parseType()
	}
	p.next()
	var body ast.Expression
	if p.curIs(token.LBRACE) {
		body = p.parseBlock()
	} else {
		body = p.parseExpression(LOWEST)
	}
	return &ast.LambdaExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Params: params, ReturnType: ret, Body: body}
}

func (p *Parser) parseType() ast.TypeNode {
	tok := p.cur
	if p.curIs(token.AMP) {
		p.next()
		mut := false
		if p.curIs(token.MUT) {
			mut = true
			p.next()
		}
		inner := p.parseType()
		return &ast.ReferenceType{Inner: inner, Mutable: mut}
	}
	if !p.curIs(token.IDENT) {
		p.errorf("expected type name, got %q", p.cur.Lexeme)
		return ast.NewNamedType(tok, "Any", tok.Offset, tok.Offset)
	}
	name := p.cur.Lexeme
	var result ast.TypeNode = ast.NewNamedType(tok, name, tok.Offset, tok.Offset+len(name))
	if p.peekIs(token.LT) {
		p.next()
		var params []ast.TypeNode
		for {
			p.next()
			params = append(params, p.parseType())
			if p.peekIs(token.COMMA) {
				p.next()
				continue
			}
			break
		}
		p.expect(token.GT)
		result = &ast.GenericType{BaseName: name, Params: params}
	}
	if p.peekIs(token.QUESTION) {
		p.next()
		result = &ast.OptionalType{Inner: result}
	}
	return result
}

var _ = strconv.Itoa

// parseEmptyParamLambda handles `|| body`: the lexer reads the two
// pipes as one OR token, so a zero-parameter lambda starts here rather
// than in parseLambda.
func (p *Parser) parseEmptyParamLambda() ast.Expression {
	tok := p.cur
	p.next()
	body := p.parseExpression(LOWEST)
	return &ast.LambdaExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Body: body}
}

// parseCastExpr handles the infix `expr as Type` conversion.
func (p *Parser) parseCastExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	p.next()
	target := p.parseType()
	return &ast.TypeCastExpr{Base: ast.NewBase(tok, left.Span().Start, p.cur.Offset+len(p.cur.Lexeme)), Value: left, Target: target}
}
