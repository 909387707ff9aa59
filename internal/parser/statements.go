package parser

import (
	"strconv"

	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/token"
)

// parsePattern parses a single match/destructuring pattern. It leaves
// p.cur on the pattern's last token, matching every other parse* helper
// in this package.
func (p *Parser) parsePattern() ast.Pattern {
	var pat ast.Pattern
	switch p.cur.Type {
	case token.IDENT:
		name := p.cur.Lexeme
		switch {
		case name == "_":
			pat = ast.WildcardPattern{}
		case p.peekIs(token.DCOLON):
			parts := []string{name}
			for p.peekIs(token.DCOLON) {
				p.next()
				p.next()
				parts = append(parts, p.cur.Lexeme)
			}
			if p.peekIs(token.LPAREN) {
				// Variant payload: `Shape::Circle(r)` destructures by
				// position, reusing the struct-pattern field shape.
				p.next()
				var fields []ast.StructFieldPattern
				idx := 0
				if !p.peekIs(token.RPAREN) {
					p.next()
					for {
						fields = append(fields, ast.StructFieldPattern{Name: strconv.Itoa(idx), SubPat: p.parsePattern()})
						idx++
						if p.peekIs(token.COMMA) {
							p.next()
							p.next()
							continue
						}
						break
					}
				}
				p.expect(token.RPAREN)
				pat = ast.StructPattern{Name: parts[len(parts)-1], Fields: fields}
			} else {
				pat = ast.QualifiedNamePattern{Parts: parts}
			}
		case p.peekIs(token.LPAREN):
			p.next() // cur = LPAREN
			var fields []ast.StructFieldPattern
			idx := 0
			if !p.peekIs(token.RPAREN) {
				p.next()
				for {
					fields = append(fields, ast.StructFieldPattern{Name: strconv.Itoa(idx), SubPat: p.parsePattern()})
					idx++
					if p.peekIs(token.COMMA) {
						p.next()
						p.next()
						continue
					}
					break
				}
			}
			p.expect(token.RPAREN)
			pat = ast.StructPattern{Name: name, Fields: fields}
		case p.peekIs(token.LBRACE):
			p.next() // cur = LBRACE
			var fields []ast.StructFieldPattern
			hasRest := false
			if !p.peekIs(token.RBRACE) {
				p.next()
				for {
					if p.curIs(token.DOTDOT) {
						hasRest = true
						p.next()
						break
					}
					fname := p.cur.Lexeme
					var sub ast.Pattern
					if p.peekIs(token.COLON) {
						p.next()
						p.next()
						sub = p.parsePattern()
					}
					fields = append(fields, ast.StructFieldPattern{Name: fname, SubPat: sub})
					if p.peekIs(token.COMMA) {
						p.next()
						if p.peekIs(token.RBRACE) {
							break
						}
						p.next()
						continue
					}
					break
				}
			}
			p.expect(token.RBRACE)
			pat = ast.StructPattern{Name: name, Fields: fields, HasRest: hasRest}
		default:
			pat = ast.IdentifierPattern{Name: name}
		}
	case token.DOTDOT:
		if p.peekIs(token.IDENT) {
			p.next()
			pat = ast.RestNamedPattern{Name: p.cur.Lexeme}
		} else {
			pat = ast.RestPattern{}
		}
	case token.LPAREN:
		p.next() // cur = first element or RPAREN
		var elems []ast.Pattern
		if !p.curIs(token.RPAREN) {
			for {
				elems = append(elems, p.parsePattern())
				if p.peekIs(token.COMMA) {
					p.next()
					p.next()
					continue
				}
				break
			}
			p.expect(token.RPAREN)
		}
		pat = ast.TuplePattern{Elements: elems}
	case token.LBRACKET:
		p.next()
		var elems []ast.Pattern
		if !p.curIs(token.RBRACKET) {
			for {
				elems = append(elems, p.parsePattern())
				if p.peekIs(token.COMMA) {
					p.next()
					p.next()
					continue
				}
				break
			}
			p.expect(token.RBRACKET)
		}
		pat = ast.ListPattern{Elements: elems}
	default:
		lit := p.parseExpression(BITOR)
		if p.peekIs(token.DOTDOT) || p.peekIs(token.DOTDOTEQ) {
			inclusive := p.peek.Type == token.DOTDOTEQ
			p.next()
			p.next()
			end := p.parseExpression(BITOR)
			pat = ast.RangePattern{Start: lit, End: end, Inclusive: inclusive}
		} else {
			pat = ast.LiteralPattern{Value: lit}
		}
	}

	if p.peekIs(token.PIPE) {
		alts := []ast.Pattern{pat}
		for p.peekIs(token.PIPE) {
			p.next()
			p.next()
			alts = append(alts, p.parsePattern())
		}
		return ast.OrPattern{Alternatives: alts}
	}
	return pat
}

// parseParamList parses a `(name[: Type][= default], ...)` parameter
// list; p.cur must be LPAREN on entry and is RPAREN on return.
func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peekIs(token.RPAREN) {
		p.next()
		return params
	}
	p.next()
	for {
		param := ast.Param{}
		if p.curIs(token.DOTDOT) {
			param.IsVariadic = true
			p.next()
		}
		param.Name = p.cur.Lexeme
		if p.peekIs(token.COLON) {
			p.next()
			p.next()
			param.TypeAnno = p.parseType()
		}
		if p.peekIs(token.ASSIGN) {
			p.next()
			p.next()
			param.Default = p.parseExpression(LOWEST)
		}
		params = append(params, param)
		if p.peekIs(token.COMMA) {
			p.next()
			p.next()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseIfExpr() ast.Expression {
	tok := p.cur
	p.next()
	cond := p.parseExpression(LOWEST)
	if !p.expect(token.LBRACE) {
		return &ast.IfExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Condition: cond}
	}
	then := p.parseBlock()
	var elseExpr ast.Expression
	if p.peekIs(token.ELSE) {
		p.next()
		if p.peekIs(token.IF) {
			p.next()
			elseExpr = p.parseIfExpr()
		} else {
			p.next()
			elseExpr = p.parseBlock()
		}
	}
	return &ast.IfExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Condition: cond, Then: then, Else: elseExpr}
}

func (p *Parser) parseMatchExpr() ast.Expression {
	tok := p.cur
	p.next()
	scrutinee := p.parseExpression(LOWEST)
	if !p.expect(token.LBRACE) {
		return &ast.MatchExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Scrutinee: scrutinee}
	}
	p.next()
	var arms []ast.MatchArm
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		pat := p.parsePattern()
		var guard ast.Expression
		if p.peekIs(token.IF) {
			p.next()
			p.next()
			guard = p.parseExpression(LOWEST)
		}
		if !p.expect(token.FATARROW) {
			break
		}
		p.next()
		body := p.parseExpression(LOWEST)
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	return &ast.MatchExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1), Scrutinee: scrutinee, Arms: arms}
}

func (p *Parser) parseWhileExpr() ast.Expression {
	tok := p.cur
	p.next()
	cond := p.parseExpression(LOWEST)
	if !p.expect(token.LBRACE) {
		return &ast.WhileExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Condition: cond}
	}
	body := p.parseBlock()
	return &ast.WhileExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Condition: cond, Body: body}
}

func (p *Parser) parseForExpr() ast.Expression {
	tok := p.cur
	p.next()
	pat := p.parsePattern()
	if !p.expect(token.IN) {
		return &ast.ForExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Pattern: pat}
	}
	p.next()
	iter := p.parseExpression(LOWEST)
	if !p.expect(token.LBRACE) {
		return &ast.ForExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Pattern: pat, Iter: iter}
	}
	body := p.parseBlock()
	return &ast.ForExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Pattern: pat, Iter: iter, Body: body}
}

func (p *Parser) parseLoopExpr() ast.Expression {
	tok := p.cur
	if !p.expect(token.LBRACE) {
		return &ast.LoopExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	body := p.parseBlock()
	return &ast.LoopExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Body: body}
}

// parseLabeledLoop handles `label: while/for/loop { ... }`. Called from
// parseTopLevelStatement when it detects `IDENT COLON` followed by a
// loop keyword.
func (p *Parser) parseLabeledLoop() ast.Statement {
	label := p.cur.Lexeme
	p.next() // cur = COLON
	p.next() // cur = while/for/loop
	var e ast.Expression
	switch p.cur.Type {
	case token.WHILE:
		e = p.parseWhileExpr()
		e.(*ast.WhileExpr).Label = label
	case token.FOR:
		e = p.parseForExpr()
		e.(*ast.ForExpr).Label = label
	case token.LOOP:
		e = p.parseLoopExpr()
		e.(*ast.LoopExpr).Label = label
	default:
		p.errorf("expected loop construct after label %q", label)
		return nil
	}
	return &ast.ExpressionStatement{Expr: e}
}

func (p *Parser) parseBreakExpr() ast.Expression {
	tok := p.cur
	label := ""
	var val ast.Expression
	if p.peekIs(token.IDENT) {
		p.next()
		if _, infix := p.infixFns[p.peek.Type]; infix {
			// `break i * 2`: the identifier starts the value, not a label.
			val = p.parseExpression(LOWEST)
		} else {
			label = p.cur.Lexeme
		}
	}
	if val == nil && !p.peekIs(token.SEMI) && !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) && !p.peekIs(token.COMMA) {
		p.next()
		val = p.parseExpression(LOWEST)
	}
	return &ast.BreakExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Label: label, Value: val}
}

func (p *Parser) parseContinueExpr() ast.Expression {
	tok := p.cur
	label := ""
	if p.peekIs(token.IDENT) {
		label = p.peek.Lexeme
		p.next()
	}
	return &ast.ContinueExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Label: label}
}

func (p *Parser) parseReturnExpr() ast.Expression {
	tok := p.cur
	var val ast.Expression
	if !p.peekIs(token.SEMI) && !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) {
		p.next()
		val = p.parseExpression(LOWEST)
	}
	return &ast.ReturnExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Value: val}
}

func (p *Parser) parseThrowExpr() ast.Expression {
	tok := p.cur
	p.next()
	val := p.parseExpression(LOWEST)
	return &ast.ThrowExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Value: val}
}

func (p *Parser) parseTryCatchExpr() ast.Expression {
	tok := p.cur
	if !p.expect(token.LBRACE) {
		return &ast.TryCatchExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	body := p.parseBlock()
	var catches []ast.CatchClause
	for p.peekIs(token.CATCH) {
		p.next()
		p.next()
		var pat ast.Pattern
		if p.curIs(token.IDENT) && p.peekIs(token.COLON) {
			name := p.cur.Lexeme
			p.next()
			p.next()
			pat = ast.TypedPattern{Name: name, TypeName: p.cur.Lexeme}
		} else {
			pat = p.parsePattern()
		}
		var cbody *ast.BlockExpr
		switch {
		case p.peekIs(token.FATARROW):
			p.next()
			p.next()
			if p.curIs(token.LBRACE) {
				cbody = p.parseBlock()
			} else {
				e := p.parseExpression(LOWEST)
				cbody = &ast.BlockExpr{Statements: []ast.Statement{&ast.ExpressionStatement{Expr: e}}}
			}
		case p.peekIs(token.LBRACE):
			p.next()
			cbody = p.parseBlock()
		default:
			p.errorf("expected => or { after catch pattern")
		}
		catches = append(catches, ast.CatchClause{Pattern: pat, Body: cbody})
	}
	var fin *ast.BlockExpr
	if p.peekIs(token.FINALLY) {
		p.next()
		p.next()
		fin = p.parseBlock()
	}
	return &ast.TryCatchExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Body: body, Catches: catches, Finally: fin}
}

func (p *Parser) parseFunctionDecl() ast.Expression {
	return p.parseFunctionDeclFlags(false, false)
}

func (p *Parser) parseFunctionDeclFlags(pub, async bool) ast.Expression {
	tok := p.cur
	if !p.expect(token.IDENT) {
		return &ast.FunctionDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	name := p.cur.Lexeme
	if !p.expect(token.LPAREN) {
		return &ast.FunctionDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Name: name}
	}
	params := p.parseParamList()
	var ret ast.TypeNode
	if p.peekIs(token.ARROW) {
		p.next()
		p.next()
		ret = p.parseType()
	}
	if !p.expect(token.LBRACE) {
		return &ast.FunctionDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Name: name, Params: params, ReturnType: ret, Pub: pub, Async: async}
	}
	body := p.parseBlock()
	return &ast.FunctionDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Name: name, Params: params, ReturnType: ret, Body: body, Pub: pub, Async: async}
}

func (p *Parser) parseSpawnExpr() ast.Expression {
	tok := p.cur
	p.next()
	actorExpr := p.parseExpression(PREFIX)
	return &ast.SpawnExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Actor: actorExpr}
}

func (p *Parser) parseAwaitExpr() ast.Expression {
	tok := p.cur
	p.next()
	val := p.parseExpression(PREFIX)
	return &ast.AwaitExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Value: val}
}

func (p *Parser) parseAsyncBlock() ast.Expression {
	tok := p.cur
	if !p.expect(token.LBRACE) {
		return &ast.AsyncBlockExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	body := p.parseBlock()
	return &ast.AsyncBlockExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Body: body}
}

func (p *Parser) parseActorDecl() ast.Expression {
	return p.parseActorDeclFlags(false)
}

func (p *Parser) parseActorDeclFlags(async bool) ast.Expression {
	tok := p.cur
	if !p.expect(token.IDENT) {
		return &ast.ActorDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	name := p.cur.Lexeme
	if !p.expect(token.LBRACE) {
		return &ast.ActorDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Name: name}
	}
	p.next()
	var state []ast.StateField
	var arms []ast.ReceiveArm
	var hooks ast.Hooks
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		switch {
		case p.curIs(token.RECEIVE):
			if p.expect(token.LBRACE) {
				p.next()
				for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
					msgName := p.cur.Lexeme
					var params []ast.Param
					if p.peekIs(token.LPAREN) {
						p.next()
						params = p.parseParamList()
					}
					var guard ast.Expression
					if p.peekIs(token.IF) {
						p.next()
						p.next()
						guard = p.parseExpression(LOWEST)
					}
					var body *ast.BlockExpr
					if p.expect(token.FATARROW) {
						p.next()
						if p.curIs(token.LBRACE) {
							body = p.parseBlock()
						} else {
							e := p.parseExpression(LOWEST)
							body = &ast.BlockExpr{Statements: []ast.Statement{&ast.ExpressionStatement{Expr: e}}}
						}
					}
					arms = append(arms, ast.ReceiveArm{MessageName: msgName, Params: params, Guard: guard, Body: body})
					if p.peekIs(token.COMMA) {
						p.next()
					}
					p.next()
				}
			}
		case p.curIs(token.HOOK):
			p.next()
			hookName := p.cur.Lexeme
			if p.expect(token.LBRACE) {
				blk := p.parseBlock()
				switch hookName {
				case "on_start":
					hooks.OnStart = blk
				case "on_stop":
					hooks.OnStop = blk
				case "on_error":
					hooks.OnError = blk
				case "on_restart":
					hooks.OnRestart = blk
				}
			}
		case p.curIs(token.IDENT):
			fname := p.cur.Lexeme
			var ftype ast.TypeNode
			var def ast.Expression
			if p.peekIs(token.COLON) {
				p.next()
				p.next()
				ftype = p.parseType()
			}
			if p.peekIs(token.ASSIGN) {
				p.next()
				p.next()
				def = p.parseExpression(LOWEST)
			}
			state = append(state, ast.StateField{Name: fname, TypeAnno: ftype, Default: def})
		}
		if p.peekIs(token.COMMA) || p.peekIs(token.SEMI) {
			p.next()
		}
		p.next()
	}
	return &ast.ActorDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1), Name: name, State: state, Arms: arms, Hooks: hooks, IsAsync: async}
}

// parseSupervisorDecl parses
//
//	supervisor Name {
//	    strategy one_for_one
//	    children [Counter, Logger]
//	}
func (p *Parser) parseSupervisorDecl() ast.Expression {
	tok := p.cur
	if !p.expect(token.IDENT) {
		return &ast.SupervisorDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	name := p.cur.Lexeme
	if !p.expect(token.LBRACE) {
		return &ast.SupervisorDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Name: name}
	}
	p.next()
	strategy := ""
	var children []string
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		switch p.cur.Lexeme {
		case "strategy":
			if p.peekIs(token.COLON) {
				p.next()
			}
			p.next()
			strategy = p.cur.Lexeme
		case "children":
			if p.peekIs(token.COLON) {
				p.next()
			}
			if p.expect(token.LBRACKET) {
				for !p.peekIs(token.RBRACKET) && !p.peekIs(token.EOF) {
					p.next()
					if p.curIs(token.IDENT) {
						children = append(children, p.cur.Lexeme)
					}
					if p.peekIs(token.COMMA) {
						p.next()
					}
				}
				p.next()
			}
		default:
			p.errorf("unexpected token %q in supervisor body", p.cur.Lexeme)
		}
		if p.peekIs(token.COMMA) || p.peekIs(token.SEMI) {
			p.next()
		}
		p.next()
	}
	return &ast.SupervisorDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1), Name: name, Strategy: strategy, Children: children}
}

func (p *Parser) parseStructDecl() ast.Expression {
	return p.parseStructDeclFlags(false)
}

func (p *Parser) parseStructDeclFlags(pub bool) ast.Expression {
	tok := p.cur
	if !p.expect(token.IDENT) {
		return &ast.StructDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	name := p.cur.Lexeme
	if !p.expect(token.LBRACE) {
		return &ast.StructDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Name: name, Pub: pub}
	}
	p.next()
	var fields []ast.StructField
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		fieldPub := false
		if p.curIs(token.PUB) {
			fieldPub = true
			p.next()
		}
		fname := p.cur.Lexeme
		var ftype ast.TypeNode
		var def ast.Expression
		if p.peekIs(token.COLON) {
			p.next()
			p.next()
			ftype = p.parseType()
		}
		if p.peekIs(token.ASSIGN) {
			p.next()
			p.next()
			def = p.parseExpression(LOWEST)
		}
		fields = append(fields, ast.StructField{Name: fname, TypeAnno: ftype, Default: def, Pub: fieldPub})
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	return &ast.StructDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1), Name: name, Fields: fields, Pub: pub}
}

func (p *Parser) parseEnumDecl() ast.Expression {
	return p.parseEnumDeclFlags(false)
}

func (p *Parser) parseEnumDeclFlags(pub bool) ast.Expression {
	tok := p.cur
	if !p.expect(token.IDENT) {
		return &ast.EnumDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	name := p.cur.Lexeme
	if !p.expect(token.LBRACE) {
		return &ast.EnumDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Name: name, Pub: pub}
	}
	p.next()
	var variants []ast.EnumVariant
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		vname := p.cur.Lexeme
		var fields []ast.StructField
		switch {
		case p.peekIs(token.LPAREN):
			p.next()
			idx := 0
			if !p.peekIs(token.RPAREN) {
				p.next()
				for {
					t := p.parseType()
					fields = append(fields, ast.StructField{Name: strconv.Itoa(idx), TypeAnno: t})
					idx++
					if p.peekIs(token.COMMA) {
						p.next()
						p.next()
						continue
					}
					break
				}
			}
			p.expect(token.RPAREN)
		case p.peekIs(token.LBRACE):
			p.next()
			if !p.peekIs(token.RBRACE) {
				p.next()
				for {
					fname := p.cur.Lexeme
					var ftype ast.TypeNode
					if p.expect(token.COLON) {
						p.next()
						ftype = p.parseType()
					}
					fields = append(fields, ast.StructField{Name: fname, TypeAnno: ftype})
					if p.peekIs(token.COMMA) {
						p.next()
						p.next()
						continue
					}
					break
				}
			}
			p.expect(token.RBRACE)
		}
		variants = append(variants, ast.EnumVariant{Name: vname, Fields: fields})
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	return &ast.EnumDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1), Name: name, Variants: variants, Pub: pub}
}

func (p *Parser) parseTraitDecl() ast.Expression {
	tok := p.cur
	if !p.expect(token.IDENT) {
		return &ast.TraitDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	name := p.cur.Lexeme
	if !p.expect(token.LBRACE) {
		return &ast.TraitDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Name: name}
	}
	p.next()
	var methods []ast.TraitMethodSig
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.FUN) {
			if p.expect(token.IDENT) {
				mname := p.cur.Lexeme
				var params []ast.Param
				if p.expect(token.LPAREN) {
					params = p.parseParamList()
				}
				var ret ast.TypeNode
				if p.peekIs(token.ARROW) {
					p.next()
					p.next()
					ret = p.parseType()
				}
				var def *ast.BlockExpr
				if p.peekIs(token.LBRACE) {
					p.next()
					def = p.parseBlock()
				}
				methods = append(methods, ast.TraitMethodSig{Name: mname, Params: params, ReturnType: ret, Default: def})
			}
		}
		if p.peekIs(token.SEMI) {
			p.next()
		}
		p.next()
	}
	return &ast.TraitDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1), Name: name, Methods: methods}
}

func (p *Parser) parseImplDecl() ast.Expression {
	tok := p.cur
	if !p.expect(token.IDENT) {
		return &ast.ImplDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	first := p.cur.Lexeme
	traitName := ""
	typeName := first
	if p.peekIs(token.FOR) {
		p.next()
		if p.expect(token.IDENT) {
			typeName = p.cur.Lexeme
			traitName = first
		}
	}
	if !p.expect(token.LBRACE) {
		return &ast.ImplDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), TraitName: traitName, TypeName: typeName}
	}
	p.next()
	var methods []*ast.FunctionDecl
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.FUN) {
			fn := p.parseFunctionDeclFlags(false, false).(*ast.FunctionDecl)
			methods = append(methods, fn)
		}
		p.next()
	}
	return &ast.ImplDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset+1), TraitName: traitName, TypeName: typeName, Methods: methods}
}

func (p *Parser) parseLetExpr() ast.Expression {
	tok := p.cur
	p.next()
	mutable := false
	if p.curIs(token.MUT) {
		mutable = true
		p.next()
	}
	pat := p.parsePattern()
	var typeAnno ast.TypeNode
	if p.peekIs(token.COLON) {
		p.next()
		p.next()
		typeAnno = p.parseType()
	}
	if !p.expect(token.ASSIGN) {
		return &ast.LetExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Pattern: pat, TypeAnno: typeAnno, Mutable: mutable}
	}
	p.next()
	value := p.parseExpression(LOWEST)
	return &ast.LetExpr{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Pattern: pat, TypeAnno: typeAnno, Value: value, Mutable: mutable}
}

func (p *Parser) parseImportDecl() ast.Statement {
	tok := p.cur
	if p.peekIs(token.LBRACE) {
		p.next()
		p.next()
		var names []string
		for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			names = append(names, p.cur.Lexeme)
			if p.peekIs(token.COMMA) {
				p.next()
				p.next()
				continue
			}
			p.next()
		}
		if p.peekIs(token.IDENT) && p.peek.Lexeme == "from" {
			p.next()
		}
		p.next()
		path := p.cur.Lexeme
		return &ast.ImportDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Names: names, Path: path}
	}
	p.next()
	path := p.cur.Lexeme
	var alias string
	if p.peekIs(token.AS) {
		p.next()
		p.next()
		alias = p.cur.Lexeme
	}
	return &ast.ImportDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Path: path, Alias: alias}
}

func (p *Parser) parseExportDecl() ast.Statement {
	tok := p.cur
	if p.peekIs(token.STAR) {
		p.next()
		return &ast.ExportDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), All: true}
	}
	p.next()
	names := []string{p.cur.Lexeme}
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		names = append(names, p.cur.Lexeme)
	}
	return &ast.ExportDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Names: names}
}

func (p *Parser) parseModuleDecl() ast.Statement {
	tok := p.cur
	if !p.expect(token.IDENT) {
		return &ast.ModuleDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset)}
	}
	name := p.cur.Lexeme
	if !p.expect(token.LBRACE) {
		return &ast.ModuleDecl{Base: ast.NewBase(tok, tok.Offset, p.cur.Offset), Name: name}
	}
	p.next()
	var body []ast.Statement
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseTopLevelStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
		p.next()
	}
	end := p.cur.Offset + 1
	if p.peekIs(token.SEMI) {
		p.next()
	}
	return &ast.ModuleDecl{Base: ast.NewBase(tok, tok.Offset, end), Name: name, Body: body}
}
