package parser

import (
	"strconv"

	"github.com/mcgru/gulfmex/internal/ast"
	"github.com/mcgru/gulfmex/internal/token"
)

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

func (p *Parser) prefixFn() prefixParseFn {
	switch p.cur.Type {
	case token.IDENT:
		return p.parseIdentifier
	case token.NUMBER:
		return p.parseNumberLiteral
	case token.STRING:
		return p.parseStringLiteral
	case token.TRUE:
		return p.parseBooleanLiteral
	case token.FALSE:
		return p.parseBooleanLiteral
	case token.MAYBE:
		return p.parseMaybeLiteral
	case token.UNDEFINED:
		return p.parseUndefinedLiteral
	case token.MINUS:
		return p.parsePrefixExpression
	case token.NOT:
		return p.parsePrefixExpression
	case token.AWAIT:
		return p.parseAwaitExpression
	case token.LPAREN:
		return p.parseGroupedExpression
	case token.LBRACKET:
		return p.parseListLiteral
	case token.LBRACE:
		return p.parseMapLiteral
	case token.ASYNC, token.FUNCTION:
		return p.parseFunctionLiteral
	}
	return nil
}

func (p *Parser) infixFn(t token.Type) infixParseFn {
	switch t {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
		token.EQ, token.NOT_EQ, token.LT, token.GT, token.LE, token.GE,
		token.AND, token.OR:
		return p.parseInfixExpression
	case token.LBRACKET:
		return p.parseIndexExpression
	case token.DOT:
		return p.parseMemberExpression
	case token.LPAREN:
		return p.parseCallExpression
	}
	return nil
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFn()
	if prefix == nil {
		p.errorf(p.cur, "no prefix parse function for %s (%q)", p.cur.Type, p.cur.Lexeme)
		p.advance()
		return nil
	}
	left := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixFn(p.cur.Type)
		if infix == nil {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.cur
	p.advance()
	return ast.NewIdentifier(tok)
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.cur
	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		p.errorf(tok, "could not parse %q as a number", tok.Lexeme)
	}
	p.advance()
	return &ast.NumberLiteral{Tok: tok, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.cur
	p.advance()
	if tok.Lexeme == "" {
		return &ast.BlankLiteral{Tok: tok}
	}
	return &ast.StringLiteral{Tok: tok, Value: tok.Lexeme}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	tok := p.cur
	v := tok.Type == token.TRUE
	p.advance()
	return &ast.BooleanLiteral{Tok: tok, Value: &v}
}

func (p *Parser) parseMaybeLiteral() ast.Expression {
	tok := p.cur
	p.advance()
	return &ast.BooleanLiteral{Tok: tok, Value: nil}
}

func (p *Parser) parseUndefinedLiteral() ast.Expression {
	tok := p.cur
	p.advance()
	return &ast.UndefinedLiteral{Tok: tok}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.cur
	op := tok.Lexeme
	if tok.Type == token.NOT {
		op = "not"
	}
	p.advance()
	right := p.parseExpression(PREFIX)
	return &ast.PrefixExpression{Tok: tok, Operator: op, Right: right}
}

func (p *Parser) parseAwaitExpression() ast.Expression {
	tok := p.cur
	p.advance()
	val := p.parseExpression(PREFIX)
	return &ast.AwaitExpression{Tok: tok, Value: val}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.advance() // consume '('
	expr := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	return expr
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.cur
	p.advance() // consume '['
	var elems []ast.Expression
	for p.cur.Type != token.RBRACKET && p.cur.Type != token.EOF {
		elems = append(elems, p.parseExpression(LOWEST))
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RBRACKET)
	return &ast.ListLiteral{Tok: tok, Elements: elems}
}

func (p *Parser) parseMapLiteral() ast.Expression {
	tok := p.cur
	p.advance() // consume '{'
	var pairs []ast.MapPair
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		key := p.parseExpression(LOWEST)
		p.expect(token.COLON)
		val := p.parseExpression(LOWEST)
		pairs = append(pairs, ast.MapPair{Key: key, Value: val})
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return &ast.MapLiteral{Tok: tok, Pairs: pairs}
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.cur
	isAsync := false
	if p.cur.Type == token.ASYNC {
		isAsync = true
		p.advance()
	}
	p.expect(token.FUNCTION)
	params := p.parseParamList()
	body := p.parseBlock()
	return &ast.FunctionLiteral{Tok: tok, Parameters: params, Body: body, IsAsync: isAsync}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	op := tok.Lexeme
	switch tok.Type {
	case token.AND:
		op = "and"
	case token.OR:
		op = "or"
	}
	prec := p.peekPrecedence()
	p.advance()
	right := p.parseExpression(prec)
	return &ast.InfixExpression{Tok: tok, Left: left, Operator: op, Right: right}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	p.advance() // consume '['
	idx := p.parseExpression(LOWEST)
	p.expect(token.RBRACKET)
	return &ast.IndexExpression{Tok: tok, Receiver: left, Index: idx}
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	p.advance() // consume '.'
	member := p.expect(token.IDENT)
	return &ast.MemberExpression{Tok: tok, Receiver: left, Member: member.Lexeme}
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	tok := p.cur
	p.advance() // consume '('
	var args []ast.Expression
	for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
		args = append(args, p.parseExpression(LOWEST))
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return &ast.CallExpression{Tok: tok, Function: fn, Arguments: args}
}
