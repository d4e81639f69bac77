// Package parser builds an internal/ast tree from an internal/lexer token
// stream via straightforward recursive descent plus a small Pratt-style
// expression parser. Kept intentionally light (no type inference, no
// pattern matching) since lexer/parser sit outside the six core runtime
// components; structure (prefix/infix parse function tables, precedence
// climbing, per-statement-kind parse methods) is modeled on funxy's
// internal/parser/parser.go and expressions.go.
package parser

import (
	"fmt"
	"strconv"

	"github.com/mcgru/gulfmex/internal/ast"
	"github.com/mcgru/gulfmex/internal/config"
	"github.com/mcgru/gulfmex/internal/diagnostics"
	"github.com/mcgru/gulfmex/internal/lexer"
	"github.com/mcgru/gulfmex/internal/token"
)

const (
	_ int = iota
	LOWEST
	OR_PREC
	AND_PREC
	EQUALS
	LESSGREATER
	SUM
	PRODUCT
	PREFIX
	CALL_PREC
	INDEX_PREC
)

var precedences = map[token.Type]int{
	token.OR:       OR_PREC,
	token.AND:      AND_PREC,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LE:       LESSGREATER,
	token.GE:       LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LPAREN:   CALL_PREC,
	token.LBRACKET: INDEX_PREC,
	token.DOT:      INDEX_PREC,
}

type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	Errors []*diagnostics.Error
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.Errors = append(p.Errors, diagnostics.NewPhase(diagnostics.PhaseParser, diagnostics.ParseSyntax, tok, format, args...))
}

func (p *Parser) expect(t token.Type) token.Token {
	tok := p.cur
	if p.cur.Type != t {
		p.errorf(p.cur, "expected %s, got %s (%q)", t, p.cur.Type, p.cur.Lexeme)
	} else {
		p.advance()
	}
	return tok
}

// ParseProgram parses the whole token stream into an *ast.Program.
func (p *Parser) ParseProgram() *ast.Program {
	startTok := p.cur
	var stmts []ast.Statement
	for p.cur.Type != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return ast.NewProgram(startTok, stmts)
}

// terminator consumes the trailing run of '!'/'?' tokens that ends every
// statement, returning (confidence, debug). confidence starts at
// config.DefaultConfidence and is lowered by one per '?'; debug is
// len(run of '!') - 1, or 0 if no '!' appeared.
func (p *Parser) terminator() (confidence int, debug int) {
	confidence = config.DefaultConfidence
	bangs := 0
	saw := false
	for p.cur.Type == token.BANG || p.cur.Type == token.QUESTION {
		saw = true
		if p.cur.Type == token.BANG {
			bangs += p.cur.Literal.(int)
		} else {
			confidence -= p.cur.Literal.(int)
		}
		p.advance()
	}
	if !saw {
		p.errorf(p.cur, "expected statement terminator ('!' or '?'), got %s", p.cur.Type)
	}
	if bangs > 0 {
		debug = bangs - 1
	}
	return confidence, debug
}

func (p *Parser) parseBlock() *ast.BlockStatement {
	startTok := p.expect(token.LBRACE)
	var stmts []ast.Statement
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RBRACE)
	return ast.NewBlockStatement(startTok, stmts)
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.CONST, token.VAR:
		return p.parseDeclaration()
	case token.WHEN:
		return p.parseWhen()
	case token.IF:
		return p.parseConditional()
	case token.AFTER:
		return p.parseAfter()
	case token.ASYNC, token.FUNCTION:
		return p.parseFunctionDefinition()
	case token.CLASS, token.CLASSNAME:
		return p.parseClassDeclaration()
	case token.RETURN:
		return p.parseReturn()
	case token.DELETE:
		return p.parseDelete()
	case token.REVERSE:
		return p.parseReverse()
	case token.IMPORT:
		return p.parseImport()
	case token.EXPORT:
		return p.parseExport()
	default:
		return p.parseAssignmentOrExpression()
	}
}

func (p *Parser) parseDeclaration() ast.Statement {
	startTok := p.cur
	first := string(p.cur.Type)
	firstWord := p.cur.Lexeme
	p.advance()
	if p.cur.Type != token.CONST && p.cur.Type != token.VAR {
		p.errorf(p.cur, "expected second 'const'/'var' modifier, got %s", p.cur.Type)
	}
	secondWord := p.cur.Lexeme
	p.advance()
	_ = first

	var lifetime *ast.LifetimeSpec
	if p.cur.Type == token.LT {
		p.advance()
		lifetime = &ast.LifetimeSpec{}
		switch p.cur.Type {
		case token.NUMBER:
			n, _ := strconv.Atoi(p.cur.Lexeme)
			lifetime.Lines = n
			p.advance()
		case token.STRING:
			lifetime.IsTemporal = true
			lifetime.DurationMS = parseDurationMS(p.cur.Lexeme)
			p.advance()
		default:
			p.errorf(p.cur, "expected a line count or duration string inside '<...>'")
		}
		p.expect(token.GT)
	}

	name := ast.NewIdentifier(p.expect(token.IDENT))
	p.expect(token.ASSIGN)
	value := p.parseExpression(LOWEST)
	confidence, _ := p.terminator()

	return &ast.DeclarationStatement{
		Tok:        startTok,
		Modifiers:  ast.Modifiers{First: firstWord, Second: secondWord},
		Name:       name,
		Lifetime:   lifetime,
		Value:      value,
		Confidence: confidence,
	}
}

// parseDurationMS parses "500ms" / "1s" into milliseconds.
func parseDurationMS(s string) int64 {
	if len(s) > 2 && s[len(s)-2:] == "ms" {
		n, _ := strconv.ParseInt(s[:len(s)-2], 10, 64)
		return n
	}
	if len(s) > 1 && s[len(s)-1] == 's' {
		n, _ := strconv.ParseFloat(s[:len(s)-1], 64)
		return int64(n * 1000)
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// bareCallNext reports whether peek can open a paren-free call argument
// list, i.e. `name arg1, arg2!` with no parentheses around the args -- the
// Language's native call syntax (gulfofmexico's fix_function_calls.py
// documents the equivalence `name(args)` == `name args`). Token types that
// already have an infix parse function (LPAREN, LBRACKET, DOT, operators,
// ASSIGN) are excluded here since those productions already cover them,
// except MINUS, which is taken as a leading unary minus (`f -1!` and
// `x - 1!` both parse as a call with a negated argument).
func (p *Parser) bareCallNext() bool {
	switch p.peek.Type {
	case token.NUMBER, token.STRING, token.IDENT, token.TRUE, token.FALSE,
		token.MAYBE, token.UNDEFINED, token.MINUS, token.NOT, token.AWAIT,
		token.LBRACE, token.ASYNC, token.FUNCTION:
		return true
	}
	return false
}

func (p *Parser) parseBareCall() ast.Statement {
	startTok := p.cur
	fn := ast.NewIdentifier(p.cur)
	p.advance()

	args := []ast.Expression{p.parseExpression(LOWEST)}
	for p.cur.Type == token.COMMA {
		p.advance()
		args = append(args, p.parseExpression(LOWEST))
	}
	p.terminator()

	call := &ast.CallExpression{Tok: startTok, Function: fn, Arguments: args}
	return &ast.ExpressionStatement{Tok: startTok, Expression: call}
}

func (p *Parser) parseAssignmentOrExpression() ast.Statement {
	if p.cur.Type == token.IDENT && p.bareCallNext() {
		return p.parseBareCall()
	}

	startTok := p.cur
	expr := p.parseExpression(LOWEST)

	if p.cur.Type == token.ASSIGN {
		name, indexes, err := decomposeAssignTarget(expr)
		if err != nil {
			p.errorf(startTok, "%s", err.Error())
		}
		p.advance()
		value := p.parseExpression(LOWEST)
		confidence, _ := p.terminator()
		return &ast.AssignmentStatement{
			Tok:        startTok,
			Name:       name,
			Indexes:    indexes,
			Value:      value,
			Confidence: confidence,
		}
	}

	p.terminator()
	return &ast.ExpressionStatement{Tok: startTok, Expression: expr}
}

// decomposeAssignTarget peels a chain of IndexExpression nodes rooted at an
// Identifier into (name, indexes-in-source-order), as an assignment target
// like `xs[0.5]` or `m["k"]` requires (spec.md §4.5 Assignment contract).
func decomposeAssignTarget(expr ast.Expression) (*ast.Identifier, []ast.Expression, error) {
	var indexes []ast.Expression
	for {
		switch e := expr.(type) {
		case *ast.Identifier:
			// reverse indexes (collected innermost-first)
			for i, j := 0, len(indexes)-1; i < j; i, j = i+1, j-1 {
				indexes[i], indexes[j] = indexes[j], indexes[i]
			}
			return e, indexes, nil
		case *ast.IndexExpression:
			indexes = append(indexes, e.Index)
			expr = e.Receiver
		default:
			return nil, nil, fmt.Errorf("invalid assignment target")
		}
	}
}

func (p *Parser) parseWhen() ast.Statement {
	startTok := p.expect(token.WHEN)
	cond := p.parseExpression(LOWEST)
	body := p.parseBlock()
	p.terminator()
	return &ast.WhenStatement{Tok: startTok, Condition: cond, Body: body}
}

func (p *Parser) parseConditional() ast.Statement {
	startTok := p.expect(token.IF)
	cond := p.parseExpression(LOWEST)
	then := p.parseBlock()
	var els *ast.BlockStatement
	if p.cur.Type == token.ELSE {
		p.advance()
		els = p.parseBlock()
	}
	p.terminator()
	return &ast.ConditionalStatement{Tok: startTok, Condition: cond, Then: then, Else: els}
}

func (p *Parser) parseAfter() ast.Statement {
	startTok := p.expect(token.AFTER)
	stmt := &ast.AfterStatement{Tok: startTok}
	switch p.cur.Type {
	case token.NUMBER:
		n, _ := strconv.Atoi(p.cur.Lexeme)
		stmt.Lines = n
		p.advance()
	case token.STRING:
		stmt.IsTemporal = true
		stmt.DurationMS = parseDurationMS(p.cur.Lexeme)
		p.advance()
	default:
		p.errorf(p.cur, "expected a line count or duration string after 'after'")
	}
	stmt.Body = p.parseBlock()
	p.terminator()
	return stmt
}

func (p *Parser) parseParamList() []*ast.Parameter {
	p.expect(token.LPAREN)
	var params []*ast.Parameter
	for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
		params = append(params, &ast.Parameter{Name: ast.NewIdentifier(p.expect(token.IDENT))})
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseFunctionDefinition() ast.Statement {
	startTok := p.cur
	isAsync := false
	if p.cur.Type == token.ASYNC {
		isAsync = true
		p.advance()
	}
	p.expect(token.FUNCTION)
	name := ast.NewIdentifier(p.expect(token.IDENT))
	params := p.parseParamList()
	body := p.parseBlock()
	p.terminator()
	return &ast.FunctionDefinitionStatement{
		Tok:        startTok,
		Name:       name,
		Parameters: params,
		Body:       body,
		IsAsync:    isAsync,
	}
}

func (p *Parser) parseClassDeclaration() ast.Statement {
	startTok := p.cur
	p.advance() // CLASS or CLASSNAME
	name := ast.NewIdentifier(p.expect(token.IDENT))
	body := p.parseBlock()
	p.terminator()
	return &ast.ClassDeclarationStatement{Tok: startTok, Name: name, Members: body.Statements}
}

func (p *Parser) parseReturn() ast.Statement {
	startTok := p.expect(token.RETURN)
	var value ast.Expression
	if p.cur.Type != token.BANG && p.cur.Type != token.QUESTION {
		value = p.parseExpression(LOWEST)
	}
	p.terminator()
	return &ast.ReturnStatement{Tok: startTok, Value: value}
}

func (p *Parser) parseDelete() ast.Statement {
	startTok := p.expect(token.DELETE)
	name := ast.NewIdentifier(p.cur)
	p.advance()
	p.terminator()
	return &ast.DeleteStatement{Tok: startTok, Name: name}
}

func (p *Parser) parseReverse() ast.Statement {
	startTok := p.expect(token.REVERSE)
	p.terminator()
	return &ast.ReverseStatement{Tok: startTok}
}

func (p *Parser) parseIdentList() []*ast.Identifier {
	var names []*ast.Identifier
	names = append(names, ast.NewIdentifier(p.expect(token.IDENT)))
	for p.cur.Type == token.COMMA {
		p.advance()
		names = append(names, ast.NewIdentifier(p.expect(token.IDENT)))
	}
	return names
}

func (p *Parser) parseImport() ast.Statement {
	startTok := p.expect(token.IMPORT)
	var names []*ast.Identifier
	if p.cur.Type == token.ASTERISK {
		p.advance()
	} else {
		names = p.parseIdentList()
	}
	p.expect(token.FROM)
	srcTok := p.expect(token.STRING)
	source := &ast.StringLiteral{Tok: srcTok, Value: srcTok.Lexeme}
	p.terminator()
	return &ast.ImportStatement{Tok: startTok, Names: names, Source: source}
}

func (p *Parser) parseExport() ast.Statement {
	startTok := p.expect(token.EXPORT)
	names := p.parseIdentList()
	p.terminator()
	return &ast.ExportStatement{Tok: startTok, Names: names}
}
