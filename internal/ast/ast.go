// Package ast defines the statement/expression trees consumed by the
// statement executor (S) and expression evaluator (E). Producing this tree
// is, per the specification, the lexer/parser's job and not one of the six
// core components; internal/parser builds these nodes.
package ast

import "github.com/mcgru/gulfmex/internal/token"

// Node is the base of every AST node.
type Node interface {
	GetToken() token.Token
}

// Statement is a unit the statement executor (S) dispatches on.
type Statement interface {
	Node
	statementNode()
}

// Expression is a unit the expression evaluator (E) reduces to a value.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node: a sequence of top-level statements.
type Program struct {
	Tok        token.Token
	Statements []Statement
}

func (p *Program) GetToken() token.Token { return p.Tok }

func NewProgram(tok token.Token, stmts []Statement) *Program {
	return &Program{Tok: tok, Statements: stmts}
}

// BlockStatement is a `{ ... }` sequence belonging to a function, class,
// conditional, when, or after body. `reverse` mutates Statements in place.
type BlockStatement struct {
	Tok        token.Token
	Statements []Statement
}

func (b *BlockStatement) GetToken() token.Token { return b.Tok }
func (*BlockStatement) statementNode()          {}

func NewBlockStatement(tok token.Token, stmts []Statement) *BlockStatement {
	return &BlockStatement{Tok: tok, Statements: stmts}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// LifetimeSpec carries a declaration's optional `<N>` / `<"50ms">` lifetime
// annotation. Exactly one of Lines/Duration applies; IsTemporal selects which.
type LifetimeSpec struct {
	Lines      int
	IsTemporal bool
	DurationMS int64
}

// Modifiers is the pair of `const`/`var` keywords a declaration carries,
// e.g. `const const`, `var var`, `const var`, `var const`.
type Modifiers struct {
	First  string // "const" | "var"
	Second string // "const" | "var"
}

type DeclarationStatement struct {
	Tok        token.Token
	Modifiers  Modifiers
	Name       *Identifier
	Lifetime   *LifetimeSpec // nil when absent
	Value      Expression
	Confidence int
}

func (d *DeclarationStatement) GetToken() token.Token { return d.Tok }
func (*DeclarationStatement) statementNode()          {}

type AssignmentStatement struct {
	Tok        token.Token
	Name       *Identifier
	Indexes    []Expression // empty for a bare `name = expr`
	Value      Expression
	Confidence int
}

func (a *AssignmentStatement) GetToken() token.Token { return a.Tok }
func (*AssignmentStatement) statementNode()          {}

type ConditionalStatement struct {
	Tok       token.Token
	Condition Expression
	Then      *BlockStatement
	Else      *BlockStatement // nil when absent
}

func (c *ConditionalStatement) GetToken() token.Token { return c.Tok }
func (*ConditionalStatement) statementNode()          {}

type WhenStatement struct {
	Tok       token.Token
	Condition Expression
	Body      *BlockStatement
}

func (w *WhenStatement) GetToken() token.Token { return w.Tok }
func (*WhenStatement) statementNode()          {}

type AfterStatement struct {
	Tok        token.Token
	Lines      int // used when !IsTemporal
	IsTemporal bool
	DurationMS int64
	Body       *BlockStatement
}

func (a *AfterStatement) GetToken() token.Token { return a.Tok }
func (*AfterStatement) statementNode()          {}

type Parameter struct {
	Name *Identifier
}

type FunctionDefinitionStatement struct {
	Tok        token.Token
	Name       *Identifier
	Parameters []*Parameter
	Body       *BlockStatement
	IsAsync    bool
}

func (f *FunctionDefinitionStatement) GetToken() token.Token { return f.Tok }
func (*FunctionDefinitionStatement) statementNode()          {}

type ClassDeclarationStatement struct {
	Tok     token.Token
	Name    *Identifier
	Members []Statement // FunctionDefinitionStatement / DeclarationStatement
}

func (c *ClassDeclarationStatement) GetToken() token.Token { return c.Tok }
func (*ClassDeclarationStatement) statementNode()          {}

type ReturnStatement struct {
	Tok   token.Token
	Value Expression // nil => Undefined
}

func (r *ReturnStatement) GetToken() token.Token { return r.Tok }
func (*ReturnStatement) statementNode()          {}

type DeleteStatement struct {
	Tok  token.Token
	Name *Identifier
}

func (d *DeleteStatement) GetToken() token.Token { return d.Tok }
func (*DeleteStatement) statementNode()          {}

// ReverseStatement reverses the remaining statements of the directly
// enclosing block (spec.md §9 Open Question b).
type ReverseStatement struct {
	Tok token.Token
}

func (r *ReverseStatement) GetToken() token.Token { return r.Tok }
func (*ReverseStatement) statementNode()          {}

type ImportStatement struct {
	Tok    token.Token
	Names  []*Identifier // empty => import everything exported
	Source *StringLiteral
}

func (i *ImportStatement) GetToken() token.Token { return i.Tok }
func (*ImportStatement) statementNode()          {}

type ExportStatement struct {
	Tok   token.Token
	Names []*Identifier
}

func (e *ExportStatement) GetToken() token.Token { return e.Tok }
func (*ExportStatement) statementNode()          {}

type ExpressionStatement struct {
	Tok        token.Token
	Expression Expression
}

func (e *ExpressionStatement) GetToken() token.Token { return e.Tok }
func (*ExpressionStatement) statementNode()          {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

type Identifier struct {
	Tok   token.Token
	Value string
}

func (i *Identifier) GetToken() token.Token { return i.Tok }
func (*Identifier) expressionNode()         {}

func NewIdentifier(tok token.Token) *Identifier { return &Identifier{Tok: tok, Value: tok.Lexeme} }

type NumberLiteral struct {
	Tok   token.Token
	Value float64
}

func (n *NumberLiteral) GetToken() token.Token { return n.Tok }
func (*NumberLiteral) expressionNode()         {}

type StringLiteral struct {
	Tok   token.Token
	Value string
}

func (s *StringLiteral) GetToken() token.Token { return s.Tok }
func (*StringLiteral) expressionNode()         {}

// BooleanLiteral is three-valued: nil means `maybe`.
type BooleanLiteral struct {
	Tok   token.Token
	Value *bool
}

func (b *BooleanLiteral) GetToken() token.Token { return b.Tok }
func (*BooleanLiteral) expressionNode()         {}

type UndefinedLiteral struct{ Tok token.Token }

func (u *UndefinedLiteral) GetToken() token.Token { return u.Tok }
func (*UndefinedLiteral) expressionNode()         {}

// BlankLiteral is the bare `""` token bound to the distinguished
// empty-argument value (BlankSpecial in the value model).
type BlankLiteral struct{ Tok token.Token }

func (b *BlankLiteral) GetToken() token.Token { return b.Tok }
func (*BlankLiteral) expressionNode()         {}

type ListLiteral struct {
	Tok      token.Token
	Elements []Expression
}

func (l *ListLiteral) GetToken() token.Token { return l.Tok }
func (*ListLiteral) expressionNode()         {}

type MapPair struct {
	Key   Expression
	Value Expression
}

type MapLiteral struct {
	Tok   token.Token
	Pairs []MapPair
}

func (m *MapLiteral) GetToken() token.Token { return m.Tok }
func (*MapLiteral) expressionNode()         {}

type FunctionLiteral struct {
	Tok        token.Token
	Parameters []*Parameter
	Body       *BlockStatement
	IsAsync    bool
}

func (f *FunctionLiteral) GetToken() token.Token { return f.Tok }
func (*FunctionLiteral) expressionNode()         {}

type PrefixExpression struct {
	Tok      token.Token
	Operator string
	Right    Expression
}

func (p *PrefixExpression) GetToken() token.Token { return p.Tok }
func (*PrefixExpression) expressionNode()         {}

type InfixExpression struct {
	Tok      token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (i *InfixExpression) GetToken() token.Token { return i.Tok }
func (*InfixExpression) expressionNode()         {}

// IndexExpression is `receiver[index]`.
type IndexExpression struct {
	Tok      token.Token
	Receiver Expression
	Index    Expression
}

func (i *IndexExpression) GetToken() token.Token { return i.Tok }
func (*IndexExpression) expressionNode()         {}

// MemberExpression is `receiver.member` (namespace_lookup, §4.1).
type MemberExpression struct {
	Tok      token.Token
	Receiver Expression
	Member   string
}

func (m *MemberExpression) GetToken() token.Token { return m.Tok }
func (*MemberExpression) expressionNode()         {}

type CallExpression struct {
	Tok       token.Token
	Function  Expression
	Arguments []Expression
}

func (c *CallExpression) GetToken() token.Token { return c.Tok }
func (*CallExpression) expressionNode()         {}

type AwaitExpression struct {
	Tok   token.Token
	Value Expression
}

func (a *AwaitExpression) GetToken() token.Token { return a.Tok }
func (*AwaitExpression) expressionNode()         {}
