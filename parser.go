// parser.go — recursive-descent parser producing the typed expression tree.
//
// The grammar is a semicolon-separated sequence of expressions:
//
//	program    := (expression (";" expression)* ";"?)? EOF
//	expression := "let" ID "=" expression
//	            | assignment
//	assignment := equality ("=" expression)?        // right-assoc; target
//	                                                // validity is the
//	                                                // engine's business
//	equality   := additive (("==") additive)*
//	additive   := term (("+" | "-") term)*
//	term       := primary (("*" | "/") primary)*
//	primary    := NUMBER | STRING | ID | "(" expression ")"
//
// Node kinds are exactly the set the engine consumes: Program,
// LetVariableDeclaration, NumberLiteral, StringLiteral, Parenthesized,
// Identifier, BinaryOp. Every parse failure is a *ParseError carrying the
// 1-based line and 0-based column of the offending token.
//
// ReorderExpression lives here too: a pure, idempotent rotation that
// restores multiplicative-over-additive grouping in a mis-nested BinaryOp
// tree. The engine applies it to each operand before arithmetic so that
// evaluation order never depends on how a tree was nested by its producer.
package jslet

import (
	"fmt"
	"strconv"
)

////////////////////////////////////////////////////////////////////////////////
//                                EXPRESSION TREE
////////////////////////////////////////////////////////////////////////////////

// Expression is the closed interface over the seven node kinds.
type Expression interface {
	String() string
	expressionNode()
}

// Program is the root node: an ordered list of expressions. The value of a
// program is the value of its last expression (undefined when empty).
type Program struct {
	Expressions []Expression
}

// LetVariableDeclaration binds Name to the value of Initializer in the
// innermost scope.
type LetVariableDeclaration struct {
	Name        string
	Initializer Expression
}

// NumberLiteral is a float64 literal.
type NumberLiteral struct {
	Value float64
}

// StringLiteral is a decoded string literal.
type StringLiteral struct {
	Value string
}

// Parenthesized wraps an explicitly grouped expression. It is a pure
// pass-through for evaluation and an opaque boundary for reordering.
type Parenthesized struct {
	Expression Expression
}

// Identifier is a name resolved through the scope chain.
type Identifier struct {
	Name string
}

// BinaryOp applies Op to Left and Right.
type BinaryOp struct {
	Left  Expression
	Op    Operator
	Right Expression
}

// Operator carries the kind of a binary operator token.
type Operator struct {
	Kind   TokenType // one of PLUS, MINUS, MULT, DIV, EQ, ASSIGN
	Lexeme string
}

// IsEquals reports whether this is the assignment operator "=".
func (op Operator) IsEquals() bool { return op.Kind == ASSIGN }

func (*Program) expressionNode()                {}
func (*LetVariableDeclaration) expressionNode() {}
func (*NumberLiteral) expressionNode()          {}
func (*StringLiteral) expressionNode()          {}
func (*Parenthesized) expressionNode()          {}
func (*Identifier) expressionNode()             {}
func (*BinaryOp) expressionNode()               {}

func (p *Program) String() string {
	out := ""
	for i, e := range p.Expressions {
		if i > 0 {
			out += "; "
		}
		out += e.String()
	}
	return out
}

func (d *LetVariableDeclaration) String() string {
	return fmt.Sprintf("let %s = %s", d.Name, d.Initializer.String())
}

func (n *NumberLiteral) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (s *StringLiteral) String() string { return strconv.Quote(s.Value) }

func (p *Parenthesized) String() string { return "(" + p.Expression.String() + ")" }

func (i *Identifier) String() string { return i.Name }

func (b *BinaryOp) String() string {
	return fmt.Sprintf("%s %s %s", b.Left.String(), b.Op.Lexeme, b.Right.String())
}

// UnwrapName extracts the bound name when expr is an identifier. The second
// result is false for every other node kind; callers must treat that as a
// failure, not a panic.
func UnwrapName(expr Expression) (string, bool) {
	if id, ok := expr.(*Identifier); ok {
		return id.Name, true
	}
	return "", false
}

////////////////////////////////////////////////////////////////////////////////
//                                    PARSER
////////////////////////////////////////////////////////////////////////////////

// Parser consumes a token stream produced by the lexer.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser over tokens (which must end with EOF, as the
// lexer guarantees).
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseSource is a convenience wrapper: lex src and parse the result.
func ParseSource(src string) (*Program, error) {
	tokens, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).ParseProgram()
}

// ParseProgram parses the whole token stream into a Program or returns the
// first *ParseError.
func (p *Parser) ParseProgram() (*Program, error) {
	program := &Program{}
	for !p.check(EOF) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		program.Expressions = append(program.Expressions, expr)
		if !p.match(SEMICOLON) {
			break
		}
	}
	if !p.check(EOF) {
		return nil, p.errAtCurrent(fmt.Sprintf("expected ';' or end of input, got %s", describeToken(p.current())))
	}
	return program, nil
}

func (p *Parser) parseExpression() (Expression, error) {
	if p.match(LET) {
		return p.parseLetDeclaration()
	}
	return p.parseAssignment()
}

func (p *Parser) parseLetDeclaration() (Expression, error) {
	name := p.current()
	if name.Type != ID {
		return nil, p.errAtCurrent(fmt.Sprintf("expected identifier after 'let', got %s", describeToken(name)))
	}
	p.advance()
	if !p.match(ASSIGN) {
		return nil, p.errAtCurrent(fmt.Sprintf("expected '=' in let declaration, got %s", describeToken(p.current())))
	}
	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &LetVariableDeclaration{Name: name.Literal.(string), Initializer: init}, nil
}

// parseAssignment parses `=` right-associatively with the loosest binding.
// Any expression is accepted as a target here; the engine rejects
// non-identifier targets with its own error condition.
func (p *Parser) parseAssignment() (Expression, error) {
	left, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if p.check(ASSIGN) {
		op := p.advance()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Left: left, Op: Operator{Kind: op.Type, Lexeme: op.Lexeme}, Right: right}, nil
	}
	return left, nil
}

// parseBinary is precedence climbing over the left-associative operators.
func (p *Parser) parseBinary(minPrec int) (Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.current()
		prec := operatorPrecedence(tok.Type)
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Left: left, Op: Operator{Kind: tok.Type, Lexeme: tok.Lexeme}, Right: right}
	}
}

func (p *Parser) parsePrimary() (Expression, error) {
	tok := p.current()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return &NumberLiteral{Value: tok.Literal.(float64)}, nil
	case STRING:
		p.advance()
		return &StringLiteral{Value: tok.Literal.(string)}, nil
	case ID:
		p.advance()
		return &Identifier{Name: tok.Literal.(string)}, nil
	case LROUND:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.match(RROUND) {
			return nil, p.errAtCurrent(fmt.Sprintf("expected ')', got %s", describeToken(p.current())))
		}
		return &Parenthesized{Expression: inner}, nil
	default:
		return nil, p.errAtCurrent(fmt.Sprintf("expected expression, got %s", describeToken(tok)))
	}
}

// operatorPrecedence returns the binding power of a non-assignment binary
// operator, or 0 for anything else. Higher binds tighter.
func operatorPrecedence(tt TokenType) int {
	switch tt {
	case EQ:
		return 1
	case PLUS, MINUS:
		return 2
	case MULT, DIV:
		return 3
	default:
		return 0
	}
}

// ----- token cursor -----

func (p *Parser) current() Token { return p.tokens[p.pos] }

func (p *Parser) check(tt TokenType) bool { return p.current().Type == tt }

func (p *Parser) advance() Token {
	tok := p.current()
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func describeToken(tok Token) string {
	if tok.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

// ----- errors -----

type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

func (p *Parser) errAtCurrent(msg string) error {
	tok := p.current()
	return &ParseError{Line: tok.Line, Col: tok.Col, Msg: msg}
}

////////////////////////////////////////////////////////////////////////////////
//                             PRECEDENCE REORDERING
////////////////////////////////////////////////////////////////////////////////

// ReorderExpression restores correct operator-precedence grouping in a
// BinaryOp tree. It is pure (the input tree is never mutated), deterministic,
// and idempotent: a correctly grouped tree comes back structurally unchanged.
//
// The transformation rotates mis-nestings in both directions: a right
// child whose operator binds looser than the outer operator, e.g. a tree
// shaped like 2 * (3 + 4) produced from the source "2 * 3 + 4", becomes
// (2 * 3) + 4; and symmetrically a left child whose operator binds looser,
// e.g. (2 + 3) * 4 produced by nesting "2 + 3 * 4" left-associatively at
// one level, becomes 2 + (3 * 4). Equal precedence never rotates, so
// left-associative chains like 10 - 1 - 2 keep their grouping.
// Parenthesized nodes are opaque: explicit grouping is never rearranged.
// Assignment never takes part in a rotation.
func ReorderExpression(expr Expression) Expression {
	bin, ok := expr.(*BinaryOp)
	if !ok {
		return expr
	}

	left := ReorderExpression(bin.Left)
	right := ReorderExpression(bin.Right)

	if rb, ok := right.(*BinaryOp); ok &&
		!bin.Op.IsEquals() && !rb.Op.IsEquals() &&
		operatorPrecedence(bin.Op.Kind) > operatorPrecedence(rb.Op.Kind) {
		rotated := &BinaryOp{
			Left:  &BinaryOp{Left: left, Op: bin.Op, Right: rb.Left},
			Op:    rb.Op,
			Right: rb.Right,
		}
		return ReorderExpression(rotated)
	}

	if lb, ok := left.(*BinaryOp); ok &&
		!bin.Op.IsEquals() && !lb.Op.IsEquals() &&
		operatorPrecedence(lb.Op.Kind) < operatorPrecedence(bin.Op.Kind) {
		rotated := &BinaryOp{
			Left:  lb.Left,
			Op:    lb.Op,
			Right: &BinaryOp{Left: lb.Right, Op: bin.Op, Right: right},
		}
		return ReorderExpression(rotated)
	}

	return &BinaryOp{Left: left, Op: bin.Op, Right: right}
}
