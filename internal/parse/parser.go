package parse

import (
	"fmt"
	"strconv"

	"github.com/wiredcell/ssheet/internal/coord"
	"github.com/wiredcell/ssheet/internal/expr"
)

// Kind classifies why a formula failed to parse, so a caller can
// distinguish a malformed range from any other grammar violation
// without string-matching Message.
type Kind uint8

const (
	// KindSyntax covers grammar violations: unknown tokens, unknown
	// function names, malformed numbers, unbalanced parentheses.
	KindSyntax Kind = iota

	// KindRange covers a range reference that is out of grid bounds or
	// whose top-left does not dominate its bottom-right.
	KindRange

	// KindCell covers a single cell reference that is out of grid
	// bounds or otherwise unparsable as a label.
	KindCell
)

// ParseError reports a formula that failed to parse, along with the
// byte offset of the offending token when known.
type ParseError struct {
	Kind    Kind
	Message string
	Pos     int
}

func (e *ParseError) Error() string { return e.Message }

// Bounds is the grid extent a parsed cell reference must fall inside.
type Bounds = coord.Bounds

// Parser walks a token slice with one token of lookahead, producing
// an expr.Node tree with every cell reference stored relative to
// origin.
type Parser struct {
	tokens []Token
	pos    int
	origin coord.Absolute
	bounds coord.Bounds
}

// Parse parses text (without a leading "=") into an expression tree,
// resolving all cell references relative to origin and rejecting any
// absolute reference that falls outside bounds.
func Parse(text string, origin coord.Absolute, bounds coord.Bounds) (expr.Node, error) {
	lex := NewLexer(text)
	tokens, lexErr := lex.Tokenize()
	if lexErr != "" {
		return nil, &ParseError{Message: lexErr}
	}
	p := &Parser{tokens: tokens, origin: origin, bounds: bounds}
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, &ParseError{Message: "unexpected trailing input", Pos: p.current().Pos}
	}
	return node, nil
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	t := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// parseExpression = factor (("+"|"-") factor)*
func (p *Parser) parseExpression() (expr.Node, error) {
	lhs, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenBinaryOp && (p.current().Value == "+" || p.current().Value == "-") {
		opTok := p.advance()
		rhs, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		op := expr.Add
		if opTok.Value == "-" {
			op = expr.Subtract
		}
		lhs = &expr.BinaryOp{Lhs: lhs, Rhs: rhs, Operator: op, Position: expr.Position{Start: opTok.Pos, End: opTok.Pos + 1}}
	}
	return lhs, nil
}

// parseFactor = term (("*"|"/") term)*
func (p *Parser) parseFactor() (expr.Node, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenBinaryOp && (p.current().Value == "*" || p.current().Value == "/") {
		opTok := p.advance()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		op := expr.Multiply
		if opTok.Value == "/" {
			op = expr.Divide
		}
		lhs = &expr.BinaryOp{Lhs: lhs, Rhs: rhs, Operator: op, Position: expr.Position{Start: opTok.Pos, End: opTok.Pos + 1}}
	}
	return lhs, nil
}

var aggFuncs = map[string]expr.AggFunc{
	"MIN": expr.Min, "MAX": expr.Max, "AVG": expr.Avg, "SUM": expr.Sum, "STDEV": expr.Stdev,
}

// parseTerm = number | cellRef | rangeFn | delayFn | "(" expression ")"
func (p *Parser) parseTerm() (expr.Node, error) {
	tok := p.current()
	switch tok.Type {
	case TokenNumber:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &ParseError{Message: "malformed number: " + tok.Value, Pos: tok.Pos}
		}
		return &expr.Number{Value: v, Position: pos(tok)}, nil
	case TokenCell:
		p.advance()
		abs, ok := coord.ParseLabel(tok.Value)
		if !ok || !p.bounds.Contains(abs) {
			return nil, &ParseError{Kind: KindCell, Message: "cell reference out of bounds: " + tok.Value, Pos: tok.Pos}
		}
		return &expr.CellRef{Rel: coord.ToRelative(abs, p.origin), Position: pos(tok)}, nil
	case TokenFunction:
		return p.parseFunction()
	case TokenLeftParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current().Type != TokenRightParen {
			return nil, &ParseError{Message: "missing closing parenthesis", Pos: p.current().Pos}
		}
		p.advance()
		return inner, nil
	default:
		return nil, &ParseError{Message: fmt.Sprintf("unexpected token at position %d", tok.Pos), Pos: tok.Pos}
	}
}

func (p *Parser) parseFunction() (expr.Node, error) {
	nameTok := p.advance()
	if p.current().Type != TokenLeftParen {
		return nil, &ParseError{Message: "expected '(' after function name", Pos: p.current().Pos}
	}
	p.advance()

	if nameTok.Value == "SLEEP" {
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current().Type != TokenRightParen {
			return nil, &ParseError{Message: "missing closing parenthesis in SLEEP", Pos: p.current().Pos}
		}
		p.advance()
		return &expr.Delay{Inner: inner, Position: pos(nameTok)}, nil
	}

	fn, ok := aggFuncs[nameTok.Value]
	if !ok {
		return nil, &ParseError{Message: "unknown function: " + nameTok.Value, Pos: nameTok.Pos}
	}

	tlTok := p.advance()
	if tlTok.Type != TokenCell {
		return nil, &ParseError{Message: "expected cell reference in range", Pos: tlTok.Pos}
	}
	if p.current().Type != TokenColon {
		return nil, &ParseError{Message: "expected ':' in range", Pos: p.current().Pos}
	}
	p.advance()
	brTok := p.advance()
	if brTok.Type != TokenCell {
		return nil, &ParseError{Message: "expected cell reference in range", Pos: brTok.Pos}
	}
	if p.current().Type != TokenRightParen {
		return nil, &ParseError{Message: "missing closing parenthesis", Pos: p.current().Pos}
	}
	p.advance()

	tl, ok1 := coord.ParseLabel(tlTok.Value)
	br, ok2 := coord.ParseLabel(brTok.Value)
	if !ok1 || !ok2 || !p.bounds.Contains(tl) || !p.bounds.Contains(br) {
		return nil, &ParseError{Kind: KindRange, Message: "range reference out of bounds", Pos: tlTok.Pos}
	}
	if tl.Row > br.Row || tl.Col > br.Col {
		return nil, &ParseError{Kind: KindRange, Message: "range top-left must not exceed bottom-right", Pos: tlTok.Pos}
	}

	return &expr.RangeFn{
		Func:        fn,
		TopLeft:     coord.ToRelative(tl, p.origin),
		BottomRight: coord.ToRelative(br, p.origin),
		Position:    pos(nameTok),
	}, nil
}

func pos(t Token) expr.Position {
	return expr.Position{Start: t.Pos, End: t.Pos + len(t.Value)}
}
