package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ErrInvalidExpression is returned for any malformed arithmetic expression,
// including division by zero. Callers treat it as bad user input, not a
// fault: allocation values like "600+105" are evaluated here instead of
// being handed to any dynamic execution facility.
var ErrInvalidExpression = errors.New("invalid expression")

// EvalExpression evaluates a constrained arithmetic expression supporting
// numeric literals, + - * /, parentheses and unary minus.
func EvalExpression(s string) (decimal.Decimal, error) {
	p := &exprParser{input: strings.TrimSpace(s)}
	if p.input == "" {
		return decimal.Zero, ErrInvalidExpression
	}
	v, err := p.parseExpr()
	if err != nil {
		return decimal.Zero, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return decimal.Zero, fmt.Errorf("%w: unexpected %q", ErrInvalidExpression, p.input[p.pos:])
	}
	return v, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() (byte, bool) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

// expr := term (('+'|'-') term)*
func (p *exprParser) parseExpr() (decimal.Decimal, error) {
	left, err := p.parseTerm()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return decimal.Zero, err
		}
		if op == '+' {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
}

// term := factor (('*'|'/') factor)*
func (p *exprParser) parseTerm() (decimal.Decimal, error) {
	left, err := p.parseFactor()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return decimal.Zero, err
		}
		if op == '*' {
			left = left.Mul(right)
		} else {
			if right.IsZero() {
				return decimal.Zero, fmt.Errorf("%w: division by zero", ErrInvalidExpression)
			}
			left = left.Div(right)
		}
	}
}

// factor := '-' factor | '(' expr ')' | number
func (p *exprParser) parseFactor() (decimal.Decimal, error) {
	c, ok := p.peek()
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unexpected end of input", ErrInvalidExpression)
	}
	switch {
	case c == '-':
		p.pos++
		v, err := p.parseFactor()
		if err != nil {
			return decimal.Zero, err
		}
		return v.Neg(), nil
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return decimal.Zero, err
		}
		closing, ok := p.peek()
		if !ok || closing != ')' {
			return decimal.Zero, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidExpression)
		}
		p.pos++
		return v, nil
	default:
		return p.parseNumber()
	}
}

func (p *exprParser) parseNumber() (decimal.Decimal, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.input) {
		c := rune(p.input[p.pos])
		if !unicode.IsDigit(c) && c != '.' {
			break
		}
		p.pos++
	}
	if start == p.pos {
		return decimal.Zero, fmt.Errorf("%w: expected number at position %d", ErrInvalidExpression, start)
	}
	v, err := decimal.NewFromString(p.input[start:p.pos])
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad literal %q", ErrInvalidExpression, p.input[start:p.pos])
	}
	return v, nil
}
