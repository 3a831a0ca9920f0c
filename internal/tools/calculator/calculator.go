// Package calculator evaluates arithmetic expressions against a strict
// grammar: numeric literals, + - * / ^ (or **), unary negation and
// parentheses. Nothing else parses (no identifiers, no calls), so the
// evaluator can never execute arbitrary input.
package calculator

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidExpression wraps every evaluation failure.
var ErrInvalidExpression = errors.New("invalid expression")

type Calculator struct{}

func New() *Calculator {
	return &Calculator{}
}

// Evaluate strips whitespace and evaluates the expression. Empty input
// yields (nil, nil). Anything outside the grammar yields a typed error,
// logged here; callers surface it as a missing result, never a fault.
func (c *Calculator) Evaluate(expression string) (*float64, error) {
	expression = strings.Join(strings.Fields(expression), "")
	if expression == "" {
		return nil, nil
	}

	p := &parser{input: expression}
	result, err := p.parseExpr()
	if err == nil && p.pos != len(p.input) {
		err = fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	if err != nil {
		slog.Error("calculation error", "expression", expression, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	return &result, nil
}

// parser is a recursive-descent parser over the whitespace-free input.
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = "-" unary | power
//	power  = primary [ ("^" | "**") unary ]
//	primary = number | "(" expr ")"
type parser struct {
	input string
	pos   int
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.peek() == '*' && !p.peekIs("**"):
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.peek() == '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, errors.New("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePower()
}

func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if p.peekIs("**") {
		p.pos += 2
	} else if p.peek() == '^' {
		p.pos++
	} else {
		return base, nil
	}
	// Exponent is right-associative and may carry unary minus.
	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) parsePrimary() (float64, error) {
	if p.pos >= len(p.input) {
		return 0, errors.New("unexpected end of expression")
	}

	if p.peek() == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	return p.parseNumber()
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad numeric literal %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) peekIs(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
