// Arithmetic Calculator Tool.

package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// CalcTool evaluates arithmetic expressions.
// Supports + - * / with parentheses, unary minus, and decimal numbers.
type CalcTool struct {
	BaseTool
}

// NewCalcTool creates a new calculator tool.
func NewCalcTool() *CalcTool {
	return &CalcTool{}
}

// Metadata returns the tool metadata.
func (t *CalcTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "calc",
		Description: "Evaluate an arithmetic expression (+, -, *, /, parentheses)",
		Usage:       "(2 + 3) * 4 / 2",
	}
}

// Validate validates the input expression.
func (t *CalcTool) Validate(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("expression cannot be empty")
	}
	return nil
}

// Execute evaluates the expression.
func (t *CalcTool) Execute(ctx context.Context, input string) (ToolResult, error) {
	if err := t.Validate(input); err != nil {
		return FailureResult(err), nil
	}

	p := &exprParser{input: strings.TrimSpace(input)}
	value, err := p.parseExpr()
	if err != nil {
		return FailureResult(fmt.Errorf("invalid expression: %w", err)), nil
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return FailureResultf("invalid expression: unexpected %q at position %d", p.input[p.pos], p.pos), nil
	}

	return SuccessResult(strconv.FormatFloat(value, 'f', -1, 64)), nil
}

// exprParser is a recursive descent parser over the grammar
//
//	expr   = term (('+'|'-') term)*
//	term   = factor (('*'|'/') factor)*
//	factor = number | '-' factor | '(' expr ')'
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return left, nil
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return left, nil
		}
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	switch c := p.input[p.pos]; {
	case c == '-':
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case unicode.IsDigit(rune(c)) || c == '.':
		return p.parseNumber()
	default:
		return 0, fmt.Errorf("unexpected %q at position %d", c, p.pos)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if !unicode.IsDigit(rune(c)) && c != '.' {
			break
		}
		p.pos++
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}
