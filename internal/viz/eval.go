package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// A compiled expression over one variable x. Expressions come from the
// intent extractor already normalized (lowercase, no spaces, caret powers)
// and allow-list checked; the parser re-validates anyway.
type Expr struct {
	root node
	src  string
}

func (e *Expr) Source() string { return e.src }

func (e *Expr) Eval(x float64) float64 {
	return e.root.eval(x)
}

// CompileExpression parses a normalized candidate into an evaluable form.
func CompileExpression(src string) (*Expr, error) {
	p := &exprParser{input: src}
	root, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("unexpected %q at offset %d", p.input[p.pos:], p.pos)
	}
	return &Expr{root: root, src: src}, nil
}

type node interface {
	eval(x float64) float64
}

type numNode float64

func (n numNode) eval(float64) float64 { return float64(n) }

type varNode struct{}

func (varNode) eval(x float64) float64 { return x }

type binNode struct {
	op   byte
	l, r node
}

func (n *binNode) eval(x float64) float64 {
	a, b := n.l.eval(x), n.r.eval(x)
	switch n.op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		return a / b
	case '^':
		return math.Pow(a, b)
	}
	return math.NaN()
}

type negNode struct{ n node }

func (n *negNode) eval(x float64) float64 { return -n.n.eval(x) }

type callNode struct {
	fn  func(float64) float64
	arg node
}

func (n *callNode) eval(x float64) float64 { return n.fn(n.arg.eval(x)) }

var exprFuncs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"sqrt": math.Sqrt,
	"exp":  math.Exp,
	"log":  math.Log,
	"abs":  math.Abs,
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binNode{op: op, l: left, r: right}
	}
}

func (p *exprParser) parseMultiplicative() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		// Implicit multiplication: 2x, 3sin(x), (x+1)(x-1).
		if op == 'x' || op == '(' || (op >= 'a' && op <= 'z' && op != 'x') {
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &binNode{op: '*', l: left, r: right}
			continue
		}
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binNode{op: op, l: left, r: right}
	}
}

func (p *exprParser) parseUnary() (node, error) {
	if p.peek() == '-' {
		p.pos++
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negNode{n: n}, nil
	}
	if p.peek() == '+' {
		p.pos++
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	// Right-associative.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binNode{op: '^', l: base, r: exp}, nil
}

func (p *exprParser) parsePrimary() (node, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		n, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return n, nil
	case c == 'x':
		p.pos++
		return varNode{}, nil
	case c >= '0' && c <= '9' || c == '.':
		start := p.pos
		for p.pos < len(p.input) {
			c := p.input[p.pos]
			if (c < '0' || c > '9') && c != '.' {
				break
			}
			p.pos++
		}
		v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p.input[start:p.pos])
		}
		return numNode(v), nil
	case c >= 'a' && c <= 'z':
		start := p.pos
		for p.pos < len(p.input) {
			c := p.input[p.pos]
			if c < 'a' || c > 'z' {
				break
			}
			p.pos++
		}
		name := p.input[start:p.pos]
		fn, ok := exprFuncs[name]
		if !ok {
			return nil, fmt.Errorf("unknown function %q", name)
		}
		if p.peek() != '(' {
			return nil, fmt.Errorf("expected argument for %q", name)
		}
		p.pos++
		arg, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, fmt.Errorf("missing closing parenthesis after %q", name)
		}
		p.pos++
		return &callNode{fn: fn, arg: arg}, nil
	case c == 0:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected character %q", string(c))
	}
}

// prettyExpr renders a normalized expression for captions ("x^2" stays as
// typed; function names keep their parentheses).
func prettyExpr(s string) string {
	return strings.TrimSpace(s)
}
