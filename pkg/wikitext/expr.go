// expr.go implements the #expr evaluator: a tokenizer and recursive-descent
// parser over a fixed arithmetic and logical operator set.

package wikitext

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Expression errors.
var (
	errDivByZero   = errors.New("division by zero")
	errUnexpected  = errors.New("unexpected token")
	errUnclosed    = errors.New("unclosed parenthesis")
	errMissingTerm = errors.New("missing operand")
)

type exprTokenType int

const (
	exprNumber exprTokenType = iota
	exprOp                   // operator or keyword, lowercased
	exprLParen
	exprRParen
	exprEOF
)

type exprToken struct {
	typ exprTokenType
	num float64
	op  string
	pos int
}

// exprWords are the keyword operators, functions and constants.
var exprWords = map[string]bool{
	"mod": true, "div": true, "round": true,
	"and": true, "or": true, "not": true,
	"abs": true, "floor": true, "ceil": true, "trunc": true,
	"e": true, "pi": true,
}

// tokenizeExpr scans an expression into tokens.
func tokenizeExpr(input string) ([]exprToken, error) {
	var tokens []exprToken
	pos := 0
	for pos < len(input) {
		c := input[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pos++

		case c >= '0' && c <= '9' || c == '.':
			start := pos
			for pos < len(input) && (input[pos] >= '0' && input[pos] <= '9' || input[pos] == '.') {
				pos++
			}
			n, err := strconv.ParseFloat(input[start:pos], 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q at %d", input[start:pos], start)
			}
			tokens = append(tokens, exprToken{typ: exprNumber, num: n, pos: start})

		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			start := pos
			for pos < len(input) && (input[pos] >= 'a' && input[pos] <= 'z' || input[pos] >= 'A' && input[pos] <= 'Z') {
				pos++
			}
			word := strings.ToLower(input[start:pos])
			if !exprWords[word] {
				return nil, fmt.Errorf("unrecognized word %q at %d", word, start)
			}
			tokens = append(tokens, exprToken{typ: exprOp, op: word, pos: start})

		case c == '(':
			tokens = append(tokens, exprToken{typ: exprLParen, pos: pos})
			pos++

		case c == ')':
			tokens = append(tokens, exprToken{typ: exprRParen, pos: pos})
			pos++

		case c == '!' || c == '<' || c == '>':
			op := string(c)
			if pos+1 < len(input) && (input[pos+1] == '=' || c == '<' && input[pos+1] == '>') {
				op = input[pos : pos+2]
			}
			if op == "!" {
				return nil, fmt.Errorf("unexpected %q at %d", op, pos)
			}
			tokens = append(tokens, exprToken{typ: exprOp, op: op, pos: pos})
			pos += len(op)

		case strings.IndexByte("+-*/^=", c) >= 0:
			tokens = append(tokens, exprToken{typ: exprOp, op: string(c), pos: pos})
			pos++

		default:
			return nil, fmt.Errorf("unexpected %q at %d", c, pos)
		}
	}
	tokens = append(tokens, exprToken{typ: exprEOF, pos: pos})
	return tokens, nil
}

// exprParser evaluates while parsing. Precedence, lowest first:
// or; and; comparisons; round; + -; * / div mod; ^; unary and functions.
type exprParser struct {
	tokens []exprToken
	pos    int
}

func (p *exprParser) peek() exprToken { return p.tokens[p.pos] }

func (p *exprParser) next() exprToken {
	t := p.tokens[p.pos]
	if t.typ != exprEOF {
		p.pos++
	}
	return t
}

// acceptOp consumes the next token if it is one of ops.
func (p *exprParser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.typ != exprOp {
		return "", false
	}
	for _, op := range ops {
		if t.op == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

// EvalExpr evaluates a #expr expression and formats the result. An empty
// expression evaluates to empty text.
func EvalExpr(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}
	tokens, err := tokenizeExpr(input)
	if err != nil {
		return "", err
	}
	p := &exprParser{tokens: tokens}
	v, err := p.parseOr()
	if err != nil {
		return "", err
	}
	if t := p.peek(); t.typ != exprEOF {
		return "", fmt.Errorf("%w at %d", errUnexpected, t.pos)
	}
	return formatNumber(v), nil
}

func (p *exprParser) parseOr() (float64, error) {
	l, err := p.parseAnd()
	if err != nil {
		return 0, err
	}
	for {
		if _, ok := p.acceptOp("or"); !ok {
			return l, nil
		}
		r, err := p.parseAnd()
		if err != nil {
			return 0, err
		}
		l = boolNum(l != 0 || r != 0)
	}
}

func (p *exprParser) parseAnd() (float64, error) {
	l, err := p.parseCompare()
	if err != nil {
		return 0, err
	}
	for {
		if _, ok := p.acceptOp("and"); !ok {
			return l, nil
		}
		r, err := p.parseCompare()
		if err != nil {
			return 0, err
		}
		l = boolNum(l != 0 && r != 0)
	}
}

func (p *exprParser) parseCompare() (float64, error) {
	l, err := p.parseRound()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.acceptOp("=", "!=", "<>", "<", ">", "<=", ">=")
		if !ok {
			return l, nil
		}
		r, err := p.parseRound()
		if err != nil {
			return 0, err
		}
		switch op {
		case "=":
			l = boolNum(l == r)
		case "!=", "<>":
			l = boolNum(l != r)
		case "<":
			l = boolNum(l < r)
		case ">":
			l = boolNum(l > r)
		case "<=":
			l = boolNum(l <= r)
		case ">=":
			l = boolNum(l >= r)
		}
	}
}

func (p *exprParser) parseRound() (float64, error) {
	l, err := p.parseAdd()
	if err != nil {
		return 0, err
	}
	for {
		if _, ok := p.acceptOp("round"); !ok {
			return l, nil
		}
		r, err := p.parseAdd()
		if err != nil {
			return 0, err
		}
		scale := math.Pow(10, math.Trunc(r))
		l = math.Round(l*scale) / scale
	}
}

func (p *exprParser) parseAdd() (float64, error) {
	l, err := p.parseMul()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return l, nil
		}
		r, err := p.parseMul()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			l += r
		} else {
			l -= r
		}
	}
}

func (p *exprParser) parseMul() (float64, error) {
	l, err := p.parsePow()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.acceptOp("*", "/", "div", "mod")
		if !ok {
			return l, nil
		}
		r, err := p.parsePow()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			l *= r
		case "/", "div":
			if r == 0 {
				return 0, errDivByZero
			}
			l /= r
		case "mod":
			// operands are truncated to integers
			a, b := math.Trunc(l), math.Trunc(r)
			if b == 0 {
				return 0, errDivByZero
			}
			l = math.Mod(a, b)
		}
	}
}

func (p *exprParser) parsePow() (float64, error) {
	l, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		if _, ok := p.acceptOp("^"); !ok {
			return l, nil
		}
		r, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		l = math.Pow(l, r)
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	op, ok := p.acceptOp("-", "+", "not", "abs", "floor", "ceil", "trunc")
	if !ok {
		return p.parsePrimary()
	}
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	switch op {
	case "-":
		return -v, nil
	case "not":
		return boolNum(v == 0), nil
	case "abs":
		return math.Abs(v), nil
	case "floor":
		return math.Floor(v), nil
	case "ceil":
		return math.Ceil(v), nil
	case "trunc":
		return math.Trunc(v), nil
	}
	return v, nil
}

func (p *exprParser) parsePrimary() (float64, error) {
	t := p.next()
	switch t.typ {
	case exprNumber:
		return t.num, nil
	case exprLParen:
		v, err := p.parseOr()
		if err != nil {
			return 0, err
		}
		if p.next().typ != exprRParen {
			return 0, errUnclosed
		}
		return v, nil
	case exprOp:
		switch t.op {
		case "e":
			return math.E, nil
		case "pi":
			return math.Pi, nil
		}
		return 0, fmt.Errorf("%w %q at %d", errUnexpected, t.op, t.pos)
	case exprEOF:
		return 0, errMissingTerm
	}
	return 0, fmt.Errorf("%w at %d", errUnexpected, t.pos)
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// formatNumber prints integral values without a fraction and others with
// up to 14 significant digits.
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NAN"
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		if v == 0 {
			return "0" // no negative zero
		}
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', 14, 64)
}
