package emulator

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// predicate is a compiled boolean filter over one row's field values.
type predicate interface {
	eval(fields map[string]any) (bool, error)
}

type matchAll struct{}

func (matchAll) eval(map[string]any) (bool, error) { return true, nil }

type andExpr struct{ l, r predicate }

func (e andExpr) eval(f map[string]any) (bool, error) {
	ok, err := e.l.eval(f)
	if err != nil || !ok {
		return false, err
	}
	return e.r.eval(f)
}

type orExpr struct{ l, r predicate }

func (e orExpr) eval(f map[string]any) (bool, error) {
	ok, err := e.l.eval(f)
	if err != nil || ok {
		return ok, err
	}
	return e.r.eval(f)
}

type notExpr struct{ inner predicate }

func (e notExpr) eval(f map[string]any) (bool, error) {
	ok, err := e.inner.eval(f)
	return !ok, err
}

type cmpExpr struct {
	field string
	op    string
	value any
}

func (e cmpExpr) eval(f map[string]any) (bool, error) {
	v, ok := f[e.field]
	if !ok {
		return false, fmt.Errorf("field %q does not exist", e.field)
	}
	c, err := compare(v, e.value)
	if err != nil {
		return false, fmt.Errorf("field %q: %w", e.field, err)
	}
	switch e.op {
	case "==":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, fmt.Errorf("unsupported operator %q", e.op)
}

type inExpr struct {
	field  string
	values []any
}

func (e inExpr) eval(f map[string]any) (bool, error) {
	v, ok := f[e.field]
	if !ok {
		return false, fmt.Errorf("field %q does not exist", e.field)
	}
	for _, want := range e.values {
		c, err := compare(v, want)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", e.field, err)
		}
		if c == 0 {
			return true, nil
		}
	}
	return false, nil
}

// compare orders a stored value against a literal. Numbers compare as float64.
func compare(stored, lit any) (int, error) {
	switch s := stored.(type) {
	case string:
		l, ok := lit.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare string with %T", lit)
		}
		return strings.Compare(s, l), nil
	case bool:
		l, ok := lit.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare bool with %T", lit)
		}
		switch {
		case s == l:
			return 0, nil
		case !s:
			return -1, nil
		default:
			return 1, nil
		}
	}
	a, ok := toFloat(stored)
	if !ok {
		return 0, fmt.Errorf("cannot filter on %T values", stored)
	}
	b, ok := lit.(float64)
	if !ok {
		return 0, fmt.Errorf("cannot compare number with %T", lit)
	}
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// parseExpr compiles a boolean expression such as
// `age >= 18 && (city == "Oslo" || id in [1, 2])`. An empty expression
// matches every row.
func parseExpr(src string) (predicate, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return matchAll{}, nil
	}
	p := &exprParser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected token %q", p.toks[p.pos].text)
	}
	return e, nil
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokNumber
	tokString
	tokOp
	tokPunct
)

type token struct {
	kind tokKind
	text string
}

func tokenize(src string) ([]token, error) {
	var out []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(' || r == ')' || r == '[' || r == ']' || r == ',':
			out = append(out, token{tokPunct, string(r)})
			i++
		case r == '"' || r == '\'':
			j := i + 1
			for j < len(rs) && rs[j] != r {
				j++
			}
			if j == len(rs) {
				return nil, fmt.Errorf("unterminated string at %d", i)
			}
			out = append(out, token{tokString, string(rs[i+1 : j])})
			i = j + 1
		case strings.ContainsRune("=!<>&|", r):
			j := i + 1
			if j < len(rs) && strings.ContainsRune("=&|", rs[j]) {
				j++
			}
			op := string(rs[i:j])
			if !slices.Contains([]string{"==", "!=", "<", "<=", ">", ">=", "&&", "||", "!"}, op) {
				return nil, fmt.Errorf("invalid operator %q", op)
			}
			out = append(out, token{tokOp, op})
			i = j
		case unicode.IsDigit(r) || r == '-' || r == '.':
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || strings.ContainsRune(".eE+-", rs[j])) {
				j++
			}
			out = append(out, token{tokNumber, string(rs[i:j])})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			out = append(out, token{tokIdent, string(rs[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at %d", r, i)
		}
	}
	return out, nil
}

type exprParser struct {
	toks []token
	pos  int
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) accept(texts ...string) bool {
	t, ok := p.peek()
	if !ok || t.kind == tokString {
		return false
	}
	for _, s := range texts {
		if strings.EqualFold(t.text, s) {
			p.pos++
			return true
		}
	}
	return false
}

func (p *exprParser) parseOr() (predicate, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept("||", "or") {
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = orExpr{l, r}
	}
	return l, nil
}

func (p *exprParser) parseAnd() (predicate, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept("&&", "and") {
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l = andExpr{l, r}
	}
	return l, nil
}

func (p *exprParser) parseUnary() (predicate, error) {
	if p.accept("!", "not") {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notExpr{inner}, nil
	}
	if p.accept("(") {
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return e, nil
	}
	return p.parseComparison()
}

func (p *exprParser) parseComparison() (predicate, error) {
	t, ok := p.peek()
	if !ok || t.kind != tokIdent {
		return nil, fmt.Errorf("expected field name")
	}
	p.pos++
	field := t.text

	negate := false
	if p.accept("not") {
		negate = true
		if t, ok := p.peek(); !ok || !strings.EqualFold(t.text, "in") {
			return nil, fmt.Errorf("expected 'in' after 'not'")
		}
	}
	if p.accept("in") {
		values, err := p.parseList()
		if err != nil {
			return nil, err
		}
		var e predicate = inExpr{field: field, values: values}
		if negate {
			e = notExpr{e}
		}
		return e, nil
	}

	op, ok := p.peek()
	if !ok || op.kind != tokOp || op.text == "&&" || op.text == "||" || op.text == "!" {
		return nil, fmt.Errorf("expected comparison operator after %q", field)
	}
	p.pos++
	v, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return cmpExpr{field: field, op: op.text, value: v}, nil
}

func (p *exprParser) parseList() ([]any, error) {
	if !p.accept("[") {
		return nil, fmt.Errorf("expected '['")
	}
	var out []any
	if p.accept("]") {
		return out, nil
	}
	for {
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if p.accept("]") {
			return out, nil
		}
		if !p.accept(",") {
			return nil, fmt.Errorf("expected ',' or ']'")
		}
	}
}

func (p *exprParser) parseLiteral() (any, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("expected literal")
	}
	p.pos++
	switch t.kind {
	case tokString:
		return t.text, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.text)
		}
		return f, nil
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return nil, fmt.Errorf("expected literal, got %q", t.text)
}
