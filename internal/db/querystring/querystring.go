// Package querystring parses the Lucene-style query strings accepted by the
// search backends into a small boolean tree.
//
// Supported: bare terms, quoted phrases, field:value, field:(group),
// trailing * prefixes, parentheses, AND/OR/NOT, && and ||, and the +, -
// and ! modifiers. The default operator is OR. A bare * or *:* matches
// every document; an empty query does too.
package querystring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax reports a query string that cannot be parsed.
var ErrSyntax = errors.New("query string syntax error")

// Occur is how a clause participates in its group.
type Occur int

const (
	// Should clauses are optional when the group has Must clauses, otherwise
	// at least one must match.
	Should Occur = iota
	// Must clauses are required.
	Must
	// MustNot clauses exclude matching documents.
	MustNot
)

func (o Occur) String() string {
	switch o {
	case Must:
		return "must"
	case MustNot:
		return "must_not"
	default:
		return "should"
	}
}

// Node is one of *Term, *Group or MatchAll.
type Node interface {
	node()
}

// Term matches a single value, optionally scoped to a field.
type Term struct {
	Field  string // empty = any field
	Value  string
	Phrase bool
	Prefix bool // trailing * stripped from Value
}

// Group is a boolean combination of clauses.
type Group struct {
	Clauses []Clause
}

// MatchAll matches every document.
type MatchAll struct{}

func (*Term) node()    {}
func (*Group) node()   {}
func (MatchAll) node() {}

// Clause is a node with its occurrence.
type Clause struct {
	Occur Occur
	Node  Node
}

// Split partitions the clauses of g by occurrence.
func (g *Group) Split() (must, should, mustNot []Node) {
	for _, c := range g.Clauses {
		switch c.Occur {
		case Must:
			must = append(must, c.Node)
		case MustNot:
			mustNot = append(mustNot, c.Node)
		default:
			should = append(should, c.Node)
		}
	}
	return must, should, mustNot
}

// Parse parses s. The result of an empty query is a group holding a single
// MatchAll clause.
func Parse(s string) (*Group, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	g, err := p.parseGroup("", false)
	if err != nil {
		return nil, err
	}
	if len(g.Clauses) == 0 {
		g.Clauses = []Clause{{Occur: Must, Node: MatchAll{}}}
	}
	return g, nil
}

type tokKind int

const (
	tokWord tokKind = iota
	tokPhrase
	tokField
	tokAnd
	tokOr
	tokNot
	tokPlus
	tokMinus
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func syntaxErr(pos int, format string, args ...any) error {
	return fmt.Errorf("%w at %d: %s", ErrSyntax, pos, fmt.Sprintf(format, args...))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isSpace(c):
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case c == '"':
			start := i
			var b strings.Builder
			i++
			closed := false
			for i < len(s) {
				if s[i] == '\\' && i+1 < len(s) {
					b.WriteByte(s[i+1])
					i += 2
					continue
				}
				if s[i] == '"' {
					closed = true
					i++
					break
				}
				b.WriteByte(s[i])
				i++
			}
			if !closed {
				return nil, syntaxErr(start, "unterminated phrase")
			}
			toks = append(toks, token{kind: tokPhrase, text: b.String(), pos: start})
		case c == '+' || c == '-' || c == '!':
			if i+1 >= len(s) || isSpace(s[i+1]) {
				return nil, syntaxErr(i, "dangling %q", c)
			}
			kind := tokPlus
			switch c {
			case '-':
				kind = tokMinus
			case '!':
				kind = tokNot
			}
			toks = append(toks, token{kind: kind, pos: i})
			i++
		case c == '&' && i+1 < len(s) && s[i+1] == '&':
			toks = append(toks, token{kind: tokAnd, pos: i})
			i += 2
		case c == '|' && i+1 < len(s) && s[i+1] == '|':
			toks = append(toks, token{kind: tokOr, pos: i})
			i += 2
		default:
			start := i
			var b strings.Builder
			field := false
			for i < len(s) {
				ch := s[i]
				if ch == '\\' && i+1 < len(s) {
					b.WriteByte('\\')
					b.WriteByte(s[i+1])
					i += 2
					continue
				}
				if isSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
					break
				}
				if ch == ':' {
					field = true
					i++
					break
				}
				b.WriteByte(ch)
				i++
			}
			text := b.String()
			if field {
				if text == "" {
					return nil, syntaxErr(start, "empty field name")
				}
				if text == "*" && strings.HasPrefix(s[i:], "*") {
					// *:* is match-all.
					toks = append(toks, token{kind: tokWord, text: "*", pos: start})
					i++
					continue
				}
				toks = append(toks, token{kind: tokField, text: unescape(text), pos: start})
				if i >= len(s) || isSpace(s[i]) || s[i] == ')' {
					return nil, syntaxErr(start, "field %q has no value", text)
				}
				continue
			}
			switch text {
			case "AND":
				toks = append(toks, token{kind: tokAnd, pos: start})
			case "OR":
				toks = append(toks, token{kind: tokOr, pos: start})
			case "NOT":
				toks = append(toks, token{kind: tokNot, pos: start})
			default:
				toks = append(toks, token{kind: tokWord, text: text, pos: start})
			}
		}
	}
	return toks, nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

type conj int

const (
	conjNone conj = iota
	conjAnd
	conjOr
)

type modifier int

const (
	modNone modifier = iota
	modReq
	modNot
)

// parseGroup reads clauses until the end of input or, when nested, the
// closing parenthesis. Clause occurrence follows the classic Lucene rules
// with OR as the default operator.
func (p *parser) parseGroup(field string, nested bool) (*Group, error) {
	g := &Group{}
	for {
		t, ok := p.peek()
		if !ok {
			if nested {
				return nil, syntaxErr(len(p.toks), "missing closing parenthesis")
			}
			return g, nil
		}
		if t.kind == tokRParen {
			if !nested {
				return nil, syntaxErr(t.pos, "unbalanced parenthesis")
			}
			p.next()
			return g, nil
		}

		c := conjNone
		if t.kind == tokAnd || t.kind == tokOr {
			if len(g.Clauses) == 0 {
				return nil, syntaxErr(t.pos, "operator without left operand")
			}
			if t.kind == tokAnd {
				c = conjAnd
			} else {
				c = conjOr
			}
			p.next()
		}

		m := modNone
		if t, ok := p.peek(); ok {
			switch t.kind {
			case tokPlus:
				m = modReq
				p.next()
			case tokMinus, tokNot:
				m = modNot
				p.next()
			}
		}

		n, err := p.parseNode(field)
		if err != nil {
			return nil, err
		}
		g.add(c, m, n)
	}
}

func (g *Group) add(c conj, m modifier, n Node) {
	if len(g.Clauses) > 0 && c == conjAnd {
		last := &g.Clauses[len(g.Clauses)-1]
		if last.Occur != MustNot {
			last.Occur = Must
		}
	}
	occur := Should
	switch {
	case m == modNot:
		occur = MustNot
	case m == modReq || c == conjAnd:
		occur = Must
	}
	g.Clauses = append(g.Clauses, Clause{Occur: occur, Node: n})
}

func (p *parser) parseNode(field string) (Node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, syntaxErr(len(p.toks), "expected a term")
	}
	switch t.kind {
	case tokLParen:
		p.next()
		return p.parseGroup(field, true)
	case tokField:
		p.next()
		return p.parseNode(t.text)
	case tokPhrase:
		p.next()
		return &Term{Field: field, Value: t.text, Phrase: true}, nil
	case tokWord:
		p.next()
		return wordNode(field, t)
	default:
		return nil, syntaxErr(t.pos, "unexpected operator")
	}
}

func wordNode(field string, t token) (Node, error) {
	raw := t.text
	if raw == "*" {
		if field != "" {
			return nil, syntaxErr(t.pos, "field wildcard is not supported")
		}
		return MatchAll{}, nil
	}
	prefix := false
	if strings.HasSuffix(raw, "*") && !strings.HasSuffix(raw, `\*`) {
		prefix = true
		raw = raw[:len(raw)-1]
	}
	if hasWildcard(raw) {
		return nil, syntaxErr(t.pos, "only trailing wildcards are supported")
	}
	return &Term{Field: field, Value: unescape(raw), Prefix: prefix}, nil
}

func hasWildcard(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '*', '?':
			return true
		}
	}
	return false
}
