package redis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/nodesearch/internal/db"
	"github.com/kailas-cloud/nodesearch/internal/db/querystring"
)

// buildQuery renders the query string, kind restriction and filter of req
// into one RediSearch DIALECT 2 query.
func buildQuery(req *db.SearchRequest, sc schema) (string, error) {
	var parts []string

	if len(req.Kinds) > 0 {
		kinds := make([]string, len(req.Kinds))
		for i, k := range req.Kinds {
			kinds[i] = tagEscaper.Replace(k)
		}
		parts = append(parts, fmt.Sprintf("@category:{%s}", strings.Join(kinds, " | ")))
	}

	g, err := querystring.Parse(req.QueryString)
	if err != nil {
		return "", fmt.Errorf("%w: %w", db.ErrQuerySyntax, err)
	}
	r := renderer{schema: sc}
	parts = append(parts, r.clauses(g)...)

	if f := buildFilter(req.Filter, sc); f != "" {
		parts = append(parts, f)
	}

	if len(parts) == 0 {
		return "*", nil
	}
	return strings.Join(parts, " "), nil
}

type renderer struct {
	schema schema
}

// group renders g. An empty string means the group matches everything.
func (r renderer) group(g *querystring.Group) string {
	parts := r.clauses(g)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, " ") + ")"
	}
}

// clauses renders the clauses of g as intersected parts.
func (r renderer) clauses(g *querystring.Group) []string {
	must, should, mustNot := g.Split()

	var parts []string
	for _, n := range must {
		if s := r.node(n); s != "" {
			parts = append(parts, s)
		}
	}

	// Should clauses only restrict matches when there is no Must clause.
	if len(must) == 0 {
		var alts []string
		for _, n := range should {
			s := r.node(n)
			if s == "" {
				alts = nil
				break
			}
			alts = append(alts, s)
		}
		switch len(alts) {
		case 0:
		case 1:
			parts = append(parts, alts[0])
		default:
			parts = append(parts, "("+strings.Join(alts, " | ")+")")
		}
	} else if len(parts) > 0 {
		for _, n := range should {
			if s := r.node(n); s != "" {
				parts = append(parts, "~"+s)
			}
		}
	}

	for _, n := range mustNot {
		s := r.node(n)
		if s == "" {
			return []string{"-*"}
		}
		parts = append(parts, "-"+s)
	}
	return parts
}

func (r renderer) node(n querystring.Node) string {
	switch v := n.(type) {
	case querystring.MatchAll:
		return ""
	case *querystring.Group:
		return r.group(v)
	case *querystring.Term:
		return r.term(v)
	default:
		return ""
	}
}

func (r renderer) term(t *querystring.Term) string {
	if t.Field == "" {
		text := textValue(t.Value, t.Phrase, t.Prefix)
		// Bare terms also match string lists such as tags.
		var alts []string
		for name, f := range r.schema {
			if f.List && f.Type == db.IndexFieldTag {
				alts = append(alts, tagClause(name, t.Value, t.Prefix))
			}
		}
		if len(alts) == 0 {
			return text
		}
		slices.Sort(alts)
		return "(" + text + " | " + strings.Join(alts, " | ") + ")"
	}

	f, ok := r.schema[t.Field]
	if !ok {
		f = schemaField{Type: db.IndexFieldText}
	}
	switch f.Type {
	case db.IndexFieldTag, db.IndexFieldDate:
		return tagClause(t.Field, t.Value, t.Prefix)
	case db.IndexFieldNumeric:
		v := queryEscaper.Replace(t.Value)
		return fmt.Sprintf("@%s:[%s %s]", t.Field, v, v)
	default:
		return fmt.Sprintf("@%s:(%s)", t.Field, textValue(t.Value, t.Phrase, t.Prefix))
	}
}

func textValue(v string, phrase, prefix bool) string {
	if phrase {
		return `"` + escapeQuery(v) + `"`
	}
	s := escapeQuery(v)
	if prefix {
		s += "*"
	}
	return s
}

func tagClause(field, value string, prefix bool) string {
	v := tagEscaper.Replace(value)
	if prefix {
		v += "*"
	}
	return fmt.Sprintf("@%s:{%s}", field, v)
}

// buildFilter renders a bool filter. Should clauses are required as a
// group.
func buildFilter(f *db.BoolFilter, sc schema) string {
	if f.Empty() {
		return ""
	}

	var parts []string
	for _, c := range f.Must {
		parts = append(parts, buildClause(c, sc))
	}
	if len(f.Should) > 0 {
		alts := make([]string, 0, len(f.Should))
		for _, c := range f.Should {
			alts = append(alts, buildClause(c, sc))
		}
		parts = append(parts, "("+strings.Join(alts, " | ")+")")
	}
	for _, c := range f.MustNot {
		parts = append(parts, "-"+buildClause(c, sc))
	}
	return strings.Join(parts, " ")
}

func buildClause(c db.Clause, sc schema) string {
	prefix := c.Op == db.ClausePrefix
	f, ok := sc[c.Field]
	if ok && (f.Type == db.IndexFieldTag || f.Type == db.IndexFieldDate) {
		return tagClause(c.Field, c.Value, prefix)
	}
	return fmt.Sprintf("@%s:(%s)", c.Field, textValue(c.Value, false, prefix))
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`.`, `\.`,
	`,`, `\,`,
)
