package bleve

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/nodesearch/internal/db"
	"github.com/kailas-cloud/nodesearch/internal/db/querystring"
)

// translator turns search requests into bleve queries. Field types come
// from the index definition; unknown fields are treated as text.
type translator struct {
	def *db.IndexDefinition
}

func (t translator) build(req *db.SearchRequest) (query.Query, error) {
	var musts []query.Query

	if len(req.Kinds) > 0 {
		kinds := make([]query.Query, 0, len(req.Kinds))
		for _, k := range req.Kinds {
			kinds = append(kinds, termQuery(kindField, k))
		}
		musts = append(musts, disjunction(kinds))
	}

	if strings.TrimSpace(req.QueryString) != "" {
		g, err := querystring.Parse(req.QueryString)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", db.ErrQuerySyntax, err)
		}
		q, err := t.group(g)
		if err != nil {
			return nil, err
		}
		musts = append(musts, q)
	}

	if !req.Filter.Empty() {
		musts = append(musts, t.filter(req.Filter))
	}

	switch len(musts) {
	case 0:
		return bleve.NewMatchAllQuery(), nil
	case 1:
		return musts[0], nil
	default:
		return bleve.NewConjunctionQuery(musts...), nil
	}
}

func (t translator) node(n querystring.Node) (query.Query, error) {
	switch n := n.(type) {
	case *querystring.Group:
		return t.group(n)
	case *querystring.Term:
		return t.term(n)
	default:
		return bleve.NewMatchAllQuery(), nil
	}
}

// group keeps Lucene semantics: without Must clauses at least one Should
// clause has to match.
func (t translator) group(g *querystring.Group) (query.Query, error) {
	must, should, mustNot := g.Split()
	if len(must) == 1 && len(should) == 0 && len(mustNot) == 0 {
		return t.node(must[0])
	}
	if len(must) == 0 && len(should) == 1 && len(mustNot) == 0 {
		return t.node(should[0])
	}

	musts, err := t.nodes(must)
	if err != nil {
		return nil, err
	}
	shoulds, err := t.nodes(should)
	if err != nil {
		return nil, err
	}
	nots, err := t.nodes(mustNot)
	if err != nil {
		return nil, err
	}

	bq := bleve.NewBooleanQuery()
	switch {
	case len(musts) > 0:
		bq.AddMust(musts...)
		if len(shoulds) > 0 {
			bq.AddShould(shoulds...)
		}
	case len(shoulds) > 0:
		bq.AddMust(disjunction(shoulds))
	default:
		bq.AddMust(bleve.NewMatchAllQuery())
	}
	if len(nots) > 0 {
		bq.AddMustNot(nots...)
	}
	return bq, nil
}

func (t translator) nodes(ns []querystring.Node) ([]query.Query, error) {
	out := make([]query.Query, 0, len(ns))
	for _, n := range ns {
		q, err := t.node(n)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (t translator) term(tm *querystring.Term) (query.Query, error) {
	if tm.Phrase {
		q := bleve.NewMatchPhraseQuery(tm.Value)
		if tm.Field != "" {
			q.SetField(tm.Field)
		}
		return q, nil
	}
	if tm.Field == "" {
		if tm.Prefix {
			return bleve.NewPrefixQuery(strings.ToLower(tm.Value)), nil
		}
		return bleve.NewMatchQuery(tm.Value), nil
	}

	f, known := t.field(tm.Field)
	if !known {
		return textQuery(tm.Field, tm.Value, tm.Prefix), nil
	}
	switch f.Type {
	case db.IndexFieldTag:
		if tm.Prefix {
			p := bleve.NewPrefixQuery(t.tagValue(f, tm.Value))
			p.SetField(tm.Field)
			return p, nil
		}
		return termQuery(tm.Field, t.tagValue(f, tm.Value)), nil
	case db.IndexFieldNumeric:
		v, err := strconv.ParseFloat(tm.Value, 64)
		if err != nil || tm.Prefix {
			return nil, fmt.Errorf("%w: %s expects a number, got %q", db.ErrQuerySyntax, tm.Field, tm.Value)
		}
		inclusive := true
		q := bleve.NewNumericRangeInclusiveQuery(&v, &v, &inclusive, &inclusive)
		q.SetField(tm.Field)
		return q, nil
	case db.IndexFieldDate:
		if tm.Prefix {
			return nil, fmt.Errorf("%w: %s does not support prefixes", db.ErrQuerySyntax, tm.Field)
		}
		v, err := time.Parse(time.RFC3339, tm.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an RFC 3339 time, got %q", db.ErrQuerySyntax, tm.Field, tm.Value)
		}
		inclusive := true
		q := bleve.NewDateRangeInclusiveQuery(v, v, &inclusive, &inclusive)
		q.SetField(tm.Field)
		return q, nil
	default:
		return textQuery(tm.Field, tm.Value, tm.Prefix), nil
	}
}

// filter translates a bool filter. Should clauses are required when present.
func (t translator) filter(f *db.BoolFilter) query.Query {
	bq := bleve.NewBooleanQuery()
	for _, c := range f.Must {
		bq.AddMust(t.clause(c))
	}
	if len(f.Should) > 0 {
		shoulds := make([]query.Query, 0, len(f.Should))
		for _, c := range f.Should {
			shoulds = append(shoulds, t.clause(c))
		}
		bq.AddMust(disjunction(shoulds))
	}
	for _, c := range f.MustNot {
		bq.AddMustNot(t.clause(c))
	}
	if len(f.Must) == 0 && len(f.Should) == 0 {
		bq.AddMust(bleve.NewMatchAllQuery())
	}
	return bq
}

// clause matches stored terms directly: tag values as given, text values
// lower-cased to meet the analyzer.
func (t translator) clause(c db.Clause) query.Query {
	value := c.Value
	if f, ok := t.field(c.Field); ok && f.Type == db.IndexFieldTag {
		value = t.tagValue(f, value)
	} else {
		value = strings.ToLower(value)
	}
	if c.Op == db.ClausePrefix {
		p := bleve.NewPrefixQuery(value)
		p.SetField(c.Field)
		return p
	}
	return termQuery(c.Field, value)
}

// field resolves a field path, including values of map fields ("wikis.home").
func (t translator) field(name string) (db.IndexField, bool) {
	if t.def == nil {
		return db.IndexField{}, false
	}
	if f, ok := t.def.Field(name); ok {
		return f, true
	}
	if head, _, ok := strings.Cut(name, "."); ok {
		if f, ok := t.def.Field(head); ok && f.Map {
			return f, true
		}
	}
	return db.IndexField{}, false
}

func (t translator) tagValue(f db.IndexField, v string) string {
	if f.TagCaseSensitive {
		return v
	}
	return strings.ToLower(v)
}

func textQuery(field, value string, prefix bool) query.Query {
	if prefix {
		p := bleve.NewPrefixQuery(strings.ToLower(value))
		p.SetField(field)
		return p
	}
	m := bleve.NewMatchQuery(value)
	m.SetField(field)
	return m
}

func termQuery(field, value string) query.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}

func disjunction(qs []query.Query) query.Query {
	if len(qs) == 1 {
		return qs[0]
	}
	return bleve.NewDisjunctionQuery(qs...)
}
