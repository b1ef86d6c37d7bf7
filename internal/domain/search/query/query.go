// Package query models the search DSL accepted by faceted search, counts,
// tag aggregation and contributor typeahead:
//
//	{"query": {"filtered": {"query": {"query_string": {"query": "..."}},
//	                        "filter": {"bool": {"must": [...], "should": [...], "must_not": [...]}}}},
//	 "from": 0, "size": 10, "sort": [...], "aggregations": {...}}
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/kailas-cloud/nodesearch/internal/domain"
)

// Query is the root of the DSL.
type Query struct {
	Query        Body                   `json:"query"`
	From         *int                   `json:"from,omitempty"`
	Size         *int                   `json:"size,omitempty"`
	Sort         []SortField            `json:"sort,omitempty"`
	Aggregations map[string]Aggregation `json:"aggregations,omitempty"`
}

// Body wraps the filtered query.
type Body struct {
	Filtered *Filtered `json:"filtered,omitempty"`
}

// Filtered combines an optional free-text query with an optional filter.
type Filtered struct {
	Query  *Inner  `json:"query,omitempty"`
	Filter *Filter `json:"filter,omitempty"`
}

// Inner holds the free-text query.
type Inner struct {
	QueryString *QueryString `json:"query_string,omitempty"`
}

// QueryString is a Lucene-style query string.
type QueryString struct {
	Query string `json:"query"`
}

// Filter wraps a boolean filter.
type Filter struct {
	Bool *BoolFilter `json:"bool,omitempty"`
}

// BoolFilter is a conjunction of clause groups.
type BoolFilter struct {
	Must    []Clause `json:"must"`
	Should  []Clause `json:"should"`
	MustNot []Clause `json:"must_not"`
}

// Clause is a single term or prefix condition, keyed by field.
type Clause struct {
	Term   map[string]string `json:"term,omitempty"`
	Prefix map[string]string `json:"prefix,omitempty"`
}

// TermClause builds a term clause on one field.
func TermClause(field, value string) Clause {
	return Clause{Term: map[string]string{field: value}}
}

// PrefixClause builds a prefix clause on one field.
func PrefixClause(field, value string) Clause {
	return Clause{Prefix: map[string]string{field: value}}
}

// Aggregation is a named aggregation request.
type Aggregation struct {
	Terms *TermsAggregation `json:"terms,omitempty"`
}

// TermsAggregation buckets documents by the distinct values of a field.
type TermsAggregation struct {
	Field string `json:"field"`
	Size  int    `json:"size,omitempty"`
}

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// SortField is one sort key. It accepts "field", {"field": "desc"} and
// {"field": {"order": "desc"}} on input.
type SortField struct {
	Field string
	Order string
}

// Desc reports whether the sort is descending. _score defaults to descending.
func (s SortField) Desc() bool {
	if s.Order == "" {
		return s.Field == "_score"
	}
	return strings.EqualFold(s.Order, OrderDesc)
}

// MarshalJSON encodes the sort key as {"field": {"order": "..."}}.
func (s SortField) MarshalJSON() ([]byte, error) {
	if s.Order == "" {
		return json.Marshal(s.Field)
	}
	return json.Marshal(map[string]map[string]string{s.Field: {"order": s.Order}})
}

// UnmarshalJSON decodes any of the accepted sort forms.
func (s *SortField) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = SortField{Field: name}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	if len(obj) != 1 {
		return errors.New("sort: exactly one field per sort entry")
	}
	for field, raw := range obj {
		var order string
		if err := json.Unmarshal(raw, &order); err == nil {
			*s = SortField{Field: field, Order: order}
			return nil
		}
		var opts struct {
			Order string `json:"order"`
		}
		if err := json.Unmarshal(raw, &opts); err != nil {
			return fmt.Errorf("sort %s: %w", field, err)
		}
		*s = SortField{Field: field, Order: opts.Order}
	}
	return nil
}

// New builds a filtered query_string query.
func New(queryString string) *Query {
	return &Query{Query: Body{Filtered: &Filtered{
		Query: &Inner{QueryString: &QueryString{Query: queryString}},
	}}}
}

// NewFiltered builds a filter-only query.
func NewFiltered(filter BoolFilter) *Query {
	return &Query{Query: Body{Filtered: &Filtered{
		Filter: &Filter{Bool: &filter},
	}}}
}

// Validate checks that the query has the filtered shape.
func (q *Query) Validate() error {
	if q == nil || q.Query.Filtered == nil {
		return fmt.Errorf("%w: query.filtered is required", domain.ErrInvalidQuery)
	}
	if q.From != nil && *q.From < 0 {
		return fmt.Errorf("%w: from must not be negative", domain.ErrInvalidQuery)
	}
	if q.Size != nil && *q.Size < 0 {
		return fmt.Errorf("%w: size must not be negative", domain.ErrInvalidQuery)
	}
	return nil
}

// QueryString returns the free-text query, if present.
func (q *Query) QueryString() (string, bool) {
	f := q.Query.Filtered
	if f == nil || f.Query == nil || f.Query.QueryString == nil {
		return "", false
	}
	return f.Query.QueryString.Query, true
}

// BoolFilter returns the boolean filter, if present.
func (q *Query) BoolFilter() *BoolFilter {
	f := q.Query.Filtered
	if f == nil || f.Filter == nil {
		return nil
	}
	return f.Filter.Bool
}

// WithPage sets from and size.
func (q *Query) WithPage(from, size int) *Query {
	q.From = &from
	q.Size = &size
	return q
}

// categoryToken matches a conjoined category filter in a query string.
var categoryToken = regexp.MustCompile(` AND category:\S*`)

// StripCategory removes every " AND category:<token>" from the query string.
func (q *Query) StripCategory() {
	f := q.Query.Filtered
	if f == nil || f.Query == nil || f.Query.QueryString == nil {
		return
	}
	f.Query.QueryString.Query = categoryToken.ReplaceAllString(f.Query.QueryString.Query, "")
}

// StripPagination drops from, size and sort.
func (q *Query) StripPagination() {
	q.From = nil
	q.Size = nil
	q.Sort = nil
}

// AddTermsAggregation attaches a named terms aggregation on field.
func (q *Query) AddTermsAggregation(name, field string) {
	if q.Aggregations == nil {
		q.Aggregations = make(map[string]Aggregation, 1)
	}
	q.Aggregations[name] = Aggregation{Terms: &TermsAggregation{Field: field}}
}

// Clone returns a deep copy.
func (q *Query) Clone() *Query {
	c := &Query{
		Sort: slices.Clone(q.Sort),
	}
	if q.From != nil {
		v := *q.From
		c.From = &v
	}
	if q.Size != nil {
		v := *q.Size
		c.Size = &v
	}
	if q.Aggregations != nil {
		c.Aggregations = make(map[string]Aggregation, len(q.Aggregations))
		for k, a := range q.Aggregations {
			if a.Terms != nil {
				t := *a.Terms
				a.Terms = &t
			}
			c.Aggregations[k] = a
		}
	}
	if f := q.Query.Filtered; f != nil {
		cf := &Filtered{}
		if f.Query != nil {
			ci := &Inner{}
			if f.Query.QueryString != nil {
				qs := *f.Query.QueryString
				ci.QueryString = &qs
			}
			cf.Query = ci
		}
		if f.Filter != nil {
			cfl := &Filter{}
			if f.Filter.Bool != nil {
				cfl.Bool = &BoolFilter{
					Must:    cloneClauses(f.Filter.Bool.Must),
					Should:  cloneClauses(f.Filter.Bool.Should),
					MustNot: cloneClauses(f.Filter.Bool.MustNot),
				}
			}
			cf.Filter = cfl
		}
		c.Query.Filtered = cf
	}
	return c
}

func cloneClauses(in []Clause) []Clause {
	if in == nil {
		return nil
	}
	out := make([]Clause, len(in))
	for i, c := range in {
		out[i] = Clause{Term: maps.Clone(c.Term), Prefix: maps.Clone(c.Prefix)}
	}
	return out
}
