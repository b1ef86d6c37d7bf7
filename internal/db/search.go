package db

import "encoding/json"

// ClauseOp selects how a filter clause matches its field.
type ClauseOp int

const (
	// ClauseTerm matches the exact value.
	ClauseTerm ClauseOp = iota
	// ClausePrefix matches values starting with the given prefix.
	ClausePrefix
)

// Clause is a single filter condition.
type Clause struct {
	Op    ClauseOp
	Field string
	Value string
}

// BoolFilter restricts matches without scoring. A document passes when it
// matches every Must clause, no MustNot clause and, if Should is not empty,
// at least one Should clause.
type BoolFilter struct {
	Must    []Clause
	Should  []Clause
	MustNot []Clause
}

// Empty reports whether the filter has no clauses.
func (f *BoolFilter) Empty() bool {
	return f == nil || len(f.Must)+len(f.Should)+len(f.MustNot) == 0
}

// Sort is one sort key. "_score" sorts by relevance.
type Sort struct {
	Field string
	Desc  bool
}

// ScoreField is the pseudo-field for relevance sorting.
const ScoreField = "_score"

// TermsAggregation buckets matching documents by the values of Field.
// Size 0 lets the backend choose.
type TermsAggregation struct {
	Name  string
	Field string
	Size  int
}

// SearchRequest is the input for Search and Count.
type SearchRequest struct {
	Index string
	// Kinds restricts matches to the given document kinds. Empty means all.
	Kinds []string
	// QueryString is a Lucene-style query; empty matches everything.
	QueryString string
	Filter      *BoolFilter
	From        int
	Size        int
	Sort        []Sort
	Aggs        []TermsAggregation
}

// SearchResult is the output of a search.
type SearchResult struct {
	Total        int
	Hits         []Hit
	Aggregations map[string][]Bucket
}

// Hit is a single matching document.
type Hit struct {
	Kind   string
	ID     string
	Score  float64
	Source json.RawMessage
}

// Bucket is one terms aggregation entry.
type Bucket struct {
	Key   string
	Count int
}
