package query

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/nodesearch/internal/domain"
)

func TestStripCategory(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"genetics AND category:project", "genetics"},
		{"genetics AND category:project AND tags:bio", "genetics AND tags:bio"},
		{"genetics", "genetics"},
		{"category:user", "category:user"},
	}
	for _, tc := range tests {
		q := New(tc.in)
		q.StripCategory()
		got, _ := q.QueryString()
		if got != tc.want {
			t.Errorf("StripCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripPagination(t *testing.T) {
	q := New("x").WithPage(20, 10)
	q.Sort = []SortField{{Field: "boost", Order: OrderDesc}}
	q.StripPagination()
	if q.From != nil || q.Size != nil || q.Sort != nil {
		t.Errorf("expected pagination stripped, got %+v", q)
	}
}

func TestClone_Independent(t *testing.T) {
	q := New("genetics AND category:project").WithPage(10, 5)
	q.Query.Filtered.Filter = &Filter{Bool: &BoolFilter{Must: []Clause{TermClause("id", "a")}}}

	c := q.Clone()
	c.StripCategory()
	c.StripPagination()
	c.AddTermsAggregation("tag_cloud", "tags")
	c.Query.Filtered.Filter.Bool.Must[0].Term["id"] = "b"

	if s, _ := q.QueryString(); s != "genetics AND category:project" {
		t.Errorf("original query string mutated: %q", s)
	}
	if q.From == nil || *q.From != 10 || q.Size == nil || *q.Size != 5 {
		t.Error("original pagination mutated")
	}
	if q.Aggregations != nil {
		t.Error("original aggregations mutated")
	}
	if q.Query.Filtered.Filter.Bool.Must[0].Term["id"] != "a" {
		t.Error("original filter mutated")
	}
}

func TestValidate(t *testing.T) {
	if err := (&Query{}).Validate(); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for missing filtered, got %v", err)
	}
	if err := New("x").WithPage(-1, 10).Validate(); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for negative from, got %v", err)
	}
	if err := New("x").Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUnmarshal_Shape(t *testing.T) {
	raw := `{
		"query": {"filtered": {"query": {"query_string": {"query": "bio AND category:project"}}}},
		"from": 0, "size": 10,
		"sort": ["_score", {"boost": "desc"}, {"iso_timestamp": {"order": "asc"}}]
	}`
	var q Query
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s, ok := q.QueryString(); !ok || s != "bio AND category:project" {
		t.Errorf("unexpected query string %q", s)
	}
	if len(q.Sort) != 3 {
		t.Fatalf("expected 3 sort keys, got %d", len(q.Sort))
	}
	if !q.Sort[0].Desc() || q.Sort[0].Field != "_score" {
		t.Errorf("_score should default to descending: %+v", q.Sort[0])
	}
	if !q.Sort[1].Desc() || q.Sort[1].Field != "boost" {
		t.Errorf("unexpected sort[1]: %+v", q.Sort[1])
	}
	if q.Sort[2].Desc() || q.Sort[2].Field != "iso_timestamp" {
		t.Errorf("unexpected sort[2]: %+v", q.Sort[2])
	}
}

func TestUnmarshal_ContributorFilter(t *testing.T) {
	raw := `{"query": {"filtered": {"filter": {"bool": {
		"must": [{"prefix": {"user": "jo"}}],
		"should": [],
		"must_not": [{"term": {"id": "u1"}}]}}}},
		"from": 0, "size": 10}`
	var q Query
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	bf := q.BoolFilter()
	if bf == nil {
		t.Fatal("expected bool filter")
	}
	if bf.Must[0].Prefix["user"] != "jo" || bf.MustNot[0].Term["id"] != "u1" {
		t.Errorf("unexpected filter: %+v", bf)
	}
	if _, ok := q.QueryString(); ok {
		t.Error("filter-only query should have no query string")
	}
}
