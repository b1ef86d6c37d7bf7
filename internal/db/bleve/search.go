package bleve

import (
	"context"
	"errors"
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/nodesearch/internal/db"
)

// Search executes a query and returns hits with their stored sources.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	ix, err := s.lookup(req.Index)
	if err != nil {
		return nil, err
	}
	q, err := translator{def: ix.def}.build(req)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	sr := bleve.NewSearchRequestOptions(q, req.Size, req.From, false)
	if order := sortOrder(req.Sort); len(order) > 0 {
		sr.SortBy(order)
	}
	for _, agg := range req.Aggs {
		size := agg.Size
		if size <= 0 {
			if size, err = distinctTerms(ix.idx, agg.Field); err != nil {
				return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("size aggregation %s: %w", agg.Name, err)}
			}
		}
		sr.AddFacet(agg.Name, bleve.NewFacetRequest(agg.Field, size))
	}

	res, err := ix.idx.SearchInContext(ctx, sr)
	if err != nil {
		return nil, classifySearchErr(err)
	}

	out := &db.SearchResult{
		Total: int(res.Total),
		Hits:  make([]db.Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		src, err := ix.idx.GetInternal(sourceKey(h.ID))
		if err != nil {
			return nil, &db.Error{Op: db.OpSource, Err: err}
		}
		if src == nil {
			continue
		}
		kind, id := splitDocID(h.ID)
		out.Hits = append(out.Hits, db.Hit{Kind: kind, ID: id, Score: h.Score, Source: src})
	}

	if len(req.Aggs) > 0 {
		out.Aggregations = make(map[string][]db.Bucket, len(req.Aggs))
		for _, agg := range req.Aggs {
			buckets := []db.Bucket{}
			if fr, ok := res.Facets[agg.Name]; ok && fr != nil && fr.Terms != nil {
				for _, tf := range fr.Terms.Terms() {
					buckets = append(buckets, db.Bucket{Key: tf.Term, Count: tf.Count})
				}
			}
			out.Aggregations[agg.Name] = buckets
		}
	}
	return out, nil
}

// distinctTerms counts the terms indexed for field, the bucket bound of an
// unsized aggregation. It is never below 1.
func distinctTerms(idx bleve.Index, field string) (int, error) {
	dict, err := idx.FieldDict(field)
	if err != nil {
		return 0, err
	}
	defer func() { _ = dict.Close() }()

	n := 0
	for {
		entry, err := dict.Next()
		if err != nil {
			return 0, err
		}
		if entry == nil {
			return max(n, 1), nil
		}
		n++
	}
}

// Count returns the number of documents matching the request.
func (s *Store) Count(ctx context.Context, req *db.SearchRequest) (int, error) {
	countReq := *req
	countReq.From, countReq.Size = 0, 0
	countReq.Sort, countReq.Aggs = nil, nil
	res, err := s.Search(ctx, &countReq)
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}

// sortOrder renders sort keys in bleve's "-field" notation.
func sortOrder(keys []db.Sort) []string {
	order := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.Desc {
			order = append(order, "-"+k.Field)
		} else {
			order = append(order, k.Field)
		}
	}
	return order
}

func classifySearchErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, bleve.ErrorIndexClosed) {
		return db.ErrIndexNotFound
	}
	return &db.Error{Op: db.OpQuery, Err: fmt.Errorf("search failed: %w", err)}
}
