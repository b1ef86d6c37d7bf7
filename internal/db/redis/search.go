package redis

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/nodesearch/internal/db"
)

// Search runs FT.SEARCH for hits and one FT.AGGREGATE per terms aggregation.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	sc, err := s.schema(ctx, req.Index)
	if err != nil {
		return nil, err
	}
	query, err := buildQuery(req, sc)
	if err != nil {
		return nil, err
	}

	args := []string{ftIndex(req.Index), query, "RETURN", "1", "$"}
	if sortBy, ok := firstFieldSort(req.Sort); ok {
		dir := "ASC"
		if sortBy.Desc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", sortBy.Field, dir)
	}
	args = append(args,
		"LIMIT", strconv.Itoa(req.From), strconv.Itoa(req.Size),
		"DIALECT", "2",
	)

	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, classifySearchErr(db.OpSearch, err)
	}

	res, err := parseSearchResult(req.Index, raw)
	if err != nil {
		return nil, err
	}

	for _, agg := range req.Aggs {
		buckets, err := s.aggregate(ctx, req.Index, query, agg, sc)
		if err != nil {
			return nil, err
		}
		if res.Aggregations == nil {
			res.Aggregations = make(map[string][]db.Bucket, len(req.Aggs))
		}
		res.Aggregations[agg.Name] = buckets
	}

	return res, nil
}

// Count returns the number of matches via FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context, req *db.SearchRequest) (int, error) {
	sc, err := s.schema(ctx, req.Index)
	if err != nil {
		return 0, err
	}
	query, err := buildQuery(req, sc)
	if err != nil {
		return 0, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(ftIndex(req.Index), query, "LIMIT", "0", "0", "DIALECT", "2").
		Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, classifySearchErr(db.OpSearch, err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// aggregate buckets matches by the values of agg.Field. List fields are
// loaded from their hidden companion and split into one row per value. An
// unsized aggregation returns every bucket, sorted locally.
func (s *Store) aggregate(
	ctx context.Context, index, query string, agg db.TermsAggregation, sc schema,
) ([]db.Bucket, error) {
	args := []string{ftIndex(index), query}
	keyName := agg.Field
	if f, ok := sc[agg.Field]; ok && f.List {
		hidden := db.HiddenPrefix + agg.Field
		keyName = "key"
		args = append(args,
			"LOAD", "3", "$."+hidden, "AS", hidden,
			"APPLY", fmt.Sprintf(`split(@%s, "%s")`, hidden, listSeparator), "AS", keyName,
		)
	}
	args = append(args,
		"GROUPBY", "1", "@"+keyName,
		"REDUCE", "COUNT", "0", "AS", "doc_count",
	)
	if agg.Size > 0 {
		args = append(args, "SORTBY", "2", "@doc_count", "DESC", "MAX", strconv.Itoa(agg.Size))
	}
	args = append(args, "DIALECT", "2")

	raw, err := s.do(ctx, s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, classifySearchErr(db.OpAggregate, err)
	}
	buckets := parseAggregateResult(raw, keyName)
	if agg.Size <= 0 {
		sortBuckets(buckets)
	}
	return buckets, nil
}

// sortBuckets orders buckets by count, most frequent first, then by key.
func sortBuckets(buckets []db.Bucket) {
	slices.SortStableFunc(buckets, func(a, b db.Bucket) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}

func classifySearchErr(op string, err error) error {
	switch {
	case isUnknownIndex(err):
		return db.ErrIndexNotFound
	case isQuerySyntax(err):
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrQuerySyntax, err)}
	default:
		return &db.Error{Op: op, Err: err}
	}
}

func firstFieldSort(sorts []db.Sort) (db.Sort, bool) {
	if len(sorts) == 0 || sorts[0].Field == db.ScoreField {
		return db.Sort{}, false
	}
	return sorts[0], true
}

// --- Result parsing ---

// parseSearchResult reads [total, key1, ["$", json1], key2, ...].
func parseSearchResult(index string, raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	hits := make([]db.Hit, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		kind, id, ok := splitKey(index, key)
		if !ok {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		doc, ok := fieldValue(fields, "$")
		if !ok {
			continue
		}
		src, err := decodeSource(doc)
		if err != nil {
			continue
		}

		hits = append(hits, db.Hit{Kind: kind, ID: id, Source: src})
	}

	return &db.SearchResult{Total: int(total), Hits: hits}, nil
}

// parseAggregateResult reads [count, [key, k1, doc_count, n1], ...].
func parseAggregateResult(raw []rueidis.RedisMessage, keyName string) []db.Bucket {
	buckets := make([]db.Bucket, 0, len(raw))
	for i := 1; i < len(raw); i++ {
		row, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		key, ok := fieldValue(row, keyName)
		if !ok || key == "" {
			continue
		}
		countStr, _ := fieldValue(row, "doc_count")
		n, err := strconv.Atoi(countStr)
		if err != nil || n < 1 {
			continue
		}
		buckets = append(buckets, db.Bucket{Key: key, Count: n})
	}
	return buckets
}

func fieldValue(fields []rueidis.RedisMessage, name string) (string, bool) {
	for j := 0; j+1 < len(fields); j += 2 {
		k, err := fields[j].ToString()
		if err != nil || k != name {
			continue
		}
		v, err := fields[j+1].ToString()
		if err != nil {
			return "", false
		}
		return v, true
	}
	return "", false
}

func splitKey(index, key string) (kind, id string, ok bool) {
	rest, found := strings.CutPrefix(key, keyPrefix(index))
	if !found {
		return "", "", false
	}
	return strings.Cut(rest, ":")
}
