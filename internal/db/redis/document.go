package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/nodesearch/internal/db"
)

// listSeparator joins string lists into their hidden TAG companion. It is
// the ASCII unit separator, which is dropped from list values, so a tag
// containing a comma stays one tag.
const listSeparator = "\x1f"

// Update merges a partial document with JSON.MERGE. A missing document is
// created with JSON.SET when req.Upsert is set.
func (s *Store) Update(ctx context.Context, req *db.UpdateRequest) error {
	if _, err := s.schema(ctx, req.Index); err != nil {
		return err
	}

	data, err := encodeDocument(req.Doc)
	if err != nil {
		return err
	}
	key := docKey(req.Index, req.Kind, req.ID)

	n, err := s.do(ctx, s.b().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpExists, Err: err}
	}
	if n == 0 {
		if !req.Upsert {
			return db.ErrDocumentNotFound
		}
		return s.jsonSet(ctx, key, data)
	}

	cmd := s.b().Arbitrary("JSON.MERGE").Keys(key).Args("$", string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONMerge, Err: err}
	}
	return nil
}

// Put overwrites the whole document with JSON.SET. Keys under the index
// prefix are picked up by the FT index whenever it exists.
func (s *Store) Put(ctx context.Context, index, kind, id string, doc []byte) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	return s.jsonSet(ctx, docKey(index, kind, id), data)
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, index, kind, id string) error {
	n, err := s.do(ctx, s.b().Del().Key(docKey(index, kind, id)).Build()).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	if n == 0 {
		return db.ErrDocumentNotFound
	}
	return nil
}

func (s *Store) jsonSet(ctx context.Context, key string, data []byte) error {
	cmd := s.b().Arbitrary("JSON.SET").Keys(key).Args("$", string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// encodeDocument adds a hidden joined companion for every top-level list of
// strings so the list can be indexed and aggregated as a TAG.
func encodeDocument(doc []byte) ([]byte, error) {
	m, err := decodeObject(doc)
	if err != nil {
		return nil, err
	}
	for k, v := range m {
		if strings.HasPrefix(k, db.HiddenPrefix) {
			return nil, fmt.Errorf("document field %q uses a reserved prefix", k)
		}
		if list, ok := stringList(v); ok {
			m[db.HiddenPrefix+k] = joinList(list)
		}
	}
	return json.Marshal(m)
}

func joinList(list []string) string {
	clean := make([]string, len(list))
	for i, v := range list {
		clean[i] = strings.ReplaceAll(v, listSeparator, "")
	}
	return strings.Join(clean, listSeparator)
}

// decodeSource strips hidden fields from a stored document.
func decodeSource(raw string) (json.RawMessage, error) {
	m, err := decodeObject([]byte(raw))
	if err != nil {
		return nil, err
	}
	for k := range m {
		if strings.HasPrefix(k, db.HiddenPrefix) {
			delete(m, k)
		}
	}
	return json.Marshal(m)
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if m == nil {
		return nil, errors.New("document must be a JSON object")
	}
	return m, nil
}

func stringList(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
