package bleve

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/nodesearch/internal/db"
)

func docID(kind, id string) string { return kind + "/" + id }

// splitDocID is the inverse of docID. Ids never contain a slash; kinds may.
func splitDocID(s string) (kind, id string) {
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}

func sourceKey(id string) []byte { return []byte(sourcePrefix + id) }

// Update merges a partial document into the stored source and re-indexes
// it. A null value in the patch removes the field.
func (s *Store) Update(ctx context.Context, req *db.UpdateRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ix, err := s.lookup(req.Index)
	if err != nil {
		return err
	}
	patch, err := decodeObject(req.Doc)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	id := docID(req.Kind, req.ID)
	raw, err := ix.idx.GetInternal(sourceKey(id))
	if err != nil {
		return &db.Error{Op: db.OpSource, Err: err}
	}
	var doc map[string]any
	if raw == nil {
		if !req.Upsert {
			return db.ErrDocumentNotFound
		}
		doc = make(map[string]any, len(patch))
	} else if doc, err = decodeObject(raw); err != nil {
		return err
	}
	mergePatch(doc, patch)
	return ix.write(req.Kind, req.ID, doc)
}

// Put overwrites the whole document. The index is created with a dynamic
// mapping when it does not exist yet.
func (s *Store) Put(ctx context.Context, index, kind, id string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	obj, err := decodeObject(doc)
	if err != nil {
		return err
	}
	ix, err := s.lookupOrCreate(index)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.write(kind, id, obj)
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, index, kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ix, err := s.lookup(index)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	key := docID(kind, id)
	raw, err := ix.idx.GetInternal(sourceKey(key))
	if err != nil {
		return &db.Error{Op: db.OpSource, Err: err}
	}
	if raw == nil {
		return db.ErrDocumentNotFound
	}

	b := ix.idx.NewBatch()
	b.Delete(key)
	b.DeleteInternal(sourceKey(key))
	if err := ix.idx.Batch(b); err != nil {
		return &db.Error{Op: db.OpBatch, Err: err}
	}
	return nil
}

// write indexes doc and stores its source in one batch. Callers hold ix.mu.
func (ix *index) write(kind, id string, doc map[string]any) error {
	src, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	indexed := make(map[string]any, len(doc)+2)
	for k, v := range doc {
		indexed[k] = v
	}
	indexed[kindField] = kind
	indexed[idField] = id

	key := docID(kind, id)
	b := ix.idx.NewBatch()
	if err := b.Index(key, indexed); err != nil {
		return &db.Error{Op: db.OpBatch, Err: err}
	}
	b.SetInternal(sourceKey(key), src)
	if err := ix.idx.Batch(b); err != nil {
		return &db.Error{Op: db.OpBatch, Err: err}
	}
	return nil
}

// decodeObject parses a JSON object and rejects reserved field names.
func decodeObject(raw []byte) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("invalid document: expected a JSON object")
	}
	for k := range obj {
		if strings.HasPrefix(k, db.HiddenPrefix) {
			return nil, fmt.Errorf("invalid document: field name is reserved: %s", k)
		}
	}
	return obj, nil
}

// mergePatch applies patch to dst as a JSON merge patch: objects merge
// recursively, null removes a field, anything else replaces it.
func mergePatch(dst, patch map[string]any) {
	for k, v := range patch {
		if v == nil {
			delete(dst, k)
			continue
		}
		pv, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		dv, ok := dst[k].(map[string]any)
		if !ok {
			dv = make(map[string]any, len(pv))
		}
		mergePatch(dv, pv)
		dst[k] = dv
	}
}
