// Package bleve implements db.Backend on an embedded bleve index, either in
// memory or on local disk. It needs no external service and backs tests and
// single-node deployments.
package bleve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/nodesearch/internal/db"
)

// Compile-time check: Store implements db.Backend.
var _ db.Backend = (*Store)(nil)

// Hidden fields added to every indexed document. Sources are stored apart
// from the index and never carry them.
const (
	kindField = db.HiddenPrefix + "kind"
	idField   = db.HiddenPrefix + "id"
)

// Internal keys.
const (
	sourcePrefix  = "src:"
	definitionKey = "definition"
)

var errClosed = errors.New("bleve store is closed")

// Config holds the location of the indexes. An empty Path keeps everything
// in memory.
type Config struct {
	Path string
}

// Store implements db.Backend with one bleve index per index name.
type Store struct {
	path string

	mu      sync.RWMutex
	indexes map[string]*index
	closed  bool
}

// index is an open bleve index and the definition it was created with.
// def is nil for indexes created implicitly by Put.
type index struct {
	mu  sync.Mutex // serializes read-modify-write updates
	idx bleve.Index
	def *db.IndexDefinition
}

// NewStore creates a bleve store. Disk indexes are opened on first use.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}
	return &Store{path: cfg.Path, indexes: make(map[string]*index)}, nil
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: db.OpPing, Err: errClosed}
	}
	return nil
}

// WaitForReady returns as soon as the store answers Ping. An embedded store
// is either ready immediately or closed.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Ping(ctx)
}

// Close closes every open index.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for name, ix := range s.indexes {
		_ = ix.idx.Close()
		delete(s.indexes, name)
	}
}

func (s *Store) indexPath(name string) string {
	return filepath.Join(s.path, name+".bleve")
}

// lookup returns the open index for name, opening it from disk when needed.
// It returns db.ErrIndexNotFound when the index does not exist.
func (s *Store) lookup(name string) (*index, error) {
	s.mu.RLock()
	ix, ok := s.indexes[name]
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, errClosed
	}
	if ok {
		return ix, nil
	}
	if s.path == "" {
		return nil, db.ErrIndexNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ix, ok := s.indexes[name]; ok {
		return ix, nil
	}
	idx, err := bleve.Open(s.indexPath(name))
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return nil, db.ErrIndexNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	ix = &index{idx: idx}
	if raw, err := idx.GetInternal([]byte(definitionKey)); err == nil && raw != nil {
		var def db.IndexDefinition
		if err := json.Unmarshal(raw, &def); err == nil {
			ix.def = &def
		}
	}
	s.indexes[name] = ix
	return ix, nil
}

// create opens a new index for def. A nil def creates a fully dynamic
// index named name.
func (s *Store) create(name string, def *db.IndexDefinition) (*index, error) {
	var (
		idx bleve.Index
		err error
	)
	m := buildMapping(def)
	if s.path == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		idx, err = bleve.New(s.indexPath(name), m)
	}
	if errors.Is(err, bleve.ErrorIndexPathExists) {
		return nil, db.ErrIndexExists
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	if def != nil {
		raw, err := json.Marshal(def)
		if err == nil {
			err = idx.SetInternal([]byte(definitionKey), raw)
		}
		if err != nil {
			_ = idx.Close()
			return nil, &db.Error{Op: db.OpOpen, Err: err}
		}
	}
	ix := &index{idx: idx, def: def}
	s.indexes[name] = ix
	return ix, nil
}

// CreateIndex creates an index from a definition.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid index definition: %w", err)
	}
	if _, err := s.lookup(def.Name); err == nil {
		return db.ErrIndexExists
	} else if !errors.Is(err, db.ErrIndexNotFound) {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	_, err := s.create(def.Name, def)
	return err
}

// DropIndex closes an index and deletes its documents.
func (s *Store) DropIndex(_ context.Context, name string) error {
	if _, err := s.lookup(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ix, ok := s.indexes[name]
	if !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	if err := ix.idx.Close(); err != nil {
		return &db.Error{Op: db.OpOpen, Err: err}
	}
	if s.path != "" {
		if err := os.RemoveAll(s.indexPath(name)); err != nil {
			return fmt.Errorf("failed to remove index %s: %w", name, err)
		}
	}
	return nil
}

// IndexExists checks whether an index exists.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	_, err := s.lookup(name)
	if errors.Is(err, db.ErrIndexNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// lookupOrCreate returns the index for name, creating a dynamic one when it
// does not exist.
func (s *Store) lookupOrCreate(name string) (*index, error) {
	ix, err := s.lookup(name)
	if !errors.Is(err, db.ErrIndexNotFound) {
		return ix, err
	}
	if !db.IsValidIdentifier(name) {
		return nil, fmt.Errorf("invalid index name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	if ix, ok := s.indexes[name]; ok {
		return ix, nil
	}
	return s.create(name, nil)
}
