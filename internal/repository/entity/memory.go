package entity

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kailas-cloud/nodesearch/internal/domain"
	"github.com/kailas-cloud/nodesearch/internal/domain/entity"
)

// Memory is an in-process entity store for embedded use and tests. Entities
// are stored by pointer; callers must not mutate them after saving.
type Memory struct {
	mu    sync.RWMutex
	nodes map[string]*entity.Node
	users map[string]*entity.User
	wikis map[string]*entity.WikiPage
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		nodes: make(map[string]*entity.Node),
		users: make(map[string]*entity.User),
		wikis: make(map[string]*entity.WikiPage),
	}
}

// SaveNode stores or replaces a node.
func (m *Memory) SaveNode(n *entity.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[n.ID] = n
}

// SaveUser stores or replaces a user.
func (m *Memory) SaveUser(u *entity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// SaveWikiPage stores or replaces a wiki page version.
func (m *Memory) SaveWikiPage(w *entity.WikiPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wikis[w.ID] = w
}

// RemoveUser forgets a user.
func (m *Memory) RemoveUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// LoadNode returns the node with the given id.
func (m *Memory) LoadNode(_ context.Context, id string) (*entity.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return n, nil
}

// LoadUser returns the user with the given id.
func (m *Memory) LoadUser(_ context.Context, id string) (*entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

// LoadWikiPage returns the wiki page version with the given id.
func (m *Memory) LoadWikiPage(_ context.Context, id string) (*entity.WikiPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.wikis[id]
	if !ok {
		return nil, fmt.Errorf("wiki page %s: %w", id, domain.ErrNotFound)
	}
	return w, nil
}

// ProjectsInCommon counts the non-deleted nodes listing both users as
// visible contributors.
func (m *Memory) ProjectsInCommon(_ context.Context, userID, otherID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, node := range m.nodes {
		if node.IsDeleted {
			continue
		}
		if contributes(node, userID) && contributes(node, otherID) {
			n++
		}
	}
	return n, nil
}

func contributes(n *entity.Node, userID string) bool {
	for _, c := range n.VisibleContributors {
		if c != nil && c.ID == userID {
			return true
		}
	}
	return false
}

// ListNodeIDs returns every node id in order.
func (m *Memory) ListNodeIDs(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// ListUserIDs returns every user id in order.
func (m *Memory) ListUserIDs(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
