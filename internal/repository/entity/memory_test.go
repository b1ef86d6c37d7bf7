package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/nodesearch/internal/domain"
	"github.com/kailas-cloud/nodesearch/internal/domain/entity"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	ada := &entity.User{ID: "u1", FullName: "Ada"}
	alan := &entity.User{ID: "u2", FullName: "Alan"}
	m.SaveUser(ada)
	m.SaveUser(alan)
	m.SaveNode(&entity.Node{ID: "p1", VisibleContributors: []*entity.User{ada, nil, alan}})
	m.SaveNode(&entity.Node{ID: "p2", VisibleContributors: []*entity.User{ada, alan}, IsDeleted: true})
	m.SaveNode(&entity.Node{ID: "p3", VisibleContributors: []*entity.User{ada}})
	m.SaveWikiPage(&entity.WikiPage{ID: "w1", PageName: "home"})

	n, err := m.ProjectsInCommon(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ids, err := m.ListNodeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)

	w, err := m.LoadWikiPage(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "home", w.PageName)

	m.RemoveUser("u2")
	_, err = m.LoadUser(ctx, "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.LoadNode(ctx, "p9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.LoadWikiPage(ctx, "w9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	users, err := m.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)
}
