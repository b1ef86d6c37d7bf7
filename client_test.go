package nodesearch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/nodesearch/internal/gateway"
)

func seedEntities() *MemoryStore {
	store := NewMemoryStore()
	ada := &User{
		ID: "u1", FullName: "Ada Lovelace", Username: "ada@example.com",
		IsRegistered: true, IsConfirmed: true,
		Jobs: []Job{{Institution: "Analytical Engines", Title: "Programmer"}},
	}
	alan := &User{ID: "u2", FullName: "Alan Turing", IsRegistered: true, IsConfirmed: true}
	ghost := &User{ID: "u3", FullName: "Adam Ghost", IsRegistered: true, IsDisabled: true}
	for _, u := range []*User{ada, alan, ghost} {
		store.SaveUser(u)
	}

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store.SaveNode(&Node{
		ID: "p1", Title: "Bees project", Description: "Hive research", Category: "project",
		IsPublic: true, DateCreated: created,
		Tags:                []*Tag{{ID: "bio"}, {ID: "pollinators"}},
		VisibleContributors: []*User{ada, alan},
		WikiPagesCurrent:    map[string]string{"home": "w1"},
	})
	store.SaveNode(&Node{
		ID: "c1", Title: "Bees data", Category: "data", IsPublic: true, DateCreated: created,
		ParentID: "p1", Tags: []*Tag{{ID: "bio"}}, VisibleContributors: []*User{ada},
	})
	store.SaveNode(&Node{
		ID: "p2", Title: "Secret bees", Category: "project", DateCreated: created,
	})
	store.SaveWikiPage(&WikiPage{ID: "w1", PageName: "home", Content: "<p>Queen notes</p>"})
	return store
}

func newTestClient(t *testing.T) (*Client, *MemoryStore) {
	t.Helper()
	store := seedEntities()
	c, err := New(WithBleve(""), WithEntities(store))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	ctx := context.Background()
	require.NoError(t, c.CreateIndex(ctx))
	report, err := c.ReindexAll(ctx)
	require.NoError(t, err)
	require.Zero(t, report.Failed())
	return c, store
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "elastic"}
	_, err := createBackend(cfg)
	assert.ErrorIs(t, err, errUnknownDriver)

	_, err = New(optionFunc(func(c *clientConfig) { c.driver = "elastic" }))
	assert.ErrorIs(t, err, errUnknownDriver)
}

func TestNew_UnreachableRedisIsDegraded(t *testing.T) {
	c, err := New(WithRedis("127.0.0.1:1", ""), WithReadinessTimeout(200*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.False(t, c.Available())
	assert.Equal(t, "degraded", string(c.Health(context.Background()).Status))
}

func assertNeutral(t *testing.T, c *Client) {
	t.Helper()
	ctx := context.Background()

	resp, err := c.Search(ctx, NewQuery("bees"), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"projects": 0, "components": 0, "registrations": 0, "users": 0, "total": 0,
	}, resp.Counts)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Tags)
	assert.Empty(t, resp.Tags)

	page, err := c.SearchContributors(ctx, ContributorRequest{Query: "ada"})
	require.NoError(t, err)
	assert.NotNil(t, page.Users)
	assert.Empty(t, page.Users)
	assert.Zero(t, page.Total)
	assert.Zero(t, page.Pages)

	node := &Node{ID: "p1", Title: "Bees", Category: "project", IsPublic: true}
	assert.NoError(t, c.SyncNode(ctx, node))
	node.IsPublic = false
	assert.NoError(t, c.SyncNode(ctx, node))
	user := &User{ID: "u1", FullName: "Ada", IsRegistered: true, IsConfirmed: true}
	assert.NoError(t, c.SyncUser(ctx, user))
	user.IsDisabled = true
	assert.NoError(t, c.SyncUser(ctx, user))
}

func TestClient_UnreachableRedisReturnsNeutralResults(t *testing.T) {
	c, err := New(WithRedis("127.0.0.1:1", ""), WithReadinessTimeout(200*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assertNeutral(t, c)
}

func TestClient_DisabledBackendReturnsNeutralResults(t *testing.T) {
	cfg := &clientConfig{indexName: DefaultIndexName, entities: seedEntities()}
	c, err := wireClient(gateway.Disabled(nil, errors.New("dial refused")), cfg)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.False(t, c.Available())
	assertNeutral(t, c)
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	WithRedis("localhost:6379", "secret").apply(cfg)
	assert.Equal(t, "redis", cfg.driver)
	assert.Equal(t, []string{"localhost:6379"}, cfg.addrs)
	assert.Equal(t, "secret", cfg.password)

	WithBleve("/tmp/idx").apply(cfg)
	WithIndexName("osf").apply(cfg)
	WithMaxBatchSize(7).apply(cfg)
	WithReindexWorkers(2).apply(cfg)
	assert.Equal(t, "bleve", cfg.driver)
	assert.Equal(t, "/tmp/idx", cfg.blevePath)
	assert.Equal(t, "osf", cfg.indexName)
	assert.Equal(t, 7, cfg.maxBatchSize)
	assert.Equal(t, 2, cfg.workers)
}

func TestClient_FacetedSearch(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	resp, err := c.Search(ctx, NewQuery("bees"), "")
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Counts["projects"])
	assert.Equal(t, 1, resp.Counts["components"])
	assert.Equal(t, 0, resp.Counts["users"])
	assert.Equal(t, 2, resp.Counts["total"])
	assert.Equal(t, "project", resp.TypeAliases["projects"])

	require.Len(t, resp.Results, 2)
	byTitle := map[string]*NodeResult{}
	for _, r := range resp.Results {
		n, ok := r.(*NodeResult)
		require.True(t, ok, "unexpected result %T", r)
		byTitle[n.Title] = n
	}
	require.Contains(t, byTitle, "Bees data")
	component := byTitle["Bees data"]
	assert.True(t, component.IsComponent)
	require.NotNil(t, component.ParentTitle)
	assert.Equal(t, "Bees project", *component.ParentTitle)
	assert.Nil(t, component.Description)

	project := byTitle["Bees project"]
	require.NotNil(t, project)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, project.Contributors)

	tags := map[string]int{}
	for _, b := range resp.Tags {
		tags[b.Key] = b.DocCount
	}
	assert.Equal(t, map[string]int{"bio": 2, "pollinators": 1}, tags)
}

func TestClient_TagCloudHasEveryTag(t *testing.T) {
	c, store := newTestClient(t)
	ctx := context.Background()

	want := map[string]int{"bio": 2, "pollinators": 1}
	archive := &Node{
		ID: "p3", Title: "Bees archive", Category: "project", IsPublic: true,
		DateCreated: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := range 12 {
		tag := fmt.Sprintf("archive-%02d", i)
		archive.Tags = append(archive.Tags, &Tag{ID: tag})
		want[tag] = 1
	}
	store.SaveNode(archive)
	require.NoError(t, c.SyncNode(ctx, archive))

	resp, err := c.Search(ctx, NewQuery("bees"), "")
	require.NoError(t, err)

	got := map[string]int{}
	for _, b := range resp.Tags {
		got[b.Key] = b.DocCount
	}
	assert.Equal(t, want, got)
}

func TestClient_SearchByType(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	resp, err := c.Search(ctx, NewQuery("ada"), "user")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	u, ok := resp.Results[0].(*UserResult)
	require.True(t, ok, "unexpected result %T", resp.Results[0])
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "/profile/u1", u.URL)
	assert.Equal(t, 1, resp.Counts["users"])
}

func TestClient_WikiContentIsSearchable(t *testing.T) {
	c, _ := newTestClient(t)

	resp, err := c.Search(context.Background(), NewQuery("queen"), "project")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Bees project", resp.Results[0].(*NodeResult).Title)
}

func TestClient_InvalidQuery(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Search(context.Background(), &Query{}, "")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestClient_SyncRemovesPrivateNode(t *testing.T) {
	c, store := newTestClient(t)
	ctx := context.Background()

	p1, err := store.LoadNode(ctx, "p1")
	require.NoError(t, err)
	hidden := *p1
	hidden.IsPublic = false
	store.SaveNode(&hidden)
	require.NoError(t, c.SyncNodeByID(ctx, "p1"))

	resp, err := c.Search(ctx, NewQuery("bees"), "")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Counts["projects"])
	assert.Equal(t, 1, resp.Counts["components"])

	// The component now points at a private parent.
	require.Len(t, resp.Results, 1)
	component := resp.Results[0].(*NodeResult)
	require.NotNil(t, component.ParentTitle)
	assert.Equal(t, "-- private project --", *component.ParentTitle)
}

func TestClient_Contributors(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	page, err := c.SearchContributors(ctx, ContributorRequest{Query: "ad", CurrentUser: "u2"})
	require.NoError(t, err)
	require.Len(t, page.Users, 1, "disabled users are not indexed")
	ada := page.Users[0]
	assert.Equal(t, "u1", ada.ID)
	assert.Equal(t, 1, ada.NProjectsInCommon)
	require.NotNil(t, ada.Employment)
	assert.Equal(t, "Analytical Engines", *ada.Employment)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Pages)

	page, err = c.SearchContributors(ctx, ContributorRequest{Query: "ad", Exclude: []string{"u1"}})
	require.NoError(t, err)
	assert.Empty(t, page.Users)
}

func TestClient_ReindexReportsMissingEntities(t *testing.T) {
	c, _ := newTestClient(t)

	report := c.Reindex(context.Background(), []string{"p1", "nope"}, []string{"u1"})
	require.Len(t, report.Nodes, 2)
	assert.NoError(t, report.Nodes[0].Err())
	assert.ErrorIs(t, report.Nodes[1].Err(), ErrNotFound)
	assert.Equal(t, 1, report.Failed())
}

func TestClient_DeleteIndex(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.DeleteIndex(ctx))
	require.NoError(t, c.DeleteIndex(ctx), "deleting a missing index is not an error")

	_, err := c.Search(ctx, NewQuery("bees"), "")
	assert.True(t, IsIndexNotFound(err), "got %v", err)
}

func TestClient_Health(t *testing.T) {
	c, _ := newTestClient(t)
	assert.True(t, c.Available())

	report := c.Health(context.Background())
	assert.Equal(t, "ok", string(report.Status))
}
