// Package entity reads canonical entities (nodes, users, wiki pages) for the
// indexer and the query services. It never writes.
package entity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kailas-cloud/nodesearch/internal/domain"
	"github.com/kailas-cloud/nodesearch/internal/domain/entity"
)

// Config holds Postgres connection parameters.
type Config struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	PingTimeout  time.Duration
}

// Postgres loads entities from the canonical Postgres database.
type Postgres struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Postgres, error) {
	conn, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(10 * time.Minute)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := conn.PingContext(pctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return NewPostgres(conn), nil
}

// NewPostgres wraps an open database handle.
func NewPostgres(conn *sql.DB) *Postgres {
	return &Postgres{db: conn}
}

// Ping checks connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (p *Postgres) Close() error {
	return p.db.Close() //nolint:wrapcheck // closing the owned handle
}

const selectNode = `
		SELECT id, title, description, category, is_public, is_deleted, is_registration,
		       registered_date, date_created, COALESCE(parent_id, ''), tags
		FROM nodes
		WHERE id = $1`

const selectContributors = `
		SELECT u.id, u.fullname, u.username, u.is_registered, u.is_merged, u.is_disabled, u.is_confirmed
		FROM node_contributors c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.node_id = $1 AND c.visible
		ORDER BY c.position`

const selectCurrentWikiPages = `
		SELECT page_name, page_id
		FROM node_wiki_pages
		WHERE node_id = $1`

// LoadNode loads a node with its tags, visible contributors and current
// wiki page references.
func (p *Postgres) LoadNode(ctx context.Context, id string) (*entity.Node, error) {
	var (
		n          entity.Node
		registered sql.NullTime
		tags       pq.StringArray
	)
	err := p.db.QueryRowContext(ctx, selectNode, id).Scan(
		&n.ID, &n.Title, &n.Description, &n.Category, &n.IsPublic, &n.IsDeleted, &n.IsRegistration,
		&registered, &n.DateCreated, &n.ParentID, &tags,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load node %s: %w", id, err)
	}
	if registered.Valid {
		t := registered.Time
		n.RegisteredDate = &t
	}
	n.Tags = make([]*entity.Tag, 0, len(tags))
	for _, t := range tags {
		n.Tags = append(n.Tags, &entity.Tag{ID: t})
	}

	if n.VisibleContributors, err = p.loadContributors(ctx, id); err != nil {
		return nil, err
	}
	if n.WikiPagesCurrent, err = p.loadWikiRefs(ctx, id); err != nil {
		return nil, err
	}
	return &n, nil
}

// loadContributors keeps dangling user references as nil entries.
func (p *Postgres) loadContributors(ctx context.Context, nodeID string) ([]*entity.User, error) {
	rows, err := p.db.QueryContext(ctx, selectContributors, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load contributors of %s: %w", nodeID, err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var (
			id, fullname, username                  sql.NullString
			registered, merged, disabled, confirmed sql.NullBool
		)
		if err := rows.Scan(&id, &fullname, &username, &registered, &merged, &disabled, &confirmed); err != nil {
			return nil, fmt.Errorf("scan contributor of %s: %w", nodeID, err)
		}
		if !id.Valid {
			users = append(users, nil)
			continue
		}
		users = append(users, &entity.User{
			ID:           id.String,
			FullName:     fullname.String,
			Username:     username.String,
			IsRegistered: registered.Bool,
			IsMerged:     merged.Bool,
			IsDisabled:   disabled.Bool,
			IsConfirmed:  confirmed.Bool,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributors of %s: %w", nodeID, err)
	}
	return users, nil
}

func (p *Postgres) loadWikiRefs(ctx context.Context, nodeID string) (map[string]string, error) {
	rows, err := p.db.QueryContext(ctx, selectCurrentWikiPages, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load wiki pages of %s: %w", nodeID, err)
	}
	defer rows.Close()

	refs := make(map[string]string)
	for rows.Next() {
		var name, pageID string
		if err := rows.Scan(&name, &pageID); err != nil {
			return nil, fmt.Errorf("scan wiki page of %s: %w", nodeID, err)
		}
		refs[name] = pageID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wiki pages of %s: %w", nodeID, err)
	}
	return refs, nil
}

// LoadWikiPage loads one wiki page version.
func (p *Postgres) LoadWikiPage(ctx context.Context, id string) (*entity.WikiPage, error) {
	var w entity.WikiPage
	err := p.db.QueryRowContext(ctx,
		`SELECT id, page_name, content FROM wiki_pages WHERE id = $1`, id,
	).Scan(&w.ID, &w.PageName, &w.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("wiki page %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load wiki page %s: %w", id, err)
	}
	return &w, nil
}

// LoadUser loads a user with employment, education and social handles.
func (p *Postgres) LoadUser(ctx context.Context, id string) (*entity.User, error) {
	var (
		u      entity.User
		social []byte
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, fullname, username, is_registered, is_merged, is_disabled, is_confirmed, social
		FROM users
		WHERE id = $1`, id,
	).Scan(&u.ID, &u.FullName, &u.Username, &u.IsRegistered, &u.IsMerged, &u.IsDisabled, &u.IsConfirmed, &social)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	if len(social) > 0 {
		if err := json.Unmarshal(social, &u.Social); err != nil {
			return nil, fmt.Errorf("decode social of user %s: %w", id, err)
		}
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT institution, title
		FROM user_jobs
		WHERE user_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load jobs of %s: %w", id, err)
	}
	for rows.Next() {
		var j entity.Job
		if err := rows.Scan(&j.Institution, &j.Title); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan job of %s: %w", id, err)
		}
		u.Jobs = append(u.Jobs, j)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs of %s: %w", id, err)
	}

	rows, err = p.db.QueryContext(ctx, `
		SELECT institution, degree
		FROM user_schools
		WHERE user_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load schools of %s: %w", id, err)
	}
	for rows.Next() {
		var s entity.School
		if err := rows.Scan(&s.Institution, &s.Degree); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan school of %s: %w", id, err)
		}
		u.Schools = append(u.Schools, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schools of %s: %w", id, err)
	}
	return &u, nil
}

// ProjectsInCommon counts the non-deleted nodes both users contribute to.
func (p *Postgres) ProjectsInCommon(ctx context.Context, userID, otherID string) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT a.node_id)
		FROM node_contributors a
		JOIN node_contributors b ON b.node_id = a.node_id
		JOIN nodes n ON n.id = a.node_id
		WHERE a.user_id = $1 AND b.user_id = $2 AND NOT n.is_deleted`, userID, otherID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("projects in common of %s and %s: %w", userID, otherID, err)
	}
	return n, nil
}

// ListNodeIDs returns every node id.
func (p *Postgres) ListNodeIDs(ctx context.Context) ([]string, error) {
	return p.listIDs(ctx, `SELECT id FROM nodes ORDER BY id`)
}

// ListUserIDs returns every user id.
func (p *Postgres) ListUserIDs(ctx context.Context) ([]string, error) {
	return p.listIDs(ctx, `SELECT id FROM users ORDER BY id`)
}

func (p *Postgres) listIDs(ctx context.Context, q string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
