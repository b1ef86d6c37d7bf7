// Package entity holds the canonical-store entities the index is built from.
// Entities are loaded by the repository layer and never mutated here.
package entity

import "time"

// Tag is a node tag. Its ID is the tag text.
type Tag struct {
	ID string
}

// Job is one employment entry, most recent first.
type Job struct {
	Institution string
	Title       string
}

// School is one education entry, most recent first.
type School struct {
	Institution string
	Degree      string
}

// User is a registered or unregistered account.
type User struct {
	ID           string
	FullName     string
	Username     string // primary email
	IsRegistered bool
	IsMerged     bool
	IsDisabled   bool
	IsConfirmed  bool
	Jobs         []Job
	Schools      []School
	Social       map[string]string
}

// Active reports whether the user is registered, confirmed, not merged and not disabled.
func (u *User) Active() bool {
	return u.IsRegistered && u.IsConfirmed && !u.IsMerged && !u.IsDisabled
}

// ProfileURL returns the relative profile URL of the user.
func (u *User) ProfileURL() string {
	return "/" + u.ID + "/"
}

// WikiPage is a resolved wiki page version.
type WikiPage struct {
	ID       string
	PageName string
	Content  string
}

// Node is a project, component or registration.
type Node struct {
	ID             string
	Title          string
	Description    string
	Category       string // raw category label
	IsPublic       bool
	IsDeleted      bool
	IsRegistration bool
	RegisteredDate *time.Time
	DateCreated    time.Time
	// ParentID is empty for top-level nodes and orphans.
	ParentID string
	Tags     []*Tag
	// VisibleContributors may contain nil entries for dangling references.
	VisibleContributors []*User
	// WikiPagesCurrent maps page name to the id of the current page version.
	WikiPagesCurrent map[string]string
}

// URL returns the relative URL of the node.
func (n *Node) URL() string {
	return "/" + n.ID + "/"
}
