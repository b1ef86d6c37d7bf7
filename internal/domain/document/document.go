// Package document defines the denormalized records stored in the search
// index and builds them from canonical entities.
package document

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/nodesearch/internal/domain"
	"github.com/kailas-cloud/nodesearch/internal/domain/category"
)

// Ranking weights.
const (
	BoostRegistration = 1
	BoostDefault      = 2
)

// Document is one indexed record: *NodeDocument or *UserDocument.
type Document interface {
	DocID() string
	Kind() category.Category
	Validate() error
}

// NodeDocument represents a project, component or registration.
type NodeDocument struct {
	ID              string            `json:"id"`
	Contributors    []string          `json:"contributors"`
	ContributorsURL []string          `json:"contributors_url"`
	Title           string            `json:"title"`
	Category        category.Category `json:"category"`
	Public          bool              `json:"public"`
	Tags            []string          `json:"tags"`
	Description     string            `json:"description"`
	URL             string            `json:"url"`
	IsRegistration  bool              `json:"is_registration"`
	RegisteredDate  string            `json:"registered_date"`
	Wikis           map[string]string `json:"wikis"`
	ParentID        *string           `json:"parent_id"`
	IsoTimestamp    time.Time         `json:"iso_timestamp"`
	Boost           int               `json:"boost"`
}

// DocID returns the document id.
func (d *NodeDocument) DocID() string { return d.ID }

// Kind returns the resolved category.
func (d *NodeDocument) Kind() category.Category { return d.Category }

// Validate checks the fields every node document must carry.
func (d *NodeDocument) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: node document id is required", domain.ErrInvalidDocument)
	}
	if !d.Category.IsNode() {
		return fmt.Errorf("%w: node document %s has category %q", domain.ErrInvalidDocument, d.ID, d.Category)
	}
	if len(d.Contributors) != len(d.ContributorsURL) {
		return fmt.Errorf("%w: node document %s has %d contributors but %d urls",
			domain.ErrInvalidDocument, d.ID, len(d.Contributors), len(d.ContributorsURL))
	}
	if d.Category == category.Registration && !d.IsRegistration {
		return fmt.Errorf("%w: node document %s is categorized as registration but is not one",
			domain.ErrInvalidDocument, d.ID)
	}
	return nil
}

// UserDocument represents a user for typeahead and user search.
type UserDocument struct {
	ID       string            `json:"id"`
	User     string            `json:"user"`
	Job      string            `json:"job"`
	JobTitle string            `json:"job_title"`
	School   string            `json:"school"`
	Category category.Category `json:"category"`
	Degree   string            `json:"degree"`
	Social   map[string]string `json:"social"`
	Boost    int               `json:"boost"`
}

// DocID returns the document id.
func (d *UserDocument) DocID() string { return d.ID }

// Kind is always category.User.
func (d *UserDocument) Kind() category.Category { return category.User }

// Validate checks the fields every user document must carry.
func (d *UserDocument) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: user document id is required", domain.ErrInvalidDocument)
	}
	if d.Category != category.User {
		return fmt.Errorf("%w: user document %s has category %q", domain.ErrInvalidDocument, d.ID, d.Category)
	}
	return nil
}
