// Package result holds the shapes returned by faceted search and
// contributor typeahead.
package result

import (
	"math"

	"github.com/kailas-cloud/nodesearch/internal/domain/category"
	"github.com/kailas-cloud/nodesearch/internal/domain/document"
)

// PrivateParentTitle replaces the title of a parent the reader may not see.
const PrivateParentTitle = "-- private project --"

// CountTotal is the counts key holding the sum over all kinds.
const CountTotal = "total"

// ParentInfo is the privacy-filtered view of a node's owning project.
type ParentInfo struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	IsRegistration *bool   `json:"is_registration"`
	ID             *string `json:"id"`
}

// PrivateParent returns the redacted placeholder.
func PrivateParent() *ParentInfo {
	return &ParentInfo{Title: PrivateParentTitle}
}

// PublicParent returns the visible summary of a parent.
func PublicParent(id, title, url string, isRegistration bool) *ParentInfo {
	return &ParentInfo{Title: title, URL: url, IsRegistration: &isRegistration, ID: &id}
}

// NodeResult is a project, component or registration hit with its parent
// denormalized.
type NodeResult struct {
	Contributors    []string          `json:"contributors"`
	WikiLink        string            `json:"wiki_link"`
	Title           string            `json:"title"`
	URL             string            `json:"url"`
	IsComponent     bool              `json:"is_component"`
	ParentTitle     *string           `json:"parent_title"`
	ParentURL       *string           `json:"parent_url"`
	Tags            []string          `json:"tags"`
	ContributorsURL []string          `json:"contributors_url"`
	IsRegistration  *bool             `json:"is_registration"`
	Description     *string           `json:"description"`
	Category        category.Category `json:"category"`
}

// FormatNode flattens doc with its parent. A nil parent means the node is
// top level. With a parent, the registration flag comes from the parent and
// the description is suppressed.
func FormatNode(doc *document.NodeDocument, parent *ParentInfo) *NodeResult {
	r := &NodeResult{
		Contributors:    doc.Contributors,
		WikiLink:        doc.URL + "wiki/",
		Title:           doc.Title,
		URL:             doc.URL,
		IsComponent:     parent != nil,
		Tags:            doc.Tags,
		ContributorsURL: doc.ContributorsURL,
		Category:        doc.Category,
	}
	if parent == nil {
		isReg := doc.IsRegistration
		desc := doc.Description
		r.IsRegistration = &isReg
		r.Description = &desc
		return r
	}
	title, url := parent.Title, parent.URL
	r.ParentTitle = &title
	r.ParentURL = &url
	r.IsRegistration = parent.IsRegistration
	return r
}

// UserResult is a user hit with its profile url.
type UserResult struct {
	*document.UserDocument
	URL string `json:"url"`
}

// FormatUser attaches the profile url to doc.
func FormatUser(doc *document.UserDocument) *UserResult {
	return &UserResult{UserDocument: doc, URL: "/profile/" + doc.ID}
}

// TagBucket is one tag cloud entry.
type TagBucket struct {
	Key      string `json:"key"`
	DocCount int    `json:"doc_count"`
}

// Response is the merged faceted search result.
type Response struct {
	Results     []any             `json:"results"`
	Counts      map[string]int    `json:"counts"`
	Tags        []TagBucket       `json:"tags"`
	TypeAliases map[string]string `json:"typeAliases"`
}

// Empty returns the neutral response: no hits, zero counts, no tags.
func Empty() *Response {
	counts := make(map[string]int, len(category.Kinds)+1)
	for _, k := range category.Kinds {
		counts[k.Alias()] = 0
	}
	counts[CountTotal] = 0
	return &Response{
		Results:     []any{},
		Counts:      counts,
		Tags:        []TagBucket{},
		TypeAliases: category.TypeAliases(),
	}
}

// Contributor is one typeahead entry.
type Contributor struct {
	FullName          string  `json:"fullname"`
	ID                string  `json:"id"`
	Employment        *string `json:"employment"`
	Education         *string `json:"education"`
	NProjectsInCommon int     `json:"n_projects_in_common"`
	GravatarURL       string  `json:"gravatar_url"`
	ProfileURL        string  `json:"profile_url"`
	Registered        bool    `json:"registered"`
	Active            bool    `json:"active"`
}

// ContributorPage is a page of typeahead results.
type ContributorPage struct {
	Users []Contributor `json:"users"`
	Total int           `json:"total"`
	Pages int           `json:"pages"`
	Page  int           `json:"page"`
}

// Pages returns ceil(total/size). Size below 1 yields 0.
func Pages(total, size int) int {
	if size < 1 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(size)))
}
