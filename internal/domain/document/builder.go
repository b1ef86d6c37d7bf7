package document

import (
	"github.com/kailas-cloud/nodesearch/internal/domain"
	"github.com/kailas-cloud/nodesearch/internal/domain/category"
	"github.com/kailas-cloud/nodesearch/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// FromNode builds the document for a node. wikis holds the resolved current
// wiki pages; nil entries (pages that failed to resolve) are skipped.
// A non-project node without a parent returns domain.ErrOrphaned.
func FromNode(node *entity.Node, wikis []*entity.WikiPage) (*NodeDocument, error) {
	var parentID *string
	if category.Label(node.Category) != category.Project {
		if node.ParentID == "" {
			return nil, domain.ErrOrphaned
		}
		id := node.ParentID
		parentID = &id
	}

	names := make([]string, 0, len(node.VisibleContributors))
	urls := make([]string, 0, len(node.VisibleContributors))
	for _, c := range node.VisibleContributors {
		if c == nil || !c.Active() {
			continue
		}
		names = append(names, c.FullName)
		urls = append(urls, c.ProfileURL())
	}

	tags := make([]string, 0, len(node.Tags))
	for _, t := range node.Tags {
		if t == nil {
			continue
		}
		tags = append(tags, t.ID)
	}

	pages := make(map[string]string, len(wikis))
	for _, w := range wikis {
		if w == nil {
			continue
		}
		pages[w.PageName] = FlattenText(w.Content)
	}

	var registered string
	if node.RegisteredDate != nil {
		registered = node.RegisteredDate.Format(dateLayout)
	}

	boost := BoostDefault
	if node.IsRegistration {
		boost = BoostRegistration
	}

	doc := &NodeDocument{
		ID:              node.ID,
		Contributors:    names,
		ContributorsURL: urls,
		Title:           node.Title,
		Category:        category.Resolve(node.Category, node.IsRegistration),
		Public:          node.IsPublic,
		Tags:            tags,
		Description:     node.Description,
		URL:             node.URL(),
		IsRegistration:  node.IsRegistration,
		RegisteredDate:  registered,
		Wikis:           pages,
		ParentID:        parentID,
		IsoTimestamp:    node.DateCreated,
		Boost:           boost,
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// FromUser builds the document for a user.
func FromUser(user *entity.User) (*UserDocument, error) {
	doc := &UserDocument{
		ID:       user.ID,
		User:     user.FullName,
		Category: category.User,
		Social:   SocialLinks(user.Social),
		Boost:    BoostDefault,
	}
	if len(user.Jobs) > 0 {
		doc.Job = user.Jobs[0].Institution
		doc.JobTitle = user.Jobs[0].Title
	}
	if len(user.Schools) > 0 {
		doc.School = user.Schools[0].Institution
		doc.Degree = user.Schools[0].Degree
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
