package result

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/nodesearch/internal/domain/category"
	"github.com/kailas-cloud/nodesearch/internal/domain/document"
)

func nodeDoc() *document.NodeDocument {
	return &document.NodeDocument{
		ID:              "abc12",
		Title:           "Genome study",
		Description:     "Sequencing things",
		Category:        category.Component,
		URL:             "/abc12/",
		Tags:            []string{"bio"},
		Contributors:    []string{"Ada"},
		ContributorsURL: []string{"/u1/"},
		IsRegistration:  true,
	}
}

func TestFormatNode_TopLevel(t *testing.T) {
	r := FormatNode(nodeDoc(), nil)
	if r.IsComponent {
		t.Error("top-level node should not be a component")
	}
	if r.ParentTitle != nil || r.ParentURL != nil {
		t.Error("top-level node should have no parent fields")
	}
	if r.Description == nil || *r.Description != "Sequencing things" {
		t.Errorf("expected description, got %v", r.Description)
	}
	if r.IsRegistration == nil || !*r.IsRegistration {
		t.Error("expected own registration flag")
	}
	if r.WikiLink != "/abc12/wiki/" {
		t.Errorf("unexpected wiki link %q", r.WikiLink)
	}
}

func TestFormatNode_PublicParent(t *testing.T) {
	r := FormatNode(nodeDoc(), PublicParent("p1", "Parent", "/p1/", false))
	if !r.IsComponent {
		t.Error("expected component")
	}
	if *r.ParentTitle != "Parent" || *r.ParentURL != "/p1/" {
		t.Errorf("unexpected parent: %q %q", *r.ParentTitle, *r.ParentURL)
	}
	if r.IsRegistration == nil || *r.IsRegistration {
		t.Error("registration flag should come from the parent")
	}
	if r.Description != nil {
		t.Error("description should be suppressed under a parent")
	}
}

func TestFormatNode_PrivateParent(t *testing.T) {
	r := FormatNode(nodeDoc(), PrivateParent())
	if *r.ParentTitle != PrivateParentTitle || *r.ParentURL != "" {
		t.Errorf("unexpected parent: %q %q", *r.ParentTitle, *r.ParentURL)
	}
	if r.IsRegistration != nil {
		t.Error("private parent should yield a null registration flag")
	}
	if r.Description != nil {
		t.Error("description should be suppressed under a private parent")
	}

	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := m["description"]; !ok || v != nil {
		t.Errorf("expected explicit null description, got %v", v)
	}
}

func TestFormatUser(t *testing.T) {
	r := FormatUser(&document.UserDocument{ID: "u1", User: "Ada", Category: category.User})
	if r.URL != "/profile/u1" {
		t.Errorf("unexpected url %q", r.URL)
	}
	raw, _ := json.Marshal(r)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	if m["user"] != "Ada" || m["url"] != "/profile/u1" {
		t.Errorf("expected embedded document fields, got %v", m)
	}
}

func TestPages(t *testing.T) {
	const size = 10
	tests := []struct {
		total, want int
	}{
		{0, 0}, {1, 1}, {size - 1, 1}, {size, 1}, {size + 1, 2},
	}
	for _, tc := range tests {
		if got := Pages(tc.total, size); got != tc.want {
			t.Errorf("Pages(%d, %d) = %d, want %d", tc.total, size, got, tc.want)
		}
	}
	if got := Pages(5, 1); got != 5 {
		t.Errorf("Pages(5, 1) = %d", got)
	}
	if got := Pages(5, 0); got != 0 {
		t.Errorf("Pages(5, 0) = %d", got)
	}
}

func TestEmpty(t *testing.T) {
	r := Empty()
	if len(r.Results) != 0 || len(r.Tags) != 0 {
		t.Error("expected empty results")
	}
	if r.Counts[CountTotal] != 0 || len(r.Counts) != len(category.Kinds)+1 {
		t.Errorf("unexpected counts %v", r.Counts)
	}
	if r.TypeAliases["projects"] != "project" {
		t.Errorf("unexpected aliases %v", r.TypeAliases)
	}
}
