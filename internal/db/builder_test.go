package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("website").
		Kinds("project", "component").
		Keyword("category").
		Numeric("boost").Sortable().
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "website" {
		t.Errorf("name = %q, want website", idx.Name)
	}
	if len(idx.Kinds) != 2 {
		t.Errorf("kinds = %v, want 2 entries", idx.Kinds)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "category" || idx.Fields[0].Type != IndexFieldTag || !idx.Fields[0].TagCaseSensitive {
		t.Errorf("field[0] = %+v, want category case-sensitive TAG", idx.Fields[0])
	}
	if idx.Fields[1].Name != "boost" || idx.Fields[1].Type != IndexFieldNumeric || !idx.Fields[1].Sortable {
		t.Errorf("field[1] = %+v, want sortable boost NUMERIC", idx.Fields[1])
	}
}

func TestIndexBuilder_ListsAndMaps(t *testing.T) {
	idx := NewIndex("website").
		KeywordList("tags").
		TextList("contributors").
		TextMap("wikis").
		MustBuild()

	tags, ok := idx.Field("tags")
	if !ok || !tags.List || tags.Type != IndexFieldTag {
		t.Errorf("tags = %+v, want keyword list", tags)
	}
	contrib, _ := idx.Field("contributors")
	if !contrib.List || contrib.Type != IndexFieldText {
		t.Errorf("contributors = %+v, want text list", contrib)
	}
	wikis, _ := idx.Field("wikis")
	if !wikis.Map {
		t.Errorf("wikis = %+v, want text map", wikis)
	}
	if _, ok := idx.Field("missing"); ok {
		t.Error("unexpected field")
	}
}

func TestIndexBuilder_SortableWithoutField(t *testing.T) {
	b := NewIndex("idx").Sortable().Tag("x")
	def := b.MustBuild()
	if def.Fields[0].Sortable {
		t.Error("Sortable before any field should be a no-op")
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Tag("x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Tag("x").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "colon in name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("a:b").Tag("x").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "reserved field",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Tag("__tags").Build()
			},
			wantErr: "reserved",
		},
		{
			name: "numeric list",
			builder: func() (*IndexDefinition, error) {
				return (&IndexBuilder{def: IndexDefinition{
					Name:   "idx",
					Fields: []IndexField{{Name: "n", Type: IndexFieldNumeric, List: true}},
				}}).Build()
			},
			wantErr: "must be TAG or TEXT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		Kinds("project").
		KeywordList("tags").
		Numeric("boost").Sortable().
		MustBuild()

	s := idx.String()
	if !strings.HasPrefix(s, "CREATE my-idx KINDS project SCHEMA") {
		t.Errorf("unexpected prefix: %q", s)
	}
	if !strings.Contains(s, "tags TAG LIST CASESENSITIVE") {
		t.Errorf("missing tags field: %q", s)
	}
	if !strings.Contains(s, "boost NUMERIC SORTABLE") {
		t.Errorf("missing boost field: %q", s)
	}
}

func TestIndexBuilder_DuplicateFields(t *testing.T) {
	idx := &IndexDefinition{
		Name: "dup-idx",
		Fields: []IndexField{
			{Name: "field1", Type: IndexFieldTag},
			{Name: "field1", Type: IndexFieldNumeric},
		},
	}

	if err := idx.Validate(); err == nil {
		t.Fatal("expected error for duplicate fields")
	}
}

func TestBoolFilter_Empty(t *testing.T) {
	var f *BoolFilter
	if !f.Empty() {
		t.Error("nil filter should be empty")
	}
	if (&BoolFilter{MustNot: []Clause{{Field: "id", Value: "x"}}}).Empty() {
		t.Error("filter with a clause should not be empty")
	}
}
