package db

import "strings"

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Kinds declares the document kinds the mapping applies to.
func (b *IndexBuilder) Kinds(kinds ...string) *IndexBuilder {
	b.def.Kinds = append(b.def.Kinds, kinds...)
	return b
}

// Numeric adds a NUMERIC field to the index.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldNumeric})
}

// Date adds a DATE field to the index.
func (b *IndexBuilder) Date(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldDate})
}

// Tag adds a case-insensitive TAG field to the index.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldTag})
}

// Keyword adds a case-sensitive, not analyzed TAG field to the index.
func (b *IndexBuilder) Keyword(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldTag, TagCaseSensitive: true})
}

// KeywordList adds a case-sensitive TAG field holding an array of strings.
func (b *IndexBuilder) KeywordList(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldTag, TagCaseSensitive: true, List: true})
}

// Text adds a TEXT field to the index.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText})
}

// TextList adds a TEXT field holding an array of strings.
func (b *IndexBuilder) TextList(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText, List: true})
}

// TextMap adds a TEXT field holding an object of strings.
func (b *IndexBuilder) TextMap(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText, Map: true})
}

// Sortable marks the most recently added field as sortable.
func (b *IndexBuilder) Sortable() *IndexBuilder {
	if n := len(b.def.Fields); n > 0 {
		b.def.Fields[n-1].Sortable = true
	}
	return b
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a debug representation resembling an FT.CREATE command.
func (idx *IndexDefinition) String() string {
	parts := []string{"CREATE", idx.Name}
	if len(idx.Kinds) > 0 {
		parts = append(parts, "KINDS")
		parts = append(parts, idx.Kinds...)
	}
	parts = append(parts, "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name, f.Type.String())
		switch {
		case f.List:
			parts = append(parts, "LIST")
		case f.Map:
			parts = append(parts, "MAP")
		}
		if f.TagCaseSensitive {
			parts = append(parts, "CASESENSITIVE")
		}
		if f.Sortable {
			parts = append(parts, "SORTABLE")
		}
	}
	return strings.Join(parts, " ")
}
