package db

import (
	"errors"
	"strconv"
	"strings"
)

// IndexFieldType enumerates supported index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is an exact-match keyword field.
	IndexFieldTag
	// IndexFieldText is an analyzed full-text field.
	IndexFieldText
	// IndexFieldDate is an RFC 3339 timestamp field.
	IndexFieldDate
)

func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldTag:
		return "TAG"
	case IndexFieldText:
		return "TEXT"
	case IndexFieldDate:
		return "DATE"
	default:
		return "UNKNOWN"
	}
}

// IndexField describes a single top-level document field in an index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// TAG options
	TagCaseSensitive bool

	// List marks an array-of-strings value.
	List bool
	// Map marks an object whose values are all indexed under Name.
	Map bool

	Sortable bool
}

// IndexDefinition is a complete index definition.
type IndexDefinition struct {
	Name string
	// Kinds lists the document kinds the mapping is declared for. Documents
	// of other kinds are indexed with the same schema.
	Kinds  []string
	Fields []IndexField
}

// Field returns the field named name.
func (idx *IndexDefinition) Field(name string) (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return IndexField{}, false
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if strings.HasPrefix(f.Name, HiddenPrefix) {
			return errors.New("field name is reserved: " + f.Name)
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if f.List && f.Map {
			return errors.New("field cannot be both list and map: " + f.Name)
		}
		if (f.List || f.Map) && (f.Type == IndexFieldNumeric || f.Type == IndexFieldDate) {
			return errors.New("list and map fields must be TAG or TEXT: " + f.Name)
		}
	}

	return nil
}

// HiddenPrefix marks adapter-internal document fields. They are never
// returned in hit sources.
const HiddenPrefix = "__"

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
