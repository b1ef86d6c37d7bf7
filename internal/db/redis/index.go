package redis

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/nodesearch/internal/db"
)

// schemaField is what query rendering needs to know about a field.
type schemaField struct {
	Type db.IndexFieldType
	List bool
}

type schema map[string]schemaField

func schemaOf(def *db.IndexDefinition) schema {
	sc := make(schema, len(def.Fields))
	for _, f := range def.Fields {
		sc[f.Name] = schemaField{Type: f.Type, List: f.List}
	}
	return sc
}

// CreateIndex creates an FT index over the JSON documents of def.Name.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.schemas.Add(def.Name, schemaOf(def))
	return nil
}

// DropIndex removes an FT index and every document under its prefix.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	s.schemas.Remove(name)

	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(ftIndex(name), "DD").Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists checks index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	_, err := s.schema(ctx, name)
	if errors.Is(err, db.ErrIndexNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// schema returns the cached field types of an index, loading them with
// FT.INFO on first use.
func (s *Store) schema(ctx context.Context, name string) (schema, error) {
	if sc, ok := s.schemas.Get(name); ok {
		return sc, nil
	}

	cmd := s.b().Arbitrary("FT.INFO").Args(ftIndex(name)).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}

	sc := parseInfoAttributes(raw)
	s.schemas.Add(name, sc)
	return sc, nil
}

// parseInfoAttributes reads the "attributes" section of an FT.INFO reply.
// Attribute entries mix key/value pairs with bare flags, so keys are
// looked up by name rather than by stride.
func parseInfoAttributes(raw []rueidis.RedisMessage) schema {
	sc := make(schema)
	for i := 0; i+1 < len(raw); i += 2 {
		name, err := raw[i].ToString()
		if err != nil || name != "attributes" {
			continue
		}
		attrs, err := raw[i+1].ToArray()
		if err != nil {
			return sc
		}
		for _, a := range attrs {
			parts, err := a.AsStrSlice()
			if err != nil {
				continue
			}
			var identifier, attribute, typ string
			for j := 0; j+1 < len(parts); j++ {
				switch parts[j] {
				case "identifier":
					identifier = parts[j+1]
				case "attribute":
					attribute = parts[j+1]
				case "type":
					typ = parts[j+1]
				}
			}
			if attribute == "" {
				continue
			}
			f := schemaField{
				List: strings.HasPrefix(identifier, "$."+db.HiddenPrefix) || strings.HasSuffix(identifier, "[*]"),
			}
			switch typ {
			case "TAG":
				f.Type = db.IndexFieldTag
			case "NUMERIC":
				f.Type = db.IndexFieldNumeric
			default:
				f.Type = db.IndexFieldText
			}
			sc[attribute] = f
		}
	}
	return sc
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{
		ftIndex(idx.Name),
		"ON", "JSON",
		"PREFIX", "1", keyPrefix(idx.Name),
		"SCHEMA",
	}

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

// buildFieldArgs maps a field onto a JSONPath attribute. Tag lists are
// indexed through their hidden joined companion, text lists through their
// array elements and maps through their values.
func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	path := "$." + f.Name
	switch {
	case f.List && f.Type == db.IndexFieldText:
		path = "$." + f.Name + "[*]"
	case f.List:
		path = "$." + db.HiddenPrefix + f.Name
	case f.Map:
		path = "$." + f.Name + ".*"
	}

	args := []string{path, "AS", f.Name}

	switch f.Type {
	case db.IndexFieldNumeric:
		args = append(args, "NUMERIC")

	case db.IndexFieldText:
		args = append(args, "TEXT")

	case db.IndexFieldTag, db.IndexFieldDate:
		// RFC 3339 timestamps sort lexicographically as tags.
		args = append(args, "TAG")
		if f.List {
			args = append(args, "SEPARATOR", listSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}

	default:
		return nil, errors.New("unknown field type")
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}

	return args, nil
}
