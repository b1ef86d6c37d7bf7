package bleve

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/nodesearch/internal/db"
)

// lowerKeyword indexes a whole value as one lower-cased token.
const lowerKeyword = "keyword_lower"

// buildMapping translates an index definition into a bleve mapping. Fields
// not named by the definition are mapped dynamically. A nil definition
// yields a fully dynamic mapping.
func buildMapping(def *db.IndexDefinition) *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name
	im.StoreDynamic = false
	// Registration of a built-in analyzer combination cannot fail.
	_ = im.AddCustomAnalyzer(lowerKeyword, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})

	dm := bleve.NewDocumentMapping()
	dm.AddFieldMappingsAt(kindField, hiddenField())
	dm.AddFieldMappingsAt(idField, hiddenField())

	if def != nil {
		for i := range def.Fields {
			addField(dm, &def.Fields[i])
		}
	}

	im.DefaultMapping = dm
	if def != nil {
		for _, kind := range def.Kinds {
			im.AddDocumentMapping(kind, dm)
		}
	}
	im.TypeField = kindField
	return im
}

func addField(dm *mapping.DocumentMapping, f *db.IndexField) {
	if f.Map {
		sub := bleve.NewDocumentMapping()
		sub.DefaultAnalyzer = analyzerFor(f)
		dm.AddSubDocumentMapping(f.Name, sub)
		return
	}

	var fm *mapping.FieldMapping
	switch f.Type {
	case db.IndexFieldNumeric:
		fm = bleve.NewNumericFieldMapping()
	case db.IndexFieldDate:
		fm = bleve.NewDateTimeFieldMapping()
	case db.IndexFieldTag:
		fm = bleve.NewKeywordFieldMapping()
		fm.Analyzer = analyzerFor(f)
	default:
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
	}
	fm.Store = false
	fm.DocValues = true
	dm.AddFieldMappingsAt(f.Name, fm)
}

func hiddenField() *mapping.FieldMapping {
	fm := bleve.NewKeywordFieldMapping()
	fm.Store = false
	fm.IncludeInAll = false
	return fm
}

func analyzerFor(f *db.IndexField) string {
	switch {
	case f.Type != db.IndexFieldTag:
		return standard.Name
	case f.TagCaseSensitive:
		return keyword.Name
	default:
		return lowerKeyword
	}
}
