// Package category resolves the index kind of a node or user document.
package category

// Category is the document kind stored in the index.
type Category string

// Known document kinds.
const (
	Project      Category = "project"
	Component    Category = "component"
	Registration Category = "registration"
	User         Category = "user"
)

// Kinds lists every kind counted by faceted search, in display order.
var Kinds = []Category{Project, Component, Registration, User}

// NodeKinds lists the kinds produced from nodes.
var NodeKinds = []Category{Project, Component, Registration}

// componentLabels are node category labels that collapse to Component.
var componentLabels = map[string]struct{}{
	"":                     {},
	"hypothesis":           {},
	"methods and measures": {},
	"procedure":            {},
	"instrumentation":      {},
	"data":                 {},
	"analysis":             {},
	"communication":        {},
	"other":                {},
}

// Label resolves a node category label without the registration override.
func Label(label string) Category {
	if _, ok := componentLabels[label]; ok {
		return Component
	}
	return Category(label)
}

// Resolve maps a node category label to its index kind.
// Registrations always resolve to Registration.
func Resolve(label string, isRegistration bool) Category {
	if isRegistration {
		return Registration
	}
	return Label(label)
}

// IsNode reports whether c is one of the kinds produced from nodes,
// including verbatim custom labels.
func (c Category) IsNode() bool {
	return c != "" && c != User
}

// Alias returns the plural display alias used in facet counts.
func (c Category) Alias() string {
	switch c {
	case Project:
		return "projects"
	case Component:
		return "components"
	case Registration:
		return "registrations"
	case User:
		return "users"
	default:
		return string(c)
	}
}

// TypeAliases maps plural display aliases back to singular kinds.
func TypeAliases() map[string]string {
	m := make(map[string]string, len(Kinds))
	for _, k := range Kinds {
		m[k.Alias()] = string(k)
	}
	return m
}

func (c Category) String() string { return string(c) }
