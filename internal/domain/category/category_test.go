package category

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		label string
		reg   bool
		want  Category
	}{
		{"project", false, Project},
		{"project", true, Registration},
		{"", false, Component},
		{"hypothesis", false, Component},
		{"methods and measures", false, Component},
		{"data", true, Registration},
		{"other", false, Component},
		{"software", false, Category("software")},
		{"software", true, Registration},
	}
	for _, tc := range tests {
		if got := Resolve(tc.label, tc.reg); got != tc.want {
			t.Errorf("Resolve(%q, %v) = %q, want %q", tc.label, tc.reg, got, tc.want)
		}
	}
}

func TestAlias(t *testing.T) {
	if Project.Alias() != "projects" || User.Alias() != "users" {
		t.Errorf("unexpected aliases: %q %q", Project.Alias(), User.Alias())
	}
	if Category("software").Alias() != "software" {
		t.Error("custom category should alias to itself")
	}
}

func TestTypeAliases(t *testing.T) {
	m := TypeAliases()
	want := map[string]string{
		"projects":      "project",
		"components":    "component",
		"registrations": "registration",
		"users":         "user",
	}
	if len(m) != len(want) {
		t.Fatalf("expected %d aliases, got %d", len(want), len(m))
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("alias %q = %q, want %q", k, m[k], v)
		}
	}
}

func TestIsNode(t *testing.T) {
	if User.IsNode() {
		t.Error("user is not a node kind")
	}
	if !Component.IsNode() || !Category("software").IsNode() {
		t.Error("component and custom labels are node kinds")
	}
}
