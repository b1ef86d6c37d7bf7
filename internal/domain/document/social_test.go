package document

import "testing"

func TestSocialLinks(t *testing.T) {
	in := map[string]string{
		"github":       "octo",
		"impactStory":  "is",
		"linkedIn":     "42",
		"orcid":        "0000-0001",
		"personal":     "https://example.org",
		"researcherId": "R-1",
		"scholar":      "sch",
		"twitter":      "",
		"myspace":      "tom",
	}
	want := map[string]string{
		"github":       "http://github.com/octo",
		"impactStory":  "https://impactstory.org/is",
		"linkedIn":     "https://www.linkedin.com/profile/view?id=42",
		"orcid":        "http://orcid.com/0000-0001",
		"personal":     "https://example.org",
		"researcherId": "http://researcherid.com/rid/R-1",
		"scholar":      "http://scholar.google.com/citations?user=sch",
	}

	got := SocialLinks(in)
	if len(got) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: got %q, want %q", k, got[k], v)
		}
	}
}

func TestSocialLinks_Nil(t *testing.T) {
	if got := SocialLinks(nil); len(got) != 0 {
		t.Errorf("expected no links, got %v", got)
	}
}

func TestFlattenText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain   text\n here", "plain text here"},
		{"<p>one</p><p>two</p>", "one two"},
		{"a &amp; b", "a & b"},
		{"<script>alert(1)</script>visible", "visible"},
		{"<style>p{}</style><div>x<br/>y</div>", "x y"},
	}
	for _, tc := range tests {
		if got := FlattenText(tc.in); got != tc.want {
			t.Errorf("FlattenText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
