package document

import "fmt"

// socialTemplates formats a raw handle into a profile URL, per platform.
var socialTemplates = map[string]string{
	"github":       "http://github.com/%s",
	"impactStory":  "https://impactstory.org/%s",
	"linkedIn":     "https://www.linkedin.com/profile/view?id=%s",
	"orcid":        "http://orcid.com/%s",
	"personal":     "%s",
	"researcherId": "http://researcherid.com/rid/%s",
	"scholar":      "http://scholar.google.com/citations?user=%s",
	"twitter":      "http://twitter.com/%s",
}

// SocialLinks returns profile URLs for every known platform with a non-empty handle.
// Unknown platforms are ignored.
func SocialLinks(social map[string]string) map[string]string {
	links := make(map[string]string, len(social))
	for platform, handle := range social {
		if handle == "" {
			continue
		}
		tmpl, ok := socialTemplates[platform]
		if !ok {
			continue
		}
		links[platform] = fmt.Sprintf(tmpl, handle)
	}
	return links
}
