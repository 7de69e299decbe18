// Package images classifies product image urls by their role suffix.
// Two historical url styles exist: a suffix appended directly to the
// file name ("...Pig0e7Detail.jpg") and a dash-separated suffix
// ("...OldSyntax-thumbnail.png").
package images

import (
	"net/url"
	"regexp"
	"strings"
)

const Extname = ".jpg"

var Suffixes = []string{"detail", "standard", "thumbnail"}

var (
	dashStyleRegex = regexp.MustCompile(`-(` + strings.Join(Suffixes, "|") + `)\.(.+)$`)
	dashSplitRegex = regexp.MustCompile(`(.*)-(.*)\.(.+)$`)
	bareStyleRegex = regexp.MustCompile(`^(.*)...(` + strings.Join(Suffixes, "|") + `)\.(.+)$`)
)

// Valid returns the image-role suffix for an absolute image url, or ""
// when the url is relative or carries no known suffix.
func Valid(s string) string {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}

	lower := strings.ToLower(s)
	if dashStyleRegex.MatchString(lower) {
		if m := dashSplitRegex.FindStringSubmatch(lower); m != nil {
			return m[2]
		}
		return ""
	}
	if m := bareStyleRegex.FindStringSubmatch(lower); m != nil {
		return m[2]
	}
	return ""
}

// Parse maps each valid url in values to its suffix. Invalid entries and
// duplicates are ignored.
func Parse(values ...string) map[string]string {
	out := map[string]string{}
	seen := map[string]bool{}
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		if suffix := Valid(v); suffix != "" {
			out[suffix] = v
		}
	}
	return out
}

// ValidExtname reports whether the url ends in the native image format.
func ValidExtname(s string) bool {
	return strings.HasSuffix(strings.ToLower(s), Extname)
}
