package textutil

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

const MaxTokenLength = 50

var (
	nonWordRegex   = regexp.MustCompile(`[^\w ]`)
	separatorRegex = regexp.MustCompile(`[ _]+`)
	// trailing digit runs and low-information words never end a token,
	// so titles differing only by trailing filler tokenize identically
	trailingRegex = regexp.MustCompile(`^(.+?)(_([0-9]+|and|by|for|from|in|into|of|on|onto|or|per|the|till|to|until|up|via|with|without))*$`)
)

// Tokenize converts a free-text product title into an identifier
// containing only standard letters, numbers, and underscores. It is used
// for equality comparison, not display.
//
//	Tokenize("Beyond Smart Mill & Brew Coffee Maker")    // "beyond_smart_mill_brew_coffee_maker"
//	Tokenize("RC Cyclone Revolution Stunt Car - 2 Pack") // "rc_cyclone_revolution_stunt_car_2_pack"
func Tokenize(s string) string {
	s = html.UnescapeString(s)

	stripAccents := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if stripped, _, err := transform.String(stripAccents, s); err == nil {
		s = stripped
	}

	s = strings.ToLower(s)
	s = nonWordRegex.ReplaceAllString(s, "")
	s = separatorRegex.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	if len(s) > MaxTokenLength {
		s = s[:MaxTokenLength]
		// back up to the nearest word boundary instead of cutting mid-word
		if i := strings.LastIndex(s, "_"); i > 0 {
			s = s[:i]
		}
	}

	if m := trailingRegex.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	return s
}
