package organization

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL-safe organization identifier: diacritics folded,
// lower-cased, runs of other characters collapsed to one hyphen.
func Slugify(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}

	slug := nonSlugChars.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}
