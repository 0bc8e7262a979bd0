package normalizer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category returns the first tag not in the stoplist, title-cased. When no
// tag survives the fallback label is returned.
func Category(tags, stoplist []string, fallback string) string {
	stop := make(map[string]bool, len(stoplist))
	for _, s := range stoplist {
		stop[strings.ToLower(strings.TrimSpace(s))] = true
	}

	caser := cases.Title(language.English)

	for _, tag := range tags {
		tag = NormalizeWhitespace(tag)
		if tag == "" || stop[strings.ToLower(tag)] {
			continue
		}

		return caser.String(tag)
	}

	return fallback
}
