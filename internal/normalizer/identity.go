package normalizer

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identity key channel prefixes.
const (
	TitleKeyPrefix = "title:"
	URLKeyPrefix   = "url:"
)

// IdentityKeys derives every identity key available for a title and link.
// An empty channel contributes no key.
func IdentityKeys(title, link string) []string {
	keys := make([]string, 0, 2)

	if k := TitleKey(title); k != "" {
		keys = append(keys, k)
	}

	if k := URLKey(link); k != "" {
		keys = append(keys, k)
	}

	return keys
}

// TitleKey lower-cases the title, collapses whitespace and applies NFC.
func TitleKey(title string) string {
	t := NormalizeWhitespace(title)
	if t == "" {
		return ""
	}

	return TitleKeyPrefix + norm.NFC.String(strings.ToLower(t))
}

// URLKey reduces a link to its lower-cased path with trailing slashes, query
// and fragment removed. Links with no path beyond "/" produce no key.
func URLKey(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	path := link
	if u, err := url.Parse(link); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(link, "?#"); i >= 0 {
		path = link[:i]
	}

	path = strings.TrimRight(strings.ToLower(path), "/")
	if path == "" {
		return ""
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return URLKeyPrefix + path
}
