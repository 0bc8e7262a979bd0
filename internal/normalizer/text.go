package normalizer

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

const ellipsis = "..."

var stripPolicy = newStripPolicy()

func newStripPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)

	return p
}

// PlainText strips markup, decodes entities and collapses whitespace.
func PlainText(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	stripped := stripPolicy.Sanitize(markup)

	return NormalizeWhitespace(html.UnescapeString(stripped))
}

// NormalizeWhitespace replaces runs of whitespace with a single space.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Excerpt truncates text to at most budget runes on a word boundary and
// appends an ellipsis. A first word longer than the budget is kept whole.
func Excerpt(text string, budget int) string {
	text = NormalizeWhitespace(text)

	runes := []rune(text)
	if budget <= 0 || len(runes) <= budget {
		return text
	}

	cut := budget
	if !unicode.IsSpace(runes[cut]) {
		for cut > 0 && !unicode.IsSpace(runes[cut-1]) {
			cut--
		}

		if cut == 0 {
			// Single overlong word: keep it whole.
			cut = budget
			for cut < len(runes) && !unicode.IsSpace(runes[cut]) {
				cut++
			}
		}
	}

	trimmed := strings.TrimRightFunc(string(runes[:cut]), func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(",;:-", r)
	})

	if len([]rune(trimmed)) == len(runes) {
		return trimmed
	}

	return trimmed + ellipsis
}

// ReadMinutes estimates reading time as ceil(words / wpm), floored at minimum.
func ReadMinutes(text string, wpm, minimum int) int {
	if wpm <= 0 {
		wpm = 200
	}

	words := len(strings.Fields(text))
	minutes := (words + wpm - 1) / wpm

	if minutes < minimum {
		return minimum
	}

	return minutes
}
