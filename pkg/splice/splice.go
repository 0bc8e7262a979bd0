// Package splice replaces or extends marker-delimited regions of a text document
// without touching any byte outside the region.
package splice

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a marker or anchor is absent from the document.
var ErrNotFound = errors.New("marker not found")

// Replace swaps the bytes strictly between the first begin marker and the
// first end marker after it for content. Both markers are preserved. When
// either marker is missing the document is returned unchanged with ErrNotFound.
func Replace(doc, begin, end, content string) (string, error) {
	start, stop, err := locate(doc, begin, end)
	if err != nil {
		return doc, err
	}

	var b strings.Builder

	b.Grow(len(doc) - (stop - start) + len(content))
	b.WriteString(doc[:start])
	b.WriteString(content)
	b.WriteString(doc[stop:])

	return b.String(), nil
}

// InsertAfter inserts content immediately after the first occurrence of anchor.
// Nothing is removed, so repeated calls prepend newer content.
func InsertAfter(doc, anchor, content string) (string, error) {
	if anchor == "" {
		return doc, fmt.Errorf("%w: empty anchor", ErrNotFound)
	}

	i := strings.Index(doc, anchor)
	if i < 0 {
		return doc, fmt.Errorf("%w: anchor %q", ErrNotFound, anchor)
	}

	at := i + len(anchor)

	return doc[:at] + content + doc[at:], nil
}

// Region returns the current text between the markers.
func Region(doc, begin, end string) (string, error) {
	start, stop, err := locate(doc, begin, end)
	if err != nil {
		return "", err
	}

	return doc[start:stop], nil
}

// Count reports how many times marker occurs in doc.
func Count(doc, marker string) int {
	if marker == "" {
		return 0
	}

	return strings.Count(doc, marker)
}

// locate returns the byte range strictly between the markers.
func locate(doc, begin, end string) (int, int, error) {
	if begin == "" || end == "" {
		return 0, 0, fmt.Errorf("%w: empty marker", ErrNotFound)
	}

	b := strings.Index(doc, begin)
	if b < 0 {
		return 0, 0, fmt.Errorf("%w: begin marker %q", ErrNotFound, begin)
	}

	start := b + len(begin)

	e := strings.Index(doc[start:], end)
	if e < 0 {
		return 0, 0, fmt.Errorf("%w: end marker %q", ErrNotFound, end)
	}

	return start, start + e, nil
}
