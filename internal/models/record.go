// Package models defines data structures shared by the fetch, normalize, and publish stages.
package models

import "time"

// Kind identifies which upstream shape a record came from.
type Kind string

// Record kinds.
const (
	KindPost  Kind = "post"
	KindEvent Kind = "event"
)

// SourceRecord is a raw item as delivered by an upstream feed or events API.
// It is never mutated after the crawler builds it.
type SourceRecord struct {
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Published   string   `json:"published"`
	BodyHTML    string   `json:"bodyHtml"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status,omitempty"`
	Venue       string   `json:"venue,omitempty"`
}

// CanonicalRecord is the normalized, source-agnostic form of one upstream item.
type CanonicalRecord struct {
	PublishedAt  time.Time `json:"publishedAt"`
	Kind         Kind      `json:"kind"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	SourceURL    string    `json:"sourceUrl"`
	Image        string    `json:"image"`
	Thumbnail    string    `json:"thumbnail"`
	Excerpt      string    `json:"excerpt"`
	BodyHTML     string    `json:"bodyHtml"`
	Venue        string    `json:"venue,omitempty"`
	IdentityKeys []string  `json:"identityKeys"`
	ReadMinutes  int       `json:"readMinutes"`
	// Sequence is zero until the diff engine confirms the record as new.
	Sequence int `json:"sequence,omitempty"`
}

// HasSequence reports whether a sequence number was assigned.
func (r CanonicalRecord) HasSequence() bool {
	return r.Sequence > 0
}

// Card is the display subset needed to render a summary fragment. Both
// canonical records and manifest entries can produce one.
type Card struct {
	PublishedAt time.Time
	Kind        Kind
	Title       string
	Category    string
	Href        string
	Thumbnail   string
	Excerpt     string
	Venue       string
	Sequence    int
	ReadMinutes int
}
