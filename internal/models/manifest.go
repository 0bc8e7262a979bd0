package models

import "time"

// ManifestEntry is the persisted record of one imported item.
type ManifestEntry struct {
	PublishedAt  time.Time `json:"publishedAt"`
	ImportedAt   time.Time `json:"importedAt"`
	Kind         Kind      `json:"kind"`
	Location     string    `json:"location"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Excerpt      string    `json:"excerpt"`
	Image        string    `json:"image"`
	Thumbnail    string    `json:"thumbnail"`
	SourceURL    string    `json:"sourceUrl"`
	Venue        string    `json:"venue,omitempty"`
	IdentityKeys []string  `json:"identityKeys"`
	Sequence     int       `json:"sequence"`
	ReadMinutes  int       `json:"readMinutes"`
}

// Manifest is the persisted aggregate: entries in import order plus the
// last sequence number handed out.
type Manifest struct {
	Entries              []ManifestEntry `json:"entries"`
	LastAssignedSequence int             `json:"lastAssignedSequence"`
}

// Clone returns a deep copy so stages can derive a new manifest without
// touching the one they were handed.
func (m Manifest) Clone() Manifest {
	out := Manifest{
		LastAssignedSequence: m.LastAssignedSequence,
		Entries:              make([]ManifestEntry, len(m.Entries)),
	}

	for i, e := range m.Entries {
		e.IdentityKeys = append([]string(nil), e.IdentityKeys...)
		out.Entries[i] = e
	}

	return out
}

// NewEntry builds the manifest entry for a record confirmed as new.
func NewEntry(rec CanonicalRecord, location string, importedAt time.Time) ManifestEntry {
	return ManifestEntry{
		Sequence:     rec.Sequence,
		IdentityKeys: append([]string(nil), rec.IdentityKeys...),
		Location:     location,
		Kind:         rec.Kind,
		Title:        rec.Title,
		Category:     rec.Category,
		PublishedAt:  rec.PublishedAt,
		Excerpt:      rec.Excerpt,
		Image:        rec.Image,
		Thumbnail:    rec.Thumbnail,
		ReadMinutes:  rec.ReadMinutes,
		SourceURL:    rec.SourceURL,
		Venue:        rec.Venue,
		ImportedAt:   importedAt.UTC(),
	}
}
