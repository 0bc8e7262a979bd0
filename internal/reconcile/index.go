// Package reconcile decides which normalized records are new relative to a manifest.
package reconcile

import "feedsync/internal/models"

// Index answers whether an identity key is already known.
type Index struct {
	keys map[string]int
}

// BuildIndex collects every identity key recorded in the manifest, mapped to
// the sequence number of the entry that owns it.
func BuildIndex(m models.Manifest) *Index {
	idx := &Index{keys: make(map[string]int, len(m.Entries)*2)}

	for _, e := range m.Entries {
		for _, k := range e.IdentityKeys {
			if _, ok := idx.keys[k]; !ok {
				idx.keys[k] = e.Sequence
			}
		}
	}

	return idx
}

// Match returns the sequence of the first entry sharing any of keys.
func (i *Index) Match(keys []string) (int, bool) {
	for _, k := range keys {
		if seq, ok := i.keys[k]; ok {
			return seq, true
		}
	}

	return 0, false
}

// Len returns the number of distinct keys.
func (i *Index) Len() int {
	return len(i.keys)
}

func (i *Index) clone() *Index {
	out := &Index{keys: make(map[string]int, len(i.keys))}
	for k, v := range i.keys {
		out.keys[k] = v
	}

	return out
}

func (i *Index) add(keys []string, seq int) {
	for _, k := range keys {
		if _, ok := i.keys[k]; !ok {
			i.keys[k] = seq
		}
	}
}
