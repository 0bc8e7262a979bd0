// Package manifest loads, validates, commits and persists the import manifest.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"feedsync/internal/models"
	"feedsync/pkg/utils"
)

// Manifest errors.
var (
	ErrMissingManifest = errors.New("manifest file does not exist")
	ErrInvalidManifest = errors.New("invalid manifest")
	ErrNonMonotonic    = errors.New("new entry sequence does not follow the manifest counter")
)

// Load reads and validates the manifest at path. A missing file is an error
// unless allowMissing is set, in which case an empty manifest is returned.
func Load(path string, allowMissing bool) (models.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if allowMissing {
				return models.Manifest{}, nil
			}

			return models.Manifest{}, fmt.Errorf("%w: %s", ErrMissingManifest, path)
		}

		return models.Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	m, err := Decode(data)
	if err != nil {
		return models.Manifest{}, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

// Decode parses and validates a serialized manifest.
func Decode(data []byte) (models.Manifest, error) {
	var m models.Manifest

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&m); err != nil {
		return models.Manifest{}, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	if err := Validate(m); err != nil {
		return models.Manifest{}, err
	}

	return m, nil
}

// Validate checks the structural invariants: positive, strictly increasing
// sequences, at least one identity key per entry and a counter no lower than
// the highest sequence present.
func Validate(m models.Manifest) error {
	prev := 0

	for i, e := range m.Entries {
		if e.Sequence <= 0 {
			return fmt.Errorf("%w: entry[%d] has non-positive sequence %d", ErrInvalidManifest, i, e.Sequence)
		}

		if e.Sequence <= prev {
			return fmt.Errorf("%w: entry[%d] sequence %d does not increase after %d", ErrInvalidManifest, i, e.Sequence, prev)
		}

		if len(e.IdentityKeys) == 0 {
			return fmt.Errorf("%w: entry[%d] (sequence %d) has no identity keys", ErrInvalidManifest, i, e.Sequence)
		}

		prev = e.Sequence
	}

	if m.LastAssignedSequence < prev {
		return fmt.Errorf("%w: lastAssignedSequence %d is below highest sequence %d", ErrInvalidManifest, m.LastAssignedSequence, prev)
	}

	if m.LastAssignedSequence < 0 {
		return fmt.Errorf("%w: negative lastAssignedSequence", ErrInvalidManifest)
	}

	return nil
}

// Commit returns a new manifest with entries appended in sequence order and
// the counter advanced to the highest new sequence. The input is not modified.
func Commit(m models.Manifest, entries []models.ManifestEntry) (models.Manifest, error) {
	out := m.Clone()
	if len(entries) == 0 {
		return out, nil
	}

	sorted := make([]models.ManifestEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sequence < sorted[j].Sequence
	})

	last := out.LastAssignedSequence

	for _, e := range sorted {
		if e.Sequence <= last {
			return m.Clone(), fmt.Errorf("%w: sequence %d after %d", ErrNonMonotonic, e.Sequence, last)
		}

		e.IdentityKeys = append([]string(nil), e.IdentityKeys...)
		out.Entries = append(out.Entries, e)
		last = e.Sequence
	}

	out.LastAssignedSequence = last

	return out, nil
}

// Encode serializes the manifest as indented JSON with a trailing newline.
func Encode(m models.Manifest) ([]byte, error) {
	if m.Entries == nil {
		m.Entries = []models.ManifestEntry{}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}

	return append(data, '\n'), nil
}

// Save validates and writes the manifest atomically.
func Save(path string, m models.Manifest) error {
	if err := Validate(m); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}

	data, err := Encode(m)
	if err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save manifest %s: %w", path, err)
	}

	return nil
}

// Newest returns entries grouped by import batch, the latest batch first.
// Within a batch entries keep ascending sequence, which is upstream order.
// The result is capped at limit when limit is positive.
func Newest(m models.Manifest, limit int) []models.ManifestEntry {
	out := make([]models.ManifestEntry, len(m.Entries))
	copy(out, m.Entries)

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ImportedAt.Equal(out[j].ImportedAt) {
			return out[i].ImportedAt.After(out[j].ImportedAt)
		}

		return out[i].Sequence < out[j].Sequence
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}
