package reconcile

import "feedsync/internal/models"

// Known pairs a record with the sequence of the entry it matched.
type Known struct {
	Record        models.CanonicalRecord
	MatchSequence int
}

// Result is the outcome of partitioning one source's records.
type Result struct {
	New                  []models.CanonicalRecord
	Known                []Known
	LastAssignedSequence int
}

// Partition classifies records in source order. A record is known when any
// of its identity keys is already indexed, either from the manifest or from
// an earlier record in the same batch. New records receive consecutive
// sequence numbers starting after lastAssigned. The given index is not
// modified.
func Partition(records []models.CanonicalRecord, idx *Index, lastAssigned int) Result {
	running := idx.clone()
	res := Result{LastAssignedSequence: lastAssigned}

	for _, rec := range records {
		if seq, ok := running.Match(rec.IdentityKeys); ok {
			res.Known = append(res.Known, Known{Record: rec, MatchSequence: seq})

			continue
		}

		res.LastAssignedSequence++
		rec.Sequence = res.LastAssignedSequence
		rec.IdentityKeys = append([]string(nil), rec.IdentityKeys...)

		running.add(rec.IdentityKeys, rec.Sequence)
		res.New = append(res.New, rec)
	}

	return res
}

// HasNew reports whether any record was classified as new.
func (r Result) HasNew() bool {
	return len(r.New) > 0
}
