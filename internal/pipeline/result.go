package pipeline

import "feedsync/internal/models"

// Run statuses reported to the operator and the notifier.
const (
	StatusNoChange            = "no-change"
	StatusUpdated             = "updated"
	StatusUpdatedWithWarnings = "updated-with-warnings"
	StatusAborted             = "aborted"
)

// Item describes one newly imported record.
type Item struct {
	Source   string `json:"source"`
	Title    string `json:"title"`
	Href     string `json:"href"`
	Sequence int    `json:"sequence"`
}

// SourceResult holds the per-source counts of one run.
type SourceResult struct {
	Name                 string
	Fetched              int
	New                  int
	Known                int
	Skipped              int
	LastAssignedSequence int
}

// Result is the outcome of a completed run.
type Result struct {
	RunID       string
	Sources     []SourceResult
	Items       []Item
	Diagnostics []models.Diagnostic
	Written     []string
	DryRun      bool
	// Changed is true when at least one new record was imported.
	Changed bool
}

// Warnings counts warning diagnostics.
func (r *Result) Warnings() int {
	n := 0

	for _, d := range r.Diagnostics {
		if d.Severity == models.SeverityWarning {
			n++
		}
	}

	return n
}

// Status summarizes the run.
func (r *Result) Status() string {
	switch {
	case !r.Changed:
		return StatusNoChange
	case r.Warnings() > 0:
		return StatusUpdatedWithWarnings
	default:
		return StatusUpdated
	}
}

func (r *Result) diag(sev models.Severity, source, subject, msg string) {
	r.Diagnostics = append(r.Diagnostics, models.Diagnostic{
		Severity: sev,
		Source:   source,
		Subject:  subject,
		Message:  msg,
	})
}
