package models

import "fmt"

// Severity grades a diagnostic emitted during a run.
type Severity string

// Diagnostic severities.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic is an informative message about a skipped record or document.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Source   string   `json:"source"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
}

// String returns a one-line representation for logs and reports.
func (d Diagnostic) String() string {
	if d.Subject == "" {
		return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Source, d.Message)
	}

	return fmt.Sprintf("[%s] %s: %s (%s)", d.Severity, d.Source, d.Message, d.Subject)
}
