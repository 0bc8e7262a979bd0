package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"feedsync/internal/pipeline"
)

// Report renders the operator summary of a run.
func Report(res *pipeline.Result) string {
	var lines []string

	lines = append(lines, "# Run "+res.RunID, "")

	status := res.Status()
	if res.DryRun {
		status += " (dry run)"
	}

	lines = append(lines, "Status: "+status, "")

	if len(res.Sources) > 0 {
		rows := make([][]string, 0, len(res.Sources))
		for _, s := range res.Sources {
			rows = append(rows, []string{
				s.Name,
				strconv.Itoa(s.Fetched),
				strconv.Itoa(s.New),
				strconv.Itoa(s.Known),
				strconv.Itoa(s.Skipped),
				strconv.Itoa(s.LastAssignedSequence),
			})
		}

		lines = append(lines, Table([]string{"Source", "Fetched", "New", "Known", "Skipped", "Last seq"}, rows)...)
		lines = append(lines, "")
	}

	if len(res.Items) > 0 {
		rows := make([][]string, 0, len(res.Items))
		for _, it := range res.Items {
			rows = append(rows, []string{strconv.Itoa(it.Sequence), it.Source, escapeCell(it.Title), it.Href})
		}

		lines = append(lines, "## New", "")
		lines = append(lines, Table([]string{"Seq", "Source", "Title", "Link"}, rows)...)
		lines = append(lines, "")
	}

	if len(res.Diagnostics) > 0 {
		lines = append(lines, fmt.Sprintf("## Diagnostics (%d)", len(res.Diagnostics)), "")

		for _, d := range res.Diagnostics {
			lines = append(lines, "- "+d.String())
		}

		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// escapeCell keeps pipes in titles from splitting a row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
