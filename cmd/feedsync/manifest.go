package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"feedsync/internal/config"
	"feedsync/internal/manifest"
	"feedsync/pkg/splice"

	"github.com/spf13/cobra"
)

var (
	errSourceRequired = errors.New("--source is required")
	errCheckFailed    = errors.New("manifest check failed")
)

const dateLayout = "2006-01-02"

func newManifestCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect import manifests",
	}

	cmd.AddCommand(newManifestListCommand(opts))
	cmd.AddCommand(newManifestCheckCommand(opts))

	return cmd
}

func newManifestListCommand(opts *rootOptions) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the entries of a source manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if source == "" {
				return errSourceRequired
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			src, ok := cfg.GetSource(source)
			if !ok {
				return fmt.Errorf("unknown source: %s", source)
			}

			m, err := manifest.Load(cfg.ResolvePath(src.Manifest), src.AllowMissing)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(m.Entries))
			for _, e := range m.Entries {
				published := ""
				if !e.PublishedAt.IsZero() {
					published = e.PublishedAt.Format(dateLayout)
				}

				rows = append(rows, []string{
					strconv.Itoa(e.Sequence),
					string(e.Kind),
					e.Title,
					e.Location,
					published,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Seq", "Kind", "Title", "Location", "Published"}, rows, 1))
			fmt.Fprintf(out, "%d entries, last assigned sequence %d\n", len(m.Entries), m.LastAssignedSequence)

			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Source name")

	return cmd
}

func newManifestCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate every manifest and the markers of every target document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			rows, failures := checkSources(cfg)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Source", "Path", "Result"}, rows))

			if failures > 0 {
				return fmt.Errorf("%w: %d problem(s)", errCheckFailed, failures)
			}

			return nil
		},
	}
}

// checkSources returns one row per manifest and target plus the failure count.
// Warnings are reported but do not count as failures.
func checkSources(cfg *config.Config) ([][]string, int) {
	var (
		rows     [][]string
		failures int
	)

	for _, src := range cfg.GetEnabledSources() {
		var result string

		m, err := manifest.Load(cfg.ResolvePath(src.Manifest), src.AllowMissing)
		if err != nil {
			result = "error: " + err.Error()
			failures++
		} else {
			result = fmt.Sprintf("ok (%d entries, last %d)", len(m.Entries), m.LastAssignedSequence)
		}

		rows = append(rows, []string{src.Name, src.Manifest, result})

		for _, target := range src.Targets {
			status, failed := checkTarget(cfg.ResolvePath(target.Document), target)
			if failed {
				failures++
			}

			rows = append(rows, []string{src.Name, target.Document, status})
		}
	}

	return rows, failures
}

func checkTarget(path string, target config.TargetConfig) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "error: " + err.Error(), true
	}

	doc := string(data)

	if target.Mode == config.ModeAnchor {
		switch n := splice.Count(doc, target.Anchor); {
		case n == 0:
			return "error: anchor not found", true
		case n > 1:
			return fmt.Sprintf("warning: anchor occurs %d times", n), false
		}

		return "ok (anchor)", false
	}

	if _, err := splice.Region(doc, target.BeginMarker, target.EndMarker); err != nil {
		return "error: " + err.Error(), true
	}

	if splice.Count(doc, target.BeginMarker) > 1 {
		return "warning: begin marker occurs more than once", false
	}

	return "ok (region)", false
}
