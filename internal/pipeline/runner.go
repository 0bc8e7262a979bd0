// Package pipeline drives one reconciliation run: fetch, normalize, diff,
// render, splice and commit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feedsync/internal/config"
	"feedsync/internal/logger"
	"feedsync/internal/manifest"
	"feedsync/internal/models"
	"feedsync/internal/normalizer"
	"feedsync/internal/reconcile"
	"feedsync/internal/render"
	"feedsync/pkg/splice"
	"feedsync/pkg/utils"
)

// ErrUnknownSource is returned when a requested source is not configured.
var ErrUnknownSource = errors.New("unknown or disabled source")

// State is a stage of the run state machine.
type State string

// Run states.
const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateNormalizing State = "normalizing"
	StateDiffing     State = "diffing"
	StateRendering   State = "rendering"
	StateSplicing    State = "splicing"
	StateCommitting  State = "committing"
)

// Fetcher supplies raw records for a source.
type Fetcher interface {
	FetchSource(ctx context.Context, src config.SourceConfig) ([]models.SourceRecord, error)
}

// Options tunes a single run.
type Options struct {
	RunID string
	// Sources limits the run to the named sources; empty means all enabled.
	Sources []string
	DryRun  bool
}

// Runner executes runs against a configuration.
type Runner struct {
	cfg     *config.Config
	fetcher Fetcher
	log     *logger.Logger
	opts    Options
	now     func() time.Time
	state   State
}

// NewRunner creates a runner.
func NewRunner(cfg *config.Config, fetcher Fetcher, log *logger.Logger, opts Options) *Runner {
	if opts.RunID == "" {
		opts.RunID = logger.NewRunID()
	}

	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		log:     log,
		opts:    opts,
		now:     time.Now,
		state:   StateIdle,
	}
}

// sourceRun carries one source through the stages.
type sourceRun struct {
	cfg       config.SourceConfig
	manifest  models.Manifest
	records   []models.SourceRecord
	committed models.Manifest
	renderer  *render.Renderer
	artifacts []render.Artifacts
	result    SourceResult
}

// plan is the set of writes a run will perform, in write order.
type plan struct {
	pages     []fileWrite
	docs      map[string]*document
	docOrder  []string
	manifests []manifestWrite
}

type fileWrite struct {
	path string
	data string
}

type manifestWrite struct {
	path     string
	manifest models.Manifest
}

type document struct {
	original string
	text     string
	missing  bool
}

// Run performs one full run. On error nothing has been committed unless the
// error came from the final write phase.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: r.opts.RunID, DryRun: r.opts.DryRun}
	defer r.enter(StateIdle)

	sources, err := r.selectSources()
	if err != nil {
		return nil, err
	}

	runs := make([]*sourceRun, 0, len(sources))

	for _, src := range sources {
		path := r.cfg.ResolvePath(src.Manifest)

		if !r.opts.DryRun {
			lock, err := manifest.AcquireLock(path)
			if err != nil {
				return nil, err
			}

			defer func() {
				if err := lock.Release(); err != nil {
					r.log.Warn("failed to release manifest lock", "path", path, "error", err)
				}
			}()
		}

		m, err := manifest.Load(path, src.AllowMissing)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		runs = append(runs, &sourceRun{cfg: src, manifest: m, result: SourceResult{Name: src.Name}})
	}

	r.enter(StateFetching)

	for _, run := range runs {
		records, err := r.fetcher.FetchSource(ctx, run.cfg)
		if err != nil {
			return nil, fmt.Errorf("fetch aborted: %w", err)
		}

		run.records = records
		run.result.Fetched = len(records)
	}

	p := &plan{docs: make(map[string]*document)}

	for _, run := range runs {
		if err := r.processSource(run, p, res); err != nil {
			return nil, err
		}

		res.Sources = append(res.Sources, run.result)
	}

	if !res.Changed {
		r.log.Info("no new records", "run_id", res.RunID)

		return res, nil
	}

	r.enter(StateCommitting)

	if r.opts.DryRun {
		r.log.Info("dry run, skipping writes", "pages", len(p.pages), "documents", len(p.changedDocs()), "manifests", len(p.manifests))

		return res, nil
	}

	if err := r.write(p, res); err != nil {
		return res, err
	}

	return res, nil
}

func (r *Runner) selectSources() ([]config.SourceConfig, error) {
	enabled := r.cfg.GetEnabledSources()
	if len(r.opts.Sources) == 0 {
		return enabled, nil
	}

	var selected []config.SourceConfig

	for _, name := range r.opts.Sources {
		found := false

		for _, src := range enabled {
			if src.Name == name {
				selected = append(selected, src)
				found = true

				break
			}
		}

		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
		}
	}

	return selected, nil
}

// processSource normalizes, diffs, renders and splices one source in memory.
func (r *Runner) processSource(run *sourceRun, p *plan, res *Result) error {
	log := r.log.With("source", run.cfg.Name)

	r.enter(StateNormalizing)

	processor := normalizer.NewProcessor(r.cfg.Normalizer)
	canonical := make([]models.CanonicalRecord, 0, len(run.records))

	for i, raw := range run.records {
		rec, err := processor.Process(raw)
		if err != nil {
			run.result.Skipped++
			res.diag(models.SeverityWarning, run.cfg.Name, fmt.Sprintf("item %d", i+1), "skipped record: "+err.Error())
			log.Warn("skipped record", "index", i, "error", err)

			continue
		}

		if len(rec.IdentityKeys) == 0 {
			run.result.Skipped++
			res.diag(models.SeverityWarning, run.cfg.Name, rec.Title, "skipped record: no usable identity key")

			continue
		}

		canonical = append(canonical, rec)
	}

	r.enter(StateDiffing)

	idx := reconcile.BuildIndex(run.manifest)
	diff := reconcile.Partition(canonical, idx, run.manifest.LastAssignedSequence)
	run.result.New = len(diff.New)
	run.result.Known = len(diff.Known)
	run.result.LastAssignedSequence = run.manifest.LastAssignedSequence

	log.Info("partitioned records", "indexed_keys", idx.Len(), "new", len(diff.New), "known", len(diff.Known), "skipped", run.result.Skipped)

	if !diff.HasNew() {
		return nil
	}

	r.enter(StateRendering)

	renderer, err := render.New(r.cfg.Site, run.cfg)
	if err != nil {
		return err
	}

	run.renderer = renderer

	now := r.now().UTC()
	entries := make([]models.ManifestEntry, 0, len(diff.New))

	for _, rec := range diff.New {
		art, err := renderer.Render(rec)
		if err != nil {
			return fmt.Errorf("source %s: %w", run.cfg.Name, err)
		}

		run.artifacts = append(run.artifacts, art)
		entries = append(entries, models.NewEntry(rec, art.Location, now))

		if art.PageName != "" {
			p.pages = append(p.pages, fileWrite{
				path: filepath.Join(r.cfg.ResolvePath(run.cfg.Pages.Dir), art.PageName),
				data: art.Page,
			})
		}

		res.Items = append(res.Items, Item{Source: run.cfg.Name, Title: rec.Title, Href: art.Href, Sequence: rec.Sequence})
	}

	committed, err := manifest.Commit(run.manifest, entries)
	if err != nil {
		return fmt.Errorf("source %s: %w", run.cfg.Name, err)
	}

	run.committed = committed
	run.result.LastAssignedSequence = committed.LastAssignedSequence

	r.enter(StateSplicing)

	for _, target := range run.cfg.Targets {
		if err := r.spliceTarget(run, target, p, res); err != nil {
			return err
		}
	}

	p.manifests = append(p.manifests, manifestWrite{path: r.cfg.ResolvePath(run.cfg.Manifest), manifest: committed})
	res.Changed = true

	return nil
}

func (r *Runner) spliceTarget(run *sourceRun, target config.TargetConfig, p *plan, res *Result) error {
	path := r.cfg.ResolvePath(target.Document)

	doc, err := p.document(path)
	if err != nil {
		return err
	}

	if doc.missing {
		res.diag(models.SeverityWarning, run.cfg.Name, target.Document, "document not found, update skipped")
		r.log.Warn("document not found", "source", run.cfg.Name, "document", path)

		return nil
	}

	var (
		updated string
		where   string
	)

	switch target.Mode {
	case config.ModeAnchor:
		fragments, skipped := newFragments(run.artifacts, doc.original)
		if skipped > 0 {
			r.log.Warn("fragments already present after anchor", "source", run.cfg.Name, "document", path, "skipped", skipped)
		}

		if fragments == "" {
			return nil
		}

		updated, err = splice.InsertAfter(doc.text, target.Anchor, fragments)
		where = "anchor"

		if err != nil {
			return r.skipTarget(run, target, where, err, res)
		}

		if splice.Count(doc.text, target.Anchor) > 1 {
			res.diag(models.SeverityWarning, run.cfg.Name, target.Document, "anchor occurs more than once, inserted after the first")
		}
	default:
		content, err := r.regionContent(run, target.Limit)
		if err != nil {
			return err
		}

		updated, err = splice.Replace(doc.text, target.BeginMarker, target.EndMarker, content)
		where = "markers"

		if err != nil {
			return r.skipTarget(run, target, where, err, res)
		}
	}

	doc.text = updated

	return nil
}

func (r *Runner) skipTarget(run *sourceRun, target config.TargetConfig, where string, err error, res *Result) error {
	if !errors.Is(err, splice.ErrNotFound) {
		return err
	}

	res.diag(models.SeverityWarning, run.cfg.Name, target.Document, where+" not found, update skipped")
	r.log.Warn("splice target skipped", "source", run.cfg.Name, "document", target.Document, "error", err)

	return nil
}

// newFragments joins the fragments to insert after an anchor. A fragment whose
// opening tag the document already held on load is left out, so a run that
// died between writing documents and saving its manifest does not duplicate it.
func newFragments(arts []render.Artifacts, existing string) (string, int) {
	var b strings.Builder

	skipped := 0

	for _, a := range arts {
		if open, _, _ := strings.Cut(a.Fragment, "\n"); open != "" && strings.Contains(existing, open) {
			skipped++

			continue
		}

		b.WriteString(a.Fragment)
	}

	if b.Len() == 0 {
		return "", skipped
	}

	return "\n" + b.String(), skipped
}

// regionContent regenerates a region from the committed manifest, latest batch first.
func (r *Runner) regionContent(run *sourceRun, limit int) (string, error) {
	var b strings.Builder

	b.WriteString("\n")

	for _, e := range manifest.Newest(run.committed, limit) {
		frag, err := run.renderer.Fragment(render.CardFromEntry(e, run.renderer.EntryHref(e)))
		if err != nil {
			return "", err
		}

		b.WriteString(frag)
	}

	return b.String(), nil
}

func (p *plan) document(path string) (*document, error) {
	if doc, ok := p.docs[path]; ok {
		return doc, nil
	}

	data, err := os.ReadFile(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		doc := &document{missing: true}
		p.docs[path] = doc

		return doc, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	doc := &document{original: string(data), text: string(data)}
	p.docs[path] = doc
	p.docOrder = append(p.docOrder, path)

	return doc, nil
}

func (p *plan) changedDocs() []string {
	var out []string

	for _, path := range p.docOrder {
		if d := p.docs[path]; d.text != d.original {
			out = append(out, path)
		}
	}

	return out
}

// write persists pages, then documents, then manifests.
func (r *Runner) write(p *plan, res *Result) error {
	for _, page := range p.pages {
		if err := utils.WriteFileAtomic(page.path, []byte(page.data), 0o644); err != nil {
			return fmt.Errorf("failed to write page: %w", err)
		}

		res.Written = append(res.Written, page.path)
	}

	for _, path := range p.changedDocs() {
		if err := utils.WriteFileAtomic(path, []byte(p.docs[path].text), 0o644); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}

		res.Written = append(res.Written, path)
	}

	for _, mw := range p.manifests {
		if err := manifest.Save(mw.path, mw.manifest); err != nil {
			return err
		}

		res.Written = append(res.Written, mw.path)
	}

	r.log.Info("run committed", "files", len(res.Written))

	return nil
}

func (r *Runner) enter(s State) {
	if r.state == s {
		return
	}

	r.log.Debug("state transition", "from", r.state, "to", s)
	r.state = s
}
