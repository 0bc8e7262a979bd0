// Package render produces standalone pages and summary fragments for records.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"feedsync/internal/config"
	"feedsync/internal/models"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// DateLayout is the human date format used in fragments and pages.
const DateLayout = "January 2, 2006"

// Artifacts holds everything rendered for one new record.
type Artifacts struct {
	// PageName is empty when the source writes no standalone pages.
	PageName string
	Page     string
	Fragment string
	Href     string
	// Location is stored in the manifest: the page name, or the source URL
	// when there is no page.
	Location string
}

// Renderer renders records of one source.
type Renderer struct {
	tmpl   *template.Template
	site   config.SiteConfig
	source config.SourceConfig
}

type fragmentView struct {
	Class     string
	Href      string
	Thumbnail string
	Title     string
	Category  string
	Excerpt   string
	Meta      string
	Sequence  int
}

type pageView struct {
	Title     string
	SiteTitle string
	Excerpt   string
	Image     string
	Canonical string
	Category  string
	Meta      string
	SourceURL string
	Body      template.HTML
	Sequence  int
}

// New parses the embedded templates for a source.
func New(site config.SiteConfig, source config.SourceConfig) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{tmpl: tmpl, site: site, source: source}, nil
}

// Render produces the artifacts for a record that has been assigned a sequence.
func (r *Renderer) Render(rec models.CanonicalRecord) (Artifacts, error) {
	if !rec.HasSequence() {
		return Artifacts{}, fmt.Errorf("record %q has no sequence", rec.Title)
	}

	var out Artifacts

	if r.source.HasPages() && rec.Kind != models.KindEvent {
		out.PageName = r.source.PageName(rec.Sequence)
		out.Location = out.PageName
		out.Href = r.source.Pages.LinkPrefix + out.PageName

		page, err := r.page(rec, out.Href)
		if err != nil {
			return Artifacts{}, err
		}

		out.Page = page
	} else {
		out.Location = rec.SourceURL
		out.Href = rec.SourceURL
	}

	fragment, err := r.Fragment(CardFromRecord(rec, out.Href))
	if err != nil {
		return Artifacts{}, err
	}

	out.Fragment = fragment

	return out, nil
}

// Fragment renders a summary fragment from display fields alone.
func (r *Renderer) Fragment(card models.Card) (string, error) {
	view := fragmentView{
		Class:     "post-card",
		Href:      card.Href,
		Thumbnail: card.Thumbnail,
		Title:     card.Title,
		Category:  card.Category,
		Excerpt:   card.Excerpt,
		Sequence:  card.Sequence,
		Meta:      meta(card.PublishedAt, card.Kind, card.ReadMinutes, card.Venue),
	}

	if card.Kind == models.KindEvent {
		view.Class = "event-card"
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "fragment", view); err != nil {
		return "", fmt.Errorf("failed to render fragment %d: %w", card.Sequence, err)
	}

	return buf.String(), nil
}

// EntryHref returns the link a fragment uses for a stored manifest entry.
func (r *Renderer) EntryHref(e models.ManifestEntry) string {
	if e.Location == "" || e.Location == e.SourceURL {
		return e.SourceURL
	}

	return r.source.Pages.LinkPrefix + e.Location
}

func (r *Renderer) page(rec models.CanonicalRecord, href string) (string, error) {
	view := pageView{
		Title:     rec.Title,
		SiteTitle: r.site.Title,
		Excerpt:   rec.Excerpt,
		Image:     rec.Image,
		Category:  rec.Category,
		Meta:      meta(rec.PublishedAt, rec.Kind, rec.ReadMinutes, rec.Venue),
		SourceURL: rec.SourceURL,
		Sequence:  rec.Sequence,
	}

	// Body was sanitized by the normalizer's UGC policy.
	view.Body = template.HTML(rec.BodyHTML)

	if r.site.BaseURL != "" {
		view.Canonical = strings.TrimRight(r.site.BaseURL, "/") + "/" + strings.TrimLeft(href, "/")
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page", view); err != nil {
		return "", fmt.Errorf("failed to render page %d: %w", rec.Sequence, err)
	}

	return buf.String(), nil
}

// CardFromRecord extracts the display subset of a canonical record.
func CardFromRecord(rec models.CanonicalRecord, href string) models.Card {
	return models.Card{
		PublishedAt: rec.PublishedAt,
		Kind:        rec.Kind,
		Title:       rec.Title,
		Category:    rec.Category,
		Href:        href,
		Thumbnail:   rec.Thumbnail,
		Excerpt:     rec.Excerpt,
		Venue:       rec.Venue,
		Sequence:    rec.Sequence,
		ReadMinutes: rec.ReadMinutes,
	}
}

// CardFromEntry extracts the display subset of a manifest entry.
func CardFromEntry(e models.ManifestEntry, href string) models.Card {
	return models.Card{
		PublishedAt: e.PublishedAt,
		Kind:        e.Kind,
		Title:       e.Title,
		Category:    e.Category,
		Href:        href,
		Thumbnail:   e.Thumbnail,
		Excerpt:     e.Excerpt,
		Venue:       e.Venue,
		Sequence:    e.Sequence,
		ReadMinutes: e.ReadMinutes,
	}
}

func meta(published time.Time, kind models.Kind, minutes int, venue string) string {
	parts := make([]string, 0, 2)

	if !published.IsZero() {
		parts = append(parts, published.Format(DateLayout))
	}

	if kind == models.KindEvent {
		if venue != "" {
			parts = append(parts, venue)
		}
	} else if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d min read", minutes))
	}

	return strings.Join(parts, " · ")
}
