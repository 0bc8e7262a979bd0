package normalizer

import (
	"html"
	"strings"

	"feedsync/internal/config"
	"feedsync/internal/models"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultTitle is used for records that arrive without one.
const DefaultTitle = "Untitled"

// Transformer composes the field extractors into a canonical record.
type Transformer struct {
	cfg    config.NormalizerConfig
	body   *bluemonday.Policy
	images *ImageSelector
}

// NewTransformer creates a new transformer instance.
func NewTransformer(cfg config.NormalizerConfig) *Transformer {
	return &Transformer{
		cfg:    cfg,
		body:   bluemonday.UGCPolicy(),
		images: NewImageSelector(cfg),
	}
}

// Transform derives every canonical field from the raw record. It never fails;
// absent fields fall back to documented defaults.
func (t *Transformer) Transform(rec models.SourceRecord) models.CanonicalRecord {
	title := NormalizeWhitespace(html.UnescapeString(rec.Title))
	bodyText := PlainText(rec.BodyHTML)

	summarySource := PlainText(rec.Description)
	if summarySource == "" {
		summarySource = bodyText
	}

	readSource := bodyText
	if readSource == "" {
		readSource = summarySource
	}

	full, thumb := t.images.Select(rec.ImageURL, rec.BodyHTML, title, summarySource)

	out := models.CanonicalRecord{
		Kind:         rec.Kind,
		Title:        title,
		Category:     Category(rec.Tags, t.cfg.StopCategories, t.cfg.FallbackCategory),
		PublishedAt:  ParseDate(rec.Published),
		SourceURL:    strings.TrimSpace(rec.Link),
		Image:        full,
		Thumbnail:    thumb,
		Excerpt:      Excerpt(summarySource, t.cfg.ExcerptChars),
		ReadMinutes:  ReadMinutes(readSource, t.cfg.WordsPerMinute, t.cfg.MinReadMinutes),
		BodyHTML:     strings.TrimSpace(t.body.Sanitize(rec.BodyHTML)),
		Venue:        NormalizeWhitespace(rec.Venue),
		IdentityKeys: IdentityKeys(title, rec.Link),
	}

	if out.Kind == "" {
		out.Kind = models.KindPost
	}

	if out.Title == "" {
		out.Title = DefaultTitle
	}

	return out
}
