package render

import (
	"strings"
	"testing"
	"time"

	"feedsync/internal/config"
	"feedsync/internal/models"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blogSource() config.SourceConfig {
	return config.SourceConfig{
		Name:  "blog",
		Kind:  config.KindFeed,
		Pages: config.PagesConfig{Dir: "blog", Pattern: config.DefaultPagePattern, LinkPrefix: "/blog/"},
	}
}

func newRenderer(t *testing.T, src config.SourceConfig) *Renderer {
	t.Helper()

	r, err := New(config.SiteConfig{Title: "Studio Journal", BaseURL: "https://studio.example.com/"}, src)
	require.NoError(t, err)

	return r
}

func breathAndCalm() models.CanonicalRecord {
	return models.CanonicalRecord{
		Kind:         models.KindPost,
		Sequence:     6,
		Title:        "Breath & Calm",
		Category:     "Mindfulness",
		PublishedAt:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		SourceURL:    "https://x.com/breath-calm/",
		Image:        "https://cdn.x.com/w_1200/calm.jpg",
		Thumbnail:    "https://cdn.x.com/w_600/calm.jpg",
		Excerpt:      "A short practice for busy days.",
		BodyHTML:     "<p>Slow down.</p>",
		ReadMinutes:  2,
		IdentityKeys: []string{"title:breath & calm", "url:/breath-calm"},
	}
}

func TestRender_PostFragmentGolden(t *testing.T) {
	art, err := newRenderer(t, blogSource()).Render(breathAndCalm())
	require.NoError(t, err)

	assert.Equal(t, "post-6.html", art.PageName)
	assert.Equal(t, "post-6.html", art.Location)
	assert.Equal(t, "/blog/post-6.html", art.Href)

	g := goldie.New(t)
	g.Assert(t, "fragment_post", []byte(art.Fragment))
}

func TestRender_EventFragmentGolden(t *testing.T) {
	src := config.SourceConfig{Name: "events", Kind: config.KindEvents}

	rec := models.CanonicalRecord{
		Kind:        models.KindEvent,
		Sequence:    3,
		Title:       "Full Moon Circle",
		Category:    "Community",
		PublishedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		SourceURL:   "https://events.x.com/e/full-moon-1",
		Thumbnail:   "https://img.x.com/moon.jpg",
		Excerpt:     "Gather under the moon.",
		Venue:       "Main Hall",
	}

	art, err := newRenderer(t, src).Render(rec)
	require.NoError(t, err)

	assert.Empty(t, art.PageName)
	assert.Empty(t, art.Page)
	assert.Equal(t, rec.SourceURL, art.Location)

	g := goldie.New(t)
	g.Assert(t, "fragment_event", []byte(art.Fragment))
}

func TestRender_Page(t *testing.T) {
	art, err := newRenderer(t, blogSource()).Render(breathAndCalm())
	require.NoError(t, err)

	page := art.Page
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>\n"))
	assert.Contains(t, page, "<title>Breath &amp; Calm | Studio Journal</title>")
	assert.Contains(t, page, `<link rel="canonical" href="https://studio.example.com/blog/post-6.html">`)
	assert.Contains(t, page, `<img class="post-hero" src="https://cdn.x.com/w_1200/calm.jpg" alt="Breath &amp; Calm">`)
	assert.Contains(t, page, "<h1>Breath &amp; Calm</h1>")
	assert.Contains(t, page, "\n<p>Slow down.</p>\n")
	assert.Contains(t, page, "March 2, 2026 · 2 min read")
}

func TestRender_Escaping(t *testing.T) {
	rec := breathAndCalm()
	rec.Title = `<b>"Tea" & 'Talk'</b>`
	rec.Category = "<script>x</script>"
	rec.Excerpt = `a < b > c & "d"`

	art, err := newRenderer(t, blogSource()).Render(rec)
	require.NoError(t, err)

	for name, out := range map[string]string{"page": art.Page, "fragment": art.Fragment} {
		assert.NotContains(t, out, "<b>", name)
		assert.NotContains(t, out, `"Tea"`, name)
		assert.NotContains(t, out, "'Talk'", name)
		assert.NotContains(t, out, "<script>", name)
		assert.NotContains(t, out, "a < b", name)
		assert.Contains(t, out, "&lt;b&gt;&#34;Tea&#34; &amp; &#39;Talk&#39;&lt;/b&gt;", name)
	}
}

func TestRender_UnsafeURL(t *testing.T) {
	rec := breathAndCalm()
	rec.Thumbnail = "javascript:alert(1)"

	art, err := newRenderer(t, blogSource()).Render(rec)
	require.NoError(t, err)
	assert.NotContains(t, art.Fragment, "javascript:")
}

func TestRender_RequiresSequence(t *testing.T) {
	rec := breathAndCalm()
	rec.Sequence = 0

	_, err := newRenderer(t, blogSource()).Render(rec)
	assert.Error(t, err)
}

func TestRender_Deterministic(t *testing.T) {
	r := newRenderer(t, blogSource())

	a, err := r.Render(breathAndCalm())
	require.NoError(t, err)

	b, err := r.Render(breathAndCalm())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestFragment_FromEntryMatchesRecord(t *testing.T) {
	r := newRenderer(t, blogSource())
	rec := breathAndCalm()

	art, err := r.Render(rec)
	require.NoError(t, err)

	entry := models.NewEntry(rec, art.Location, time.Now())

	frag, err := r.Fragment(CardFromEntry(entry, r.EntryHref(entry)))
	require.NoError(t, err)
	assert.Equal(t, art.Fragment, frag)
}

func TestEntryHref(t *testing.T) {
	r := newRenderer(t, blogSource())

	assert.Equal(t, "/blog/post-9.html", r.EntryHref(models.ManifestEntry{Location: "post-9.html", SourceURL: "https://x.com/a"}))
	assert.Equal(t, "https://x.com/a", r.EntryHref(models.ManifestEntry{Location: "https://x.com/a", SourceURL: "https://x.com/a"}))
}

func TestMeta(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		published time.Time
		kind      models.Kind
		minutes   int
		venue     string
		want      string
	}{
		{"post", day, models.KindPost, 4, "", "January 5, 2026 · 4 min read"},
		{"post without date", time.Time{}, models.KindPost, 2, "", "2 min read"},
		{"event", day, models.KindEvent, 2, "Loft", "January 5, 2026 · Loft"},
		{"event without venue", day, models.KindEvent, 2, "", "January 5, 2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, meta(tt.published, tt.kind, tt.minutes, tt.venue))
		})
	}
}
