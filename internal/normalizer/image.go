package normalizer

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"feedsync/internal/config"

	"golang.org/x/net/html"
)

// widthSegment matches CDN resize directives such as "w_640" in a path.
var widthSegment = regexp.MustCompile(`\bw_\d+\b`)

var widthParams = []string{"w", "width"}

// ImageSelector picks a page image and a thumbnail for a record.
type ImageSelector struct {
	stock        []config.StockImage
	defaultImage string
	fullWidth    int
	thumbWidth   int
}

// NewImageSelector creates an image selector from normalizer settings.
func NewImageSelector(cfg config.NormalizerConfig) *ImageSelector {
	return &ImageSelector{
		stock:        cfg.StockImages,
		defaultImage: cfg.DefaultImage,
		fullWidth:    cfg.FullWidth,
		thumbWidth:   cfg.ThumbWidth,
	}
}

// Select returns the full-size and thumbnail image URLs. The rules are tried
// in order: explicit image, first embedded image, stock keyword match, default.
func (s *ImageSelector) Select(explicit, bodyHTML, title, description string) (string, string) {
	src := strings.TrimSpace(explicit)
	if src == "" {
		src = FirstImage(bodyHTML)
	}

	if src != "" {
		return ResizeImage(src, s.fullWidth), ResizeImage(src, s.thumbWidth)
	}

	if stock := s.stockImage(title + " " + description); stock != "" {
		return stock, stock
	}

	return s.defaultImage, s.defaultImage
}

func (s *ImageSelector) stockImage(text string) string {
	haystack := strings.ToLower(text)

	for _, img := range s.stock {
		for _, kw := range img.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(haystack, kw) {
				return img.URL
			}
		}
	}

	return ""
}

// FirstImage returns the src of the first <img> element in the markup.
func FirstImage(markup string) string {
	if markup == "" {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(markup))

	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "img" || !hasAttr {
				continue
			}

			for {
				key, val, more := z.TagAttr()
				if string(key) == "src" && strings.TrimSpace(string(val)) != "" {
					return strings.TrimSpace(string(val))
				}

				if !more {
					break
				}
			}
		}
	}
}

// ResizeImage rewrites width directives in an image URL to the target width.
// URLs without a directive are returned unchanged.
func ResizeImage(src string, width int) string {
	if width <= 0 {
		return src
	}

	u, err := url.Parse(src)
	if err != nil {
		return src
	}

	w := strconv.Itoa(width)
	changed := false

	if widthSegment.MatchString(u.Path) {
		u.Path = widthSegment.ReplaceAllString(u.Path, "w_"+w)
		u.RawPath = ""
		changed = true
	}

	if u.RawQuery != "" {
		q := u.Query()
		queryChanged := false

		for _, key := range widthParams {
			if _, err := strconv.Atoi(q.Get(key)); err == nil {
				q.Set(key, w)

				queryChanged = true
			}
		}

		if queryChanged {
			u.RawQuery = q.Encode()
			changed = true
		}
	}

	if !changed {
		return src
	}

	return u.String()
}
