package normalizer

import "testing"

func TestResizeImage(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		width int
		want  string
	}{
		{"cdn segment", "https://cdn.x.com/upload/w_640/pic.jpg", 1200, "https://cdn.x.com/upload/w_1200/pic.jpg"},
		{"cdn transform list", "https://cdn.x.com/upload/c_fill,w_300,h_200/pic.jpg", 600, "https://cdn.x.com/upload/c_fill,w_600,h_200/pic.jpg"},
		{"width param", "https://img.x.com/a.jpg?w=300&q=80", 1200, "https://img.x.com/a.jpg?q=80&w=1200"},
		{"long width param", "https://img.x.com/a.jpg?width=300", 600, "https://img.x.com/a.jpg?width=600"},
		{"no directive", "https://img.x.com/a.jpg?q=80", 600, "https://img.x.com/a.jpg?q=80"},
		{"non numeric width", "https://img.x.com/a.jpg?w=auto", 600, "https://img.x.com/a.jpg?w=auto"},
		{"relative", "/images/a.jpg", 600, "/images/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResizeImage(tt.src, tt.width); got != tt.want {
				t.Errorf("ResizeImage(%q, %d) = %q, want %q", tt.src, tt.width, got, tt.want)
			}
		})
	}
}

func TestFirstImage(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"none", "<p>text only</p>", ""},
		{"first wins", `<p><img src="a.jpg"><img src="b.jpg"></p>`, "a.jpg"},
		{"self closing", `<figure><img alt="x" src="https://x.com/c.png"/></figure>`, "https://x.com/c.png"},
		{"empty src skipped", `<img src=""><img src="d.jpg">`, "d.jpg"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstImage(tt.markup); got != tt.want {
				t.Errorf("FirstImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageSelector_Select(t *testing.T) {
	s := NewImageSelector(testNormalizerConfig())

	tests := []struct {
		name                        string
		explicit, body, title, desc string
		wantFull, wantThumb         string
	}{
		{
			name:      "explicit wins over body",
			explicit:  "https://img.x.com/e.jpg?w=100",
			body:      `<img src="https://img.x.com/b.jpg">`,
			wantFull:  "https://img.x.com/e.jpg?w=1200",
			wantThumb: "https://img.x.com/e.jpg?w=600",
		},
		{
			name:      "embedded image",
			body:      `<p>hi</p><img src="https://cdn.x.com/w_320/b.jpg">`,
			wantFull:  "https://cdn.x.com/w_1200/b.jpg",
			wantThumb: "https://cdn.x.com/w_600/b.jpg",
		},
		{
			name:      "stock keyword in priority order",
			title:     "Breath work and yoga",
			wantFull:  "/images/stock/yoga.jpg",
			wantThumb: "/images/stock/yoga.jpg",
		},
		{
			name:      "stock keyword from description",
			title:     "Sunday session",
			desc:      "Guided Meditation for beginners",
			wantFull:  "/images/stock/breath.jpg",
			wantThumb: "/images/stock/breath.jpg",
		},
		{
			name:      "default",
			title:     "Quarterly update",
			wantFull:  "/images/default-post.jpg",
			wantThumb: "/images/default-post.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full, thumb := s.Select(tt.explicit, tt.body, tt.title, tt.desc)
			if full != tt.wantFull || thumb != tt.wantThumb {
				t.Errorf("Select() = (%q, %q), want (%q, %q)", full, thumb, tt.wantFull, tt.wantThumb)
			}
		})
	}
}
