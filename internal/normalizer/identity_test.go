package normalizer

import (
	"reflect"
	"testing"
	"time"
)

func TestURLKey(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://x.com/breath-calm/", "url:/breath-calm"},
		{"https://x.com/breath-calm", "url:/breath-calm"},
		{"https://x.com/breath-calm?utm_source=rss", "url:/breath-calm"},
		{"https://x.com/Breath-Calm/#comments", "url:/breath-calm"},
		{"https://other.host/breath-calm", "url:/breath-calm"},
		{"/blog/post-7.html", "url:/blog/post-7.html"},
		{"https://x.com/", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := URLKey(tt.link); got != tt.want {
			t.Errorf("URLKey(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestTitleKey(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Breath & Calm", "title:breath & calm"},
		{"  BREATH   &  Calm ", "title:breath & calm"},
		{"Café Talk", "title:café talk"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TitleKey(tt.title); got != tt.want {
			t.Errorf("TitleKey(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestIdentityKeys(t *testing.T) {
	got := IdentityKeys("Hello", "https://x.com/hello/")
	want := []string{"title:hello", "url:/hello"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("IdentityKeys() = %v, want %v", got, want)
	}

	if keys := IdentityKeys("", ""); len(keys) != 0 {
		t.Errorf("IdentityKeys(empty) = %v, want none", keys)
	}
}

func TestCategory(t *testing.T) {
	stop := []string{"Uncategorized", "general", "blog"}

	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"first surviving tag", []string{"blog", "machine learning", "ops"}, "Machine Learning"},
		{"stoplist is case insensitive", []string{"UNCATEGORIZED", "wellness"}, "Wellness"},
		{"all stopped", []string{"General", "Blog"}, "Misc"},
		{"blank tags ignored", []string{"  ", "travel"}, "Travel"},
		{"no tags", nil, "Misc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Category(tt.tags, stop, "Misc"); got != tt.want {
				t.Errorf("Category(%v) = %q, want %q", tt.tags, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"Mon, 02 Jan 2006 15:04:05 -0700", time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2026-03-14T23:30:00-08:00", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"2026-03-14 19:00:00", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"not a date", time.Time{}},
	}

	for _, tt := range tests {
		if got := ParseDate(tt.raw); !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
