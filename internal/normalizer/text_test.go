package normalizer

import (
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "just text", "just text"},
		{"nested tags", "<p>Hello <b>world</b></p><p>Second para</p>", "Hello world Second para"},
		{"entities", "Tea &amp; biscuits &lt;3", "Tea & biscuits <3"},
		{"script dropped", "<script>alert(1)</script>Visible", "Visible"},
		{"whitespace", "<div>\n  a\t\tb  </div>", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		budget int
		want   string
	}{
		{"fits", "Hello world", 20, "Hello world"},
		{"cut at word boundary", "The quick brown fox jumps over", 20, "The quick brown fox..."},
		{"budget lands on space", "aaaa bbbb", 4, "aaaa..."},
		{"trailing punctuation", "one, two three", 6, "one..."},
		{"overlong first word", "Supercalifragilistic word", 5, "Supercalifragilistic..."},
		{"single overlong word", "Supercalifragilistic", 5, "Supercalifragilistic"},
		{"multibyte", "café crème brûlée au lait", 12, "café crème..."},
		{"no budget", "anything goes", 0, "anything goes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Excerpt(tt.text, tt.budget)
			if got != tt.want {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.text, tt.budget, got, tt.want)
			}
		})
	}
}

func TestExcerpt_NeverMidWord(t *testing.T) {
	text := "Reconciliation keeps previously imported items stable across repeated runs"

	for budget := 15; budget < len(text); budget++ {
		got := strings.TrimSuffix(Excerpt(text, budget), ellipsis)
		if !strings.HasPrefix(text, got) {
			t.Fatalf("budget %d: %q is not a prefix", budget, got)
		}

		if next := text[len(got):]; next != "" && next[0] != ' ' {
			t.Errorf("budget %d: cut mid-word at %q", budget, got)
		}
	}
}

func TestReadMinutes(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 2},
		{10, 2},
		{200, 2},
		{401, 3},
		{450, 3},
		{1000, 5},
	}

	for _, tt := range tests {
		text := strings.TrimSpace(strings.Repeat("word ", tt.words))
		if got := ReadMinutes(text, 200, 2); got != tt.want {
			t.Errorf("ReadMinutes(%d words) = %d, want %d", tt.words, got, tt.want)
		}
	}
}
