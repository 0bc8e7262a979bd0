package utils

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestBuildHeaders(t *testing.T) {
	h := BuildHeaders("application/json", http.Header{"Authorization": {"Bearer x"}, "User-Agent": {"custom"}})

	if got := h.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q, want application/json", got)
	}

	if got := h.Get("Authorization"); got != "Bearer x" {
		t.Errorf("Authorization = %q", got)
	}

	if got := h.Values("User-Agent"); len(got) != 1 || got[0] != "custom" {
		t.Errorf("User-Agent = %v, want [custom]", got)
	}

	if got := BuildHeaders("", nil).Get("User-Agent"); got != UserAgent {
		t.Errorf("default User-Agent = %q", got)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	if err := WriteFileAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	if err := WriteFileAtomic(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic overwrite failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if string(got) != "two" {
		t.Errorf("content = %q, want two", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}
