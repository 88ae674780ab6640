package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jiwasawa/blogforge/internal/engine"
)

func TestFetchContentLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.md")
	if err := os.WriteFile(path, []byte("# Draft\n\nSome notes.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := FetchContent(context.Background(), path, engine.FetchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("unexpected failure: %s", res.Err)
	}
	if res.Source != "file" {
		t.Errorf("Source = %q, want file", res.Source)
	}
	if res.Text != "# Draft\n\nSome notes." {
		t.Errorf("unexpected text: %q", res.Text)
	}
}

func TestFetchContentMissingLocalFile(t *testing.T) {
	res, err := FetchContent(context.Background(), "/nonexistent/notes.md", engine.FetchOptions{})
	if err != nil {
		t.Fatalf("missing file should degrade, not abort: %v", err)
	}
	if res.OK() {
		t.Fatal("expected failure result for missing file")
	}
	if res.Source != "file" {
		t.Errorf("Source = %q, want file", res.Source)
	}
}

func TestFetchContentEmptyLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := FetchContent(context.Background(), path, engine.FetchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK() {
		t.Fatal("expected failure result for empty file")
	}
}
