package publish

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		name      string
		post      string
		wantTitle string
		wantBody  string
	}{
		{
			name:      "standard heading",
			post:      "# My Post\n\nFirst paragraph.",
			wantTitle: "My Post",
			wantBody:  "First paragraph.",
		},
		{
			name:      "no space after hash",
			post:      "#Tight Title\nBody.",
			wantTitle: "Tight Title",
			wantBody:  "Body.",
		},
		{
			name:      "heading not on first line",
			post:      "\n# Later Title\nBody.",
			wantTitle: "Later Title",
			wantBody:  "Body.",
		},
		{
			name:      "no heading",
			post:      "Just text without a title.",
			wantTitle: "Untitled",
			wantBody:  "Just text without a title.",
		},
		{
			name:      "subheading is not the title",
			post:      "# Real Title\n\n## Section\nText.",
			wantTitle: "Real Title",
			wantBody:  "## Section\nText.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body := SplitTitle(tt.post)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestRender(t *testing.T) {
	doc := Document{
		Title:       `Quote "Heavy" Title`,
		Description: "One sentence.",
		Author:      "Jane Writer",
		Date:        "2026-08-30",
		Categories:  []string{"LLM", "AI"},
		Image:       "https://example.com/img.png",
	}
	out, err := Render(doc, "Body text.")
	require.NoError(t, err)
	s := string(out)

	assert.True(t, len(s) > 0 && s[:4] == "---\n", "opening delimiter")
	assert.Contains(t, s, "---\n\nBody text.\n")
	assert.Contains(t, s, `Quote "Heavy" Title`)
	assert.Contains(t, s, "categories: [LLM, AI]")
	assert.Contains(t, s, `date: "2026-08-30"`)
}

func TestSaveQMD(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)

	path, err := Save(dir, "# Saved Post\n\nContent here.", Document{Author: "Jane Writer"}, now, false)
	require.NoError(t, err)
	assert.Equal(t, "202608301405.qmd", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, "title: Saved Post")
	assert.NotContains(t, s, "# Saved Post")
	assert.Contains(t, s, `date: "2026-08-30"`)
	assert.Contains(t, s, "Content here.")
}

func TestSavePlainMarkdown(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)

	post := "# Kept Heading\n\nBody."
	path, err := Save(dir, post, Document{}, now, true)
	require.NoError(t, err)
	assert.Equal(t, "202608301405.md", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, post, string(data))
}
