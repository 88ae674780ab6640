// Package publish turns a finished post into a file on disk: title
// extraction, Quarto front matter, dated filenames.
package publish

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is the front matter block of a Quarto (.qmd) post.
type Document struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Author      string   `yaml:"author,omitempty"`
	Date        string   `yaml:"date"`
	Categories  []string `yaml:"categories,flow,omitempty"`
	Image       string   `yaml:"image,omitempty"`
}

// SplitTitle extracts the post title from the leading "#" heading and
// returns the body with that heading removed. Tolerates "#Title" without a
// space. Posts with no heading get "Untitled" and an unchanged body.
func SplitTitle(post string) (title, body string) {
	title = "Untitled"
	lines := strings.Split(post, "\n")
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "# ") {
			title = strings.TrimSpace(stripped[2:])
		} else if strings.HasPrefix(stripped, "#") && len(stripped) > 1 {
			title = strings.TrimSpace(strings.TrimLeft(stripped, "#"))
		} else {
			continue
		}
		rest := append(append([]string{}, lines[:i]...), lines[i+1:]...)
		return title, strings.TrimLeft(strings.Join(rest, "\n"), "\n")
	}
	return title, post
}

// Render serializes the front matter and body into a complete .qmd document.
func Render(doc Document, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Save writes the post under outDir with a YYYYMMDDHHMM filename. When
// plainMD is set the raw post is written as .md; otherwise the title is
// lifted into Quarto front matter and the file is .qmd. Returns the path.
func Save(outDir, post string, doc Document, now time.Time, plainMD bool) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	stamp := now.Format("200601021504")

	if plainMD {
		path := filepath.Join(outDir, stamp+".md")
		return path, os.WriteFile(path, []byte(post), 0o644)
	}

	title, body := SplitTitle(post)
	doc.Title = title
	if doc.Date == "" {
		doc.Date = now.Format("2006-01-02")
	}

	content, err := Render(doc, body)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outDir, stamp+".qmd")
	return path, os.WriteFile(path, content, 0o644)
}
