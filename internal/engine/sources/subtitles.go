package sources

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/jiwasawa/blogforge/internal/engine"
)

// Subtitle file parsers for the yt-dlp fallback. yt-dlp writes either WebVTT
// or YouTube's json3 format depending on what the video offers.

// ParseVTT converts a WebVTT document to plain transcript text.
// Cue timing lines, the WEBVTT header, and Kind:/Language: metadata are
// dropped; consecutive duplicate lines (rolling captions repeat the previous
// line) collapse to one.
func ParseVTT(data string) string {
	var lines []string
	var prev string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "",
			strings.HasPrefix(line, "WEBVTT"),
			strings.HasPrefix(line, "Kind:"),
			strings.HasPrefix(line, "Language:"),
			strings.HasPrefix(line, "NOTE"),
			strings.HasPrefix(line, "STYLE"),
			strings.Contains(line, "-->"):
			continue
		}
		line = engine.CleanHTML(line)
		line = html.UnescapeString(line)
		if line == "" || line == prev {
			continue
		}
		lines = append(lines, line)
		prev = line
	}
	return strings.Join(lines, " ")
}

type json3Doc struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// ParseJSON3 converts a YouTube json3 subtitle document to plain text.
func ParseJSON3(data []byte) (string, error) {
	var doc json3Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("json3 parse: %w", err)
	}
	var sb strings.Builder
	for _, ev := range doc.Events {
		for _, seg := range ev.Segs {
			text := strings.ReplaceAll(seg.UTF8, "\n", " ")
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}
	return sb.String(), nil
}
