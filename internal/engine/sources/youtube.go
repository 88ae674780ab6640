package sources

import (
	"net/url"
	"regexp"
	"strings"
)

// YouTube implementation is split across four files by responsibility:
//   youtube.go            — URL detection and video-ID extraction
//   youtube_innertube.go  — Innertube API types, constants, and low-level HTTP primitives
//   transcript.go         — transcript acquisition (track enumeration, timedtext,
//                           engagement panel, yt-dlp fallback)
//   subtitles.go          — VTT / JSON3 subtitle file parsing

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsYouTubeURL reports whether rawURL points at a YouTube video.
func IsYouTubeURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		return true
	}
	return false
}

// ExtractVideoID pulls the 11-character video ID out of the common YouTube
// URL shapes: watch?v=, youtu.be/, /shorts/, /embed/, /live/.
func ExtractVideoID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"),
			strings.HasPrefix(u.Path, "/embed/"),
			strings.HasPrefix(u.Path, "/live/"):
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(parts) >= 2 {
				id = parts[1]
			}
		}
	}

	if videoIDRe.MatchString(id) {
		return id, true
	}
	return "", false
}
