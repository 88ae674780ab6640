package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jiwasawa/blogforge/internal/engine"
)

// yt-dlp fallback. Last resort before giving up on a video: shells out to the
// yt-dlp binary, which carries its own innertube client rotation and
// PoToken handling.

const ytDlpBinary = "yt-dlp"

// fetchTranscriptViaYtDlp downloads subtitles into a temp dir with yt-dlp and
// parses the best English file it produced.
func fetchTranscriptViaYtDlp(ctx context.Context, videoID string) (string, error) {
	if _, err := exec.LookPath(ytDlpBinary); err != nil {
		return "", fmt.Errorf("yt-dlp not installed: %w", err)
	}

	dir, err := os.MkdirTemp("", "subs-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	cmd := exec.CommandContext(ctx, ytDlpBinary,
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", "en.*,en",
		"--sub-format", "vtt/json3",
		"--output", filepath.Join(dir, "%(id)s.%(ext)s"),
		"https://www.youtube.com/watch?v="+videoID,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		out := stderr.String()
		if strings.Contains(out, "429") || strings.Contains(out, "Too Many Requests") {
			return "", &engine.RateLimitError{Platform: "youtube", Detail: "yt-dlp"}
		}
		return "", fmt.Errorf("yt-dlp: %w: %s", err, engine.Truncate(out, 300))
	}

	path, err := pickSubtitleFile(dir)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	slog.Debug("yt-dlp produced subtitles", slog.String("file", filepath.Base(path)))
	return parseSubtitleFile(path, data)
}

// subtitleLangOrder ranks subtitle filenames by the locale marker yt-dlp
// embeds before the extension.
var subtitleLangOrder = []string{".en.", ".en-US.", ".en-GB."}

// pickSubtitleFile selects the best subtitle file in dir: exact English
// locales first, then any file yt-dlp wrote.
func pickSubtitleFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", errors.New("yt-dlp produced no subtitle files")
	}

	for _, marker := range subtitleLangOrder {
		for _, name := range names {
			if strings.Contains(name, marker) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	return filepath.Join(dir, names[0]), nil
}

// parseSubtitleFile dispatches on the file extension yt-dlp declared.
func parseSubtitleFile(path string, data []byte) (string, error) {
	switch {
	case strings.HasSuffix(path, ".vtt"):
		text := ParseVTT(string(data))
		if text == "" {
			return "", fmt.Errorf("empty vtt file %s", filepath.Base(path))
		}
		return text, nil
	case strings.HasSuffix(path, ".json3"):
		return ParseJSON3(data)
	default:
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("empty subtitle file %s", filepath.Base(path))
		}
		return text, nil
	}
}
