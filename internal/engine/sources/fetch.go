package sources

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jiwasawa/blogforge/internal/engine"
)

// FetchResult is the outcome of acquiring source text. Ordinary failures are
// carried as data so the caller can keep running with a diagnostic instead of
// aborting; only rate limiting surfaces as a Go error.
type FetchResult struct {
	Source string // "youtube", "web", or "file"
	Text   string
	Err    string
}

// OK reports whether text was acquired.
func (r FetchResult) OK() bool { return r.Err == "" }

// FetchContent acquires the main text for a source reference. YouTube URLs go
// through the transcript subsystem, other URLs are fetched and converted to
// markdown, and anything that is not a URL is read as a local file.
func FetchContent(ctx context.Context, rawURL string, opts engine.FetchOptions) (FetchResult, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return readLocalFile(rawURL), nil
	}
	if IsYouTubeURL(rawURL) {
		videoID, ok := ExtractVideoID(rawURL)
		if !ok {
			return FetchResult{Source: "youtube", Err: fmt.Sprintf("no video ID in %s", rawURL)}, nil
		}
		text, err := FetchTranscript(ctx, videoID)
		if err != nil {
			if engine.IsRateLimit(err) || ctx.Err() != nil {
				return FetchResult{}, err
			}
			slog.Warn("transcript acquisition failed", slog.String("video", videoID), slog.Any("err", err))
			return FetchResult{Source: "youtube", Err: err.Error()}, nil
		}
		return FetchResult{Source: "youtube", Text: text}, nil
	}

	text, err := engine.FetchURLContent(ctx, rawURL, opts)
	if err != nil {
		if engine.IsRateLimit(err) || ctx.Err() != nil {
			return FetchResult{}, err
		}
		slog.Warn("content fetch failed", slog.String("url", rawURL), slog.Any("err", err))
		return FetchResult{Source: "web", Err: err.Error()}, nil
	}
	return FetchResult{Source: "web", Text: text}, nil
}

func readLocalFile(path string) FetchResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return FetchResult{Source: "file", Err: err.Error()}
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return FetchResult{Source: "file", Err: fmt.Sprintf("file %s is empty", path)}
	}
	return FetchResult{Source: "file", Text: text}
}
