package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// GatherSources runs one enrichment query end to end: search, pick the top
// results, fetch their pages concurrently, and format everything into a
// sources block for summarization. Fetch failures degrade to snippets;
// rate limiting aborts.
func GatherSources(ctx context.Context, query string) (string, error) {
	results, err := SearchWeb(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", query, err)
	}
	if len(results) == 0 {
		return "", nil
	}

	results = DedupByDomain(results, 2)
	if len(results) > cfg.MaxFetchURLs {
		results = results[:cfg.MaxFetchURLs]
	}

	var mu sync.Mutex
	contents := make(map[string]string, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, r := range results {
		g.Go(func() error {
			text, err := FetchURLContent(gctx, r.URL, FetchOptions{StripLinks: true})
			if err != nil {
				if IsRateLimit(err) {
					return err
				}
				slog.Debug("source fetch failed, using snippet", slog.String("url", r.URL), slog.Any("err", err))
				return nil
			}
			mu.Lock()
			contents[r.URL] = text
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return BuildSourcesText(results, contents, cfg.MaxContentChars), nil
}
