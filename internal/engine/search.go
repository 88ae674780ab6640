package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
)

// SearchSearXNG queries the SearXNG instance and returns raw results.
func SearchSearXNG(ctx context.Context, query, language, timeRange string) ([]SearxngResult, error) {
	u, err := url.Parse(cfg.SearxngURL + "/search")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	if language != "" && language != "all" {
		q.Set("language", language)
	}
	if timeRange != "" {
		q.Set("time_range", timeRange)
	}
	u.RawQuery = q.Encode()

	metrics.SearchRequests.Add(1)

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgentBot)
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var data searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data.Results, nil
}

// SearchWeb queries SearXNG and, when enabled, the DuckDuckGo direct scraper,
// merging and deduplicating the results. A single backend failure is not
// fatal as long as the other backend produced rows.
func SearchWeb(ctx context.Context, query string) ([]SearxngResult, error) {
	results, err := SearchSearXNG(ctx, query, "all", "")
	if err != nil {
		slog.Warn("searxng search failed", slog.String("query", query), slog.Any("error", err))
	}

	if cfg.DirectDDG && cfg.BrowserClient != nil {
		direct, ddgErr := RetryDo(ctx, DefaultRetryConfig, func() ([]SearxngResult, error) {
			return SearchDDGDirect(ctx, cfg.BrowserClient, query, "wt-wt")
		})
		if ddgErr != nil {
			slog.Debug("ddg direct failed", slog.Any("error", ddgErr))
		} else {
			results = append(results, direct...)
		}
	}

	if len(results) == 0 && err != nil {
		return nil, err
	}
	if cfg.SearchMinScore > 0 {
		results = FilterByScore(results, cfg.SearchMinScore, 3)
	}
	return dedupByURL(results), nil
}

// dedupByURL keeps the first occurrence of each URL.
func dedupByURL(results []SearxngResult) []SearxngResult {
	seen := make(map[string]bool)
	var out []SearxngResult
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}
	return out
}

// DedupByDomain limits results to maxPerDomain per domain.
func DedupByDomain(results []SearxngResult, maxPerDomain int) []SearxngResult {
	counts := make(map[string]int)
	var out []SearxngResult
	for _, r := range results {
		u, err := url.Parse(r.URL)
		if err != nil {
			continue
		}
		domain := u.Hostname()
		if counts[domain] < maxPerDomain {
			out = append(out, r)
			counts[domain]++
		}
	}
	return out
}

// FilterByScore removes results below minScore, keeping at least minKeep.
func FilterByScore(results []SearxngResult, minScore float64, minKeep int) []SearxngResult {
	var out []SearxngResult
	for _, r := range results {
		if r.Score >= minScore {
			out = append(out, r)
		}
	}
	if len(out) < minKeep && len(results) >= minKeep {
		return results[:minKeep]
	}
	if len(out) < minKeep {
		return results
	}
	return out
}
