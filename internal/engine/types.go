package engine

import "errors"

// --- Search types ---

// SearxngResult is a single result row from SearXNG or a direct scraper.
type SearxngResult struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
}

type searxngResponse struct {
	Results []SearxngResult `json:"results"`
}

// --- Fetch types ---

// FetchOptions controls how a page is fetched and converted.
type FetchOptions struct {
	Heavy        bool   // use the browser TLS client instead of net/http
	Selector     string // CSS selector to narrow extraction to one region
	StripLinks   bool   // drop markdown links from the converted output
	AltConverter bool   // skip readability, convert via content selectors
}

// --- Rate limiting ---

// RateLimitError marks platform-level throttling (HTTP 429 / "Too Many
// Requests"). It must abort the whole run instead of being retried or
// absorbed into a fallback.
type RateLimitError struct {
	Platform string
	Detail   string
}

func (e *RateLimitError) Error() string {
	if e.Detail == "" {
		return e.Platform + " rate limit hit (429)"
	}
	return e.Platform + " rate limit hit (429): " + e.Detail
}

// IsRateLimit reports whether err carries a RateLimitError anywhere in its chain.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
