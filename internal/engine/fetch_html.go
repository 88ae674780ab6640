package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	blockRe  = regexp.MustCompile(`(?i)</(p|div|br|li|h[1-6]|tr|section|article)>`)
)

// FetchURLContent downloads a page and extracts its main content as markdown.
// Extraction tries readability first, falls back to goquery content
// selectors, then to regex tag stripping. Returns at most
// cfg.MaxContentChars characters.
func FetchURLContent(ctx context.Context, rawURL string, opts FetchOptions) (string, error) {
	metrics.FetchRequests.Add(1)

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		metrics.FetchErrors.Add(1)
		return "", fmt.Errorf("invalid url %q", rawURL)
	}

	if cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
	}

	var body []byte
	if opts.Heavy {
		body, err = fetchWithBrowser(ctx, rawURL)
	} else {
		body, err = doFetch(ctx, rawURL)
	}
	if err != nil {
		metrics.FetchErrors.Add(1)
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	content := extractContent(body, parsed, opts)
	if content == "" {
		metrics.FetchErrors.Add(1)
		return "", fmt.Errorf("no content extracted from %s", rawURL)
	}

	if opts.StripLinks {
		content = StripMarkdownLinks(content)
	}

	content = Truncate(content, cfg.MaxContentChars)
	slog.Debug("fetched url", "url", rawURL, "chars", len(content))
	return content, nil
}

func doFetch(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := fetchWithRetry(ctx, rawURL, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readResponseBody(resp)
}

// extractContent converts raw HTML to markdown text, trying the cleanest
// extraction method first. AltConverter skips readability and converts
// straight off the content selectors.
func extractContent(body []byte, pageURL *url.URL, opts FetchOptions) string {
	if opts.Selector != "" {
		if text := extractBySelector(body, opts.Selector); text != "" {
			return text
		}
	}

	if !opts.AltConverter {
		if article, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil && article.Content != "" {
			if md, err := htmltomarkdown.ConvertString(article.Content); err == nil {
				md = strings.TrimSpace(md)
				if len(md) > 200 {
					return md
				}
			}
		}
	}

	if text := extractByGoquery(body); text != "" {
		return text
	}

	return extractByRegex(body)
}

// extractBySelector narrows extraction to a caller-supplied CSS selector.
func extractBySelector(body []byte, selector string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return ""
	}
	html, err := goquery.OuterHtml(sel.First())
	if err != nil {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(md)
}

// contentSelectors ordered by specificity. First match with enough text wins.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	".post-content",
	".article-content",
	".entry-content",
	"#content",
	".content",
}

func extractByGoquery(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()

	for _, sel := range contentSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		html, err := goquery.OuterHtml(node)
		if err != nil {
			continue
		}
		md, err := htmltomarkdown.ConvertString(html)
		if err != nil {
			continue
		}
		md = strings.TrimSpace(md)
		if len(md) > 200 {
			return md
		}
	}

	text := strings.TrimSpace(doc.Find("body").Text())
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 200 {
		return text
	}
	return ""
}

// Last resort: strip tags with regexes.
func extractByRegex(body []byte) string {
	s := scriptRe.ReplaceAllString(string(body), " ")
	s = blockRe.ReplaceAllString(s, "\n")
	s = CleanHTML(s)
	if len(s) < 100 {
		return ""
	}
	return s
}
