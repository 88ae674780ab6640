package engine

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	stealth "github.com/anatolykoptev/go-stealth"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "blogforge/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// RandomUserAgent returns a rotating browser User-Agent string.
func RandomUserAgent() string { return stealth.RandomUserAgent() }

// ChromeHeaders returns Chrome-ordered request headers for direct scrapers.
func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Japanese, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

var markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

// StripMarkdownLinks replaces markdown links with their anchor text.
func StripMarkdownLinks(s string) string {
	return markdownLinkRe.ReplaceAllString(s, "$1")
}
