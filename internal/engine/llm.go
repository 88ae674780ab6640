package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Text-generation capability. Stages never retry a failed generation call;
// retry policy lives here, at the capability layer (LLMRetryConfig).

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// llmRetryable sniffs provider status codes out of LLM client error text.
// The OpenAI-compatible endpoint surfaces 429/500/503/504 as message text.
func llmRetryable(err error) bool {
	if err == nil || IsRateLimit(err) {
		return false
	}
	if isRetryable(err) {
		return true
	}
	msg := err.Error()
	for _, code := range []string{"429", "500", "503", "504"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "rate limit")
}

// CallLLM sends a prompt to the utility-tier model with bounded retries.
func CallLLM(ctx context.Context, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	resp, err := RetryDo(ctx, LLMRetryConfig, func() (string, error) {
		return cfg.LLMClient.Complete(ctx, "", prompt)
	})
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(resp), nil
}

// CallWriterLLM sends a prompt to the writer-tier model (long-form synthesis).
func CallWriterLLM(ctx context.Context, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	resp, err := RetryDo(ctx, LLMRetryConfig, func() (string, error) {
		return cfg.LLMWriterClient.Complete(ctx, "", prompt)
	})
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(resp), nil
}

// ParseQueryList parses an LLM query-list response. Accepts a JSON string
// array first, then falls back to numbered-list lines ("1. query").
func ParseQueryList(raw string, max int) []string {
	raw = stripFences(raw)

	var queries []string
	if err := json.Unmarshal([]byte(raw), &queries); err == nil {
		return trimQueries(queries, max)
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// "1. query", "2) query", "- query"
		for _, prefix := range []string{". ", ") "} {
			if idx := strings.Index(line, prefix); idx > 0 && idx <= 2 && isDigits(line[:idx]) {
				line = line[idx+len(prefix):]
				break
			}
		}
		line = strings.TrimPrefix(line, "- ")
		line = strings.Trim(line, `"`)
		if line != "" {
			queries = append(queries, line)
		}
	}
	return trimQueries(queries, max)
}

func trimQueries(queries []string, max int) []string {
	var out []string
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q != "" {
			out = append(out, q)
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// BuildSourcesText formats search results and their fetched content for LLM context.
func BuildSourcesText(results []SearxngResult, contents map[string]string, contentLimit int) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "\n[%d] %s\nURL: %s\n", i+1, r.Title, r.URL)
		if c, ok := contents[r.URL]; ok && c != "" {
			fmt.Fprintf(&sb, "Content: %s\n", TruncateRunes(c, contentLimit, "..."))
		} else if r.Content != "" {
			fmt.Fprintf(&sb, "Snippet: %s\n", r.Content)
		}
	}
	return sb.String()
}
