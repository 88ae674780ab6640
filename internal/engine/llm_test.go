package engine

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"json fence", "```json\n[\"a\"]\n```", `["a"]`},
		{"bare fence", "```\ntext\n```", "text"},
		{"whitespace", "  result  ", "result"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLLMRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"provider 429 text", errors.New("API error 429: quota exceeded"), true},
		{"provider 503 text", errors.New("503 service unavailable"), true},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED"), true},
		{"rate limit text", errors.New("hit rate limit, slow down"), true},
		{"bad request", errors.New("400 invalid argument"), false},
		{"plain error", errors.New("model not found"), false},
		{"escalated rate limit", &RateLimitError{Platform: "llm"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := llmRetryable(tt.err); got != tt.want {
				t.Errorf("llmRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseQueryList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		max  int
		want []string
	}{
		{
			name: "json array",
			raw:  `["go generics tutorial", "go generics performance"]`,
			max:  5,
			want: []string{"go generics tutorial", "go generics performance"},
		},
		{
			name: "fenced json array",
			raw:  "```json\n[\"query one\", \"query two\"]\n```",
			max:  5,
			want: []string{"query one", "query two"},
		},
		{
			name: "numbered list",
			raw:  "1. first query\n2. second query\n3. third query",
			max:  5,
			want: []string{"first query", "second query", "third query"},
		},
		{
			name: "paren numbered list",
			raw:  "1) first\n2) second",
			max:  5,
			want: []string{"first", "second"},
		},
		{
			name: "dash list",
			raw:  "- alpha\n- beta",
			max:  5,
			want: []string{"alpha", "beta"},
		},
		{
			name: "max trims",
			raw:  `["a", "b", "c", "d"]`,
			max:  2,
			want: []string{"a", "b"},
		},
		{
			name: "blank lines skipped",
			raw:  "1. one\n\n2. two\n",
			max:  5,
			want: []string{"one", "two"},
		},
		{
			name: "empty input",
			raw:  "",
			max:  5,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQueryList(tt.raw, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseQueryList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildSourcesText(t *testing.T) {
	results := []SearxngResult{
		{Title: "First", URL: "https://a.example", Content: "snippet a"},
		{Title: "Second", URL: "https://b.example", Content: "snippet b"},
	}
	contents := map[string]string{
		"https://a.example": "full content of a",
	}
	got := BuildSourcesText(results, contents, 1000)
	for _, want := range []string{"[1] First", "[2] Second", "full content of a", "Snippet: snippet b"} {
		if !strings.Contains(got, want) {
			t.Errorf("BuildSourcesText missing %q in:\n%s", want, got)
		}
	}
}

func TestBuildSourcesTextTruncates(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}
	results := []SearxngResult{{Title: "T", URL: "https://a.example"}}
	contents := map[string]string{"https://a.example": string(long)}
	got := BuildSourcesText(results, contents, 10)
	if !strings.Contains(got, "xxxxxxxxxx...") {
		t.Errorf("expected truncated content with ellipsis, got:\n%s", got)
	}
}
