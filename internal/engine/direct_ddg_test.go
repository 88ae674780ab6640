package engine

import "testing"

func TestDDGUnwrapURL(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{
			name: "redirect wrapper",
			href: "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=abc",
			want: "https://example.com/page",
		},
		{
			name: "direct url",
			href: "https://example.com/direct",
			want: "https://example.com/direct",
		},
		{
			name: "relative junk",
			href: "/settings",
			want: "",
		},
		{
			name: "empty",
			href: "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ddgUnwrapURL(tt.href); got != tt.want {
				t.Errorf("ddgUnwrapURL(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestParseDDGHTML(t *testing.T) {
	html := `<html><body>
	<div class="result">
		<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc">Go Documentation</a>
		<div class="result__snippet">Official Go docs</div>
	</div>
	<div class="result">
		<a class="result__a" href="https://go.dev/blog">Go Blog</a>
	</div>
	<div class="result">
		<a class="result__a" href="/no-title"></a>
	</div>
	</body></html>`

	results, err := parseDDGHTML([]byte(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].URL != "https://go.dev/doc" || results[0].Title != "Go Documentation" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[0].Content != "Official Go docs" {
		t.Errorf("snippet = %q", results[0].Content)
	}
	if results[1].URL != "https://go.dev/blog" {
		t.Errorf("unexpected second result: %+v", results[1])
	}
}

func TestParseDDGResponse(t *testing.T) {
	jsonp := `DDGjsonp_abc([{"t":"Title <b>One</b>","a":"snippet","u":"https://a.example"},{"t":"","u":"https://skip.example"},{"t":"Two","c":"https://c.example"}])`
	results, err := parseDDGResponse([]byte(jsonp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Title != "Title One" {
		t.Errorf("expected HTML stripped from title, got %q", results[0].Title)
	}
	if results[1].URL != "https://c.example" {
		t.Errorf("expected fallback to content URL, got %q", results[1].URL)
	}
}

func TestParseDDGResponseBadJSON(t *testing.T) {
	if _, err := parseDDGResponse([]byte("not json at all")); err == nil {
		t.Fatal("expected parse error")
	}
}
