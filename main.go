// blogforge — turns a single source (web page, article, or YouTube video)
// into a polished blog post, enriched with web search results.
//
// The pipeline fetches the source, generates search queries, runs parallel
// search-and-summarize branches, writes the post with a writer-tier model,
// then integrates links and generates a description.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/urfave/cli/v2"

	"github.com/jiwasawa/blogforge/internal/engine"
	"github.com/jiwasawa/blogforge/internal/engine/sources"
	"github.com/jiwasawa/blogforge/internal/pipeline"
	"github.com/jiwasawa/blogforge/internal/publish"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:      "blogforge",
		Usage:     "write an enriched blog post from a web page, YouTube video, or local file",
		Version:   version,
		ArgsUsage: "<url-or-file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "branches", Value: pipeline.DefaultBranches, Usage: "number of parallel search-enrichment branches"},
			&cli.StringFlag{Name: "custom", Usage: "extra guidance for the writer"},
			&cli.StringFlag{Name: "style", Usage: "path to a style exemplar post"},
			&cli.BoolFlag{Name: "english", Usage: "write in English instead of Japanese"},
			&cli.BoolFlag{Name: "save-md", Usage: "save raw markdown instead of Quarto .qmd"},
			&cli.StringFlag{Name: "output", Value: "output", Usage: "output directory"},
			&cli.StringFlag{Name: "author", Value: env.Str("BLOG_AUTHOR", ""), Usage: "front matter author"},
			&cli.StringFlag{Name: "categories", Value: "LLM, AI", Usage: "front matter categories, comma separated"},
			&cli.StringFlag{Name: "image", Usage: "front matter image URL"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	sourceURL := c.Args().First()
	if sourceURL == "" {
		_ = cli.ShowAppHelp(c)
		return cli.Exit("missing <url-or-file> argument", 1)
	}

	if err := initEngine(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	styleRef := ""
	if path := c.String("style"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("read style file: %v", err), 1)
		}
		styleRef = strings.TrimSpace(string(data))
	}

	lang := "Japanese"
	if c.Bool("english") {
		lang = "English"
	}

	exec := pipeline.Build(pipeline.Params{
		Branches:          c.Int("branches"),
		CustomInstruction: c.String("custom"),
		StyleReference:    styleRef,
		TargetLanguage:    lang,
		Generate:          engine.CallLLM,
		GenerateWriter:    engine.CallWriterLLM,
		FetchSource:       fetchSource,
		SearchSources:     engine.GatherSources,
	})

	slog.Info("starting blog generation", slog.String("url", sourceURL), slog.Int("branches", c.Int("branches")), slog.String("language", lang))

	res, err := exec.Run(context.Background(), "Fetch content from this URL and write a blog post: "+sourceURL)
	if err != nil {
		if engine.IsRateLimit(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\nThe platform has rate-limited this IP address. Please wait a few hours and try again.\n", err)
			return cli.Exit("", 2)
		}
		if res.Post == "" || res.Post == pipeline.PlaceholderPost {
			return cli.Exit(fmt.Sprintf("pipeline failed: %v", err), 1)
		}
		// Partial success: some stage failed but a post was written.
		fmt.Fprintf(os.Stderr, "Warning: pipeline finished with errors: %v\n", err)
	}

	doc := publish.Document{
		Description: res.Description,
		Author:      c.String("author"),
		Image:       c.String("image"),
	}
	for _, cat := range strings.Split(c.String("categories"), ",") {
		if cat = strings.TrimSpace(cat); cat != "" {
			doc.Categories = append(doc.Categories, cat)
		}
	}

	path, err := publish.Save(c.String("output"), res.Post, doc, time.Now(), c.Bool("save-md"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("save post: %v", err), 1)
	}

	fmt.Println(res.Post)
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("Saved to:", path)
	fmt.Println(engine.FormatMetrics())
	return nil
}

// fetchSource adapts content acquisition to the pipeline: ordinary failures
// come back as diagnostic text for the run to work around, rate limiting
// propagates and aborts.
func fetchSource(ctx context.Context, u string) (string, error) {
	res, err := sources.FetchContent(ctx, u, engine.FetchOptions{})
	if err != nil {
		return "", err
	}
	if !res.OK() {
		return "Error fetching content: " + res.Err, nil
	}
	return res.Text, nil
}

func initEngine() error {
	c := engine.Config{
		SearxngURL:         env.Str("SEARXNG_URL", "http://127.0.0.1:8888"),
		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash-lite"),
		LLMWriterModel:     env.Str("LLM_WRITER_MODEL", "gemini-2.5-pro"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 16384),
		MaxFetchURLs:       env.Int("MAX_FETCH_URLS", 5),
		MaxContentChars:    env.Int("MAX_CONTENT_CHARS", 20000),
		SearchMinScore:     env.Float("SEARCH_MIN_SCORE", 0),
		FetchTimeout:       env.Duration("FETCH_TIMEOUT", 30*time.Second),
		DirectDDG:          env.Str("DIRECT_DDG", "true") == "true",
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY not set; export it or add it to the environment")
	}

	bc, err := stealth.NewClient(stealth.WithTimeout(15))
	if err != nil {
		slog.Warn("stealth client init failed, heavy fetch and direct search disabled", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
	}

	c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
	)
	c.LLMWriterClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMWriterModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 300 * time.Second}),
	)

	engine.Init(c)
	return nil
}
