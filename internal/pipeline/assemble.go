package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jiwasawa/blogforge/internal/engine"
)

// Store variable names. The topology is fixed; these are its contract.
const (
	VarTrigger       = "trigger"
	VarOriginalURL   = "original_url"
	VarURLContent    = "url_content"
	VarSearchQueries = "search_queries"
	VarBlogPost      = "blog_post"
	VarFinalBlogPost = "final_blog_post"
	VarDescription   = "blog_description"
)

// SummaryVar returns the store name of enrichment slot i (1-based).
func SummaryVar(i int) string { return fmt.Sprintf("summary_%d", i) }

// DefaultBranches is the number of enrichment slots when unspecified.
const DefaultBranches = 3

// Params configures pipeline assembly. The capability handles keep this
// package free of HTTP and LLM plumbing; main wires them to the engine.
type Params struct {
	Branches          int
	CustomInstruction string
	StyleReference    string // style exemplar content, "" = built-in fallback
	TargetLanguage    string // default "Japanese"

	Generate       Generator // utility tier
	GenerateWriter Generator // long-form tier

	// FetchSource acquires the main text for the seed URL. Ordinary failures
	// come back as diagnostic text; only rate limiting is a Go error.
	FetchSource func(ctx context.Context, url string) (string, error)

	// SearchSources runs one enrichment query and returns a formatted block
	// of result titles, URLs, and content.
	SearchSources func(ctx context.Context, query string) (string, error)
}

var urlRe = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// captureSource extracts the seed reference from the trigger text: the first
// URL, or failing that a trailing path-like token so local files work too.
func captureSource(trigger string) string {
	if u := urlRe.FindString(trigger); u != "" {
		return u
	}
	fields := strings.Fields(trigger)
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	if strings.ContainsAny(last, "/.") {
		return last
	}
	return ""
}

// Build assembles the fixed topology:
//
//	seed-capture → content-acquisition → query-generation →
//	parallel enrichment (K slots) → synthesis →
//	parallel finishing (link-integration, description)
func Build(p Params) *Executor {
	if p.Branches <= 0 {
		p.Branches = DefaultBranches
	}
	if p.TargetLanguage == "" {
		p.TargetLanguage = "Japanese"
	}

	seedCapture := &FuncStage{
		StageName: "seed-capture",
		Fn: func(ctx context.Context, st *Store) error {
			u := captureSource(st.Get(VarTrigger))
			if u == "" {
				return fmt.Errorf("no URL or file path in request %q", st.Get(VarTrigger))
			}
			st.Set(VarOriginalURL, "ORIGINAL_URL: "+u)
			return nil
		},
	}

	acquire := &FuncStage{
		StageName: "content-acquisition",
		Fn: func(ctx context.Context, st *Store) error {
			u := strings.TrimPrefix(st.Get(VarOriginalURL), "ORIGINAL_URL: ")
			text, err := p.FetchSource(ctx, u)
			if err != nil {
				return err
			}
			st.Set(VarURLContent, text)
			return nil
		},
	}

	queryGen := &Stage{
		StageName:   "query-generation",
		Inputs:      []string{VarURLContent},
		Output:      VarSearchQueries,
		Instruction: fmt.Sprintf(queryGenPrompt, p.Branches),
		Generate:    p.Generate,
	}

	enrich := &Parallel{GroupName: "enrichment"}
	for i := 1; i <= p.Branches; i++ {
		enrich.Members = append(enrich.Members, &enrichSlot{
			index:  i,
			max:    p.Branches,
			gen:    p.Generate,
			search: p.SearchSources,
		})
	}

	var summaryLines, summaryInputs []string
	for i := 1; i <= p.Branches; i++ {
		summaryLines = append(summaryLines, fmt.Sprintf("- Summary %d: {%s}", i, SummaryVar(i)))
		summaryInputs = append(summaryInputs, SummaryVar(i))
	}

	synthesis := &Stage{
		StageName:   "synthesis",
		Inputs:      append([]string{VarURLContent}, summaryInputs...),
		Output:      VarBlogPost,
		Instruction: writerInstruction(p, summaryLines),
		Generate:    p.GenerateWriter,
	}

	linkEnhancer := &Stage{
		StageName:   "link-integration",
		Inputs:      append([]string{VarBlogPost, VarOriginalURL}, summaryInputs...),
		Output:      VarFinalBlogPost,
		Instruction: fmt.Sprintf(linkEnhancerPrompt, placeholderList(summaryInputs)),
		Generate:    p.GenerateWriter,
	}

	describe := &Stage{
		StageName:   "description",
		Inputs:      []string{VarBlogPost},
		Output:      VarDescription,
		Instruction: fmt.Sprintf(descriptionPrompt, p.TargetLanguage, p.TargetLanguage),
		Generate:    p.Generate,
	}

	root := &Sequential{
		GroupName: "blog-pipeline",
		Members: []Runner{
			seedCapture,
			acquire,
			queryGen,
			enrich,
			synthesis,
			&Parallel{GroupName: "finishing", Members: []Runner{linkEnhancer, describe}},
		},
	}

	return &Executor{root: root}
}

// writerInstruction builds the synthesis prompt: base + style block +
// optional extra guidance + title rule.
func writerInstruction(p Params, summaryLines []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, writerPromptBase, p.TargetLanguage, p.TargetLanguage, strings.Join(summaryLines, "\n"))

	switch {
	case p.StyleReference != "":
		fmt.Fprintf(&sb, writerStyleWithReference, p.TargetLanguage, p.StyleReference)
	case p.TargetLanguage == "Japanese":
		sb.WriteString(writerStyleFallbackJapanese)
	default:
		fmt.Fprintf(&sb, writerStyleFallback, p.TargetLanguage)
	}

	if p.CustomInstruction != "" {
		fmt.Fprintf(&sb, "\n\nADDITIONAL COMMENTS:\n%s\n", p.CustomInstruction)
	}

	sb.WriteString(writerTitleRule)
	return sb.String()
}

// placeholderList renders store variables as template placeholders, one per line.
func placeholderList(vars []string) string {
	lines := make([]string, len(vars))
	for i, v := range vars {
		lines[i] = fmt.Sprintf("  - {%s}", v)
	}
	return strings.Join(lines, "\n")
}

// enrichSlot is one parallel search-and-summarize branch. It never fails its
// group: everything short of rate limiting degrades to the sentinel so the
// writer always finds its declared inputs.
type enrichSlot struct {
	index  int
	max    int
	gen    Generator
	search func(ctx context.Context, query string) (string, error)
}

func (s *enrichSlot) Name() string { return fmt.Sprintf("search-summarize-%d", s.index) }

func (s *enrichSlot) Run(ctx context.Context, st *Store) error {
	out := SummaryVar(s.index)

	queries := engine.ParseQueryList(st.Get(VarSearchQueries), s.max)
	if s.index > len(queries) {
		st.Set(out, SentinelNoData)
		return nil
	}
	query := queries[s.index-1]

	sources, err := s.search(ctx, query)
	if err != nil {
		if engine.IsRateLimit(err) {
			return err
		}
		slog.Warn("enrichment search failed", slog.Int("slot", s.index), slog.String("query", query), slog.Any("err", err))
		st.Set(out, SentinelNoData)
		return nil
	}
	if strings.TrimSpace(sources) == "" {
		st.Set(out, SentinelNoData)
		return nil
	}

	prompt := fmt.Sprintf(summarizePrompt, query, sources, st.Get(VarURLContent))
	summary, err := s.gen(ctx, prompt)
	if err != nil {
		if engine.IsRateLimit(err) {
			return err
		}
		slog.Warn("enrichment summarize failed", slog.Int("slot", s.index), slog.Any("err", err))
		st.Set(out, SentinelNoData)
		return nil
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		summary = SentinelNoData
	}
	st.Set(out, summary)
	return nil
}
