package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jiwasawa/blogforge/internal/engine"
)

// PlaceholderPost is the terminal output when nothing was generated at all.
// It should only ever appear if the topology is wired wrong.
const PlaceholderPost = "No blog post was generated."

// Result is the terminal output of a run.
type Result struct {
	Post        string
	Description string
}

// Executor owns an assembled topology and runs it against a seed request.
type Executor struct {
	root Runner
}

// Run executes the pipeline on a fresh store seeded with the trigger text.
// The post is taken from final_blog_post, falling back to blog_post, then to
// the last written variable. Ordinary stage failures still yield the best
// available result alongside the error; only rate-limit failures abort with
// nothing, never papered over with a partial result.
func (e *Executor) Run(ctx context.Context, seed string) (Result, error) {
	st := NewStore()
	st.Set(VarTrigger, seed)

	start := time.Now()
	if err := e.root.Run(ctx, st); err != nil {
		if engine.IsRateLimit(err) {
			return Result{}, err
		}
		slog.Warn("pipeline finished with errors", slog.Any("err", err))
		return Result{
			Post:        terminalPost(st),
			Description: st.Get(VarDescription),
		}, err
	}
	slog.Info("pipeline complete", slog.Int("variables", st.Len()), slog.Duration("took", time.Since(start).Round(time.Millisecond)))

	return Result{
		Post:        terminalPost(st),
		Description: st.Get(VarDescription),
	}, nil
}

func terminalPost(st *Store) string {
	if post, ok := st.Lookup(VarFinalBlogPost); ok && post != "" {
		return post
	}
	if post, ok := st.Lookup(VarBlogPost); ok && post != "" {
		return post
	}
	if key, val, ok := st.LastWrite(); ok && key != VarTrigger {
		slog.Warn("terminal outputs missing, using last write", slog.String("key", key))
		return val
	}
	return PlaceholderPost
}
