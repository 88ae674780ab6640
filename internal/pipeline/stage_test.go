package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jiwasawa/blogforge/internal/engine"
)

func echoGen(ctx context.Context, prompt string) (string, error) {
	return "echo: " + prompt, nil
}

func TestStageSubstitution(t *testing.T) {
	st := NewStore()
	st.Set("topic", "go testing")
	st.Set("extra", "unused")

	var seen string
	stage := &Stage{
		StageName:   "test",
		Inputs:      []string{"topic"},
		Output:      "out",
		Instruction: "write about {topic}; leave {extra} and {undeclared} alone",
		Generate: func(ctx context.Context, prompt string) (string, error) {
			seen = prompt
			return "done", nil
		},
	}

	if err := stage.Run(context.Background(), st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(seen, "write about go testing") {
		t.Errorf("substitution failed: %q", seen)
	}
	// only declared inputs are substituted
	if !strings.Contains(seen, "{extra}") || !strings.Contains(seen, "{undeclared}") {
		t.Errorf("undeclared placeholders were touched: %q", seen)
	}
	if st.Get("out") != "done" {
		t.Errorf("output = %q", st.Get("out"))
	}
}

func TestStageMissingInputIsHardError(t *testing.T) {
	stage := &Stage{
		StageName:   "test",
		Inputs:      []string{"absent"},
		Output:      "out",
		Instruction: "{absent}",
		Generate:    echoGen,
	}
	err := stage.Run(context.Background(), NewStore())
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	if !strings.Contains(err.Error(), "absent") {
		t.Errorf("error does not name the input: %v", err)
	}
}

func TestStageEmptyOutputBecomesSentinel(t *testing.T) {
	st := NewStore()
	stage := &Stage{
		StageName:   "test",
		Output:      "out",
		Instruction: "anything",
		Generate: func(ctx context.Context, prompt string) (string, error) {
			return "   \n ", nil
		},
	}
	if err := stage.Run(context.Background(), st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Get("out") != SentinelNoData {
		t.Errorf("got %q, want sentinel", st.Get("out"))
	}
}

func TestSequentialStopsAtFirstFailure(t *testing.T) {
	var ran []string
	mk := func(name string, fail bool) Runner {
		return &FuncStage{StageName: name, Fn: func(ctx context.Context, st *Store) error {
			ran = append(ran, name)
			if fail {
				return errors.New("boom")
			}
			return nil
		}}
	}
	g := &Sequential{GroupName: "seq", Members: []Runner{mk("a", false), mk("b", true), mk("c", false)}}
	err := g.Run(context.Background(), NewStore())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(ran) != 2 || ran[1] != "b" {
		t.Errorf("ran %v", ran)
	}
}

func TestParallelRunsAllMembers(t *testing.T) {
	var count atomic.Int32
	mk := func(name string, err error) Runner {
		return &FuncStage{StageName: name, Fn: func(ctx context.Context, st *Store) error {
			count.Add(1)
			return err
		}}
	}
	g := &Parallel{GroupName: "par", Members: []Runner{
		mk("a", nil),
		mk("b", errors.New("boom")),
		mk("c", nil),
	}}
	err := g.Run(context.Background(), NewStore())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if count.Load() != 3 {
		t.Errorf("ran %d members, want all 3", count.Load())
	}
	if !strings.Contains(err.Error(), "b:") {
		t.Errorf("error does not name failed member: %v", err)
	}
}

func TestParallelPrefersRateLimit(t *testing.T) {
	mk := func(name string, err error) Runner {
		return &FuncStage{StageName: name, Fn: func(ctx context.Context, st *Store) error { return err }}
	}
	g := &Parallel{GroupName: "par", Members: []Runner{
		mk("a", errors.New("ordinary failure")),
		mk("b", &engine.RateLimitError{Platform: "youtube"}),
	}}
	err := g.Run(context.Background(), NewStore())
	if !engine.IsRateLimit(err) {
		t.Errorf("expected rate limit to dominate, got %v", err)
	}
}
