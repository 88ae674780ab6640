package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Runner is one executable pipeline member: a stage or a group of stages.
type Runner interface {
	Name() string
	Run(ctx context.Context, st *Store) error
}

// Generator produces text for an instruction. The two tiers (utility and
// writer models) are both plain Generators; stages never retry — retry
// policy lives in the generation capability itself.
type Generator func(ctx context.Context, prompt string) (string, error)

// SentinelNoData is written to a slot whose work produced nothing usable.
// Downstream prompts tell the model to skip such slots, so a run always
// completes with every declared variable present.
const SentinelNoData = "no data available for this slot"

// Stage is a single generation step: resolve the instruction template
// against declared inputs, call the generator, write one output variable.
type Stage struct {
	StageName   string
	Inputs      []string
	Output      string
	Instruction string
	Generate    Generator
}

func (s *Stage) Name() string { return s.StageName }

func (s *Stage) Run(ctx context.Context, st *Store) error {
	prompt, err := s.resolve(st)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := s.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("stage %s: %w", s.StageName, err)
	}
	slog.Debug("stage complete", slog.String("stage", s.StageName), slog.Duration("took", time.Since(start).Round(time.Millisecond)))

	out = strings.TrimSpace(out)
	if out == "" {
		out = SentinelNoData
	}
	st.Set(s.Output, out)
	return nil
}

// resolve substitutes {name} for each declared input. Only declared inputs
// are substituted; any other braces in the template pass through verbatim.
// A declared input that was never written is a wiring bug, not a soft miss.
func (s *Stage) resolve(st *Store) (string, error) {
	prompt := s.Instruction
	for _, in := range s.Inputs {
		val, ok := st.Lookup(in)
		if !ok {
			return "", fmt.Errorf("stage %s: input %q not in store", s.StageName, in)
		}
		prompt = strings.ReplaceAll(prompt, "{"+in+"}", val)
	}
	return prompt, nil
}

// FuncStage is a local (non-generative) stage: seed capture, content
// acquisition, anything that computes instead of prompting.
type FuncStage struct {
	StageName string
	Fn        func(ctx context.Context, st *Store) error
}

func (s *FuncStage) Name() string { return s.StageName }

func (s *FuncStage) Run(ctx context.Context, st *Store) error {
	return s.Fn(ctx, st)
}
