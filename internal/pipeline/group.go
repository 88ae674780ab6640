package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jiwasawa/blogforge/internal/engine"
)

// Sequential runs its members in order, stopping at the first failure.
type Sequential struct {
	GroupName string
	Members   []Runner
}

func (g *Sequential) Name() string { return g.GroupName }

func (g *Sequential) Run(ctx context.Context, st *Store) error {
	for _, m := range g.Members {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Run(ctx, st); err != nil {
			return fmt.Errorf("%s: %w", g.GroupName, err)
		}
	}
	return nil
}

// Parallel runs all members concurrently. Unlike errgroup's cancel-on-error
// default, every member always runs to completion: a failed branch must not
// strand its siblings' store writes. Errors are aggregated afterwards, with
// a rate-limit error taking precedence over everything else.
type Parallel struct {
	GroupName string
	Members   []Runner
}

func (g *Parallel) Name() string { return g.GroupName }

func (g *Parallel) Run(ctx context.Context, st *Store) error {
	errs := make([]error, len(g.Members))

	var eg errgroup.Group
	for i, m := range g.Members {
		eg.Go(func() error {
			errs[i] = m.Run(ctx, st)
			return nil
		})
	}
	_ = eg.Wait()

	var failed []error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if engine.IsRateLimit(err) {
			return fmt.Errorf("%s: %w", g.GroupName, err)
		}
		slog.Warn("parallel member failed", slog.String("group", g.GroupName), slog.String("member", g.Members[i].Name()), slog.Any("err", err))
		failed = append(failed, fmt.Errorf("%s: %w", g.Members[i].Name(), err))
	}
	if len(failed) > 0 {
		return fmt.Errorf("%s: %w", g.GroupName, errors.Join(failed...))
	}
	return nil
}
