package driver

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/segalloc/internal/trace"
)

// Run replays traces concurrently, each on its own allocator, and collects a
// Report in trace order. Failing traces are recorded in their Result; the
// returned error joins all failures. With cfg.FailFast the first failure
// cancels the remaining replays.
func Run(ctx context.Context, traces []*trace.Trace, cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()
	results := make([]Result, len(traces))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	var (
		mu   sync.Mutex
		errs []error
	)
	for i, t := range traces {
		g.Go(func() error {
			res, err := Replay(gctx, t, cfg)
			results[i] = *res
			if err == nil {
				return nil
			}
			results[i].Error = err.Error()
			cfg.Logger.Warn("trace failed", "trace", t.Name, "error", err)
			if cfg.FailFast {
				return err
			}
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	report := NewReport(results)
	if err != nil {
		return report, err
	}
	return report, errors.Join(errs...)
}
