package solver

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunWithRetries retries a single backend with a growing timeout budget
// when it reports Unknown, per spec.md §5 "Cancellation & timeouts":
// TimeoutMS grows by Multiplier each attempt (capped at Cap), up to
// MaxTries attempts, optionally randomizing the backend's seed between
// tries (opts.Randomize) so a retried solve isn't doomed to repeat the
// exact same unproductive search.
func RunWithRetries(backend Backend, assertions []Assertion, opts CheckOptions) Result {
	attempt := opts
	if attempt.MaxTries <= 0 {
		attempt.MaxTries = 1
	}
	if attempt.Multiplier <= 0 {
		attempt.Multiplier = 1
	}
	var last Result
	for try := 0; try < attempt.MaxTries; try++ {
		if attempt.Randomize {
			attempt.Seed = opts.Seed + int64(try)
		}
		last = backend.Check(assertions, attempt)
		if last.Status != Unknown {
			return last
		}
		attempt.TimeoutMS = int(float64(attempt.TimeoutMS) * attempt.Multiplier)
		if attempt.Cap > 0 && attempt.TimeoutMS > attempt.Cap {
			attempt.TimeoutMS = attempt.Cap
		}
	}
	return last
}

// RunParallel races several backend configurations (e.g. distinct
// third-party solvers, or the same backend with distinct seeds) and
// returns the first decisive (Sat or Unsat) result, per spec.md §5
// "Parallel solving". If every backend reports Unknown, the first such
// result is returned. The backends here are synchronous and don't observe
// ctx: it is only handed to errgroup.WithContext. Once a decisive answer
// is in, this call returns at once; the remaining backends are not
// cancelled and run to completion in the background.
func RunParallel(ctx context.Context, backends []Backend, assertions []Assertion, opts CheckOptions) Result {
	if len(backends) == 0 {
		return Result{Status: Unknown}
	}
	if len(backends) == 1 {
		return backends[0].Check(assertions, opts)
	}

	type outcome struct {
		idx    int
		result Result
	}
	results := make(chan outcome, len(backends))

	g, _ := errgroup.WithContext(ctx)
	for i, b := range backends {
		i, b := i, b
		g.Go(func() error {
			results <- outcome{idx: i, result: b.Check(assertions, opts)}
			return nil
		})
	}

	go func() {
		g.Wait()
		close(results)
	}()

	var fallback *Result
	remaining := len(backends)
	for o := range results {
		remaining--
		if o.result.Status != Unknown {
			// Drain the rest in the background; callers don't wait on them.
			go func() {
				for range results {
				}
			}()
			return o.result
		}
		if fallback == nil {
			r := o.result
			fallback = &r
		}
		if remaining == 0 {
			break
		}
	}
	if fallback != nil {
		return *fallback
	}
	return Result{Status: Unknown}
}
