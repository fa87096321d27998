package worker

import (
	"context"
	"errors"
	"sync"
)

// Job is a unit of work to execute in the pool.
type Job func(context.Context) error

// Run executes jobs with bounded concurrency and returns a joined error.
func Run(ctx context.Context, workers int, jobs []Job) error {
	if workers < 1 {
		workers = 1
	}
	if len(jobs) == 0 {
		return nil
	}

	jobCh := make(chan Job)
	errCh := make(chan error, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := job(ctx); err != nil {
					errCh <- err
				}
			}
		}()
	}

enqueueLoop:
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			break enqueueLoop
		case jobCh <- job:
		}
	}
	close(jobCh)

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		errs = append(errs, ctxErr)
	}

	return errors.Join(errs...)
}

// Map calls fn for every item on the pool and returns the results in
// input order. Results for items whose fn failed hold the zero value.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	jobs := make([]Job, len(items))
	for i, item := range items {
		jobs[i] = func(ctx context.Context) error {
			r, err := fn(ctx, item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		}
	}
	err := Run(ctx, workers, jobs)
	return out, err
}
