package source

import (
	"context"
	"errors"
	"os"
	"time"
)

// Retrying wraps a provider and retries failed reads with a linear
// backoff. Missing songs and context errors are returned at once.
type Retrying struct {
	p        Provider
	attempts int
	backoff  time.Duration
}

// WithRetry returns p wrapped in a Retrying provider.
func WithRetry(p Provider, attempts int, backoff time.Duration) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrying{p: p, attempts: attempts, backoff: backoff}
}

// Read calls the wrapped provider until it succeeds or attempts run out.
func (r *Retrying) Read(ctx context.Context, name string) (string, error) {
	var err error
	for i := 1; i <= r.attempts; i++ {
		var text string
		text, err = r.p.Read(ctx, name)
		if err == nil {
			return text, nil
		}
		if !retryable(err) || i == r.attempts {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(i) * r.backoff):
		}
	}
	return "", err
}

func retryable(err error) bool {
	return !errors.Is(err, os.ErrNotExist) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
