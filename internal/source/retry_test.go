package source

import (
	"context"
	"errors"
	"os"
	"testing"
)

type flakyProvider struct {
	calls int
	fail  int
	err   error
}

func (f *flakyProvider) Read(context.Context, string) (string, error) {
	f.calls++
	if f.calls <= f.fail {
		return "", f.err
	}
	return "{title: T}", nil
}

func TestRetryingEventuallySucceeds(t *testing.T) {
	p := &flakyProvider{fail: 2, err: errors.New("transient")}
	text, err := WithRetry(p, 3, 0).Read(context.Background(), "song.cho")
	if err != nil {
		t.Fatalf("Read should eventually succeed: %v", err)
	}
	if text != "{title: T}" || p.calls != 3 {
		t.Fatalf("unexpected result %q after %d calls", text, p.calls)
	}
}

func TestRetryingReturnsLastError(t *testing.T) {
	expected := errors.New("permanent")
	p := &flakyProvider{fail: 10, err: expected}
	_, err := WithRetry(p, 2, 0).Read(context.Background(), "song.cho")
	if !errors.Is(err, expected) {
		t.Fatalf("expected last error %v, got %v", expected, err)
	}
	if p.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", p.calls)
	}
}

func TestRetryingSkipsMissingSongs(t *testing.T) {
	p := &flakyProvider{fail: 10, err: os.ErrNotExist}
	_, err := WithRetry(p, 3, 0).Read(context.Background(), "song.cho")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("missing songs should not be retried, got %d calls", p.calls)
	}
}

func TestRetryingRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &flakyProvider{fail: 10, err: errors.New("retryable")}
	_, err := WithRetry(p, 3, 0).Read(ctx, "song.cho")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
