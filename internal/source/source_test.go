package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestHTTP(handler roundTripFunc) *HTTP {
	return NewHTTP(&http.Client{Transport: handler}, "https://songs.example/library/")
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestDirRead(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "grace.cho"), []byte("{title: Grace}"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := NewDir(root).Read(context.Background(), "grace.cho")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "{title: Grace}" {
		t.Fatalf("unexpected contents: %q", got)
	}
}

func TestDirReadMissing(t *testing.T) {
	_, err := NewDir(t.TempDir()).Read(context.Background(), "missing.cho")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestDirRejectsEscapingNames(t *testing.T) {
	d := NewDir(t.TempDir())
	for _, name := range []string{"../secret", "/etc/passwd", ""} {
		if _, err := d.Read(context.Background(), name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestDirReadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDir(t.TempDir()).Read(ctx, "x.cho"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHTTPReadSuccess(t *testing.T) {
	h := newTestHTTP(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/library/How Great.cho" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.Header.Get("Accept") != "text/plain" {
			t.Fatalf("missing accept header")
		}
		return response(200, "{title: How Great}\n{key: A}\n"), nil
	})

	got, err := h.Read(context.Background(), "How Great.cho")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !strings.HasPrefix(got, "{title: How Great}") {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestHTTPReadNotFound(t *testing.T) {
	h := newTestHTTP(func(req *http.Request) (*http.Response, error) {
		return response(404, "nope"), nil
	})
	if _, err := h.Read(context.Background(), "x"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestHTTPReadStatusError(t *testing.T) {
	h := newTestHTTP(func(req *http.Request) (*http.Response, error) {
		return response(500, ""), nil
	})
	_, err := h.Read(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "unexpected status") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestHTTPReadTooLarge(t *testing.T) {
	h := newTestHTTP(func(req *http.Request) (*http.Response, error) {
		return response(200, strings.Repeat("a", MaxSongBytes+1)), nil
	})
	_, err := h.Read(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected size error, got %v", err)
	}
}
