package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// MaxSongBytes bounds how much text a provider reads for one song.
const MaxSongBytes = 1 << 20

// Provider returns the raw text of a named song.
type Provider interface {
	Read(ctx context.Context, name string) (string, error)
}

// Dir reads songs from files under a root directory.
type Dir struct {
	root string
}

// NewDir creates a provider rooted at dir.
func NewDir(dir string) *Dir {
	return &Dir{root: dir}
}

// Root returns the directory songs are read from.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the file path for a song name. Names must stay inside the root.
func (d *Dir) Path(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("song name %q escapes library directory", name)
	}
	return filepath.Join(d.root, name), nil
}

// Read returns the contents of <root>/<name>.
func (d *Dir) Read(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := d.Path(name)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return readLimited(f, path)
}

// HTTP reads songs from <base>/<name> over HTTP.
type HTTP struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTP creates an HTTP provider.
func NewHTTP(httpClient *http.Client, baseURL string) *HTTP {
	return &HTTP{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// Read fetches a song's text.
func (h *HTTP) Read(ctx context.Context, name string) (string, error) {
	u := fmt.Sprintf("%s/%s", h.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("request %s: %w", u, os.ErrNotExist)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("request %s: unexpected status %d", u, resp.StatusCode)
	}

	return readLimited(resp.Body, u)
}

func readLimited(r io.Reader, origin string) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxSongBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", origin, err)
	}
	if len(b) > MaxSongBytes {
		return "", fmt.Errorf("read %s: song exceeds %d bytes", origin, MaxSongBytes)
	}
	return string(b), nil
}
