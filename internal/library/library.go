// Package library indexes a directory of song files and resolves user
// queries against the index.
package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"chordsheet/internal/catalog"
	"chordsheet/internal/logging"
	"chordsheet/internal/model"
	"chordsheet/internal/song"
	"chordsheet/internal/source"
	"chordsheet/internal/worker"
)

// Extensions lists the file extensions treated as songs.
var Extensions = []string{".chordpro", ".cho", ".song", ".txt"}

// ErrNoListing is returned by Index when the library has no local directory.
var ErrNoListing = errors.New("library has no local directory to list")

// Options configures a Library.
type Options struct {
	// Dir is the local song directory. It may be nil when songs are only
	// read through Loader, in which case the library cannot be listed.
	Dir     *source.Dir
	Loader  *song.Loader
	Cache   *catalog.Cache
	TTL     time.Duration
	Workers int
	Strict  bool
	Logger  *logging.Logger
}

// Library is an indexed song collection.
type Library struct {
	dir     *source.Dir
	loader  *song.Loader
	cache   *catalog.Cache
	ttl     time.Duration
	workers int
	strict  bool
	logger  *logging.Logger

	group singleflight.Group
	now   func() time.Time
}

// New creates a Library.
func New(opts Options) *Library {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	loader := opts.Loader
	if loader == nil && opts.Dir != nil {
		loader = song.NewLoader(opts.Dir, opts.Strict, logger)
	}
	return &Library{
		dir:     opts.Dir,
		loader:  loader,
		cache:   opts.Cache,
		ttl:     opts.TTL,
		workers: opts.Workers,
		strict:  opts.Strict,
		logger:  logger,
		now:     time.Now,
	}
}

// ShouldUseCache reports whether an index saved at cachedAt is still
// fresh. A zero ttl keeps the index until an explicit refresh.
func ShouldUseCache(cachedAt time.Time, ttl time.Duration, now time.Time) bool {
	if cachedAt.IsZero() {
		return false
	}
	if ttl <= 0 {
		return true
	}
	return now.Sub(cachedAt) <= ttl
}

// Index returns the library's entries, from the cache when it is fresh
// and by scanning the directory otherwise. Unchanged files keep their
// cached headers during a rescan.
func (l *Library) Index(ctx context.Context, refresh bool) ([]model.Entry, error) {
	if l.dir == nil {
		return nil, ErrNoListing
	}

	var previous []model.Entry
	if l.cache != nil {
		cached, root, indexedAt, err := l.cache.Load()
		switch {
		case err == nil && root == l.dir.Root():
			if !refresh && ShouldUseCache(indexedAt, l.ttl, l.now()) {
				l.logger.Debugf("Loaded %d songs from index cache: %s", len(cached), l.cache.Path())
				return cached, nil
			}
			previous = cached
		case err != nil && !os.IsNotExist(err):
			l.logger.Warnf("Read index cache failed: %v", err)
		}
	}

	entries, err := l.Scan(ctx, previous)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Save(l.dir.Root(), entries); err != nil {
			l.logger.Warnf("Persist index cache failed: %v", err)
		} else {
			l.logger.Debugf("Updated index cache: %s", l.cache.Path())
		}
	}
	return entries, nil
}

// Scan walks the library directory and reads the header of every song
// file. Entries in previous whose name, size and modification time still
// match are reused without reading the file. A song whose header cannot
// be read is kept with Problem set.
func (l *Library) Scan(ctx context.Context, previous []model.Entry) ([]model.Entry, error) {
	if l.dir == nil {
		return nil, ErrNoListing
	}

	files, err := listSongFiles(l.dir.Root())
	if err != nil {
		return nil, err
	}

	known := make(map[string]model.Entry, len(previous))
	for _, e := range previous {
		known[e.Name] = e
	}

	var reused atomic.Int32
	entries, err := worker.Map(ctx, l.workers, files, func(ctx context.Context, f model.Entry) (model.Entry, error) {
		if prev, ok := known[f.Name]; ok && prev.Size == f.Size && prev.ModTime.Equal(f.ModTime) {
			reused.Add(1)
			return prev, nil
		}

		text, err := l.dir.Read(ctx, f.Name)
		if err != nil {
			if ctx.Err() != nil {
				return model.Entry{}, ctx.Err()
			}
			f.Problem = err.Error()
			return f, nil
		}
		h, err := song.ReadHeader(text, l.strict)
		if err != nil {
			f.Problem = err.Error()
			return f, nil
		}
		f.Title, f.Key = h.Title, h.Key
		return f, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", l.dir.Root(), err)
	}

	l.logger.Debugf("Indexed %d songs in %s (%d unchanged)", len(entries), l.dir.Root(), reused.Load())

	SortEntries(entries)
	return entries, nil
}

// SortEntries orders entries by title, then by name.
func SortEntries(entries []model.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, tj := strings.ToLower(displayTitle(entries[i])), strings.ToLower(displayTitle(entries[j]))
		if ti != tj {
			return ti < tj
		}
		return entries[i].Name < entries[j].Name
	})
}

func displayTitle(e model.Entry) string {
	if e.Title != "" {
		return e.Title
	}
	return strings.TrimSuffix(path.Base(e.Name), path.Ext(e.Name))
}

// EntryID returns the stable identifier for a song name.
func EntryID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("chordsheet:"+name)).String()
}

// IsSongFile reports whether name has one of the song extensions.
func IsSongFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func listSongFiles(root string) ([]model.Entry, error) {
	var files []model.Entry
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !IsSongFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		files = append(files, model.Entry{
			ID:      EntryID(name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list songs in %s: %w", root, err)
	}
	return files, nil
}

// Load reads and parses a song, transposed to key when it is not empty.
// Concurrent loads of the same song and key share one parse.
func (l *Library) Load(ctx context.Context, name, key string) (model.Song, error) {
	if l.loader == nil {
		return model.Song{}, fmt.Errorf("load %s: no song source configured", name)
	}
	v, err, _ := l.group.Do(name+"\x00"+key, func() (any, error) {
		return l.loader.Load(ctx, name, key)
	})
	if err != nil {
		return model.Song{}, err
	}
	return v.(model.Song), nil
}

// Problem is a song that failed to load.
type Problem struct {
	Name string
	Err  error
}

// Check fully parses every entry and returns the ones that fail, in
// entry order.
func (l *Library) Check(ctx context.Context, entries []model.Entry) ([]Problem, error) {
	results, err := worker.Map(ctx, l.workers, entries, func(ctx context.Context, e model.Entry) (Problem, error) {
		_, loadErr := l.Load(ctx, e.Name, "")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Problem{}, ctxErr
		}
		return Problem{Name: e.Name, Err: loadErr}, nil
	})
	if err != nil {
		return nil, err
	}

	var problems []Problem
	for _, p := range results {
		if p.Err != nil {
			problems = append(problems, p)
		}
	}
	return problems, nil
}
