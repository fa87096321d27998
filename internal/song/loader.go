package song

import (
	"context"
	"fmt"
	"iter"

	"chordsheet/internal/logging"
	"chordsheet/internal/markup"
	"chordsheet/internal/model"
	"chordsheet/internal/sheet"
	"chordsheet/internal/source"
	"chordsheet/internal/transpose"
)

const (
	titleDirective = "title"
	keyDirective   = "key"
)

// Options controls how song text is parsed.
type Options struct {
	// TargetKey is the key to transpose to; empty keeps the declared key.
	TargetKey string
	// Strict rejects malformed directive lines instead of ignoring them.
	Strict bool
}

// Header holds the metadata directives of a song.
type Header struct {
	Title string
	Key   string
}

// ReadHeader scans text for the first title and key directives.
func ReadHeader(text string, strict bool) (Header, error) {
	var h Header
	var haveTitle, haveKey bool
	for line, err := range (markup.Classifier{Strict: strict}).Lines(text) {
		if err != nil {
			return Header{}, err
		}
		if line.Kind != markup.DirectiveLine {
			continue
		}
		switch {
		case line.Key == titleDirective && !haveTitle:
			h.Title, haveTitle = line.Value, true
		case line.Key == keyDirective && !haveKey:
			h.Key, haveKey = line.Value, true
		}
	}

	if !haveTitle {
		return Header{}, ErrMissingTitle
	}
	if !haveKey {
		return Header{}, ErrMissingKey
	}
	return h, nil
}

// Parse runs the full pipeline over a song's text: classify, drop the
// title and key directives, transpose, flatten and assemble sections.
// Song.Key is the target key, or the declared key when none is given.
func Parse(text string, opts Options) (model.Song, error) {
	h, err := ReadHeader(text, opts.Strict)
	if err != nil {
		return model.Song{}, err
	}

	from, err := transpose.ParseKey(h.Key)
	if err != nil {
		return model.Song{}, err
	}
	to := from
	if opts.TargetKey != "" {
		if to, err = transpose.ParseKey(opts.TargetKey); err != nil {
			return model.Song{}, err
		}
	}

	lines := withoutMetadata((markup.Classifier{Strict: opts.Strict}).Lines(text))
	tokens := sheet.Flatten(transpose.New(from, to).Lines(lines))
	sections, err := sheet.Sections(tokens)
	if err != nil {
		return model.Song{}, err
	}

	return model.Song{Title: h.Title, Key: to.String(), Sections: sections}, nil
}

func withoutMetadata(lines iter.Seq2[markup.Line, error]) iter.Seq2[markup.Line, error] {
	return func(yield func(markup.Line, error) bool) {
		for line, err := range lines {
			if err == nil && line.Kind == markup.DirectiveLine &&
				(line.Key == titleDirective || line.Key == keyDirective) {
				continue
			}
			if !yield(line, err) {
				return
			}
		}
	}
}

// Loader reads songs from a provider and parses them.
type Loader struct {
	src    source.Provider
	strict bool
	logger *logging.Logger
}

// NewLoader creates a Loader. A nil logger discards log output.
func NewLoader(src source.Provider, strict bool, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Loader{src: src, strict: strict, logger: logger}
}

// Load reads and parses the named song, transposed to targetKey when it
// is not empty.
func (l *Loader) Load(ctx context.Context, name, targetKey string) (model.Song, error) {
	text, err := l.read(ctx, name)
	if err != nil {
		return model.Song{}, err
	}

	s, err := Parse(text, Options{TargetKey: targetKey, Strict: l.strict})
	if err != nil {
		return model.Song{}, fmt.Errorf("parse %s: %w", name, err)
	}
	l.logger.Debugf("Loaded %s: %q in %s (%d sections)", name, s.Title, s.Key, len(s.Sections))
	return s, nil
}

// Header reads the named song and returns its title and key.
func (l *Loader) Header(ctx context.Context, name string) (Header, error) {
	text, err := l.read(ctx, name)
	if err != nil {
		return Header{}, err
	}
	h, err := ReadHeader(text, l.strict)
	if err != nil {
		return Header{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return h, nil
}

func (l *Loader) read(ctx context.Context, name string) (string, error) {
	text, err := l.src.Read(ctx, name)
	if err != nil {
		return "", &IOError{Name: name, Err: err}
	}
	return text, nil
}
