package song

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTitle is returned when a song has no {title: ...} directive.
	ErrMissingTitle = errors.New("missing title")
	// ErrMissingKey is returned when a song has no {key: ...} directive.
	ErrMissingKey = errors.New("missing key")
	// ErrIO matches every error raised while reading song text.
	ErrIO = errors.New("read song")
)

// IOError wraps a failure of the song's text provider.
type IOError struct {
	Name string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read song %q: %v", e.Name, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrIO) hold for every IOError.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
