package markup

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedChordBracket is returned when a '[' has no closing ']' on its line.
	ErrUnterminatedChordBracket = errors.New("unterminated chord bracket")
	// ErrMalformedDirective is returned in strict mode for directive lines that cannot be parsed.
	ErrMalformedDirective = errors.New("malformed directive")
)

// LexError locates a lexing failure in the source text.
type LexError struct {
	Line   int // 1-based source line, 0 when unknown
	Column int // 1-based byte column, 0 when unknown
	Input  string
	Err    error
}

func (e *LexError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("line %d, column %d: %v: %q", e.Line, e.Column, e.Err, e.Input)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Input)
	case e.Column > 0:
		return fmt.Sprintf("column %d: %v: %q", e.Column, e.Err, e.Input)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Input)
}

func (e *LexError) Unwrap() error {
	return e.Err
}

// AtLine returns err with its line number set when it is a *LexError
// without one. Other errors are returned unchanged.
func AtLine(err error, line int) error {
	var lexErr *LexError
	if line <= 0 || !errors.As(err, &lexErr) || lexErr.Line != 0 {
		return err
	}
	located := *lexErr
	located.Line = line
	return &located
}
