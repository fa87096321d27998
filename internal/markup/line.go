package markup

import (
	"iter"
	"strings"
)

// LineKind tags the variant held by a Line.
type LineKind int

const (
	BlankLine LineKind = iota
	DirectiveLine
	ContentLine
)

func (k LineKind) String() string {
	switch k {
	case DirectiveLine:
		return "directive"
	case ContentLine:
		return "content"
	default:
		return "blank"
	}
}

// Line is one classified source line. Key and Value are set for
// directives, Text for content lines.
type Line struct {
	Kind   LineKind
	Number int
	Key    string
	Value  string
	Text   string
}

// Directive builds a directive line.
func Directive(key, value string) Line {
	return Line{Kind: DirectiveLine, Key: key, Value: value}
}

// Content builds a content line.
func Content(text string) Line {
	return Line{Kind: ContentLine, Text: text}
}

// Blank builds a blank line.
func Blank() Line {
	return Line{Kind: BlankLine}
}

// Classifier turns raw lines into Line values. In strict mode malformed
// directives are reported instead of degrading to blank lines.
type Classifier struct {
	Strict bool
}

// Classify classifies a single raw line. Surrounding whitespace is ignored.
func (c Classifier) Classify(raw string) (Line, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "{") {
		return Content(s), nil
	}

	if line, ok := parseDirective(s); ok {
		return line, nil
	}
	if c.Strict {
		return Line{}, &LexError{Input: s, Err: ErrMalformedDirective}
	}
	return Blank(), nil
}

// Classify is Classifier{}.Classify: malformed directives become blank lines.
func Classify(raw string) Line {
	line, _ := Classifier{}.Classify(raw)
	return line
}

// parseDirective reads "{key: value}" and the bare "{Name}" section form,
// which yields key and value both set to Name.
func parseDirective(s string) (Line, bool) {
	if len(s) < 2 || !strings.HasSuffix(s, "}") {
		return Line{}, false
	}
	body := s[1 : len(s)-1]

	key, value, found := strings.Cut(body, ":")
	key = strings.TrimSpace(key)
	if key == "" {
		return Line{}, false
	}
	if !found {
		return Directive(key, key), true
	}
	return Directive(key, strings.TrimSpace(value)), true
}

// Lines lazily classifies every line of text. Lines are numbered from 1.
// Iteration stops after the first error.
func (c Classifier) Lines(text string) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		n := 0
		for raw := range strings.Lines(text) {
			n++
			line, err := c.Classify(raw)
			if err != nil {
				yield(Line{}, AtLine(err, n))
				return
			}
			line.Number = n
			if !yield(line, nil) {
				return
			}
		}
	}
}

// Lines lazily classifies text in lenient mode.
func Lines(text string) iter.Seq2[Line, error] {
	return Classifier{}.Lines(text)
}
