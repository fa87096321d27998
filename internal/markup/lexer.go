package markup

import "strings"

// SegmentKind tags the variant held by a Segment.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentChord
	SegmentTranslation
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentChord:
		return "chord"
	case SegmentTranslation:
		return "translation"
	default:
		return "text"
	}
}

// Segment is one piece of a content line. Text holds the chord payload
// without brackets, the lyric run verbatim, or the trimmed translation.
type Segment struct {
	Kind SegmentKind
	Text string
}

// LexLine splits a content line into segments. A '[' opens a chord that
// runs to the next ']'; an '&' outside a chord starts a translation that
// runs to the end of the line. An empty text segment is kept between
// adjacent chords so that every chord but the last is followed by text.
func LexLine(line string) ([]Segment, error) {
	return lex(line, true)
}

// LexTranslation splits a translation payload. It behaves like LexLine
// except that '&' is ordinary text.
func LexTranslation(payload string) ([]Segment, error) {
	return lex(payload, false)
}

func lex(line string, translations bool) ([]Segment, error) {
	var (
		segs       []Segment
		textStart  int
		afterChord bool
	)

	flushText := func(end int) {
		if end > textStart || afterChord {
			segs = append(segs, Segment{Kind: SegmentText, Text: line[textStart:end]})
		}
		afterChord = false
	}

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '[':
			flushText(i)
			end := strings.IndexByte(line[i+1:], ']')
			if end < 0 {
				return nil, &LexError{Column: i + 1, Input: line, Err: ErrUnterminatedChordBracket}
			}
			segs = append(segs, Segment{Kind: SegmentChord, Text: line[i+1 : i+1+end]})
			i += end + 1
			textStart = i + 1
			afterChord = true
		case '&':
			if !translations {
				continue
			}
			afterChord = false
			flushText(i)
			segs = append(segs, Segment{Kind: SegmentTranslation, Text: strings.TrimSpace(line[i+1:])})
			return segs, nil
		}
	}

	afterChord = false
	flushText(len(line))
	return segs, nil
}

// MapChords rewrites the payload of every bracketed chord in line,
// including chords inside a translation, and copies everything else
// through unchanged.
func MapChords(line string, fn func(chord string) string) (string, error) {
	if strings.IndexByte(line, '[') < 0 {
		return line, nil
	}

	var b strings.Builder
	b.Grow(len(line) + 8)

	rest := line
	offset := 0
	for {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open+1:], ']')
		if end < 0 {
			return "", &LexError{Column: offset + open + 1, Input: line, Err: ErrUnterminatedChordBracket}
		}

		b.WriteString(rest[:open+1])
		b.WriteString(fn(rest[open+1 : open+1+end]))
		b.WriteByte(']')

		consumed := open + end + 2
		rest = rest[consumed:]
		offset += consumed
	}
}

// Join rebuilds source text from segments, restoring the delimiters.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case SegmentChord:
			b.WriteByte('[')
			b.WriteString(seg.Text)
			b.WriteByte(']')
		case SegmentTranslation:
			b.WriteByte('&')
			b.WriteString(seg.Text)
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}
