package transpose

import (
	"iter"
	"strings"

	"chordsheet/internal/markup"
)

// Transposer shifts chord roots by a fixed number of semitones and spells
// the results with the destination key's accidentals.
type Transposer struct {
	delta int
	flats bool
}

// New returns a Transposer from one key to another.
func New(from, to Key) Transposer {
	return Transposer{delta: Semitones(from, to), flats: to.PrefersFlats()}
}

// Keys parses both key names and returns the Transposer between them.
func Keys(from, to string) (Transposer, error) {
	fk, err := ParseKey(from)
	if err != nil {
		return Transposer{}, err
	}
	tk, err := ParseKey(to)
	if err != nil {
		return Transposer{}, err
	}
	return New(fk, tk), nil
}

// By returns a Transposer for an explicit semitone shift.
func By(semitones int, flats bool) Transposer {
	return Transposer{delta: mod12(semitones), flats: flats}
}

// Semitones returns the shift applied, in [0, 12).
func (t Transposer) Semitones() int {
	return t.delta
}

// Identity reports whether the transposer leaves every chord unchanged.
func (t Transposer) Identity() bool {
	return t.delta == 0
}

// Chord transposes the roots of one chord payload. Suffixes and payloads
// that are not chords are returned as they were.
func (t Transposer) Chord(chord string) string {
	if t.Identity() {
		return chord
	}

	parts := markup.LexChord(chord)
	var b strings.Builder
	b.Grow(len(chord) + 2)
	for _, p := range parts {
		if p.Kind != markup.PartRoot {
			b.WriteString(p.Text)
			continue
		}
		pitch, err := NotePitch(p.Text)
		if err != nil {
			b.WriteString(p.Text)
			continue
		}
		b.WriteString(NoteName(pitch+t.delta, t.flats))
	}
	return b.String()
}

// Line transposes the chords of a content line, including chords inside
// its translation. Other lines are returned unchanged.
func (t Transposer) Line(line markup.Line) (markup.Line, error) {
	if line.Kind != markup.ContentLine || t.Identity() {
		return line, nil
	}

	text, err := markup.MapChords(line.Text, t.Chord)
	if err != nil {
		return markup.Line{}, markup.AtLine(err, line.Number)
	}
	line.Text = text
	return line, nil
}

// Lines lazily transposes a classified line sequence. The first error,
// from the input or from transposition, ends the sequence.
func (t Transposer) Lines(lines iter.Seq2[markup.Line, error]) iter.Seq2[markup.Line, error] {
	return func(yield func(markup.Line, error) bool) {
		for line, err := range lines {
			if err != nil {
				yield(markup.Line{}, err)
				return
			}
			out, err := t.Line(line)
			if err != nil {
				yield(markup.Line{}, err)
				return
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}
