package markup

import "strings"

// PartKind tags the variant held by a ChordPart.
type PartKind int

const (
	PartSuffix PartKind = iota
	PartRoot
)

// ChordPart is a root note (letter plus optional accidental) or the
// suffix text that follows it.
type ChordPart struct {
	Kind PartKind
	Text string
}

// Letter returns the root letter, or 0 for suffix parts.
func (p ChordPart) Letter() byte {
	if p.Kind != PartRoot || p.Text == "" {
		return 0
	}
	return p.Text[0]
}

// Accidental returns "b", "#" or "" for a root part.
func (p ChordPart) Accidental() string {
	if p.Kind != PartRoot || len(p.Text) < 2 {
		return ""
	}
	return p.Text[1:]
}

// IsRootLetter reports whether c can start a root note.
func IsRootLetter(c byte) bool {
	return c >= 'A' && c <= 'G'
}

// LexChord splits a chord payload into roots and suffixes, so "Cmaj7/G"
// becomes C, "maj7/", G. A payload that does not open with a root letter
// is a single suffix part, which keeps annotations like "(hold)" intact.
// Joining the parts' Text always reproduces the input.
func LexChord(chord string) []ChordPart {
	if chord == "" {
		return nil
	}
	if !IsRootLetter(chord[0]) {
		return []ChordPart{{Kind: PartSuffix, Text: chord}}
	}

	var parts []ChordPart
	for i := 0; i < len(chord); {
		if IsRootLetter(chord[i]) {
			end := i + 1
			if end < len(chord) && (chord[end] == 'b' || chord[end] == '#') {
				end++
			}
			parts = append(parts, ChordPart{Kind: PartRoot, Text: chord[i:end]})
			i = end
			continue
		}

		end := i
		for end < len(chord) && !IsRootLetter(chord[end]) {
			end++
		}
		parts = append(parts, ChordPart{Kind: PartSuffix, Text: chord[i:end]})
		i = end
	}
	return parts
}

// JoinChord concatenates chord parts back into a chord payload.
func JoinChord(parts []ChordPart) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
