package transpose

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKeyName is returned for key or note names outside [A-G][b#]?.
var ErrInvalidKeyName = errors.New("invalid key name")

var (
	sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

	// Pitch class of each natural letter, anchored at C.
	letterPitch = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

	// Natural-letter keys written with flats. Keys with an accidental
	// follow their own accidental.
	flatNaturalMajors = map[byte]bool{'F': true}
	flatNaturalMinors = map[byte]bool{'D': true, 'G': true, 'C': true, 'F': true}
)

// Key is a validated key name such as "Bb" or "F#m".
type Key struct {
	Letter     byte
	Accidental string
	Minor      bool
}

// ParseKey validates a key name: a letter A-G, an optional "b" or "#",
// and an optional trailing "m" for minor keys.
func ParseKey(name string) (Key, error) {
	s := strings.TrimSpace(name)
	minor := false
	if len(s) > 1 && strings.HasSuffix(s, "m") {
		minor = true
		s = s[:len(s)-1]
	}

	letter, accidental, err := splitNote(s)
	if err != nil {
		return Key{}, fmt.Errorf("key %q: %w", name, ErrInvalidKeyName)
	}
	return Key{Letter: letter, Accidental: accidental, Minor: minor}, nil
}

// MustParseKey is ParseKey for compile-time constants; it panics on error.
func MustParseKey(name string) Key {
	k, err := ParseKey(name)
	if err != nil {
		panic(err)
	}
	return k
}

// Pitch returns the pitch class of the key's tonic, 0 for C.
func (k Key) Pitch() int {
	return pitchOf(k.Letter, k.Accidental)
}

// PrefersFlats reports whether chords in this key are spelled with flats.
func (k Key) PrefersFlats() bool {
	switch k.Accidental {
	case "b":
		return true
	case "#":
		return false
	}
	if k.Minor {
		return flatNaturalMinors[k.Letter]
	}
	return flatNaturalMajors[k.Letter]
}

func (k Key) String() string {
	if k.Letter == 0 {
		return ""
	}
	s := string(k.Letter) + k.Accidental
	if k.Minor {
		s += "m"
	}
	return s
}

// Semitones returns the upward distance from one key to another, in [0, 12).
func Semitones(from, to Key) int {
	return mod12(to.Pitch() - from.Pitch())
}

// NoteName spells a pitch class with sharps or flats.
func NoteName(pitch int, flats bool) string {
	if flats {
		return flatNames[mod12(pitch)]
	}
	return sharpNames[mod12(pitch)]
}

// NotePitch returns the pitch class of a note name such as "Eb" or "B#".
func NotePitch(note string) (int, error) {
	letter, accidental, err := splitNote(note)
	if err != nil {
		return 0, err
	}
	return pitchOf(letter, accidental), nil
}

func splitNote(s string) (byte, string, error) {
	if s == "" || len(s) > 2 {
		return 0, "", fmt.Errorf("note %q: %w", s, ErrInvalidKeyName)
	}
	if _, ok := letterPitch[s[0]]; !ok {
		return 0, "", fmt.Errorf("note %q: %w", s, ErrInvalidKeyName)
	}
	if len(s) == 2 && s[1] != 'b' && s[1] != '#' {
		return 0, "", fmt.Errorf("note %q: %w", s, ErrInvalidKeyName)
	}
	return s[0], s[1:], nil
}

func pitchOf(letter byte, accidental string) int {
	p := letterPitch[letter]
	switch accidental {
	case "b":
		p--
	case "#":
		p++
	}
	return mod12(p)
}

func mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}
