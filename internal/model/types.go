package model

import "time"

// Song is a parsed, possibly transposed chord sheet.
type Song struct {
	Title    string    `json:"title"`
	Key      string    `json:"key"`
	Sections []Section `json:"sections"`
}

// Section is a run of aligned lines opened by a section keyword. Keyword
// is nil for content that precedes the first keyword.
type Section struct {
	Keyword *string       `json:"keyword,omitempty"`
	Lines   []AlignedLine `json:"lines"`
}

// AlignedLine pairs a chord with the lyric text it sits over, and a
// translation chord with its translation text. A line holding only
// Comment marks a stanza break.
type AlignedLine struct {
	Chord            *string `json:"chord,omitempty"`
	Text             *string `json:"text,omitempty"`
	TranslationChord *string `json:"translation_chord,omitempty"`
	TranslationText  *string `json:"translation_text,omitempty"`
	Comment          *string `json:"comment,omitempty"`
}

// IsBreak reports whether the line is a stanza break.
func (l AlignedLine) IsBreak() bool {
	return l.Comment != nil && l.Chord == nil && l.Text == nil &&
		l.TranslationChord == nil && l.TranslationText == nil
}

// IsTranslation reports whether the line carries translation fields only.
func (l AlignedLine) IsTranslation() bool {
	return (l.TranslationChord != nil || l.TranslationText != nil) && l.Chord == nil && l.Text == nil
}

// Entry describes one song file in a library index.
type Entry struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Title   string    `json:"title"`
	Key     string    `json:"key"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	// Problem is set when the song's header could not be read.
	Problem string `json:"problem,omitempty"`
}

// Ptr returns a pointer to s, for building optional fields.
func Ptr(s string) *string {
	return &s
}
