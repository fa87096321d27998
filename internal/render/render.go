// Package render lays out parsed songs as chord-over-lyric text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chordsheet/internal/model"
)

// MinWidth is the narrowest layout the renderer produces.
const MinWidth = 20

type palette struct {
	title       func(string) string
	meta        func(string) string
	heading     func(string) string
	chord       func(string) string
	lyric       func(string) string
	translation func(string) string
	comment     func(string) string
}

// Renderer formats songs for a fixed column width.
type Renderer struct {
	width int
	paint palette
}

func identity(s string) string { return s }

// Plain returns a renderer that writes unstyled text.
func Plain(width int) *Renderer {
	return &Renderer{
		width: max(width, MinWidth),
		paint: palette{
			title:       identity,
			meta:        identity,
			heading:     func(s string) string { return "[" + s + "]" },
			chord:       identity,
			lyric:       identity,
			translation: identity,
			comment:     func(s string) string { return "# " + s },
		},
	}
}

// Colored returns a renderer that styles output with ANSI colors.
func Colored(width int) *Renderer {
	style := func(s lipgloss.Style) func(string) string {
		return func(text string) string { return s.Render(text) }
	}
	return &Renderer{
		width: max(width, MinWidth),
		paint: palette{
			title:       style(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))),
			meta:        style(lipgloss.NewStyle().Faint(true)),
			heading:     style(lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("39"))),
			chord:       style(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))),
			lyric:       identity,
			translation: style(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))),
			comment:     style(lipgloss.NewStyle().Faint(true).Italic(true)),
		},
	}
}

// Width returns the layout width.
func (r *Renderer) Width() int {
	return r.width
}

// Write renders s to w.
func (r *Renderer) Write(w io.Writer, s model.Song) error {
	_, err := io.WriteString(w, r.Song(s))
	return err
}

// Song renders the title, the key and every section.
func (r *Renderer) Song(s model.Song) string {
	var b strings.Builder
	if s.Title != "" {
		b.WriteString(r.paint.title(s.Title))
		b.WriteByte('\n')
	}
	if s.Key != "" {
		b.WriteString(r.paint.meta(fmt.Sprintf("Key: %s", s.Key)))
		b.WriteByte('\n')
	}
	for _, section := range s.Sections {
		b.WriteByte('\n')
		b.WriteString(r.Section(section))
	}
	return b.String()
}

// Section renders one section. Runs of lyric lines and runs of
// translation lines are wrapped separately; stanza breaks become blank
// lines.
func (r *Renderer) Section(section model.Section) string {
	var b strings.Builder
	if section.Keyword != nil {
		b.WriteString(r.paint.heading(*section.Keyword))
		b.WriteByte('\n')
	}

	var run []model.AlignedLine
	translation := false
	flush := func() {
		if len(run) > 0 {
			b.WriteString(r.block(run, translation))
		}
		run = run[:0]
	}

	for _, line := range section.Lines {
		if line.IsBreak() {
			flush()
			if *line.Comment != "" {
				b.WriteString(r.paint.comment(*line.Comment))
			}
			b.WriteByte('\n')
			continue
		}
		if line.IsTranslation() != translation {
			flush()
			translation = line.IsTranslation()
		}
		run = append(run, line)
	}
	flush()
	return b.String()
}

// cell is one unbreakable unit of a row: a word or run of words with an
// optional chord above its first character.
type cell struct {
	chord string
	text  string
	width int
}

func (r *Renderer) block(lines []model.AlignedLine, translation bool) string {
	var cells []cell
	for _, line := range lines {
		chord, text := line.Chord, line.Text
		if translation {
			chord, text = line.TranslationChord, line.TranslationText
		}
		cells = append(cells, cellsFor(chord, text)...)
	}

	var b strings.Builder
	var row []cell
	used := 0
	for _, c := range cells {
		if len(row) > 0 && used+c.width > r.width {
			r.writeRow(&b, row, translation)
			row, used = row[:0], 0
		}
		row = append(row, c)
		used += c.width
	}
	if len(row) > 0 {
		r.writeRow(&b, row, translation)
	}
	return b.String()
}

// cellsFor splits text after each run of spaces so wrapping happens
// between words. The chord sits over the first word.
func cellsFor(chord, text *string) []cell {
	var words []string
	if text != nil {
		words = splitWords(*text)
	}
	if len(words) == 0 {
		words = []string{""}
	}

	cells := make([]cell, 0, len(words))
	for i, w := range words {
		c := cell{text: w, width: lipgloss.Width(w)}
		if i == 0 && chord != nil {
			c.chord = *chord
			c.width = max(c.width, lipgloss.Width(c.chord)+1)
		}
		if c.width == 0 {
			continue
		}
		cells = append(cells, c)
	}
	return cells
}

func splitWords(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			continue
		}
		end := i
		for end < len(s) && s[end] == ' ' {
			end++
		}
		out = append(out, s[start:end])
		start = end
		i = end - 1
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func (r *Renderer) writeRow(b *strings.Builder, row []cell, translation bool) {
	text := r.paint.lyric
	if translation {
		text = r.paint.translation
	}

	var chords, lyrics strings.Builder
	hasChord := false
	for _, c := range row {
		if c.chord != "" {
			hasChord = true
			chords.WriteString(r.paint.chord(c.chord))
		}
		chords.WriteString(strings.Repeat(" ", c.width-lipgloss.Width(c.chord)))

		trimmed := strings.TrimRight(c.text, " ")
		if trimmed != "" {
			lyrics.WriteString(text(trimmed))
		}
		lyrics.WriteString(strings.Repeat(" ", c.width-lipgloss.Width(trimmed)))
	}

	if hasChord {
		b.WriteString(strings.TrimRight(chords.String(), " "))
		b.WriteByte('\n')
	}
	if l := strings.TrimRight(lyrics.String(), " "); l != "" || !hasChord {
		b.WriteString(l)
		b.WriteByte('\n')
	}
}
