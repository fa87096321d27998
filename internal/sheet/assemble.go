package sheet

import (
	"iter"

	"chordsheet/internal/model"
)

// Assemble folds the flat token stream into sections. Each keyword opens
// a new section; tokens before the first keyword form an unnamed section
// that is only emitted when it has lines.
//
// Within a section a chord is held until the next text token and emitted
// with it as one aligned line; translation chords pair with translation
// text the same way, independently. A chord that meets another chord, a
// comment or the end of its section before any text is emitted on its own.
// Comments become stanza breaks; breaks at the start or end of a section
// are dropped.
func Assemble(tokens iter.Seq2[Token, error]) iter.Seq2[model.Section, error] {
	return func(yield func(model.Section, error) bool) {
		var a assembler
		for tok, err := range tokens {
			if err != nil {
				yield(model.Section{}, err)
				return
			}
			if tok.Kind == Keyword {
				if section, ok := a.close(); ok && !yield(section, nil) {
					return
				}
				a.open(tok.Text)
				continue
			}
			a.add(tok)
		}
		if section, ok := a.close(); ok {
			yield(section, nil)
		}
	}
}

// Sections collects Assemble's output.
func Sections(tokens iter.Seq2[Token, error]) ([]model.Section, error) {
	var out []model.Section
	for section, err := range Assemble(tokens) {
		if err != nil {
			return nil, err
		}
		out = append(out, section)
	}
	return out, nil
}

type assembler struct {
	section model.Section

	chord            *string
	translationChord *string
	breaks           []string
}

func (a *assembler) open(keyword string) {
	a.section = model.Section{Keyword: model.Ptr(keyword)}
}

func (a *assembler) add(tok Token) {
	text := tok.Text
	switch tok.Kind {
	case Chord:
		if a.chord != nil {
			a.emit(model.AlignedLine{Chord: a.chord})
		}
		a.chord = &text
	case TranslationChord:
		if a.translationChord != nil {
			a.emit(model.AlignedLine{TranslationChord: a.translationChord})
		}
		a.translationChord = &text
	case Text:
		a.emit(model.AlignedLine{Chord: a.chord, Text: &text})
		a.chord = nil
	case TranslationText:
		a.emit(model.AlignedLine{TranslationChord: a.translationChord, TranslationText: &text})
		a.translationChord = nil
	case Comment:
		a.flushChords()
		if len(a.section.Lines) > 0 {
			a.breaks = append(a.breaks, text)
		}
	}
}

func (a *assembler) flushChords() {
	if a.chord == nil && a.translationChord == nil {
		return
	}
	a.emit(model.AlignedLine{Chord: a.chord, TranslationChord: a.translationChord})
	a.chord, a.translationChord = nil, nil
}

func (a *assembler) emit(line model.AlignedLine) {
	for _, c := range a.breaks {
		a.section.Lines = append(a.section.Lines, model.AlignedLine{Comment: model.Ptr(c)})
	}
	a.breaks = a.breaks[:0]
	a.section.Lines = append(a.section.Lines, line)
}

func (a *assembler) close() (model.Section, bool) {
	a.flushChords()
	a.breaks = a.breaks[:0]

	section := a.section
	a.section = model.Section{}
	if section.Keyword == nil && len(section.Lines) == 0 {
		return model.Section{}, false
	}
	return section, true
}
