package sheet

import (
	"iter"

	"chordsheet/internal/markup"
)

// Flatten expands classified lines into the flat token stream, in order.
// Directives become keywords carrying their value, content lines are
// lexed into chord and text tokens (translation segments into
// translation tokens), and blank or empty lines become empty comments
// that mark stanza breaks.
func Flatten(lines iter.Seq2[markup.Line, error]) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for line, err := range lines {
			if err != nil {
				yield(Token{}, err)
				return
			}
			tokens, err := FlattenLine(line)
			if err != nil {
				yield(Token{}, err)
				return
			}
			for _, tok := range tokens {
				if !yield(tok, nil) {
					return
				}
			}
		}
	}
}

// FlattenLine expands a single classified line.
func FlattenLine(line markup.Line) ([]Token, error) {
	switch line.Kind {
	case markup.DirectiveLine:
		return []Token{{Kind: Keyword, Text: line.Value, Line: line.Number}}, nil
	case markup.BlankLine:
		return []Token{{Kind: Comment, Line: line.Number}}, nil
	}

	if line.Text == "" {
		return []Token{{Kind: Comment, Line: line.Number}}, nil
	}

	segs, err := markup.LexLine(line.Text)
	if err != nil {
		return nil, markup.AtLine(err, line.Number)
	}

	tokens := make([]Token, 0, len(segs))
	for _, seg := range segs {
		switch seg.Kind {
		case markup.SegmentChord:
			tokens = append(tokens, Token{Kind: Chord, Text: seg.Text, Line: line.Number})
		case markup.SegmentText:
			tokens = append(tokens, Token{Kind: Text, Text: seg.Text, Line: line.Number})
		case markup.SegmentTranslation:
			sub, err := markup.LexTranslation(seg.Text)
			if err != nil {
				return nil, markup.AtLine(err, line.Number)
			}
			for _, s := range sub {
				kind := TranslationText
				if s.Kind == markup.SegmentChord {
					kind = TranslationChord
				}
				tokens = append(tokens, Token{Kind: kind, Text: s.Text, Line: line.Number})
			}
		}
	}
	return tokens, nil
}
