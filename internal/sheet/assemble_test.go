package sheet

import (
	"errors"
	"iter"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chordsheet/internal/markup"
	"chordsheet/internal/model"
)

var p = model.Ptr

func tokens(toks ...Token) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for _, tok := range toks {
			if !yield(tok, nil) {
				return
			}
		}
	}
}

func tok(kind Kind, text string) Token {
	return Token{Kind: kind, Text: text}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name  string
		input []Token
		want  []model.Section
	}{
		{
			name:  "empty stream",
			input: nil,
			want:  nil,
		},
		{
			name: "chords pair with following text",
			input: []Token{
				tok(Keyword, "Verse"),
				tok(Chord, "D"), tok(Text, "Amazing "),
				tok(Chord, "G"), tok(Text, "grace"),
			},
			want: []model.Section{{
				Keyword: p("Verse"),
				Lines: []model.AlignedLine{
					{Chord: p("D"), Text: p("Amazing ")},
					{Chord: p("G"), Text: p("grace")},
				},
			}},
		},
		{
			name:  "content before first keyword",
			input: []Token{tok(Text, "intro"), tok(Keyword, "Chorus"), tok(Text, "sing")},
			want: []model.Section{
				{Lines: []model.AlignedLine{{Text: p("intro")}}},
				{Keyword: p("Chorus"), Lines: []model.AlignedLine{{Text: p("sing")}}},
			},
		},
		{
			name:  "keyword without content is kept",
			input: []Token{tok(Keyword, "Intro"), tok(Keyword, "Verse"), tok(Text, "x")},
			want: []model.Section{
				{Keyword: p("Intro")},
				{Keyword: p("Verse"), Lines: []model.AlignedLine{{Text: p("x")}}},
			},
		},
		{
			name:  "translation text without translation chord",
			input: []Token{tok(Chord, "F"), tok(Text, "grace "), tok(TranslationText, "Grace")},
			want: []model.Section{{Lines: []model.AlignedLine{
				{Chord: p("F"), Text: p("grace ")},
				{TranslationText: p("Grace")},
			}}},
		},
		{
			name: "lyric and translation chords buffer independently",
			input: []Token{
				tok(Chord, "G"), tok(TranslationChord, "D"),
				tok(TranslationText, "Gnade"), tok(Text, "grace"),
			},
			want: []model.Section{{Lines: []model.AlignedLine{
				{TranslationChord: p("D"), TranslationText: p("Gnade")},
				{Chord: p("G"), Text: p("grace")},
			}}},
		},
		{
			name:  "consecutive chords flush the earlier one",
			input: []Token{tok(Chord, "C"), tok(Chord, "F"), tok(Text, "x")},
			want: []model.Section{{Lines: []model.AlignedLine{
				{Chord: p("C")},
				{Chord: p("F"), Text: p("x")},
			}}},
		},
		{
			name:  "trailing chord at section end",
			input: []Token{tok(Keyword, "Outro"), tok(Text, "end "), tok(Chord, "C"), tok(Keyword, "Tag")},
			want: []model.Section{
				{Keyword: p("Outro"), Lines: []model.AlignedLine{{Text: p("end ")}, {Chord: p("C")}}},
				{Keyword: p("Tag")},
			},
		},
		{
			name:  "trailing chord at stream end",
			input: []Token{tok(Text, "end "), tok(Chord, "G"), tok(TranslationChord, "D")},
			want: []model.Section{{Lines: []model.AlignedLine{
				{Text: p("end ")},
				{Chord: p("G"), TranslationChord: p("D")},
			}}},
		},
		{
			name: "comments become inner stanza breaks only",
			input: []Token{
				tok(Comment, ""), tok(Keyword, "Verse"), tok(Comment, ""),
				tok(Text, "one"), tok(Comment, ""), tok(Text, "two"),
				tok(Comment, ""), tok(Comment, ""), tok(Keyword, "Chorus"), tok(Text, "three"),
			},
			want: []model.Section{
				{Keyword: p("Verse"), Lines: []model.AlignedLine{
					{Text: p("one")},
					{Comment: p("")},
					{Text: p("two")},
				}},
				{Keyword: p("Chorus"), Lines: []model.AlignedLine{{Text: p("three")}}},
			},
		},
		{
			name:  "comment flushes a pending chord before the break",
			input: []Token{tok(Text, "a"), tok(Chord, "G"), tok(Comment, ""), tok(Chord, "C"), tok(Text, "b")},
			want: []model.Section{{Lines: []model.AlignedLine{
				{Text: p("a")},
				{Chord: p("G")},
				{Comment: p("")},
				{Chord: p("C"), Text: p("b")},
			}}},
		},
		{
			name:  "empty text keeps adjacent chords aligned",
			input: []Token{tok(Chord, "C"), tok(Text, ""), tok(Chord, "F"), tok(Text, "grace")},
			want: []model.Section{{Lines: []model.AlignedLine{
				{Chord: p("C"), Text: p("")},
				{Chord: p("F"), Text: p("grace")},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sections(tokens(tt.input...))
			if err != nil {
				t.Fatalf("Sections failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Sections mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssemblePropagatesErrors(t *testing.T) {
	_, err := Sections(Flatten(markup.Lines("{Verse}\n[C]la\n[G")))
	if !errors.Is(err, markup.ErrUnterminatedChordBracket) {
		t.Fatalf("expected unterminated chord error, got %v", err)
	}
}

func TestAssembleYieldsAtLeastOneLinePerContentLine(t *testing.T) {
	lines := []string{"[C]", "text", "&trans", "[C]a[F]b&[G]c", "[C][F]"}
	for _, l := range lines {
		sections, err := Sections(Flatten(markup.Lines(l)))
		if err != nil {
			t.Fatalf("Sections(%q) failed: %v", l, err)
		}
		if len(sections) != 1 || len(sections[0].Lines) < 1 {
			t.Fatalf("Sections(%q) = %+v, want at least one line", l, sections)
		}
	}
}

func TestAssembleStopsWhenConsumerStops(t *testing.T) {
	input := tokens(tok(Keyword, "A"), tok(Text, "a"), tok(Keyword, "B"), tok(Text, "b"), tok(Keyword, "C"))
	count := 0
	for _, err := range Assemble(input) {
		if err != nil {
			t.Fatalf("Assemble failed: %v", err)
		}
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected a single section before stopping, got %d", count)
	}
}
