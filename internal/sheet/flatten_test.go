package sheet

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chordsheet/internal/markup"
)

func collect(t *testing.T, seq func(func(Token, error) bool)) ([]Token, error) {
	t.Helper()
	var out []Token
	for tok, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, tok)
	}
	return out, nil
}

func TestFlatten(t *testing.T) {
	text := "{Verse 1}\n[C]Amazing [F]grace &Grace\n\n{broken\n[G]&[D]Gnade"

	got, err := collect(t, Flatten(markup.Lines(text)))
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	want := []Token{
		{Kind: Keyword, Text: "Verse 1", Line: 1},
		{Kind: Chord, Text: "C", Line: 2},
		{Kind: Text, Text: "Amazing ", Line: 2},
		{Kind: Chord, Text: "F", Line: 2},
		{Kind: Text, Text: "grace ", Line: 2},
		{Kind: TranslationText, Text: "Grace", Line: 2},
		{Kind: Comment, Line: 3},
		{Kind: Comment, Line: 4},
		{Kind: Chord, Text: "G", Line: 5},
		{Kind: TranslationChord, Text: "D", Line: 5},
		{Kind: TranslationText, Text: "Gnade", Line: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenUnterminatedChord(t *testing.T) {
	got, err := collect(t, Flatten(markup.Lines("[C]ok\n[C")))
	if !errors.Is(err, markup.ErrUnterminatedChordBracket) {
		t.Fatalf("expected unterminated chord error, got %v", err)
	}
	var lexErr *markup.LexError
	if !errors.As(err, &lexErr) || lexErr.Line != 2 {
		t.Fatalf("expected error on line 2, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected tokens of the first line before the error, got %+v", got)
	}
}

func TestFlattenUnterminatedChordInTranslation(t *testing.T) {
	_, err := FlattenLine(markup.Content("la &[G"))
	if !errors.Is(err, markup.ErrUnterminatedChordBracket) {
		t.Fatalf("expected unterminated chord error, got %v", err)
	}
}

func TestFlattenPreservesOrderAndCount(t *testing.T) {
	line := markup.Content("[C]a[D][E]b c[F]")
	got, err := FlattenLine(line)
	if err != nil {
		t.Fatalf("FlattenLine failed: %v", err)
	}
	kinds := make([]Kind, 0, len(got))
	for _, tok := range got {
		kinds = append(kinds, tok.Kind)
	}
	want := []Kind{Chord, Text, Chord, Text, Chord, Text, Chord}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestKindString(t *testing.T) {
	if TranslationChord.String() != "translation-chord" || Kind(99).String() != "unknown" {
		t.Fatalf("unexpected kind names: %s %s", TranslationChord, Kind(99))
	}
}
