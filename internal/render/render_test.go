package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chordsheet/internal/model"
)

var p = model.Ptr

func TestPlainSong(t *testing.T) {
	s := model.Song{
		Title: "Amazing Grace",
		Key:   "D",
		Sections: []model.Section{{
			Keyword: p("Verse"),
			Lines: []model.AlignedLine{
				{Chord: p("D"), Text: p("Amazing ")},
				{Chord: p("G"), Text: p("grace")},
			},
		}},
	}

	want := "Amazing Grace\nKey: D\n\n[Verse]\nD       G\nAmazing grace\n"
	if diff := cmp.Diff(want, Plain(40).Song(s)); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionLayouts(t *testing.T) {
	tests := []struct {
		name    string
		section model.Section
		want    string
	}{
		{
			name: "chord inside a word",
			section: model.Section{Lines: []model.AlignedLine{
				{Text: p("gr")},
				{Chord: p("G"), Text: p("ace")},
			}},
			want: "  G\ngrace\n",
		},
		{
			name: "wraps between words",
			section: model.Section{Lines: []model.AlignedLine{
				{Chord: p("C"), Text: p("How sweet the sound ")},
				{Chord: p("G"), Text: p("that saved a wretch like me")},
			}},
			want: "C\nHow sweet the sound\nG\nthat saved a wretch\nlike me\n",
		},
		{
			name: "stanza break",
			section: model.Section{Lines: []model.AlignedLine{
				{Chord: p("C"), Text: p("a")},
				{Comment: p("")},
				{Chord: p("G"), Text: p("b")},
			}},
			want: "C\na\n\nG\nb\n",
		},
		{
			name: "chord without text",
			section: model.Section{Keyword: p("Intro"), Lines: []model.AlignedLine{
				{Chord: p("C")},
				{Chord: p("G")},
			}},
			want: "[Intro]\nC G\n",
		},
		{
			name: "translation on its own rows",
			section: model.Section{Lines: []model.AlignedLine{
				{Chord: p("F"), Text: p("grace ")},
				{TranslationChord: p("F"), TranslationText: p("Gnade")},
			}},
			want: "F\ngrace\nF\nGnade\n",
		},
		{
			name: "long chord pads the lyric",
			section: model.Section{Lines: []model.AlignedLine{
				{Chord: p("Cmaj7"), Text: p("a")},
				{Chord: p("G"), Text: p("b")},
			}},
			want: "Cmaj7 G\na     b\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Plain(20).Section(tt.section)); diff != "" {
				t.Fatalf("render mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWidthIsClamped(t *testing.T) {
	if got := Plain(3).Width(); got != MinWidth {
		t.Fatalf("expected width %d, got %d", MinWidth, got)
	}
}

func TestColoredKeepsText(t *testing.T) {
	s := model.Song{
		Title:    "Doxology",
		Key:      "G",
		Sections: []model.Section{{Keyword: p("Amen"), Lines: []model.AlignedLine{{Chord: p("G"), Text: p("Praise God")}}}},
	}

	var buf bytes.Buffer
	if err := Colored(80).Write(&buf, s); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	for _, want := range []string{"Doxology", "Key: G", "Amen", "Praise God"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, buf.String())
		}
	}
}
