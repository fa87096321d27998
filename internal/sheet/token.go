package sheet

// Kind tags the variant held by a Token.
type Kind int

const (
	Keyword Kind = iota
	Chord
	Text
	TranslationChord
	TranslationText
	Comment
)

var kindNames = [...]string{
	Keyword:          "keyword",
	Chord:            "chord",
	Text:             "text",
	TranslationChord: "translation-chord",
	TranslationText:  "translation-text",
	Comment:          "comment",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Token is one element of the flat song stream. Line is the source line
// the token came from.
type Token struct {
	Kind Kind
	Text string
	Line int
}
