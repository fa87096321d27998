package export

import "testing"

func TestMakeValid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "A:/<bad>|name?* with\\chars'", want: "A___bad__name___with_chars_"},
		{in: "  It Is Well  ", want: "It_Is_Well"},
		{in: "F#m", want: "Fsharpm"},
	}
	for _, tt := range tests {
		if got := MakeValid(tt.in); got != tt.want {
			t.Fatalf("MakeValid(%q): got %q want %q", tt.in, got, tt.want)
		}
	}
}
