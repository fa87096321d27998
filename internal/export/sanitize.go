package export

import "strings"

var replacer = strings.NewReplacer(
	":", "_",
	"/", "_",
	"<", "_",
	">", "_",
	"'", "_",
	"\"", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
	"#", "sharp",
	" ", "_",
)

// MakeValid normalizes names into filesystem-safe filenames.
func MakeValid(name string) string {
	return replacer.Replace(strings.TrimSpace(name))
}
