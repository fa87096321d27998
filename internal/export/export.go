// Package export writes rendered songs to text files.
package export

import (
	"fmt"
	"path/filepath"

	"chordsheet/internal/atomicfile"
	"chordsheet/internal/model"
	"chordsheet/internal/render"
)

// Ext is the extension of exported files.
const Ext = ".txt"

// FileName returns the export file name for a song: its title and key
// made filesystem-safe.
func FileName(s model.Song) string {
	title := MakeValid(s.Title)
	if title == "" {
		title = "untitled"
	}
	if s.Key != "" {
		title += "_" + MakeValid(s.Key)
	}
	return title + Ext
}

// Write renders s with r and writes it atomically into dir. It returns
// the path written.
func Write(dir string, s model.Song, r *render.Renderer) (string, error) {
	path := filepath.Join(dir, FileName(s))
	if err := atomicfile.WriteFile(path, []byte(r.Song(s))); err != nil {
		return "", fmt.Errorf("export %q: %w", s.Title, err)
	}
	return path, nil
}
