package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"chordsheet/internal/library"
	"chordsheet/internal/model"
	"chordsheet/internal/transpose"
)

const keepKeys = ""

func pickCmd(a *app) *cobra.Command {
	var (
		indexes string
		songs   string
		key     string
		outDir  string
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose songs interactively, then print or export them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entries, err := a.lib.Index(ctx, false)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				a.logger.Warnf("No songs in %s", a.dir.Root())
				return nil
			}

			var selected []model.Entry
			switch {
			case strings.TrimSpace(songs) != "":
				selected, err = library.SelectByQuery(entries, songs)
			case strings.TrimSpace(indexes) != "":
				var idx []int
				if idx, err = parseIndexes(indexes, len(entries)); err == nil {
					selected, err = entriesFromIndexes(entries, idx)
				}
			default:
				selected, err = chooseSongsInteractively(ctx, entries, a.keys, a.lib, a.renderer)
			}
			if err != nil {
				return fmt.Errorf("select songs: %w", err)
			}
			a.logger.Infof("Selected %d/%d songs", len(selected), len(entries))

			if !cmd.Flags().Changed("key") && isTerminal(os.Stdin) {
				if key, err = chooseTargetKey(); err != nil {
					return fmt.Errorf("choose key: %w", err)
				}
			}
			if key != keepKeys {
				if _, err := transpose.ParseKey(key); err != nil {
					return err
				}
			}

			if save && key != keepKeys {
				for _, e := range selected {
					if err := a.keys.SetKey(e.Name, key); err != nil {
						return err
					}
				}
			}

			if outDir != "" {
				return a.exportEntries(ctx, cmd.OutOrStdout(), selected, outDir, key)
			}

			out := cmd.OutOrStdout()
			for i, e := range selected {
				s, err := a.lib.Load(ctx, e.Name, a.targetKey(e.Name, key))
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := a.renderer.Write(out, s); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&indexes, "indexes", "", "1-based song numbers from 'list', e.g. 1,3-5 or all")
	cmd.Flags().StringVar(&songs, "songs", "", "comma-separated song titles or file names")
	cmd.Flags().StringVarP(&key, "key", "k", keepKeys, "transpose every song to this key")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "export to this directory instead of printing")
	cmd.Flags().BoolVar(&save, "save-key", false, "remember the chosen key for each song")
	return cmd
}

func chooseTargetKey() (string, error) {
	options := []huh.Option[string]{huh.NewOption("Keep each song's key", keepKeys)}
	for pitch := 0; pitch < 12; pitch++ {
		sharp := transpose.NoteName(pitch, false)
		flat := transpose.NoteName(pitch, true)
		switch {
		case sharp == flat:
			options = append(options, huh.NewOption(sharp, sharp))
		case flat == "Gb":
			options = append(options, huh.NewOption("F# / Gb", sharp))
		default:
			options = append(options, huh.NewOption(flat, flat))
		}
	}

	var key string
	err := huh.NewSelect[string]().
		Title("Transpose to").
		Options(options...).
		Value(&key).
		Run()
	return key, err
}

// parseIndexes turns "1,3-4" into sorted, de-duplicated 0-based indexes.
func parseIndexes(raw string, total int) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "all") {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	set := make(map[int]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi := part, part
		if a, b, ok := strings.Cut(part, "-"); ok {
			lo, hi = strings.TrimSpace(a), strings.TrimSpace(b)
		}
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid song index %q", part)
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid song index %q", part)
		}
		if start > end {
			start, end = end, start
		}
		if start < 1 || end > total {
			return nil, fmt.Errorf("song index %q out of range 1-%d", part, total)
		}
		for i := start; i <= end; i++ {
			set[i-1] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no song indexes provided")
	}
	return selectedIndexesFromSet(set), nil
}

func selectedIndexesFromSet(selected map[int]struct{}) []int {
	indexes := make([]int, 0, len(selected))
	for idx := range selected {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	return indexes
}

func entriesFromIndexes(entries []model.Entry, indexes []int) ([]model.Entry, error) {
	if len(indexes) == 0 {
		return nil, fmt.Errorf("no songs selected")
	}

	seen := make(map[int]struct{}, len(indexes))
	selected := make([]model.Entry, 0, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(entries) {
			return nil, fmt.Errorf("selected song index %d out of bounds", idx)
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		selected = append(selected, entries[idx])
	}
	return selected, nil
}

func buildSelectedSongsPreview(entries []model.Entry, selectedIndexes []int, maxItems int) string {
	if len(selectedIndexes) == 0 {
		return "No songs selected yet."
	}
	maxItems = max(maxItems, 1)

	var b strings.Builder
	fmt.Fprintf(&b, "Selected %d song(s):", len(selectedIndexes))

	shown := 0
	for _, idx := range selectedIndexes {
		if idx < 0 || idx >= len(entries) {
			continue
		}
		shown++
		e := entries[idx]
		fmt.Fprintf(&b, "\n%d. %s [%s]", shown, e.Title, e.Key)
		if shown >= maxItems {
			break
		}
	}

	if len(selectedIndexes) > shown {
		fmt.Fprintf(&b, "\n... and %d more", len(selectedIndexes)-shown)
	}
	return b.String()
}
