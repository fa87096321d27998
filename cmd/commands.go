package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chordsheet/internal/export"
	"chordsheet/internal/library"
	"chordsheet/internal/model"
	"chordsheet/internal/render"
	"chordsheet/internal/song"
	"chordsheet/internal/transpose"
	"chordsheet/internal/watch"
)

func showCmd(a *app) *cobra.Command {
	var key string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <song>",
		Short: "Print a song, transposed to --key or its preferred key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entry, err := a.resolve(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			s, err := a.lib.Load(ctx, entry.Name, a.targetKey(entry.Name, key))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			return a.renderer.Write(out, s)
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "transpose to this key")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed song as JSON")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the songs in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.lib.Index(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No songs found in %s\n", a.dir.Root())
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for i, e := range entries {
				rows = append(rows, a.entryRow(i+1, e))
			}
			fmt.Fprintln(cmd.OutOrStdout(), entryTable(rows, a.cfg.Color))
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rescan the library instead of using the index cache")
	return cmd
}

func searchCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find songs by fuzzy title match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.lib.Index(cmd.Context(), false)
			if err != nil {
				return err
			}
			matches := library.Search(entries, strings.Join(args, " "), limit)
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching songs.")
				return nil
			}

			rows := make([][]string, 0, len(matches))
			for i, m := range matches {
				rows = append(rows, a.entryRow(i+1, m.Entry))
			}
			fmt.Fprintln(cmd.OutOrStdout(), entryTable(rows, a.cfg.Color))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results (0 for all)")
	return cmd
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [song...]",
		Short: "Parse songs and report every one that fails",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entries, err := a.lib.Index(ctx, true)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				if entries, err = library.SelectByQuery(entries, strings.Join(args, ",")); err != nil {
					return err
				}
			}

			problems, err := a.lib.Check(ctx, entries)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(problems) == 0 {
				fmt.Fprintf(out, "All %d songs parsed cleanly\n", len(entries))
				return nil
			}

			for _, p := range problems {
				fmt.Fprintf(out, "FAIL %s: %v\n", p.Name, p.Err)
			}
			return fmt.Errorf("%d of %d songs failed to parse", len(problems), len(entries))
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	var (
		outDir string
		key    string
	)

	cmd := &cobra.Command{
		Use:   "export <song[,song...]|all>",
		Short: "Write rendered songs to text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entries, err := a.lib.Index(ctx, false)
			if err != nil {
				return err
			}
			selected, err := library.SelectByQuery(entries, strings.Join(args, ","))
			if err != nil {
				return err
			}
			return a.exportEntries(ctx, cmd.OutOrStdout(), selected, outDir, key)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "./export", "output directory")
	cmd.Flags().StringVarP(&key, "key", "k", "", "transpose every song to this key")
	return cmd
}

func (a *app) exportEntries(ctx context.Context, out io.Writer, entries []model.Entry, outDir, key string) error {
	// Exported files never carry terminal colors.
	plain := render.Plain(a.cfg.Width)

	var errs []error
	for _, e := range entries {
		s, err := a.lib.Load(ctx, e.Name, a.targetKey(e.Name, key))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		path, err := export.Write(outDir, s, plain)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return errors.Join(errs...)
}

func keyCmd(a *app) *cobra.Command {
	var clearKey bool

	cmd := &cobra.Command{
		Use:   "key <song> [key]",
		Short: "Show, set or clear a song's preferred key",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case clearKey:
				if err := a.keys.Clear(entry.Name); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: preferred key cleared\n", entry.Name)
			case len(args) == 2:
				if err := a.keys.SetKey(entry.Name, args[1]); err != nil {
					return err
				}
				k, _ := a.keys.Key(entry.Name)
				fmt.Fprintf(out, "%s: preferred key set to %s\n", entry.Name, k)
			default:
				declared := entry.Key
				if k, ok := a.keys.Key(entry.Name); ok {
					fmt.Fprintf(out, "%s: %s (declared %s, %s)\n", entry.Name, k, declared, shiftLabel(declared, k))
				} else {
					fmt.Fprintf(out, "%s: %s (declared)\n", entry.Name, declared)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearKey, "clear", false, "forget the preferred key")
	return cmd
}

func shiftLabel(from, to string) string {
	t, err := transpose.Keys(from, to)
	if err != nil {
		return "unknown shift"
	}
	switch n := t.Semitones(); n {
	case 0:
		return "no shift"
	case 1:
		return "up 1 semitone"
	default:
		return "up " + strconv.Itoa(n) + " semitones"
	}
}

func watchCmd(a *app) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "watch <song>",
		Short: "Re-render a song every time its file changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entry, err := a.resolve(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			path, err := a.dir.Path(entry.Name)
			if err != nil {
				return err
			}
			w, err := watch.New(path, watch.DefaultDebounce, a.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			target := a.targetKey(entry.Name, key)
			show := func() {
				// Read the file directly so edits are never served from a stale parse.
				text, err := a.dir.Read(ctx, entry.Name)
				if err == nil {
					var s model.Song
					s, err = song.Parse(text, song.Options{TargetKey: target, Strict: a.cfg.StrictDirectives})
					if err == nil {
						fmt.Fprint(out, "\x1b[H\x1b[2J")
						_ = a.renderer.Write(out, s)
						return
					}
				}
				a.logger.Errorf("%s: %v", entry.Name, err)
			}

			show()
			return w.Run(ctx, func(context.Context) { show() })
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "transpose to this key")
	return cmd
}

func (a *app) entryRow(n int, e model.Entry) []string {
	title := e.Title
	if e.Problem != "" {
		title = "! " + e.Problem
	}
	key := e.Key
	if k, ok := a.keys.Key(e.Name); ok && k != e.Key {
		key = fmt.Sprintf("%s → %s", e.Key, k)
	}
	modified := ""
	if !e.ModTime.IsZero() {
		modified = humanize.Time(e.ModTime)
	}
	return []string{
		strconv.Itoa(n),
		title,
		key,
		e.Name,
		humanize.Bytes(uint64(max(e.Size, 0))),
		modified,
	}
}

func entryTable(rows [][]string, color bool) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	border := lipgloss.NewStyle()
	if color {
		header = header.Foreground(lipgloss.Color("212"))
		border = border.Foreground(lipgloss.Color("240"))
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers("#", "Title", "Key", "File", "Size", "Modified").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}
