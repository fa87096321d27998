package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"chordsheet/internal/library"
	"chordsheet/internal/model"
	"chordsheet/internal/render"
	"chordsheet/internal/state"
	"chordsheet/internal/transpose"
)

const (
	songListHeight    = 12
	previewPageHeight = 20
)

type pickerPhase int

const (
	pickerPhaseSelect pickerPhase = iota
	pickerPhaseReview
	pickerPhaseDetail
)

type songPreviewLoadedMsg struct {
	songIdx int
	key     string
	preview []string
	err     error
}

type songPickerModel struct {
	ctx      context.Context
	lib      *library.Library
	renderer *render.Renderer
	entries  []model.Entry
	selected map[int]struct{}

	preferred map[int]string
	filtered  []int
	cursor    int

	filterInput textinput.Model
	filtering   bool

	phase        pickerPhase
	reviewCursor int

	detailSongIdx int
	detailShift   int
	detailKey     string
	detailLines   []string
	detailErr     string
	detailLoading bool
	detailOffset  int

	previewCache map[string][]string

	done    bool
	aborted bool
}

func chooseSongsInteractively(
	ctx context.Context,
	entries []model.Entry,
	store *state.Store,
	lib *library.Library,
	renderer *render.Renderer,
) ([]model.Entry, error) {
	if !isTerminal(os.Stdin) {
		return nil, fmt.Errorf("interactive selection requires a terminal; use --indexes or --songs instead")
	}

	picker := newSongPickerModel(ctx, entries, store, lib, renderer)
	finalModel, err := tea.NewProgram(picker, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("run interactive song selector: %w", err)
	}

	final := finalModel.(*songPickerModel)
	if final.aborted {
		return nil, fmt.Errorf("interactive selection aborted")
	}

	return entriesFromIndexes(entries, selectedIndexesFromSet(final.selected))
}

func newSongPickerModel(
	ctx context.Context,
	entries []model.Entry,
	store *state.Store,
	lib *library.Library,
	renderer *render.Renderer,
) *songPickerModel {
	filter := textinput.New()
	filter.Prompt = "/"

	preferred := make(map[int]string, len(entries))
	if store != nil {
		for i, e := range entries {
			if k, ok := store.Key(e.Name); ok {
				preferred[i] = k
			}
		}
	}

	m := &songPickerModel{
		ctx:          ctx,
		lib:          lib,
		renderer:     renderer,
		entries:      entries,
		selected:     make(map[int]struct{}),
		preferred:    preferred,
		filterInput:  filter,
		phase:        pickerPhaseSelect,
		previewCache: make(map[string][]string),
	}
	m.rebuildFiltered()
	return m
}

func (m *songPickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *songPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case songPreviewLoadedMsg:
		if msg.err == nil {
			m.previewCache[previewCacheKey(msg.songIdx, msg.key)] = msg.preview
		}
		if m.phase == pickerPhaseDetail && m.detailSongIdx == msg.songIdx && m.detailKey == msg.key {
			m.detailLoading = false
			if msg.err != nil {
				m.detailErr = msg.err.Error()
				m.detailLines = nil
			} else {
				m.detailErr = ""
				m.detailLines = msg.preview
			}
			m.detailOffset = 0
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.aborted = true
			return m, tea.Quit
		}

		switch m.phase {
		case pickerPhaseSelect:
			return m.updateSelect(msg)
		case pickerPhaseReview:
			return m.updateReview(msg)
		case pickerPhaseDetail:
			return m.updateDetail(msg)
		}
	}

	return m, nil
}

func (m *songPickerModel) View() string {
	switch m.phase {
	case pickerPhaseReview:
		return m.reviewView()
	case pickerPhaseDetail:
		return m.detailView()
	default:
		return m.selectionView()
	}
}

func (m *songPickerModel) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "enter", "esc":
			m.filtering = false
			m.filterInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.rebuildFiltered()
			return m, cmd
		}
	}

	switch msg.String() {
	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, nil
	case "esc":
		if strings.TrimSpace(m.filterInput.Value()) != "" {
			m.filterInput.SetValue("")
			m.rebuildFiltered()
		}
	case "up", "k":
		if len(m.filtered) > 0 && m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if len(m.filtered) > 0 && m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "ctrl+u", "pgup":
		if len(m.filtered) > 0 {
			m.cursor = max(0, m.cursor-max(1, songListHeight/2))
		}
	case "ctrl+d", "pgdown":
		if len(m.filtered) > 0 {
			m.cursor = min(len(m.filtered)-1, m.cursor+max(1, songListHeight/2))
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		}
	case "x", " ":
		if idx, ok := m.currentSongIndex(); ok {
			m.toggleSelection(idx)
		}
	case "ctrl+a":
		m.toggleSelectAllFiltered()
	case "d", "right", "l":
		return m.showCurrentSongPreview()
	case "enter":
		m.phase = pickerPhaseReview
		m.reviewCursor = 0
	}

	return m, nil
}

func (m *songPickerModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.reviewCursor > 0 {
			m.reviewCursor--
		}
	case "down", "j":
		if m.reviewCursor < 1 {
			m.reviewCursor++
		}
	case "b", "esc":
		m.phase = pickerPhaseSelect
	case "s":
		if len(m.selected) > 0 {
			m.done = true
			return m, tea.Quit
		}
	case "enter":
		if m.reviewCursor == 0 {
			if len(m.selected) == 0 {
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		}
		m.phase = pickerPhaseSelect
	}

	return m, nil
}

func (m *songPickerModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "b", "esc", "q", "left", "h":
		m.phase = pickerPhaseSelect
		m.detailLoading = false
		return m, nil
	case "x", " ":
		if m.detailSongIdx >= 0 && m.detailSongIdx < len(m.entries) {
			m.toggleSelection(m.detailSongIdx)
		}
		return m, nil
	case "n":
		return m.moveDetail(1)
	case "p":
		return m.moveDetail(-1)
	case "+", "=":
		return m.openSongPreview(m.detailSongIdx, m.detailShift+1)
	case "-", "_":
		return m.openSongPreview(m.detailSongIdx, m.detailShift-1)
	case "0":
		return m.openSongPreview(m.detailSongIdx, 0)
	}

	if m.detailLoading {
		return m, nil
	}

	maxOffset := max(0, len(m.detailLines)-previewPageHeight)
	switch msg.String() {
	case "up", "k":
		if m.detailOffset > 0 {
			m.detailOffset--
		}
	case "down", "j":
		if m.detailOffset < maxOffset {
			m.detailOffset++
		}
	case "ctrl+u", "pgup":
		m.detailOffset = max(0, m.detailOffset-max(1, previewPageHeight/2))
	case "ctrl+d", "pgdown":
		m.detailOffset = min(maxOffset, m.detailOffset+max(1, previewPageHeight/2))
	}

	return m, nil
}

func (m *songPickerModel) rebuildFiltered() {
	query := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	m.filtered = m.filtered[:0]

	for idx, e := range m.entries {
		if query == "" ||
			strings.Contains(strings.ToLower(e.Title), query) ||
			strings.Contains(strings.ToLower(e.Name), query) {
			m.filtered = append(m.filtered, idx)
		}
	}

	if len(m.filtered) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = max(0, min(m.cursor, len(m.filtered)-1))
}

func (m *songPickerModel) currentSongIndex() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return 0, false
	}
	return m.filtered[m.cursor], true
}

func (m *songPickerModel) toggleSelection(idx int) {
	if _, exists := m.selected[idx]; exists {
		delete(m.selected, idx)
		return
	}
	m.selected[idx] = struct{}{}
}

func (m *songPickerModel) toggleSelectAllFiltered() {
	if len(m.filtered) == 0 {
		return
	}

	allSelected := true
	for _, idx := range m.filtered {
		if _, ok := m.selected[idx]; !ok {
			allSelected = false
			break
		}
	}

	for _, idx := range m.filtered {
		if allSelected {
			delete(m.selected, idx)
		} else {
			m.selected[idx] = struct{}{}
		}
	}
}

func (m *songPickerModel) moveDetail(step int) (tea.Model, tea.Cmd) {
	if len(m.filtered) == 0 || step == 0 {
		return m, nil
	}

	pos := 0
	for i, idx := range m.filtered {
		if idx == m.detailSongIdx {
			pos = i
			break
		}
	}

	nextPos := max(0, min(len(m.filtered)-1, pos+step))
	m.cursor = nextPos
	return m.openSongPreview(m.filtered[nextPos], 0)
}

func (m *songPickerModel) showCurrentSongPreview() (tea.Model, tea.Cmd) {
	idx, ok := m.currentSongIndex()
	if !ok {
		return m, nil
	}
	return m.openSongPreview(idx, 0)
}

// openSongPreview shows a song shifted shift semitones away from its
// starting key: the preferred key when one is stored, else the declared key.
func (m *songPickerModel) openSongPreview(idx, shift int) (tea.Model, tea.Cmd) {
	if idx < 0 || idx >= len(m.entries) {
		return m, nil
	}

	m.phase = pickerPhaseDetail
	m.detailSongIdx = idx
	m.detailShift = shift
	m.detailOffset = 0
	m.detailKey = shiftedKey(m.startKey(idx), shift)

	if lines, ok := m.previewCache[previewCacheKey(idx, m.detailKey)]; ok {
		m.detailLoading = false
		m.detailLines = lines
		m.detailErr = ""
		return m, nil
	}

	if m.lib == nil {
		m.detailLoading = false
		m.detailLines = nil
		m.detailErr = "song library is unavailable"
		return m, nil
	}

	m.detailLoading = true
	m.detailLines = nil
	m.detailErr = ""
	return m, loadSongPreviewCmd(m.ctx, m.lib, m.renderer, m.entries[idx].Name, m.detailKey, idx)
}

func (m *songPickerModel) startKey(idx int) string {
	if k, ok := m.preferred[idx]; ok {
		return k
	}
	return m.entries[idx].Key
}

// shiftedKey names the key shift semitones above key, spelled the way the
// starting key is. Invalid keys are returned as they were.
func shiftedKey(key string, shift int) string {
	k, err := transpose.ParseKey(key)
	if err != nil || shift == 0 {
		return key
	}
	name := transpose.NoteName(k.Pitch()+shift, k.PrefersFlats())
	if k.Minor {
		name += "m"
	}
	return name
}

func previewCacheKey(idx int, key string) string {
	return fmt.Sprintf("%d\x00%s", idx, key)
}

func loadSongPreviewCmd(
	ctx context.Context,
	lib *library.Library,
	renderer *render.Renderer,
	name, key string,
	songIdx int,
) tea.Cmd {
	return func() tea.Msg {
		s, err := lib.Load(ctx, name, key)
		if err != nil {
			return songPreviewLoadedMsg{songIdx: songIdx, key: key, err: err}
		}
		text := strings.TrimRight(renderer.Song(s), "\n")
		return songPreviewLoadedMsg{songIdx: songIdx, key: key, preview: strings.Split(text, "\n")}
	}
}

func (m *songPickerModel) selectionView() string {
	lines := []string{
		fmt.Sprintf("Select songs (%d total, %d selected)", len(m.entries), len(m.selected)),
	}

	if m.filtering {
		lines = append(lines,
			"Filter mode: type a title or file name, then Enter or Esc to apply.",
			m.filterInput.View(),
		)
	} else if q := strings.TrimSpace(m.filterInput.Value()); q != "" {
		lines = append(lines, fmt.Sprintf("Active filter: /%s (press / to edit, Esc to clear)", q))
	} else {
		lines = append(lines, "Filter: press / to search by title or file name")
	}

	lines = append(lines, "")
	if len(m.filtered) == 0 {
		lines = append(lines, "No songs match the current filter.")
	} else {
		start, end := listWindow(len(m.filtered), m.cursor, songListHeight)
		for pos := start; pos < end; pos++ {
			songIdx := m.filtered[pos]
			cursor := " "
			if pos == m.cursor {
				cursor = ">"
			}
			checked := " "
			if _, ok := m.selected[songIdx]; ok {
				checked = "x"
			}
			lines = append(lines, fmt.Sprintf("%s [%s] %s", cursor, checked, songOptionLabel(songIdx+1, m.entries[songIdx], m.preferred[songIdx])))
		}
		if end < len(m.filtered) {
			lines = append(lines, fmt.Sprintf("... %d more song(s)", len(m.filtered)-end))
		}
	}

	lines = append(lines, "")
	if m.filtering {
		lines = append(lines, "Keys: type filter | Enter/Esc apply | Ctrl+C exit")
	} else {
		lines = append(lines, "Keys: j/k move | x toggle | Ctrl+A select all | / filter | d preview | Enter review | Ctrl+C exit")
	}

	return strings.Join(lines, "\n")
}

func songOptionLabel(n int, e model.Entry, preferred string) string {
	title := e.Title
	if title == "" {
		title = e.Name
	}
	key := e.Key
	if preferred != "" && preferred != e.Key {
		key = fmt.Sprintf("%s → %s", e.Key, preferred)
	}
	label := fmt.Sprintf("%3d. %s [%s]", n, title, key)
	if e.Problem != "" {
		label += " (unreadable: " + e.Problem + ")"
	}
	return label
}

func (m *songPickerModel) reviewView() string {
	selectedIndexes := selectedIndexesFromSet(m.selected)
	preview := buildSelectedSongsPreview(m.entries, selectedIndexes, 8)

	startLabel := "Continue"
	if len(selectedIndexes) == 0 {
		startLabel = "Continue (select at least one song)"
	}
	options := []string{startLabel, "Back to selection"}

	lines := []string{
		"Review selected songs",
		preview,
		"",
	}
	for i, option := range options {
		cursor := " "
		if i == m.reviewCursor {
			cursor = ">"
		}
		lines = append(lines, fmt.Sprintf("%s %s", cursor, option))
	}
	lines = append(lines, "", "Keys: j/k move | Enter choose | b back")

	return strings.Join(lines, "\n")
}

func (m *songPickerModel) detailView() string {
	if m.detailSongIdx < 0 || m.detailSongIdx >= len(m.entries) {
		return "Song preview unavailable. Press Esc to go back."
	}

	e := m.entries[m.detailSongIdx]
	status := "not selected"
	if _, ok := m.selected[m.detailSongIdx]; ok {
		status = "selected"
	}

	lines := []string{
		fmt.Sprintf("Preview: %s", e.Name),
		fmt.Sprintf("Declared key: %s | Showing: %s | %s", e.Key, m.detailKey, status),
		"",
	}
	footer := "Keys: j/k scroll | +/- transpose | 0 reset | n/p next/prev song | x toggle | Esc back"

	if m.detailLoading {
		lines = append(lines, "Loading song...", "", footer)
		return strings.Join(lines, "\n")
	}
	if m.detailErr != "" {
		lines = append(lines, fmt.Sprintf("Failed to load song: %s", m.detailErr), "", footer)
		return strings.Join(lines, "\n")
	}

	end := min(len(m.detailLines), m.detailOffset+previewPageHeight)
	lines = append(lines, m.detailLines[m.detailOffset:end]...)
	if end < len(m.detailLines) {
		lines = append(lines, fmt.Sprintf("... %d more line(s)", len(m.detailLines)-end))
	}

	lines = append(lines, "", footer)
	return strings.Join(lines, "\n")
}

func listWindow(total, cursor, size int) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	if size <= 0 || total <= size {
		return 0, total
	}

	start := max(0, cursor-size/2)
	if start+size > total {
		start = total - size
	}
	return start, start + size
}
