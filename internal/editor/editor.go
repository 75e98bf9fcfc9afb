// Package editor provides the terminal level editor.
package editor

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuibeat/internal/generator"
	"github.com/verte-zerg/tuibeat/internal/level"
	"github.com/verte-zerg/tuibeat/internal/rhythm"
)

const (
	fieldBPM = iota
	fieldDuration
	fieldGap
	focusNotes
	focusCount
)

// fillCount is how many notes the random fill appends.
const fillCount = 8

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E1E1E")).Background(lipgloss.Color("#C89A3A")).Bold(true)
	laneAStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	laneBStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4D8BFF"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

type fileChangedMsg struct{}

type watchErrMsg struct {
	err error
}

// Options configures the editor.
type Options struct {
	// Path is where the level is saved. An existing file is loaded and watched.
	Path string
	Gen  *generator.Generator
}

// Model implements the Bubble Tea level editor.
type Model struct {
	path     string
	spec     level.Spec
	inputs   []textinput.Model
	focus    int
	selected int
	dirty    bool
	status   string
	errMsg   string

	gen     *generator.Generator
	watcher *Watcher
	keys    keyMap
	help    help.Model
	width   int
	height  int
}

// NewModel loads opts.Path when it exists and starts watching it.
func NewModel(opts Options) (*Model, error) {
	if opts.Gen == nil {
		opts.Gen = generator.New()
	}
	m := &Model{
		path: opts.Path,
		spec: level.New(),
		gen:  opts.Gen,
		keys: newKeyMap(),
		help: help.New(),
	}
	m.inputs = []textinput.Model{
		newFieldInput("BPM: "),
		newFieldInput("Note duration (ms): "),
		newFieldInput("Gap between notes (ms): "),
	}

	if _, err := os.Stat(opts.Path); err == nil {
		spec, err := level.Load(opts.Path)
		if err != nil {
			return nil, err
		}
		m.spec = spec
		w, err := NewWatcher(opts.Path)
		if err != nil {
			log.Printf("editor: watch disabled: %v", err)
		} else {
			m.watcher = w
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat level: %w", err)
	}
	m.syncInputs()
	m.setFocus(focusNotes)
	return m, nil
}

func newFieldInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 12
	input.Width = 12
	return input
}

// Close stops the file watcher.
func (m *Model) Close() error {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Close()
}

// Spec returns the level being edited, including uncommitted field text.
func (m *Model) Spec() level.Spec {
	spec := m.spec
	m.applyFields(&spec)
	return spec
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *Model) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	return func() tea.Msg {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
			return fileChangedMsg{}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case fileChangedMsg:
		if m.dirty {
			m.status = "file changed on disk; ctrl+r reloads and drops your edits"
		} else {
			m.reload()
		}
		return m, m.waitForChange()
	case watchErrMsg:
		log.Printf("editor: watch error: %v", msg.err)
		return m, m.waitForChange()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.Reload):
		m.reload()
		return nil
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % focusCount)
		return nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return nil
	}

	if m.focus != focusNotes {
		before := m.inputs[m.focus].Value()
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		if m.inputs[m.focus].Value() != before {
			m.dirty = true
		}
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.spec.Notes)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Add):
		m.selected = m.spec.Add()
		m.dirty = true
	case key.Matches(msg, m.keys.Remove):
		if err := m.spec.Remove(m.selected); err != nil {
			return nil
		}
		if m.selected >= len(m.spec.Notes) && m.selected > 0 {
			m.selected--
		}
		m.dirty = true
	case key.Matches(msg, m.keys.Direction):
		if m.spec.CycleDirection(m.selected) == nil {
			m.dirty = true
		}
	case key.Matches(msg, m.keys.Lane):
		if m.spec.CycleLane(m.selected) == nil {
			m.dirty = true
		}
	case key.Matches(msg, m.keys.Fill):
		for _, step := range m.gen.Steps(fillCount, false, false) {
			m.spec.Notes = append(m.spec.Notes, level.NoteSpec{Direction: step.Direction, Lane: step.Lane})
		}
		m.selected = len(m.spec.Notes) - 1
		m.dirty = true
	}
	return nil
}

func (m *Model) setFocus(focus int) {
	if m.focus != focusNotes && m.focus < len(m.inputs) {
		m.inputs[m.focus].Blur()
		m.applyFields(&m.spec)
		m.syncInputs()
	}
	m.focus = focus
	if focus != focusNotes {
		m.inputs[focus].Focus()
	}
	m.keys.setNotesFocused(focus == focusNotes)
}

// applyFields parses the numeric fields into spec. Text that is not a positive
// number falls back to the default.
func (m *Model) applyFields(spec *level.Spec) {
	spec.BPM = level.ParseField(m.inputs[fieldBPM].Value(), level.DefaultBPM)
	spec.NoteDuration = level.ParseField(m.inputs[fieldDuration].Value(), level.DefaultNoteDuration)
	spec.GapBetweenNotes = level.ParseField(m.inputs[fieldGap].Value(), level.DefaultGapBetweenNotes)
}

func (m *Model) syncInputs() {
	m.inputs[fieldBPM].SetValue(formatField(m.spec.BPM))
	m.inputs[fieldDuration].SetValue(formatField(m.spec.NoteDuration))
	m.inputs[fieldGap].SetValue(formatField(m.spec.GapBetweenNotes))
}

func formatField(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// save writes the level. The first save of a new file starts watching it and
// returns the command that waits for the first change.
func (m *Model) save() tea.Cmd {
	m.applyFields(&m.spec)
	m.syncInputs()
	if err := m.spec.Save(m.path); err != nil {
		m.errMsg = err.Error()
		log.Printf("editor: save failed: %v", err)
		return nil
	}
	m.dirty = false
	m.errMsg = ""
	m.status = fmt.Sprintf("saved %d notes to %s", len(m.spec.Notes), m.path)
	if m.watcher != nil {
		return nil
	}
	w, err := NewWatcher(m.path)
	if err != nil {
		log.Printf("editor: watch disabled: %v", err)
		return nil
	}
	m.watcher = w
	return m.waitForChange()
}

func (m *Model) reload() {
	spec, err := level.Load(m.path)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.spec = spec
	m.syncInputs()
	if m.selected >= len(spec.Notes) {
		m.selected = max(len(spec.Notes)-1, 0)
	}
	m.dirty = false
	m.errMsg = ""
	m.status = "reloaded " + m.path
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	title := "Level editor · " + m.path
	if m.dirty {
		title += " *"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	spec := m.Spec()
	b.WriteString(labelStyle.Render(fmt.Sprintf("\n%d notes · %.0f ms", len(spec.Notes), spec.Duration())))
	b.WriteString("\n")
	b.WriteString(m.renderNotes())
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) noteRows() int {
	rows := m.height - 12
	if rows < 5 {
		rows = 5
	}
	return rows
}

func (m *Model) renderNotes() string {
	if len(m.spec.Notes) == 0 {
		return labelStyle.Render("  no notes; press n to add one")
	}
	rows := m.noteRows()
	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	end := min(start+rows, len(m.spec.Notes))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		n := m.spec.Notes[i]
		line := fmt.Sprintf("%4d  %-5s", i+1, n.Direction)
		switch n.Lane {
		case rhythm.LaneA:
			line += " " + laneAStyle.Render("a")
		case rhythm.LaneB:
			line += " " + laneBStyle.Render("b")
		}
		if i == m.selected && m.focus == focusNotes {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
