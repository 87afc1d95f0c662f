package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// State represents the current phase of the TUI model.
type State int

const (
	// StatePicking is the fuzzy file picker phase.
	StatePicking State = iota
	// StateDone means the TUI is finished and ready to quit.
	StateDone
)

// Model is the bubbletea model for the image file picker.
type Model struct {
	state     State
	list      list.Model
	marked    []string
	selection []string
	cancelled bool
	width     int
	height    int
	ready     bool
}

// NewPicker creates a new picker Model over the given files.
func NewPicker(files []FileItem) Model {
	items := make([]list.Item, len(files))
	for i, f := range files {
		items[i] = f
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select an image"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return Model{
		state: StatePicking,
		list:  l,
	}
}

// Init returns the initial command. The list handles its own init internally.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
		m.list.SetSize(wsm.Width, wsm.Height-2)
		m.ready = true

		return m, nil
	}

	if m.state != StatePicking {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		filtering := m.list.FilterState() == list.Filtering

		switch keyMsg.String() {
		case "ctrl+c":
			return m.cancel()

		case "esc":
			// Only quit on esc when not actively filtering.
			if !filtering {
				return m.cancel()
			}

		case " ":
			if !filtering {
				return m.toggleMark(), nil
			}

		case "enter":
			if !filtering {
				return m.confirm()
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m Model) cancel() (tea.Model, tea.Cmd) {
	m.cancelled = true
	m.selection = nil
	m.state = StateDone

	return m, tea.Quit
}

// toggleMark flips the mark on the highlighted file, keeping marks in the
// order they were made.
func (m Model) toggleMark() Model {
	item, ok := m.list.SelectedItem().(FileItem)
	if !ok {
		return m
	}

	item.marked = !item.marked
	m.list.SetItem(m.list.Index(), item)

	marked := make([]string, 0, len(m.marked)+1)
	for _, p := range m.marked {
		if p != item.path {
			marked = append(marked, p)
		}
	}

	if item.marked {
		marked = append(marked, item.path)
	}

	m.marked = marked

	return m
}

// confirm finishes with the marked files, or the highlighted one when
// nothing is marked. An empty list confirms an empty selection.
func (m Model) confirm() (tea.Model, tea.Cmd) {
	switch {
	case len(m.marked) > 0:
		m.selection = append([]string(nil), m.marked...)
	default:
		if item, ok := m.list.SelectedItem().(FileItem); ok {
			m.selection = []string{item.path}
		}
	}

	m.state = StateDone

	return m, tea.Quit
}

// View renders the current TUI state.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.state == StatePicking {
		return m.list.View()
	}

	return ""
}

// Selection returns the confirmed file paths in selection order. It is
// empty when cancelled.
func (m Model) Selection() []string { return m.selection }

// Marked returns the currently marked paths.
func (m Model) Marked() []string { return m.marked }

// Cancelled returns true if the user cancelled the picker.
func (m Model) Cancelled() bool { return m.cancelled }

// State returns the current picker state.
func (m Model) State() State { return m.state }
