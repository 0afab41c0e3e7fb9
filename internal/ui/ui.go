package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"songcal/internal/calendar"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	ConfirmView
	ResultView
)

// SaveFunc persists the updated pin set once the user confirms.
type SaveFunc func(calendar.PinSet) error

// Model represents the pin-picker state.
type Model struct {
	view      ViewState
	mapping   calendar.Mapping
	dates     calendar.Dates
	targetDay int
	pins      calendar.PinSet
	save      SaveFunc

	width    int
	height   int
	songList list.Model
	selected *songItem
	saved    bool
	err      error
	help     help.Model
	keys     keyMap
}

type pinSavedMsg struct {
	err error
}

// NewModel creates a pin-picker for pinning one of the mapping's songs to
// targetDay. The pin set is copied; only save observes the result.
func NewModel(mapping calendar.Mapping, dates calendar.Dates, targetDay int, pins calendar.PinSet, save SaveFunc) *Model {
	items := make([]list.Item, 0, len(mapping))
	for _, day := range mapping.Days() {
		items = append(items, songItem{day: day, entry: mapping[calendar.DayKey(day)]})
	}

	songList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	songList.Title = fmt.Sprintf("Pin a song to %s", dates.Label(targetDay))

	return &Model{
		view:      SongListView,
		mapping:   mapping,
		dates:     dates,
		targetDay: targetDay,
		pins:      pins.Clone(),
		save:      save,
		songList:  songList,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleSongListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case pinSavedMsg:
		m.err = msg.err
		m.saved = msg.err == nil
		m.view = ResultView
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SongListView:
		return m.renderSongList()
	case ConfirmView:
		return m.renderConfirm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list's filter input is active, every key belongs to it.
	if m.songList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.songList, cmd = m.songList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			m.selected = &item
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.selected = nil
		m.view = SongListView
		return m, nil
	case "y":
		return m, m.savePin()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) savePin() tea.Cmd {
	pins := m.pins.Clone()
	pins[strconv.Itoa(m.targetDay)] = m.selected.entry.PID

	return func() tea.Msg {
		if err := m.save(pins); err != nil {
			return pinSavedMsg{err: err}
		}
		m.pins = pins
		return pinSavedMsg{}
	}
}

func (m *Model) renderSongList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.songList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Pin %s to %s?", m.selected.entry.Summary(), m.dates.Label(m.targetDay)))

	var note string
	if existing, ok := m.pins[strconv.Itoa(m.targetDay)]; ok {
		note = styles.warn.Render(fmt.Sprintf("\nReplaces the existing pin for this day (PID %s).", existing))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", title, note, helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Failed to save pin: %v\n\nPress q to quit", m.err))
	}
	return styles.ok.Render(fmt.Sprintf("✓ Pinned %s to %s\n\nPress q to quit",
		m.selected.entry.Summary(), m.dates.Label(m.targetDay)))
}
