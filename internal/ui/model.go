package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scoates/vagranttop/internal/models"
	"github.com/scoates/vagranttop/internal/poll"
)

// Model owns the display state and drives the poll cycle: the first poll
// runs immediately on startup, each completed poll renders and schedules
// the next tick, and each tick starts the next poll. Polls therefore never
// overlap, and a quit between tick and poll stops the loop before another
// cycle starts.
type Model struct {
	poller   *poll.Poller
	interval time.Duration

	entries  []models.ProcessEntry
	statuses models.StatusHistogram
	total    int
	sys      *models.SystemStats

	sortBy         sortColumn
	sortDescending bool

	fatal  error
	polled bool
	width  int
	height int
	keys   keyMap
}

type keyMap struct {
	Quit       key.Binding
	SortCPU    key.Binding
	SortMem    key.Binding
	SortTime   key.Binding
	SortPID    key.Binding
	SortVMDir  key.Binding
	SortVMName key.Binding
	SortVMID   key.Binding
}

func NewModel(poller *poll.Poller, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second
	}
	return Model{
		poller:         poller,
		interval:       interval,
		sortBy:         sortByCPU,
		sortDescending: true,
		keys: keyMap{
			Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
			SortCPU:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "sort by CPU%")),
			SortMem:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "sort by MEM%")),
			SortTime:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sort by TIME+")),
			SortPID:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "sort by PID")),
			SortVMDir:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "sort by VM dir")),
			SortVMName: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "sort by VM name")),
			SortVMID:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "sort by VM id")),
		},
	}
}

// Err reports the failure that terminated the loop, if any. main prints it
// after the program has left the alt screen.
func (m Model) Err() error {
	return m.fatal
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), tea.EnterAltScreen)
}

type pollMsg struct{ result *poll.Result }

type pollErrMsg struct{ err error }

type tickMsg time.Time

func (m Model) pollCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := m.poller.Cycle(context.Background())
		if err != nil {
			return pollErrMsg{err: err}
		}
		return pollMsg{result: result}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, tea.ClearScreen

	case tickMsg:
		return m, m.pollCmd()

	case pollMsg:
		m.entries = msg.result.Entries
		m.statuses = msg.result.Statuses
		m.total = msg.result.Total
		m.sys = msg.result.System
		m.polled = true
		sortEntries(m.entries, m.sortBy, m.sortDescending)
		return m, m.tick()

	case pollErrMsg:
		// inventory/snapshot failures are fatal; there is no cached fallback
		m.fatal = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.SortCPU):
			m.selectSort(sortByCPU)
		case key.Matches(msg, m.keys.SortMem):
			m.selectSort(sortByMem)
		case key.Matches(msg, m.keys.SortTime):
			m.selectSort(sortByTime)
		case key.Matches(msg, m.keys.SortPID):
			m.selectSort(sortByPID)
		case key.Matches(msg, m.keys.SortVMDir):
			m.selectSort(sortByVMDir)
		case key.Matches(msg, m.keys.SortVMName):
			m.selectSort(sortByVMName)
		case key.Matches(msg, m.keys.SortVMID):
			m.selectSort(sortByVMID)
		}
		return m, nil
	}

	return m, nil
}

// selectSort applies a sort key press: pressing the active column's key
// flips the direction, a new column starts descending.
func (m *Model) selectSort(col sortColumn) {
	if m.sortBy == col {
		m.sortDescending = !m.sortDescending
	} else {
		m.sortBy = col
		m.sortDescending = true
	}
	sortEntries(m.entries, m.sortBy, m.sortDescending)
}
