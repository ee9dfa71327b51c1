package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scoates/vagranttop/internal/models"
	"github.com/scoates/vagranttop/internal/poll"
)

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func TestSortKeyTogglesDirection(t *testing.T) {
	m := NewModel(nil, time.Second)
	if m.sortBy != sortByCPU || !m.sortDescending {
		t.Fatalf("default sort state = %v desc=%v", m.sortBy, m.sortDescending)
	}

	m, _ = update(t, m, keyPress('c'))
	if m.sortBy != sortByCPU || m.sortDescending {
		t.Fatalf("same-key press should flip direction, got desc=%v", m.sortDescending)
	}
	m, _ = update(t, m, keyPress('c'))
	if !m.sortDescending {
		t.Fatal("second same-key press should restore original direction")
	}
}

func TestNewSortKeyResetsDescending(t *testing.T) {
	m := NewModel(nil, time.Second)
	m, _ = update(t, m, keyPress('c')) // now ascending
	m, _ = update(t, m, keyPress('n'))
	if m.sortBy != sortByVMName || !m.sortDescending {
		t.Fatalf("new column should reset to descending; got %v desc=%v", m.sortBy, m.sortDescending)
	}
}

func TestSortKeyReordersCurrentEntries(t *testing.T) {
	m := NewModel(nil, time.Second)
	m.entries = sampleEntries()
	m, _ = update(t, m, keyPress('p'))
	if m.entries[0].PID != 40 {
		t.Fatalf("entries not re-sorted on key press; head PID = %d", m.entries[0].PID)
	}
}

func TestQuitKeyStopsLoop(t *testing.T) {
	m := NewModel(nil, time.Second)
	_, cmd := update(t, m, keyPress('q'))
	if cmd == nil {
		t.Fatal("quit should produce a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", cmd())
	}
}

func TestPollResultSchedulesNextCycle(t *testing.T) {
	m := NewModel(nil, 10*time.Millisecond)
	result := &poll.Result{
		Entries:  sampleEntries(),
		Statuses: models.StatusHistogram{"running": 2},
		Total:    2,
		System:   &models.SystemStats{},
	}
	m, cmd := update(t, m, pollMsg{result: result})
	if !m.polled {
		t.Fatal("pollMsg should mark the first snapshot as rendered")
	}
	if cmd == nil {
		t.Fatal("pollMsg should schedule the next tick")
	}
	if m.entries[0].CPUPercent == nil || *m.entries[0].CPUPercent != 92.1 {
		t.Fatalf("entries should arrive sorted by CPU descending; head = %+v", m.entries[0])
	}
}

func TestFatalPollErrorQuits(t *testing.T) {
	m := NewModel(nil, time.Second)
	boom := &testError{"inventory unavailable: vagrant: exit status 1"}
	m, cmd := update(t, m, pollErrMsg{err: boom})
	if m.Err() == nil {
		t.Fatal("fatal error should be retained for main to report")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", cmd())
	}
}

type testError struct{ s string }

func (e *testError) Error() string { return e.s }
