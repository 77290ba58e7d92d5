package board

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/exp/teatest/v2"
)

// quitHarness wraps the board so q ends the program, which the board itself
// never does.
type quitHarness struct {
	board Model
}

func (h quitHarness) Init() tea.Cmd {
	return h.board.Init()
}

func (h quitHarness) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "q" && h.board.mode == modeNone {
		return h, tea.Quit
	}
	updated, cmd := h.board.Update(msg)
	h.board = updated.(Model)
	return h, cmd
}

func (h quitHarness) View() tea.View {
	return h.board.View()
}

// TestBoardRendersWithTeatest verifies the full program loop renders the
// supplied collection.
func TestBoardRendersWithTeatest(t *testing.T) {
	m := New(WithStyle(Style{BoardTitle: "Sprint 12", ShowHeader: true, ShowStats: true}))
	m = m.SetTasks(fixtureCollection(t))

	tm := teatest.NewTestModel(t, quitHarness{board: m}, teatest.WithInitialTermSize(120, 40))
	t.Cleanup(func() {
		_ = tm.Quit()
	})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		s := string(out)
		return strings.Contains(s, "Sprint 12") && strings.Contains(s, "Fix login bug")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.KeyPressMsg{Code: 'q', Text: "q"})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

// TestBoardSearchFlowWithTeatest drives the search modal end to end.
func TestBoardSearchFlowWithTeatest(t *testing.T) {
	m := New()
	m = m.SetTasks(fixtureCollection(t))

	tm := teatest.NewTestModel(t, quitHarness{board: m}, teatest.WithInitialTermSize(120, 40))
	t.Cleanup(func() {
		_ = tm.Quit()
	})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), "Ship billing")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.KeyPressMsg{Code: '/', Text: "/"})
	for _, r := range "billing" {
		tm.Send(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	tm.Send(tea.KeyPressMsg{Code: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), "search: billing")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.KeyPressMsg{Code: 'q', Text: "q"})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}
