package board

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/tavle/kanban"
)

// Op identifies one host-callback operation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpMove   Op = "move"
)

// OpResultMsg reports completion of one host callback. Hosts embedding the
// board observe it in their own Update to decide when to reload and re-supply
// the collection; the board itself only surfaces failures and never mutates
// its input on completion. Completions are not guaranteed to arrive in
// invocation order.
type OpResultMsg struct {
	Op     Op
	TaskID string
	Err    error
}

// requestMove invokes the host move callback for a resolved drop. A nil
// callback makes the gesture visually snap back once the host re-renders;
// there is nothing to invoke.
func (m Model) requestMove(req moveRequest) tea.Cmd {
	fn := m.onTaskMove
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		err := fn(context.Background(), req.TaskID, req.NewStatus, req.OldStatus)
		return OpResultMsg{Op: OpMove, TaskID: req.TaskID, Err: err}
	}
}

// requestCreate forwards a fully-populated task to the host. The new task
// appears only once the host includes it in the next collection.
func (m Model) requestCreate(task kanban.Task) tea.Cmd {
	fn := m.onTaskCreate
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		err := fn(context.Background(), task)
		return OpResultMsg{Op: OpCreate, TaskID: task.ID, Err: err}
	}
}

// requestUpdate forwards a full replacement task to the host.
func (m Model) requestUpdate(task kanban.Task) tea.Cmd {
	fn := m.onTaskUpdate
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		err := fn(context.Background(), task)
		return OpResultMsg{Op: OpUpdate, TaskID: task.ID, Err: err}
	}
}

// requestDelete forwards the id to the host. No local removal happens here.
func (m Model) requestDelete(taskID string) tea.Cmd {
	fn := m.onTaskDelete
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		err := fn(context.Background(), taskID)
		return OpResultMsg{Op: OpDelete, TaskID: taskID, Err: err}
	}
}
