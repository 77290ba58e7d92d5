package board

import "github.com/hylla/tavle/kanban"

// dragActivationDistance is the minimum pointer travel, in cells, before a
// press on a card is recognized as a drag rather than a click.
const dragActivationDistance = 2

// dragPhase tracks the interaction state between pointer press and release.
type dragPhase int

const (
	dragIdle dragPhase = iota
	// dragPressed: button down on a card, threshold not yet crossed. A
	// release in this phase is a click and opens the detail view.
	dragPressed
	dragActive
)

// moveRequest is the value object handed to the host's move callback.
type moveRequest struct {
	TaskID    string
	NewStatus kanban.Status
	OldStatus kanban.Status
}

// resolveDropStatus maps a drop-target identity to a candidate status.
// A configured column id wins outright; otherwise a task id resolves to that
// task's current status (drop-on-card is drop-on-that-card's-column). An
// identity matching neither resolves to nothing, which callers treat as a
// cancelled drag.
func resolveDropStatus(targetID string, tasks []kanban.Task, columns []kanban.Column) (kanban.Status, bool) {
	if targetID == "" {
		return "", false
	}
	if _, ok := kanban.ColumnByID(columns, kanban.Status(targetID)); ok {
		return kanban.Status(targetID), true
	}
	for _, task := range tasks {
		if task.ID == targetID {
			return task.Status, true
		}
	}
	return "", false
}

// planMove resolves a drop into a move request, suppressing no-op drops.
// The second return is false for an unresolvable target or a same-column
// drop; neither produces a callback.
func planMove(dragged kanban.Task, targetID string, tasks []kanban.Task, columns []kanban.Column) (moveRequest, bool) {
	target, ok := resolveDropStatus(targetID, tasks, columns)
	if !ok {
		return moveRequest{}, false
	}
	if target == dragged.Status {
		return moveRequest{}, false
	}
	return moveRequest{TaskID: dragged.ID, NewStatus: target, OldStatus: dragged.Status}, true
}

// dragDistance is the Chebyshev distance between press origin and the
// current pointer cell.
func dragDistance(originX, originY, x, y int) int {
	dx := x - originX
	if dx < 0 {
		dx = -dx
	}
	dy := y - originY
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// pressCard records a pointer press on a card and arms the controller.
func (m *Model) pressCard(task kanban.Task, x, y int) {
	m.drag = dragPressed
	m.dragTask = task
	m.dragOriginX = x
	m.dragOriginY = y
	m.dragX = x
	m.dragY = y
}

// trackMotion advances pressed → active once the pointer crosses the
// activation threshold, and keeps the pointer cell for overlay placement.
func (m *Model) trackMotion(x, y int) {
	if m.drag == dragIdle {
		return
	}
	m.dragX = x
	m.dragY = y
	if m.drag == dragPressed && dragDistance(m.dragOriginX, m.dragOriginY, x, y) >= dragActivationDistance {
		m.drag = dragActive
	}
}

// resetDrag returns the controller to idle.
func (m *Model) resetDrag() {
	m.drag = dragIdle
	m.dragTask = kanban.Task{}
}
