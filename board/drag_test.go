package board

import (
	"testing"

	"github.com/hylla/tavle/kanban"
)

// TestResolveDropStatus verifies target-identity resolution order: column id
// first, then card id, then nothing.
func TestResolveDropStatus(t *testing.T) {
	tasks := fixtureCollection(t)
	columns := kanban.DefaultColumns()

	cases := []struct {
		name     string
		targetID string
		want     kanban.Status
		ok       bool
	}{
		{name: "column id", targetID: "in-progress", want: kanban.StatusInProgress, ok: true},
		{name: "card id resolves to its column", targetID: "t4", want: kanban.StatusDone, ok: true},
		{name: "unknown id", targetID: "nope", ok: false},
		{name: "empty id", targetID: "", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := resolveDropStatus(tc.targetID, tasks, columns)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("resolveDropStatus(%q) = %q, %v; want %q, %v", tc.targetID, got, ok, tc.want, tc.ok)
			}
		})
	}
}

// TestPlanMove verifies move planning, including same-column suppression.
func TestPlanMove(t *testing.T) {
	tasks := fixtureCollection(t)
	columns := kanban.DefaultColumns()
	dragged := tasks[0] // t1, todo

	req, ok := planMove(dragged, "done", tasks, columns)
	if !ok {
		t.Fatal("expected plan for cross-column drop")
	}
	if req.TaskID != "t1" || req.NewStatus != kanban.StatusDone || req.OldStatus != kanban.StatusTodo {
		t.Fatalf("unexpected request %+v", req)
	}

	// Dropping card t1 on card t3 is a move into t3's column.
	req, ok = planMove(dragged, "t3", tasks, columns)
	if !ok || req.NewStatus != kanban.StatusInProgress {
		t.Fatalf("drop on card: got %+v, %v", req, ok)
	}

	// Dropping onto a sibling card in the same column is a no-op.
	if _, ok := planMove(dragged, "t2", tasks, columns); ok {
		t.Fatal("same-column drop should be suppressed")
	}
	if _, ok := planMove(dragged, "todo", tasks, columns); ok {
		t.Fatal("own-column drop should be suppressed")
	}
	if _, ok := planMove(dragged, "nowhere", tasks, columns); ok {
		t.Fatal("unresolvable target should cancel")
	}
}

// TestDragPhases verifies the press/activate/reset lifecycle and the
// Chebyshev activation threshold.
func TestDragPhases(t *testing.T) {
	tasks := fixtureCollection(t)
	m := New().SetTasks(tasks)

	m.pressCard(tasks[0], 10, 8)
	if m.drag != dragPressed {
		t.Fatalf("expected pressed, got %v", m.drag)
	}

	m.trackMotion(11, 8)
	if m.drag != dragPressed {
		t.Fatal("one cell of travel must not activate a drag")
	}

	m.trackMotion(12, 8)
	if m.drag != dragActive {
		t.Fatal("two cells of travel must activate the drag")
	}
	if m.dragX != 12 || m.dragY != 8 {
		t.Fatalf("pointer cell not tracked: (%d,%d)", m.dragX, m.dragY)
	}

	m.resetDrag()
	if m.drag != dragIdle || m.dragTask.ID != "" {
		t.Fatal("reset must return the controller to idle")
	}
}

// TestDragDistance verifies the Chebyshev metric.
func TestDragDistance(t *testing.T) {
	cases := []struct {
		ox, oy, x, y, want int
	}{
		{0, 0, 0, 0, 0},
		{5, 5, 6, 5, 1},
		{5, 5, 5, 8, 3},
		{5, 5, 2, 7, 3},
		{5, 5, 9, 1, 4},
	}
	for _, tc := range cases {
		if got := dragDistance(tc.ox, tc.oy, tc.x, tc.y); got != tc.want {
			t.Fatalf("dragDistance(%d,%d → %d,%d) = %d, want %d", tc.ox, tc.oy, tc.x, tc.y, got, tc.want)
		}
	}
}

// TestCardIndexAtRow verifies row-to-card mapping with separator rows.
func TestCardIndexAtRow(t *testing.T) {
	tasks := fixtureCollection(t)[:3]

	cases := []struct {
		row  int
		idx  int
		on   bool
		what string
	}{
		{row: 0, idx: 0, on: true, what: "first card title line"},
		{row: 1, idx: 0, on: true, what: "first card meta line"},
		{row: 2, on: false, what: "separator"},
		{row: 3, idx: 1, on: true, what: "second card"},
		{row: 6, idx: 2, on: true, what: "third card"},
		{row: 8, on: false, what: "below the last card"},
		{row: -1, on: false, what: "above the card area"},
	}
	for _, tc := range cases {
		idx, on := cardIndexAtRow(tasks, tc.row)
		if on != tc.on || (on && idx != tc.idx) {
			t.Fatalf("%s: cardIndexAtRow(row %d) = %d, %v; want %d, %v", tc.what, tc.row, idx, on, tc.idx, tc.on)
		}
	}
	if _, on := cardIndexAtRow(nil, 0); on {
		t.Fatal("empty column has no cards to hit")
	}
}
