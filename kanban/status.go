package kanban

import "slices"

// Status identifies the column a task currently occupies. The set of legal
// values for a rendering session is defined by the configured columns, not by
// this package; the constants below only name the default four-column set.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusInReview   Status = "in-review"
	StatusDone       Status = "done"
)

// Priority is an ordered five-level scale.
type Priority string

const (
	PriorityLowest  Priority = "lowest"
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityHighest Priority = "highest"
)

// Priorities lists all priorities in ascending order.
var Priorities = []Priority{PriorityLowest, PriorityLow, PriorityMedium, PriorityHigh, PriorityHighest}

// Valid reports whether the priority is one of the five known levels.
func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// Rank returns the position of the priority in ascending order, -1 for
// unknown values.
func (p Priority) Rank() int {
	return slices.Index(Priorities, p)
}

// Type classifies a task as a work-item kind.
type Type string

const (
	TypeTask  Type = "task"
	TypeBug   Type = "bug"
	TypeStory Type = "story"
	TypeEpic  Type = "epic"
)

// Types lists all task types.
var Types = []Type{TypeTask, TypeBug, TypeStory, TypeEpic}

// Valid reports whether the type is one of the known kinds.
func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}
