package kanban

import (
	"strings"
	"time"
)

// Task is the unit of work rendered on the board. The host owns the
// collection; the board never mutates a task in place, it only asks the host
// to replace one by passing a new value with the same id.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Type        Type
	Reporter    string
	Assignee    string
	Labels      []Label
	Comments    []Comment
	Estimate    float64
	TimeSpent   float64
	DueAt       *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskInput holds input values for task construction.
type TaskInput struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Type        Type
	Reporter    string
	Assignee    string
	Labels      []Label
	Estimate    float64
	TimeSpent   float64
	DueAt       *time.Time
}

// NewTask constructs a normalized task. The caller assigns the id; this
// package never generates one.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Status = Status(strings.TrimSpace(string(in.Status)))
	in.Reporter = strings.TrimSpace(in.Reporter)
	in.Assignee = strings.TrimSpace(in.Assignee)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return Task{}, ErrInvalidPriority
	}
	if in.Type == "" {
		in.Type = TypeTask
	}
	if !in.Type.Valid() {
		return Task{}, ErrInvalidType
	}
	if in.Estimate < 0 || in.TimeSpent < 0 {
		return Task{}, ErrInvalidHours
	}

	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Type:        in.Type,
		Reporter:    in.Reporter,
		Assignee:    in.Assignee,
		Labels:      NormalizeLabels(in.Labels),
		Comments:    []Comment{},
		Estimate:    in.Estimate,
		TimeSpent:   in.TimeSpent,
		DueAt:       normalizeDueAt(in.DueAt),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// WithStatus returns a copy of the task in the given status.
func (t Task) WithStatus(status Status, now time.Time) Task {
	out := t.clone()
	out.Status = status
	out.UpdatedAt = now.UTC()
	return out
}

// WithComment returns a copy of the task with the comment appended.
func (t Task) WithComment(comment Comment, now time.Time) Task {
	out := t.clone()
	out.Comments = append(out.Comments, comment)
	out.UpdatedAt = now.UTC()
	return out
}

// WithDetails returns a copy of the task with its editable fields replaced.
// Identity, comments, reporter, and creation time are preserved.
func (t Task) WithDetails(in TaskInput, now time.Time) (Task, error) {
	in.ID = t.ID
	if strings.TrimSpace(in.Reporter) == "" {
		in.Reporter = t.Reporter
	}
	updated, err := NewTask(in, now)
	if err != nil {
		return Task{}, err
	}
	updated.Comments = append([]Comment(nil), t.Comments...)
	updated.CreatedAt = t.CreatedAt
	return updated, nil
}

// clone copies the task including its owned slices.
func (t Task) clone() Task {
	out := t
	out.Labels = append([]Label(nil), t.Labels...)
	out.Comments = append([]Comment(nil), t.Comments...)
	if t.DueAt != nil {
		due := *t.DueAt
		out.DueAt = &due
	}
	return out
}

func normalizeDueAt(dueAt *time.Time) *time.Time {
	if dueAt == nil {
		return nil
	}
	ts := dueAt.UTC().Truncate(time.Second)
	return &ts
}
