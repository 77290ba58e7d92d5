package kanban

import "strings"

// Column is a display-only grouping key. The configured columns define the
// legal status values for a rendering session.
type Column struct {
	ID    Status
	Title string
}

// NewColumn constructs a column with trimmed identifiers.
func NewColumn(id Status, title string) (Column, error) {
	id = Status(strings.TrimSpace(string(id)))
	title = strings.TrimSpace(title)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if title == "" {
		title = string(id)
	}
	return Column{ID: id, Title: title}, nil
}

// DefaultColumns returns the default four-column board layout.
func DefaultColumns() []Column {
	return []Column{
		{ID: StatusTodo, Title: "To Do"},
		{ID: StatusInProgress, Title: "In Progress"},
		{ID: StatusInReview, Title: "In Review"},
		{ID: StatusDone, Title: "Done"},
	}
}

// ColumnByID looks a column up by its status id.
func ColumnByID(columns []Column, id Status) (Column, bool) {
	for _, column := range columns {
		if column.ID == id {
			return column, true
		}
	}
	return Column{}, false
}
