package board

import (
	"strings"

	"github.com/hylla/tavle/kanban"
)

// Filter selector values with special meaning. An empty selector behaves
// like FilterAll so the zero Filters value passes everything.
const (
	FilterAll        = "all"
	FilterUnassigned = "unassigned"
)

// Filters holds the transient filter/search selections applied to the
// host-supplied collection before grouping.
type Filters struct {
	Search   string
	Priority string
	Type     string
	Assignee string
}

// active reports whether a selector narrows the collection.
func selectorActive(v string) bool {
	return v != "" && v != FilterAll
}

// AssigneeOptions returns the distinct non-empty assignees across the
// collection, in arbitrary order. Rendering may sort independently.
func AssigneeOptions(tasks []kanban.Task) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, task := range tasks {
		assignee := strings.TrimSpace(task.Assignee)
		if assignee == "" {
			continue
		}
		if _, ok := seen[assignee]; ok {
			continue
		}
		seen[assignee] = struct{}{}
		out = append(out, assignee)
	}
	return out
}

// FilterTasks returns the order-preserving subsequence of tasks passing every
// active predicate. Disabled features bypass their predicates entirely.
func FilterTasks(tasks []kanban.Task, filters Filters, features Features) []kanban.Task {
	out := make([]kanban.Task, 0, len(tasks))
	search := strings.ToLower(strings.TrimSpace(filters.Search))
	for _, task := range tasks {
		if features.EnableSearch && search != "" && !matchesSearch(task, search) {
			continue
		}
		if features.EnableFilters {
			if selectorActive(filters.Priority) && string(task.Priority) != filters.Priority {
				continue
			}
			if selectorActive(filters.Type) && string(task.Type) != filters.Type {
				continue
			}
			if selectorActive(filters.Assignee) && !matchesAssignee(task, filters.Assignee) {
				continue
			}
		}
		out = append(out, task)
	}
	return out
}

// matchesSearch reports a case-insensitive substring match against title,
// description, or id. The query is already lowercased.
func matchesSearch(task kanban.Task, query string) bool {
	return strings.Contains(strings.ToLower(task.Title), query) ||
		strings.Contains(strings.ToLower(task.Description), query) ||
		strings.Contains(strings.ToLower(task.ID), query)
}

func matchesAssignee(task kanban.Task, selector string) bool {
	if selector == FilterUnassigned {
		return strings.TrimSpace(task.Assignee) == ""
	}
	return task.Assignee == selector
}

// GroupByStatus groups tasks by column id. Every configured column key is
// present in the result, possibly empty. A task whose status matches no
// configured column is silently excluded from all groups.
func GroupByStatus(tasks []kanban.Task, columns []kanban.Column) map[kanban.Status][]kanban.Task {
	groups := make(map[kanban.Status][]kanban.Task, len(columns))
	for _, column := range columns {
		groups[column.ID] = []kanban.Task{}
	}
	for _, task := range tasks {
		if _, ok := groups[task.Status]; !ok {
			continue
		}
		groups[task.Status] = append(groups[task.Status], task)
	}
	return groups
}
