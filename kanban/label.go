package kanban

import "strings"

// Label is a tag attached to a task. Identity is by ID; membership in a task
// is a small unique set.
type Label struct {
	ID    string
	Name  string
	Color string
}

// NormalizeLabels trims label fields and drops empty ids and duplicates by id,
// preserving first-seen order.
func NormalizeLabels(labels []Label) []Label {
	out := make([]Label, 0, len(labels))
	seen := map[string]struct{}{}
	for _, label := range labels {
		label.ID = strings.TrimSpace(label.ID)
		label.Name = strings.TrimSpace(label.Name)
		label.Color = strings.TrimSpace(label.Color)
		if label.ID == "" {
			continue
		}
		if _, ok := seen[label.ID]; ok {
			continue
		}
		seen[label.ID] = struct{}{}
		if label.Name == "" {
			label.Name = label.ID
		}
		out = append(out, label)
	}
	return out
}
