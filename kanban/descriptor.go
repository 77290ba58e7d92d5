package kanban

// Descriptor carries the display attributes for one enumerated variant.
// Color is an ANSI-256 terminal color code; renderers decide how to apply it.
type Descriptor struct {
	Label string
	Icon  string
	Color string
}

// Descriptor returns the display descriptor for the priority. Unknown values
// fall back to the medium descriptor so a stale collection still renders.
func (p Priority) Descriptor() Descriptor {
	switch p {
	case PriorityLowest:
		return Descriptor{Label: "Lowest", Icon: "⇊", Color: "244"}
	case PriorityLow:
		return Descriptor{Label: "Low", Icon: "↓", Color: "117"}
	case PriorityMedium:
		return Descriptor{Label: "Medium", Icon: "→", Color: "221"}
	case PriorityHigh:
		return Descriptor{Label: "High", Icon: "↑", Color: "208"}
	case PriorityHighest:
		return Descriptor{Label: "Highest", Icon: "⇈", Color: "203"}
	default:
		return Descriptor{Label: "Medium", Icon: "→", Color: "221"}
	}
}

// Descriptor returns the display descriptor for the task type.
func (t Type) Descriptor() Descriptor {
	switch t {
	case TypeBug:
		return Descriptor{Label: "Bug", Icon: "●", Color: "203"}
	case TypeStory:
		return Descriptor{Label: "Story", Icon: "▣", Color: "77"}
	case TypeEpic:
		return Descriptor{Label: "Epic", Icon: "◆", Color: "135"}
	case TypeTask:
		return Descriptor{Label: "Task", Icon: "■", Color: "75"}
	default:
		return Descriptor{Label: "Task", Icon: "■", Color: "75"}
	}
}
