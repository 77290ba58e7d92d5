package board

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	addTask       key.Binding
	taskInfo      key.Binding
	moveTaskLeft  key.Binding
	moveTaskRight key.Binding
	search        key.Binding
	cyclePriority key.Binding
	cycleType     key.Binding
	cycleAssignee key.Binding
	toggleView    key.Binding
	copyTaskID    key.Binding
	toggleHelp    key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		taskInfo:      key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "task details")),
		moveTaskLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move task left")),
		moveTaskRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move task right")),
		search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		cyclePriority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "filter priority")),
		cycleType:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "filter type")),
		cycleAssignee: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "filter assignee")),
		toggleView:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "board/list view")),
		copyTaskID:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task id")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.addTask, k.taskInfo, k.search, k.toggleView, k.toggleHelp}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.addTask, k.taskInfo, k.moveTaskLeft, k.moveTaskRight, k.copyTaskID},
		{k.search, k.cyclePriority, k.cycleType, k.cycleAssignee, k.toggleView},
	}
}
