// Package board provides a controlled kanban board component for Bubble Tea.
// The host owns the authoritative task collection and supplies it on every
// change; the board owns only transient interaction state (drag, filters,
// open modal) and reports intended mutations through host callbacks.
package board

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/tavle/kanban"
)

// inputMode represents a selectable mode.
type inputMode int

const (
	modeNone inputMode = iota
	modeSearch
	modeCreateTask
	modeEditTask
	modeTaskDetail
)

// viewMode selects the main rendering surface.
type viewMode int

const (
	viewBoard viewMode = iota
	viewList
)

// Model is the controlled board component. Construct with New, feed it the
// host collection through SetTasks, and route every tea.Msg through Update.
type Model struct {
	columns []kanban.Column
	tasks   []kanban.Task

	features Features
	style    Style
	author   string

	onTaskCreate CreateFunc
	onTaskUpdate UpdateFunc
	onTaskDelete DeleteFunc
	onTaskMove   MoveFunc

	renderCard   CardRenderFunc
	renderHeader HeaderRenderFunc

	ready  bool
	width  int
	height int
	status string

	keys keyMap
	help help.Model

	view    viewMode
	filters Filters

	selectedColumn int
	selectedTask   int

	mode        inputMode
	searchInput textinput.Model

	formInputs    []textinput.Model
	formFocus     int
	editingTaskID string

	detailTaskID   string
	detailOverride *kanban.Task
	commentInput   textinput.Model

	drag        dragPhase
	dragTask    kanban.Task
	dragOriginX int
	dragOriginY int
	dragX       int
	dragY       int

	markdown markdownRenderer
}

// New constructs a board with the default four columns, all features
// enabled, and no callbacks wired.
func New(opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	searchInput := textinput.New()
	searchInput.Prompt = "/ "
	searchInput.Placeholder = "title, description, id"
	searchInput.CharLimit = 120
	commentInput := textinput.New()
	commentInput.Prompt = "> "
	commentInput.Placeholder = "add a comment, enter to submit"
	commentInput.CharLimit = 500
	m := Model{
		columns:      kanban.DefaultColumns(),
		features:     DefaultFeatures(),
		style:        DefaultStyle(),
		author:       "tavle-user",
		status:       "ready",
		keys:         newKeyMap(),
		help:         h,
		searchInput:  searchInput,
		commentInput: commentInput,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// SetTasks replaces the rendered collection. This is the only way task data
// enters the board; the board never mutates what it is given.
func (m Model) SetTasks(tasks []kanban.Task) Model {
	m.tasks = append([]kanban.Task(nil), tasks...)
	m.detailOverride = nil
	if m.detailTaskID != "" {
		if _, ok := m.taskByID(m.detailTaskID); !ok && m.mode == modeTaskDetail {
			m.mode = modeNone
			m.detailTaskID = ""
			m.status = "task no longer present"
		}
	}
	m.clampSelections()
	return m
}

// InputActive reports whether a modal surface (search, form, detail) is
// capturing keys. Hosts use it to keep their own bindings out of the way.
func (m Model) InputActive() bool {
	return m.mode != modeNone
}

// Tasks returns a copy of the currently rendered collection.
func (m Model) Tasks() []kanban.Task {
	return append([]kanban.Task(nil), m.tasks...)
}

// Columns returns the configured columns.
func (m Model) Columns() []kanban.Column {
	return append([]kanban.Column(nil), m.columns...)
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case OpResultMsg:
		if msg.Err != nil {
			// No local rollback: the board stays consistent with whatever
			// collection the host currently supplies.
			m.status = fmt.Sprintf("%s failed: %v", msg.Op, msg.Err)
			return m, nil
		}
		m.status = fmt.Sprintf("%s requested", msg.Op)
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		m.trackMotion(msg.X, msg.Y)
		return m, nil

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// handleNormalModeKey handles keys while no modal is open.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}
		if m.filtersNarrowed() {
			m.filters = Filters{}
			m.status = "filters cleared"
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.moveDown):
		if tasks := m.currentColumnTasks(); m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
		return m, nil

	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil

	case key.Matches(msg, m.keys.search):
		if !m.features.EnableSearch {
			return m, nil
		}
		return m.startSearchMode()

	case key.Matches(msg, m.keys.cyclePriority):
		if !m.features.EnableFilters {
			return m, nil
		}
		m.filters.Priority = nextOption(priorityFilterOptions(), m.filters.Priority)
		m.status = "priority: " + m.filters.Priority
		return m, nil

	case key.Matches(msg, m.keys.cycleType):
		if !m.features.EnableFilters {
			return m, nil
		}
		m.filters.Type = nextOption(typeFilterOptions(), m.filters.Type)
		m.status = "type: " + m.filters.Type
		return m, nil

	case key.Matches(msg, m.keys.cycleAssignee):
		if !m.features.EnableFilters {
			return m, nil
		}
		m.filters.Assignee = nextOption(m.assigneeFilterOptions(), m.filters.Assignee)
		m.status = "assignee: " + m.filters.Assignee
		return m, nil

	case key.Matches(msg, m.keys.toggleView):
		if !m.features.EnableViewToggle {
			return m, nil
		}
		if m.view == viewBoard {
			m.view = viewList
			m.status = "list view"
		} else {
			m.view = viewBoard
			m.status = "board view"
		}
		return m, nil

	case key.Matches(msg, m.keys.addTask):
		if !m.features.EnableCreateTask {
			return m, nil
		}
		return m.startTaskForm(nil)

	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m.openTaskDetail(task.ID)

	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.moveSelectedTask(-1)

	case key.Matches(msg, m.keys.moveTaskRight):
		return m.moveSelectedTask(1)

	case key.Matches(msg, m.keys.copyTaskID):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if err := clipboard.WriteAll(task.ID); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied " + task.ID
		return m, nil

	default:
		return m, nil
	}
}

// moveSelectedTask requests a keyboard move to the adjacent column. It goes
// through the same planning as a drop so no-op moves stay suppressed.
func (m Model) moveSelectedTask(direction int) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	target := m.selectedColumn + direction
	if target < 0 || target >= len(m.columns) {
		return m, nil
	}
	req, ok := planMove(task, string(m.columns[target].ID), m.tasks, m.columns)
	if !ok {
		return m, nil
	}
	m.status = fmt.Sprintf("moving %q to %s", truncate(task.Title, 24), m.columns[target].Title)
	return m, m.requestMove(req)
}

// handleMouseClick arms the drag controller when the press lands on a card.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.view != viewBoard || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if idx, ok := m.columnIndexAt(msg.X); ok {
		m.selectedColumn = idx
	}
	card, ok := m.cardAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	// The drag captures the task from the unfiltered collection; a card that
	// no longer resolves leaves the controller idle.
	task, ok := m.taskByID(card.ID)
	if !ok {
		return m, nil
	}
	m.focusTaskByID(task.ID)
	m.pressCard(task, msg.X, msg.Y)
	return m, nil
}

// handleMouseRelease completes the gesture: a click opens the detail view,
// an activated drag resolves its drop target, anything else is a cancel.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	switch m.drag {
	case dragPressed:
		taskID := m.dragTask.ID
		m.resetDrag()
		return m.openTaskDetail(taskID)

	case dragActive:
		dragged := m.dragTask
		m.resetDrag()
		targetID := m.dropTargetAt(msg.X, msg.Y)
		req, ok := planMove(dragged, targetID, m.tasks, m.columns)
		if !ok {
			// Unresolvable or same-column target: a cancelled drag, not an
			// error.
			return m, nil
		}
		if column, found := kanban.ColumnByID(m.columns, req.NewStatus); found {
			m.status = fmt.Sprintf("moving %q to %s", truncate(dragged.Title, 24), column.Title)
		}
		return m, m.requestMove(req)

	default:
		return m, nil
	}
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.view != viewBoard {
		return m, nil
	}
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		if m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
	}
	return m, nil
}

// startSearchMode starts search mode.
func (m Model) startSearchMode() (tea.Model, tea.Cmd) {
	m.mode = modeSearch
	m.searchInput.SetValue(m.filters.Search)
	m.searchInput.CursorEnd()
	m.status = "search"
	return m, m.searchInput.Focus()
}

// visibleTasks applies the active filters to the host collection.
func (m Model) visibleTasks() []kanban.Task {
	return FilterTasks(m.tasks, m.filters, m.features)
}

// grouped returns the filtered collection grouped by configured column.
func (m Model) grouped() map[kanban.Status][]kanban.Task {
	return GroupByStatus(m.visibleTasks(), m.columns)
}

// currentColumnTasks returns the visible tasks of the selected column.
func (m Model) currentColumnTasks() []kanban.Task {
	if len(m.columns) == 0 {
		return nil
	}
	idx := clamp(m.selectedColumn, 0, len(m.columns)-1)
	return m.grouped()[m.columns[idx].ID]
}

// selectedTaskInCurrentColumn returns the highlighted task, if any.
func (m Model) selectedTaskInCurrentColumn() (kanban.Task, bool) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return kanban.Task{}, false
	}
	return tasks[clamp(m.selectedTask, 0, len(tasks)-1)], true
}

// taskByID looks a task up in the unfiltered collection.
func (m Model) taskByID(id string) (kanban.Task, bool) {
	for _, task := range m.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return kanban.Task{}, false
}

// focusTaskByID moves the keyboard selection to the given task when visible.
func (m *Model) focusTaskByID(id string) {
	grouped := m.grouped()
	for colIdx, column := range m.columns {
		for taskIdx, task := range grouped[column.ID] {
			if task.ID == id {
				m.selectedColumn = colIdx
				m.selectedTask = taskIdx
				return
			}
		}
	}
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	if len(m.columns) == 0 {
		m.selectedColumn = 0
		m.selectedTask = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.columns)-1)
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		m.selectedTask = 0
		return
	}
	m.selectedTask = clamp(m.selectedTask, 0, len(tasks)-1)
}

// filtersNarrowed reports whether any filter or search narrows the view.
func (m Model) filtersNarrowed() bool {
	return strings.TrimSpace(m.filters.Search) != "" ||
		selectorActive(m.filters.Priority) ||
		selectorActive(m.filters.Type) ||
		selectorActive(m.filters.Assignee)
}

// priorityFilterOptions returns the priority selector cycle.
func priorityFilterOptions() []string {
	out := make([]string, 0, len(kanban.Priorities)+1)
	out = append(out, FilterAll)
	for _, p := range kanban.Priorities {
		out = append(out, string(p))
	}
	return out
}

// typeFilterOptions returns the type selector cycle.
func typeFilterOptions() []string {
	out := make([]string, 0, len(kanban.Types)+1)
	out = append(out, FilterAll)
	for _, t := range kanban.Types {
		out = append(out, string(t))
	}
	return out
}

// assigneeFilterOptions returns the assignee selector cycle, sorted for a
// stable cycling order.
func (m Model) assigneeFilterOptions() []string {
	assignees := AssigneeOptions(m.tasks)
	slices.Sort(assignees)
	out := make([]string, 0, len(assignees)+2)
	out = append(out, FilterAll, FilterUnassigned)
	return append(out, assignees...)
}

// nextOption advances a selector through its cycle; unknown and empty values
// restart at the first option's successor.
func nextOption(options []string, current string) string {
	if len(options) == 0 {
		return FilterAll
	}
	idx := slices.Index(options, current)
	if idx < 0 {
		idx = 0
	}
	return options[(idx+1)%len(options)]
}
