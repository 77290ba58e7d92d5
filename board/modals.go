package board

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/hylla/tavle/kanban"
)

// taskFormFields stores task-form field keys in display/update order.
var taskFormFields = []string{"title", "description", "priority", "type", "assignee", "labels", "estimate", "time_spent", "due"}

// task-form field indexes used throughout keyboard/update logic.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldType
	fieldAssignee
	fieldLabels
	fieldEstimate
	fieldTimeSpent
	fieldDue
)

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// startTaskForm opens the create form, or the edit form when a task is given.
func (m Model) startTaskForm(task *kanban.Task) (tea.Model, tea.Cmd) {
	m.formFocus = 0
	m.formInputs = []textinput.Model{
		newModalInput("", "task title (required)", "", 120),
		newModalInput("", "short description (markdown ok)", "", 500),
		newModalInput("", "lowest | low | medium | high | highest", "", 16),
		newModalInput("", "task | bug | story | epic", "", 16),
		newModalInput("", "assignee (optional)", "", 80),
		newModalInput("", "csv labels", "", 160),
		newModalInput("", "estimate hours", "", 8),
		newModalInput("", "time spent hours", "", 8),
		newModalInput("", "YYYY-MM-DD[THH:MM] or -", "", 32),
	}
	if task != nil {
		m.formInputs[fieldTitle].SetValue(task.Title)
		m.formInputs[fieldDescription].SetValue(task.Description)
		m.formInputs[fieldPriority].SetValue(string(task.Priority))
		m.formInputs[fieldType].SetValue(string(task.Type))
		m.formInputs[fieldAssignee].SetValue(task.Assignee)
		if len(task.Labels) > 0 {
			names := make([]string, 0, len(task.Labels))
			for _, label := range task.Labels {
				names = append(names, label.Name)
			}
			m.formInputs[fieldLabels].SetValue(strings.Join(names, ","))
		}
		if task.Estimate > 0 {
			m.formInputs[fieldEstimate].SetValue(formatHours(task.Estimate))
		}
		if task.TimeSpent > 0 {
			m.formInputs[fieldTimeSpent].SetValue(formatHours(task.TimeSpent))
		}
		if task.DueAt != nil {
			m.formInputs[fieldDue].SetValue(formatDueValue(task.DueAt))
		}
		m.mode = modeEditTask
		m.editingTaskID = task.ID
		m.status = "edit task"
	} else {
		m.mode = modeCreateTask
		m.editingTaskID = ""
		m.status = "new task"
	}
	return m, m.focusFormField(0)
}

// focusFormField focuses one form input.
func (m *Model) focusFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	idx = clamp(idx, 0, len(m.formInputs)-1)
	m.formFocus = idx
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	return m.formInputs[idx].Focus()
}

// openTaskDetail opens the detail view for a task in the unfiltered
// collection.
func (m Model) openTaskDetail(taskID string) (tea.Model, tea.Cmd) {
	if _, ok := m.taskByID(taskID); !ok {
		m.status = "task not found"
		return m, nil
	}
	m.mode = modeTaskDetail
	m.detailTaskID = taskID
	m.detailOverride = nil
	m.commentInput.SetValue("")
	m.commentInput.Blur()
	m.status = "task details"
	return m, nil
}

// detailTask returns the task shown in the detail view. An optimistic
// override from a pending update wins over the host collection until the
// host supplies fresh data.
func (m Model) detailTask() (kanban.Task, bool) {
	if m.detailOverride != nil && m.detailOverride.ID == m.detailTaskID {
		return *m.detailOverride, true
	}
	return m.taskByID(m.detailTaskID)
}

// handleInputModeKey routes keys while a modal surface is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeCreateTask, modeEditTask:
		return m.handleFormKey(msg)
	case modeTaskDetail:
		return m.handleDetailKey(msg)
	default:
		m.mode = modeNone
		return m, nil
	}
}

// handleSearchKey edits and applies the search text.
func (m Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.searchInput.Blur()
		m.status = "ready"
		return m, nil
	case "enter":
		m.filters.Search = strings.TrimSpace(m.searchInput.Value())
		m.mode = modeNone
		m.searchInput.Blur()
		if m.filters.Search == "" {
			m.status = "search cleared"
		} else {
			m.status = "search: " + m.filters.Search
		}
		m.clampSelections()
		return m, nil
	default:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
}

// handleFormKey edits the create/edit form.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeTaskForm("cancelled")
	case "enter", "ctrl+s":
		return m.submitTaskForm()
	case "tab", "down":
		return m, m.focusFormField((m.formFocus + 1) % len(m.formInputs))
	case "shift+tab", "up":
		return m, m.focusFormField((m.formFocus - 1 + len(m.formInputs)) % len(m.formInputs))
	default:
		var cmd tea.Cmd
		m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
		return m, cmd
	}
}

// closeTaskForm abandons the form. Editing returns to the detail view it
// came from.
func (m Model) closeTaskForm(status string) (tea.Model, tea.Cmd) {
	editing := m.mode == modeEditTask && m.editingTaskID != ""
	taskID := m.editingTaskID
	m.formInputs = nil
	m.editingTaskID = ""
	m.status = status
	m.mode = modeNone
	if editing {
		return m.openTaskDetail(taskID)
	}
	return m, nil
}

// taskFormValues returns trimmed form values keyed by field name.
func (m Model) taskFormValues() map[string]string {
	out := map[string]string{}
	for idx, field := range taskFormFields {
		if idx >= len(m.formInputs) {
			break
		}
		out[field] = strings.TrimSpace(m.formInputs[idx].Value())
	}
	return out
}

// submitTaskForm validates locally and forwards a fully-formed task to the
// host. Validation failures surface on the status line before any callback
// fires.
func (m Model) submitTaskForm() (tea.Model, tea.Cmd) {
	vals := m.taskFormValues()
	if vals["title"] == "" {
		m.status = "title is required"
		return m, nil
	}

	in := kanban.TaskInput{
		Title:       vals["title"],
		Description: vals["description"],
		Priority:    kanban.Priority(vals["priority"]),
		Type:        kanban.Type(vals["type"]),
		Assignee:    vals["assignee"],
		Labels:      parseLabelsInput(vals["labels"]),
	}
	var err error
	if in.Estimate, err = parseHoursInput(vals["estimate"]); err != nil {
		m.status = err.Error()
		return m, nil
	}
	if in.TimeSpent, err = parseHoursInput(vals["time_spent"]); err != nil {
		m.status = err.Error()
		return m, nil
	}
	if in.DueAt, err = parseDueInput(vals["due"]); err != nil {
		m.status = err.Error()
		return m, nil
	}

	now := time.Now()
	if m.mode == modeEditTask {
		base, ok := m.taskByID(m.editingTaskID)
		if !ok {
			return m.closeTaskForm("task no longer present")
		}
		in.Status = base.Status
		in.Assignee = vals["assignee"]
		updated, err := base.WithDetails(in, now)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.formInputs = nil
		m.editingTaskID = ""
		m.mode = modeTaskDetail
		m.detailTaskID = updated.ID
		m.detailOverride = &updated
		m.status = "update requested"
		return m, m.requestUpdate(updated)
	}

	// The creating modal assigns the id; the board core never does.
	in.ID = uuid.NewString()
	in.Status = m.createTargetStatus()
	in.Reporter = m.author
	task, err := kanban.NewTask(in, now)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.formInputs = nil
	m.mode = modeNone
	m.status = fmt.Sprintf("create requested: %s", truncate(task.Title, 32))
	return m, m.requestCreate(task)
}

// createTargetStatus places new tasks in the currently selected column.
func (m Model) createTargetStatus() kanban.Status {
	if len(m.columns) == 0 {
		return kanban.StatusTodo
	}
	return m.columns[clamp(m.selectedColumn, 0, len(m.columns)-1)].ID
}

// handleDetailKey drives the detail view. The comment input grabs keys only
// while focused.
func (m Model) handleDetailKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	task, ok := m.detailTask()
	if !ok {
		m.mode = modeNone
		m.detailTaskID = ""
		m.status = "task no longer present"
		return m, nil
	}

	if m.commentInput.Focused() {
		switch msg.String() {
		case "esc":
			m.commentInput.Blur()
			return m, nil
		case "enter":
			return m.submitComment(task)
		default:
			var cmd tea.Cmd
			m.commentInput, cmd = m.commentInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "esc", "q":
		m.mode = modeNone
		m.detailTaskID = ""
		m.detailOverride = nil
		m.status = "ready"
		return m, nil
	case "c":
		return m, m.commentInput.Focus()
	case "e":
		return m.startTaskForm(&task)
	case "d":
		cmd := m.requestDelete(task.ID)
		m.mode = modeNone
		m.detailTaskID = ""
		m.detailOverride = nil
		m.status = fmt.Sprintf("delete requested: %s", truncate(task.Title, 32))
		return m, cmd
	case "y":
		if err := clipboard.WriteAll(task.ID); err != nil {
			m.status = "copy failed: " + err.Error()
		} else {
			m.status = "copied " + task.ID
		}
		return m, nil
	default:
		return m, nil
	}
}

// submitComment appends a comment through the replacement contract: the full
// updated task goes to the host, and the open detail view reflects it
// optimistically until fresh data arrives.
func (m Model) submitComment(task kanban.Task) (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.commentInput.Value())
	if content == "" {
		m.commentInput.Blur()
		return m, nil
	}
	now := time.Now()
	comment, err := kanban.NewComment(uuid.NewString(), m.author, content, now)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	updated := task.WithComment(comment, now)
	m.detailOverride = &updated
	m.commentInput.SetValue("")
	m.commentInput.Blur()
	m.status = "comment added"
	return m, m.requestUpdate(updated)
}

// parseLabelsInput parses csv label names into labels keyed by their
// lowercased name.
func parseLabelsInput(raw string) []kanban.Label {
	if raw == "" || raw == "-" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]kanban.Label, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		out = append(out, kanban.Label{ID: strings.ToLower(name), Name: name})
	}
	return out
}

// parseHoursInput parses a non-negative hour count; empty means zero.
func parseHoursInput(raw string) (float64, error) {
	if raw == "" || raw == "-" {
		return 0, nil
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("hours must be a non-negative number")
	}
	return hours, nil
}

// parseDueInput parses input into a normalized form.
func parseDueInput(raw string) (*time.Time, error) {
	if raw == "" || raw == "-" {
		return nil, nil
	}
	layouts := []string{
		"2006-01-02",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			ts := parsed.UTC()
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("due date must be YYYY-MM-DD, YYYY-MM-DDTHH:MM, RFC3339, or -")
}

// formatDueValue formats due datetime values for compact display and editing.
func formatDueValue(dueAt *time.Time) string {
	if dueAt == nil {
		return "-"
	}
	due := dueAt.UTC()
	if due.Hour() == 0 && due.Minute() == 0 {
		return due.Format("2006-01-02")
	}
	return due.Format("2006-01-02 15:04")
}

// formatHours renders an hour count without a trailing zero fraction.
func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}
