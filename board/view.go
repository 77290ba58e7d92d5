package board

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/tavle/kanban"
)

var (
	accentColor = lipgloss.Color("62")
	mutedColor  = lipgloss.Color("241")
	dimColor    = lipgloss.Color("239")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	statusStyle   = lipgloss.NewStyle().Foreground(dimColor)
	colTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(mutedColor)
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// View handles view.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	sections := make([]string, 0, 8)
	if header := m.viewHeader(); header != "" {
		sections = append(sections, header)
	}
	sections = append(sections, m.viewFilterBar(), "")

	if m.view == viewList {
		sections = append(sections, m.viewList())
	} else {
		sections = append(sections, m.viewColumns())
	}

	content := strings.Join(sections, "\n")
	statusLine := statusStyle.Render(m.status)
	helpLine := m.viewHelpLine()

	bodyHeight := m.height - lipgloss.Height(statusLine) - lipgloss.Height(helpLine)
	if m.height > 0 {
		content = fitLines(content, max(0, bodyHeight))
	}
	full := content + "\n" + statusLine + "\n" + helpLine

	if overlay := m.viewOverlay(); overlay != "" {
		height := lipgloss.Height(full)
		if m.height > 0 {
			height = m.height
		}
		full = overlayOnContent(full, overlay, max(1, m.width), max(1, height))
	}
	if m.drag == dragActive {
		height := lipgloss.Height(full)
		if m.height > 0 {
			height = m.height
		}
		full = overlayAt(full, m.viewDragGhost(), max(1, m.width), max(1, height), m.dragX+2, m.dragY+1)
	}

	v := tea.NewView(full)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// viewHeader renders the title/subtitle/stats block, honoring the host's
// header override.
func (m Model) viewHeader() string {
	if !m.style.ShowHeader {
		return ""
	}
	lines := []string{titleStyle.Render(m.style.BoardTitle)}
	if subtitle := strings.TrimSpace(m.style.BoardSubtitle); subtitle != "" {
		lines = append(lines, subtitleStyle.Render(subtitle))
	}
	if m.style.ShowStats {
		lines = append(lines, statusStyle.Render(m.viewStats()))
	}
	rendered := strings.Join(lines, "\n")
	if m.renderHeader != nil {
		rendered = m.renderHeader(rendered)
		// Overrides must not shift the board geometry below them.
		rendered = fitLines(rendered, len(lines))
	}
	return rendered
}

// viewStats summarizes the filtered collection per configured column.
func (m Model) viewStats() string {
	grouped := m.grouped()
	visible := 0
	parts := make([]string, 0, len(m.columns)+1)
	for _, column := range m.columns {
		n := len(grouped[column.ID])
		visible += n
		parts = append(parts, fmt.Sprintf("%s %d", column.Title, n))
	}
	return fmt.Sprintf("%d of %d tasks • %s", visible, len(m.tasks), strings.Join(parts, " · "))
}

// viewFilterBar renders the single-line filter/search/view state. While the
// search modal is open the live input takes the line over.
func (m Model) viewFilterBar() string {
	if m.mode == modeSearch {
		return m.searchInput.View()
	}
	parts := make([]string, 0, 5)
	if m.features.EnableViewToggle {
		if m.view == viewList {
			parts = append(parts, "[list]")
		} else {
			parts = append(parts, "[board]")
		}
	}
	if m.features.EnableSearch && strings.TrimSpace(m.filters.Search) != "" {
		parts = append(parts, "search: "+m.filters.Search)
	}
	if m.features.EnableFilters {
		if selectorActive(m.filters.Priority) {
			parts = append(parts, "priority: "+m.filters.Priority)
		}
		if selectorActive(m.filters.Type) {
			parts = append(parts, "type: "+m.filters.Type)
		}
		if selectorActive(m.filters.Assignee) {
			parts = append(parts, "assignee: "+m.filters.Assignee)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "all tasks")
	}
	return metaStyle.Render(strings.Join(parts, "  "))
}

// viewColumns renders the board surface.
func (m Model) viewColumns() string {
	if len(m.columns) == 0 {
		return emptyStyle.Render("no columns configured")
	}
	grouped := m.grouped()
	colWidth := m.columnWidthFor(m.width)
	colHeight := m.columnHeight()

	baseStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth + 4)
	selStyle := baseStyle.BorderForeground(accentColor)
	dropStyle := baseStyle.BorderForeground(lipgloss.Color("212"))

	dropIdx := -1
	if m.drag == dragActive {
		if idx, ok := m.columnIndexAt(m.dragX); ok {
			dropIdx = idx
		}
	}

	views := make([]string, 0, len(m.columns))
	for colIdx, column := range m.columns {
		tasks := grouped[column.ID]
		lines := make([]string, 0, 2+len(tasks)*(cardLines+1))
		lines = append(lines, colTitleStyle.Render(fmt.Sprintf("%s (%d)", column.Title, len(tasks))), "")
		if len(tasks) == 0 {
			lines = append(lines, emptyStyle.Render("(empty)"))
		}
		for taskIdx, task := range tasks {
			selected := m.mode == modeNone && colIdx == m.selectedColumn && taskIdx == m.selectedTask
			lines = append(lines, m.viewCard(task, colWidth, selected))
			if taskIdx < len(tasks)-1 {
				lines = append(lines, "")
			}
		}

		innerHeight := max(1, colHeight-4)
		content := fitLines(strings.Join(lines, "\n"), innerHeight)
		switch {
		case colIdx == dropIdx:
			views = append(views, dropStyle.Render(content))
		case colIdx == m.selectedColumn:
			views = append(views, selStyle.Render(content))
		default:
			views = append(views, baseStyle.Render(content))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// viewCard renders one two-line card, honoring the host's card override.
func (m Model) viewCard(task kanban.Task, width int, selected bool) string {
	prefix := "  "
	if selected {
		prefix = "│ "
	}
	typeDesc := task.Type.Descriptor()
	prioDesc := task.Priority.Descriptor()

	title := truncate(task.Title, max(1, width-6))
	titleLine := lipgloss.NewStyle().Foreground(lipgloss.Color(typeDesc.Color)).Render(typeDesc.Icon) + " " + title
	if selected {
		titleLine = lipgloss.NewStyle().Foreground(lipgloss.Color(typeDesc.Color)).Render(typeDesc.Icon) + " " + selectedStyle.Render(title)
	}

	meta := make([]string, 0, 4)
	meta = append(meta, lipgloss.NewStyle().Foreground(lipgloss.Color(prioDesc.Color)).Render(prioDesc.Icon+" "+prioDesc.Label))
	if task.Assignee != "" {
		meta = append(meta, "@"+task.Assignee)
	}
	if task.DueAt != nil {
		meta = append(meta, "due "+formatDueValue(task.DueAt))
	}
	if n := len(task.Comments); n > 0 {
		meta = append(meta, fmt.Sprintf("💬%d", n))
	}
	if n := len(task.Labels); n > 0 {
		meta = append(meta, fmt.Sprintf("⌗%d", n))
	}
	metaLine := metaStyle.Render(truncate(strings.Join(meta, " "), max(1, width-4)))

	rendered := prefix + titleLine + "\n" + prefix + metaLine
	if m.renderCard != nil {
		rendered = m.renderCard(task, rendered)
		// Cards must stay exactly two lines so hit testing holds.
		rendered = fitLines(rendered, cardLines)
	}
	return rendered
}

// viewDragGhost renders the floating card that follows the pointer.
func (m Model) viewDragGhost() string {
	desc := m.dragTask.Type.Descriptor()
	label := fmt.Sprintf("%s %s", desc.Icon, truncate(m.dragTask.Title, 28))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("212")).
		Padding(0, 1).
		Render(label)
}

// viewList renders the filtered collection as a flat table.
func (m Model) viewList() string {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return emptyStyle.Render("no tasks match the current filters")
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(mutedColor)
	rows := make([]string, 0, len(tasks)+1)
	rows = append(rows, headerStyle.Render(
		padCell("TYPE", 6)+padCell("ID", 10)+padCell("TITLE", 34)+padCell("PRIORITY", 10)+padCell("STATUS", 14)+padCell("ASSIGNEE", 14)+"DUE"))
	for _, task := range tasks {
		statusTitle := string(task.Status)
		if column, ok := kanban.ColumnByID(m.columns, task.Status); ok {
			statusTitle = column.Title
		}
		assignee := task.Assignee
		if assignee == "" {
			assignee = "-"
		}
		due := "-"
		if task.DueAt != nil {
			due = formatDueValue(task.DueAt)
		}
		typeDesc := task.Type.Descriptor()
		prioDesc := task.Priority.Descriptor()
		rows = append(rows,
			lipgloss.NewStyle().Foreground(lipgloss.Color(typeDesc.Color)).Render(padCell(typeDesc.Icon, 6))+
				padCell(truncate(task.ID, 8), 10)+
				padCell(truncate(task.Title, 32), 34)+
				lipgloss.NewStyle().Foreground(lipgloss.Color(prioDesc.Color)).Render(padCell(prioDesc.Label, 10))+
				padCell(truncate(statusTitle, 12), 14)+
				padCell(truncate(assignee, 12), 14)+
				due)
	}
	return strings.Join(rows, "\n")
}

// padCell pads a table cell to a fixed display width.
func padCell(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// viewHelpLine renders the bottom help bar.
func (m Model) viewHelpLine() string {
	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	return lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))
}

// viewOverlay renders the open modal surface, if any.
func (m Model) viewOverlay() string {
	switch m.mode {
	case modeCreateTask, modeEditTask:
		return m.viewTaskForm()
	case modeTaskDetail:
		return m.viewTaskDetail()
	default:
		if m.help.ShowAll {
			return m.viewHelpOverlay()
		}
		return ""
	}
}

// overlayBox is the shared modal frame.
func overlayBox(width int, lines []string) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1)
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// viewTaskForm renders the create/edit modal.
func (m Model) viewTaskForm() string {
	title := "New Task"
	if m.mode == modeEditTask {
		title = "Edit Task"
	}
	labels := []string{"Title", "Description", "Priority", "Type", "Assignee", "Labels", "Estimate", "Time Spent", "Due"}
	lines := []string{titleStyle.Render(title), ""}
	for idx, input := range m.formInputs {
		marker := "  "
		if idx == m.formFocus {
			marker = "│ "
		}
		lines = append(lines, marker+metaStyle.Render(padCell(labels[idx], 12))+input.View())
	}
	lines = append(lines, "", statusStyle.Render("enter submit • tab next field • esc cancel"))
	return overlayBox(min(m.width-8, 72), lines)
}

// viewTaskDetail renders the detail modal with a markdown description and
// the comment thread.
func (m Model) viewTaskDetail() string {
	task, ok := m.detailTask()
	if !ok {
		return ""
	}
	width := clamp(m.width-10, 40, 78)
	typeDesc := task.Type.Descriptor()
	prioDesc := task.Priority.Descriptor()

	statusTitle := string(task.Status)
	if column, found := kanban.ColumnByID(m.columns, task.Status); found {
		statusTitle = column.Title
	}

	facts := []string{
		lipgloss.NewStyle().Foreground(lipgloss.Color(typeDesc.Color)).Render(typeDesc.Icon+" "+typeDesc.Label),
		lipgloss.NewStyle().Foreground(lipgloss.Color(prioDesc.Color)).Render(prioDesc.Icon + " " + prioDesc.Label),
		statusTitle,
	}
	if task.Assignee != "" {
		facts = append(facts, "@"+task.Assignee)
	} else {
		facts = append(facts, "unassigned")
	}
	if task.Reporter != "" {
		facts = append(facts, "by "+task.Reporter)
	}

	lines := []string{
		titleStyle.Render(truncate(task.Title, width-4)),
		metaStyle.Render(strings.Join(facts, "  ")),
	}
	if task.Estimate > 0 || task.TimeSpent > 0 {
		lines = append(lines, metaStyle.Render(fmt.Sprintf("estimate %sh • spent %sh", formatHours(task.Estimate), formatHours(task.TimeSpent))))
	}
	if task.DueAt != nil {
		lines = append(lines, metaStyle.Render("due "+formatDueValue(task.DueAt)))
	}
	if len(task.Labels) > 0 {
		names := make([]string, 0, len(task.Labels))
		for _, label := range task.Labels {
			names = append(names, label.Name)
		}
		lines = append(lines, metaStyle.Render("labels: "+truncate(strings.Join(names, ", "), width-12)))
	}
	if desc := (&m.markdown).render(task.Description, width-4); desc != "" {
		lines = append(lines, "", desc)
	}

	lines = append(lines, "", titleStyle.Render(fmt.Sprintf("Comments (%d)", len(task.Comments))))
	shown := task.Comments
	if len(shown) > 6 {
		shown = shown[len(shown)-6:]
	}
	for _, comment := range shown {
		lines = append(lines,
			metaStyle.Render(comment.Author+" • "+comment.CreatedAt.Local().Format("2006-01-02 15:04")),
			"  "+truncate(comment.Content, width-6))
	}
	lines = append(lines, "", m.commentInput.View())
	lines = append(lines, "", statusStyle.Render("c comment • e edit • d delete • y copy id • esc close"))
	return overlayBox(width, lines)
}

// viewHelpOverlay renders the expanded keymap.
func (m Model) viewHelpOverlay() string {
	helpBubble := m.help
	helpBubble.ShowAll = true
	lines := []string{
		titleStyle.Render("Keys"),
		"",
		helpBubble.View(m.keys),
		"",
		statusStyle.Render("press ? or esc to close"),
	}
	return overlayBox(0, lines)
}
