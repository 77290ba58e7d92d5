package board

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/hylla/tavle/kanban"
)

// Per-column overhead in cells: left/right border (2), horizontal padding
// (4), margin-right (1). Hit testing and rendering must agree on this.
const columnOverhead = 7

// Rows inside a column box before the first card line: top border, top
// padding, column header, blank.
const cardAreaOffset = 4

// Lines per rendered card: title and meta, plus one separator row between
// cards.
const cardLines = 2

// columnWidthFor returns the inner text width of one column.
func (m Model) columnWidthFor(boardWidth int) int {
	if len(m.columns) == 0 {
		return 24
	}
	w := 28
	if boardWidth > 0 {
		usable := boardWidth - len(m.columns)*columnOverhead
		if candidate := usable / len(m.columns); candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 22, 42)
}

// columnSpan is the total horizontal footprint of one column in cells.
func (m Model) columnSpan() int {
	return m.columnWidthFor(m.width) + columnOverhead
}

// headerHeight counts the lines above the filter bar.
func (m Model) headerHeight() int {
	if !m.style.ShowHeader {
		return 0
	}
	h := 1
	if strings.TrimSpace(m.style.BoardSubtitle) != "" {
		h++
	}
	if m.style.ShowStats {
		h++
	}
	return h
}

// boardTop is the row of the first column border. The filter bar and a
// spacer sit between the header and the columns.
func (m Model) boardTop() int {
	return m.headerHeight() + 2
}

// columnHeight is the outer height of a column box including borders.
func (m Model) columnHeight() int {
	// status line + help line below the board
	h := m.height - m.boardTop() - 2
	if h < 12 {
		return 12
	}
	return h
}

// columnIndexAt maps a pointer column cell to a configured column index.
func (m Model) columnIndexAt(x int) (int, bool) {
	span := m.columnSpan()
	for idx := range m.columns {
		start := idx * span
		if x >= start && x < start+span {
			return idx, true
		}
	}
	return 0, false
}

// cardIndexAtRow maps a row within a column's card area to a card index.
// The second return is true only when the row lands on the card's own lines
// rather than the separator beneath it.
func cardIndexAtRow(tasks []kanban.Task, row int) (int, bool) {
	if len(tasks) == 0 || row < 0 {
		return 0, false
	}
	current := 0
	for idx := range tasks {
		if row >= current && row < current+cardLines {
			return idx, true
		}
		current += cardLines + 1
	}
	return 0, false
}

// cardAt resolves the visible card under the pointer, if any.
func (m Model) cardAt(x, y int) (kanban.Task, bool) {
	colIdx, ok := m.columnIndexAt(x)
	if !ok {
		return kanban.Task{}, false
	}
	if y >= m.boardTop()+m.columnHeight() {
		return kanban.Task{}, false
	}
	row := y - m.boardTop() - cardAreaOffset
	tasks := m.grouped()[m.columns[colIdx].ID]
	idx, on := cardIndexAtRow(tasks, row)
	if !on {
		return kanban.Task{}, false
	}
	return tasks[idx], true
}

// dropTargetAt resolves the drop-target identity under the pointer: a card's
// task id when the pointer is on a card, the column id anywhere else inside a
// column box, and "" outside any column.
func (m Model) dropTargetAt(x, y int) string {
	colIdx, ok := m.columnIndexAt(x)
	if !ok {
		return ""
	}
	if y < m.boardTop() || y >= m.boardTop()+m.columnHeight() {
		return ""
	}
	tasks := m.grouped()[m.columns[colIdx].ID]
	if idx, on := cardIndexAtRow(tasks, y-m.boardTop()-cardAreaOffset); on {
		return tasks[idx].ID
	}
	return string(m.columns[colIdx].ID)
}

// clamp bounds v to [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// truncate caps s at maxRunes runes, ending with an ellipsis when cut.
func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= maxRunes {
		return s
	}
	if maxRunes <= 1 {
		return string(rs[:maxRunes])
	}
	return string(rs[:maxRunes-1]) + "…"
}

// overlayOnContent composes an overlay box over the base content. A floating
// overlay with explicit coordinates is placed at that cell instead of
// centered.
func overlayOnContent(base, overlay string, width, height int) string {
	return overlayAt(base, overlay, width, height, -1, -1)
}

func overlayAt(base, overlay string, width, height, x, y int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}
	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	if x < 0 || y < 0 {
		overlay = lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
		x, y = 0, 0
	} else {
		x = clamp(x, 0, max(0, width-lipgloss.Width(overlay)))
		y = clamp(y, 0, max(0, height-lipgloss.Height(overlay)))
	}
	canvas.Compose(lipgloss.NewLayer(overlay).X(x).Y(y).Z(10))
	return canvas.Render()
}
