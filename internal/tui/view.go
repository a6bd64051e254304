package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/runoshun/mdboard/internal/domain"
)

// View renders the board.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.board == nil {
		if m.err != nil {
			return m.styles.ErrorMsg.Render("Error: " + m.err.Error())
		}
		return "Loading board..."
	}

	columns := make([]string, 0, len(m.board.Columns))
	for i := range m.board.Columns {
		columns = append(columns, m.viewColumn(i))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewTitleBar(),
		lipgloss.JoinHorizontal(lipgloss.Top, columns...),
		m.viewFooter(),
	)
}

func (m *Model) viewTitleBar() string {
	title := m.styles.Header.Render("mdboard")
	info := fmt.Sprintf(" %d tasks", m.board.TaskCount())
	if m.mode == ModeDragging {
		info += " · moving " + m.dragID + " (esc to cancel)"
	}
	line := title + m.styles.HeaderText.Render(info)
	return truncate.StringWithTail(line, uint(m.width), "…")
}

func (m *Model) viewColumn(i int) string {
	width := m.columnWidth()
	col := m.board.Columns[i]
	tasks := m.columnTasks(i)

	lines := []string{m.viewColumnHeader(col.ColumnConfig, len(tasks), width)}
	if len(tasks) == 0 {
		lines = append(lines, m.styles.Empty.Render(" (empty)"))
	}

	start := m.scrollOf(i)
	end := min(start+m.visibleCards(), len(tasks))
	for ri := start; ri < end; ri++ {
		lines = append(lines, m.viewCard(tasks[ri], i, ri, width))
	}

	body := max(m.height-footerHeight-1, 1)
	return lipgloss.NewStyle().
		Width(width).
		Height(body).
		MaxHeight(body).
		Render(strings.Join(lines, "\n"))
}

// viewColumnHeader renders "─ Title (n) ────" padded to the column width.
func (m *Model) viewColumnHeader(col domain.ColumnConfig, n, width int) string {
	count := fmt.Sprintf("(%d)", n)
	countStyle := m.styles.ColumnCount
	if col.Limit > 0 {
		count = fmt.Sprintf("(%d/%d)", n, col.Limit)
		if n > col.Limit {
			countStyle = m.styles.ColumnFull
		}
	}
	title := m.styles.ColumnTitle.Foreground(ColumnColor(col)).Render(col.Title)
	head := m.styles.ColumnLine.Render("─ ") + title + " " + countStyle.Render(count) + " "
	head = truncate.String(head, uint(max(width-1, 0)))
	if rest := width - 1 - lipgloss.Width(head); rest > 0 {
		head += m.styles.ColumnLine.Render(strings.Repeat("─", rest))
	}
	return head
}

// viewCard renders a task as a two-line bordered card.
func (m *Model) viewCard(task *domain.Task, col, row, width int) string {
	dragging := m.mode == ModeDragging && task.ID == m.dragID
	selected := m.mode != ModeDragging && col == m.col && row == m.row

	style := m.styles.Card
	titleStyle := m.styles.CardTitle
	switch {
	case dragging:
		style = m.styles.CardDragging
		titleStyle = m.styles.CardTitleSel
	case selected:
		style = m.styles.CardSelected
		titleStyle = m.styles.CardTitleSel
	}

	// Border and padding take four cells, plus one cell of gutter.
	inner := uint(max(width-5, 1))
	title := truncate.StringWithTail(titleStyle.Render(task.Metadata.Title), inner, "…")
	meta := truncate.StringWithTail(m.cardMeta(task), inner, "…")

	return style.Width(max(width-3, 1)).Render(title + "\n" + meta)
}

// cardMeta renders the priority, labels and assignee line of a card.
func (m *Model) cardMeta(task *domain.Task) string {
	p := task.Metadata.Priority
	parts := []string{PriorityStyle(p).Render(PriorityIcon(p) + " " + string(p))}
	for _, l := range task.Metadata.Labels {
		parts = append(parts, m.styles.CardLabel.Render("#"+l))
	}
	if task.Metadata.Assignee != "" {
		parts = append(parts, m.styles.CardAssignee.Render("@"+task.Metadata.Assignee))
	}
	return strings.Join(parts, " ")
}

func (m *Model) viewFooter() string {
	var errLine string
	if m.err != nil {
		errLine = m.styles.ErrorMsg.Render("Error: " + m.err.Error())
	}
	return errLine + "\n" + m.styles.Footer.Render(m.help.View(m.keys))
}
