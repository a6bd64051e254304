package tui

import (
	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/drag"
)

// Screen geometry. Row 0 is the title bar and row 1 the column headers;
// cards start below them and each card is a bordered box of two lines.
const (
	headerHeight = 2
	cardHeight   = 4
	footerHeight = 2
)

// columnWidth returns the width of one column.
func (m *Model) columnWidth() int {
	if m.board == nil || len(m.board.Columns) == 0 {
		return m.width
	}
	return max(m.width/len(m.board.Columns), 1)
}

// visibleCards returns how many cards fit in a column.
func (m *Model) visibleCards() int {
	return max((m.height-headerHeight-footerHeight)/cardHeight, 1)
}

// columnTasks returns the tasks of column i as they should be drawn.
// During a drag the order comes from the controller's working layout.
func (m *Model) columnTasks(i int) []*domain.Task {
	if m.board == nil || i < 0 || i >= len(m.board.Columns) {
		return nil
	}
	col := m.board.Columns[i]
	if m.mode != ModeDragging {
		return col.Tasks
	}
	state := m.deps.Drag.State()
	if !state.Dragging {
		return col.Tasks
	}
	ids := state.Layout[col.ID]
	tasks := make([]*domain.Task, 0, len(ids))
	for _, id := range ids {
		if t := m.board.FindTask(id); t != nil {
			tasks = append(tasks, t)
		} else if state.Active != nil && state.Active.ID == id {
			tasks = append(tasks, state.Active)
		}
	}
	return tasks
}

// hit is what lies under a screen cell.
type hit struct {
	ID    string // Task id for KindTask, column status for KindColumn
	Kind  drag.Kind
	After bool // Pointer is on the lower half of the card
}

// hitTest maps a screen cell to a card or a column.
func (m *Model) hitTest(x, y int) (hit, bool) {
	if m.board == nil || len(m.board.Columns) == 0 || x < 0 || y < 0 {
		return hit{}, false
	}
	ci := min(x/m.columnWidth(), len(m.board.Columns)-1)
	column := hit{ID: string(m.board.Columns[ci].ID), Kind: drag.KindColumn}
	if y < headerHeight {
		return column, true
	}

	rel := y - headerHeight
	slot := rel / cardHeight
	tasks := m.columnTasks(ci)
	idx := m.scrollOf(ci) + slot
	if slot >= m.visibleCards() || idx >= len(tasks) {
		return column, true
	}
	return hit{
		ID:    tasks[idx].ID,
		Kind:  drag.KindTask,
		After: rel%cardHeight >= cardHeight/2,
	}, true
}

// dragEvent builds the controller event for the pointer at x, y.
func (m *Model) dragEvent(x, y int) drag.Event {
	ev := drag.Event{ActiveID: m.dragID, ActiveKind: drag.KindTask}
	h, ok := m.hitTest(x, y)
	if !ok {
		ev.Canceled = true
		return ev
	}
	ev.OverID = h.ID
	ev.OverKind = h.Kind
	ev.After = h.After
	return ev
}

func (m *Model) scrollOf(col int) int {
	if col < 0 || col >= len(m.scroll) {
		return 0
	}
	return m.scroll[col]
}

// ensureVisible scrolls the cursor's column so the selected card is shown.
func (m *Model) ensureVisible() {
	if m.col < 0 || m.col >= len(m.scroll) {
		return
	}
	visible := m.visibleCards()
	switch {
	case m.row < m.scroll[m.col]:
		m.scroll[m.col] = m.row
	case m.row >= m.scroll[m.col]+visible:
		m.scroll[m.col] = m.row - visible + 1
	}
	m.scroll[m.col] = max(m.scroll[m.col], 0)
}

// scrollBy scrolls column col by delta cards within bounds.
func (m *Model) scrollBy(col, delta int) {
	if col < 0 || col >= len(m.scroll) {
		return
	}
	limit := max(len(m.columnTasks(col))-m.visibleCards(), 0)
	m.scroll[col] = min(max(m.scroll[col]+delta, 0), limit)
}

// selected returns the task under the cursor, or nil.
func (m *Model) selected() *domain.Task {
	tasks := m.columnTasks(m.col)
	if m.row < 0 || m.row >= len(tasks) {
		return nil
	}
	return tasks[m.row]
}

// setBoard replaces the shown board and keeps the cursor on the same task.
func (m *Model) setBoard(b *domain.Board) {
	var selectedID string
	if t := m.selected(); t != nil {
		selectedID = t.ID
	}
	m.board = b
	if len(m.scroll) != len(b.Columns) {
		m.scroll = make([]int, len(b.Columns))
	}
	if selectedID != "" {
		for ci, col := range b.Columns {
			for ri, t := range col.Tasks {
				if t.ID == selectedID {
					m.col, m.row = ci, ri
					m.ensureVisible()
					return
				}
			}
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.board == nil || len(m.board.Columns) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = min(max(m.col, 0), len(m.board.Columns)-1)
	n := len(m.columnTasks(m.col))
	m.row = min(max(m.row, 0), max(n-1, 0))
	m.ensureVisible()
}
