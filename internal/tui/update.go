package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/mdboard/internal/drag"
)

// errorTimeout is how long an error stays in the footer.
const errorTimeout = 5 * time.Second

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case MsgBoardLoaded:
		m.setBoard(msg.Board)
		return m, nil

	case MsgBoardChanged:
		if msg.Board != nil {
			m.setBoard(msg.Board)
		}
		return m, m.waitForChange()

	case MsgTaskMoved:
		m.logger.Debug("task moved", "id", msg.Task.ID, "status", string(msg.Task.Metadata.Status))
		return m, m.loadBoard(false)

	case MsgDropped:
		if msg.Err != nil {
			return m.showError(msg.Err)
		}
		if !msg.Result.Committed {
			return m, nil
		}
		return m, m.loadBoard(false)

	case MsgError:
		return m.showError(msg.Err)

	case MsgClearError:
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m *Model) showError(err error) (tea.Model, tea.Cmd) {
	m.logger.Warn("board error", "error", err)
	m.err = err
	return m, tea.Tick(errorTimeout, func(time.Time) tea.Msg {
		return MsgClearError{}
	})
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancelDrag()
		m.Close()
		return m, tea.Quit
	}

	switch m.mode {
	case ModeDragging:
		if key.Matches(msg, m.keys.Escape) {
			m.cancelDrag()
		}
		return m, nil
	case ModeHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) {
			m.mode = ModeNormal
			m.help.ShowAll = false
		}
		return m, nil
	case ModeNormal:
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		m.help.ShowAll = true
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadBoard(true)

	case key.Matches(msg, m.keys.MoveLeft):
		return m, m.moveSelectedColumn(-1)

	case key.Matches(msg, m.keys.MoveRight):
		return m, m.moveSelectedColumn(1)

	case key.Matches(msg, m.keys.MoveUp):
		return m, m.moveSelectedRow(-1)

	case key.Matches(msg, m.keys.MoveDown):
		return m, m.moveSelectedRow(1)

	case key.Matches(msg, m.keys.Up):
		m.row--
		m.clampCursor()

	case key.Matches(msg, m.keys.Down):
		m.row++
		m.clampCursor()

	case key.Matches(msg, m.keys.Left):
		m.col--
		m.clampCursor()

	case key.Matches(msg, m.keys.Right):
		m.col++
		m.clampCursor()
	}
	return m, nil
}

// moveSelectedColumn moves the selected task to the neighbouring column,
// keeping its row where possible.
func (m *Model) moveSelectedColumn(delta int) tea.Cmd {
	task := m.selected()
	if task == nil {
		return nil
	}
	target := m.col + delta
	if target < 0 || target >= len(m.board.Columns) {
		return nil
	}
	index := min(m.row, len(m.board.Columns[target].Tasks))
	return m.moveTask(task.ID, m.board.Columns[target].ID, index)
}

// moveSelectedRow moves the selected task up or down within its column.
func (m *Model) moveSelectedRow(delta int) tea.Cmd {
	task := m.selected()
	if task == nil {
		return nil
	}
	index := m.row + delta
	if index < 0 || index >= len(m.board.Columns[m.col].Tasks) {
		return nil
	}
	return m.moveTask(task.ID, m.board.Columns[m.col].ID, index)
}

// handleMouseMsg turns pointer gestures into drag controller calls.
func (m *Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if len(m.scroll) == 0 || msg.X < 0 {
			return m, nil
		}
		delta := 1
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		m.scrollBy(min(msg.X/m.columnWidth(), len(m.scroll)-1), delta)
		return m, nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if m.mode == ModeNormal {
			m.startDrag(msg.X, msg.Y)
		}
		return m, nil

	case msg.Action == tea.MouseActionMotion:
		if m.mode == ModeDragging {
			m.deps.Drag.DragOver(m.dragEvent(msg.X, msg.Y))
		}
		return m, nil

	case msg.Action == tea.MouseActionRelease:
		if m.mode != ModeDragging {
			return m, nil
		}
		ev := m.dragEvent(msg.X, msg.Y)
		m.mode = ModeNormal
		m.dragID = ""
		return m, m.endDrag(ev)
	}
	return m, nil
}

// startDrag selects the card under the pointer and picks it up.
func (m *Model) startDrag(x, y int) {
	h, ok := m.hitTest(x, y)
	if !ok || h.Kind != drag.KindTask {
		return
	}
	for ci, col := range m.board.Columns {
		for ri, t := range col.Tasks {
			if t.ID == h.ID {
				m.col, m.row = ci, ri
			}
		}
	}
	if m.deps.Drag.DragStart(m.board, h.ID) == nil {
		return
	}
	m.dragID = h.ID
	m.mode = ModeDragging
}

// cancelDrag drops a held card back where it was picked up.
func (m *Model) cancelDrag() {
	if m.mode != ModeDragging {
		return
	}
	m.deps.Drag.Cancel()
	m.mode = ModeNormal
	m.dragID = ""
}
