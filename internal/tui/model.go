package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/drag"
	"github.com/runoshun/mdboard/internal/usecase"
)

// Deps are the use cases and ports the board view works with.
type Deps struct {
	LoadBoard      *usecase.LoadBoard
	MoveToPosition *usecase.MoveToPosition
	Drag           *drag.Controller
	Cache          domain.BoardCache
	Logger         *slog.Logger
	CacheKey       string
}

// Model is the main bubbletea model for the board.
type Model struct {
	deps   Deps
	logger *slog.Logger

	// Bubbles components
	help help.Model

	// UI state
	keys   KeyMap
	styles Styles
	err    error

	// Data
	board   *domain.Board
	changes chan *domain.Board
	unsub   func()
	scroll  []int // Per-column scroll offset, in cards

	// Cursor
	col int
	row int

	// Drag
	dragID string

	// Screen size
	width  int
	height int

	mode Mode
}

// New creates a new board model.
// The model subscribes to board cache updates for deps.CacheKey so that
// optimistic predictions and rollbacks show up as they happen.
func New(deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Model{
		deps:    deps,
		logger:  logger,
		help:    help.New(),
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
		changes: make(chan *domain.Board, 1),
		mode:    ModeNormal,
	}
	if deps.Cache != nil {
		m.unsub = deps.Cache.Subscribe(deps.CacheKey, m.publish)
	}
	return m
}

// publish hands a board to the update loop, keeping only the newest one.
func (m *Model) publish(b *domain.Board) {
	select {
	case <-m.changes:
	default:
	}
	select {
	case m.changes <- b:
	default:
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadBoard(false),
		m.waitForChange(),
	)
}

// Close stops listening for cache updates.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

// Mode returns the current UI mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// Board returns the board currently shown.
func (m *Model) Board() *domain.Board {
	return m.board
}

// Cursor returns the selected column and row.
func (m *Model) Cursor() (col, row int) {
	return m.col, m.row
}

// Commands

func (m *Model) loadBoard(refresh bool) tea.Cmd {
	return func() tea.Msg {
		out, err := m.deps.LoadBoard.Execute(context.Background(), usecase.LoadBoardInput{Refresh: refresh})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgBoardLoaded{Board: out.Board}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		return MsgBoardChanged{Board: <-ch}
	}
}

func (m *Model) moveTask(id string, status domain.Status, index int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.deps.MoveToPosition.Execute(context.Background(), usecase.MoveToPositionInput{
			TaskID: id,
			Status: status,
			Index:  index,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskMoved{Task: out.Task}
	}
}

func (m *Model) endDrag(ev drag.Event) tea.Cmd {
	return func() tea.Msg {
		res, err := m.deps.Drag.DragEnd(context.Background(), ev)
		return MsgDropped{Result: res, Err: err}
	}
}
