package tui

import (
	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/drag"
)

// Msg is the sealed interface for all TUI messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgBoardLoaded is sent when the board has been loaded through the use case.
type MsgBoardLoaded struct {
	Board *domain.Board
}

func (MsgBoardLoaded) sealed() {}

// MsgBoardChanged is sent when another writer replaced the cached board,
// e.g. an optimistic prediction or a rollback.
type MsgBoardChanged struct {
	Board *domain.Board
}

func (MsgBoardChanged) sealed() {}

// MsgTaskMoved is sent when a keyboard move has been committed.
type MsgTaskMoved struct {
	Task *domain.Task
}

func (MsgTaskMoved) sealed() {}

// MsgDropped is sent when a drag has ended and its mutation (if any) settled.
type MsgDropped struct {
	Err    error
	Result drag.Result
}

func (MsgDropped) sealed() {}

// MsgError is sent when an error occurs.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// MsgClearError is sent to clear the current error message.
type MsgClearError struct{}

func (MsgClearError) sealed() {}
