package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/mdboard/internal/domain"
)

// MoveToPositionInput contains the parameters for placing a task at an index.
type MoveToPositionInput struct {
	TaskID string
	Status domain.Status // Target column
	Index  int           // Position in the target column, not counting the task itself
}

// MoveToPositionOutput contains the result of placing a task.
type MoveToPositionOutput struct {
	Task *domain.Task
	Move domain.MoveTaskInput // The move that was issued
}

// MoveToPosition computes the order for a task dropped at an index and
// issues the move. It is the keyboard and CLI counterpart of a drag.
type MoveToPosition struct {
	board  *LoadBoard
	move   *MoveTask
	scheme domain.OrderScheme
}

// NewMoveToPosition creates a new MoveToPosition use case.
func NewMoveToPosition(board *LoadBoard, move *MoveTask, scheme domain.OrderScheme) *MoveToPosition {
	return &MoveToPosition{
		board:  board,
		move:   move,
		scheme: scheme,
	}
}

// Execute places the task at in.Index within in.Status.
func (uc *MoveToPosition) Execute(ctx context.Context, in MoveToPositionInput) (*MoveToPositionOutput, error) {
	out, err := uc.board.Execute(ctx, LoadBoardInput{})
	if err != nil {
		return nil, err
	}

	move, err := uc.scheme.PlanMove(out.Board, in.TaskID, in.Status, in.Index)
	if err != nil {
		return nil, fmt.Errorf("plan move: %w", err)
	}

	moved, err := uc.move.Execute(ctx, move)
	if err != nil {
		return nil, err
	}
	return &MoveToPositionOutput{Task: moved.Task, Move: move}, nil
}
