package usecase

import (
	"context"
	"log/slog"

	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/optimistic"
)

// MoveTaskOutput contains the result of moving a task.
type MoveTaskOutput struct {
	Task *domain.Task // The moved task as stored
}

// MoveTask is the use case for changing a task's column and order.
type MoveTask struct {
	writer domain.TaskWriter
	cache  domain.BoardCache
	logger *slog.Logger
	key    string
}

// NewMoveTask creates a new MoveTask use case.
func NewMoveTask(writer domain.TaskWriter, cache domain.BoardCache, key string, logger *slog.Logger) *MoveTask {
	return &MoveTask{
		writer: writer,
		cache:  cache,
		logger: orDiscard(logger),
		key:    key,
	}
}

// Execute moves the task, re-sorting the destination column in the cache
// before the write completes.
func (uc *MoveTask) Execute(ctx context.Context, in domain.MoveTaskInput) (*MoveTaskOutput, error) {
	if !in.NewStatus.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	m := optimistic.Mutation[domain.MoveTaskInput, *domain.Task]{
		Cache:  uc.cache,
		Remote: uc.writer.Move,
		Apply:  domain.ApplyMove,
		TaskID: func(in domain.MoveTaskInput) string { return in.TaskID },
		Logger: uc.logger,
		Name:   "move",
		Key:    uc.key,
	}
	task, err := m.Execute(ctx, in)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("task moved", "id", task.ID, "status", string(in.NewStatus), "order", in.NewOrder, "renumbered", len(in.Renumber))
	return &MoveTaskOutput{Task: task}, nil
}
