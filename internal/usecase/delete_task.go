package usecase

import (
	"context"
	"log/slog"

	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/optimistic"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID string // Task ID to delete
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct{}

// DeleteTask is the use case for deleting a task.
type DeleteTask struct {
	writer domain.TaskWriter
	cache  domain.BoardCache
	logger *slog.Logger
	key    string
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(writer domain.TaskWriter, cache domain.BoardCache, key string, logger *slog.Logger) *DeleteTask {
	return &DeleteTask{
		writer: writer,
		cache:  cache,
		logger: orDiscard(logger),
		key:    key,
	}
}

// Execute deletes a task with the given ID.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	m := optimistic.Mutation[string, struct{}]{
		Cache: uc.cache,
		Remote: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, uc.writer.Delete(ctx, id)
		},
		Apply:  domain.ApplyDelete,
		TaskID: func(id string) string { return id },
		Logger: uc.logger,
		Name:   "delete",
		Key:    uc.key,
	}
	if _, err := m.Execute(ctx, in.TaskID); err != nil {
		return nil, err
	}

	uc.logger.Info("task deleted", "id", in.TaskID)
	return &DeleteTaskOutput{}, nil
}
