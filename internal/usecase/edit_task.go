// Package usecase contains application use cases.
package usecase

import (
	"context"
	"log/slog"
	"slices"

	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/optimistic"
	"github.com/runoshun/mdboard/internal/usecase/shared"
)

// EditTaskInput contains the parameters for editing a task.
// Only non-nil patch fields are updated. AddLabels and RemoveLabels are
// applied to the stored labels and override Patch.Labels.
type EditTaskInput struct {
	Patch        domain.TaskPatch
	TaskID       string   // Task ID to edit (required)
	AddLabels    []string // Labels to add
	RemoveLabels []string // Labels to remove
}

// EditTaskOutput contains the result of editing a task.
type EditTaskOutput struct {
	Task *domain.Task // The updated task
}

type updateRequest struct {
	id    string
	patch domain.TaskPatch
}

// EditTask is the use case for editing an existing task.
type EditTask struct {
	reader domain.BoardReader
	writer domain.TaskWriter
	cache  domain.BoardCache
	logger *slog.Logger
	key    string
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(reader domain.BoardReader, writer domain.TaskWriter, cache domain.BoardCache, key string, logger *slog.Logger) *EditTask {
	return &EditTask{
		reader: reader,
		writer: writer,
		cache:  cache,
		logger: orDiscard(logger),
		key:    key,
	}
}

// Execute edits a task with the given input.
func (uc *EditTask) Execute(ctx context.Context, in EditTaskInput) (*EditTaskOutput, error) {
	patch := in.Patch
	if len(in.AddLabels) > 0 || len(in.RemoveLabels) > 0 {
		task, err := shared.GetTask(ctx, uc.reader, in.TaskID)
		if err != nil {
			return nil, err
		}
		labels := mergeLabels(task.Metadata.Labels, in.AddLabels, in.RemoveLabels)
		patch.Labels = &labels
	}
	if patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, domain.ErrEmptyTitle
	}

	m := optimistic.Mutation[updateRequest, *domain.Task]{
		Cache: uc.cache,
		Remote: func(ctx context.Context, req updateRequest) (*domain.Task, error) {
			return uc.writer.Update(ctx, req.id, req.patch)
		},
		Apply: func(board *domain.Board, req updateRequest) *domain.Board {
			return domain.ApplyUpdate(board, req.id, req.patch)
		},
		TaskID: func(req updateRequest) string { return req.id },
		Logger: uc.logger,
		Name:   "update",
		Key:    uc.key,
	}
	task, err := m.Execute(ctx, updateRequest{id: in.TaskID, patch: patch})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("task updated", "id", task.ID)
	return &EditTaskOutput{Task: task}, nil
}

// mergeLabels adds and removes labels, keeping the existing order.
func mergeLabels(current, add, remove []string) []string {
	labels := make([]string, 0, len(current)+len(add))
	for _, l := range current {
		if !slices.Contains(remove, l) {
			labels = append(labels, l)
		}
	}
	for _, l := range add {
		if !slices.Contains(labels, l) && !slices.Contains(remove, l) {
			labels = append(labels, l)
		}
	}
	return labels
}
