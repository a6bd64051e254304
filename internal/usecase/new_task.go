// Package usecase contains application use cases.
package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/optimistic"
)

// NewTaskInput contains the parameters for creating a new task.
type NewTaskInput = domain.CreateTaskInput

// NewTaskOutput contains the result of creating a new task.
type NewTaskOutput struct {
	Task *domain.Task // The stored task
}

// NewTask is the use case for creating a new task.
// The task appears at the top of its column before the write completes.
type NewTask struct {
	writer domain.TaskWriter
	cache  domain.BoardCache
	clock  domain.Clock
	logger *slog.Logger
	key    string
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(writer domain.TaskWriter, cache domain.BoardCache, key string, clock domain.Clock, logger *slog.Logger) *NewTask {
	return &NewTask{
		writer: writer,
		cache:  cache,
		clock:  clock,
		logger: orDiscard(logger),
		key:    key,
	}
}

// Execute creates a new task with the given input.
func (uc *NewTask) Execute(ctx context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}

	prediction := uc.predict(in)
	m := optimistic.Mutation[domain.CreateTaskInput, *domain.Task]{
		Cache:  uc.cache,
		Remote: uc.writer.Create,
		Apply: func(board *domain.Board, _ domain.CreateTaskInput) *domain.Board {
			return domain.ApplyCreate(board, prediction)
		},
		Logger: uc.logger,
		Name:   "create",
		Key:    uc.key,
	}
	task, err := m.Execute(ctx, in)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("task created", "id", task.ID, "title", task.Metadata.Title)
	return &NewTaskOutput{Task: task}, nil
}

// predict fabricates the task shown until the store assigns the real id.
func (uc *NewTask) predict(in NewTaskInput) *domain.Task {
	id := domain.TempIDPrefix + uuid.NewString()
	status := in.Status
	if status == "" {
		status = domain.StatusTodo
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.DefaultPriority
	}
	var order float64
	if in.Order != nil {
		order = *in.Order
	}
	labels := append([]string{}, in.Labels...)
	return &domain.Task{
		ID:      id,
		Content: strings.TrimSpace(in.Content),
		Metadata: domain.TaskMetadata{
			ID:       id,
			Title:    strings.TrimSpace(in.Title),
			Status:   status,
			Priority: priority,
			Labels:   labels,
			Assignee: in.Assignee,
			Created:  uc.clock.Now().Format(domain.DateLayout),
			Due:      in.Due,
			Order:    order,
		},
	}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
