package usecase

import (
	"context"

	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID string // Task ID (required)
}

// ShowTaskOutput contains the result of showing a task.
type ShowTaskOutput struct {
	Task *domain.Task // The task details
}

// ShowTask is the use case for displaying task details.
type ShowTask struct {
	reader domain.BoardReader
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(reader domain.BoardReader) *ShowTask {
	return &ShowTask{
		reader: reader,
	}
}

// Execute reads the task directly from the store.
func (uc *ShowTask) Execute(ctx context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := shared.GetTask(ctx, uc.reader, in.TaskID)
	if err != nil {
		return nil, err
	}
	return &ShowTaskOutput{Task: task}, nil
}
