// Package shared holds helpers used by several use cases.
package shared

import (
	"context"
	"fmt"

	"github.com/runoshun/mdboard/internal/domain"
)

// GetTask retrieves a task by ID and returns domain.ErrTaskNotFound if not found.
// This centralizes the common pattern of:
//
//	task, err := reader.LoadTask(ctx, taskID)
//	if err != nil { return nil, fmt.Errorf("load task: %w", err) }
//	if task == nil { return nil, domain.ErrTaskNotFound }
func GetTask(ctx context.Context, reader domain.BoardReader, taskID string) (*domain.Task, error) {
	task, err := reader.LoadTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("%s: %w", taskID, domain.ErrTaskNotFound)
	}
	return task, nil
}

// Key returns the board cache key for a task source, either a tasks
// directory or a server URL.
func Key(source string) string {
	return "board:" + source
}
