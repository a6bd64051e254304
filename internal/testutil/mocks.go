// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/runoshun/mdboard/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockTaskStore is an in-memory test double for domain.TaskStore.
// Error fields make the matching operation fail.
type MockTaskStore struct {
	Tasks   map[string]*domain.Task
	Columns []domain.ColumnConfig

	LoadErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
	MoveErr   error

	// Recorded calls.
	Creates []domain.CreateTaskInput
	Updates []string
	Deletes []string
	Moves   []domain.MoveTaskInput

	LoadCalls int
	mu        sync.Mutex
}

var _ domain.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a MockTaskStore holding copies of tasks.
func NewMockTaskStore(tasks ...*domain.Task) *MockTaskStore {
	m := &MockTaskStore{
		Tasks:   make(map[string]*domain.Task),
		Columns: domain.DefaultColumns(),
	}
	for _, t := range tasks {
		m.Tasks[t.ID] = t.Clone()
	}
	return m
}

// NewTask builds a valid task for tests.
func NewTask(id string, status domain.Status, order float64) *domain.Task {
	return &domain.Task{
		ID:       id,
		FilePath: "/tasks/" + id + ".md",
		Metadata: domain.TaskMetadata{
			ID:       id,
			Title:    "Task " + id,
			Status:   status,
			Priority: domain.DefaultPriority,
			Labels:   []string{},
			Created:  "2025-01-15",
			Order:    order,
		},
	}
}

// LoadBoard groups the stored tasks into a board.
func (m *MockTaskStore) LoadBoard(ctx context.Context) (*domain.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	board := domain.NewBoard("/tasks", m.Columns, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	for _, id := range m.sortedIDs() {
		t := m.Tasks[id]
		if col := board.Column(t.Metadata.Status); col != nil {
			col.Tasks = append(col.Tasks, t.Clone())
		}
	}
	for i := range board.Columns {
		domain.SortTasks(board.Columns[i].Tasks)
	}
	return board, nil
}

// LoadTask returns a copy of the task, or nil.
func (m *MockTaskStore) LoadTask(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Tasks[id].Clone(), nil
}

// Create stores a new task with an id derived from the title.
func (m *MockTaskStore) Create(_ context.Context, in domain.CreateTaskInput) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates = append(m.Creates, in)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if in.Title == "" {
		return nil, domain.ErrEmptyTitle
	}
	id := domain.TaskIDFromTitle(in.Title)
	for n := 2; m.Tasks[id] != nil; n++ {
		id = fmt.Sprintf("%s-%d", domain.TaskIDFromTitle(in.Title), n)
	}
	status := in.Status
	if status == "" {
		status = domain.StatusTodo
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.DefaultPriority
	}
	order := domain.DefaultOrderStep
	if in.Order != nil {
		order = *in.Order
	} else {
		for _, t := range m.Tasks {
			if t.Metadata.Status == status && t.Metadata.Order+domain.DefaultOrderStep > order {
				order = t.Metadata.Order + domain.DefaultOrderStep
			}
		}
	}
	labels := in.Labels
	if labels == nil {
		labels = []string{}
	}
	task := &domain.Task{
		ID:       id,
		FilePath: "/tasks/" + id + ".md",
		Content:  in.Content,
		Metadata: domain.TaskMetadata{
			ID: id, Title: in.Title, Status: status, Priority: priority, Labels: labels,
			Assignee: in.Assignee, Created: "2025-01-15", Due: in.Due, Order: order,
		},
	}
	m.Tasks[id] = task
	return task.Clone(), nil
}

// Update merges the patch into a stored task.
func (m *MockTaskStore) Update(_ context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, id)
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	if patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	task, ok := m.Tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	patch.ApplyTo(task)
	return task.Clone(), nil
}

// Delete removes a stored task.
func (m *MockTaskStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes = append(m.Deletes, id)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// Move sets status and order and applies sibling renumbering.
func (m *MockTaskStore) Move(_ context.Context, in domain.MoveTaskInput) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Moves = append(m.Moves, in)
	if m.MoveErr != nil {
		return nil, m.MoveErr
	}
	task, ok := m.Tasks[in.TaskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	task.Metadata.Status = in.NewStatus
	task.Metadata.Order = in.NewOrder
	for id, order := range in.Renumber {
		if sibling, ok := m.Tasks[id]; ok && id != in.TaskID {
			sibling.Metadata.Order = order
		}
	}
	return task.Clone(), nil
}

// MoveCount returns the number of Move calls.
func (m *MockTaskStore) MoveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Moves)
}

// sortedIDs returns ids in lexical order so ties sort deterministically.
func (m *MockTaskStore) sortedIDs() []string {
	ids := make([]string, 0, len(m.Tasks))
	for id := range m.Tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitProjectErr    error
	InitGlobalErr     error
	ProjectConfigInfo domain.ConfigInfo
	GlobalConfigInfo  domain.ConfigInfo
	InitProjectCalled bool
	InitGlobalCalled  bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		ProjectConfigInfo: domain.ConfigInfo{
			Path:   "/test/.mdboard/config.toml",
			Exists: false,
		},
		GlobalConfigInfo: domain.ConfigInfo{
			Path:   "/home/test/.config/mdboard/config.toml",
			Exists: false,
		},
	}
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// GetProjectConfigInfo returns the configured project config info.
func (m *MockConfigManager) GetProjectConfigInfo() domain.ConfigInfo {
	return m.ProjectConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitProjectConfig records the call and returns configured error.
func (m *MockConfigManager) InitProjectConfig(_ *domain.Config) error {
	m.InitProjectCalled = true
	return m.InitProjectErr
}

// InitGlobalConfig records the call and returns configured error.
func (m *MockConfigManager) InitGlobalConfig(_ *domain.Config) error {
	m.InitGlobalCalled = true
	return m.InitGlobalErr
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config *domain.Config
	Err    error
}

// Ensure MockConfigLoader implements domain.ConfigLoader interface.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// NewMockConfigLoader creates a MockConfigLoader returning the default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{Config: domain.NewDefaultConfig()}
}

// Load returns the configured config or error.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Config, nil
}
