// Package filestore provides the markdown file implementation of domain.TaskStore.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/runoshun/mdboard/internal/domain"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// writeFileFunc replaces a file atomically. It is a variable so tests can fail writes.
var writeFileFunc = atomic.WriteFile

// Store implements domain.TaskStore using one markdown file per task.
type Store struct {
	clock    domain.Clock
	logger   *slog.Logger
	tasksDir string
	columns  []domain.ColumnConfig
	scheme   domain.OrderScheme
}

// Options configures a Store. Zero values fall back to defaults.
type Options struct {
	Clock   domain.Clock
	Logger  *slog.Logger
	Columns []domain.ColumnConfig
	Step    float64
}

// New creates a Store for tasksDir.
func New(tasksDir string, opts Options) *Store {
	s := &Store{
		tasksDir: tasksDir,
		columns:  opts.Columns,
		scheme:   domain.NewOrderScheme(opts.Step),
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
	if len(s.columns) == 0 {
		s.columns = domain.DefaultColumns()
	}
	if s.clock == nil {
		s.clock = domain.RealClock{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// TasksDir returns the directory the store reads and writes.
func (s *Store) TasksDir() string {
	return s.tasksDir
}

// LoadBoard scans the task directory and groups tasks into columns.
// Files that fail to parse are logged and skipped.
func (s *Store) LoadBoard(ctx context.Context) (*domain.Board, error) {
	tasks, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	board := domain.NewBoard(s.tasksDir, s.columns, s.clock.Now())
	for _, task := range tasks {
		col := board.Column(task.Metadata.Status)
		if col == nil {
			s.logger.Warn("dropping task with unconfigured status",
				"id", task.ID, "status", string(task.Metadata.Status), "path", task.FilePath)
			continue
		}
		col.Tasks = append(col.Tasks, task)
	}
	for i := range board.Columns {
		domain.SortTasks(board.Columns[i].Tasks)
	}
	return board, nil
}

// LoadTask returns the task with the given id, or nil if it does not exist.
func (s *Store) LoadTask(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.FindTaskFilePath(id)
	if err != nil || path == "" {
		return nil, err
	}
	return s.readTask(path)
}

// FindTaskFilePath returns the file holding the task id, or "" when none does.
// The canonical <id>.md path is tried before scanning the directory.
func (s *Store) FindTaskFilePath(id string) (string, error) {
	if id == "" {
		return "", nil
	}
	if domain.IsValidTaskID(id) {
		path := domain.TaskFilePath(s.tasksDir, id)
		if task, err := s.readTask(path); err == nil && task.ID == id {
			return path, nil
		}
	}

	names, err := s.listTaskFiles()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		path := filepath.Join(s.tasksDir, name)
		task, err := s.readTask(path)
		if err != nil {
			continue
		}
		if task.ID == id {
			return path, nil
		}
	}
	return "", nil
}

// Create writes a new task file. The id is derived from the title and made
// unique with a random suffix when taken.
func (s *Store) Create(ctx context.Context, in domain.CreateTaskInput) (*domain.Task, error) {
	in, err := validateCreate(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkColumn(in.Status); err != nil {
		return nil, err
	}

	existing, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	var last *float64
	for _, t := range existing {
		taken[t.ID] = true
		if t.Metadata.Status == in.Status && (last == nil || t.Metadata.Order > *last) {
			o := t.Metadata.Order
			last = &o
		}
	}

	id := domain.TaskIDFromTitle(in.Title)
	for taken[id] || fileExists(domain.TaskFilePath(s.tasksDir, id)) {
		id = domain.TaskIDFromTitle(in.Title) + "-" + uuid.NewString()[:8]
	}

	order := 0.0
	if in.Order != nil {
		order = *in.Order
	} else if order, err = s.scheme.Between(last, nil); err != nil {
		return nil, fmt.Errorf("compute order: %w", err)
	}

	labels := in.Labels
	if labels == nil {
		labels = []string{}
	}
	task := &domain.Task{
		ID:       id,
		FilePath: domain.TaskFilePath(s.tasksDir, id),
		Content:  strings.TrimSpace(in.Content),
		Metadata: domain.TaskMetadata{
			ID:       id,
			Title:    in.Title,
			Status:   in.Status,
			Priority: in.Priority,
			Labels:   labels,
			Assignee: strings.TrimSpace(in.Assignee),
			Created:  s.clock.Now().Format(domain.DateLayout),
			Due:      in.Due,
			Order:    order,
		},
	}
	if err := s.writeTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update merges a patch into an existing task file.
func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	patch, err := validatePatch(patch)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		if err := s.checkColumn(*patch.Status); err != nil {
			return nil, err
		}
	}
	task, err := s.mustLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.ApplyTo(task)
	if err := s.writeTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task file.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.FindTaskFilePath(id)
	if err != nil {
		return err
	}
	if path == "" {
		return domain.ErrTaskNotFound
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove task file: %w", err)
	}
	return nil
}

// Move sets a task's status and order together with any renumbered
// siblings. Siblings are written before the task; if any write fails the
// files already written are restored, so a failed move leaves disk unchanged.
func (s *Store) Move(ctx context.Context, in domain.MoveTaskInput) (*domain.Task, error) {
	if !in.NewStatus.IsValid() {
		return nil, fmt.Errorf("%q: %w", in.NewStatus, domain.ErrInvalidStatus)
	}
	if err := s.checkColumn(in.NewStatus); err != nil {
		return nil, err
	}
	if err := checkOrder(in.NewOrder); err != nil {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{{Field: "order", Message: err.Error()}}}
	}

	task, err := s.mustLoad(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	task.Metadata.Status = in.NewStatus
	task.Metadata.Order = in.NewOrder

	writes := make([]*domain.Task, 0, len(in.Renumber)+1)
	for _, siblingID := range slices.Sorted(maps.Keys(in.Renumber)) {
		if siblingID == in.TaskID {
			continue
		}
		sibling, err := s.LoadTask(ctx, siblingID)
		if err != nil {
			return nil, err
		}
		if sibling == nil {
			s.logger.Warn("renumber target missing", "id", siblingID)
			continue
		}
		sibling.Metadata.Order = in.Renumber[siblingID]
		writes = append(writes, sibling)
	}
	writes = append(writes, task)

	if err := s.writeAll(writes); err != nil {
		return nil, err
	}
	return task, nil
}

// writeAll writes tasks in order. On failure it puts back the original
// contents of the files it already wrote.
func (s *Store) writeAll(tasks []*domain.Task) error {
	originals := make([][]byte, len(tasks))
	for i, t := range tasks {
		data, err := os.ReadFile(t.FilePath)
		if err != nil {
			return fmt.Errorf("read task file: %w", err)
		}
		originals[i] = data
	}

	for i, t := range tasks {
		err := s.writeTask(t)
		if err == nil {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if rerr := restoreFile(tasks[j].FilePath, originals[j]); rerr != nil {
				s.logger.Error("failed to restore task file", "id", tasks[j].ID, "path", tasks[j].FilePath, "error", rerr)
			}
		}
		return fmt.Errorf("%s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) mustLoad(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.LoadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	return task, nil
}

func (s *Store) checkColumn(status domain.Status) error {
	for _, col := range s.columns {
		if col.ID == status {
			return nil
		}
	}
	return fmt.Errorf("%q: %w", status, domain.ErrUnknownColumn)
}

// scan reads every task file, skipping ones that fail to parse and
// duplicates of an id already seen.
func (s *Store) scan(ctx context.Context) ([]*domain.Task, error) {
	if err := os.MkdirAll(s.tasksDir, dirPerms); err != nil {
		return nil, fmt.Errorf("create tasks directory: %w", err)
	}
	names, err := s.listTaskFiles()
	if err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(s.tasksDir, name)
		task, err := s.readTask(path)
		if err != nil {
			s.logger.Warn("skipping task file", "path", path, "error", err)
			continue
		}
		if first, dup := seen[task.ID]; dup {
			s.logger.Warn("skipping duplicate task id", "path", path, "id", task.ID, "first", first)
			continue
		}
		seen[task.ID] = path
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// listTaskFiles returns task file names in directory order.
func (s *Store) listTaskFiles() ([]string, error) {
	entries, err := os.ReadDir(s.tasksDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tasks directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !domain.IsTaskFileName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *Store) readTask(path string) (*domain.Task, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ParseError{Path: path, Err: fmt.Errorf("read task file: %w", err)}
	}
	task, err := Parse(path, string(content))
	if err != nil {
		return nil, err
	}
	if task.Metadata.Created == "" {
		if info, statErr := os.Stat(path); statErr == nil {
			task.Metadata.Created = info.ModTime().Format(domain.DateLayout)
		}
	}
	return task, nil
}

func (s *Store) writeTask(task *domain.Task) error {
	if task.Metadata.Created == "" {
		task.Metadata.Created = s.clock.Now().Format(domain.DateLayout)
	}
	content, err := Serialize(task)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(task.FilePath), dirPerms); err != nil {
		return fmt.Errorf("create tasks directory: %w", err)
	}
	if err := writeFileFunc(task.FilePath, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	// atomic.WriteFile creates new files with 0600
	if err := os.Chmod(task.FilePath, filePerms); err != nil {
		return fmt.Errorf("set task file permissions: %w", err)
	}
	return nil
}

func restoreFile(path string, data []byte) error {
	if err := writeFileFunc(path, bytes.NewReader(data)); err != nil {
		return err
	}
	return os.Chmod(path, filePerms)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
