package domain

import (
	"slices"
	"sort"
	"time"
)

// ColumnConfig is the static definition of a board column.
// Limit 0 means unlimited.
type ColumnConfig struct {
	ID    Status `json:"id" toml:"id"`
	Title string `json:"title" toml:"title"`
	Color string `json:"color,omitempty" toml:"color,omitempty"`
	Limit int    `json:"limit,omitempty" toml:"limit,omitempty"`
}

// DefaultColumns returns the default four-column configuration.
func DefaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: StatusTodo, Title: StatusTodo.Display(), Color: "#6b7280"},
		{ID: StatusInProgress, Title: StatusInProgress.Display(), Color: "#3b82f6"},
		{ID: StatusReview, Title: StatusReview.Display(), Color: "#f59e0b"},
		{ID: StatusDone, Title: StatusDone.Display(), Color: "#10b981"},
	}
}

// Column is a configured column with its tasks sorted ascending by order.
type Column struct {
	ColumnConfig
	Tasks []*Task `json:"tasks"`
}

// Board is the in-memory grouping of a task directory into columns.
// It is derived state and never persisted as such.
type Board struct {
	LastUpdated time.Time `json:"lastUpdated"`
	TasksDir    string    `json:"tasksDir"`
	Columns     []Column  `json:"columns"`
}

// NewBoard creates an empty board for the given column configuration.
func NewBoard(tasksDir string, columns []ColumnConfig, now time.Time) *Board {
	b := &Board{
		TasksDir:    tasksDir,
		LastUpdated: now,
		Columns:     make([]Column, 0, len(columns)),
	}
	for _, cfg := range columns {
		b.Columns = append(b.Columns, Column{ColumnConfig: cfg, Tasks: []*Task{}})
	}
	return b
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	c := &Board{
		LastUpdated: b.LastUpdated,
		TasksDir:    b.TasksDir,
		Columns:     make([]Column, len(b.Columns)),
	}
	for i, col := range b.Columns {
		tasks := make([]*Task, len(col.Tasks))
		for j, t := range col.Tasks {
			tasks[j] = t.Clone()
		}
		c.Columns[i] = Column{ColumnConfig: col.ColumnConfig, Tasks: tasks}
	}
	return c
}

// Column returns the column with the given status, or nil.
func (b *Board) Column(status Status) *Column {
	for i := range b.Columns {
		if b.Columns[i].ID == status {
			return &b.Columns[i]
		}
	}
	return nil
}

// FindTask locates a task by id. It returns nil when the task is not on the board.
func (b *Board) FindTask(id string) *Task {
	for _, col := range b.Columns {
		for _, t := range col.Tasks {
			if t.ID == id {
				return t
			}
		}
	}
	return nil
}

// TaskCount returns the number of tasks across all columns.
func (b *Board) TaskCount() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Tasks)
	}
	return n
}

// Layout returns the column-to-ids mapping of the board.
func (b *Board) Layout() Layout {
	l := make(Layout, len(b.Columns))
	for _, col := range b.Columns {
		ids := make([]string, 0, len(col.Tasks))
		for _, t := range col.Tasks {
			ids = append(ids, t.ID)
		}
		l[col.ID] = ids
	}
	return l
}

// Layout maps each column to its ordered task ids.
type Layout map[Status][]string

// Clone returns a deep copy of the layout.
func (l Layout) Clone() Layout {
	c := make(Layout, len(l))
	for k, ids := range l {
		c[k] = slices.Clone(ids)
	}
	return c
}

// Locate returns the column and index of a task id.
func (l Layout) Locate(id string) (Status, int, bool) {
	for status, ids := range l {
		if i := slices.Index(ids, id); i >= 0 {
			return status, i, true
		}
	}
	return "", -1, false
}

// SortTasks sorts tasks ascending by order. Ties keep their input order.
func SortTasks(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Metadata.Order < tasks[j].Metadata.Order
	})
}

// removeTask removes a task from every column and returns it.
func (b *Board) removeTask(id string) *Task {
	var removed *Task
	for i := range b.Columns {
		col := &b.Columns[i]
		idx := slices.IndexFunc(col.Tasks, func(t *Task) bool { return t.ID == id })
		if idx < 0 {
			continue
		}
		removed = col.Tasks[idx]
		col.Tasks = slices.Delete(col.Tasks, idx, idx+1)
	}
	return removed
}

// ApplyCreate returns a copy of the board with the task prepended to its column.
// The board is returned unchanged when no column matches the task's status.
func ApplyCreate(b *Board, task *Task) *Board {
	next := b.Clone()
	col := next.Column(task.Metadata.Status)
	if col == nil {
		return next
	}
	col.Tasks = append([]*Task{task.Clone()}, col.Tasks...)
	return next
}

// ApplyUpdate returns a copy of the board with the patch merged into the task.
// A status change moves the task to the end of the new column before sorting.
func ApplyUpdate(b *Board, id string, patch TaskPatch) *Board {
	next := b.Clone()
	task := next.FindTask(id)
	if task == nil {
		return next
	}
	oldStatus := task.Metadata.Status
	patch.ApplyTo(task)
	if task.Metadata.Status != oldStatus {
		dest := next.Column(task.Metadata.Status)
		if dest == nil {
			task.Metadata.Status = oldStatus
			return next
		}
		next.removeTask(id)
		dest.Tasks = append(dest.Tasks, task)
	}
	if patch.Order != nil || patch.Status != nil {
		if col := next.Column(task.Metadata.Status); col != nil {
			SortTasks(col.Tasks)
		}
	}
	return next
}

// ApplyDelete returns a copy of the board without the task.
func ApplyDelete(b *Board, id string) *Board {
	next := b.Clone()
	next.removeTask(id)
	return next
}

// ApplyMove returns a copy of the board with the task moved to the new column
// and order, sibling renumbering applied, and the destination column re-sorted.
func ApplyMove(b *Board, in MoveTaskInput) *Board {
	next := b.Clone()
	dest := next.Column(in.NewStatus)
	if dest == nil || next.FindTask(in.TaskID) == nil {
		return next
	}
	task := next.removeTask(in.TaskID)
	task.Metadata.Status = in.NewStatus
	task.Metadata.Order = in.NewOrder
	for _, sibling := range dest.Tasks {
		if order, ok := in.Renumber[sibling.ID]; ok {
			sibling.Metadata.Order = order
		}
	}
	dest.Tasks = append(dest.Tasks, task)
	SortTasks(dest.Tasks)
	return next
}
