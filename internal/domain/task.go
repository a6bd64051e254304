// Package domain contains core business entities and interfaces.
package domain

import "slices"

// DateLayout is the canonical layout of created and due dates.
const DateLayout = "2006-01-02"

// TaskMetadata is the structured front-matter attached to a task file.
// Empty Assignee and Due mean the field is absent.
type TaskMetadata struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
	Labels   []string `json:"labels"`
	Assignee string   `json:"assignee,omitempty"`
	Created  string   `json:"created"`
	Due      string   `json:"due,omitempty"`
	Order    float64  `json:"order"`
}

// Task is a single task file: its location, metadata and markdown body.
// ID always equals Metadata.ID.
type Task struct {
	ID       string       `json:"id"`
	FilePath string       `json:"filePath"`
	Content  string       `json:"content"`
	Metadata TaskMetadata `json:"metadata"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Metadata.Labels = cloneLabels(t.Metadata.Labels)
	return &c
}

// Status returns the task's column status.
func (t *Task) Status() Status {
	return t.Metadata.Status
}

// Order returns the task's sort key within its column.
func (t *Task) Order() float64 {
	return t.Metadata.Order
}

func cloneLabels(labels []string) []string {
	if labels == nil {
		return []string{}
	}
	return slices.Clone(labels)
}

// TaskPatch describes a partial update of a task.
// Nil fields are left unchanged. A non-nil pointer to "" clears Assignee or Due.
type TaskPatch struct {
	Title    *string
	Status   *Status
	Priority *Priority
	Labels   *[]string
	Assignee *string
	Due      *string
	Order    *float64
	Content  *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Status == nil && p.Priority == nil && p.Labels == nil &&
		p.Assignee == nil && p.Due == nil && p.Order == nil && p.Content == nil
}

// ApplyTo merges the patch into the task in place.
func (p TaskPatch) ApplyTo(t *Task) {
	if p.Title != nil {
		t.Metadata.Title = *p.Title
	}
	if p.Status != nil {
		t.Metadata.Status = *p.Status
	}
	if p.Priority != nil {
		t.Metadata.Priority = *p.Priority
	}
	if p.Labels != nil {
		t.Metadata.Labels = cloneLabels(*p.Labels)
	}
	if p.Assignee != nil {
		t.Metadata.Assignee = *p.Assignee
	}
	if p.Due != nil {
		t.Metadata.Due = *p.Due
	}
	if p.Order != nil {
		t.Metadata.Order = *p.Order
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
}

// CreateTaskInput describes a task to be created.
// Order nil means "append to the end of the target column".
type CreateTaskInput struct {
	Title    string
	Status   Status
	Priority Priority
	Labels   []string
	Assignee string
	Due      string
	Content  string
	Order    *float64
}

// MoveTaskInput describes a move of a task to a column and sort key.
// Renumber carries replacement order values for siblings in the destination
// column when the ordering scheme had to renumber it.
type MoveTaskInput struct {
	Renumber  map[string]float64 `json:"renumber,omitempty"`
	TaskID    string             `json:"taskId"`
	NewStatus Status             `json:"newStatus"`
	NewOrder  float64            `json:"newOrder"`
}
