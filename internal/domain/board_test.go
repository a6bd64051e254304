package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(id string, status Status, order float64) *Task {
	return &Task{
		ID:       id,
		FilePath: "/tasks/" + id + ".md",
		Content:  "body of " + id,
		Metadata: TaskMetadata{
			ID:       id,
			Title:    "Title " + id,
			Status:   status,
			Priority: PriorityMedium,
			Labels:   []string{"x"},
			Created:  "2025-01-15",
			Order:    order,
		},
	}
}

func sampleBoard() *Board {
	b := NewBoard("/tasks", DefaultColumns(), time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	b.Column(StatusTodo).Tasks = []*Task{newTask("a", StatusTodo, 10), newTask("b", StatusTodo, 20)}
	b.Column(StatusDone).Tasks = []*Task{newTask("c", StatusDone, 10)}
	return b
}

func ids(col *Column) []string {
	out := make([]string, 0, len(col.Tasks))
	for _, t := range col.Tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestNewBoard(t *testing.T) {
	b := NewBoard("/tasks", DefaultColumns(), time.Now())
	require.Len(t, b.Columns, 4)
	for i, s := range AllStatuses() {
		assert.Equal(t, s, b.Columns[i].ID)
		assert.NotNil(t, b.Columns[i].Tasks)
		assert.Empty(t, b.Columns[i].Tasks)
	}
	assert.Nil(t, b.Column("archived"))
}

func TestBoard_Clone_IsDeep(t *testing.T) {
	b := sampleBoard()
	c := b.Clone()
	require.Equal(t, b, c)

	c.Column(StatusTodo).Tasks[0].Metadata.Title = "changed"
	c.Column(StatusTodo).Tasks[0].Metadata.Labels[0] = "changed"
	c.Column(StatusTodo).Tasks = c.Column(StatusTodo).Tasks[:1]

	assert.Equal(t, "Title a", b.Column(StatusTodo).Tasks[0].Metadata.Title)
	assert.Equal(t, "x", b.Column(StatusTodo).Tasks[0].Metadata.Labels[0])
	assert.Len(t, b.Column(StatusTodo).Tasks, 2)
}

func TestBoard_LayoutAndLocate(t *testing.T) {
	b := sampleBoard()
	l := b.Layout()
	assert.Equal(t, []string{"a", "b"}, l[StatusTodo])
	assert.Equal(t, []string{}, l[StatusReview])

	status, idx, ok := l.Locate("b")
	assert.True(t, ok)
	assert.Equal(t, StatusTodo, status)
	assert.Equal(t, 1, idx)

	_, _, ok = l.Locate("missing")
	assert.False(t, ok)

	c := l.Clone()
	c[StatusTodo][0] = "z"
	assert.Equal(t, "a", l[StatusTodo][0])
	assert.Equal(t, 3, b.TaskCount())
}

func TestSortTasks_StableOnTies(t *testing.T) {
	tasks := []*Task{newTask("a", StatusTodo, 5), newTask("b", StatusTodo, 1), newTask("c", StatusTodo, 5)}
	SortTasks(tasks)
	assert.Equal(t, "b", tasks[0].ID)
	assert.Equal(t, "a", tasks[1].ID)
	assert.Equal(t, "c", tasks[2].ID)
}

func TestApplyCreate_PrependsWithoutMutatingInput(t *testing.T) {
	b := sampleBoard()
	got := ApplyCreate(b, newTask("tmp-1", StatusTodo, 0))

	assert.Equal(t, []string{"tmp-1", "a", "b"}, ids(got.Column(StatusTodo)))
	assert.Equal(t, []string{"a", "b"}, ids(b.Column(StatusTodo)))
}

func TestApplyCreate_UnknownColumn(t *testing.T) {
	b := sampleBoard()
	got := ApplyCreate(b, newTask("x", "archived", 0))
	assert.Equal(t, b, got)
}

func TestApplyUpdate(t *testing.T) {
	t.Run("merge fields", func(t *testing.T) {
		title := "New title"
		got := ApplyUpdate(sampleBoard(), "a", TaskPatch{Title: &title})
		assert.Equal(t, "New title", got.FindTask("a").Metadata.Title)
	})

	t.Run("order change re-sorts", func(t *testing.T) {
		order := 30.0
		got := ApplyUpdate(sampleBoard(), "a", TaskPatch{Order: &order})
		assert.Equal(t, []string{"b", "a"}, ids(got.Column(StatusTodo)))
	})

	t.Run("status change moves column", func(t *testing.T) {
		status := StatusDone
		got := ApplyUpdate(sampleBoard(), "a", TaskPatch{Status: &status})
		assert.Equal(t, []string{"b"}, ids(got.Column(StatusTodo)))
		assert.Equal(t, []string{"a", "c"}, ids(got.Column(StatusDone)))
	})

	t.Run("status to unknown column is ignored", func(t *testing.T) {
		status := Status("archived")
		got := ApplyUpdate(sampleBoard(), "a", TaskPatch{Status: &status})
		assert.Equal(t, StatusTodo, got.FindTask("a").Metadata.Status)
		assert.Equal(t, []string{"a", "b"}, ids(got.Column(StatusTodo)))
	})

	t.Run("missing task", func(t *testing.T) {
		title := "x"
		b := sampleBoard()
		assert.Equal(t, b, ApplyUpdate(b, "missing", TaskPatch{Title: &title}))
	})
}

func TestApplyDelete(t *testing.T) {
	b := sampleBoard()
	got := ApplyDelete(b, "a")
	assert.Nil(t, got.FindTask("a"))
	assert.NotNil(t, b.FindTask("a"))
	assert.Equal(t, 2, got.TaskCount())
}

func TestApplyMove(t *testing.T) {
	t.Run("within column", func(t *testing.T) {
		got := ApplyMove(sampleBoard(), MoveTaskInput{TaskID: "a", NewStatus: StatusTodo, NewOrder: 30})
		assert.Equal(t, []string{"b", "a"}, ids(got.Column(StatusTodo)))
		assert.Equal(t, 30.0, got.FindTask("a").Metadata.Order)
	})

	t.Run("across columns", func(t *testing.T) {
		got := ApplyMove(sampleBoard(), MoveTaskInput{TaskID: "a", NewStatus: StatusDone, NewOrder: 5})
		assert.Equal(t, []string{"b"}, ids(got.Column(StatusTodo)))
		assert.Equal(t, []string{"a", "c"}, ids(got.Column(StatusDone)))
		assert.Equal(t, StatusDone, got.FindTask("a").Metadata.Status)
	})

	t.Run("with renumber", func(t *testing.T) {
		got := ApplyMove(sampleBoard(), MoveTaskInput{
			TaskID:    "c",
			NewStatus: StatusTodo,
			NewOrder:  20,
			Renumber:  map[string]float64{"a": 10, "b": 30},
		})
		assert.Equal(t, []string{"a", "c", "b"}, ids(got.Column(StatusTodo)))
		assert.Equal(t, 30.0, got.FindTask("b").Metadata.Order)
	})

	t.Run("unknown column leaves board unchanged", func(t *testing.T) {
		b := sampleBoard()
		assert.Equal(t, b, ApplyMove(b, MoveTaskInput{TaskID: "a", NewStatus: "archived", NewOrder: 1}))
	})
}

func TestTaskPatch(t *testing.T) {
	assert.True(t, TaskPatch{}.IsEmpty())

	empty := ""
	labels := []string{"a", "b"}
	task := newTask("a", StatusTodo, 1)
	task.Metadata.Assignee = "alice"
	TaskPatch{Assignee: &empty, Labels: &labels}.ApplyTo(task)
	assert.Equal(t, "", task.Metadata.Assignee)
	assert.Equal(t, []string{"a", "b"}, task.Metadata.Labels)

	labels[0] = "mutated"
	assert.Equal(t, "a", task.Metadata.Labels[0])
}
