package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestCalculateNewOrder(t *testing.T) {
	tests := []struct {
		name string
		prev *float64
		next *float64
		want float64
	}{
		{"empty column", nil, nil, DefaultOrderStep},
		{"append after last", f64(20), nil, 30},
		{"prepend before first", nil, f64(10), 0},
		{"prepend with room", nil, f64(25), 15},
		{"prepend rebases above zero", nil, f64(4), 2},
		{"between integers", f64(10), f64(20), 15},
		{"between fractions", f64(1.5), f64(1.75), 1.625},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateNewOrder(tt.prev, tt.next)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateNewOrder_StrictlyBetween(t *testing.T) {
	pairs := [][2]float64{{0, 1}, {10, 20}, {-5, 5}, {1e6, 1e6 + 1}, {0.1, 0.2}, {3, 3.000001}}
	for _, p := range pairs {
		t.Run(fmt.Sprintf("%v-%v", p[0], p[1]), func(t *testing.T) {
			got, err := CalculateNewOrder(f64(p[0]), f64(p[1]))
			require.NoError(t, err)
			assert.Greater(t, got, p[0])
			assert.Less(t, got, p[1])
		})
	}
}

func TestCalculateNewOrder_NeverNegativeAtStart(t *testing.T) {
	next := 10.0
	for i := 0; i < 20; i++ {
		got, err := CalculateNewOrder(nil, &next)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.Less(t, got, next)
		next = got
		if next == 0 {
			break
		}
	}
}

func TestCalculateNewOrder_Exhausted(t *testing.T) {
	tests := []struct {
		name string
		prev *float64
		next *float64
	}{
		{"equal neighbors", f64(5), f64(5)},
		{"inverted neighbors", f64(6), f64(5)},
		{"gap below epsilon", f64(1), f64(1 + MinOrderGap/2)},
		{"prepend before zero", nil, f64(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateNewOrder(tt.prev, tt.next)
			assert.True(t, errors.Is(err, ErrOrderExhausted))
		})
	}
}

func TestCalculateNewOrder_RepeatedInsertionExhaustsGap(t *testing.T) {
	lo, hi := 10.0, 11.0
	exhaustedAt := -1
	for i := 0; i < 100; i++ {
		mid, err := CalculateNewOrder(&lo, &hi)
		if errors.Is(err, ErrOrderExhausted) {
			exhaustedAt = i
			break
		}
		require.NoError(t, err)
		require.NotEqual(t, lo, mid)
		require.NotEqual(t, hi, mid)
		hi = mid
	}
	assert.Greater(t, exhaustedAt, 0, "gap must eventually be reported as exhausted")
	assert.Less(t, exhaustedAt, 60)
}

func TestOrderScheme_Renumber(t *testing.T) {
	s := NewOrderScheme(10)
	got := s.Renumber([]string{"a", "b", "c"})
	assert.Equal(t, map[string]float64{"a": 10, "b": 20, "c": 30}, got)

	assert.Equal(t, DefaultOrderStep, NewOrderScheme(0).Step)
	assert.Equal(t, DefaultOrderStep, NewOrderScheme(-1).Step)
}

func tasksWithOrders(orders ...float64) []*Task {
	tasks := make([]*Task, 0, len(orders))
	for i, o := range orders {
		id := fmt.Sprintf("t%d", i)
		tasks = append(tasks, &Task{ID: id, Metadata: TaskMetadata{ID: id, Order: o}})
	}
	return tasks
}

func TestOrderScheme_Place(t *testing.T) {
	s := NewOrderScheme(10)

	t.Run("empty column", func(t *testing.T) {
		p := s.Place(nil, "x", 0)
		assert.Equal(t, 10.0, p.Order)
		assert.Nil(t, p.Renumber)
	})

	t.Run("end of column", func(t *testing.T) {
		p := s.Place(tasksWithOrders(10, 20), "x", 2)
		assert.Equal(t, 30.0, p.Order)
		assert.Nil(t, p.Renumber)
	})

	t.Run("middle of column", func(t *testing.T) {
		p := s.Place(tasksWithOrders(10, 20), "x", 1)
		assert.Equal(t, 15.0, p.Order)
	})

	t.Run("index clamped", func(t *testing.T) {
		assert.Equal(t, 30.0, s.Place(tasksWithOrders(10, 20), "x", 99).Order)
		assert.Equal(t, 0.0, s.Place(tasksWithOrders(10, 20), "x", -3).Order)
	})

	t.Run("exhausted gap renumbers column", func(t *testing.T) {
		siblings := tasksWithOrders(1, 1+MinOrderGap/4, 5)
		p := s.Place(siblings, "x", 1)
		require.NotNil(t, p.Renumber)
		assert.Equal(t, 20.0, p.Order)
		assert.Equal(t, map[string]float64{"t0": 10, "t1": 30, "t2": 40}, p.Renumber)
	})

	t.Run("tied keys renumber", func(t *testing.T) {
		p := s.Place(tasksWithOrders(7, 7), "x", 1)
		require.NotNil(t, p.Renumber)
		assert.Equal(t, 20.0, p.Order)
		assert.Equal(t, 10.0, p.Renumber["t0"])
		assert.Equal(t, 30.0, p.Renumber["t1"])
	})
}

func TestOrderScheme_PlanMove(t *testing.T) {
	board := NewBoard("/tasks", DefaultColumns(), time.Time{})
	board.Column(StatusTodo).Tasks = []*Task{
		{ID: "task-a", Metadata: TaskMetadata{ID: "task-a", Status: StatusTodo, Order: 10}},
		{ID: "task-b", Metadata: TaskMetadata{ID: "task-b", Status: StatusTodo, Order: 20}},
	}
	s := NewOrderScheme(10)

	t.Run("after last sibling", func(t *testing.T) {
		in, err := s.PlanMove(board, "task-a", StatusTodo, 1)
		require.NoError(t, err)
		assert.Equal(t, MoveTaskInput{TaskID: "task-a", NewStatus: StatusTodo, NewOrder: 30}, in)
	})

	t.Run("into empty column", func(t *testing.T) {
		in, err := s.PlanMove(board, "task-b", StatusReview, 0)
		require.NoError(t, err)
		assert.Equal(t, 10.0, in.NewOrder)
		assert.Equal(t, StatusReview, in.NewStatus)
	})

	t.Run("between siblings", func(t *testing.T) {
		board := board.Clone()
		board.Column(StatusDone).Tasks = []*Task{newTask("c", StatusDone, 0)}
		in, err := s.PlanMove(board, "c", StatusTodo, 1)
		require.NoError(t, err)
		assert.Equal(t, 15.0, in.NewOrder)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := s.PlanMove(board, "task-a", "archived", 0)
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := s.PlanMove(board, "nope", StatusTodo, 0)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}
