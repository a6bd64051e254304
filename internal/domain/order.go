package domain

import "fmt"

const (
	// DefaultOrderStep is the spacing between consecutive order keys.
	DefaultOrderStep = 10.0
	// MinOrderGap is the smallest gap the scheme will split.
	MinOrderGap = 1e-9
)

// OrderScheme computes fractional sort keys for tasks within a column.
type OrderScheme struct {
	Step float64
}

// NewOrderScheme creates an OrderScheme. A non-positive step uses DefaultOrderStep.
func NewOrderScheme(step float64) OrderScheme {
	if step <= 0 {
		step = DefaultOrderStep
	}
	return OrderScheme{Step: step}
}

// CalculateNewOrder computes an order key between two optional neighbors using
// the default step.
func CalculateNewOrder(prev, next *float64) (float64, error) {
	return NewOrderScheme(DefaultOrderStep).Between(prev, next)
}

// Between returns an order key strictly between prev and next.
// A nil neighbor means the insertion is at that boundary of the column.
// ErrOrderExhausted is returned when no distinct key fits; callers renumber
// the column instead.
func (s OrderScheme) Between(prev, next *float64) (float64, error) {
	step := s.step()
	switch {
	case prev == nil && next == nil:
		return step, nil
	case next == nil:
		return *prev + step, nil
	case prev == nil:
		if *next-step >= 0 {
			return *next - step, nil
		}
		return s.midpoint(0, *next)
	default:
		return s.midpoint(*prev, *next)
	}
}

func (s OrderScheme) midpoint(lo, hi float64) (float64, error) {
	if hi-lo < MinOrderGap {
		return 0, fmt.Errorf("between %v and %v: %w", lo, hi, ErrOrderExhausted)
	}
	mid := lo + (hi-lo)/2
	if mid <= lo || mid >= hi {
		return 0, fmt.Errorf("between %v and %v: %w", lo, hi, ErrOrderExhausted)
	}
	return mid, nil
}

func (s OrderScheme) step() float64 {
	if s.Step <= 0 {
		return DefaultOrderStep
	}
	return s.Step
}

// Renumber assigns evenly spaced keys step, 2*step, ... to ids in order.
func (s OrderScheme) Renumber(ids []string) map[string]float64 {
	step := s.step()
	orders := make(map[string]float64, len(ids))
	for i, id := range ids {
		orders[id] = float64(i+1) * step
	}
	return orders
}

// Placement is the outcome of positioning a task inside a column.
// Renumber is non-nil only when the column had to be renumbered, and then
// holds the new keys of every sibling.
type Placement struct {
	Renumber map[string]float64
	Order    float64
}

// Place computes the order for taskID inserted at index among siblings.
// siblings must be sorted ascending by order and must not contain taskID.
func (s OrderScheme) Place(siblings []*Task, taskID string, index int) Placement {
	if index < 0 {
		index = 0
	}
	if index > len(siblings) {
		index = len(siblings)
	}
	var prev, next *float64
	if index > 0 {
		v := siblings[index-1].Metadata.Order
		prev = &v
	}
	if index < len(siblings) {
		v := siblings[index].Metadata.Order
		next = &v
	}
	order, err := s.Between(prev, next)
	if err == nil {
		return Placement{Order: order}
	}

	ids := make([]string, 0, len(siblings)+1)
	for i, t := range siblings {
		if i == index {
			ids = append(ids, taskID)
		}
		ids = append(ids, t.ID)
	}
	if index == len(siblings) {
		ids = append(ids, taskID)
	}
	orders := s.Renumber(ids)
	placed := orders[taskID]
	delete(orders, taskID)
	return Placement{Order: placed, Renumber: orders}
}

// PlanMove computes the move that places taskID at index within the column
// for status, indexing the column as it would look without the task.
func (s OrderScheme) PlanMove(board *Board, taskID string, status Status, index int) (MoveTaskInput, error) {
	col := board.Column(status)
	if col == nil {
		return MoveTaskInput{}, fmt.Errorf("%q: %w", status, ErrUnknownColumn)
	}
	if board.FindTask(taskID) == nil {
		return MoveTaskInput{}, fmt.Errorf("%s: %w", taskID, ErrTaskNotFound)
	}
	siblings := make([]*Task, 0, len(col.Tasks))
	for _, t := range col.Tasks {
		if t.ID != taskID {
			siblings = append(siblings, t)
		}
	}
	p := s.Place(siblings, taskID, index)
	return MoveTaskInput{
		TaskID:    taskID,
		NewStatus: status,
		NewOrder:  p.Order,
		Renumber:  p.Renumber,
	}, nil
}
