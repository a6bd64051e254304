// Package drag turns pointer drag gestures over a board into move mutations.
package drag

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/runoshun/mdboard/internal/domain"
)

// Kind identifies what a drag event refers to.
type Kind string

const (
	KindTask   Kind = "task"
	KindColumn Kind = "column"
)

// Event is a pointer event during a drag.
// OverID is a task id when OverKind is KindTask and a column status when it
// is KindColumn. After places the dragged task below the task under the
// pointer instead of above it.
type Event struct {
	ActiveID   string
	ActiveKind Kind
	OverID     string
	OverKind   Kind
	After      bool
	Canceled   bool
}

// MoveFunc issues the move mutation for a completed drop.
type MoveFunc func(ctx context.Context, in domain.MoveTaskInput) error

// State is what a view needs to render a drag in progress.
type State struct {
	Active   *domain.Task  // Dragged task, nil when the source did not resolve
	Layout   domain.Layout // Live column-to-ids mapping
	Dragging bool
}

// Result reports how a drag ended.
type Result struct {
	Move      *domain.MoveTaskInput // Issued move, nil when nothing was committed
	Committed bool
}

// Controller tracks one drag gesture at a time.
// DragOver only touches the in-memory working layout; the only write is the
// move issued from DragEnd.
type Controller struct {
	move     MoveFunc
	logger   *slog.Logger
	board    *domain.Board
	active   *domain.Task
	snapshot domain.Layout
	working  domain.Layout
	subs     map[int]func(State)
	scheme   domain.OrderScheme
	nextSub  int
	mu       sync.Mutex
	dragging bool
}

// NewController creates a Controller that commits drops through move.
func NewController(scheme domain.OrderScheme, move MoveFunc, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		scheme: scheme,
		move:   move,
		logger: logger,
		subs:   make(map[int]func(State)),
	}
}

// DragStart captures the board layout and resolves the dragged task.
// It returns the resolved task, or nil when taskID is not on the board.
func (c *Controller) DragStart(board *domain.Board, taskID string) *domain.Task {
	if board == nil {
		board = &domain.Board{}
	}
	c.mu.Lock()
	c.board = board.Clone()
	c.snapshot = c.board.Layout()
	c.working = c.snapshot.Clone()
	c.active = c.board.FindTask(taskID).Clone()
	c.dragging = true
	state := c.stateLocked()
	c.mu.Unlock()

	if state.Active == nil {
		c.logger.Debug("drag source not found", "id", taskID)
	}
	c.notify(state)
	return state.Active
}

// DragOver updates the working layout for the pointer position.
// Column drags and events for unknown targets are ignored.
func (c *Controller) DragOver(ev Event) {
	c.mu.Lock()
	changed := c.overLocked(ev)
	state := c.stateLocked()
	c.mu.Unlock()

	if changed {
		c.notify(state)
	}
}

// DragEnd finishes the gesture. A canceled drop, an unresolved source or a
// drop outside any known task or column restores the layout captured at
// DragStart and issues no mutation.
func (c *Controller) DragEnd(ctx context.Context, ev Event) (Result, error) {
	c.mu.Lock()
	if !c.dragging {
		c.mu.Unlock()
		return Result{}, domain.ErrDragNotActive
	}
	if ev.Canceled || c.active == nil || ev.ActiveKind == KindColumn || !c.resolvesLocked(ev) {
		c.resetLocked()
		c.mu.Unlock()
		c.notify(State{})
		return Result{}, nil
	}

	c.overLocked(ev)
	move, ok := c.planLocked()
	c.resetLocked()
	c.mu.Unlock()
	c.notify(State{})

	if !ok {
		return Result{}, nil
	}
	if err := c.move(ctx, move); err != nil {
		return Result{}, fmt.Errorf("drop %s: %w", move.TaskID, err)
	}
	c.logger.Debug("drop committed", "id", move.TaskID, "status", string(move.NewStatus), "order", move.NewOrder)
	return Result{Move: &move, Committed: true}, nil
}

// Cancel abandons a drag in progress, as if the drop had no target.
func (c *Controller) Cancel() {
	c.mu.Lock()
	wasDragging := c.dragging
	c.resetLocked()
	c.mu.Unlock()
	if wasDragging {
		c.notify(State{})
	}
}

// State returns a copy of the current drag state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Subscribe registers fn to be called whenever the drag state changes.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// overLocked moves the active task to the pointer position in the working
// layout. The result depends only on the event, so repeated events are
// idempotent. It reports whether the layout changed.
func (c *Controller) overLocked(ev Event) bool {
	if !c.dragging || c.active == nil || ev.ActiveKind == KindColumn || ev.OverID == "" {
		return false
	}
	id := c.active.ID
	if ev.OverID == id {
		return false
	}

	var dest domain.Status
	var index int
	switch ev.OverKind {
	case KindColumn:
		dest = domain.Status(ev.OverID)
		if _, ok := c.working[dest]; !ok {
			return false
		}
		index = len(without(c.working[dest], id))
	default:
		status, _, ok := c.working.Locate(ev.OverID)
		if !ok {
			return false
		}
		dest = status
		index = slices.Index(without(c.working[dest], id), ev.OverID)
		if ev.After {
			index++
		}
	}

	from, _, ok := c.working.Locate(id)
	if !ok {
		return false
	}
	next := c.working.Clone()
	next[from] = without(next[from], id)
	next[dest] = slices.Insert(without(next[dest], id), index, id)
	if layoutEqual(next, c.working) {
		return false
	}
	c.working = next
	return true
}

// resolvesLocked reports whether the event points at a task in the working
// layout or at a configured column.
func (c *Controller) resolvesLocked(ev Event) bool {
	if ev.OverID == "" {
		return false
	}
	if ev.OverKind == KindColumn {
		return c.board.Column(domain.Status(ev.OverID)) != nil
	}
	_, _, ok := c.working.Locate(ev.OverID)
	return ok
}

// planLocked computes the move for the active task's working position.
// ok is false when the destination is unknown or the task did not move.
func (c *Controller) planLocked() (domain.MoveTaskInput, bool) {
	id := c.active.ID
	status, index, found := c.working.Locate(id)
	if !found || c.board.Column(status) == nil {
		c.logger.Warn("drop destination not found, restoring layout", "id", id)
		return domain.MoveTaskInput{}, false
	}
	if origStatus, origIndex, _ := c.snapshot.Locate(id); origStatus == status && origIndex == index {
		return domain.MoveTaskInput{}, false
	}
	move, err := c.scheme.PlanMove(c.board, id, status, index)
	if err != nil {
		c.logger.Warn("drop could not be planned, restoring layout", "id", id, "error", err)
		return domain.MoveTaskInput{}, false
	}
	return move, true
}

func (c *Controller) resetLocked() {
	c.board = nil
	c.active = nil
	c.snapshot = nil
	c.working = nil
	c.dragging = false
}

func (c *Controller) stateLocked() State {
	if !c.dragging {
		return State{}
	}
	return State{
		Active:   c.active.Clone(),
		Layout:   c.working.Clone(),
		Dragging: true,
	}
}

func (c *Controller) notify(state State) {
	c.mu.Lock()
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

// without returns ids with id removed, as a new slice.
func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func layoutEqual(a, b domain.Layout) bool {
	if len(a) != len(b) {
		return false
	}
	for status, ids := range a {
		if !slices.Equal(ids, b[status]) {
			return false
		}
	}
	return true
}
