// Package optimistic applies predicted board changes to a cache before the
// authoritative write completes, and rolls them back when it fails.
package optimistic

import (
	"context"
	"log/slog"

	"github.com/runoshun/mdboard/internal/domain"
)

// RemoteFunc performs the authoritative write.
type RemoteFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// ApplyFunc predicts the board after the write. It must not modify board.
type ApplyFunc[In any] func(board *domain.Board, in In) *domain.Board

// Mutation wraps a remote write with begin/apply/commit/rollback against a
// cached board.
type Mutation[In, Out any] struct {
	Cache  domain.BoardCache
	Remote RemoteFunc[In, Out]
	Apply  ApplyFunc[In]
	// TaskID extracts the affected task id for error reporting. Optional.
	TaskID func(In) string
	Logger *slog.Logger
	Name   string
	Key    string
}

// Execute runs the mutation.
//
// Any in-flight read of the board is cancelled before the snapshot is taken,
// so a late read cannot overwrite the prediction. On remote failure the
// snapshot is restored verbatim, still stale if it was stale before, and the
// error is returned as a *domain.PersistenceError. On success the cache is invalidated so the next
// read revalidates against the store.
func (m *Mutation[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	logger := m.logger()

	// Begin
	m.Cache.CancelInFlight(m.Key)
	snapshot, cached := m.Cache.Get(ctx, m.Key)
	stale := m.Cache.IsStale(m.Key)

	// Apply
	if cached && m.Apply != nil {
		if err := m.Cache.Set(ctx, m.Key, m.Apply(snapshot.Clone(), in)); err != nil {
			logger.Warn("failed to apply optimistic prediction", "mutation", m.Name, "key", m.Key, "error", err)
		}
	}

	// Commit
	out, err := m.Remote(ctx, in)
	if err != nil {
		if cached {
			m.restore(context.WithoutCancel(ctx), snapshot, stale)
		}
		logger.Warn("rolled back optimistic mutation", "mutation", m.Name, "key", m.Key, "error", err)
		var zero Out
		return zero, &domain.PersistenceError{Op: m.Name, TaskID: m.taskID(in), Err: err}
	}

	if err := m.Cache.Invalidate(context.WithoutCancel(ctx), m.Key); err != nil {
		logger.Warn("failed to invalidate board", "mutation", m.Name, "key", m.Key, "error", err)
	}
	logger.Debug("committed optimistic mutation", "mutation", m.Name, "key", m.Key)
	return out, nil
}

// restore puts the snapshot back. A snapshot that was stale at Begin, such as
// the prediction left by an earlier commit, stays stale.
func (m *Mutation[In, Out]) restore(ctx context.Context, snapshot *domain.Board, stale bool) {
	logger := m.logger()
	if err := m.Cache.Set(ctx, m.Key, snapshot); err != nil {
		logger.Error("failed to restore board snapshot", "mutation", m.Name, "key", m.Key, "error", err)
	}
	if !stale {
		return
	}
	if err := m.Cache.Invalidate(ctx, m.Key); err != nil {
		logger.Warn("failed to invalidate restored board", "mutation", m.Name, "key", m.Key, "error", err)
	}
}

func (m *Mutation[In, Out]) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

func (m *Mutation[In, Out]) taskID(in In) string {
	if m.TaskID == nil {
		return ""
	}
	return m.TaskID(in)
}
