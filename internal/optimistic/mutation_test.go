package optimistic

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/infra/boardcache"
)

const key = "board"

func seedBoard() *domain.Board {
	b := domain.NewBoard("/tasks", domain.DefaultColumns(), time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	b.Column(domain.StatusTodo).Tasks = []*domain.Task{
		{ID: "task-a", Metadata: domain.TaskMetadata{ID: "task-a", Title: "A", Status: domain.StatusTodo, Labels: []string{}, Order: 10}},
		{ID: "task-b", Metadata: domain.TaskMetadata{ID: "task-b", Title: "B", Status: domain.StatusTodo, Labels: []string{}, Order: 20}},
	}
	return b
}

// recordingCache logs the order of cache operations.
type recordingCache struct {
	*boardcache.Client
	calls []string
}

func (r *recordingCache) CancelInFlight(k string) {
	r.calls = append(r.calls, "cancel")
	r.Client.CancelInFlight(k)
}

func (r *recordingCache) Get(ctx context.Context, k string) (*domain.Board, bool) {
	r.calls = append(r.calls, "get")
	return r.Client.Get(ctx, k)
}

func (r *recordingCache) Set(ctx context.Context, k string, b *domain.Board) error {
	r.calls = append(r.calls, "set")
	return r.Client.Set(ctx, k, b)
}

func (r *recordingCache) Invalidate(ctx context.Context, k string) error {
	r.calls = append(r.calls, "invalidate")
	return r.Client.Invalidate(ctx, k)
}

func newCache(t *testing.T) *recordingCache {
	t.Helper()
	c := &recordingCache{Client: boardcache.NewMemory()}
	require.NoError(t, c.Client.Set(context.Background(), key, seedBoard()))
	return c
}

func moveMutation(cache domain.BoardCache, remote RemoteFunc[domain.MoveTaskInput, string]) *Mutation[domain.MoveTaskInput, string] {
	return &Mutation[domain.MoveTaskInput, string]{
		Name:   "move",
		Key:    key,
		Cache:  cache,
		Remote: remote,
		Apply:  domain.ApplyMove,
		TaskID: func(in domain.MoveTaskInput) string { return in.TaskID },
	}
}

func TestMutation_CommitInvalidates(t *testing.T) {
	cache := newCache(t)
	var seenDuringRemote *domain.Board

	m := moveMutation(cache, func(ctx context.Context, in domain.MoveTaskInput) (string, error) {
		seenDuringRemote, _ = cache.Client.Get(ctx, key)
		return in.TaskID, nil
	})

	out, err := m.Execute(context.Background(), domain.MoveTaskInput{TaskID: "task-a", NewStatus: domain.StatusTodo, NewOrder: 30})
	require.NoError(t, err)
	assert.Equal(t, "task-a", out)

	assert.Equal(t, []string{"cancel", "get", "set", "invalidate"}, cache.calls)
	assert.Equal(t, []string{"task-b", "task-a"}, seenDuringRemote.Layout()[domain.StatusTodo])
	assert.True(t, cache.IsStale(key))
}

func TestMutation_RollbackRestoresSnapshot(t *testing.T) {
	cache := newCache(t)
	before, _ := cache.Client.Get(context.Background(), key)

	var logs bytes.Buffer
	boom := errors.New("disk full")
	m := moveMutation(cache, func(context.Context, domain.MoveTaskInput) (string, error) {
		return "", boom
	})
	m.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	_, err := m.Execute(context.Background(), domain.MoveTaskInput{TaskID: "task-a", NewStatus: domain.StatusDone, NewOrder: 5})
	require.Error(t, err)

	var perr *domain.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "move", perr.Op)
	assert.Equal(t, "task-a", perr.TaskID)
	assert.ErrorIs(t, err, boom)

	after, _ := cache.Client.Get(context.Background(), key)
	assert.Equal(t, before, after)
	assert.False(t, cache.IsStale(key))
	assert.Equal(t, []string{"cancel", "get", "set", "set"}, cache.calls)
	assert.Contains(t, logs.String(), "rolled back optimistic mutation")
}

func TestMutation_RollbackKeepsStaleSnapshotStale(t *testing.T) {
	cache := newCache(t)
	require.NoError(t, cache.Client.Invalidate(context.Background(), key))
	before, _ := cache.Client.Get(context.Background(), key)
	cache.calls = nil

	m := moveMutation(cache, func(context.Context, domain.MoveTaskInput) (string, error) {
		return "", errors.New("disk full")
	})
	_, err := m.Execute(context.Background(), domain.MoveTaskInput{TaskID: "task-a", NewStatus: domain.StatusDone, NewOrder: 5})
	require.Error(t, err)

	after, _ := cache.Client.Get(context.Background(), key)
	assert.Equal(t, before, after)
	assert.True(t, cache.IsStale(key))
	assert.Equal(t, []string{"cancel", "get", "set", "set", "invalidate"}, cache.calls)

	loads := 0
	_, err = cache.Fetch(context.Background(), key, func(context.Context) (*domain.Board, error) {
		loads++
		return seedBoard(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
}

func TestMutation_SubscribersSeePredictionThenRollback(t *testing.T) {
	cache := newCache(t)
	var layouts [][]string
	cache.Subscribe(key, func(b *domain.Board) {
		layouts = append(layouts, b.Layout()[domain.StatusTodo])
	})

	m := moveMutation(cache, func(context.Context, domain.MoveTaskInput) (string, error) {
		return "", errors.New("rejected")
	})
	_, err := m.Execute(context.Background(), domain.MoveTaskInput{TaskID: "task-a", NewStatus: domain.StatusTodo, NewOrder: 30})
	require.Error(t, err)

	assert.Equal(t, [][]string{{"task-b", "task-a"}, {"task-a", "task-b"}}, layouts)
}

func TestMutation_CancelsInFlightRead(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Client.Invalidate(ctx, key))

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = cache.Client.Fetch(ctx, key, func(ctx context.Context) (*domain.Board, error) {
			close(started)
			<-release
			return domain.NewBoard("/tasks", domain.DefaultColumns(), time.Now()), nil
		})
	}()
	<-started

	m := moveMutation(cache, func(context.Context, domain.MoveTaskInput) (string, error) {
		close(release)
		<-done
		return "task-a", nil
	})
	_, err := m.Execute(ctx, domain.MoveTaskInput{TaskID: "task-a", NewStatus: domain.StatusTodo, NewOrder: 30})
	require.NoError(t, err)

	// the empty board from the cancelled read never replaced the prediction
	got, _ := cache.Client.Get(ctx, key)
	assert.Equal(t, []string{"task-b", "task-a"}, got.Layout()[domain.StatusTodo])
}

func TestMutation_NoCachedBoard(t *testing.T) {
	cache := &recordingCache{Client: boardcache.NewMemory()}
	called := false
	m := moveMutation(cache, func(context.Context, domain.MoveTaskInput) (string, error) {
		called = true
		return "ok", nil
	})

	_, err := m.Execute(context.Background(), domain.MoveTaskInput{TaskID: "task-a", NewStatus: domain.StatusTodo, NewOrder: 1})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, []string{"cancel", "get", "invalidate"}, cache.calls)

	cache.calls = nil
	m.Remote = func(context.Context, domain.MoveTaskInput) (string, error) { return "", errors.New("x") }
	_, err = m.Execute(context.Background(), domain.MoveTaskInput{TaskID: "task-a"})
	require.Error(t, err)
	assert.Equal(t, []string{"cancel", "get"}, cache.calls)
	_, ok := cache.Client.Get(context.Background(), key)
	assert.False(t, ok)
}
