// Package boardcache provides the keyed client-side board cache used by
// optimistic mutations.
package boardcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/runoshun/mdboard/internal/domain"
)

// Backend is an optional shared tier behind the in-process cache.
type Backend interface {
	Load(ctx context.Context, key string) (*domain.Board, bool)
	Store(ctx context.Context, key string, board *domain.Board) error
	Evict(ctx context.Context, key string) error
}

type entry struct {
	board    *domain.Board
	inflight map[uint64]context.CancelFunc
	stale    bool
	// gen changes whenever a pending read must no longer write its result.
	gen uint64
}

// Client implements domain.BoardCache.
type Client struct {
	backend Backend
	logger  *slog.Logger
	entries map[string]*entry
	subs    map[string]map[uint64]func(*domain.Board)
	mu      sync.Mutex
	nextID  uint64
}

var _ domain.BoardCache = (*Client)(nil)

// New creates a cache client. backend may be nil for a purely in-process cache.
func New(backend Backend, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		backend: backend,
		logger:  logger,
		entries: make(map[string]*entry),
		subs:    make(map[string]map[uint64]func(*domain.Board)),
	}
}

// NewMemory creates a cache client without a shared tier.
func NewMemory() *Client {
	return New(nil, nil)
}

func (c *Client) entry(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{inflight: make(map[uint64]context.CancelFunc)}
		c.entries[key] = e
	}
	return e
}

// Fetch returns the cached board when fresh. Otherwise it runs load as an
// in-flight read for key and caches the result, unless the read was cancelled
// or overtaken by a Set or Invalidate in the meantime.
func (c *Client) Fetch(ctx context.Context, key string, load domain.BoardLoadFunc) (*domain.Board, error) {
	c.mu.Lock()
	e := c.entry(key)
	if e.board != nil && !e.stale {
		b := e.board.Clone()
		c.mu.Unlock()
		return b, nil
	}
	shared := e.board == nil
	c.mu.Unlock()

	if shared && c.backend != nil {
		if b, ok := c.backend.Load(ctx, key); ok {
			c.mu.Lock()
			if e.board == nil {
				e.board = b.Clone()
				e.stale = false
			}
			out := e.board.Clone()
			c.mu.Unlock()
			return out, nil
		}
	}

	c.mu.Lock()
	loadCtx, cancel := context.WithCancel(ctx)
	c.nextID++
	id := c.nextID
	e.inflight[id] = cancel
	gen := e.gen
	c.mu.Unlock()

	board, err := load(loadCtx)

	c.mu.Lock()
	delete(e.inflight, id)
	cancel()
	discarded := e.gen != gen
	if discarded {
		cached := e.board.Clone()
		c.mu.Unlock()
		c.logger.Debug("discarding overtaken board read", "key", key)
		if cached != nil {
			return cached, nil
		}
		if err == nil {
			err = context.Canceled
		}
		return nil, fmt.Errorf("fetch board %q: %w", key, err)
	}
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("fetch board %q: %w", key, err)
	}
	e.board = board.Clone()
	e.stale = false
	c.mu.Unlock()

	c.storeShared(ctx, key, board)
	c.notify(key, board)
	return board.Clone(), nil
}

// CancelInFlight cancels every pending read for key and discards their results.
func (c *Client) CancelInFlight(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(key)
	for id, cancel := range e.inflight {
		cancel()
		delete(e.inflight, id)
	}
	e.gen++
}

// Get returns the cached board whether fresh or stale.
func (c *Client) Get(ctx context.Context, key string) (*domain.Board, bool) {
	c.mu.Lock()
	e := c.entry(key)
	if e.board != nil {
		b := e.board.Clone()
		c.mu.Unlock()
		return b, true
	}
	c.mu.Unlock()

	if c.backend == nil {
		return nil, false
	}
	return c.backend.Load(ctx, key)
}

// Set replaces the in-process board and notifies subscribers.
// It never writes the shared tier; only loaded boards are shared.
func (c *Client) Set(_ context.Context, key string, board *domain.Board) error {
	c.mu.Lock()
	e := c.entry(key)
	e.board = board.Clone()
	e.stale = false
	e.gen++
	c.mu.Unlock()

	c.notify(key, board)
	return nil
}

// Invalidate marks the cached board stale so the next Fetch reloads it.
func (c *Client) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	e := c.entry(key)
	e.stale = true
	e.gen++
	c.mu.Unlock()

	if c.backend == nil {
		return nil
	}
	if err := c.backend.Evict(ctx, key); err != nil {
		return fmt.Errorf("evict board %q: %w", key, err)
	}
	return nil
}

// IsStale reports whether key has a cached board awaiting revalidation.
func (c *Client) IsStale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.stale
}

// Subscribe registers fn to receive a copy of the board after every Set for key.
func (c *Client) Subscribe(key string, fn func(*domain.Board)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	if c.subs[key] == nil {
		c.subs[key] = make(map[uint64]func(*domain.Board))
	}
	c.subs[key][id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs[key], id)
	}
}

func (c *Client) notify(key string, board *domain.Board) {
	c.mu.Lock()
	fns := make([]func(*domain.Board), 0, len(c.subs[key]))
	for _, fn := range c.subs[key] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(board.Clone())
	}
}

func (c *Client) storeShared(ctx context.Context, key string, board *domain.Board) {
	if c.backend == nil {
		return
	}
	if err := c.backend.Store(ctx, key, board); err != nil {
		c.logger.Warn("failed to store shared board snapshot", "key", key, "error", err)
	}
}
