package domain

import (
	"context"
	"time"
)

// BoardReader loads boards and single tasks from the authoritative store.
type BoardReader interface {
	// LoadBoard scans the task directory and builds a board.
	LoadBoard(ctx context.Context) (*Board, error)

	// LoadTask returns the task with the given id, or nil if it does not exist.
	LoadTask(ctx context.Context, id string) (*Task, error)
}

// TaskWriter persists task mutations to the authoritative store.
// This is the "remote write" step of an optimistic mutation.
type TaskWriter interface {
	// Create writes a new task file and returns the stored task.
	Create(ctx context.Context, in CreateTaskInput) (*Task, error)

	// Update merges the patch into an existing task.
	Update(ctx context.Context, id string, patch TaskPatch) (*Task, error)

	// Delete removes a task file.
	Delete(ctx context.Context, id string) error

	// Move changes a task's status and order, rewriting renumbered siblings.
	Move(ctx context.Context, in MoveTaskInput) (*Task, error)
}

// TaskStore is a full read/write task store.
type TaskStore interface {
	BoardReader
	TaskWriter
}

// BoardLoadFunc loads a board for the cache. It must honor ctx cancellation.
type BoardLoadFunc func(ctx context.Context) (*Board, error)

// BoardCache is a keyed client-side cache of boards.
// Implementations deep-copy boards on Get and Set.
type BoardCache interface {
	// Fetch returns the cached board when fresh, otherwise loads it as the
	// key's in-flight read and stores the result.
	Fetch(ctx context.Context, key string, load BoardLoadFunc) (*Board, error)

	// CancelInFlight aborts the pending read for key, discarding its result.
	CancelInFlight(key string)

	// Get returns the cached board, fresh or stale.
	Get(ctx context.Context, key string) (*Board, bool)

	// Set replaces the in-process board and notifies subscribers. Set
	// values stay local; only loaded boards reach a shared tier.
	Set(ctx context.Context, key string, board *Board) error

	// Invalidate marks the cached board stale so the next Fetch reloads it.
	Invalidate(ctx context.Context, key string) error

	// IsStale reports whether the cached board awaits revalidation.
	IsStale(key string) bool

	// Subscribe registers fn to be called after every Set for key.
	Subscribe(key string, fn func(*Board)) (unsubscribe func())
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (default <- global <- project).
	Load() (*Config, error)
}

// ConfigInfo describes a configuration file on disk.
type ConfigInfo struct {
	Path    string // Absolute path of the file
	Content string // File content, empty when missing
	Exists  bool   // Whether the file exists
}

// ConfigManager reads and initializes configuration files.
type ConfigManager interface {
	// GetProjectConfigInfo returns information about the project config file.
	GetProjectConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitProjectConfig writes a commented project config file.
	InitProjectConfig(cfg *Config) error

	// InitGlobalConfig writes a commented global config file.
	InitGlobalConfig(cfg *Config) error
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
