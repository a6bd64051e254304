// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/runoshun/mdboard/internal/api"
	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/drag"
	"github.com/runoshun/mdboard/internal/infra/apiclient"
	"github.com/runoshun/mdboard/internal/infra/boardcache"
	"github.com/runoshun/mdboard/internal/infra/config"
	"github.com/runoshun/mdboard/internal/infra/filestore"
	"github.com/runoshun/mdboard/internal/infra/logging"
	"github.com/runoshun/mdboard/internal/infra/project"
	"github.com/runoshun/mdboard/internal/usecase"
	"github.com/runoshun/mdboard/internal/usecase/shared"
)

// Config holds the resolved application paths.
type Config struct {
	ProjectRoot string // Project directory (git worktree root when inside a repository)
	BoardDir    string // Path to <project>/.mdboard
	TasksDir    string // Directory holding the task files
	CacheKey    string // Board cache key derived from TasksDir
	ServerURL   string // Remote API; empty means local files
}

// Options selects where the container reads and writes tasks.
type Options struct {
	Dir    string // Directory to detect the project from
	Server string // Use the HTTP API at this address instead of local files
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store         domain.TaskStore
	Cache         domain.BoardCache
	Clock         domain.Clock
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// Pointer fields
	Logger    *slog.Logger
	AppConfig *domain.Config
	logFile   *logging.File
	redis     *redis.Client

	// Configuration
	Config Config
}

// New creates a new Container by detecting the project from opts.Dir.
func New(opts Options) (*Container, error) {
	root, err := project.Detect(opts.Dir)
	if err != nil {
		return nil, err
	}
	boardDir := domain.ProjectBoardDir(root.Dir)

	configLoader := config.NewLoader(boardDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logFile := logging.New(boardDir, logging.ParseLevel(appConfig.Log.Level))
	logger.Debug("container starting", "root", root.Dir, "in_repo", root.InRepo)

	tasksDir := appConfig.ResolveTasksDir(root.Dir)
	cfg := Config{
		ProjectRoot: root.Dir,
		BoardDir:    boardDir,
		TasksDir:    tasksDir,
		ServerURL:   opts.Server,
	}
	cfg.CacheKey = cacheKey(cfg)

	clock := domain.RealClock{}
	var store domain.TaskStore
	if opts.Server != "" {
		store = apiclient.New(opts.Server, nil)
	} else {
		store = filestore.New(tasksDir, filestore.Options{
			Clock:   clock,
			Logger:  logger.With(logging.ComponentKey, "filestore"),
			Columns: appConfig.Columns,
			Step:    appConfig.Ordering.Step,
		})
	}

	c := &Container{
		Store:         store,
		Clock:         clock,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(boardDir),
		Logger:        logger,
		AppConfig:     appConfig,
		logFile:       logFile,
		Config:        cfg,
	}
	c.Cache = c.newCache(appConfig.Cache)
	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, store domain.TaskStore, cache domain.BoardCache, clock domain.Clock, logger *slog.Logger) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	if cfg.CacheKey == "" {
		cfg.CacheKey = cacheKey(cfg)
	}
	return &Container{
		Store:     store,
		Cache:     cache,
		Clock:     clock,
		Logger:    logger,
		AppConfig: appConfig,
		Config:    cfg,
	}
}

func cacheKey(cfg Config) string {
	if cfg.ServerURL != "" {
		return shared.Key(cfg.ServerURL)
	}
	return shared.Key(cfg.TasksDir)
}

// newCache builds the board cache. A redis backend is only used for local
// files, since a remote server already caches on its side.
func (c *Container) newCache(cfg domain.CacheConfig) domain.BoardCache {
	logger := c.Logger.With(logging.ComponentKey, "cache")
	if cfg.Backend != domain.CacheBackendRedis || c.Config.ServerURL != "" {
		return boardcache.New(nil, logger)
	}
	c.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	logger.Debug("using redis cache", "addr", cfg.RedisAddr, "ttl", cfg.TTL)
	return boardcache.New(boardcache.NewRedisBackend(c.redis, cfg.TTL), logger)
}

// Close releases the log file and the redis connection.
func (c *Container) Close() error {
	var errs []error
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if c.logFile != nil {
		errs = append(errs, c.logFile.Close())
	}
	return errors.Join(errs...)
}

// OrderScheme returns the ordering scheme configured for the board.
func (c *Container) OrderScheme() domain.OrderScheme {
	return domain.NewOrderScheme(c.AppConfig.Ordering.Step)
}

// UseCase factory methods

// LoadBoardUseCase returns a new LoadBoard use case.
func (c *Container) LoadBoardUseCase() *usecase.LoadBoard {
	return usecase.NewLoadBoard(c.Store, c.Cache, c.Config.CacheKey)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Store)
}

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Store, c.Cache, c.Config.CacheKey, c.Clock, c.mutationLogger())
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() *usecase.EditTask {
	return usecase.NewEditTask(c.Store, c.Store, c.Cache, c.Config.CacheKey, c.mutationLogger())
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Store, c.Cache, c.Config.CacheKey, c.mutationLogger())
}

// MoveTaskUseCase returns a new MoveTask use case.
func (c *Container) MoveTaskUseCase() *usecase.MoveTask {
	return usecase.NewMoveTask(c.Store, c.Cache, c.Config.CacheKey, c.mutationLogger())
}

// MoveToPositionUseCase returns a new MoveToPosition use case.
func (c *Container) MoveToPositionUseCase() *usecase.MoveToPosition {
	return usecase.NewMoveToPosition(c.LoadBoardUseCase(), c.MoveTaskUseCase(), c.OrderScheme())
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// DragController returns a drag controller that commits drops through the
// MoveTask use case.
func (c *Container) DragController() *drag.Controller {
	move := c.MoveTaskUseCase()
	return drag.NewController(c.OrderScheme(), func(ctx context.Context, in domain.MoveTaskInput) error {
		_, err := move.Execute(ctx, in)
		return err
	}, c.Logger.With(logging.ComponentKey, "drag"))
}

// APIServices returns the use cases served by the HTTP API.
func (c *Container) APIServices() api.Services {
	load := c.LoadBoardUseCase()
	move := c.MoveTaskUseCase()
	return api.Services{
		LoadBoard:      load,
		ShowTask:       c.ShowTaskUseCase(),
		NewTask:        c.NewTaskUseCase(),
		EditTask:       c.EditTaskUseCase(),
		DeleteTask:     c.DeleteTaskUseCase(),
		MoveTask:       move,
		MoveToPosition: usecase.NewMoveToPosition(load, move, c.OrderScheme()),
	}
}

func (c *Container) mutationLogger() *slog.Logger {
	return c.Logger.With(logging.ComponentKey, "mutation")
}
