package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
type Config struct {
	Warnings []string       `toml:"-"`
	Columns  []ColumnConfig `toml:"columns"`
	TasksDir string         `toml:"tasks_dir"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Ordering OrderingConfig `toml:"ordering"`
}

// CacheConfig holds board cache settings from [cache] section.
type CacheConfig struct {
	Backend   string        `toml:"backend,omitempty"`    // "memory" (default) or "redis"
	RedisAddr string        `toml:"redis_addr,omitempty"` // host:port of the redis server
	TTL       time.Duration `toml:"ttl,omitempty"`        // Lifetime of redis snapshots
}

// ServerConfig holds HTTP API settings from [server] section.
type ServerConfig struct {
	Addr string `toml:"addr,omitempty"`
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// OrderingConfig holds ordering scheme settings from [ordering] section.
type OrderingConfig struct {
	Step float64 `toml:"step,omitempty"`
}

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Default configuration values.
const (
	DefaultLogLevel   = "info"
	DefaultTasksDir   = "tasks"
	DefaultServerAddr = "127.0.0.1:7420"
	DefaultRedisAddr  = "127.0.0.1:6379"
	DefaultCacheTTL   = 5 * time.Minute
)

// Directory and file names for mdboard.
const (
	BoardDirName   = ".mdboard"    // Per-project directory
	AppDirName     = "mdboard"     // Directory name under XDG_CONFIG_HOME
	ConfigFileName = "config.toml" // Config file name
	TaskFileExt    = ".md"         // Task file extension
)

// ProjectBoardDir returns the mdboard directory of a project.
func ProjectBoardDir(projectRoot string) string {
	return filepath.Join(projectRoot, BoardDirName)
}

// ProjectConfigPath returns the project config path.
func ProjectConfigPath(projectRoot string) string {
	return filepath.Join(ProjectBoardDir(projectRoot), ConfigFileName)
}

// GlobalBoardDir returns the global mdboard directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalBoardDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		TasksDir: DefaultTasksDir,
		Columns:  DefaultColumns(),
		Cache: CacheConfig{
			Backend:   CacheBackendMemory,
			RedisAddr: DefaultRedisAddr,
			TTL:       DefaultCacheTTL,
		},
		Server:   ServerConfig{Addr: DefaultServerAddr},
		Log:      LogConfig{Level: DefaultLogLevel},
		Ordering: OrderingConfig{Step: DefaultOrderStep},
	}
}

// ResolveTasksDir returns the absolute tasks directory for a project.
func (c *Config) ResolveTasksDir(projectRoot string) string {
	dir := c.TasksDir
	if dir == "" {
		dir = DefaultTasksDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(projectRoot, dir)
}

// Validate checks column definitions for unknown or duplicate statuses.
func (c *Config) Validate() error {
	seen := make(map[Status]bool, len(c.Columns))
	for _, col := range c.Columns {
		if !col.ID.IsValid() {
			return fmt.Errorf("column %q: %w", col.ID, ErrInvalidStatus)
		}
		if seen[col.ID] {
			return fmt.Errorf("duplicate column %q", col.ID)
		}
		seen[col.ID] = true
	}
	return nil
}

// RenderConfigTemplate renders a commented config file from the given Config.
func RenderConfigTemplate(cfg *Config) string {
	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}
