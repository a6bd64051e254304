// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/mdboard/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	boardDir      string // Path to <project>/.mdboard
	globalConfDir string // Path to global config directory (e.g., ~/.config/mdboard)
}

// NewLoader creates a new Loader.
func NewLoader(boardDir string) *Loader {
	return &Loader{
		boardDir:      boardDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(boardDir, globalConfDir string) *Loader {
	return &Loader{
		boardDir:      boardDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalBoardDir(configHome)
}

// Load returns the merged configuration (default <- global <- project).
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	project, err := l.LoadProject()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if project != nil {
		base = mergeConfigs(base, project)
	}

	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadProject returns only the project configuration.
func (l *Loader) LoadProject() (*domain.Config, error) {
	return l.loadFile(filepath.Join(l.boardDir, domain.ConfigFileName))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for section, value := range raw {
		switch section {
		case "tasks_dir":
			if s, ok := value.(string); ok {
				res.TasksDir = s
			} else {
				warnf("invalid value for tasks_dir: %v", value)
			}
		case "columns":
			res.Columns = parseColumns(value, warnf)
		case "log":
			forEachKey(value, "log", warnf, func(k string, v any) bool {
				if k != "level" {
					return false
				}
				if s, ok := v.(string); ok {
					res.Log.Level = s
				}
				return true
			})
		case "ordering":
			forEachKey(value, "ordering", warnf, func(k string, v any) bool {
				if k != "step" {
					return false
				}
				if f, ok := toFloat(v); ok && f > 0 {
					res.Ordering.Step = f
				} else {
					warnf("invalid value for [ordering] step: %v", v)
				}
				return true
			})
		case "cache":
			forEachKey(value, "cache", warnf, func(k string, v any) bool {
				switch k {
				case "backend":
					s, _ := v.(string)
					if s == domain.CacheBackendMemory || s == domain.CacheBackendRedis {
						res.Cache.Backend = s
					} else {
						warnf("invalid value for [cache] backend: %v", v)
					}
				case "redis_addr":
					if s, ok := v.(string); ok {
						res.Cache.RedisAddr = s
					}
				case "ttl":
					s, _ := v.(string)
					d, err := time.ParseDuration(s)
					if err != nil || d < 0 {
						warnf("invalid value for [cache] ttl: %v", v)
					} else {
						res.Cache.TTL = d
					}
				default:
					return false
				}
				return true
			})
		case "server":
			forEachKey(value, "server", warnf, func(k string, v any) bool {
				if k != "addr" {
					return false
				}
				if s, ok := v.(string); ok {
					res.Server.Addr = s
				}
				return true
			})
		default:
			warnf("unknown section: %s", section)
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// forEachKey walks a table section, warning about keys fn does not accept.
func forEachKey(value any, section string, warnf func(string, ...any), fn func(k string, v any) bool) {
	m, ok := value.(map[string]any)
	if !ok {
		warnf("[%s] must be a table", section)
		return
	}
	for k, v := range m {
		if !fn(k, v) {
			warnf("unknown key in [%s]: %s", section, k)
		}
	}
}

// parseColumns parses the [[columns]] array of tables.
func parseColumns(value any, warnf func(string, ...any)) []domain.ColumnConfig {
	items, ok := value.([]any)
	if !ok {
		warnf("[[columns]] must be an array of tables")
		return nil
	}
	cols := make([]domain.ColumnConfig, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			warnf("[[columns]] entry %d must be a table", i)
			continue
		}
		var col domain.ColumnConfig
		for k, v := range m {
			switch k {
			case "id":
				if s, ok := v.(string); ok {
					col.ID = domain.Status(s)
				}
			case "title":
				if s, ok := v.(string); ok {
					col.Title = s
				}
			case "color":
				if s, ok := v.(string); ok {
					col.Color = s
				}
			case "limit":
				if n, ok := v.(int64); ok && n >= 0 {
					col.Limit = int(n)
				} else {
					warnf("invalid value for [[columns]] limit: %v", v)
				}
			default:
				warnf("unknown key in [[columns]]: %s", k)
			}
		}
		if col.Title == "" {
			col.Title = col.ID.Display()
		}
		cols = append(cols, col)
	}
	return cols
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := &domain.Config{
		TasksDir: base.TasksDir,
		Columns:  append([]domain.ColumnConfig{}, base.Columns...),
		Cache:    base.Cache,
		Server:   base.Server,
		Log:      base.Log,
		Ordering: base.Ordering,
		Warnings: append([]string{}, base.Warnings...),
	}
	result.Warnings = append(result.Warnings, override.Warnings...)

	if override.TasksDir != "" {
		result.TasksDir = override.TasksDir
	}
	if len(override.Columns) > 0 {
		result.Columns = append([]domain.ColumnConfig{}, override.Columns...)
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.Ordering.Step > 0 {
		result.Ordering.Step = override.Ordering.Step
	}
	if override.Cache.Backend != "" {
		result.Cache.Backend = override.Cache.Backend
	}
	if override.Cache.RedisAddr != "" {
		result.Cache.RedisAddr = override.Cache.RedisAddr
	}
	if override.Cache.TTL != 0 {
		result.Cache.TTL = override.Cache.TTL
	}
	if override.Server.Addr != "" {
		result.Server.Addr = override.Server.Addr
	}

	return result
}
