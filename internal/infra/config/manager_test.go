package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/mdboard/internal/domain"
)

func TestManager_GetProjectConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		boardDir := t.TempDir()
		configContent := "tasks_dir = \"todo\""
		writeConfig(t, boardDir, configContent)

		info := NewManagerWithGlobalDir(boardDir, "").GetProjectConfigInfo()

		assert.Equal(t, filepath.Join(boardDir, domain.ConfigFileName), info.Path)
		assert.Equal(t, configContent, info.Content)
		assert.True(t, info.Exists)
	})

	t.Run("returns info when file does not exist", func(t *testing.T) {
		boardDir := t.TempDir()

		info := NewManagerWithGlobalDir(boardDir, "").GetProjectConfigInfo()

		assert.Equal(t, filepath.Join(boardDir, domain.ConfigFileName), info.Path)
		assert.Empty(t, info.Content)
		assert.False(t, info.Exists)
	})
}

func TestManager_GetGlobalConfigInfo(t *testing.T) {
	t.Run("empty global dir", func(t *testing.T) {
		info := NewManagerWithGlobalDir(t.TempDir(), "").GetGlobalConfigInfo()
		assert.Empty(t, info.Path)
		assert.False(t, info.Exists)
	})

	t.Run("existing file", func(t *testing.T) {
		globalDir := t.TempDir()
		writeConfig(t, globalDir, "[log]\nlevel = \"debug\"")
		info := NewManagerWithGlobalDir(t.TempDir(), globalDir).GetGlobalConfigInfo()
		assert.True(t, info.Exists)
		assert.Contains(t, info.Content, "debug")
	})
}

func TestManager_InitProjectConfig(t *testing.T) {
	boardDir := filepath.Join(t.TempDir(), ".mdboard")
	manager := NewManagerWithGlobalDir(boardDir, "")

	require.NoError(t, manager.InitProjectConfig(domain.NewDefaultConfig()))
	content, err := os.ReadFile(filepath.Join(boardDir, domain.ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[[columns]]")

	// The rendered template loads back to the defaults
	cfg, err := NewLoaderWithGlobalDir(boardDir, "").Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Warnings)
	assert.Equal(t, domain.DefaultColumns(), cfg.Columns)

	assert.ErrorIs(t, manager.InitProjectConfig(domain.NewDefaultConfig()), domain.ErrConfigExists)
}

func TestManager_InitGlobalConfig(t *testing.T) {
	globalDir := filepath.Join(t.TempDir(), "mdboard")
	manager := NewManagerWithGlobalDir(t.TempDir(), globalDir)

	require.NoError(t, manager.InitGlobalConfig(domain.NewDefaultConfig()))
	assert.FileExists(t, filepath.Join(globalDir, domain.ConfigFileName))

	assert.Error(t, NewManagerWithGlobalDir(t.TempDir(), "").InitGlobalConfig(domain.NewDefaultConfig()))
}
