package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer

	err := run(context.Background(), []string{"--version"}, &out, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "mdboard version dev")
}

func TestRun_CreateAndShow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out bytes.Buffer

	err := run(context.Background(), []string{"--dir", dir, "new", "--title", "Write docs"}, &out, &out)
	require.NoError(t, err)
	assert.Equal(t, "Created task task-write-docs\n", out.String())

	_, err = os.Stat(filepath.Join(dir, "tasks", "task-write-docs.md"))
	require.NoError(t, err)

	out.Reset()
	err = run(context.Background(), []string{"--dir", dir, "show", "task-write-docs"}, &out, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "# task-write-docs: Write docs")
}

func TestRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer

	err := run(context.Background(), []string{"frobnicate"}, &out, &out)

	assert.Error(t, err)
}
