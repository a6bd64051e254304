package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/mdboard/internal/app"
)

func mockLaunchTUI(t *testing.T) *[]*app.Container {
	t.Helper()
	originalFunc := launchTUIFunc
	t.Cleanup(func() { launchTUIFunc = originalFunc })

	var calls []*app.Container
	launchTUIFunc = func(_ *cobra.Command, c *app.Container) error {
		calls = append(calls, c)
		return nil
	}
	return &calls
}

func TestNewRootCommand_NoArgs_LaunchesTUI(t *testing.T) {
	calls := mockLaunchTUI(t)
	e, _ := newTestEnv(t)

	var gotOpts app.Options
	root := NewRootCommand(func(opts app.Options) (*app.Container, error) {
		gotOpts = opts
		return e.c, nil
	}, "test-version")
	root.SetArgs([]string{"--dir", "/work/project", "--server", "127.0.0.1:7420"})

	err := root.Execute()

	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Same(t, e.c, (*calls)[0])
	assert.Equal(t, app.Options{Dir: "/work/project", Server: "127.0.0.1:7420"}, gotOpts)
}

func TestNewRootCommand_WithHelp_ShowsHelp(t *testing.T) {
	calls := mockLaunchTUI(t)
	factoryCalled := false

	root := NewRootCommand(func(app.Options) (*app.Container, error) {
		factoryCalled = true
		return nil, errors.New("unexpected")
	}, "test-version")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})

	err := root.Execute()

	assert.NoError(t, err)
	assert.Empty(t, *calls)
	assert.False(t, factoryCalled)
	assert.Contains(t, out.String(), "Task Management:")
	assert.Contains(t, out.String(), "mv")
}

func TestNewRootCommand_DefaultsDirToWorkingDirectory(t *testing.T) {
	mockLaunchTUI(t)
	dir := t.TempDir()
	t.Chdir(dir)
	e, _ := newTestEnv(t)

	var gotOpts app.Options
	root := NewRootCommand(func(opts app.Options) (*app.Container, error) {
		gotOpts = opts
		return e.c, nil
	}, "test-version")
	root.SetArgs([]string{"tui"})

	require.NoError(t, root.Execute())
	assert.Equal(t, dir, gotOpts.Dir)
	assert.Empty(t, gotOpts.Server)
}

func TestNewRootCommand_PrintsConfigWarnings(t *testing.T) {
	mockLaunchTUI(t)
	e, _ := newTestEnv(t)
	e.c.AppConfig.Warnings = []string{"unknown key: workers"}

	root := NewRootCommand(func(app.Options) (*app.Container, error) { return e.c, nil }, "test-version")
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetArgs([]string{"--dir", t.TempDir()})

	require.NoError(t, root.Execute())
	assert.Equal(t, "Warning: unknown key: workers\n", stderr.String())
}

func TestNewRootCommand_FactoryError(t *testing.T) {
	calls := mockLaunchTUI(t)

	root := NewRootCommand(func(app.Options) (*app.Container, error) {
		return nil, errors.New("boom")
	}, "test-version")
	root.SetArgs([]string{"--dir", t.TempDir(), "board"})

	err := root.Execute()

	assert.EqualError(t, err, "initialize: boom")
	assert.Empty(t, *calls)
}
