// Package cli provides the command-line interface for mdboard.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/runoshun/mdboard/internal/app"
	"github.com/runoshun/mdboard/internal/tui"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupTask  = "task"
	groupBoard = "board"
)

// ContainerFactory builds the container once global flags are parsed.
type ContainerFactory func(opts app.Options) (*app.Container, error)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// env carries the container to subcommands. It is filled in by the root
// command's PersistentPreRunE, or up front in tests.
type env struct {
	c            *app.Container
	newContainer ContainerFactory
	opts         app.Options
}

// NewRootCommand creates the root command for mdboard.
// It receives the container factory for dependency injection and version for display.
func NewRootCommand(newContainer ContainerFactory, version string) *cobra.Command {
	return newRootCommand(&env{newContainer: newContainer}, version)
}

func newRootCommand(e *env, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "mdboard",
		Short: "Kanban board over a directory of markdown task files",
		Long: `mdboard shows a directory of markdown task files as a kanban board.

Each task is one <id>.md file with YAML front-matter (title, status,
priority, labels, assignee, due, order). Columns are statuses; cards
are sorted by their order key. Running mdboard without arguments
opens the interactive board.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if e.c == nil || e.newContainer == nil {
				return nil
			}
			return e.c.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd, e.c)
		},
	}

	root.PersistentFlags().StringVar(&e.opts.Dir, "dir", "", "Project directory (default: current directory)")
	root.PersistentFlags().StringVar(&e.opts.Server, "server", "", "Use the mdboard API at this address instead of local files")

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupBoard, Title: "Board:"},
	)

	configCmd := newConfigCommand(e)
	configCmd.GroupID = groupSetup

	newCmd := newNewCommand(e)
	newCmd.GroupID = groupTask

	showCmd := newShowCommand(e)
	showCmd.GroupID = groupTask

	editCmd := newEditCommand(e)
	editCmd.GroupID = groupTask

	rmCmd := newRmCommand(e)
	rmCmd.GroupID = groupTask

	mvCmd := newMvCommand(e)
	mvCmd.GroupID = groupTask

	boardCmd := newBoardCommand(e)
	boardCmd.GroupID = groupBoard

	tuiCmd := newTUICommand(e)
	tuiCmd.GroupID = groupBoard

	serveCmd := newServeCommand(e)
	serveCmd.GroupID = groupBoard

	root.AddCommand(
		configCmd,
		newCmd,
		showCmd,
		editCmd,
		rmCmd,
		mvCmd,
		boardCmd,
		tuiCmd,
		serveCmd,
	)

	return root
}

// init builds the container on first use and prints config warnings.
func (e *env) init(cmd *cobra.Command) error {
	if e.c != nil {
		return nil
	}
	if e.newContainer == nil {
		return fmt.Errorf("no container available")
	}
	if e.opts.Dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get current directory: %w", err)
		}
		e.opts.Dir = cwd
	}

	c, err := e.newContainer(e.opts)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	e.c = c

	for _, w := range c.AppConfig.Warnings {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	return nil
}

// launchTUI runs the interactive board until the user quits.
func launchTUI(cmd *cobra.Command, c *app.Container) error {
	model := tui.New(tui.Deps{
		LoadBoard:      c.LoadBoardUseCase(),
		MoveToPosition: c.MoveToPositionUseCase(),
		Drag:           c.DragController(),
		Cache:          c.Cache,
		CacheKey:       c.Config.CacheKey,
		Logger:         c.Logger,
	})
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	_, err := p.Run()
	return err
}
