package cli

import (
	"github.com/spf13/cobra"
)

// newTUICommand creates the tui command for launching the interactive TUI.
// This is the same as running `mdboard` without arguments.
func newTUICommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive board",
		Long: `Launch the interactive terminal board.

Drag a card with the mouse to move it; press esc during a drag to cancel.
Use the arrow keys to select a card, H/L to move it to the previous/next
column and K/J to move it up/down.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd, e.c)
		},
	}
	return cmd
}
