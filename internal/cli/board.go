package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/usecase"
)

// newBoardCommand creates the board command.
func newBoardCommand(e *env) *cobra.Command {
	var opts struct {
		Status string
		JSON   bool
	}

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the board",
		Long: `Print every column of the board with its tasks in order.

Examples:
  # Print all columns
  mdboard board

  # Print a single column
  mdboard board --status review

  # Output in JSON format
  mdboard board --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := e.c.LoadBoardUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.LoadBoardInput{Refresh: true})
			if err != nil {
				return err
			}

			board := out.Board
			if opts.Status != "" {
				col := board.Column(domain.Status(opts.Status))
				if col == nil {
					return fmt.Errorf("%q: %w", opts.Status, domain.ErrUnknownColumn)
				}
				board.Columns = []domain.Column{*col}
			}

			if opts.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(board)
			}

			printBoard(cmd.OutOrStdout(), board)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Only print this column")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

// printBoard prints each column as a heading followed by an aligned task table.
func printBoard(w io.Writer, board *domain.Board) {
	for i, col := range board.Columns {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		header := fmt.Sprintf("## %s (%d", col.Title, len(col.Tasks))
		if col.Limit > 0 {
			header += fmt.Sprintf("/%d", col.Limit)
		}
		_, _ = fmt.Fprintln(w, header+")")

		if len(col.Tasks) == 0 {
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		for _, task := range col.Tasks {
			labels := "-"
			if len(task.Metadata.Labels) > 0 {
				labels = "[" + strings.Join(task.Metadata.Labels, ",") + "]"
			}
			assignee := "-"
			if task.Metadata.Assignee != "" {
				assignee = "@" + task.Metadata.Assignee
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				task.ID,
				task.Metadata.Priority,
				assignee,
				labels,
				task.Metadata.Title,
			)
		}
		_ = tw.Flush()
	}
}
