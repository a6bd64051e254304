package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/usecase"
)

// endIndex places a task after every other task of a column.
const endIndex = math.MaxInt32

// newNewCommand creates the new command for creating tasks.
func newNewCommand(e *env) *cobra.Command {
	var opts struct {
		Title    string
		Body     string
		Status   string
		Priority string
		Assignee string
		Due      string
		Labels   []string
		Order    float64
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new task file.

The file is named after the title (task-<slug>.md). Status defaults to
todo and priority to medium. Without --order the task is appended to
the end of its column.

Examples:
  # Create a task
  mdboard new --title "Fix login bug"

  # Create a task in review with labels
  mdboard new --title "Add feature" --status review --label feature --label urgent

  # Create a task with a body using HEREDOC
  mdboard new --title "Complex task" --body "$(cat <<'EOF'
## Summary
- Step 1
- Step 2
EOF
)"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Title == "" {
				return fmt.Errorf("required flag(s) \"title\" not set")
			}

			input := usecase.NewTaskInput{
				Title:    opts.Title,
				Status:   domain.Status(opts.Status),
				Priority: domain.Priority(opts.Priority),
				Labels:   opts.Labels,
				Assignee: opts.Assignee,
				Due:      opts.Due,
				Content:  opts.Body,
			}
			if cmd.Flags().Changed("order") {
				input.Order = &opts.Order
			}

			uc := e.c.NewTaskUseCase()
			out, err := uc.Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&opts.Body, "body", "", "Task body (markdown)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Initial status (todo, in-progress, review, done)")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "Priority (low, medium, high, critical)")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Assignee")
	cmd.Flags().StringVar(&opts.Due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&opts.Labels, "label", nil, "Labels (can specify multiple)")
	cmd.Flags().Float64Var(&opts.Order, "order", 0, "Explicit sort key within the column")

	return cmd
}

// newShowCommand creates the show command.
func newShowCommand(e *env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display task details",
		Long: `Display the metadata and body of a task.

Examples:
  # Show a task
  mdboard show task-fix-login-bug

  # Output in JSON format
  mdboard show task-fix-login-bug --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := e.c.ShowTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out.Task)
			}

			printTaskDetails(cmd.OutOrStdout(), out.Task)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")

	return cmd
}

// taskFileFinder is implemented by stores backed by local files.
type taskFileFinder interface {
	FindTaskFilePath(id string) (string, error)
}

// newEditCommand creates the edit command.
func newEditCommand(e *env) *cobra.Command {
	var opts struct {
		Title        string
		Body         string
		Status       string
		Priority     string
		Labels       string
		Assignee     string
		Due          string
		AddLabels    []string
		RemoveLabels []string
		Order        float64
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task information",
		Long: `Edit an existing task.

If no flags are provided, the task file is opened in $EDITOR.
Otherwise the given fields are updated directly.

Examples:
  # Open task file in editor
  mdboard edit task-fix-login-bug

  # Change title and priority
  mdboard edit task-fix-login-bug --title "Fix OAuth login" --priority high

  # Replace all labels (comma-separated)
  mdboard edit task-fix-login-bug --labels bug,urgent

  # Clear the due date
  mdboard edit task-fix-login-bug --due ""

  # Add and remove labels
  mdboard edit task-fix-login-bug --add-label ui --rm-label draft`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			flags := cmd.Flags()

			hasFlags := flags.Changed("title") || flags.Changed("body") || flags.Changed("status") ||
				flags.Changed("priority") || flags.Changed("labels") || flags.Changed("assignee") ||
				flags.Changed("due") || flags.Changed("order") ||
				len(opts.AddLabels) > 0 || len(opts.RemoveLabels) > 0
			if !hasFlags {
				return editTaskWithEditor(cmd, e, taskID)
			}

			input := usecase.EditTaskInput{
				TaskID:       taskID,
				AddLabels:    opts.AddLabels,
				RemoveLabels: opts.RemoveLabels,
			}
			if flags.Changed("title") {
				input.Patch.Title = &opts.Title
			}
			if flags.Changed("body") {
				input.Patch.Content = &opts.Body
			}
			if flags.Changed("status") {
				status := domain.Status(opts.Status)
				input.Patch.Status = &status
			}
			if flags.Changed("priority") {
				priority := domain.Priority(opts.Priority)
				input.Patch.Priority = &priority
			}
			if flags.Changed("labels") {
				labels := splitLabels(opts.Labels)
				input.Patch.Labels = &labels
			}
			if flags.Changed("assignee") {
				input.Patch.Assignee = &opts.Assignee
			}
			if flags.Changed("due") {
				input.Patch.Due = &opts.Due
			}
			if flags.Changed("order") {
				input.Patch.Order = &opts.Order
			}

			uc := e.c.EditTaskUseCase()
			out, err := uc.Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New title")
	cmd.Flags().StringVar(&opts.Body, "body", "", "New body (markdown)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "New status")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "New priority")
	cmd.Flags().StringVar(&opts.Labels, "labels", "", "Replace all labels (comma-separated, empty to clear)")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "New assignee (empty to clear)")
	cmd.Flags().StringVar(&opts.Due, "due", "", "New due date (empty to clear)")
	cmd.Flags().Float64Var(&opts.Order, "order", 0, "New sort key")
	cmd.Flags().StringArrayVar(&opts.AddLabels, "add-label", nil, "Add label (can specify multiple)")
	cmd.Flags().StringArrayVar(&opts.RemoveLabels, "rm-label", nil, "Remove label (can specify multiple)")

	return cmd
}

// editTaskWithEditor opens the task file in the user's editor.
func editTaskWithEditor(cmd *cobra.Command, e *env, taskID string) error {
	finder, ok := e.c.Store.(taskFileFinder)
	if !ok {
		return errors.New("editor mode needs local task files; pass fields as flags when using --server")
	}
	path, err := finder.FindTaskFilePath(taskID)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("%s: %w", taskID, domain.ErrTaskNotFound)
	}
	if err := openEditorFunc(path); err != nil {
		return err
	}

	// Parse the result so a broken file is reported right away.
	if _, err := e.c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: taskID}); err != nil {
		return fmt.Errorf("edited file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", taskID)
	return nil
}

func splitLabels(s string) []string {
	labels := []string{}
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// newRmCommand creates the rm command.
func newRmCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Long: `Delete a task file.

Examples:
  # Delete task by ID
  mdboard rm task-fix-login-bug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := e.c.DeleteTaskUseCase()
			_, err := uc.Execute(cmd.Context(), usecase.DeleteTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}

	return cmd
}

// newMvCommand creates the mv command.
func newMvCommand(e *env) *cobra.Command {
	var opts struct {
		Status string
		Index  int
		Order  float64
	}

	cmd := &cobra.Command{
		Use:   "mv <id>",
		Short: "Move a task to a column and position",
		Long: `Move a task to another column or position.

--index is the 0-based position in the destination column, counted
without the moved task. Without --index or --order the task goes to
the end of the column. --order sets the sort key as is.

Examples:
  # Move to the end of review
  mdboard mv task-fix-login-bug --status review

  # Move to the top of in-progress
  mdboard mv task-fix-login-bug --status in-progress --index 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			status := domain.Status(opts.Status)
			if cmd.Flags().Changed("index") && cmd.Flags().Changed("order") {
				return errors.New("--index and --order cannot be used together")
			}

			var task *domain.Task
			if cmd.Flags().Changed("order") {
				out, err := e.c.MoveTaskUseCase().Execute(cmd.Context(), domain.MoveTaskInput{
					TaskID:    taskID,
					NewStatus: status,
					NewOrder:  opts.Order,
				})
				if err != nil {
					return err
				}
				task = out.Task
			} else {
				index := endIndex
				if cmd.Flags().Changed("index") {
					index = opts.Index
				}
				out, err := e.c.MoveToPositionUseCase().Execute(cmd.Context(), usecase.MoveToPositionInput{
					TaskID: taskID,
					Status: status,
					Index:  index,
				})
				if err != nil {
					return err
				}
				task = out.Task
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s to %s (order %s)\n",
				task.ID, task.Metadata.Status, formatOrder(task.Metadata.Order))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Destination status (required)")
	cmd.Flags().IntVar(&opts.Index, "index", 0, "Position in the destination column")
	cmd.Flags().Float64Var(&opts.Order, "order", 0, "Explicit sort key")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func formatOrder(order float64) string {
	return strconv.FormatFloat(order, 'f', -1, 64)
}

func printTaskDetails(w io.Writer, task *domain.Task) {
	m := task.Metadata

	_, _ = fmt.Fprintf(w, "# %s: %s\n\n", task.ID, m.Title)

	_, _ = fmt.Fprintf(w, "Status: %s\n", m.Status)
	_, _ = fmt.Fprintf(w, "Priority: %s\n", m.Priority)

	if len(m.Labels) > 0 {
		_, _ = fmt.Fprintf(w, "Labels: [%s]\n", strings.Join(m.Labels, ", "))
	} else {
		_, _ = fmt.Fprintln(w, "Labels: none")
	}

	if m.Assignee != "" {
		_, _ = fmt.Fprintf(w, "Assignee: %s\n", m.Assignee)
	}
	_, _ = fmt.Fprintf(w, "Created: %s\n", m.Created)
	if m.Due != "" {
		_, _ = fmt.Fprintf(w, "Due: %s\n", m.Due)
	}
	_, _ = fmt.Fprintf(w, "Order: %s\n", formatOrder(m.Order))
	if task.FilePath != "" {
		_, _ = fmt.Fprintf(w, "File: %s\n", task.FilePath)
	}

	if body := strings.TrimSpace(task.Content); body != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", body)
	}
}
