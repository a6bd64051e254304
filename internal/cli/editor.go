package cli

import (
	"fmt"
	"os"
	"os/exec"
)

// openEditorFunc is a function variable for opening the editor, allowing it to be mocked in tests.
var openEditorFunc = openEditor

// getEditor returns the user's preferred editor from environment variables.
// It checks EDITOR, then VISUAL, and defaults to vi if neither is set.
func getEditor() string {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}
	return editor
}

// openEditor opens the specified file in the user's editor.
func openEditor(filePath string) error {
	editor := getEditor()

	cmd := exec.Command(editor, filePath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run editor %s: %w", editor, err)
	}

	return nil
}
