package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

// TaskIDPrefix prefixes ids generated from titles.
const TaskIDPrefix = "task-"

// TempIDPrefix marks ids fabricated for optimistic predictions.
const TempIDPrefix = "tmp-"

// maxSlugLength bounds the title-derived part of generated ids.
const maxSlugLength = 48

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// validIDPattern matches ids that are safe to use as file names.
var validIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Slugify lowercases s and replaces every run of non-alphanumerics with '-'.
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// TaskIDFromTitle derives a task id from its title.
// Format: task-<slug>, or task-untitled when the title has no usable characters.
func TaskIDFromTitle(title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "untitled"
	}
	return TaskIDPrefix + slug
}

// IsValidTaskID reports whether id can be used as a task file name.
func IsValidTaskID(id string) bool {
	return validIDPattern.MatchString(id) && !strings.Contains(id, "..")
}

// IsTempID reports whether id was fabricated for an optimistic prediction.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// TaskFileName returns the file name of a task.
// Format: <id>.md
func TaskFileName(id string) string {
	return id + TaskFileExt
}

// TaskFilePath returns the canonical path of a task file.
func TaskFilePath(tasksDir, id string) string {
	return filepath.Join(tasksDir, TaskFileName(id))
}

// IsTaskFileName reports whether name matches the task file pattern.
func IsTaskFileName(name string) bool {
	return strings.HasSuffix(name, TaskFileExt) && !strings.HasPrefix(name, ".") && len(name) > len(TaskFileExt)
}

// LogPath returns the path to the log file.
func LogPath(boardDir string) string {
	return filepath.Join(boardDir, "logs", "mdboard.log")
}
