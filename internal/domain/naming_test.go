package domain

import (
	"path/filepath"
	"testing"
)

func TestTaskIDFromTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Welcome", "task-welcome"},
		{"spaces and case", "Fix Login Bug", "task-fix-login-bug"},
		{"punctuation collapsed", "Hello,  World!!", "task-hello-world"},
		{"leading and trailing junk", "  --Ship it--  ", "task-ship-it"},
		{"no usable chars", "???", "task-untitled"},
		{"empty", "", "task-untitled"},
		{"non-ascii dropped", "Café crème", "task-caf-cr-me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TaskIDFromTitle(tt.title); got != tt.want {
				t.Errorf("TaskIDFromTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugify_TruncatesLongTitles(t *testing.T) {
	title := "this is a very long title that keeps going well past the slug length limit"
	slug := Slugify(title)
	if len(slug) > maxSlugLength {
		t.Errorf("Slugify() length = %d, want <= %d", len(slug), maxSlugLength)
	}
	if slug[len(slug)-1] == '-' {
		t.Errorf("Slugify() = %q, must not end with '-'", slug)
	}
}

func TestIsValidTaskID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"task-welcome", true},
		{"task_1.2", true},
		{"A1", true},
		{"", false},
		{"-leading", false},
		{"../escape", false},
		{"a/b", false},
		{"a..b", false},
		{"has space", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := IsValidTaskID(tt.id); got != tt.want {
				t.Errorf("IsValidTaskID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIsTaskFileName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"task-a.md", true},
		{"README.txt", false},
		{".md", false},
		{".hidden.md", false},
		{"task-a.md.tmp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTaskFileName(tt.name); got != tt.want {
				t.Errorf("IsTaskFileName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestTaskFilePath(t *testing.T) {
	got := TaskFilePath("/tmp/tasks", "task-a")
	want := filepath.Join("/tmp/tasks", "task-a.md")
	if got != want {
		t.Errorf("TaskFilePath() = %q, want %q", got, want)
	}
	if !IsTempID(TempIDPrefix + "x") {
		t.Error("IsTempID() = false for temp prefix")
	}
}
