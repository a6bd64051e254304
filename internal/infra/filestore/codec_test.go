package filestore

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/mdboard/internal/domain"
)

const welcomeFile = `---
id: task-welcome
title: Welcome
status: todo
priority: medium
labels:
  - docs
assignee: null
created: 2025-01-15
due: null
order: 10
---

## Body markdown content
`

func TestParse_ExampleFile(t *testing.T) {
	task, err := Parse("/tasks/task-welcome.md", welcomeFile)
	require.NoError(t, err)

	assert.Equal(t, "task-welcome", task.ID)
	assert.Equal(t, "/tasks/task-welcome.md", task.FilePath)
	assert.Equal(t, "## Body markdown content", task.Content)
	assert.Equal(t, domain.TaskMetadata{
		ID:       "task-welcome",
		Title:    "Welcome",
		Status:   domain.StatusTodo,
		Priority: domain.PriorityMedium,
		Labels:   []string{"docs"},
		Created:  "2025-01-15",
		Order:    10,
	}, task.Metadata)
}

func TestParse_Variants(t *testing.T) {
	tests := []struct {
		name  string
		front string
		check func(t *testing.T, m domain.TaskMetadata)
	}{
		{
			name:  "inline labels",
			front: "id: a\ntitle: A\nstatus: done\nlabels: [ui, bug]",
			check: func(t *testing.T, m domain.TaskMetadata) {
				assert.Equal(t, []string{"ui", "bug"}, m.Labels)
			},
		},
		{
			name:  "defaults",
			front: "id: a\ntitle: A\nstatus: review",
			check: func(t *testing.T, m domain.TaskMetadata) {
				assert.Equal(t, domain.PriorityMedium, m.Priority)
				assert.Equal(t, []string{}, m.Labels)
				assert.Equal(t, 0.0, m.Order)
				assert.Empty(t, m.Assignee)
				assert.Empty(t, m.Due)
			},
		},
		{
			name:  "quoted date and timestamp normalize",
			front: "id: a\ntitle: A\nstatus: todo\ncreated: \"2025-01-15\"\ndue: 2025-02-01T10:30:00Z",
			check: func(t *testing.T, m domain.TaskMetadata) {
				assert.Equal(t, "2025-01-15", m.Created)
				assert.Equal(t, "2025-02-01", m.Due)
			},
		},
		{
			name:  "empty scalars are absent",
			front: "id: a\ntitle: A\nstatus: todo\nassignee:\ndue: ''\nlabels:",
			check: func(t *testing.T, m domain.TaskMetadata) {
				assert.Empty(t, m.Assignee)
				assert.Empty(t, m.Due)
				assert.Equal(t, []string{}, m.Labels)
			},
		},
		{
			name:  "fractional order",
			front: "id: a\ntitle: A\nstatus: todo\norder: 12.5",
			check: func(t *testing.T, m domain.TaskMetadata) {
				assert.Equal(t, 12.5, m.Order)
			},
		},
		{
			name:  "unknown keys ignored",
			front: "id: a\ntitle: A\nstatus: todo\nestimate: 3",
			check: func(t *testing.T, m domain.TaskMetadata) {
				assert.Equal(t, "a", m.ID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := Parse("x.md", "---\n"+tt.front+"\n---\n")
			require.NoError(t, err)
			tt.check(t, task.Metadata)
		})
	}
}

func TestParse_CRLF(t *testing.T) {
	raw := strings.ReplaceAll(welcomeFile, "\n", "\r\n")
	task, err := Parse("x.md", raw)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", task.Metadata.Title)
	assert.Equal(t, "## Body markdown content", task.Content)
}

func TestParse_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name  string
		front string
		field string
	}{
		{"missing title", "id: a\nstatus: todo", "title"},
		{"missing status", "id: a\ntitle: A", "status"},
		{"missing id", "title: A\nstatus: todo", "id"},
		{"blank title", "id: a\ntitle: '  '\nstatus: todo", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := Parse("x.md", "---\n"+tt.front+"\n---\nbody")
			require.Error(t, err)
			assert.Nil(t, task)

			var perr *domain.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "x.md", perr.Path)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.True(t, verr.HasField(tt.field), "fields: %v", verr.Fields)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParse_InvalidFields(t *testing.T) {
	tests := []struct {
		name  string
		front string
		field string
	}{
		{"bad status", "status: closed", "status"},
		{"bad priority", "status: todo\npriority: urgent", "priority"},
		{"negative order", "status: todo\norder: -1", "order"},
		{"string order", "status: todo\norder: first", "order"},
		{"scalar labels", "status: todo\nlabels: docs", "labels"},
		{"non-string label", "status: todo\nlabels: [ok, [nested]]", "labels[1]"},
		{"bad date", "status: todo\ndue: tomorrow", "due"},
		{"numeric title", "status: todo\ntitle: 42", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front := "id: a\n" + tt.front
			if !strings.Contains(tt.front, "title:") {
				front += "\ntitle: A"
			}
			_, err := Parse("x.md", "---\n"+front+"\n---\n")

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "err: %v", err)
			assert.True(t, verr.HasField(tt.field), "fields: %v", verr.Fields)
			assert.Equal(t, "a", verr.Partial.ID)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no frontmatter", "just a note\n"},
		{"unclosed frontmatter", "---\nid: a\ntitle: A\n"},
		{"broken yaml", "---\nid: [a\n---\n"},
		{"non-mapping", "---\n- a\n- b\n---\n"},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x.md", tt.raw)
			var perr *domain.ParseError
			assert.True(t, errors.As(err, &perr), "err: %v", err)
		})
	}
}

func TestSerialize_CanonicalOutput(t *testing.T) {
	task := &domain.Task{
		ID:      "task-welcome",
		Content: "## Body markdown content",
		Metadata: domain.TaskMetadata{
			ID:       "task-welcome",
			Title:    "Welcome",
			Status:   domain.StatusTodo,
			Priority: domain.PriorityMedium,
			Labels:   []string{"docs"},
			Created:  "2025-01-15",
			Order:    10,
		},
	}

	got, err := Serialize(task)
	require.NoError(t, err)
	want := "---\n" +
		"id: task-welcome\n" +
		"title: Welcome\n" +
		"status: todo\n" +
		"priority: medium\n" +
		"labels:\n" +
		"  - docs\n" +
		"created: 2025-01-15\n" +
		"order: 10\n" +
		"---\n" +
		"\n" +
		"## Body markdown content\n"
	assert.Equal(t, want, got)
}

func TestSerialize_OptionalFields(t *testing.T) {
	task := &domain.Task{
		ID: "a",
		Metadata: domain.TaskMetadata{
			ID: "a", Title: "A", Status: domain.StatusDone, Priority: domain.PriorityLow,
			Labels: []string{}, Created: "2025-01-15", Order: 2.5,
		},
	}
	got, err := Serialize(task)
	require.NoError(t, err)
	assert.NotContains(t, got, "assignee")
	assert.NotContains(t, got, "due")
	assert.NotContains(t, got, "null")
	assert.Contains(t, got, "labels: []\n")
	assert.Contains(t, got, "order: 2.5\n")
	assert.True(t, strings.HasSuffix(got, "---\n"))

	task.Metadata.Assignee = "alice"
	task.Metadata.Due = "2025-03-01"
	got, err = Serialize(task)
	require.NoError(t, err)
	assert.Contains(t, got, "assignee: alice\n")
	assert.Contains(t, got, "due: 2025-03-01\n")
	assert.Less(t, strings.Index(got, "assignee:"), strings.Index(got, "created:"))
	assert.Less(t, strings.Index(got, "created:"), strings.Index(got, "due:"))
}

func TestRoundTrip(t *testing.T) {
	tasks := []*domain.Task{
		{
			ID:      "task-welcome",
			Content: "## Body markdown content",
			Metadata: domain.TaskMetadata{
				ID: "task-welcome", Title: "Welcome", Status: domain.StatusTodo,
				Priority: domain.PriorityMedium, Labels: []string{"docs"},
				Created: "2025-01-15", Order: 10,
			},
		},
		{
			ID:      "task-tricky",
			Content: "line 1\n\n---\n\nline after a rule",
			Metadata: domain.TaskMetadata{
				ID: "task-tricky", Title: "Fix: login # now", Status: domain.StatusInProgress,
				Priority: domain.PriorityCritical, Labels: []string{"true", "10", "a, b", "- dash"},
				Assignee: "@bob", Created: "2024-12-31", Due: "2025-01-02", Order: 1.0000001,
			},
		},
		{
			ID: "task-yes",
			Metadata: domain.TaskMetadata{
				ID: "task-yes", Title: "yes", Status: domain.StatusReview,
				Priority: domain.PriorityHigh, Labels: []string{},
				Assignee: "null", Created: "2025-06-01", Order: 0,
			},
		},
		{
			ID:      "task-unicode",
			Content: "Café crème ☕",
			Metadata: domain.TaskMetadata{
				ID: "task-unicode", Title: "Revue: « café »", Status: domain.StatusDone,
				Priority: domain.PriorityLow, Labels: []string{"i18n"},
				Created: "2025-01-15", Order: 123456.789,
			},
		},
	}

	for _, task := range tasks {
		t.Run(task.ID, func(t *testing.T) {
			task.FilePath = "/tasks/" + task.ID + ".md"
			raw, err := Serialize(task)
			require.NoError(t, err)

			got, err := Parse(task.FilePath, raw)
			require.NoError(t, err, raw)
			assert.Equal(t, task, got)
		})
	}
}
