package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/mdboard/internal/domain"
)

const frontmatterDelimiter = "---"

var (
	errNoFrontmatter       = errors.New("invalid frontmatter: missing opening ---")
	errUnclosedFrontmatter = errors.New("invalid frontmatter: missing closing ---")
)

// Parse decodes the text of a task file.
// Schema violations are reported as a *domain.ParseError wrapping a
// *domain.ValidationError, so callers can match either.
func Parse(filePath, raw string) (*domain.Task, error) {
	front, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, &domain.ParseError{Path: filePath, Err: err}
	}

	fields := map[string]any{}
	if err := yaml.Unmarshal([]byte(front), &fields); err != nil {
		return nil, &domain.ParseError{Path: filePath, Err: fmt.Errorf("decode frontmatter: %w", err)}
	}

	meta, err := ValidateMetadata(fields)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			verr.Path = filePath
		}
		return nil, &domain.ParseError{Path: filePath, Err: err}
	}

	return &domain.Task{
		ID:       meta.ID,
		FilePath: filePath,
		Content:  strings.TrimSpace(body),
		Metadata: meta,
	}, nil
}

// splitFrontmatter separates the block between the leading --- lines from the body.
func splitFrontmatter(raw string) (front, body string, err error) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimPrefix(raw, "\ufeff")

	lines := strings.Split(raw, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != frontmatterDelimiter {
		return "", "", errNoFrontmatter
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == frontmatterDelimiter {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), nil
		}
	}
	return "", "", errUnclosedFrontmatter
}

// Serialize renders a task as file text.
// Keys are emitted in a fixed order; assignee and due only when set.
func Serialize(task *domain.Task) (string, error) {
	m := task.Metadata
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, strNode(key), value)
	}

	add("id", strNode(m.ID))
	add("title", strNode(m.Title))
	add("status", strNode(string(m.Status)))
	add("priority", strNode(string(m.Priority)))
	add("labels", labelsNode(m.Labels))
	if m.Assignee != "" {
		add("assignee", strNode(m.Assignee))
	}
	add("created", plainNode(m.Created))
	if m.Due != "" {
		add("due", plainNode(m.Due))
	}
	add("order", plainNode(strconv.FormatFloat(m.Order, 'f', -1, 64)))

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	buf.WriteString(frontmatterDelimiter + "\n")

	if content := strings.TrimSpace(task.Content); content != "" {
		buf.WriteString("\n")
		buf.WriteString(content)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

// strNode forces string typing, quoting values like "true" or "10" when needed.
func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func plainNode(v string) *yaml.Node {
	if v == "" {
		return strNode(v)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

func labelsNode(labels []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	if len(labels) == 0 {
		seq.Style = yaml.FlowStyle
		return seq
	}
	for _, l := range labels {
		seq.Content = append(seq.Content, strNode(l))
	}
	return seq
}
