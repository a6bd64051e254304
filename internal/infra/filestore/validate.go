package filestore

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/runoshun/mdboard/internal/domain"
)

// ValidateMetadata converts decoded front-matter into TaskMetadata.
// On failure it returns a *domain.ValidationError listing every offending
// field together with the fields that were accepted. Unknown keys are ignored.
func ValidateMetadata(fields map[string]any) (domain.TaskMetadata, error) {
	v := &metaValidator{fields: fields}
	m := domain.TaskMetadata{
		Priority: domain.DefaultPriority,
		Labels:   []string{},
	}

	m.ID = v.requiredString("id")
	m.Title = v.requiredString("title")

	if s := v.requiredString("status"); s != "" {
		if status := domain.Status(s); status.IsValid() {
			m.Status = status
		} else {
			v.fail("status", fmt.Sprintf("must be one of %s", joinStatuses()))
		}
	}

	if s, ok := v.optionalString("priority"); ok {
		if p := domain.Priority(s); p.IsValid() {
			m.Priority = p
		} else {
			v.fail("priority", "must be one of low, medium, high, critical")
		}
	}

	if labels, ok := v.labels("labels"); ok {
		m.Labels = labels
	}
	if s, ok := v.optionalString("assignee"); ok {
		m.Assignee = s
	}
	m.Created = v.date("created")
	m.Due = v.date("due")
	m.Order = v.order("order")

	if len(v.errs) > 0 {
		return domain.TaskMetadata{}, &domain.ValidationError{Fields: v.errs, Partial: m}
	}
	return m, nil
}

type metaValidator struct {
	fields map[string]any
	errs   []domain.FieldError
}

func (v *metaValidator) fail(field, msg string) {
	v.errs = append(v.errs, domain.FieldError{Field: field, Message: msg})
}

// value returns the raw value; nil and blank strings count as absent.
func (v *metaValidator) value(key string) (any, bool) {
	raw, ok := v.fields[key]
	if !ok || raw == nil {
		return nil, false
	}
	if s, isStr := raw.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return raw, true
}

func (v *metaValidator) requiredString(key string) string {
	raw, ok := v.value(key)
	if !ok {
		v.fail(key, "required")
		return ""
	}
	s, isStr := raw.(string)
	if !isStr {
		v.fail(key, fmt.Sprintf("expected string, got %T", raw))
		return ""
	}
	return strings.TrimSpace(s)
}

func (v *metaValidator) optionalString(key string) (string, bool) {
	raw, ok := v.value(key)
	if !ok {
		return "", false
	}
	s, isStr := raw.(string)
	if !isStr {
		v.fail(key, fmt.Sprintf("expected string, got %T", raw))
		return "", false
	}
	return strings.TrimSpace(s), true
}

func (v *metaValidator) labels(key string) ([]string, bool) {
	raw, ok := v.value(key)
	if !ok {
		return nil, false
	}
	items, isList := raw.([]any)
	if !isList {
		v.fail(key, fmt.Sprintf("expected list of strings, got %T", raw))
		return nil, false
	}
	labels := make([]string, 0, len(items))
	valid := true
	for i, item := range items {
		s, isStr := item.(string)
		if !isStr {
			v.fail(fmt.Sprintf("%s[%d]", key, i), fmt.Sprintf("expected string, got %T", item))
			valid = false
			continue
		}
		labels = append(labels, s)
	}
	return labels, valid
}

func (v *metaValidator) date(key string) string {
	raw, ok := v.value(key)
	if !ok {
		return ""
	}
	s, err := NormalizeDate(raw)
	if err != nil {
		v.fail(key, err.Error())
		return ""
	}
	return s
}

func (v *metaValidator) order(key string) float64 {
	raw, ok := v.value(key)
	if !ok {
		return 0
	}
	var f float64
	switch n := raw.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	default:
		v.fail(key, fmt.Sprintf("expected number, got %T", raw))
		return 0
	}
	if err := checkOrder(f); err != nil {
		v.fail(key, err.Error())
		return 0
	}
	return f
}

func checkOrder(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("must be a finite number")
	}
	if f < 0 {
		return fmt.Errorf("must be non-negative")
	}
	return nil
}

// NormalizeDate converts a date literal or string to YYYY-MM-DD.
// Full RFC 3339 timestamps are truncated to their date.
func NormalizeDate(raw any) (string, error) {
	switch d := raw.(type) {
	case time.Time:
		return d.Format(domain.DateLayout), nil
	case string:
		s := strings.TrimSpace(d)
		if t, err := time.Parse(domain.DateLayout, s); err == nil {
			return t.Format(domain.DateLayout), nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Format(domain.DateLayout), nil
		}
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	default:
		return "", fmt.Errorf("expected date, got %T", raw)
	}
}

func joinStatuses() string {
	statuses := domain.AllStatuses()
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// validateCreate checks a create request and fills its defaults.
func validateCreate(in domain.CreateTaskInput) (domain.CreateTaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, domain.ErrEmptyTitle
	}
	if in.Status == "" {
		in.Status = domain.StatusTodo
	}
	if !in.Status.IsValid() {
		return in, fmt.Errorf("%q: %w", in.Status, domain.ErrInvalidStatus)
	}
	if in.Priority == "" {
		in.Priority = domain.DefaultPriority
	}
	if !in.Priority.IsValid() {
		return in, fmt.Errorf("%q: %w", in.Priority, domain.ErrInvalidPriority)
	}
	var fieldErrs []domain.FieldError
	if in.Due != "" {
		due, err := NormalizeDate(in.Due)
		if err != nil {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "due", Message: err.Error()})
		}
		in.Due = due
	}
	if in.Order != nil {
		if err := checkOrder(*in.Order); err != nil {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "order", Message: err.Error()})
		}
	}
	if len(fieldErrs) > 0 {
		return in, &domain.ValidationError{Fields: fieldErrs}
	}
	return in, nil
}

// validatePatch checks a patch and normalizes its date fields.
func validatePatch(p domain.TaskPatch) (domain.TaskPatch, error) {
	if p.IsEmpty() {
		return p, domain.ErrNoFieldsToUpdate
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return p, domain.ErrEmptyTitle
		}
		p.Title = &title
	}
	if p.Status != nil && !p.Status.IsValid() {
		return p, fmt.Errorf("%q: %w", *p.Status, domain.ErrInvalidStatus)
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return p, fmt.Errorf("%q: %w", *p.Priority, domain.ErrInvalidPriority)
	}
	var fieldErrs []domain.FieldError
	if p.Due != nil && *p.Due != "" {
		due, err := NormalizeDate(*p.Due)
		if err != nil {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "due", Message: err.Error()})
		}
		p.Due = &due
	}
	if p.Order != nil {
		if err := checkOrder(*p.Order); err != nil {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "order", Message: err.Error()})
		}
	}
	if len(fieldErrs) > 0 {
		return p, &domain.ValidationError{Fields: fieldErrs}
	}
	return p, nil
}
