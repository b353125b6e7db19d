package models

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError collects field-level complaints from validating a draft
// receipt together with the notification graph it points at. Field keys use
// the relation path, e.g. "notification.subject".
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

// NewValidationError creates an empty error set.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a complaint for a field path.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any complaint was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Merge folds another error set into this one.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, messages := range other.Fields {
		e.Fields[field] = append(e.Fields[field], messages...)
	}
}

// Error implements the error interface with a stable field ordering.
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// suppressDuplicateSubject drops the conversation-path subject complaint
// when the same problem was already reported against the notification
// itself. Validating the compound relation graph raises it twice; the
// caller should see each real problem once.
func (e *ValidationError) suppressDuplicateSubject() {
	if len(e.Fields["notification.subject"]) > 0 && len(e.Fields["notification.conversation.subject"]) > 0 {
		delete(e.Fields, "notification.conversation.subject")
	}
}
