package validation

import (
	"sort"
	"strings"

	"github.com/erp/adminpanel/internal/domain/shared"
)

// FieldErrors maps a field name to its message. Empty means valid.
type FieldErrors map[string]string

// Has reports whether name has a message
func (fe FieldErrors) Has(name string) bool {
	_, ok := fe[name]
	return ok
}

// Names returns the failing field names in sorted order
func (fe FieldErrors) Names() []string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Err returns nil when fe is empty and an *Error otherwise
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return &Error{Fields: fe}
}

// Error is returned when a payload does not pass its schema.
// It never leaves the client.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range e.Fields.Names() {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is matches shared.ErrInvalidInput
func (e *Error) Is(target error) bool {
	return target == shared.ErrInvalidInput
}
