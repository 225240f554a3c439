// Package form tracks the state of an edit form and gates its submission
// on a validation.Schema.
package form

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/erp/adminpanel/internal/application/validation"
)

var (
	// ErrUnknownField is returned for a field name the schema does not declare
	ErrUnknownField = errors.New("form: unknown field")
	// ErrSubmitting is returned by Submit while a previous submit is still running
	ErrSubmitting = errors.New("form: submit already in progress")
)

// State is the lifecycle of a single field
type State int

const (
	StatePristine State = iota
	StateTouched
	StateValid
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StatePristine:
		return "pristine"
	case StateTouched:
		return "touched"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// FieldState is a snapshot of one field
type FieldState struct {
	Name    string
	Value   any
	State   State
	Message string
}

// Touched reports whether the field has left the pristine state
func (f FieldState) Touched() bool {
	return f.State != StatePristine
}

// Handler performs the network-issuing step of a submit
type Handler[T any] func(ctx context.Context, in T) error

// Controller holds raw field values and their states for one form.
// It is safe for concurrent use.
type Controller[T any] struct {
	mu         sync.Mutex
	schema     *validation.Schema[T]
	fields     map[string]*FieldState
	initial    map[string]any
	values     T
	hasValues  bool
	submitting bool
}

// New creates a controller with every field pristine, holding values or,
// when values is nil, the schema defaults
func New[T any](schema *validation.Schema[T], values map[string]any) *Controller[T] {
	c := &Controller[T]{schema: schema}
	c.reset(values)
	return c
}

// Set stores value for name, marks it touched and re-validates it.
// Other fields keep their state.
func (c *Controller[T]) Set(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.fields[name]
	if !ok {
		return ErrUnknownField
	}
	f.Value = value
	f.State = StateTouched

	_, errs := c.schema.Validate(c.raw())
	c.apply(f, errs)
	return nil
}

// Touch marks name as touched without validating it
func (c *Controller[T]) Touch(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.fields[name]
	if !ok {
		return ErrUnknownField
	}
	if f.State == StatePristine {
		f.State = StateTouched
	}
	return nil
}

// Field returns the state of name
func (c *Controller[T]) Field(name string) (FieldState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.fields[name]
	if !ok {
		return FieldState{}, ErrUnknownField
	}
	return *f, nil
}

// Fields returns every field in schema order
func (c *Controller[T]) Fields() []FieldState {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]FieldState, 0, len(c.fields))
	for _, decl := range c.schema.Fields() {
		out = append(out, *c.fields[decl.Name])
	}
	return out
}

// Raw returns a copy of the current unvalidated values
func (c *Controller[T]) Raw() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw()
}

// Errors returns the messages of every invalid field
func (c *Controller[T]) Errors() validation.FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := validation.FieldErrors{}
	for name, f := range c.fields {
		if f.State == StateInvalid {
			errs[name] = f.Message
		}
	}
	return errs
}

// Valid reports whether no field is currently invalid. Untouched fields are
// not checked until Submit.
func (c *Controller[T]) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.fields {
		if f.State == StateInvalid {
			return false
		}
	}
	return true
}

// Dirty reports whether any value differs from the last reset
func (c *Controller[T]) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, f := range c.fields {
		if !reflect.DeepEqual(f.Value, c.initial[name]) {
			return true
		}
	}
	return false
}

// Submitting reports whether a submit handler is running
func (c *Controller[T]) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Values returns the payload validated by the last Submit that passed validation
func (c *Controller[T]) Values() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values, c.hasValues
}

// Submit validates every field, surfacing all messages at once. When any
// field is invalid it returns a *validation.Error and handler is not called.
// Otherwise handler receives the validated payload and its error is returned.
func (c *Controller[T]) Submit(ctx context.Context, handler Handler[T]) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitting
	}

	in, errs := c.schema.Validate(c.raw())
	for _, f := range c.fields {
		c.apply(f, errs)
	}
	if err := errs.Err(); err != nil {
		c.mu.Unlock()
		return err
	}

	c.values = in
	c.hasValues = true
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()
	return handler(ctx, in)
}

// Reset puts every field back to pristine holding values, or the schema
// defaults when values is nil. Missing keys take their default.
func (c *Controller[T]) Reset(values map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(values)
}

func (c *Controller[T]) reset(values map[string]any) {
	defaults := c.schema.Defaults()
	c.fields = make(map[string]*FieldState, len(defaults))
	c.initial = make(map[string]any, len(defaults))
	for _, decl := range c.schema.Fields() {
		v, ok := values[decl.Name]
		if !ok {
			v = defaults[decl.Name]
		}
		c.fields[decl.Name] = &FieldState{Name: decl.Name, Value: v, State: StatePristine}
		c.initial[decl.Name] = v
	}
	var zero T
	c.values = zero
	c.hasValues = false
}

func (c *Controller[T]) raw() map[string]any {
	out := make(map[string]any, len(c.fields))
	for name, f := range c.fields {
		out[name] = f.Value
	}
	return out
}

// apply sets f valid or invalid from errs. Caller holds c.mu.
func (c *Controller[T]) apply(f *FieldState, errs validation.FieldErrors) {
	if msg, ok := errs[f.Name]; ok {
		f.State = StateInvalid
		f.Message = msg
		return
	}
	f.State = StateValid
	f.Message = ""
}
