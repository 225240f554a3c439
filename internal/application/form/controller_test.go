package form

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/erp/adminpanel/internal/application/validation"
	"github.com/erp/adminpanel/internal/domain/catalog"
	"github.com/erp/adminpanel/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StartsPristineWithDefaults(t *testing.T) {
	c := New(validation.ProductSchema(), nil)

	fields := c.Fields()
	require.Len(t, fields, 3)
	for _, f := range fields {
		assert.Equal(t, StatePristine, f.State, f.Name)
		assert.False(t, f.Touched())
	}
	assert.Equal(t, map[string]any{"name": "", "price": float64(0), "inStock": false}, c.Raw())
	assert.True(t, c.Valid())
	assert.False(t, c.Dirty())

	_, ok := c.Values()
	assert.False(t, ok)
}

func TestController_SetValidatesOnlyThatField(t *testing.T) {
	c := New(validation.ProductSchema(), nil)

	require.NoError(t, c.Set("name", "L"))
	name, err := c.Field("name")
	require.NoError(t, err)
	assert.Equal(t, StateInvalid, name.State)
	assert.Equal(t, "Name is required", name.Message)

	// price is also invalid under the defaults but has not been edited
	price, err := c.Field("price")
	require.NoError(t, err)
	assert.Equal(t, StatePristine, price.State)
	assert.Equal(t, validation.FieldErrors{"name": "Name is required"}, c.Errors())
	assert.False(t, c.Valid())

	require.NoError(t, c.Set("name", "Lamp"))
	name, _ = c.Field("name")
	assert.Equal(t, StateValid, name.State)
	assert.Empty(t, name.Message)
	assert.True(t, c.Valid())
	assert.True(t, c.Dirty())
}

func TestController_Touch(t *testing.T) {
	c := New(validation.UserSchema(), nil)

	require.NoError(t, c.Touch("email"))
	f, err := c.Field("email")
	require.NoError(t, err)
	assert.Equal(t, StateTouched, f.State)
	assert.Empty(t, f.Message)

	// Touch never downgrades a validated field
	require.NoError(t, c.Set("email", ""))
	require.NoError(t, c.Touch("email"))
	f, _ = c.Field("email")
	assert.Equal(t, StateInvalid, f.State)
}

func TestController_UnknownField(t *testing.T) {
	c := New(validation.UserSchema(), nil)

	assert.ErrorIs(t, c.Set("age", 3), ErrUnknownField)
	assert.ErrorIs(t, c.Touch("age"), ErrUnknownField)
	_, err := c.Field("age")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestController_SubmitBlockedWhileInvalid(t *testing.T) {
	existing := catalog.Product{ID: 3, Name: "Desk", Price: 120, InStock: true}
	schema := validation.ProductSchema()
	c := New(schema, schema.Values(existing.Input()))
	require.NoError(t, c.Set("price", -5))

	var calls atomic.Int32
	err := c.Submit(context.Background(), func(ctx context.Context, in catalog.ProductInput) error {
		calls.Add(1)
		return nil
	})

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validation.FieldErrors{"price": "Price must be greater than 0"}, verr.Fields)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, c.Submitting())
	_, ok := c.Values()
	assert.False(t, ok)
}

func TestController_SubmitSurfacesAllMessages(t *testing.T) {
	c := New(validation.UserSchema(), nil)

	err := c.Submit(context.Background(), func(context.Context, identity.UserInput) error {
		t.Fatal("handler must not run")
		return nil
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)

	for _, f := range c.Fields() {
		assert.Equal(t, StateInvalid, f.State, f.Name)
		assert.NotEmpty(t, f.Message, f.Name)
	}
}

func TestController_SubmitPassesValidatedPayload(t *testing.T) {
	c := New(validation.UserSchema(), nil)
	require.NoError(t, c.Set("name", "Ann"))
	require.NoError(t, c.Set("email", "a@x.com"))
	require.NoError(t, c.Set("role", "admin"))

	var got identity.UserInput
	err := c.Submit(context.Background(), func(ctx context.Context, in identity.UserInput) error {
		got = in
		return nil
	})
	require.NoError(t, err)

	want := identity.UserInput{Name: "Ann", Email: "a@x.com", Role: "admin"}
	assert.Equal(t, want, got)
	values, ok := c.Values()
	require.True(t, ok)
	assert.Equal(t, want, values)
}

func TestController_SubmitReturnsHandlerError(t *testing.T) {
	c := New(validation.UserSchema(), map[string]any{"name": "Ann", "email": "a@x.com", "role": "user"})
	boom := errors.New("boom")

	err := c.Submit(context.Background(), func(context.Context, identity.UserInput) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Submitting())
}

func TestController_SubmitWhileSubmitting(t *testing.T) {
	c := New(validation.UserSchema(), map[string]any{"name": "Ann", "email": "a@x.com", "role": "user"})

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- c.Submit(context.Background(), func(context.Context, identity.UserInput) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	assert.True(t, c.Submitting())
	assert.ErrorIs(t, c.Submit(context.Background(), func(context.Context, identity.UserInput) error {
		return nil
	}), ErrSubmitting)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.Submitting())
}

func TestController_Reset(t *testing.T) {
	schema := validation.UserSchema()
	c := New(schema, nil)
	require.NoError(t, c.Set("name", ""))
	assert.False(t, c.Valid())

	loaded := identity.User{ID: 4, Name: "Bob", Email: "b@x.com", Role: identity.RoleManager}
	c.Reset(schema.Values(loaded.Input()))

	for _, f := range c.Fields() {
		assert.Equal(t, StatePristine, f.State, f.Name)
		assert.Empty(t, f.Message)
	}
	assert.Equal(t, map[string]any{"name": "Bob", "email": "b@x.com", "role": "manager"}, c.Raw())
	assert.False(t, c.Dirty())
	assert.True(t, c.Valid())

	c.Reset(map[string]any{"name": "Partial"})
	assert.Equal(t, map[string]any{"name": "Partial", "email": "", "role": ""}, c.Raw())

	c.Reset(nil)
	assert.Equal(t, schema.Defaults(), c.Raw())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pristine", StatePristine.String())
	assert.Equal(t, "touched", StateTouched.String())
	assert.Equal(t, "valid", StateValid.String())
	assert.Equal(t, "invalid", StateInvalid.String())
}
