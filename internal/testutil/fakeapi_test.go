package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/erp/adminpanel/internal/domain/catalog"
	"github.com/erp/adminpanel/internal/domain/identity"
	"github.com/erp/adminpanel/internal/infrastructure/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeAPI_CRUD(t *testing.T) {
	fake := NewFakeAPI(t)
	fake.Seed(t, "products", catalog.Product{ID: 7, Name: "Lamp", Price: 19.5, InStock: true})
	products := api.NewProducts(fake.Client(t))
	ctx := context.Background()

	list, err := products.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Product{{ID: 7, Name: "Lamp", Price: 19.5, InStock: true}}, list)

	created, err := products.Create(ctx, catalog.ProductInput{Name: "Desk", Price: 120})
	require.NoError(t, err)
	assert.Equal(t, int64(8), created.ID)

	updated, err := products.Update(ctx, 8, catalog.ProductInput{Name: "Desk", Price: 99, InStock: true})
	require.NoError(t, err)
	assert.Equal(t, catalog.Product{ID: 8, Name: "Desk", Price: 99, InStock: true}, updated)

	require.NoError(t, products.Delete(ctx, 7))
	_, err = products.Get(ctx, 7)
	assert.True(t, api.IsNotFound(err))

	assert.Equal(t, 1, fake.Calls(http.MethodGet, "/products"))
	assert.Equal(t, 1, fake.Calls(http.MethodPost, "/products"))
	assert.Equal(t, 1, fake.Calls(http.MethodPut, "/products/8"))
	assert.Equal(t, 1, fake.Calls(http.MethodDelete, "/products/7"))
	assert.Equal(t, 1, fake.Calls(http.MethodGet, "/products/7"))
	assert.Equal(t, 5, fake.TotalCalls())

	fake.ResetCalls()
	assert.Zero(t, fake.TotalCalls())
}

func TestFakeAPI_FailNext(t *testing.T) {
	fake := NewFakeAPI(t)
	users := api.NewUsers(fake.Client(t))
	fake.FailNext(http.MethodPost, "/users", http.StatusInternalServerError)

	_, err := users.Create(context.Background(), identity.UserInput{Name: "Ann", Email: "a@x.com", Role: "admin"})
	httpErr, ok := api.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)

	// Only the next request fails
	_, err = users.Create(context.Background(), identity.UserInput{Name: "Ann", Email: "a@x.com", Role: "admin"})
	require.NoError(t, err)
}

func TestFakeAPI_Block(t *testing.T) {
	fake := NewFakeAPI(t)
	users := api.NewUsers(fake.Client(t))
	release := fake.Block(http.MethodGet, "/users")

	done := make(chan error, 1)
	go func() {
		_, err := users.List(context.Background())
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("request was not held")
	default:
	}
	release()
	require.NoError(t, <-done)
}
