package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/erp/adminpanel/internal/domain/catalog"
	"github.com/erp/adminpanel/internal/domain/identity"
)

// Fixed collection paths of the REST backend
const (
	UsersPath    = "/users"
	ProductsPath = "/products"
)

// Resource is the typed accessor for one resource collection.
// T is the record served by the backend, In the editable field set sent on writes.
type Resource[T, In any] struct {
	client *Client
	path   string
}

// NewResource binds a collection path on c
func NewResource[T, In any](c *Client, path string) *Resource[T, In] {
	return &Resource[T, In]{client: c, path: path}
}

// NewUsers returns the accessor for /users
func NewUsers(c *Client) *Resource[identity.User, identity.UserInput] {
	return NewResource[identity.User, identity.UserInput](c, UsersPath)
}

// NewProducts returns the accessor for /products
func NewProducts(c *Client) *Resource[catalog.Product, catalog.ProductInput] {
	return NewResource[catalog.Product, catalog.ProductInput](c, ProductsPath)
}

// Path returns the collection path
func (r *Resource[T, In]) Path() string {
	return r.path
}

func (r *Resource[T, In]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

func (r *Resource[T, In]) itemRoute() string {
	return r.path + "/{id}"
}

// List performs GET {path}
func (r *Resource[T, In]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.client.do(ctx, http.MethodGet, r.path, r.path, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get performs GET {path}/{id}
func (r *Resource[T, In]) Get(ctx context.Context, id int64) (T, error) {
	var item T
	err := r.client.do(ctx, http.MethodGet, r.itemRoute(), r.itemPath(id), nil, &item)
	return item, err
}

// Create performs POST {path} and returns the stored record
func (r *Resource[T, In]) Create(ctx context.Context, in In) (T, error) {
	var item T
	err := r.client.do(ctx, http.MethodPost, r.path, r.path, in, &item)
	return item, err
}

// Update performs PUT {path}/{id} with the full editable field set
func (r *Resource[T, In]) Update(ctx context.Context, id int64, in In) (T, error) {
	var item T
	err := r.client.do(ctx, http.MethodPut, r.itemRoute(), r.itemPath(id), in, &item)
	return item, err
}

// Delete performs DELETE {path}/{id}
func (r *Resource[T, In]) Delete(ctx context.Context, id int64) error {
	return r.client.do(ctx, http.MethodDelete, r.itemRoute(), r.itemPath(id), nil, nil)
}
