package catalog

import (
	"context"

	"github.com/erp/adminpanel/internal/application/form"
	"github.com/erp/adminpanel/internal/application/mutation"
	appshared "github.com/erp/adminpanel/internal/application/shared"
	"github.com/erp/adminpanel/internal/application/validation"
	"github.com/erp/adminpanel/internal/domain/catalog"
	"github.com/erp/adminpanel/internal/domain/shared"
	"github.com/erp/adminpanel/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// Kind is the cache kind of product entries
const Kind cache.Kind = "products"

// Notification texts
const (
	MsgCreated        = "Product created successfully"
	MsgCreateFailed   = "Something went wrong!"
	MsgCreateFailText = "Product could not be created"
	MsgUpdated        = "Product updated"
	MsgUpdateFailed   = "Failed to update product"
	MsgUpdateFailText = "Something went wrong"
	MsgDeleted        = "Product successfully deleted!"
	MsgDeleteFailed   = "Error!"
	MsgDeleteFailText = "Product could not be deleted."
	MsgConfirmDelete  = "Are you sure?"
	MsgConfirmText    = "This product will be deleted!"
)

// ProductAPI is the REST accessor for products
type ProductAPI interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
	Create(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	Update(ctx context.Context, id int64, in catalog.ProductInput) (catalog.Product, error)
	Delete(ctx context.Context, id int64) error
}

type (
	WriteRunner  = mutation.Runner[catalog.ProductInput, catalog.Product]
	DeleteRunner = mutation.Runner[int64, struct{}]
)

// ProductService binds products to the query cache, forms and mutation runners
type ProductService struct {
	products ProductAPI
	cache    *cache.QueryCache
	notifier appshared.Notifier
	schema   *validation.Schema[catalog.ProductInput]
	logger   *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	products ProductAPI,
	qc *cache.QueryCache,
	notifier appshared.Notifier,
	logger *zap.Logger,
) *ProductService {
	if notifier == nil {
		notifier = appshared.NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products: products,
		cache:    qc,
		notifier: notifier,
		schema:   validation.ProductSchema(),
		logger:   logger,
	}
}

func (s *ProductService) ListKey() cache.Key {
	return cache.ListKey(Kind)
}

func (s *ProductService) ItemKey(id int64) cache.Key {
	return cache.ItemKey(Kind, id)
}

// ReadList reads the product list without blocking
func (s *ProductService) ReadList() cache.Entry {
	return s.cache.Read(s.ListKey(), cache.Load(s.products.List))
}

// ReadOne reads one product without blocking
func (s *ProductService) ReadOne(id int64) cache.Entry {
	return s.cache.Read(s.ItemKey(id), cache.LoadItem(s.products.Get, id))
}

func (s *ProductService) List(ctx context.Context) ([]catalog.Product, error) {
	return cache.Fetch[[]catalog.Product](ctx, s.cache, s.ListKey(), cache.Load(s.products.List))
}

func (s *ProductService) Get(ctx context.Context, id int64) (catalog.Product, error) {
	return cache.Fetch[catalog.Product](ctx, s.cache, s.ItemKey(id), cache.LoadItem(s.products.Get, id))
}

// Search filters products by name and returns the requested page
func (s *ProductService) Search(ctx context.Context, term string, page, pageSize int) (shared.Paginated[catalog.Product], error) {
	products, err := s.List(ctx)
	if err != nil {
		return shared.Paginated[catalog.Product]{}, err
	}
	return shared.Paginate(catalog.Filter(products, term), page, pageSize), nil
}

func (s *ProductService) Schema() *validation.Schema[catalog.ProductInput] {
	return s.schema
}

// CreateForm returns a product form holding the defaults
func (s *ProductService) CreateForm() *form.Controller[catalog.ProductInput] {
	return form.New(s.schema, nil)
}

// EditForm loads product id through the cache and returns a form holding it
func (s *ProductService) EditForm(ctx context.Context, id int64) (*form.Controller[catalog.ProductInput], error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return form.New(s.schema, s.schema.Values(product.Input())), nil
}

func (s *ProductService) NewCreateRunner(opts ...mutation.Option[catalog.ProductInput, catalog.Product]) *WriteRunner {
	base := []mutation.Option[catalog.ProductInput, catalog.Product]{
		mutation.OnSuccess(func(ctx context.Context, in catalog.ProductInput, p catalog.Product) {
			s.logger.Info("Product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
			s.invalidate()
			s.notifier.Success(ctx, MsgCreated)
		}),
		mutation.OnError[catalog.ProductInput, catalog.Product](func(ctx context.Context, in catalog.ProductInput, err error) {
			s.logger.Warn("Failed to create product", zap.String("name", in.Name), zap.Error(err))
			s.notifier.Failure(ctx, MsgCreateFailed, MsgCreateFailText)
		}),
	}
	return mutation.New(s.products.Create, append(base, opts...)...)
}

func (s *ProductService) NewUpdateRunner(id int64, opts ...mutation.Option[catalog.ProductInput, catalog.Product]) *WriteRunner {
	update := func(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
		return s.products.Update(ctx, id, in)
	}
	base := []mutation.Option[catalog.ProductInput, catalog.Product]{
		mutation.OnSuccess(func(ctx context.Context, in catalog.ProductInput, p catalog.Product) {
			s.logger.Info("Product updated", zap.Int64("product_id", id))
			s.invalidate()
			s.notifier.Success(ctx, MsgUpdated)
		}),
		mutation.OnError[catalog.ProductInput, catalog.Product](func(ctx context.Context, in catalog.ProductInput, err error) {
			s.logger.Warn("Failed to update product", zap.Int64("product_id", id), zap.Error(err))
			s.notifier.Failure(ctx, MsgUpdateFailed, MsgUpdateFailText)
		}),
	}
	return mutation.New(update, append(base, opts...)...)
}

func (s *ProductService) NewDeleteRunner(opts ...mutation.Option[int64, struct{}]) *DeleteRunner {
	remove := func(ctx context.Context, id int64) (struct{}, error) {
		return struct{}{}, s.products.Delete(ctx, id)
	}
	base := []mutation.Option[int64, struct{}]{
		mutation.OnSuccess(func(ctx context.Context, id int64, _ struct{}) {
			s.logger.Info("Product deleted", zap.Int64("product_id", id))
			s.invalidate()
			s.notifier.Success(ctx, MsgDeleted)
		}),
		mutation.OnError[int64, struct{}](func(ctx context.Context, id int64, err error) {
			s.logger.Warn("Failed to delete product", zap.Int64("product_id", id), zap.Error(err))
			s.notifier.Failure(ctx, MsgDeleteFailed, MsgDeleteFailText)
		}),
	}
	return mutation.New(remove, append(base, opts...)...)
}

// ConfirmDelete asks before a product is deleted
func (s *ProductService) ConfirmDelete(ctx context.Context, confirmer appshared.Confirmer) (bool, error) {
	return confirmer.Confirm(ctx, MsgConfirmDelete, MsgConfirmText)
}

func (s *ProductService) invalidate() {
	n := s.cache.Invalidate(cache.MatchKind(Kind))
	s.logger.Debug("Invalidated product entries", zap.Int("count", n))
}
