package identity

import (
	"context"

	"github.com/erp/adminpanel/internal/application/form"
	"github.com/erp/adminpanel/internal/application/mutation"
	appshared "github.com/erp/adminpanel/internal/application/shared"
	"github.com/erp/adminpanel/internal/application/validation"
	"github.com/erp/adminpanel/internal/domain/identity"
	"github.com/erp/adminpanel/internal/domain/shared"
	"github.com/erp/adminpanel/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// Kind is the cache kind of user entries, shared by the list and every user id
const Kind cache.Kind = "users"

// Notification texts
const (
	MsgCreated        = "User created successfully"
	MsgCreateFailed   = "Something went wrong!"
	MsgCreateFailText = "User could not be created"
	MsgUpdated        = "User updated successfully"
	MsgUpdateFailed   = "Update failed"
	MsgUpdateFailText = "Something went wrong"
	MsgDeleted        = "User successfully deleted!"
	MsgDeleteFailed   = "Error!"
	MsgDeleteFailText = "User could not be deleted."
	MsgConfirmDelete  = "Are you sure?"
	MsgConfirmText    = "This user will be deleted!"
)

// UserAPI is the REST accessor for users
type UserAPI interface {
	List(ctx context.Context) ([]identity.User, error)
	Get(ctx context.Context, id int64) (identity.User, error)
	Create(ctx context.Context, in identity.UserInput) (identity.User, error)
	Update(ctx context.Context, id int64, in identity.UserInput) (identity.User, error)
	Delete(ctx context.Context, id int64) error
}

// Runner types for user mutations
type (
	CreateRunner = mutation.Runner[identity.UserInput, identity.User]
	UpdateRunner = mutation.Runner[identity.UserInput, identity.User]
	DeleteRunner = mutation.Runner[int64, struct{}]
)

// UserService binds users to the query cache, forms and mutation runners
type UserService struct {
	users    UserAPI
	cache    *cache.QueryCache
	notifier appshared.Notifier
	schema   *validation.Schema[identity.UserInput]
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	users UserAPI,
	qc *cache.QueryCache,
	notifier appshared.Notifier,
	logger *zap.Logger,
) *UserService {
	if notifier == nil {
		notifier = appshared.NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:    users,
		cache:    qc,
		notifier: notifier,
		schema:   validation.UserSchema(),
		logger:   logger,
	}
}

// ListKey is the cache key of the user list
func (s *UserService) ListKey() cache.Key {
	return cache.ListKey(Kind)
}

// ItemKey is the cache key of one user
func (s *UserService) ItemKey(id int64) cache.Key {
	return cache.ItemKey(Kind, id)
}

// ReadList reads the user list without blocking
func (s *UserService) ReadList() cache.Entry {
	return s.cache.Read(s.ListKey(), s.listLoader())
}

// ReadOne reads one user without blocking
func (s *UserService) ReadOne(id int64) cache.Entry {
	return s.cache.Read(s.ItemKey(id), cache.LoadItem(s.users.Get, id))
}

// List returns the cached user list, fetching it if needed
func (s *UserService) List(ctx context.Context) ([]identity.User, error) {
	return cache.Fetch[[]identity.User](ctx, s.cache, s.ListKey(), s.listLoader())
}

// Get returns one cached user, fetching it if needed
func (s *UserService) Get(ctx context.Context, id int64) (identity.User, error) {
	return cache.Fetch[identity.User](ctx, s.cache, s.ItemKey(id), cache.LoadItem(s.users.Get, id))
}

// Search filters the user list by term and returns the requested page
func (s *UserService) Search(ctx context.Context, term string, page, pageSize int) (shared.Paginated[identity.User], error) {
	users, err := s.List(ctx)
	if err != nil {
		return shared.Paginated[identity.User]{}, err
	}
	return shared.Paginate(identity.Filter(users, term), page, pageSize), nil
}

// Schema returns the schema shared by the create and edit forms
func (s *UserService) Schema() *validation.Schema[identity.UserInput] {
	return s.schema
}

// CreateForm returns an empty user form
func (s *UserService) CreateForm() *form.Controller[identity.UserInput] {
	return form.New(s.schema, nil)
}

// EditForm loads user id through the cache and returns a form holding it
func (s *UserService) EditForm(ctx context.Context, id int64) (*form.Controller[identity.UserInput], error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return form.New(s.schema, s.schema.Values(user.Input())), nil
}

// NewCreateRunner returns a runner that creates users. opts are applied
// after the service's own callbacks.
func (s *UserService) NewCreateRunner(opts ...mutation.Option[identity.UserInput, identity.User]) *CreateRunner {
	base := []mutation.Option[identity.UserInput, identity.User]{
		mutation.OnSuccess(func(ctx context.Context, in identity.UserInput, user identity.User) {
			s.logger.Info("User created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
			s.invalidate()
			s.notifier.Success(ctx, MsgCreated)
		}),
		mutation.OnError[identity.UserInput, identity.User](func(ctx context.Context, in identity.UserInput, err error) {
			s.logger.Warn("Failed to create user", zap.String("email", in.Email), zap.Error(err))
			s.notifier.Failure(ctx, MsgCreateFailed, MsgCreateFailText)
		}),
	}
	return mutation.New(s.users.Create, append(base, opts...)...)
}

// NewUpdateRunner returns a runner that replaces user id
func (s *UserService) NewUpdateRunner(id int64, opts ...mutation.Option[identity.UserInput, identity.User]) *UpdateRunner {
	update := func(ctx context.Context, in identity.UserInput) (identity.User, error) {
		return s.users.Update(ctx, id, in)
	}
	base := []mutation.Option[identity.UserInput, identity.User]{
		mutation.OnSuccess(func(ctx context.Context, in identity.UserInput, user identity.User) {
			s.logger.Info("User updated", zap.Int64("user_id", id))
			s.invalidate()
			s.notifier.Success(ctx, MsgUpdated)
		}),
		mutation.OnError[identity.UserInput, identity.User](func(ctx context.Context, in identity.UserInput, err error) {
			s.logger.Warn("Failed to update user", zap.Int64("user_id", id), zap.Error(err))
			s.notifier.Failure(ctx, MsgUpdateFailed, MsgUpdateFailText)
		}),
	}
	return mutation.New(update, append(base, opts...)...)
}

// NewDeleteRunner returns a runner that deletes users by id
func (s *UserService) NewDeleteRunner(opts ...mutation.Option[int64, struct{}]) *DeleteRunner {
	remove := func(ctx context.Context, id int64) (struct{}, error) {
		return struct{}{}, s.users.Delete(ctx, id)
	}
	base := []mutation.Option[int64, struct{}]{
		mutation.OnSuccess(func(ctx context.Context, id int64, _ struct{}) {
			s.logger.Info("User deleted", zap.Int64("user_id", id))
			s.invalidate()
			s.notifier.Success(ctx, MsgDeleted)
		}),
		mutation.OnError[int64, struct{}](func(ctx context.Context, id int64, err error) {
			s.logger.Warn("Failed to delete user", zap.Int64("user_id", id), zap.Error(err))
			s.notifier.Failure(ctx, MsgDeleteFailed, MsgDeleteFailText)
		}),
	}
	return mutation.New(remove, append(base, opts...)...)
}

// ConfirmDelete asks before a user is deleted
func (s *UserService) ConfirmDelete(ctx context.Context, confirmer appshared.Confirmer) (bool, error) {
	return confirmer.Confirm(ctx, MsgConfirmDelete, MsgConfirmText)
}

func (s *UserService) listLoader() cache.Loader {
	return cache.Load(s.users.List)
}

func (s *UserService) invalidate() {
	n := s.cache.Invalidate(cache.MatchKind(Kind))
	s.logger.Debug("Invalidated user entries", zap.Int("count", n))
}
