package identity

import (
	"context"
	"net/http"
	"testing"

	"github.com/erp/adminpanel/internal/application/mutation"
	appshared "github.com/erp/adminpanel/internal/application/shared"
	"github.com/erp/adminpanel/internal/application/validation"
	"github.com/erp/adminpanel/internal/domain/identity"
	"github.com/erp/adminpanel/internal/infrastructure/api"
	"github.com/erp/adminpanel/internal/infrastructure/cache"
	"github.com/erp/adminpanel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	fake     *testutil.FakeAPI
	cache    *cache.QueryCache
	notifier *appshared.RecordingNotifier
	service  *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := testutil.NewFakeAPI(t)
	fake.Seed(t, "users",
		identity.User{ID: 1, Name: "Bob", Email: "bob@x.com", Role: identity.RoleManager},
		identity.User{ID: 2, Name: "Cleo", Email: "cleo@x.com", Role: identity.RoleUser},
	)
	qc, err := cache.NewQueryCache(cache.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = qc.Close() })

	notifier := &appshared.RecordingNotifier{}
	return &fixture{
		fake:     fake,
		cache:    qc,
		notifier: notifier,
		service:  NewUserService(api.NewUsers(fake.Client(t)), qc, notifier, zaptest.NewLogger(t)),
	}
}

func TestUserService_ListIsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users, err := f.service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = f.service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fake.Calls(http.MethodGet, "/users"))
}

func TestUserService_CreateInvalidatesList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.List(ctx)
	require.NoError(t, err)
	_, err = f.service.Get(ctx, 1)
	require.NoError(t, err)

	c := f.service.CreateForm()
	require.NoError(t, c.Set("name", "Ann"))
	require.NoError(t, c.Set("email", "a@x.com"))
	require.NoError(t, c.Set("role", "admin"))

	runner := f.service.NewCreateRunner()
	var created identity.User
	err = c.Submit(ctx, func(ctx context.Context, in identity.UserInput) error {
		var err error
		created, err = runner.Run(ctx, in)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", created.Name)
	assert.Equal(t, 1, f.fake.Calls(http.MethodPost, "/users"))

	list, ok := f.cache.Peek(f.service.ListKey())
	require.True(t, ok)
	assert.True(t, list.Stale)
	item, ok := f.cache.Peek(f.service.ItemKey(1))
	require.True(t, ok)
	assert.True(t, item.Stale)

	last, ok := f.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, appshared.Notification{Title: MsgCreated}, last)

	users, err := f.service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Equal(t, 2, f.fake.Calls(http.MethodGet, "/users"))

	// Only one refetch per invalidation
	_, err = f.service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.fake.Calls(http.MethodGet, "/users"))
}

func TestUserService_CreateFailureNotifies(t *testing.T) {
	f := newFixture(t)
	f.fake.FailNext(http.MethodPost, "/users", http.StatusInternalServerError)

	runner := f.service.NewCreateRunner()
	_, err := runner.Run(context.Background(), identity.UserInput{Name: "Ann", Email: "a@x.com", Role: "admin"})
	_, isHTTP := api.AsHTTPError(err)
	assert.True(t, isHTTP)
	assert.Equal(t, mutation.StateError, runner.State())

	assert.Equal(t, []appshared.Notification{
		{Failure: true, Title: MsgCreateFailed, Text: MsgCreateFailText},
	}, f.notifier.Notifications())
}

func TestUserService_InvalidFormSendsNothing(t *testing.T) {
	f := newFixture(t)
	c := f.service.CreateForm()
	require.NoError(t, c.Set("name", "Ann"))

	runner := f.service.NewCreateRunner()
	err := c.Submit(context.Background(), func(ctx context.Context, in identity.UserInput) error {
		_, err := runner.Run(ctx, in)
		return err
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"email", "role"}, verr.Fields.Names())
	assert.Zero(t, f.fake.TotalCalls())
	assert.Empty(t, f.notifier.Notifications())
}

func TestUserService_EditFormAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.service.EditForm(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Bob", "email": "bob@x.com", "role": "manager"}, c.Raw())
	assert.False(t, c.Dirty())

	require.NoError(t, c.Set("role", "admin"))
	runner := f.service.NewUpdateRunner(1)
	err = c.Submit(ctx, func(ctx context.Context, in identity.UserInput) error {
		_, err := runner.Run(ctx, in)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.fake.Calls(http.MethodPut, "/users/1"))

	user, err := f.service.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, user.Role)
	assert.Equal(t, 2, f.fake.Calls(http.MethodGet, "/users/1"))

	last, _ := f.notifier.Last()
	assert.Equal(t, MsgUpdated, last.Title)
}

func TestUserService_UpdateFailureNotifies(t *testing.T) {
	f := newFixture(t)
	runner := f.service.NewUpdateRunner(99)

	_, err := runner.Run(context.Background(), identity.UserInput{Name: "X", Email: "x", Role: "user"})
	assert.True(t, api.IsNotFound(err))
	last, _ := f.notifier.Last()
	assert.Equal(t, appshared.Notification{Failure: true, Title: MsgUpdateFailed, Text: MsgUpdateFailText}, last)
}

func TestUserService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.service.Get(ctx, 2)
	require.NoError(t, err)

	runner := f.service.NewDeleteRunner()
	_, err = runner.Run(ctx, 2)
	require.NoError(t, err)
	last, _ := f.notifier.Last()
	assert.Equal(t, MsgDeleted, last.Title)

	_, err = f.service.Get(ctx, 2)
	assert.True(t, api.IsNotFound(err))

	f.fake.FailNext(http.MethodDelete, "/users/1", http.StatusInternalServerError)
	_, err = runner.Run(ctx, 1)
	require.Error(t, err)
	last, _ = f.notifier.Last()
	assert.Equal(t, appshared.Notification{Failure: true, Title: MsgDeleteFailed, Text: MsgDeleteFailText}, last)
}

func TestUserService_ConcurrentMutationRejected(t *testing.T) {
	f := newFixture(t)
	release := f.fake.Block(http.MethodPost, "/users")
	in := identity.UserInput{Name: "Ann", Email: "a@x.com", Role: "admin"}

	pending := make(chan struct{})
	listener := mutation.WithStateListener[identity.UserInput, identity.User](func(s mutation.State) {
		if s == mutation.StatePending {
			close(pending)
		}
	})
	runner := f.service.NewCreateRunner(listener)

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), in)
		done <- err
	}()
	<-pending

	_, err := runner.Run(context.Background(), in)
	assert.ErrorIs(t, err, mutation.ErrConcurrentMutation)

	release()
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.fake.Calls(http.MethodPost, "/users"))
	assert.Len(t, f.notifier.Notifications(), 1)
}

func TestUserService_Search(t *testing.T) {
	f := newFixture(t)

	page, err := f.service.Search(context.Background(), "CLEO", 1, 5)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Items[0].ID)
	assert.Equal(t, 1, page.Total)

	page, err = f.service.Search(context.Background(), "", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, "Cleo", page.Items[0].Name)
}

type stubConfirmer struct {
	answer      bool
	title, text string
}

func (s *stubConfirmer) Confirm(_ context.Context, title, text string) (bool, error) {
	s.title, s.text = title, text
	return s.answer, nil
}

func TestUserService_ConfirmDelete(t *testing.T) {
	f := newFixture(t)
	confirmer := &stubConfirmer{answer: true}

	ok, err := f.service.ConfirmDelete(context.Background(), confirmer)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, MsgConfirmDelete, confirmer.title)
	assert.Equal(t, MsgConfirmText, confirmer.text)
}

func TestUserService_ReadIsNonBlocking(t *testing.T) {
	f := newFixture(t)
	release := f.fake.Block(http.MethodGet, "/users")
	defer release()

	entry := f.service.ReadList()
	assert.Equal(t, cache.StatusLoading, entry.Status)
	entry = f.service.ReadOne(1)
	assert.Equal(t, cache.StatusLoading, entry.Status)
}
