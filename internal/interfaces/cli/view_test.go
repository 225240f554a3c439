package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/adminpanel/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newView(t *testing.T, loader cache.Loader) (*ListView[[]string], *cache.QueryCache, *syncBuffer) {
	t.Helper()
	qc, err := cache.NewQueryCache(cache.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = qc.Close() })

	key := cache.ListKey("names")
	out := &syncBuffer{}
	view := NewListView(qc, key, func() cache.Entry { return qc.Read(key, loader) }, func(names []string) string {
		return strings.Join(names, ",") + "\n"
	}, "Error loading names", out)
	return view, qc, out
}

func TestListView_RendersLoadedValue(t *testing.T) {
	view, _, out := newView(t, func(ctx context.Context) (any, error) {
		return []string{"ann", "bob"}, nil
	})

	view.Mount()
	defer view.Unmount()
	require.NoError(t, view.Wait(context.Background()))

	assert.Equal(t, "ann,bob\n", out.String())
	assert.Equal(t, 1, view.Renders())
}

func TestListView_RefetchesWhenInvalidated(t *testing.T) {
	var calls atomic.Int32
	view, qc, out := newView(t, func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return []string{"ann"}, nil
		}
		return []string{"ann", "cleo"}, nil
	})

	view.Mount()
	require.NoError(t, view.Wait(context.Background()))

	assert.Equal(t, 1, qc.Invalidate(cache.MatchKind("names")))
	assert.Eventually(t, func() bool { return view.Renders() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "ann\nann,cleo\n", out.String())
	assert.Equal(t, int32(2), calls.Load())

	// Unmounted views neither render nor trigger a refetch
	view.Unmount()
	qc.Invalidate(cache.MatchAll())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, view.Renders())
	assert.Equal(t, int32(2), calls.Load())
}

func TestListView_RendersErrorInline(t *testing.T) {
	boom := errors.New("connection refused")
	view, _, out := newView(t, func(ctx context.Context) (any, error) {
		return nil, boom
	})

	view.Mount()
	defer view.Unmount()
	err := view.Wait(context.Background())
	require.ErrorIs(t, err, boom)

	assert.Contains(t, out.String(), "Error loading names")
	assert.Contains(t, out.String(), "connection refused")
}

func TestListView_WaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	view, _, _ := newView(t, func(ctx context.Context) (any, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return []string{}, nil
	})

	view.Mount()
	defer view.Unmount()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, view.Wait(ctx), context.DeadlineExceeded)
	assert.Equal(t, 0, view.Renders())
}

func TestListView_MountTwice(t *testing.T) {
	var calls atomic.Int32
	view, _, _ := newView(t, func(ctx context.Context) (any, error) {
		calls.Add(1)
		return []string{"ann"}, nil
	})

	view.Mount()
	view.Mount()
	defer view.Unmount()
	require.NoError(t, view.Wait(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, view.Renders())
}
