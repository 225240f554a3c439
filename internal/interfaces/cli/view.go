package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/erp/adminpanel/internal/infrastructure/cache"
)

// ListView renders a cache entry while mounted. It subscribes on Mount,
// re-reads the entry when it is invalidated, and stops rendering on Unmount.
// The fetch itself is never cancelled by Unmount.
type ListView[T any] struct {
	cache     *cache.QueryCache
	key       cache.Key
	read      func() cache.Entry
	render    func(T) string
	errorText string
	out       io.Writer

	mu          sync.Mutex
	unsubscribe func()
	rendered    uint64
	settled     chan struct{}
	settleOnce  sync.Once
	err         error
	renders     int
}

// NewListView creates an unmounted view of key. read performs the cache read
// for key; render turns the loaded value into text; errorText is shown in
// place of the rendered value when loading fails.
func NewListView[T any](qc *cache.QueryCache, key cache.Key, read func() cache.Entry, render func(T) string, errorText string, out io.Writer) *ListView[T] {
	return &ListView[T]{
		cache:     qc,
		key:       key,
		read:      read,
		render:    render,
		errorText: errorText,
		out:       out,
		settled:   make(chan struct{}),
	}
}

// Mount subscribes to the entry and reads it
func (v *ListView[T]) Mount() {
	v.mu.Lock()
	if v.unsubscribe != nil {
		v.mu.Unlock()
		return
	}
	v.unsubscribe = v.cache.Subscribe(v.key, v.onChange)
	v.mu.Unlock()

	v.onChange(v.read())
}

// Unmount stops all further rendering
func (v *ListView[T]) Unmount() {
	v.mu.Lock()
	unsubscribe := v.unsubscribe
	v.unsubscribe = nil
	v.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Wait blocks until the view has rendered a settled entry, returning the
// load error if that entry failed
func (v *ListView[T]) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-v.settled:
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Renders returns how many times the view has drawn a settled entry
func (v *ListView[T]) Renders() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renders
}

func (v *ListView[T]) onChange(e cache.Entry) {
	if e.Stale {
		v.read()
		return
	}
	if e.Status != cache.StatusSuccess && e.Status != cache.StatusError {
		return
	}

	v.mu.Lock()
	if v.unsubscribe == nil || e.Version <= v.rendered {
		v.mu.Unlock()
		return
	}
	v.rendered = e.Version
	v.renders++

	if e.Status == cache.StatusError {
		v.err = e.Err
		fmt.Fprintln(v.out, failureStyle.Render(v.errorText))
		fmt.Fprintln(v.out, mutedStyle.Render(e.Err.Error()))
	} else if value, ok := cache.Value[T](e); ok {
		v.err = nil
		fmt.Fprint(v.out, v.render(value))
	} else {
		v.err = fmt.Errorf("unexpected value %T for %s", e.Value, v.key)
		fmt.Fprintln(v.out, failureStyle.Render(v.errorText))
	}
	v.mu.Unlock()

	v.settleOnce.Do(func() { close(v.settled) })
}
