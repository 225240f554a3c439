package cache

import (
	"context"
	"time"
)

// Status is the lifecycle state of a cache entry
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is a snapshot of one cache entry. Value is shared with the cache and
// with other snapshots, so callers must treat it as read-only.
type Entry struct {
	Key       Key
	Status    Status
	Value     any
	Err       error
	UpdatedAt time.Time
	Stale     bool
	// Version increases on every change of any entry in the cache
	Version uint64
}

// HasValue reports whether a value has ever been stored. An entry in error
// state keeps the last successful value.
func (e Entry) HasValue() bool {
	return e.Value != nil
}

// Value returns the entry's value as T
func Value[T any](e Entry) (T, bool) {
	v, ok := e.Value.(T)
	return v, ok
}

// Loader produces the value for a key. ctx is cancelled when the cache closes.
type Loader func(ctx context.Context) (any, error)

// Load adapts a typed fetch function into a Loader
func Load[T any](fn func(ctx context.Context) (T, error)) Loader {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

// LoadItem adapts a typed fetch-by-id function into a Loader for id
func LoadItem[T any](fn func(ctx context.Context, id int64) (T, error), id int64) Loader {
	return func(ctx context.Context) (any, error) {
		return fn(ctx, id)
	}
}
