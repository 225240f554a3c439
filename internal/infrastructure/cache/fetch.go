package cache

import (
	"context"
	"fmt"
)

// Fetch reads key and blocks until the entry settles, returning its value as T.
// ctx bounds only the wait; the loader keeps running if ctx ends first.
// A stale entry is refetched; an entry already in error state is returned as
// is until it is invalidated.
func Fetch[T any](ctx context.Context, c *QueryCache, key Key, loader Loader) (T, error) {
	var zero T
	for {
		snap, done := c.read(key, loader)
		switch snap.Status {
		case StatusSuccess:
			v, ok := Value[T](snap)
			if !ok {
				return zero, fmt.Errorf("cache: entry %s holds %T, not %T", key, snap.Value, zero)
			}
			return v, nil
		case StatusError:
			return zero, snap.Err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-done:
		}
	}
}
