// Package mutation runs create, update and delete operations one at a time
// and reports their outcome to caller-supplied callbacks.
package mutation

import (
	"context"
	"errors"
	"sync"
)

// ErrConcurrentMutation is returned by Run while another run is pending
var ErrConcurrentMutation = errors.New("mutation: another mutation is pending")

// State of a Runner
type State int

const (
	StateIdle State = iota
	StatePending
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Func is the write operation a Runner performs
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Runner allows at most one in-flight call of its operation.
// It never retries and never touches the query cache itself; invalidation
// belongs in the success callback.
type Runner[In, Out any] struct {
	op        Func[In, Out]
	onSuccess func(ctx context.Context, in In, out Out)
	onError   func(ctx context.Context, in In, err error)
	listener  func(State)

	mu     sync.Mutex
	state  State
	err    error
	result Out
}

// Option configures a Runner
type Option[In, Out any] func(*Runner[In, Out])

// OnSuccess sets the callback run after the operation succeeds, before Run returns
func OnSuccess[In, Out any](fn func(ctx context.Context, in In, out Out)) Option[In, Out] {
	return func(r *Runner[In, Out]) {
		r.onSuccess = fn
	}
}

// OnError sets the callback run after the operation fails, before Run returns
func OnError[In, Out any](fn func(ctx context.Context, in In, err error)) Option[In, Out] {
	return func(r *Runner[In, Out]) {
		r.onError = fn
	}
}

// WithStateListener sets a function called on every state change
func WithStateListener[In, Out any](fn func(State)) Option[In, Out] {
	return func(r *Runner[In, Out]) {
		r.listener = fn
	}
}

// New creates an idle runner for op
func New[In, Out any](op Func[In, Out], opts ...Option[In, Out]) *Runner[In, Out] {
	r := &Runner[In, Out]{op: op}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs the operation with in. It returns ErrConcurrentMutation
// without side effects when a previous Run has not finished.
func (r *Runner[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	var zero Out

	r.mu.Lock()
	if r.state == StatePending {
		r.mu.Unlock()
		return zero, ErrConcurrentMutation
	}
	r.state = StatePending
	r.err = nil
	r.result = zero
	r.mu.Unlock()
	r.changed(StatePending)

	out, err := r.op(ctx, in)

	r.mu.Lock()
	if err != nil {
		r.state = StateError
		r.err = err
	} else {
		r.state = StateSuccess
		r.result = out
	}
	state := r.state
	r.mu.Unlock()
	r.changed(state)

	if err != nil {
		if r.onError != nil {
			r.onError(ctx, in, err)
		}
		return zero, err
	}
	if r.onSuccess != nil {
		r.onSuccess(ctx, in, out)
	}
	return out, nil
}

// State returns the current state
func (r *Runner[In, Out]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Pending reports whether a run is in flight
func (r *Runner[In, Out]) Pending() bool {
	return r.State() == StatePending
}

// Err returns the error of the last run, if it failed
func (r *Runner[In, Out]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Result returns the output of the last run, if it succeeded
func (r *Runner[In, Out]) Result() (Out, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.state == StateSuccess
}

// Reset returns a settled runner to idle. It reports false and does nothing
// while a run is pending.
func (r *Runner[In, Out]) Reset() bool {
	r.mu.Lock()
	if r.state == StatePending {
		r.mu.Unlock()
		return false
	}
	var zero Out
	changed := r.state != StateIdle
	r.state = StateIdle
	r.err = nil
	r.result = zero
	r.mu.Unlock()

	if changed {
		r.changed(StateIdle)
	}
	return true
}

func (r *Runner[In, Out]) changed(s State) {
	if r.listener != nil {
		r.listener(s)
	}
}
