// Package shared holds the ports application services use to talk to the user.
package shared

import "context"

// Notifier shows the outcome of a mutation
type Notifier interface {
	// Success shows a short, self-dismissing confirmation
	Success(ctx context.Context, title string)
	// Failure shows an error the user has to acknowledge
	Failure(ctx context.Context, title, text string)
}

// Confirmer asks the user before a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, title, text string) (bool, error)
}

// NopNotifier discards every notification
type NopNotifier struct{}

func (NopNotifier) Success(context.Context, string)         {}
func (NopNotifier) Failure(context.Context, string, string) {}

// Notification is one message captured by RecordingNotifier
type Notification struct {
	Failure bool
	Title   string
	Text    string
}
