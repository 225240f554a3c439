package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// TerminalNotifier prints mutation outcomes to a terminal stream and logs them
type TerminalNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	logger *zap.Logger
}

// NewTerminalNotifier creates a notifier writing to out
func NewTerminalNotifier(out io.Writer, logger *zap.Logger) *TerminalNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TerminalNotifier{out: out, logger: logger}
}

func (n *TerminalNotifier) Success(_ context.Context, title string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, successStyle.Render(iconCheck+" "+title))
	n.logger.Info("Notification", zap.String("title", title))
}

func (n *TerminalNotifier) Failure(_ context.Context, title, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, failureStyle.Render(iconCross+" "+title))
	if text != "" {
		fmt.Fprintln(n.out, "  "+text)
	}
	n.logger.Warn("Failure notification", zap.String("title", title), zap.String("text", text))
}
