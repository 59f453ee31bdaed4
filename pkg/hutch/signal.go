package hutch

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// NotifyShutdown derives a context that is canceled on SIGINT or SIGTERM.
// Pair it with Consume and Join for a clean drain on process shutdown.
func NotifyShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
