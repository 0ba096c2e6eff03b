package shutdown

import (
	"context"
	"os/signal"
)

// WithSignal returns a context that is cancelled on the first termination
// signal or when stop is called. stop releases the signal registration.
func WithSignal(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}
