package database

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context derived from parent that is canceled on
// SIGTERM or SIGINT. onSignal, if set, runs before cancellation. The returned
// cancel function stops listening for signals.
func SignalContext(parent context.Context, onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
