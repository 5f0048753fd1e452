// Package signal cancels a workflow run when the user interrupts it.
package signal

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	clog "github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/log"
)

// ErrInterrupted is the cancellation cause after SIGINT or SIGTERM.
var ErrInterrupted = errors.New("interrupted")

// WithInterrupt returns a context cancelled with cause ErrInterrupted when
// one of sigs arrives (SIGINT and SIGTERM if none are given). The returned
// cancel function must be called to stop listening.
func WithInterrupt(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, cancel := context.WithCancelCause(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sigs...)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			clog.Debug("received signal, cancelling run", "signal", sig)
			cancel(ErrInterrupted)
		case <-ctx.Done():
		}
	}()

	return ctx, func() { cancel(context.Canceled) }
}

// NotifyContext is WithInterrupt on a background context.
func NotifyContext() (context.Context, context.CancelFunc) {
	return WithInterrupt(context.Background())
}

// Interrupted reports whether ctx was cancelled by a signal.
func Interrupted(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrInterrupted)
}
