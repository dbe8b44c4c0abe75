package run

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Runner struct {
	Logger *zap.Logger
}

func New(log *zap.Logger) *Runner {
	return &Runner{Logger: log}
}

// WithSignals runs start until it returns or SIGINT/SIGTERM arrives, and
// returns the process exit code. On signal the ctx passed to start is
// cancelled, the shutdown steps run, and start is given shutdownTimeout to
// return before WithSignals does.
func (r *Runner) WithSignals(start func(ctx context.Context) error, steps ...func(context.Context) error) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return r.serve(ctx, start, steps...)
}

func (r *Runner) serve(ctx context.Context, start func(ctx context.Context) error, steps ...func(context.Context) error) int {
	errCh := make(chan error, 1)
	go func() {
		errCh <- start(ctx)
	}()

	select {
	case err := <-errCh:
		return r.exitCode(err)
	case <-ctx.Done():
	}

	r.Logger.Info("shutdown signal received")
	r.Shutdown(steps...)

	select {
	case err := <-errCh:
		return r.exitCode(err)
	case <-time.After(shutdownTimeout):
		r.Logger.Warn("server still running after shutdown timeout")
		return 1
	}
}

func (r *Runner) exitCode(err error) int {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return 0
	}
	r.Logger.Error("service exited with error", zap.Error(err))
	return 1
}

// Shutdown calls each fn with a bounded context, logging failures.
func (r *Runner) Shutdown(fns ...func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			r.Logger.Warn("shutdown step failed", zap.Error(err))
		}
	}
}

// Cleanup releases resources in reverse registration order. Exit bypasses
// deferred calls, so Run it before exiting.
type Cleanup struct {
	fns []func()
}

// Add registers fn; nil is ignored.
func (c *Cleanup) Add(fn func()) {
	if fn != nil {
		c.fns = append(c.fns, fn)
	}
}

// Run calls every registered func once, newest first.
func (c *Cleanup) Run() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
	c.fns = nil
}

func Exit(code int) {
	os.Exit(code)
}
