package viewstate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"
)

type options struct {
	logger  *slog.Logger
	onError func(error)
}

// Option configures a controller.
type Option func(*options)

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithErrorHandler receives errors from asynchronous commands.
// Without one, errors are logged at error level.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// runner executes fire-and-forget commands and tracks them for Wait.
// Commands may be started while another goroutine waits.
type runner struct {
	opts options

	mu      sync.Mutex
	idle    *sync.Cond
	pending int
}

func newRunner(opts []Option) *runner {
	r := &runner{}
	r.idle = sync.NewCond(&r.mu)
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

func (r *runner) async(ctx context.Context, name string, fn func(ctx context.Context) error) {
	r.mu.Lock()
	r.pending++
	r.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer r.done()
		if err := fn(ctx); err != nil {
			r.report(name, err)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		r.report(name, err)
	}))
}

func (r *runner) done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending--
	if r.pending == 0 {
		r.idle.Broadcast()
	}
}

func (r *runner) report(name string, err error) {
	if r.opts.onError != nil {
		r.opts.onError(err)
		return
	}
	logger := r.opts.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("command failed", "command", name, "error", err)
}

func (r *runner) debug(msg string, args ...any) {
	if r.opts.logger != nil {
		r.opts.logger.Debug(msg, args...)
	}
}

// wait blocks until no command is in flight.
func (r *runner) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.pending > 0 {
		r.idle.Wait()
	}
}
