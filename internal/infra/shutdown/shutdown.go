package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Handler cancels a run on signals and runs cleanup hooks.
type Handler struct {
	timeout  time.Duration
	hooks    []func(context.Context) error
	mu       sync.Mutex
	done     chan struct{}
	once     sync.Once
	signaled chan os.Signal
	cancel   context.CancelFunc
	sigCh    chan os.Signal
	received os.Signal
}

// NewHandler creates a new shutdown handler. timeout bounds the hooks.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout:  timeout,
		hooks:    make([]func(context.Context) error, 0),
		done:     make(chan struct{}),
		signaled: make(chan os.Signal, 1),
	}
}

// OnShutdown registers a cleanup hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Len returns the number of registered hooks.
func (h *Handler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hooks)
}

// Start returns a context canceled by the first SIGINT or SIGTERM.
func (h *Handler) Start(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	h.mu.Lock()
	h.cancel = cancel
	h.sigCh = make(chan os.Signal, 1)
	sigCh := h.sigCh
	h.mu.Unlock()

	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			h.mu.Lock()
			h.received = sig
			h.mu.Unlock()
			h.signaled <- sig
			cancel()
		case <-h.done:
		}
	}()
	return ctx
}

// Signal returns the signal that canceled the run, or nil.
func (h *Handler) Signal() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Signaled returns a channel that receives the terminating signal.
func (h *Handler) Signaled() <-chan os.Signal {
	return h.signaled
}

// Shutdown stops signal handling and runs the hooks. Only the first
// call has any effect; later calls return nil.
func (h *Handler) Shutdown() error {
	var errs []error
	h.once.Do(func() {
		h.mu.Lock()
		if h.sigCh != nil {
			signal.Stop(h.sigCh)
		}
		hooks := make([]func(context.Context) error, len(h.hooks))
		copy(hooks, h.hooks)
		cancel := h.cancel
		h.mu.Unlock()

		close(h.done)

		ctx, stop := context.WithTimeout(context.Background(), h.timeout)
		defer stop()
		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if cancel != nil {
			cancel()
		}
	})
	return errors.Join(errs...)
}

// Done returns a channel that closes when Shutdown starts.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
