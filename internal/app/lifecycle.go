package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Lifecycle releases named resources in reverse registration order and
// cancels running work on SIGINT or SIGTERM.
type Lifecycle struct {
	logger    *zap.Logger
	resources []namedResource
	mu        sync.Mutex
}

type namedResource struct {
	name  string
	close func() error
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a resource to close on Shutdown. Resources are closed in
// the reverse of the order they are added.
//
// Precondition: name must be non-empty; closeFn must be non-nil.
func (l *Lifecycle) Add(name string, closeFn func() error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resources = append(l.resources, namedResource{name: name, close: closeFn})
}

// Run calls fn with a context that is cancelled when a termination signal
// arrives or ctx is done.
//
// Postcondition: returns fn's error.
func (l *Lifecycle) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case sig := <-sigCh:
			l.logger.Info("received signal, cancelling",
				zap.String("signal", sig.String()),
			)
			cancel()
		case <-done:
		}
	}()

	err := fn(ctx)
	l.logger.Debug("run complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	return err
}

// Shutdown closes every resource, newest first. Close errors are logged.
//
// Postcondition: the resource list is empty.
func (l *Lifecycle) Shutdown() {
	l.mu.Lock()
	resources := l.resources
	l.resources = nil
	l.mu.Unlock()

	shutdownStart := time.Now()
	for i := len(resources) - 1; i >= 0; i-- {
		r := resources[i]
		if err := r.close(); err != nil {
			l.logger.Warn("closing resource failed",
				zap.String("resource", r.name),
				zap.Error(err),
			)
			continue
		}
		l.logger.Debug("resource closed", zap.String("resource", r.name))
	}
	l.logger.Debug("all resources closed",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
}
