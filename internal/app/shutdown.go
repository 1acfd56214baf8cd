package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultShutdownTimeout = 10 * time.Second

// Closer – ресурс, который закрывается при выходе.
type Closer interface {
	Close() error
}

// CloseFunc allows using a function as a Closer
type CloseFunc func() error

func (f CloseFunc) Close() error {
	return f()
}

type namedCloser struct {
	name   string
	closer Closer
}

// ShutdownHandler закрывает зарегистрированные ресурсы в обратном порядке.
type ShutdownHandler struct {
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	closers []namedCloser
	done    bool
}

// NewShutdownHandler creates a new shutdown handler
func NewShutdownHandler(logger *zap.Logger, timeout time.Duration) *ShutdownHandler {
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	return &ShutdownHandler{logger: logger, timeout: timeout}
}

// Add registers a resource for shutdown
func (sh *ShutdownHandler) Add(name string, closer Closer) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.closers = append(sh.closers, namedCloser{name: name, closer: closer})
	sh.logger.Debug("Registered service for shutdown", zap.String("service", name))
}

// AddFunc registers a shutdown function
func (sh *ShutdownHandler) AddFunc(name string, fn func() error) {
	sh.Add(name, CloseFunc(fn))
}

// Shutdown закрывает ресурсы LIFO. Повторный вызов ничего не делает.
func (sh *ShutdownHandler) Shutdown(ctx context.Context) error {
	sh.mu.Lock()
	if sh.done {
		sh.mu.Unlock()
		return nil
	}
	sh.done = true
	closers := make([]namedCloser, len(sh.closers))
	copy(closers, sh.closers)
	sh.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, sh.timeout)
	defer cancel()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := sh.closeOne(ctx, c); err != nil {
			sh.logger.Error("Failed to shutdown service", zap.String("service", c.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	sh.logger.Debug("Graceful shutdown completed", zap.Int("services", len(closers)))
	return nil
}

func (sh *ShutdownHandler) closeOne(ctx context.Context, c namedCloser) error {
	done := make(chan error, 1)
	go func() { done <- c.closer.Close() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.New("shutdown timeout")
	}
}
