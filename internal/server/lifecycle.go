// Package server runs the client's long-lived components and tears them down
// on completion, failure or a termination signal.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultGrace bounds how long Run waits for services after stopping them.
const DefaultGrace = 2 * time.Second

// Service is a component run by a Lifecycle.
type Service interface {
	// Run blocks until the service finishes or ctx is cancelled.
	Run(ctx context.Context) error
	// Stop releases what Run holds. It may be called while Run is blocked.
	Stop()
}

// FuncService adapts a run/stop function pair into the Service interface.
type FuncService struct {
	RunFn  func(ctx context.Context) error
	StopFn func()
}

// Run calls the underlying run function.
func (f *FuncService) Run(ctx context.Context) error { return f.RunFn(ctx) }

// Stop calls the underlying stop function if set.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Lifecycle runs services concurrently. The first service to return, a
// SIGINT/SIGTERM, or cancellation of the parent context ends the lifecycle;
// services are then stopped in reverse registration order.
type Lifecycle struct {
	logger   *zap.Logger
	grace    time.Duration
	signals  []os.Signal
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	if logger == nil {
		panic("server.NewLifecycle: logger must not be nil")
	}
	return &Lifecycle{
		logger:  logger,
		grace:   DefaultGrace,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// WithGrace overrides DefaultGrace.
func (l *Lifecycle) WithGrace(d time.Duration) *Lifecycle {
	l.grace = d
	return l
}

// Add registers a named service.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until the lifecycle ends.
//
// Postcondition: Stop has been called on every service. The first service
// error is returned; a clean finish or a signal returns nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	sigCtx, stopSignals := signal.NotifyContext(ctx, l.signals...)
	defer stopSignals()

	runCtx, cancelRun := context.WithCancel(sigCtx)
	defer cancelRun()
	g, gctx := errgroup.WithContext(runCtx)
	finished := make(chan string, len(services))
	for _, ns := range services {
		ns := ns
		g.Go(func() error {
			l.logger.Info("starting service", zap.String("service", ns.name))
			svcStart := time.Now()
			err := ns.service.Run(gctx)
			finished <- ns.name
			if err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				return fmt.Errorf("service %s: %w", ns.name, err)
			}
			l.logger.Info("service finished",
				zap.String("service", ns.name),
				zap.Duration("uptime", time.Since(svcStart)),
			)
			return nil
		})
	}

	select {
	case name := <-finished:
		l.logger.Info("service returned, shutting down", zap.String("service", name))
	case <-gctx.Done():
		if sigCtx.Err() != nil && ctx.Err() == nil {
			l.logger.Info("received signal, shutting down")
		} else {
			l.logger.Info("context cancelled, shutting down")
		}
	}

	cancelRun()
	l.shutdown(services)

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	var err error
	select {
	case err = <-done:
	case <-time.After(l.grace):
		l.logger.Warn("services did not exit within grace period", zap.Duration("grace", l.grace))
	}

	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return err
}

func (l *Lifecycle) shutdown(services []namedService) {
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		l.logger.Debug("stopping service", zap.String("service", ns.name))
		ns.service.Stop()
	}
}
