package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type shutdownStep struct {
	name string
	fn   func(context.Context) error
}

// GracefulShutdown останавливает компоненты в порядке, обратном запуску
type GracefulShutdown struct {
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	steps   []shutdownStep
	trigger chan struct{}
	done    chan struct{}
	once    sync.Once
	err     error
}

// NewGracefulShutdown создает новый экземпляр GracefulShutdown
func NewGracefulShutdown(logger *zap.Logger, timeout time.Duration) *GracefulShutdown {
	return &GracefulShutdown{
		logger:  logger,
		timeout: timeout,
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// AddShutdownFunc регистрирует шаг завершения. Шаги выполняются в обратном порядке (LIFO).
func (gs *GracefulShutdown) AddShutdownFunc(name string, f func(context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.steps = append(gs.steps, shutdownStep{name: name, fn: f})
}

// Wait блокируется до SIGINT/SIGTERM, вызова Shutdown или отмены контекста, затем выполняет шаги
func (gs *GracefulShutdown) Wait(ctx context.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		gs.logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case <-gs.trigger:
		gs.logger.Info("Shutdown requested")
	case <-ctx.Done():
		gs.logger.Info("Context cancelled, initiating shutdown")
	}

	return gs.run()
}

// Shutdown запрашивает завершение и ждет его окончания
func (gs *GracefulShutdown) Shutdown() error {
	select {
	case gs.trigger <- struct{}{}:
	default:
	}
	<-gs.done
	return gs.err
}

// Done закрывается после выполнения всех шагов
func (gs *GracefulShutdown) Done() <-chan struct{} {
	return gs.done
}

func (gs *GracefulShutdown) run() error {
	gs.once.Do(func() {
		gs.err = gs.shutdown()
		close(gs.done)
	})
	<-gs.done
	return gs.err
}

func (gs *GracefulShutdown) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
	defer cancel()

	gs.mu.Lock()
	steps := make([]shutdownStep, len(gs.steps))
	copy(steps, gs.steps)
	gs.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].fn(ctx); err != nil {
			gs.logger.Error("Error during shutdown", zap.String("step", steps[i].name), zap.Error(err))
			errs = append(errs, err)
		}
	}

	gs.logger.Info("Graceful shutdown completed", zap.Int("steps", len(steps)), zap.Int("errors", len(errs)))
	return errors.Join(errs...)
}
