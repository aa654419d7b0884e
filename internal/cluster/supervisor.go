package cluster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rapidcart/catalog/pkg/logger"
	"github.com/rapidcart/catalog/pkg/metrics"
)

// workerEnv marks a process as a worker spawned by the supervisor. Its value
// is the worker slot number, starting at 1.
const workerEnv = "CATALOG_WORKER_ID"

const (
	backoffBase = 250 * time.Millisecond
	backoffCap  = 30 * time.Second
)

// IsWorker reports whether the current process was forked by a supervisor.
func IsWorker() bool {
	return os.Getenv(workerEnv) != ""
}

// Supervisor forks one worker process per slot and replaces workers as they
// exit. Workers are copies of the current binary distinguished by the
// CATALOG_WORKER_ID environment variable; they share the listening port via
// SO_REUSEPORT so no connection hand-off is needed.
type Supervisor struct {
	workers     int
	maxRestarts int
	log         *zap.Logger

	mu      sync.Mutex
	started bool
}

// Option customises a Supervisor.
type Option func(*Supervisor)

// WithWorkers overrides the worker count. Values below 1 fall back to the
// number of logical CPUs.
func WithWorkers(n int) Option {
	return func(s *Supervisor) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxRestarts caps how many times a single slot may be restarted.
// Zero means unlimited.
func WithMaxRestarts(n int) Option {
	return func(s *Supervisor) { s.maxRestarts = n }
}

func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{
		workers: runtime.NumCPU(),
		log:     logger.WithModule("cluster"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run forks the workers and blocks until ctx is cancelled or every slot has
// exhausted its restart budget. Cancelling ctx sends SIGTERM to all live
// workers and waits for them to exit.
func (s *Supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("supervisor already running")
	}
	s.started = true
	s.mu.Unlock()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	s.log.Info("starting workers",
		zap.Int("count", s.workers),
		zap.Int("supervisor_pid", os.Getpid()))

	var wg sync.WaitGroup
	for slot := 1; slot <= s.workers; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			s.superviseSlot(ctx, exe, slot)
		}(slot)
	}

	wg.Wait()
	return ctx.Err()
}

// superviseSlot keeps one worker slot occupied, replacing the process each
// time it exits. Consecutive failures back off exponentially; a clean run
// longer than the current backoff resets the streak.
func (s *Supervisor) superviseSlot(ctx context.Context, exe string, slot int) {
	restarts := 0
	failures := 0

	for {
		if ctx.Err() != nil {
			return
		}

		startedAt := time.Now()
		err := s.runWorker(ctx, exe, slot)
		uptime := time.Since(startedAt)

		if ctx.Err() != nil {
			return
		}

		restarts++
		metrics.WorkerRestarts.Inc()

		if s.maxRestarts > 0 && restarts > s.maxRestarts {
			s.log.Error("worker exceeded restart budget, giving up on slot",
				zap.Int("slot", slot),
				zap.Int("restarts", restarts-1))
			return
		}

		delay := Backoff(failures)
		if uptime > delay {
			failures = 0
			delay = Backoff(0)
		}
		failures++

		s.log.Warn("worker exited, restarting",
			zap.Int("slot", slot),
			zap.Duration("uptime", uptime),
			zap.Duration("backoff", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// runWorker starts one worker process and waits for it to exit. If ctx is
// cancelled while the worker is running it receives SIGTERM and runWorker
// waits for it to finish.
func (s *Supervisor) runWorker(ctx context.Context, exe string, slot int) error {
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("%s=%d", workerEnv, slot))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	s.log.Info("worker started",
		zap.Int("slot", slot),
		zap.Int("pid", cmd.Process.Pid))

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			_ = cmd.Process.Kill()
			<-done
		}
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Backoff returns the restart delay after n consecutive fast failures:
// 250ms doubling per failure, capped at 30s.
func Backoff(failures int) time.Duration {
	d := backoffBase
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= backoffCap {
			return backoffCap
		}
	}
	return d
}
