package cache

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rapidcart/catalog/pkg/logger"
)

const defaultSweepSpec = "@every 5m"

// Sweeper periodically purges expired entries from the database-backed cache
// store. Redis expires keys on its own; the SQL fallback needs this job to
// keep the cache_entries table from growing without bound.
type Sweeper struct {
	store *DatabaseStore
	cron  *cron.Cron
	spec  string
	log   *zap.Logger
}

// SweeperOption customises the Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepSchedule overrides the cron specification for the purge job.
func WithSweepSchedule(spec string) SweeperOption {
	return func(s *Sweeper) {
		if spec != "" {
			s.spec = spec
		}
	}
}

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) SweeperOption {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// NewSweeper constructs a Sweeper for the supplied store. A nil store yields
// a Sweeper whose Start is a no-op.
func NewSweeper(store *DatabaseStore, opts ...SweeperOption) *Sweeper {
	sweeper := &Sweeper{
		store: store,
		spec:  defaultSweepSpec,
		log:   logger.WithModule("cache"),
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper
}

// Start registers the purge job and launches the scheduler.
func (s *Sweeper) Start() error {
	if s.store == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("expired cache sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any running sweep to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	removed, err := s.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if removed > 0 {
		s.log.Debug("purged expired cache entries", zap.Int64("count", removed))
	}
	return nil
}
