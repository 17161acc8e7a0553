// Package scheduler triggers settlement passes on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/greenledger/internal/usecase"
)

// Settler runs one settlement pass for a calendar date.
type Settler interface {
	RunForDate(ctx context.Context, date time.Time) (*usecase.SettlementReport, error)
}

// Locker is a lease shared by all replicas. Only the holder runs a pass.
type Locker interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// Config for Runner.
type Config struct {
	Settler  Settler
	Locker   Locker // nil runs every pass locally
	Logger   zerolog.Logger
	Location *time.Location // calendar used to pick the run date
	Interval time.Duration
	LockTTL  time.Duration // defaults to Interval
}

// Runner drives SettlementUseCase from a ticker.
type Runner struct {
	settler  Settler
	locker   Locker
	logger   zerolog.Logger
	location *time.Location
	interval time.Duration
	lockTTL  time.Duration
	now      func() time.Time
}

// NewRunner creates a new Runner.
func NewRunner(cfg Config) *Runner {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	if cfg.LockTTL == 0 {
		cfg.LockTTL = cfg.Interval
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Runner{
		settler:  cfg.Settler,
		locker:   cfg.Locker,
		logger:   cfg.Logger.With().Str("component", "scheduler").Logger(),
		location: cfg.Location,
		interval: cfg.Interval,
		lockTTL:  cfg.LockTTL,
		now:      time.Now,
	}
}

// Start runs a pass immediately and then on every tick until ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	r.logger.Info().
		Dur("interval", r.interval).
		Str("timezone", r.location.String()).
		Bool("locked", r.locker != nil).
		Msg("scheduler started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Error().Err(err).Msg("settlement pass failed")
	}
}

// RunOnce runs a pass for today's date in the configured time zone. It
// returns a nil report when another replica holds the lease.
func (r *Runner) RunOnce(ctx context.Context) (*usecase.SettlementReport, error) {
	if r.locker != nil {
		acquired, err := r.locker.Acquire(ctx, r.lockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			r.logger.Debug().Msg("settlement pass held by another replica")
			return nil, nil
		}
		defer func() {
			// Release on a fresh context so a shutdown does not strand the lease.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := r.locker.Release(releaseCtx); err != nil {
				r.logger.Warn().Err(err).Msg("could not release scheduler lock")
			}
		}()
	}

	return r.settler.RunForDate(ctx, r.now().In(r.location))
}
