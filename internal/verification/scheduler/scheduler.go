// Package scheduler periodically re-evaluates members who have an automatic
// rule pending, so upgrades land even when nobody asks for one.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"trustmatrix/internal/verification/models"
	id "trustmatrix/pkg/domain"
	"trustmatrix/pkg/requestcontext"
)

// Lister selects the members to sweep.
type Lister interface {
	ListByTiers(ctx context.Context, tiers ...models.Tier) ([]id.UserID, error)
}

// Upgrader runs one automatic evaluation.
type Upgrader interface {
	AutoCheckAndUpgrade(ctx context.Context, userID id.UserID) (*models.UpgradeResult, error)
}

// SweepResult summarises one pass.
type SweepResult struct {
	Evaluated int
	Upgraded  int
	Failed    int
}

type Sweeper struct {
	users       Lister
	upgrader    Upgrader
	logger      *slog.Logger
	interval    time.Duration
	concurrency int
	now         func() time.Time
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithConcurrency(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides the time each sweep evaluates at.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

func New(users Lister, upgrader Upgrader, opts ...Option) *Sweeper {
	s := &Sweeper{
		users:       users,
		upgrader:    upgrader,
		logger:      slog.Default(),
		interval:    time.Hour,
		concurrency: 4,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "upgrade sweeper started",
		"interval", s.interval,
		"concurrency", s.concurrency,
	)
	for {
		select {
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.ErrorContext(ctx, "upgrade sweep failed", "error", err)
			}
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "upgrade sweeper stopped")
			return ctx.Err()
		}
	}
}

// Sweep evaluates every member at tier 1 or 2 once. A failure for one member
// is logged and does not stop the others; only a failure to list members is
// returned.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	userIDs, err := s.users.ListByTiers(ctx, models.TierNeighborhood, models.TierGeofenced)
	if err != nil {
		return SweepResult{}, err
	}

	ctx = requestcontext.WithTime(ctx, s.now())
	var upgraded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			result, err := s.upgrader.AutoCheckAndUpgrade(gctx, userID)
			if err != nil {
				failed.Add(1)
				s.logger.WarnContext(gctx, "scheduled evaluation failed",
					"user_id", userID.String(),
					"error", err,
				)
				return nil
			}
			if result.Upgraded {
				upgraded.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{
		Evaluated: len(userIDs),
		Upgraded:  int(upgraded.Load()),
		Failed:    int(failed.Load()),
	}
	s.logger.InfoContext(ctx, "upgrade sweep complete",
		"evaluated", result.Evaluated,
		"upgraded", result.Upgraded,
		"failed", result.Failed,
	)
	return result, nil
}
