package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"trustmatrix/internal/verification/metrics"
	"trustmatrix/internal/verification/models"
	"trustmatrix/internal/verification/ports"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
)

// Aggregator turns raw activity records into countable evidence. It is a
// read-only layer: the same stored records and now always give the same
// result, and nothing is cached between calls.
type Aggregator struct {
	records ports.RecordStore
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewAggregator(records ports.RecordStore, timeout time.Duration, m *metrics.Metrics) *Aggregator {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &Aggregator{records: records, timeout: timeout, metrics: m}
}

// Tier2Evidence counts verified check-ins in the trailing 14 days.
func (a *Aggregator) Tier2Evidence(ctx context.Context, userID id.UserID, now time.Time) (models.Tier2Evidence, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	since := now.Add(-models.Tier2Window)
	count, err := a.countCheckIns(ctx, "checkins_14d", userID, since, now)
	if err != nil {
		return models.Tier2Evidence{}, err
	}
	return models.Tier2Evidence{VerifiedCheckIns: count, Since: since}, nil
}

// Tier3Evidence gathers account age, contributions and 90-day check-ins.
// The three queries run in parallel under one timeout; the first failure
// cancels the rest.
func (a *Aggregator) Tier3Evidence(ctx context.Context, user *models.User, now time.Time) (models.Tier3Evidence, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	since := now.Add(-models.Tier3Window)
	evidence := models.Tier3Evidence{
		AccountAgeDays: user.AccountAgeDays(now),
		Since:          since,
	}

	var donations, contributions int
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := a.countCheckIns(gctx, "checkins_90d", user.ID, since, now)
		evidence.CheckIns = count
		return err
	})

	g.Go(func() error {
		start := time.Now()
		count, err := a.records.CountCompletedDonations(gctx, user.ID)
		a.metrics.ObserveEvidenceLatency("donations", time.Since(start))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeTransient, "failed to count donations")
		}
		donations = count
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		count, err := a.records.CountNeedContributions(gctx, user.ID)
		a.metrics.ObserveEvidenceLatency("contributions", time.Since(start))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeTransient, "failed to count need contributions")
		}
		contributions = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.Tier3Evidence{}, err
	}
	evidence.Contributions = donations + contributions
	return evidence, nil
}

func (a *Aggregator) countCheckIns(ctx context.Context, source string, userID id.UserID, since, until time.Time) (int, error) {
	start := time.Now()
	count, err := a.records.CountVerifiedCheckIns(ctx, userID, since, until)
	a.metrics.ObserveEvidenceLatency(source, time.Since(start))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeTransient, "failed to count check-ins")
	}
	return count, nil
}
