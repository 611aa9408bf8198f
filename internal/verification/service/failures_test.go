package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"trustmatrix/internal/verification/metrics"
	"trustmatrix/internal/verification/models"
	"trustmatrix/internal/verification/ports"
	"trustmatrix/internal/verification/ports/mocks"
	userstore "trustmatrix/internal/verification/store/user"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/platform/sentinel"
	"trustmatrix/pkg/requestcontext"
)

type FailureSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	logger  *slog.Logger
	records *mocks.MockRecordStore
}

func TestFailureSuite(t *testing.T) {
	suite.Run(t, new(FailureSuite))
}

func (s *FailureSuite) SetupTest() {
	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.records = mocks.NewMockRecordStore(gomock.NewController(s.T()))
}

func (s *FailureSuite) userAt(tier models.Tier, ageDays int) *models.User {
	user, err := models.NewUser(id.UserID(uuid.New()), s.now.Add(-time.Duration(ageDays)*24*time.Hour))
	s.Require().NoError(err)
	evidence := []models.Evidence{
		models.NeighborhoodEvidence{AttesterTier: models.TierGeofenced},
		models.GeofencedActivityEvidence{VerifiedCheckIns: 5, Window: models.Tier2Window},
	}
	for _, ev := range evidence[:tier] {
		event, err := models.NewVerificationEvent("seed", user.CreatedAt, ev)
		s.Require().NoError(err)
		s.Require().NoError(user.Apply(event))
	}
	return user
}

func (s *FailureSuite) TestEvidenceFailureLeavesNoPartialWrite() {
	users := userstore.New()
	user := s.userAt(models.TierNeighborhood, 200)
	s.Require().NoError(users.Create(s.ctx, user))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc, err := New(users, userstore.NewShardedTx(users, time.Second), s.records,
		WithLogger(s.logger), WithMetrics(m))
	s.Require().NoError(err)

	// The 14-day count passes 1→2; the 90-day count for 2→3 fails.
	s.records.EXPECT().CountVerifiedCheckIns(gomock.Any(), user.ID, gomock.Any(), s.now).
		DoAndReturn(func(_ context.Context, _ id.UserID, since, until time.Time) (int, error) {
			if until.Sub(since) == models.Tier2Window {
				return 10, nil
			}
			return 0, errors.New("connection reset")
		}).Times(2)
	s.records.EXPECT().CountCompletedDonations(gomock.Any(), user.ID).Return(5, nil).AnyTimes()
	s.records.EXPECT().CountNeedContributions(gomock.Any(), user.ID).Return(0, nil).AnyTimes()

	_, err = svc.AutoCheckAndUpgrade(s.ctx, user.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTransient))

	stored, err := users.FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(models.TierNeighborhood, stored.Tier)
	s.Len(stored.History, 1)
	s.Equal(1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("error")))
}

func (s *FailureSuite) TestCommitConflictIsTransient() {
	ctrl := gomock.NewController(s.T())
	userStore := mocks.NewMockUserStore(ctrl)
	tx := mocks.NewMockUserTx(ctrl)
	txStore := mocks.NewMockTxUserStore(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	user := s.userAt(models.TierNeighborhood, 10)
	tx.EXPECT().RunInTx(gomock.Any(), user.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ id.UserID, fn func(ports.TxUserStore) error) error {
			return fn(txStore)
		})
	txStore.EXPECT().FindByID(gomock.Any(), user.ID).Return(user.Clone(), nil)
	txStore.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Len(1)).Return(sentinel.ErrConflict)
	s.records.EXPECT().CountVerifiedCheckIns(gomock.Any(), user.ID, gomock.Any(), gomock.Any()).Return(5, nil)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	svc, err := New(userStore, tx, s.records, WithLogger(s.logger), WithNotifier(notifier))
	s.Require().NoError(err)

	_, err = svc.AutoCheckAndUpgrade(s.ctx, user.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeTransient))
}

func (s *FailureSuite) TestNotifierErrorDoesNotFailUpgrade() {
	ctrl := gomock.NewController(s.T())
	notifier := mocks.NewMockNotifier(ctrl)
	users := userstore.New()
	user := s.userAt(models.TierNeighborhood, 10)
	s.Require().NoError(users.Create(s.ctx, user))

	s.records.EXPECT().CountVerifiedCheckIns(gomock.Any(), user.ID, gomock.Any(), gomock.Any()).Return(5, nil)
	notifier.EXPECT().Notify(gomock.Any(), user.ID, gomock.Any()).Return(errors.New("queue full"))

	svc, err := New(users, userstore.NewShardedTx(users, time.Second), s.records,
		WithLogger(s.logger), WithNotifier(notifier))
	s.Require().NoError(err)

	result, err := svc.AutoCheckAndUpgrade(s.ctx, user.ID)
	s.Require().NoError(err)
	s.True(result.Upgraded)
}

func (s *FailureSuite) TestStoreUnavailable() {
	ctrl := gomock.NewController(s.T())
	userStore := mocks.NewMockUserStore(ctrl)
	tx := mocks.NewMockUserTx(ctrl)

	userStore.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrUnavailable)
	userStore.EXPECT().ListSharedHomeLocations(gomock.Any()).Return(nil, sentinel.ErrUnavailable)

	svc, err := New(userStore, tx, s.records, WithLogger(s.logger))
	s.Require().NoError(err)

	_, err = svc.CheckEligibility(s.ctx, id.UserID(uuid.New()), 2)
	s.True(dErrors.HasCode(err, dErrors.CodeTransient))

	_, err = svc.CommunityHeatmap(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeTransient))
}

func (s *FailureSuite) TestCancelledContextAbortsTransaction() {
	users := userstore.New()
	user := s.userAt(models.TierNeighborhood, 10)
	s.Require().NoError(users.Create(s.ctx, user))

	svc, err := New(users, userstore.NewShardedTx(users, time.Second), s.records, WithLogger(s.logger))
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err = svc.AutoCheckAndUpgrade(ctx, user.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *FailureSuite) TestNewRequiresDependencies() {
	users := userstore.New()
	tx := userstore.NewShardedTx(users, 0)

	_, err := New(nil, tx, s.records)
	s.Error(err)
	_, err = New(users, nil, s.records)
	s.Error(err)
	_, err = New(users, tx, nil)
	s.Error(err)
}
