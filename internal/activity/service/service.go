package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"trustmatrix/internal/activity/models"
	"trustmatrix/internal/geo"
	vmodels "trustmatrix/internal/verification/models"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/platform/sentinel"
	"trustmatrix/pkg/requestcontext"
)

// Store persists facilities and activity records.
type Store interface {
	SaveFacility(ctx context.Context, f *models.Facility) error
	FindFacility(ctx context.Context, facilityID id.FacilityID) (*models.Facility, error)
	SaveCheckIn(ctx context.Context, c *models.CheckIn) error
	SaveDonation(ctx context.Context, d *models.Donation) error
	SaveContribution(ctx context.Context, c *models.NeedContribution) error
}

// Members resolves the member a record belongs to.
type Members interface {
	FindByID(ctx context.Context, userID id.UserID) (*vmodels.User, error)
}

// Upgrader re-evaluates a member's automatic tiers.
type Upgrader interface {
	AutoCheckAndUpgrade(ctx context.Context, userID id.UserID) (*vmodels.UpgradeResult, error)
}

// Service records member activity. A verified check-in immediately triggers
// an automatic re-evaluation so a member crossing a threshold is upgraded
// without waiting for the scheduled sweep.
type Service struct {
	store    Store
	members  Members
	upgrader Upgrader
	logger   *slog.Logger
	metrics  *Metrics
	timeout  time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(store Store, members Members, upgrader Upgrader, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("activity store is required")
	}
	if members == nil {
		return nil, errors.New("member store is required")
	}
	if upgrader == nil {
		return nil, errors.New("upgrader is required")
	}
	s := &Service{
		store:    store,
		members:  members,
		upgrader: upgrader,
		logger:   slog.Default(),
		timeout:  3 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterFacility adds a check-in location.
func (s *Service) RegisterFacility(ctx context.Context, name string, location geo.Coordinate, radiusMeters float64) (*models.Facility, error) {
	f, err := models.NewFacility(name, location, radiusMeters)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.SaveFacility(ctx, f); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransient, "failed to save facility")
	}
	s.logger.InfoContext(ctx, "facility registered",
		"facility_id", f.ID.String(),
		"radius_meters", f.RadiusMeters,
	)
	return f, nil
}

// CheckIn records userID at facilityID from location. The check-in is
// stored whether or not it falls inside the facility geofence; only a
// verified one triggers re-evaluation. A failed re-evaluation is logged and
// never undoes the check-in.
func (s *Service) CheckIn(ctx context.Context, userID id.UserID, facilityID id.FacilityID, location geo.Coordinate) (*models.CheckInResult, error) {
	if err := location.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, userID); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	facility, err := s.store.FindFacility(storeCtx, facilityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "facility not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeTransient, "failed to load facility")
	}

	fence := geo.IsWithinRadius(location, facility.Location, facility.RadiusMeters)
	checkIn := &models.CheckIn{
		ID:             id.NewCheckInID(),
		UserID:         userID,
		FacilityID:     facilityID,
		Location:       location,
		DistanceMeters: fence.Distance,
		Verified:       fence.Within,
		CheckedInAt:    requestcontext.Now(ctx),
	}
	if err := s.store.SaveCheckIn(storeCtx, checkIn); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransient, "failed to save check-in")
	}
	s.metrics.observeCheckIn(checkIn.Verified)

	result := &models.CheckInResult{CheckIn: checkIn}
	if !checkIn.Verified {
		s.logger.InfoContext(ctx, "check-in outside geofence",
			"user_id", userID.String(),
			"facility_id", facilityID.String(),
			"distance_meters", fence.Distance,
		)
		return result, nil
	}

	upgrade, err := s.upgrader.AutoCheckAndUpgrade(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "re-evaluation after check-in failed",
			"user_id", userID.String(),
			"check_in_id", checkIn.ID.String(),
			"error", err,
		)
		return result, nil
	}
	result.Upgrade = &models.UpgradeSummary{
		Upgraded:     upgrade.Upgraded,
		PreviousTier: int(upgrade.PreviousTier),
		NewTier:      int(upgrade.NewTier),
		Message:      upgrade.Message,
	}
	return result, nil
}

// RecordDonation stores a donation. Only completed donations count toward
// tier 3.
func (s *Service) RecordDonation(ctx context.Context, userID id.UserID, amountCents int64, status models.DonationStatus) (*models.Donation, error) {
	if amountCents <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "amount_cents must be positive")
	}
	status, err := models.ParseDonationStatus(string(status))
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, userID); err != nil {
		return nil, err
	}
	d := &models.Donation{
		ID:          uuid.New(),
		UserID:      userID,
		AmountCents: amountCents,
		Status:      status,
		CreatedAt:   requestcontext.Now(ctx),
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.SaveDonation(ctx, d); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransient, "failed to save donation")
	}
	s.metrics.incRecord("donation")
	return d, nil
}

// RecordContribution stores an in-kind contribution toward a facility need.
func (s *Service) RecordContribution(ctx context.Context, userID id.UserID, facilityID id.FacilityID, quantity int) (*models.NeedContribution, error) {
	if quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	if err := s.requireMember(ctx, userID); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.store.FindFacility(storeCtx, facilityID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "facility not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeTransient, "failed to load facility")
	}
	c := &models.NeedContribution{
		ID:         uuid.New(),
		UserID:     userID,
		FacilityID: facilityID,
		Quantity:   quantity,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.SaveContribution(storeCtx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransient, "failed to save contribution")
	}
	s.metrics.incRecord("contribution")
	return c, nil
}

func (s *Service) requireMember(ctx context.Context, userID id.UserID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.members.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeTransient, "failed to load user")
	}
	return nil
}

// Metrics counts recorded activity.
type Metrics struct {
	CheckIns *prometheus.CounterVec
	Records  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CheckIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustmatrix_activity_check_ins_total",
			Help: "Check-ins recorded by geofence outcome",
		}, []string{"verified"}),
		Records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustmatrix_activity_records_total",
			Help: "Donations and contributions recorded",
		}, []string{"kind"}),
	}
}

func (m *Metrics) observeCheckIn(verified bool) {
	if m == nil {
		return
	}
	if verified {
		m.CheckIns.WithLabelValues("true").Inc()
	} else {
		m.CheckIns.WithLabelValues("false").Inc()
	}
}

func (m *Metrics) incRecord(kind string) {
	if m != nil {
		m.Records.WithLabelValues(kind).Inc()
	}
}
