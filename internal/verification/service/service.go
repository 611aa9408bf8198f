package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"trustmatrix/internal/verification/metrics"
	"trustmatrix/internal/verification/models"
	"trustmatrix/internal/verification/ports"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/platform/sentinel"
	"trustmatrix/pkg/requestcontext"
)

const (
	// defaultStoreTimeout bounds each Record Store query.
	defaultStoreTimeout = 3 * time.Second

	tracerName = "trustmatrix/verification"
)

// Service runs the trust verification matrix: attestations, eligibility
// checks and automatic upgrades. Tier and ledger writes go through UserTx so
// each user's read-evaluate-write sequence is atomic.
type Service struct {
	users    ports.UserStore
	tx       ports.UserTx
	evidence *Aggregator
	notifier ports.Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	storeTimeout time.Duration
	bcryptCost   int
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithNotifier installs the sink for committed events.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithTracerProvider overrides the global provider the service's spans are
// started from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// WithStoreTimeout bounds each Record Store query.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithBcryptCost sets the cost used to hash official ID numbers.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// New constructs a Service.
func New(users ports.UserStore, tx ports.UserTx, records ports.RecordStore, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if tx == nil {
		return nil, errors.New("user transaction is required")
	}
	if records == nil {
		return nil, errors.New("record store is required")
	}
	s := &Service{
		users:        users,
		tx:           tx,
		logger:       slog.Default(),
		tracer:       otel.Tracer(tracerName),
		storeTimeout: defaultStoreTimeout,
		bcryptCost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.evidence = NewAggregator(records, s.storeTimeout, s.metrics)
	return s, nil
}

func (s *Service) findUser(ctx context.Context, userID id.UserID, what string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, translateStoreErr(err, what)
	}
	return user, nil
}

// translateStoreErr maps store failures onto the domain taxonomy. Anything
// that is not a known fact about the data is a transient failure and safe to
// retry because nothing was committed.
func translateStoreErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeTransient, "concurrent update, retry")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeTransient, "failed to access "+what)
}

// publish hands committed events to the notifier. Delivery problems are
// logged and never surface to the caller.
func (s *Service) publish(ctx context.Context, userID id.UserID, events []models.VerificationEvent) {
	for _, event := range events {
		s.metrics.IncrementTransition(event.Tier.String(), string(event.Type))
		s.logAudit(ctx, "tier_upgraded",
			"user_id", userID.String(),
			"tier", int(event.Tier),
			"verification_type", string(event.Type),
			"verified_by", event.VerifiedBy,
			"event_id", event.ID.String(),
		)
		if s.notifier == nil {
			continue
		}
		if err := s.notifier.Notify(ctx, userID, event); err != nil {
			s.logger.WarnContext(ctx, "tier upgrade notification dropped",
				"user_id", userID.String(),
				"event_id", event.ID.String(),
				"error", err,
			)
		}
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) startSpan(ctx context.Context, name string, userID id.UserID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("user_id", userID.String())))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
