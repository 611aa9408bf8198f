// Package notify publishes committed tier upgrades to downstream systems.
//
// The Dispatcher decouples delivery from the verification transaction: Notify
// only enqueues, and a single background worker hands messages to the Sink
// with its own timeout. A full queue or an open circuit drops the message;
// the tier change itself is already durable in the ledger.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"trustmatrix/internal/verification/models"
	id "trustmatrix/pkg/domain"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrClosed    = errors.New("notification dispatcher closed")
)

const (
	defaultQueueSize = 256
	defaultTimeout   = 5 * time.Second
)

// Dispatcher implements the verification Notifier port.
type Dispatcher struct {
	sink    Sink
	queue   chan Message
	timeout time.Duration
	logger  *slog.Logger
	metrics *Metrics
	breaker *breaker

	mu     sync.RWMutex
	closed bool
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithQueueSize bounds the number of undelivered messages.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Message, n)
		}
	}
}

// WithTimeout bounds each delivery attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithBreaker configures when delivery is suspended after repeated failures.
func WithBreaker(threshold int, cooldown time.Duration) Option {
	return func(d *Dispatcher) {
		d.breaker = newBreaker(threshold, cooldown)
	}
}

func NewDispatcher(sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan Message, defaultQueueSize),
		timeout: defaultTimeout,
		logger:  slog.Default(),
		breaker: newBreaker(0, 0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify enqueues event without blocking.
func (d *Dispatcher) Notify(_ context.Context, userID id.UserID, event models.VerificationEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.metrics.incDropped("closed")
		return ErrClosed
	}
	select {
	case d.queue <- NewMessage(userID, event):
		d.metrics.setQueueDepth(len(d.queue))
		return nil
	default:
		d.metrics.incDropped("queue_full")
		return ErrQueueFull
	}
}

// Run delivers queued messages until ctx is cancelled or Close has been
// called and the queue is drained.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-d.queue:
			if !ok {
				return nil
			}
			d.metrics.setQueueDepth(len(d.queue))
			d.deliver(ctx, msg)
		}
	}
}

// Close stops accepting messages. Run returns once the backlog is delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	if !d.breaker.allow() {
		d.metrics.incDropped("circuit_open")
		d.logger.WarnContext(ctx, "notification dropped: sink circuit open",
			"event_id", msg.EventID,
			"user_id", msg.UserID,
		)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.sink.Deliver(ctx, msg); err != nil {
		d.metrics.incFailed()
		opened := d.breaker.recordFailure()
		d.metrics.setBreakerOpen(d.breaker.isOpen())
		d.logger.ErrorContext(ctx, "notification delivery failed",
			"event_id", msg.EventID,
			"user_id", msg.UserID,
			"tier", msg.Tier,
			"circuit_opened", opened,
			"error", err,
		)
		return
	}
	d.breaker.recordSuccess()
	d.metrics.setBreakerOpen(false)
	d.metrics.incDelivered()
}
