package notify

import (
	"context"
	"time"

	"trustmatrix/internal/verification/models"
	id "trustmatrix/pkg/domain"
)

// Message is the wire form of a committed tier upgrade.
type Message struct {
	EventID          string    `json:"event_id"`
	UserID           string    `json:"user_id"`
	Tier             int       `json:"tier"`
	TierName         string    `json:"tier_name"`
	VerificationType string    `json:"verification_type"`
	VerifiedBy       string    `json:"verified_by"`
	VerifiedAt       time.Time `json:"verified_at"`
}

// NewMessage flattens a ledger event. Evidence stays in the ledger; only
// the facts a subscriber needs to react are published.
func NewMessage(userID id.UserID, event models.VerificationEvent) Message {
	return Message{
		EventID:          event.ID.String(),
		UserID:           userID.String(),
		Tier:             int(event.Tier),
		TierName:         event.Tier.String(),
		VerificationType: string(event.Type),
		VerifiedBy:       event.VerifiedBy,
		VerifiedAt:       event.VerifiedAt.UTC(),
	}
}

// Sink delivers one message to a downstream system.
type Sink interface {
	Deliver(ctx context.Context, msg Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg Message) error

func (f SinkFunc) Deliver(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
