package domain

import (
	"github.com/google/uuid"

	dErrors "trustmatrix/pkg/domain-errors"
)

// Typed identifiers keep user, facility and ledger IDs from being mixed up at
// compile time. All of them are UUIDs on the wire.
type (
	UserID     uuid.UUID
	FacilityID uuid.UUID
	EventID    uuid.UUID
	CheckInID  uuid.UUID
)

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id FacilityID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string    { return uuid.UUID(id).String() }
func (id CheckInID) String() string  { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id FacilityID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewEventID returns a fresh random ledger event ID.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewCheckInID returns a fresh random check-in ID.
func NewCheckInID() CheckInID { return CheckInID(uuid.New()) }

// ParseUserID validates a user identifier received at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParseFacilityID validates a facility identifier.
func ParseFacilityID(s string) (FacilityID, error) {
	u, err := parseUUID(s, "facility_id")
	return FacilityID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}
