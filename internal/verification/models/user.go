package models

import (
	"fmt"
	"strings"
	"time"

	"trustmatrix/internal/geo"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
)

// HomeLocation is a member's attested residence.
type HomeLocation struct {
	Coordinate geo.Coordinate
	Address    string
	VerifiedAt time.Time
}

// User is the identity subject of the trust matrix. Tier and History are
// changed only through Apply so the ledger invariant holds: Tier equals the
// tier of the last event, or 0 when History is empty.
type User struct {
	ID              id.UserID
	Tier            Tier
	HomeLocation    *HomeLocation
	History         []VerificationEvent
	CreatedAt       time.Time
	LocationSharing bool
	// Version is the optimistic concurrency token checked on every commit.
	Version int64
}

// NewUser constructs an unverified member.
func NewUser(userID id.UserID, createdAt time.Time) (*User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user id is required")
	}
	if createdAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "created_at is required")
	}
	return &User{ID: userID, CreatedAt: createdAt, LocationSharing: true}, nil
}

// Apply records an accepted transition. Official-ID events set the tier to 4
// outright; every other event must raise the tier by exactly one step.
func (u *User) Apply(event VerificationEvent) error {
	if !event.Tier.Valid() {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("event tier %d out of range", event.Tier))
	}
	switch {
	case event.Type == TypeOfficialID:
		if u.Tier == TierOfficialID {
			return dErrors.New(dErrors.CodeInvariantViolation, "user already holds an official id verification")
		}
	case event.Tier != u.Tier+1:
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("cannot move from tier %d to tier %d", u.Tier, event.Tier))
	}
	u.Tier = event.Tier
	u.History = append(u.History, event)
	return nil
}

// SetHomeLocation replaces the attested residence.
func (u *User) SetHomeLocation(c geo.Coordinate, address string, at time.Time) {
	u.HomeLocation = &HomeLocation{
		Coordinate: c,
		Address:    strings.TrimSpace(address),
		VerifiedAt: at,
	}
}

// AccountAgeDays returns whole days elapsed since the account was created.
func (u *User) AccountAgeDays(now time.Time) int {
	if now.Before(u.CreatedAt) {
		return 0
	}
	return int(now.Sub(u.CreatedAt) / (24 * time.Hour))
}

// LastEvent returns the most recent ledger entry.
func (u *User) LastEvent() (VerificationEvent, bool) {
	if len(u.History) == 0 {
		return VerificationEvent{}, false
	}
	return u.History[len(u.History)-1], true
}

// LedgerTier is the tier implied by the history alone.
func (u *User) LedgerTier() Tier {
	if last, ok := u.LastEvent(); ok {
		return last.Tier
	}
	return TierUnverified
}

// HasEventForTier reports whether the ledger already grants tier.
func (u *User) HasEventForTier(t Tier) bool {
	for _, e := range u.History {
		if e.Tier == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.HomeLocation != nil {
		loc := *u.HomeLocation
		c.HomeLocation = &loc
	}
	c.History = append([]VerificationEvent(nil), u.History...)
	return &c
}
