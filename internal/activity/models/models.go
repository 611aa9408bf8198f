package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"trustmatrix/internal/geo"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
)

// Facility is a place members check in at. A RadiusMeters of zero means the
// default geofence.
type Facility struct {
	ID           id.FacilityID
	Name         string
	Location     geo.Coordinate
	RadiusMeters float64
}

// NewFacility validates and constructs a facility with a fresh ID.
func NewFacility(name string, location geo.Coordinate, radiusMeters float64) (*Facility, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "facility name is required")
	}
	if err := location.Validate(); err != nil {
		return nil, err
	}
	if radiusMeters < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "radius_meters cannot be negative")
	}
	return &Facility{
		ID:           id.FacilityID(uuid.New()),
		Name:         name,
		Location:     location,
		RadiusMeters: radiusMeters,
	}, nil
}

// CheckIn is one attendance record. Only Verified check-ins count as
// evidence.
type CheckIn struct {
	ID             id.CheckInID
	UserID         id.UserID
	FacilityID     id.FacilityID
	Location       geo.Coordinate
	DistanceMeters float64
	Verified       bool
	CheckedInAt    time.Time
}

type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationFailed    DonationStatus = "failed"
)

// ParseDonationStatus defaults an empty status to completed.
func ParseDonationStatus(s string) (DonationStatus, error) {
	switch DonationStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "", DonationCompleted:
		return DonationCompleted, nil
	case DonationPending:
		return DonationPending, nil
	case DonationFailed:
		return DonationFailed, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "status must be pending, completed or failed")
	}
}

type Donation struct {
	ID          uuid.UUID
	UserID      id.UserID
	AmountCents int64
	Status      DonationStatus
	CreatedAt   time.Time
}

// NeedContribution is an in-kind contribution toward a facility need.
type NeedContribution struct {
	ID         uuid.UUID
	UserID     id.UserID
	FacilityID id.FacilityID
	Quantity   int
	CreatedAt  time.Time
}

// CheckInResult is what the recorder reports back to the member.
type CheckInResult struct {
	CheckIn *CheckIn
	// Upgrade is set when the check-in was verified and a re-evaluation ran.
	Upgrade *UpgradeSummary
}

// UpgradeSummary mirrors the verification outcome without importing the
// verification models into callers of this package.
type UpgradeSummary struct {
	Upgraded     bool
	PreviousTier int
	NewTier      int
	Message      string
}
