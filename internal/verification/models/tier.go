package models

import (
	"fmt"
	"time"

	dErrors "trustmatrix/pkg/domain-errors"
)

// Tier is the accumulated trust level of a member, 0 through 4.
type Tier int

const (
	TierUnverified   Tier = 0
	TierNeighborhood Tier = 1
	TierGeofenced    Tier = 2
	TierEngagement   Tier = 3
	TierOfficialID   Tier = 4
)

// Thresholds for the automatic transitions.
const (
	Tier2RequiredCheckIns = 5
	Tier2Window           = 14 * 24 * time.Hour

	Tier3MinAccountAgeDays     = 90
	Tier3RequiredContributions = 5
	Tier3RequiredCheckIns      = 30
	Tier3Window                = 90 * 24 * time.Hour
)

// Authority needed to attest another member.
const (
	MinNeighborhoodAttesterTier = TierGeofenced
	OfficialIDAttesterTier      = TierOfficialID
)

var tierNames = map[Tier]string{
	TierUnverified:   "unverified",
	TierNeighborhood: "neighborhood",
	TierGeofenced:    "geofenced",
	TierEngagement:   "engagement",
	TierOfficialID:   "official_id",
}

// ParseTier validates an integer tier received at a trust boundary.
func ParseTier(n int) (Tier, error) {
	t := Tier(n)
	if !t.Valid() {
		return 0, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("tier %d out of range [0, 4]", n))
	}
	return t, nil
}

func (t Tier) Valid() bool {
	return t >= TierUnverified && t <= TierOfficialID
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// IsTerminal reports whether no further transition exists.
func (t Tier) IsTerminal() bool {
	return t == TierOfficialID
}
