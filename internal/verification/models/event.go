package models

import (
	"encoding/json"
	"fmt"
	"time"

	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
)

// VerificationType tags which rule produced a ledger event.
type VerificationType string

const (
	TypeNeighborhoodAttestation VerificationType = "neighborhood-attestation"
	TypeGeofencedActivity       VerificationType = "geofenced-activity"
	TypeEngagementHistory       VerificationType = "engagement-history"
	TypeOfficialID              VerificationType = "official-id"
)

// SystemVerifier is recorded as VerifiedBy for automatic upgrades.
const SystemVerifier = "system"

// Evidence is the rule-specific snapshot stored with a ledger event. The set
// of implementations is closed; each one belongs to exactly one type.
type Evidence interface {
	Type() VerificationType
	isEvidence()
}

// NeighborhoodEvidence records the attester's authority and the advisory
// proximity check. HasDistance is false when the attester has no home on file.
type NeighborhoodEvidence struct {
	AttesterTier   Tier    `json:"attester_tier"`
	HasDistance    bool    `json:"has_distance"`
	DistanceMeters float64 `json:"distance_meters,omitempty"`
	IsNeighbor     bool    `json:"is_neighbor"`
}

type GeofencedActivityEvidence struct {
	VerifiedCheckIns int           `json:"verified_check_ins"`
	Window           time.Duration `json:"window"`
}

type EngagementEvidence struct {
	AccountAgeDays int           `json:"account_age_days"`
	Contributions  int           `json:"contributions"`
	CheckIns       int           `json:"check_ins"`
	Window         time.Duration `json:"window"`
}

// OfficialIDEvidence never carries the raw document number.
type OfficialIDEvidence struct {
	IDType       string `json:"id_type"`
	IDNumberHash string `json:"id_number_hash"`
}

func (NeighborhoodEvidence) Type() VerificationType      { return TypeNeighborhoodAttestation }
func (GeofencedActivityEvidence) Type() VerificationType { return TypeGeofencedActivity }
func (EngagementEvidence) Type() VerificationType        { return TypeEngagementHistory }
func (OfficialIDEvidence) Type() VerificationType        { return TypeOfficialID }

func (NeighborhoodEvidence) isEvidence()      {}
func (GeofencedActivityEvidence) isEvidence() {}
func (EngagementEvidence) isEvidence()        {}
func (OfficialIDEvidence) isEvidence()        {}

// tierFor maps each verification type to the tier it grants.
var tierFor = map[VerificationType]Tier{
	TypeNeighborhoodAttestation: TierNeighborhood,
	TypeGeofencedActivity:       TierGeofenced,
	TypeEngagementHistory:       TierEngagement,
	TypeOfficialID:              TierOfficialID,
}

// VerificationEvent is an immutable ledger entry.
type VerificationEvent struct {
	ID         id.EventID
	Tier       Tier
	VerifiedBy string
	VerifiedAt time.Time
	Type       VerificationType
	Evidence   Evidence
}

// NewVerificationEvent derives the type and tier from the evidence so an
// event can never claim a tier its rule does not grant.
func NewVerificationEvent(verifiedBy string, at time.Time, evidence Evidence) (VerificationEvent, error) {
	if evidence == nil {
		return VerificationEvent{}, dErrors.New(dErrors.CodeInvariantViolation, "verification event requires evidence")
	}
	if verifiedBy == "" {
		return VerificationEvent{}, dErrors.New(dErrors.CodeInvariantViolation, "verification event requires a verifier")
	}
	if at.IsZero() {
		return VerificationEvent{}, dErrors.New(dErrors.CodeInvariantViolation, "verification event requires a timestamp")
	}
	return VerificationEvent{
		ID:         id.NewEventID(),
		Tier:       tierFor[evidence.Type()],
		VerifiedBy: verifiedBy,
		VerifiedAt: at,
		Type:       evidence.Type(),
		Evidence:   evidence,
	}, nil
}

// EncodeEvidence serialises the evidence snapshot for persistence.
func EncodeEvidence(e Evidence) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("nil evidence")
	}
	return json.Marshal(e)
}

// DecodeEvidence restores a snapshot using its stored type tag.
func DecodeEvidence(t VerificationType, data []byte) (Evidence, error) {
	switch t {
	case TypeNeighborhoodAttestation:
		var e NeighborhoodEvidence
		err := json.Unmarshal(data, &e)
		return e, err
	case TypeGeofencedActivity:
		var e GeofencedActivityEvidence
		err := json.Unmarshal(data, &e)
		return e, err
	case TypeEngagementHistory:
		var e EngagementEvidence
		err := json.Unmarshal(data, &e)
		return e, err
	case TypeOfficialID:
		var e OfficialIDEvidence
		err := json.Unmarshal(data, &e)
		return e, err
	default:
		return nil, fmt.Errorf("unknown verification type %q", t)
	}
}
