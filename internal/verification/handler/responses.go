package handler

import (
	"time"

	"trustmatrix/internal/geo"
	"trustmatrix/internal/verification/models"
)

type homeLocationResponse struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Address    string    `json:"address,omitempty"`
	VerifiedAt time.Time `json:"verified_at"`
}

type eventResponse struct {
	ID         string          `json:"id"`
	Tier       int             `json:"tier"`
	Type       string          `json:"type"`
	VerifiedBy string          `json:"verified_by"`
	VerifiedAt time.Time       `json:"verified_at"`
	Evidence   models.Evidence `json:"evidence"`
}

type userResponse struct {
	UserID          string                `json:"user_id"`
	Tier            int                   `json:"tier"`
	TierName        string                `json:"tier_name"`
	HomeLocation    *homeLocationResponse `json:"home_location,omitempty"`
	History         []eventResponse       `json:"history"`
	LocationSharing bool                  `json:"location_sharing"`
	CreatedAt       time.Time             `json:"created_at"`
}

type tier2EvidenceResponse struct {
	VerifiedCheckIns int       `json:"verified_check_ins"`
	Required         int       `json:"required"`
	Since            time.Time `json:"since"`
}

type tier3EvidenceResponse struct {
	AccountAgeDays         int       `json:"account_age_days"`
	RequiredAccountAgeDays int       `json:"required_account_age_days"`
	Contributions          int       `json:"contributions"`
	RequiredContributions  int       `json:"required_contributions"`
	CheckIns               int       `json:"check_ins"`
	RequiredCheckIns       int       `json:"required_check_ins"`
	Since                  time.Time `json:"since"`
}

type eligibilityResponse struct {
	UserID           string                 `json:"user_id"`
	CurrentTier      int                    `json:"current_tier"`
	TargetTier       int                    `json:"target_tier"`
	Eligible         bool                   `json:"eligible"`
	AlreadySatisfied bool                   `json:"already_satisfied"`
	Message          string                 `json:"message"`
	Tier2            *tier2EvidenceResponse `json:"tier2,omitempty"`
	Tier3            *tier3EvidenceResponse `json:"tier3,omitempty"`
}

type upgradeResponse struct {
	Upgraded     bool   `json:"upgraded"`
	PreviousTier int    `json:"previous_tier"`
	NewTier      int    `json:"new_tier"`
	Message      string `json:"message"`
}

type statusResponse struct {
	User userResponse         `json:"user"`
	Next *eligibilityResponse `json:"next,omitempty"`
}

type heatmapResponse struct {
	Clusters []geo.Cluster `json:"clusters"`
}

func toUserResponse(u *models.User) userResponse {
	resp := userResponse{
		UserID:          u.ID.String(),
		Tier:            int(u.Tier),
		TierName:        u.Tier.String(),
		History:         make([]eventResponse, 0, len(u.History)),
		LocationSharing: u.LocationSharing,
		CreatedAt:       u.CreatedAt,
	}
	if u.HomeLocation != nil {
		resp.HomeLocation = &homeLocationResponse{
			Latitude:   u.HomeLocation.Coordinate.Latitude,
			Longitude:  u.HomeLocation.Coordinate.Longitude,
			Address:    u.HomeLocation.Address,
			VerifiedAt: u.HomeLocation.VerifiedAt,
		}
	}
	for _, e := range u.History {
		resp.History = append(resp.History, eventResponse{
			ID:         e.ID.String(),
			Tier:       int(e.Tier),
			Type:       string(e.Type),
			VerifiedBy: e.VerifiedBy,
			VerifiedAt: e.VerifiedAt,
			Evidence:   e.Evidence,
		})
	}
	return resp
}

func toEligibilityResponse(e *models.Eligibility) *eligibilityResponse {
	resp := &eligibilityResponse{
		UserID:           e.UserID,
		CurrentTier:      int(e.CurrentTier),
		TargetTier:       int(e.TargetTier),
		Eligible:         e.Eligible,
		AlreadySatisfied: e.AlreadySatisfied,
		Message:          e.Message,
	}
	if e.Tier2 != nil {
		resp.Tier2 = &tier2EvidenceResponse{
			VerifiedCheckIns: e.Tier2.VerifiedCheckIns,
			Required:         models.Tier2RequiredCheckIns,
			Since:            e.Tier2.Since,
		}
	}
	if e.Tier3 != nil {
		resp.Tier3 = &tier3EvidenceResponse{
			AccountAgeDays:         e.Tier3.AccountAgeDays,
			RequiredAccountAgeDays: models.Tier3MinAccountAgeDays,
			Contributions:          e.Tier3.Contributions,
			RequiredContributions:  models.Tier3RequiredContributions,
			CheckIns:               e.Tier3.CheckIns,
			RequiredCheckIns:       models.Tier3RequiredCheckIns,
			Since:                  e.Tier3.Since,
		}
	}
	return resp
}

func toUpgradeResponse(r *models.UpgradeResult) upgradeResponse {
	return upgradeResponse{
		Upgraded:     r.Upgraded,
		PreviousTier: int(r.PreviousTier),
		NewTier:      int(r.NewTier),
		Message:      r.Message,
	}
}
