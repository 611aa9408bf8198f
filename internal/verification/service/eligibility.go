package service

import (
	"context"
	"errors"
	"fmt"

	"trustmatrix/internal/verification/models"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/platform/sentinel"
	"trustmatrix/pkg/requestcontext"
)

// CheckEligibility reports whether userID could reach target right now and
// with what evidence. It never writes.
//
// A target at or below the member's current tier is AlreadySatisfied. Tiers 1
// and 4 have no automatic rule and always report Eligible=false with the kind
// of attestation they need. Tiers 2 and 3 need the previous tier first.
func (s *Service) CheckEligibility(ctx context.Context, userID id.UserID, target int) (result *models.Eligibility, err error) {
	ctx, span := s.startSpan(ctx, "verification.CheckEligibility", userID)
	defer func() { endSpan(span, err) }()

	tier, err := models.ParseTier(target)
	if err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, userID, "user")
	if err != nil {
		return nil, err
	}
	return s.eligibility(ctx, user, tier)
}

func (s *Service) eligibility(ctx context.Context, user *models.User, target models.Tier) (*models.Eligibility, error) {
	result := &models.Eligibility{
		UserID:      user.ID.String(),
		CurrentTier: user.Tier,
		TargetTier:  target,
	}
	if target <= user.Tier {
		result.Eligible = true
		result.AlreadySatisfied = true
		result.Message = fmt.Sprintf("already verified at tier %d", user.Tier)
		return result, nil
	}

	now := requestcontext.Now(ctx)
	switch target {
	case models.TierNeighborhood:
		result.Message = fmt.Sprintf("tier 1 requires a neighborhood attestation from a tier %d or higher member",
			models.MinNeighborhoodAttesterTier)
	case models.TierGeofenced:
		if user.Tier < models.TierNeighborhood {
			result.Message = prerequisiteMessage(target)
			return result, nil
		}
		ev, err := s.evidence.Tier2Evidence(ctx, user.ID, now)
		if err != nil {
			return nil, err
		}
		result.Tier2 = &ev
		result.Eligible = meetsTier2(ev)
		result.Message = tier2Message(ev)
	case models.TierEngagement:
		if user.Tier < models.TierGeofenced {
			result.Message = prerequisiteMessage(target)
			return result, nil
		}
		ev, err := s.evidence.Tier3Evidence(ctx, user, now)
		if err != nil {
			return nil, err
		}
		result.Tier3 = &ev
		result.Eligible = meetsTier3(ev)
		result.Message = tier3Message(ev)
	case models.TierOfficialID:
		result.Message = "tier 4 requires official id verification by a tier 4 member"
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "unsupported target tier")
	}
	return result, nil
}

// Status returns the member with their ledger and the outlook for the next
// tier. Next is nil once the member is at tier 4.
func (s *Service) Status(ctx context.Context, userID id.UserID) (result *models.Status, err error) {
	ctx, span := s.startSpan(ctx, "verification.Status", userID)
	defer func() { endSpan(span, err) }()

	user, err := s.findUser(ctx, userID, "user")
	if err != nil {
		return nil, err
	}
	result = &models.Status{User: user}
	if user.Tier.IsTerminal() {
		return result, nil
	}
	next, err := s.eligibility(ctx, user, user.Tier+1)
	if err != nil {
		return nil, err
	}
	result.Next = next
	return result, nil
}

// Enroll registers userID as an unverified member.
func (s *Service) Enroll(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := models.NewUser(userID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid user")
	}
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.users.Create(storeCtx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "user already enrolled")
		}
		return nil, translateStoreErr(err, "user")
	}
	s.metrics.IncrementEnrollment()
	s.logAudit(ctx, "user_enrolled", "user_id", userID.String())
	return user, nil
}
