package service

import (
	"context"
	"fmt"
	"time"

	"trustmatrix/internal/verification/models"
	"trustmatrix/internal/verification/ports"
	id "trustmatrix/pkg/domain"
	"trustmatrix/pkg/requestcontext"
)

// AutoCheckAndUpgrade re-evaluates the automatic rules for userID and applies
// every transition the member now qualifies for, 1→2 and then 2→3, stopping
// at the first unmet rule. Evidence for each step is gathered before anything
// is written and all accepted events are committed together, so a failure
// part way through leaves the member exactly as they were.
//
// Members at tier 0 or at tier 3 and above have no automatic rule and get
// Upgraded=false with an explanatory message.
func (s *Service) AutoCheckAndUpgrade(ctx context.Context, userID id.UserID) (result *models.UpgradeResult, err error) {
	ctx, span := s.startSpan(ctx, "verification.AutoCheckAndUpgrade", userID)
	start := time.Now()
	defer func() {
		s.metrics.ObserveEvaluateLatency(time.Since(start))
		switch {
		case err != nil:
			s.metrics.IncrementEvaluation("error")
		case result.Upgraded:
			s.metrics.IncrementEvaluation("upgraded")
		default:
			s.metrics.IncrementEvaluation("unchanged")
		}
		endSpan(span, err)
	}()

	now := requestcontext.Now(ctx)
	var events []models.VerificationEvent
	err = s.tx.RunInTx(ctx, userID, func(store ports.TxUserStore) error {
		result, events = nil, nil
		user, err := store.FindByID(ctx, userID)
		if err != nil {
			return translateStoreErr(err, "user")
		}
		res, accepted, err := s.evaluate(ctx, user, now)
		if err != nil {
			return err
		}
		if len(accepted) > 0 {
			if err := store.Commit(ctx, user, accepted); err != nil {
				return translateStoreErr(err, "user")
			}
		}
		result, events = res, accepted
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "automatic upgrade failed",
			"user_id", userID.String(),
			"error", err,
		)
		return nil, translateStoreErr(err, "user")
	}

	s.publish(ctx, userID, events)
	return result, nil
}

// evaluate walks the automatic chain on user in memory. user is mutated with
// every accepted event; the caller decides whether to persist it.
func (s *Service) evaluate(ctx context.Context, user *models.User, now time.Time) (*models.UpgradeResult, []models.VerificationEvent, error) {
	result := &models.UpgradeResult{PreviousTier: user.Tier, NewTier: user.Tier}
	var events []models.VerificationEvent

	for {
		target, ok := nextAutomaticTier(user.Tier)
		if !ok {
			if len(events) == 0 {
				result.Message = noAutomaticRuleMessage(user.Tier)
			}
			break
		}
		evidence, met, message, err := s.evaluateStep(ctx, user, target, now)
		if err != nil {
			return nil, nil, err
		}
		if !met {
			if len(events) == 0 {
				result.Message = message
			}
			break
		}
		event, err := models.NewVerificationEvent(models.SystemVerifier, now, evidence)
		if err != nil {
			return nil, nil, err
		}
		if err := user.Apply(event); err != nil {
			return nil, nil, err
		}
		events = append(events, event)
	}

	result.NewTier = user.Tier
	result.Events = events
	if len(events) > 0 {
		result.Upgraded = true
		result.Message = fmt.Sprintf("upgraded from tier %d to tier %d", result.PreviousTier, result.NewTier)
	}
	return result, events, nil
}

// evaluateStep gathers the evidence for target and applies its rule.
func (s *Service) evaluateStep(ctx context.Context, user *models.User, target models.Tier, now time.Time) (models.Evidence, bool, string, error) {
	switch target {
	case models.TierGeofenced:
		ev, err := s.evidence.Tier2Evidence(ctx, user.ID, now)
		if err != nil {
			return nil, false, "", err
		}
		return models.GeofencedActivityEvidence{
			VerifiedCheckIns: ev.VerifiedCheckIns,
			Window:           models.Tier2Window,
		}, meetsTier2(ev), tier2Message(ev), nil
	case models.TierEngagement:
		ev, err := s.evidence.Tier3Evidence(ctx, user, now)
		if err != nil {
			return nil, false, "", err
		}
		return models.EngagementEvidence{
			AccountAgeDays: ev.AccountAgeDays,
			Contributions:  ev.Contributions,
			CheckIns:       ev.CheckIns,
			Window:         models.Tier3Window,
		}, meetsTier3(ev), tier3Message(ev), nil
	default:
		return nil, false, noAutomaticRuleMessage(target - 1), nil
	}
}

func noAutomaticRuleMessage(current models.Tier) string {
	switch {
	case current == models.TierUnverified:
		return "tier 1 requires a neighborhood attestation"
	case current.IsTerminal():
		return "already at the highest tier"
	default:
		return "tier 4 requires official id verification"
	}
}
