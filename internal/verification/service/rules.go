package service

import (
	"fmt"

	"trustmatrix/internal/verification/models"
	dErrors "trustmatrix/pkg/domain-errors"
)

// The functions in this file are the tier state machine. They are pure: no
// I/O, no clock, no side effects.

// nextAutomaticTier returns the tier an automatic pass may try next from
// current. Tier 0 needs an attestation and tiers 3 and 4 only move through
// an official ID grant, so they have no automatic successor.
func nextAutomaticTier(current models.Tier) (models.Tier, bool) {
	switch current {
	case models.TierNeighborhood:
		return models.TierGeofenced, true
	case models.TierGeofenced:
		return models.TierEngagement, true
	default:
		return 0, false
	}
}

// meetsTier2 is the 1→2 rule.
func meetsTier2(ev models.Tier2Evidence) bool {
	return ev.VerifiedCheckIns >= models.Tier2RequiredCheckIns
}

// meetsTier3 is the 2→3 rule. All three conditions are required.
func meetsTier3(ev models.Tier3Evidence) bool {
	return ev.AccountAgeDays >= models.Tier3MinAccountAgeDays &&
		ev.Contributions >= models.Tier3RequiredContributions &&
		ev.CheckIns >= models.Tier3RequiredCheckIns
}

// checkNeighborhoodAuthority enforces the attester floor for tier 1.
func checkNeighborhoodAuthority(attesterTier models.Tier) error {
	if attesterTier < models.MinNeighborhoodAttesterTier {
		return dErrors.New(dErrors.CodeInsufficientAuthority,
			fmt.Sprintf("attester must be at least tier %d", models.MinNeighborhoodAttesterTier))
	}
	return nil
}

// checkOfficialIDAuthority enforces that only tier 4 members grant tier 4.
func checkOfficialIDAuthority(attesterTier models.Tier) error {
	if attesterTier != models.OfficialIDAttesterTier {
		return dErrors.New(dErrors.CodeInsufficientAuthority, "only tier 4 members can verify official ids")
	}
	return nil
}

func tier2Message(ev models.Tier2Evidence) string {
	if meetsTier2(ev) {
		return "eligible for tier 2 verification"
	}
	return fmt.Sprintf("need %d more verified check-ins in the last 14 days",
		models.Tier2RequiredCheckIns-ev.VerifiedCheckIns)
}

func tier3Message(ev models.Tier3Evidence) string {
	if meetsTier3(ev) {
		return "eligible for tier 3 verification"
	}
	var missing []string
	if ev.AccountAgeDays < models.Tier3MinAccountAgeDays {
		missing = append(missing, fmt.Sprintf("%d more days of membership", models.Tier3MinAccountAgeDays-ev.AccountAgeDays))
	}
	if ev.Contributions < models.Tier3RequiredContributions {
		missing = append(missing, fmt.Sprintf("%d more contributions", models.Tier3RequiredContributions-ev.Contributions))
	}
	if ev.CheckIns < models.Tier3RequiredCheckIns {
		missing = append(missing, fmt.Sprintf("%d more check-ins in the last 90 days", models.Tier3RequiredCheckIns-ev.CheckIns))
	}
	msg := "not yet eligible for tier 3: need "
	for i, m := range missing {
		if i > 0 {
			msg += ", "
		}
		msg += m
	}
	return msg
}

func prerequisiteMessage(target models.Tier) string {
	return fmt.Sprintf("must complete tier %d first", target-1)
}
