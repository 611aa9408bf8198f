package models

import "time"

// Tier2Evidence is the activity counted for the 1→2 rule.
type Tier2Evidence struct {
	VerifiedCheckIns int
	Since            time.Time
}

// Tier3Evidence is the activity counted for the 2→3 rule.
type Tier3Evidence struct {
	AccountAgeDays int
	Contributions  int
	CheckIns       int
	Since          time.Time
}

// Eligibility answers "can this member reach TargetTier right now".
// At most one of Tier2 and Tier3 is set, matching the rule evaluated.
type Eligibility struct {
	UserID      string
	CurrentTier Tier
	TargetTier  Tier
	Eligible    bool
	// AlreadySatisfied is set when the member already holds TargetTier.
	AlreadySatisfied bool
	Message          string
	Tier2            *Tier2Evidence
	Tier3            *Tier3Evidence
}

// UpgradeResult reports one automatic re-evaluation pass.
type UpgradeResult struct {
	Upgraded     bool
	PreviousTier Tier
	NewTier      Tier
	Message      string
	Events       []VerificationEvent
}

// Status is a member's tier, ledger and next-tier outlook.
type Status struct {
	User *User
	Next *Eligibility
}
