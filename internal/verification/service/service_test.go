package service

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	activitymodels "trustmatrix/internal/activity/models"
	activitystore "trustmatrix/internal/activity/store"
	"trustmatrix/internal/geo"
	"trustmatrix/internal/verification/models"
	userstore "trustmatrix/internal/verification/store/user"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/requestcontext"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.VerificationEvent
}

func (n *recordingNotifier) Notify(_ context.Context, _ id.UserID, event models.VerificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	users    *userstore.InMemoryUserStore
	records  *activitystore.InMemoryStore
	notifier *recordingNotifier
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.users = userstore.New()
	s.records = activitystore.NewInMemory()
	s.notifier = &recordingNotifier{}

	svc, err := New(s.users, userstore.NewShardedTx(s.users, time.Second), s.records,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithNotifier(s.notifier),
		WithBcryptCost(bcrypt.MinCost),
	)
	s.Require().NoError(err)
	s.service = svc
}

// seedUser stores a member whose ledger walks the normal path up to tier.
// Tier 4 members are seeded with a single official-id grant.
func (s *ServiceSuite) seedUser(tier models.Tier, ageDays int, home *geo.Coordinate) id.UserID {
	userID := id.UserID(uuid.New())
	createdAt := s.now.Add(-time.Duration(ageDays) * 24 * time.Hour)
	user, err := models.NewUser(userID, createdAt)
	s.Require().NoError(err)

	var evidence []models.Evidence
	if tier == models.TierOfficialID {
		evidence = append(evidence, models.OfficialIDEvidence{IDType: "passport", IDNumberHash: "seed"})
	} else {
		all := []models.Evidence{
			models.NeighborhoodEvidence{AttesterTier: models.TierGeofenced},
			models.GeofencedActivityEvidence{VerifiedCheckIns: 5, Window: models.Tier2Window},
			models.EngagementEvidence{AccountAgeDays: 90, Contributions: 5, CheckIns: 30, Window: models.Tier3Window},
		}
		evidence = all[:tier]
	}
	for _, ev := range evidence {
		event, err := models.NewVerificationEvent("seed", createdAt, ev)
		s.Require().NoError(err)
		s.Require().NoError(user.Apply(event))
	}
	if home != nil {
		user.SetHomeLocation(*home, "seeded", createdAt)
	}
	s.Require().NoError(s.users.Create(s.ctx, user))
	return userID
}

func (s *ServiceSuite) addCheckIns(userID id.UserID, n int, at time.Time, verified bool) {
	for range n {
		s.Require().NoError(s.records.SaveCheckIn(s.ctx, &activitymodels.CheckIn{
			ID:          id.NewCheckInID(),
			UserID:      userID,
			FacilityID:  id.FacilityID(uuid.New()),
			Verified:    verified,
			CheckedInAt: at,
		}))
	}
}

func (s *ServiceSuite) addDonations(userID id.UserID, n int, status activitymodels.DonationStatus) {
	for range n {
		s.Require().NoError(s.records.SaveDonation(s.ctx, &activitymodels.Donation{
			ID:          uuid.New(),
			UserID:      userID,
			AmountCents: 1000,
			Status:      status,
			CreatedAt:   s.now,
		}))
	}
}

func (s *ServiceSuite) load(userID id.UserID) *models.User {
	user, err := s.users.FindByID(s.ctx, userID)
	s.Require().NoError(err)
	return user
}

func (s *ServiceSuite) TestAutoCheckAndUpgrade() {
	s.Run("tier 1 member with six recent check-ins reaches tier 2", func() {
		userID := s.seedUser(models.TierNeighborhood, 20, nil)
		s.addCheckIns(userID, 6, s.now.Add(-2*24*time.Hour), true)

		result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
		s.Require().NoError(err)
		s.True(result.Upgraded)
		s.Equal(models.TierNeighborhood, result.PreviousTier)
		s.Equal(models.TierGeofenced, result.NewTier)
		s.Require().Len(result.Events, 1)
		s.Equal(models.TypeGeofencedActivity, result.Events[0].Type)
		s.Equal(models.SystemVerifier, result.Events[0].VerifiedBy)

		user := s.load(userID)
		s.Equal(models.TierGeofenced, user.Tier)
		s.Len(user.History, 2)
		s.Equal(models.TypeGeofencedActivity, user.History[1].Type)
	})

	s.Run("tier 2 member meeting every engagement rule reaches tier 3", func() {
		userID := s.seedUser(models.TierGeofenced, 100, nil)
		s.addDonations(userID, 6, activitymodels.DonationCompleted)
		s.addCheckIns(userID, 35, s.now.Add(-30*24*time.Hour), true)

		result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
		s.Require().NoError(err)
		s.True(result.Upgraded)
		s.Equal(models.TierEngagement, result.NewTier)
		s.Equal(models.TierEngagement, s.load(userID).Tier)
	})

	s.Run("tier 2 member short of check-ins stays at tier 2", func() {
		userID := s.seedUser(models.TierGeofenced, 100, nil)
		s.addDonations(userID, 6, activitymodels.DonationCompleted)
		s.addCheckIns(userID, 20, s.now.Add(-30*24*time.Hour), true)

		result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
		s.Require().NoError(err)
		s.False(result.Upgraded)
		s.Equal(models.TierGeofenced, result.NewTier)
		s.Contains(result.Message, "10 more check-ins")
		s.Equal(models.TierGeofenced, s.load(userID).Tier)
	})

	s.Run("chains 1 to 3 in one call when both rules are met", func() {
		userID := s.seedUser(models.TierNeighborhood, 120, nil)
		s.addDonations(userID, 5, activitymodels.DonationCompleted)
		s.addCheckIns(userID, 30, s.now.Add(-24*time.Hour), true)
		before := s.notifier.count()

		result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(models.TierNeighborhood, result.PreviousTier)
		s.Equal(models.TierEngagement, result.NewTier)
		s.Len(result.Events, 2)
		s.Equal(before+2, s.notifier.count())
	})

	s.Run("pending and failed donations do not count", func() {
		userID := s.seedUser(models.TierGeofenced, 100, nil)
		s.addDonations(userID, 6, activitymodels.DonationPending)
		s.addDonations(userID, 6, activitymodels.DonationFailed)
		s.addCheckIns(userID, 35, s.now.Add(-24*time.Hour), true)

		result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
		s.Require().NoError(err)
		s.False(result.Upgraded)
	})

	s.Run("unverified and stale check-ins do not count", func() {
		userID := s.seedUser(models.TierNeighborhood, 30, nil)
		s.addCheckIns(userID, 10, s.now.Add(-24*time.Hour), false)
		s.addCheckIns(userID, 10, s.now.Add(-15*24*time.Hour), true)

		result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
		s.Require().NoError(err)
		s.False(result.Upgraded)
	})

	s.Run("window start is inclusive", func() {
		userID := s.seedUser(models.TierNeighborhood, 30, nil)
		s.addCheckIns(userID, 5, s.now.Add(-models.Tier2Window), true)

		result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
		s.Require().NoError(err)
		s.True(result.Upgraded)
	})

	s.Run("no automatic rule at tiers 0, 3 and 4", func() {
		for _, tier := range []models.Tier{models.TierUnverified, models.TierEngagement, models.TierOfficialID} {
			userID := s.seedUser(tier, 365, nil)
			s.addDonations(userID, 10, activitymodels.DonationCompleted)
			s.addCheckIns(userID, 40, s.now.Add(-time.Hour), true)

			result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
			s.Require().NoError(err)
			s.False(result.Upgraded)
			s.Equal(tier, result.NewTier)
			s.NotEmpty(result.Message)
		}
	})

	s.Run("unknown member", func() {
		_, err := s.service.AutoCheckAndUpgrade(s.ctx, id.UserID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestIdempotence() {
	userID := s.seedUser(models.TierNeighborhood, 10, nil)
	s.addCheckIns(userID, 3, s.now.Add(-time.Hour), true)

	for range 2 {
		result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
		s.Require().NoError(err)
		s.False(result.Upgraded)
	}
	s.Len(s.load(userID).History, 1)

	s.addCheckIns(userID, 2, s.now.Add(-time.Hour), true)
	first, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
	s.Require().NoError(err)
	s.True(first.Upgraded)

	second, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
	s.Require().NoError(err)
	s.False(second.Upgraded)

	user := s.load(userID)
	s.Len(user.History, 2)
	s.True(user.HasEventForTier(models.TierGeofenced))
}

func (s *ServiceSuite) TestMonotonicity() {
	userID := s.seedUser(models.TierNeighborhood, 10, nil)
	s.addCheckIns(userID, 5, s.now.Add(-time.Hour), true)

	result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().True(result.Upgraded)

	// A month later the check-ins have aged out of the window.
	later := requestcontext.WithTime(context.Background(), s.now.Add(30*24*time.Hour))
	result, err = s.service.AutoCheckAndUpgrade(later, userID)
	s.Require().NoError(err)
	s.False(result.Upgraded)
	s.Equal(models.TierGeofenced, result.NewTier)
	s.Equal(models.TierGeofenced, s.load(userID).Tier)
}

func (s *ServiceSuite) TestSequentialGating() {
	s.Run("tier 0 never auto-upgrades", func() {
		userID := s.seedUser(models.TierUnverified, 400, nil)
		s.addDonations(userID, 50, activitymodels.DonationCompleted)
		s.addCheckIns(userID, 50, s.now.Add(-time.Hour), true)

		result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
		s.Require().NoError(err)
		s.False(result.Upgraded)
		s.Equal(models.TierUnverified, s.load(userID).Tier)
	})

	s.Run("no check-ins means no tier 3 whatever the engagement", func() {
		userID := s.seedUser(models.TierNeighborhood, 400, nil)
		s.addDonations(userID, 50, activitymodels.DonationCompleted)

		result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
		s.Require().NoError(err)
		s.False(result.Upgraded)
		s.Equal(models.TierNeighborhood, s.load(userID).Tier)
	})
}

func (s *ServiceSuite) TestConcurrentUpgradesWriteOneEntry() {
	userID := s.seedUser(models.TierNeighborhood, 10, nil)
	s.addCheckIns(userID, 6, s.now.Add(-time.Hour), true)

	const callers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		upgraded int
		errs     []error
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.service.AutoCheckAndUpgrade(s.ctx, userID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if result.Upgraded {
				upgraded++
			}
		}()
	}
	wg.Wait()

	s.Empty(errs)
	s.Equal(1, upgraded)
	user := s.load(userID)
	s.Equal(models.TierGeofenced, user.Tier)
	s.Len(user.History, 2)
}

func (s *ServiceSuite) TestAttestNeighborhood() {
	attesterHome := geo.Coordinate{Latitude: 52.5200, Longitude: 13.4050}
	input := models.HomeLocationInput{Latitude: 52.5210, Longitude: 13.4060, Address: "  Invalidenstr. 1 "}

	s.Run("tier 2 attester moves a new member to tier 1", func() {
		attesterID := s.seedUser(models.TierGeofenced, 200, &attesterHome)
		userID := s.seedUser(models.TierUnverified, 1, nil)
		before := s.notifier.count()

		user, err := s.service.AttestNeighborhood(s.ctx, userID, attesterID, input)
		s.Require().NoError(err)
		s.Equal(models.TierNeighborhood, user.Tier)
		s.Require().NotNil(user.HomeLocation)
		s.Equal("Invalidenstr. 1", user.HomeLocation.Address)
		s.Equal(s.now, user.HomeLocation.VerifiedAt)

		stored := s.load(userID)
		s.Require().Len(stored.History, 1)
		event := stored.History[0]
		s.Equal(models.TypeNeighborhoodAttestation, event.Type)
		s.Equal(attesterID.String(), event.VerifiedBy)
		evidence, ok := event.Evidence.(models.NeighborhoodEvidence)
		s.Require().True(ok)
		s.True(evidence.HasDistance)
		s.True(evidence.IsNeighbor)
		s.Equal(before+1, s.notifier.count())
	})

	s.Run("distance is advisory", func() {
		farHome := geo.Coordinate{Latitude: 48.1351, Longitude: 11.5820}
		attesterID := s.seedUser(models.TierOfficialID, 200, &farHome)
		userID := s.seedUser(models.TierUnverified, 1, nil)

		_, err := s.service.AttestNeighborhood(s.ctx, userID, attesterID, input)
		s.Require().NoError(err)

		evidence := s.load(userID).History[0].Evidence.(models.NeighborhoodEvidence)
		s.False(evidence.IsNeighbor)
		s.Greater(evidence.DistanceMeters, geo.NeighborhoodRadius)
	})

	s.Run("tier 1 attester lacks authority and nothing changes", func() {
		attesterID := s.seedUser(models.TierNeighborhood, 200, &attesterHome)
		userID := s.seedUser(models.TierUnverified, 1, nil)

		_, err := s.service.AttestNeighborhood(s.ctx, userID, attesterID, input)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientAuthority))

		user := s.load(userID)
		s.Equal(models.TierUnverified, user.Tier)
		s.Empty(user.History)
		s.Nil(user.HomeLocation)
	})

	s.Run("re-attesting a verified member only moves their home", func() {
		attesterID := s.seedUser(models.TierGeofenced, 200, &attesterHome)
		userID := s.seedUser(models.TierGeofenced, 50, &attesterHome)

		user, err := s.service.AttestNeighborhood(s.ctx, userID, attesterID, input)
		s.Require().NoError(err)
		s.Equal(models.TierGeofenced, user.Tier)
		s.Len(user.History, 2)
		s.Equal(input.Latitude, s.load(userID).HomeLocation.Coordinate.Latitude)
	})

	s.Run("self attestation", func() {
		userID := s.seedUser(models.TierGeofenced, 200, nil)
		_, err := s.service.AttestNeighborhood(s.ctx, userID, userID, input)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("invalid location", func() {
		attesterID := s.seedUser(models.TierGeofenced, 200, nil)
		userID := s.seedUser(models.TierUnverified, 1, nil)
		_, err := s.service.AttestNeighborhood(s.ctx, userID, attesterID, models.HomeLocationInput{Latitude: 91})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown attester or subject", func() {
		attesterID := s.seedUser(models.TierGeofenced, 200, nil)
		userID := s.seedUser(models.TierUnverified, 1, nil)

		_, err := s.service.AttestNeighborhood(s.ctx, userID, id.UserID(uuid.New()), input)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.service.AttestNeighborhood(s.ctx, id.UserID(uuid.New()), attesterID, input)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestGrantOfficialID() {
	details := models.IDDetails{IDType: " Passport ", IDNumber: "x1234567"}

	s.Run("tier 4 attester grants tier 4 from any tier", func() {
		attesterID := s.seedUser(models.TierOfficialID, 300, nil)
		userID := s.seedUser(models.TierUnverified, 1, nil)

		user, err := s.service.GrantOfficialID(s.ctx, userID, attesterID, details)
		s.Require().NoError(err)
		s.Equal(models.TierOfficialID, user.Tier)

		stored := s.load(userID)
		s.Require().Len(stored.History, 1)
		evidence := stored.History[0].Evidence.(models.OfficialIDEvidence)
		s.Equal("passport", evidence.IDType)
		s.NotContains(evidence.IDNumberHash, "X1234567")

		hash, err := base64.StdEncoding.DecodeString(evidence.IDNumberHash)
		s.Require().NoError(err)
		s.NoError(bcrypt.CompareHashAndPassword(hash, []byte("X1234567")))
	})

	s.Run("granting twice is a no-op", func() {
		attesterID := s.seedUser(models.TierOfficialID, 300, nil)
		userID := s.seedUser(models.TierEngagement, 100, nil)

		_, err := s.service.GrantOfficialID(s.ctx, userID, attesterID, details)
		s.Require().NoError(err)
		before := s.notifier.count()

		user, err := s.service.GrantOfficialID(s.ctx, userID, attesterID, details)
		s.Require().NoError(err)
		s.Equal(models.TierOfficialID, user.Tier)
		s.Len(s.load(userID).History, 4)
		s.Equal(before, s.notifier.count())
	})

	s.Run("tier 3 attester lacks authority", func() {
		attesterID := s.seedUser(models.TierEngagement, 300, nil)
		userID := s.seedUser(models.TierUnverified, 1, nil)

		_, err := s.service.GrantOfficialID(s.ctx, userID, attesterID, details)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientAuthority))
		s.Equal(models.TierUnverified, s.load(userID).Tier)
	})

	s.Run("unsupported document", func() {
		attesterID := s.seedUser(models.TierOfficialID, 300, nil)
		userID := s.seedUser(models.TierUnverified, 1, nil)

		_, err := s.service.GrantOfficialID(s.ctx, userID, attesterID, models.IDDetails{IDType: "library_card", IDNumber: "12345"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("self grant", func() {
		attesterID := s.seedUser(models.TierOfficialID, 300, nil)
		_, err := s.service.GrantOfficialID(s.ctx, attesterID, attesterID, details)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestCheckEligibility() {
	s.Run("target at or below current tier is already satisfied", func() {
		userID := s.seedUser(models.TierGeofenced, 10, nil)
		result, err := s.service.CheckEligibility(s.ctx, userID, 1)
		s.Require().NoError(err)
		s.True(result.Eligible)
		s.True(result.AlreadySatisfied)
	})

	s.Run("tier 2 reports the check-in count", func() {
		userID := s.seedUser(models.TierNeighborhood, 10, nil)
		s.addCheckIns(userID, 3, s.now.Add(-time.Hour), true)

		result, err := s.service.CheckEligibility(s.ctx, userID, 2)
		s.Require().NoError(err)
		s.False(result.Eligible)
		s.Require().NotNil(result.Tier2)
		s.Equal(3, result.Tier2.VerifiedCheckIns)
		s.Equal(s.now.Add(-models.Tier2Window), result.Tier2.Since)
		s.Contains(result.Message, "2 more verified check-ins")
	})

	s.Run("tier 3 reports every shortfall", func() {
		userID := s.seedUser(models.TierGeofenced, 60, nil)
		s.addDonations(userID, 2, activitymodels.DonationCompleted)
		s.addCheckIns(userID, 10, s.now.Add(-time.Hour), true)

		result, err := s.service.CheckEligibility(s.ctx, userID, 3)
		s.Require().NoError(err)
		s.False(result.Eligible)
		s.Require().NotNil(result.Tier3)
		s.Equal(60, result.Tier3.AccountAgeDays)
		s.Equal(2, result.Tier3.Contributions)
		s.Equal(10, result.Tier3.CheckIns)
		s.Contains(result.Message, "30 more days")
		s.Contains(result.Message, "3 more contributions")
		s.Contains(result.Message, "20 more check-ins")
	})

	s.Run("skipping a tier needs the previous one first", func() {
		userID := s.seedUser(models.TierNeighborhood, 400, nil)
		result, err := s.service.CheckEligibility(s.ctx, userID, 3)
		s.Require().NoError(err)
		s.False(result.Eligible)
		s.Nil(result.Tier3)
		s.Contains(result.Message, "tier 2 first")
	})

	s.Run("attested tiers are never eligible by evidence", func() {
		userID := s.seedUser(models.TierUnverified, 400, nil)
		for _, target := range []int{1, 4} {
			result, err := s.service.CheckEligibility(s.ctx, userID, target)
			s.Require().NoError(err)
			s.False(result.Eligible)
			s.NotEmpty(result.Message)
		}
	})

	s.Run("out of range target", func() {
		userID := s.seedUser(models.TierUnverified, 1, nil)
		_, err := s.service.CheckEligibility(s.ctx, userID, 5)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("does not write", func() {
		userID := s.seedUser(models.TierNeighborhood, 10, nil)
		s.addCheckIns(userID, 9, s.now.Add(-time.Hour), true)

		result, err := s.service.CheckEligibility(s.ctx, userID, 2)
		s.Require().NoError(err)
		s.True(result.Eligible)
		s.Equal(models.TierNeighborhood, s.load(userID).Tier)
	})
}

func (s *ServiceSuite) TestStatus() {
	s.Run("includes the next tier outlook", func() {
		userID := s.seedUser(models.TierNeighborhood, 10, nil)
		status, err := s.service.Status(s.ctx, userID)
		s.Require().NoError(err)
		s.Require().NotNil(status.Next)
		s.Equal(models.TierGeofenced, status.Next.TargetTier)
	})

	s.Run("tier 4 has no next tier", func() {
		userID := s.seedUser(models.TierOfficialID, 10, nil)
		status, err := s.service.Status(s.ctx, userID)
		s.Require().NoError(err)
		s.Nil(status.Next)
	})
}

func (s *ServiceSuite) TestEnroll() {
	userID := id.UserID(uuid.New())

	user, err := s.service.Enroll(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(models.TierUnverified, user.Tier)
	s.Equal(s.now, user.CreatedAt)

	_, err = s.service.Enroll(s.ctx, userID)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.service.Enroll(s.ctx, id.UserID{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestHeatmap() {
	s.Run("nearby points merge and distant ones stay apart", func() {
		clusters, err := s.service.Heatmap([]geo.Coordinate{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0, Longitude: 0.001},
			{Latitude: 0, Longitude: 10},
		})
		s.Require().NoError(err)
		s.Require().Len(clusters, 2)
		s.Equal(2, clusters[0].Weight)
		s.Equal(1, clusters[1].Weight)
	})

	s.Run("invalid coordinate is reported by index", func() {
		_, err := s.service.Heatmap([]geo.Coordinate{{}, {Latitude: 0, Longitude: 181}})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "coordinate 1")
	})

	s.Run("community heatmap uses shared homes", func() {
		home := geo.Coordinate{Latitude: 10, Longitude: 10}
		s.seedUser(models.TierNeighborhood, 5, &home)
		s.seedUser(models.TierNeighborhood, 4, &home)
		s.seedUser(models.TierUnverified, 3, nil)

		clusters, err := s.service.CommunityHeatmap(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(clusters, 1)
		s.Equal(2, clusters[0].Weight)
	})
}

func (s *ServiceSuite) TestSetLocationSharing() {
	home := geo.Coordinate{Latitude: -33.8688, Longitude: 151.2093}
	shared := s.seedUser(models.TierNeighborhood, 20, &home)
	private := s.seedUser(models.TierGeofenced, 10, &home)

	clusters, err := s.service.CommunityHeatmap(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(clusters, 1)
	s.Equal(2, clusters[0].Weight)

	s.Run("opting out removes the home from the community heatmap", func() {
		user, err := s.service.SetLocationSharing(s.ctx, private, false)
		s.Require().NoError(err)
		s.False(user.LocationSharing)

		stored := s.load(private)
		s.False(stored.LocationSharing)
		s.Equal(models.TierGeofenced, stored.Tier)
		s.Len(stored.History, 2)
		s.Zero(s.notifier.count())

		clusters, err := s.service.CommunityHeatmap(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(clusters, 1)
		s.Equal(1, clusters[0].Weight)
	})

	s.Run("unchanged preference does not bump the version", func() {
		before := s.load(shared).Version
		_, err := s.service.SetLocationSharing(s.ctx, shared, true)
		s.Require().NoError(err)
		s.Equal(before, s.load(shared).Version)
	})

	s.Run("opting back in restores the home", func() {
		_, err := s.service.SetLocationSharing(s.ctx, private, true)
		s.Require().NoError(err)

		clusters, err := s.service.CommunityHeatmap(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(clusters, 1)
		s.Equal(2, clusters[0].Weight)
	})

	s.Run("unknown member", func() {
		_, err := s.service.SetLocationSharing(s.ctx, id.UserID(uuid.New()), false)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
