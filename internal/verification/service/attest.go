package service

import (
	"context"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"

	"trustmatrix/internal/geo"
	"trustmatrix/internal/verification/models"
	"trustmatrix/internal/verification/ports"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/requestcontext"
)

// AttestNeighborhood records that attesterID vouches for userID living at
// location. The attester must hold tier 2 or above. Distance between the two
// homes is stored with the event but never blocks the attestation.
//
// A member who is already tier 1 or higher only has their home location
// replaced; no second ledger entry is written.
func (s *Service) AttestNeighborhood(ctx context.Context, userID, attesterID id.UserID, location models.HomeLocationInput) (result *models.User, err error) {
	ctx, span := s.startSpan(ctx, "verification.AttestNeighborhood", userID)
	defer func() { endSpan(span, err) }()

	home, err := location.Coordinate()
	if err != nil {
		s.metrics.IncrementAttestationRejected("invalid_location")
		return nil, err
	}
	if userID == attesterID {
		s.metrics.IncrementAttestationRejected("self_attestation")
		return nil, dErrors.New(dErrors.CodeValidation, "members cannot attest for themselves")
	}

	attester, err := s.findUser(ctx, attesterID, "attester")
	if err != nil {
		return nil, err
	}
	if err := checkNeighborhoodAuthority(attester.Tier); err != nil {
		s.metrics.IncrementAttestationRejected("insufficient_authority")
		s.logger.InfoContext(ctx, "neighborhood attestation refused",
			"user_id", userID.String(),
			"attester_id", attesterID.String(),
			"attester_tier", int(attester.Tier),
		)
		return nil, err
	}

	evidence := models.NeighborhoodEvidence{AttesterTier: attester.Tier}
	if attester.HomeLocation != nil {
		check := geo.IsNeighbor(home, attester.HomeLocation.Coordinate)
		evidence.HasDistance = true
		evidence.DistanceMeters = check.Distance
		evidence.IsNeighbor = check.IsNeighbor
		if !check.IsNeighbor {
			s.logger.WarnContext(ctx, "attester lives outside the neighborhood radius",
				"user_id", userID.String(),
				"attester_id", attesterID.String(),
				"distance_meters", check.Distance,
			)
		}
	}

	now := requestcontext.Now(ctx)
	var events []models.VerificationEvent
	err = s.tx.RunInTx(ctx, userID, func(store ports.TxUserStore) error {
		events = nil
		user, err := store.FindByID(ctx, userID)
		if err != nil {
			return translateStoreErr(err, "user")
		}
		user.SetHomeLocation(home, location.Address, now)
		if user.Tier == models.TierUnverified {
			event, err := models.NewVerificationEvent(attesterID.String(), now, evidence)
			if err != nil {
				return err
			}
			if err := user.Apply(event); err != nil {
				return err
			}
			events = append(events, event)
		}
		if err := store.Commit(ctx, user, events); err != nil {
			return translateStoreErr(err, "user")
		}
		result = user
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err, "user")
	}

	s.publish(ctx, userID, events)
	return result, nil
}

// GrantOfficialID moves userID straight to tier 4 after a tier 4 attester has
// inspected a government document. Only a bcrypt hash of the document number
// is kept. Granting to a member who is already tier 4 changes nothing.
func (s *Service) GrantOfficialID(ctx context.Context, userID, attesterID id.UserID, details models.IDDetails) (result *models.User, err error) {
	ctx, span := s.startSpan(ctx, "verification.GrantOfficialID", userID)
	defer func() { endSpan(span, err) }()

	details.Normalize()
	if err := details.Validate(); err != nil {
		s.metrics.IncrementAttestationRejected("invalid_id_details")
		return nil, err
	}
	if userID == attesterID {
		s.metrics.IncrementAttestationRejected("self_attestation")
		return nil, dErrors.New(dErrors.CodeValidation, "members cannot verify their own official id")
	}

	attester, err := s.findUser(ctx, attesterID, "attester")
	if err != nil {
		return nil, err
	}
	if err := checkOfficialIDAuthority(attester.Tier); err != nil {
		s.metrics.IncrementAttestationRejected("insufficient_authority")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(details.IDNumber), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash id number")
	}
	evidence := models.OfficialIDEvidence{
		IDType:       string(details.IDType),
		IDNumberHash: base64.StdEncoding.EncodeToString(hash),
	}

	now := requestcontext.Now(ctx)
	var events []models.VerificationEvent
	err = s.tx.RunInTx(ctx, userID, func(store ports.TxUserStore) error {
		events = nil
		user, err := store.FindByID(ctx, userID)
		if err != nil {
			return translateStoreErr(err, "user")
		}
		result = user
		if user.Tier == models.TierOfficialID {
			return nil
		}
		event, err := models.NewVerificationEvent(attesterID.String(), now, evidence)
		if err != nil {
			return err
		}
		if err := user.Apply(event); err != nil {
			return err
		}
		if err := store.Commit(ctx, user, []models.VerificationEvent{event}); err != nil {
			return translateStoreErr(err, "user")
		}
		events = append(events, event)
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err, "user")
	}

	s.publish(ctx, userID, events)
	return result, nil
}
