package service

import (
	"context"
	"fmt"

	"trustmatrix/internal/geo"
	"trustmatrix/internal/verification/models"
	"trustmatrix/internal/verification/ports"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
)

// Heatmap clusters coords for anonymised display. Every coordinate must be
// valid; the first bad one is reported by index.
func (s *Service) Heatmap(coords []geo.Coordinate) ([]geo.Cluster, error) {
	for i, c := range coords {
		if err := c.Validate(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("coordinate %d is invalid", i))
		}
	}
	return geo.ClusterForHeatmap(coords), nil
}

// CommunityHeatmap clusters the home locations of members who share them.
func (s *Service) CommunityHeatmap(ctx context.Context) ([]geo.Cluster, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	homes, err := s.users.ListSharedHomeLocations(ctx)
	if err != nil {
		return nil, translateStoreErr(err, "home locations")
	}
	return geo.ClusterForHeatmap(homes), nil
}

// SetLocationSharing records whether userID's home location may appear in
// the community heatmap. It never touches tier or history.
func (s *Service) SetLocationSharing(ctx context.Context, userID id.UserID, enabled bool) (result *models.User, err error) {
	ctx, span := s.startSpan(ctx, "verification.SetLocationSharing", userID)
	defer func() { endSpan(span, err) }()

	err = s.tx.RunInTx(ctx, userID, func(store ports.TxUserStore) error {
		user, err := store.FindByID(ctx, userID)
		if err != nil {
			return translateStoreErr(err, "user")
		}
		result = user
		if user.LocationSharing == enabled {
			return nil
		}
		user.LocationSharing = enabled
		if err := store.Commit(ctx, user, nil); err != nil {
			return translateStoreErr(err, "user")
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err, "user")
	}

	s.logAudit(ctx, "location_sharing_changed",
		"user_id", userID.String(),
		"enabled", enabled,
	)
	return result, nil
}
