package ports

import (
	"context"
	"time"

	id "trustmatrix/pkg/domain"
)

// RecordStore is the read side of the activity records the trust matrix
// counts as evidence. Implementations are pure I/O; windows are inclusive
// on both ends.
type RecordStore interface {
	// CountVerifiedCheckIns counts geofence-verified check-ins in [since, until].
	CountVerifiedCheckIns(ctx context.Context, userID id.UserID, since, until time.Time) (int, error)

	// CountCompletedDonations counts donations whose payment completed.
	CountCompletedDonations(ctx context.Context, userID id.UserID) (int, error)

	// CountNeedContributions counts contributions toward facility needs.
	CountNeedContributions(ctx context.Context, userID id.UserID) (int, error)
}
