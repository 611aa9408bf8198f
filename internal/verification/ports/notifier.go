package ports

import (
	"context"

	"trustmatrix/internal/verification/models"
	id "trustmatrix/pkg/domain"
)

// Notifier receives accepted verification events after they are committed.
// Implementations must not block the caller; a returned error is logged and
// never undoes the transition.
type Notifier interface {
	Notify(ctx context.Context, userID id.UserID, event models.VerificationEvent) error
}
