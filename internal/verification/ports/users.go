package ports

import (
	"context"

	"trustmatrix/internal/geo"
	"trustmatrix/internal/verification/models"
	id "trustmatrix/pkg/domain"
)

// UserStore is the lock-free side of the user store. Create fails with
// sentinel.ErrConflict when the user already exists.
type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	ListByTiers(ctx context.Context, tiers ...models.Tier) ([]id.UserID, error)
	ListSharedHomeLocations(ctx context.Context) ([]geo.Coordinate, error)
}

// TxUserStore is the store handed to a transaction body. FindByID reads the
// row under the transaction's lock; Commit persists the user together with
// the new ledger events, and fails with sentinel.ErrConflict when the stored
// version no longer matches user.Version.
type TxUserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	Commit(ctx context.Context, user *models.User, events []models.VerificationEvent) error
}

// UserTx scopes a read-evaluate-write sequence to one user. Implementations
// serialise bodies for the same user and apply a bounded timeout; a body that
// returns an error leaves no partial writes.
type UserTx interface {
	RunInTx(ctx context.Context, userID id.UserID, fn func(store TxUserStore) error) error
}
