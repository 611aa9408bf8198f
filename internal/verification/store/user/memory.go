package user

import (
	"context"
	"slices"
	"sync"

	"trustmatrix/internal/geo"
	"trustmatrix/internal/verification/models"
	id "trustmatrix/pkg/domain"
	"trustmatrix/pkg/platform/sentinel"
)

// InMemoryUserStore keeps members in a map. Every read returns a deep copy so
// callers can mutate freely; writes go through Commit's version check.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[id.UserID]*models.User)}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return sentinel.ErrConflict
	}
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return user.Clone(), nil
}

// ListByTiers returns the IDs of members currently at any of tiers, oldest
// account first.
func (s *InMemoryUserStore) ListByTiers(_ context.Context, tiers ...models.Tier) ([]id.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.User, 0)
	for _, u := range s.users {
		if slices.Contains(tiers, u.Tier) {
			matched = append(matched, u)
		}
	}
	sortByAge(matched)

	ids := make([]id.UserID, 0, len(matched))
	for _, u := range matched {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// ListSharedHomeLocations returns the homes of members who opted in, oldest
// account first so heatmap output is stable.
func (s *InMemoryUserStore) ListSharedHomeLocations(_ context.Context) ([]geo.Coordinate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sharing := make([]*models.User, 0)
	for _, u := range s.users {
		if u.LocationSharing && u.HomeLocation != nil {
			sharing = append(sharing, u)
		}
	}
	sortByAge(sharing)

	coords := make([]geo.Coordinate, 0, len(sharing))
	for _, u := range sharing {
		coords = append(coords, u.HomeLocation.Coordinate)
	}
	return coords, nil
}

// Commit stores user if its Version still matches, then bumps the version on
// both the stored row and the caller's copy. events must already be applied
// to user.History.
func (s *InMemoryUserStore) Commit(_ context.Context, user *models.User, events []models.VerificationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != user.Version {
		return sentinel.ErrConflict
	}
	if len(user.History) != len(current.History)+len(events) {
		return sentinel.ErrConflict
	}
	user.Version++
	s.users[user.ID] = user.Clone()
	return nil
}

func sortByAge(users []*models.User) {
	slices.SortFunc(users, func(a, b *models.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
}

func compareIDs(a, b id.UserID) int {
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
