package store

import (
	"context"
	"sync"
	"time"

	"trustmatrix/internal/activity/models"
	id "trustmatrix/pkg/domain"
	"trustmatrix/pkg/platform/sentinel"
)

// InMemoryStore keeps facilities and activity records in memory. It also
// serves as the verification record store.
type InMemoryStore struct {
	mu            sync.RWMutex
	facilities    map[id.FacilityID]models.Facility
	checkIns      map[id.UserID][]models.CheckIn
	donations     map[id.UserID][]models.Donation
	contributions map[id.UserID][]models.NeedContribution
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		facilities:    make(map[id.FacilityID]models.Facility),
		checkIns:      make(map[id.UserID][]models.CheckIn),
		donations:     make(map[id.UserID][]models.Donation),
		contributions: make(map[id.UserID][]models.NeedContribution),
	}
}

func (s *InMemoryStore) SaveFacility(_ context.Context, f *models.Facility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilities[f.ID] = *f
	return nil
}

func (s *InMemoryStore) FindFacility(_ context.Context, facilityID id.FacilityID) (*models.Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.facilities[facilityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &f, nil
}

func (s *InMemoryStore) SaveCheckIn(_ context.Context, c *models.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkIns[c.UserID] = append(s.checkIns[c.UserID], *c)
	return nil
}

func (s *InMemoryStore) SaveDonation(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donations[d.UserID] = append(s.donations[d.UserID], *d)
	return nil
}

func (s *InMemoryStore) SaveContribution(_ context.Context, c *models.NeedContribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contributions[c.UserID] = append(s.contributions[c.UserID], *c)
	return nil
}

// CountVerifiedCheckIns counts verified check-ins with since <= t <= until.
func (s *InMemoryStore) CountVerifiedCheckIns(_ context.Context, userID id.UserID, since, until time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, c := range s.checkIns[userID] {
		if c.Verified && !c.CheckedInAt.Before(since) && !c.CheckedInAt.After(until) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) CountCompletedDonations(_ context.Context, userID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, d := range s.donations[userID] {
		if d.Status == models.DonationCompleted {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) CountNeedContributions(_ context.Context, userID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contributions[userID]), nil
}
