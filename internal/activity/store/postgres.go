package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"trustmatrix/internal/activity/models"
	"trustmatrix/internal/geo"
	id "trustmatrix/pkg/domain"
	"trustmatrix/pkg/platform/sentinel"
)

// PostgresStore persists facilities and activity records in PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbFacility struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Lat          float64   `db:"lat"`
	Lng          float64   `db:"lng"`
	RadiusMeters float64   `db:"radius_meters"`
}

func (s *PostgresStore) SaveFacility(ctx context.Context, f *models.Facility) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO facilities (id, name, lat, lng, radius_meters)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, lat = EXCLUDED.lat, lng = EXCLUDED.lng, radius_meters = EXCLUDED.radius_meters`,
		uuid.UUID(f.ID), f.Name, f.Location.Latitude, f.Location.Longitude, f.RadiusMeters)
	if err != nil {
		return fmt.Errorf("save facility: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindFacility(ctx context.Context, facilityID id.FacilityID) (*models.Facility, error) {
	var row dbFacility
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, lat, lng, radius_meters
		FROM facilities WHERE id = $1`, uuid.UUID(facilityID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find facility: %w", err)
	}
	return &models.Facility{
		ID:           id.FacilityID(row.ID),
		Name:         row.Name,
		Location:     geo.Coordinate{Latitude: row.Lat, Longitude: row.Lng},
		RadiusMeters: row.RadiusMeters,
	}, nil
}

func (s *PostgresStore) SaveCheckIn(ctx context.Context, c *models.CheckIn) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO check_ins (id, user_id, facility_id, lat, lng, distance_meters, verified, checked_in_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(c.ID), uuid.UUID(c.UserID), uuid.UUID(c.FacilityID),
		c.Location.Latitude, c.Location.Longitude, c.DistanceMeters, c.Verified, c.CheckedInAt)
	if err != nil {
		return fmt.Errorf("save check-in: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveDonation(ctx context.Context, d *models.Donation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO donations (id, user_id, amount_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, uuid.UUID(d.UserID), d.AmountCents, string(d.Status), d.CreatedAt)
	if err != nil {
		return fmt.Errorf("save donation: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveContribution(ctx context.Context, c *models.NeedContribution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO need_contributions (id, user_id, facility_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, uuid.UUID(c.UserID), uuid.UUID(c.FacilityID), c.Quantity, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("save need contribution: %w", err)
	}
	return nil
}

// CountVerifiedCheckIns counts verified check-ins with since <= t <= until.
func (s *PostgresStore) CountVerifiedCheckIns(ctx context.Context, userID id.UserID, since, until time.Time) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM check_ins
		WHERE user_id = $1 AND verified
		  AND checked_in_at >= $2 AND checked_in_at <= $3`,
		uuid.UUID(userID), since, until)
	if err != nil {
		return 0, fmt.Errorf("count verified check-ins: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CountCompletedDonations(ctx context.Context, userID id.UserID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM donations
		WHERE user_id = $1 AND status = $2`,
		uuid.UUID(userID), string(models.DonationCompleted))
	if err != nil {
		return 0, fmt.Errorf("count completed donations: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CountNeedContributions(ctx context.Context, userID id.UserID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM need_contributions WHERE user_id = $1`,
		uuid.UUID(userID))
	if err != nil {
		return 0, fmt.Errorf("count need contributions: %w", err)
	}
	return count, nil
}
