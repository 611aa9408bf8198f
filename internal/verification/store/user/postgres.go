package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"trustmatrix/internal/geo"
	"trustmatrix/internal/verification/models"
	"trustmatrix/internal/verification/ports"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/platform/sentinel"
)

const pqUniqueViolation = "23505"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresUserStore persists members and their ledger in PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, tier, location_sharing, created_at, version)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(user.ID), int(user.Tier), user.LocationSharing, user.CreatedAt, user.Version,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return findUser(ctx, s.db, userID, false)
}

func (s *PostgresUserStore) ListByTiers(ctx context.Context, tiers ...models.Tier) ([]id.UserID, error) {
	values := make([]int64, 0, len(tiers))
	for _, t := range tiers {
		values = append(values, int64(t))
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM users
		WHERE tier = ANY($1)
		ORDER BY created_at, id`, pq.Array(values))
	if err != nil {
		return nil, fmt.Errorf("list users by tier: %w", err)
	}
	defer rows.Close()

	var ids []id.UserID
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id.UserID(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return ids, nil
}

func (s *PostgresUserStore) ListSharedHomeLocations(ctx context.Context) ([]geo.Coordinate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT home_lat, home_lng FROM users
		WHERE location_sharing AND home_lat IS NOT NULL
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list home locations: %w", err)
	}
	defer rows.Close()

	var coords []geo.Coordinate
	for rows.Next() {
		var c geo.Coordinate
		if err := rows.Scan(&c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("scan home location: %w", err)
		}
		coords = append(coords, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate home locations: %w", err)
	}
	return coords, nil
}

// PostgresTx runs each body in a database transaction that holds the user's
// row lock from the first read to commit.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB, timeout time.Duration) *PostgresTx {
	return &PostgresTx{db: db, timeout: timeout}
}

func (t *PostgresTx) RunInTx(ctx context.Context, _ id.UserID, fn func(store ports.TxUserStore) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txStore struct {
	tx *sql.Tx
}

// FindByID locks the user row for the rest of the transaction.
func (s *txStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return findUser(ctx, s.tx, userID, true)
}

func (s *txStore) Commit(ctx context.Context, user *models.User, events []models.VerificationEvent) error {
	var lat, lng sql.NullFloat64
	var address sql.NullString
	var verifiedAt sql.NullTime
	if h := user.HomeLocation; h != nil {
		lat = sql.NullFloat64{Float64: h.Coordinate.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: h.Coordinate.Longitude, Valid: true}
		address = sql.NullString{String: h.Address, Valid: true}
		verifiedAt = sql.NullTime{Time: h.VerifiedAt, Valid: true}
	}

	res, err := s.tx.ExecContext(ctx, `
		UPDATE users
		SET tier = $2, home_lat = $3, home_lng = $4, home_address = $5,
		    home_verified_at = $6, location_sharing = $7, version = version + 1
		WHERE id = $1 AND version = $8`,
		uuid.UUID(user.ID), int(user.Tier), lat, lng, address, verifiedAt, user.LocationSharing, user.Version,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}

	first := len(user.History) - len(events)
	for i, event := range events {
		evidence, err := models.EncodeEvidence(event.Evidence)
		if err != nil {
			return fmt.Errorf("encode evidence: %w", err)
		}
		_, err = s.tx.ExecContext(ctx, `
			INSERT INTO verification_events (id, user_id, seq, tier, verified_by, verified_at, verification_type, evidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.UUID(event.ID), uuid.UUID(user.ID), first+i+1, int(event.Tier),
			event.VerifiedBy, event.VerifiedAt, string(event.Type), evidence,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert verification event: %w", err)
		}
	}
	user.Version++
	return nil
}

func findUser(ctx context.Context, q querier, userID id.UserID, forUpdate bool) (*models.User, error) {
	query := `
		SELECT id, tier, home_lat, home_lng, home_address, home_verified_at,
		       location_sharing, created_at, version
		FROM users WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		raw        uuid.UUID
		tier       int
		lat, lng   sql.NullFloat64
		address    sql.NullString
		verifiedAt sql.NullTime
		user       models.User
	)
	err := q.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(
		&raw, &tier, &lat, &lng, &address, &verifiedAt,
		&user.LocationSharing, &user.CreatedAt, &user.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	user.ID = id.UserID(raw)
	user.Tier = models.Tier(tier)
	if lat.Valid && lng.Valid {
		user.HomeLocation = &models.HomeLocation{
			Coordinate: geo.Coordinate{Latitude: lat.Float64, Longitude: lng.Float64},
			Address:    address.String,
			VerifiedAt: verifiedAt.Time,
		}
	}

	history, err := loadHistory(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	user.History = history
	return &user, nil
}

func loadHistory(ctx context.Context, q querier, userID id.UserID) ([]models.VerificationEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, tier, verified_by, verified_at, verification_type, evidence
		FROM verification_events
		WHERE user_id = $1
		ORDER BY seq`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("load verification history: %w", err)
	}
	defer rows.Close()

	var history []models.VerificationEvent
	for rows.Next() {
		var (
			raw      uuid.UUID
			tier     int
			kind     string
			evidence []byte
			event    models.VerificationEvent
		)
		if err := rows.Scan(&raw, &tier, &event.VerifiedBy, &event.VerifiedAt, &kind, &evidence); err != nil {
			return nil, fmt.Errorf("scan verification event: %w", err)
		}
		event.ID = id.EventID(raw)
		event.Tier = models.Tier(tier)
		event.Type = models.VerificationType(kind)
		event.Evidence, err = models.DecodeEvidence(event.Type, evidence)
		if err != nil {
			return nil, fmt.Errorf("decode evidence for event %s: %w", event.ID, err)
		}
		history = append(history, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification events: %w", err)
	}
	return history, nil
}
