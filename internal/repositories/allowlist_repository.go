package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/trustedgroup/enrollment-service/internal/models"
)

// AllowlistRepository manages invited-but-not-yet-enrolled phone numbers.
type AllowlistRepository interface {
	// Upsert records an invitation. Re-inviting a phone replaces the
	// existing row instead of accumulating duplicates.
	Upsert(ctx context.Context, phone string, requestedHandle *string) error
	GetByPhone(ctx context.Context, phone string) (*models.AllowlistEntry, error)
	DeleteByPhone(ctx context.Context, phone string) error
	CleanupOlderThan(ctx context.Context, days int) error
}

type allowlistRepo struct {
	db DB
}

func NewAllowlistRepository(db DB) AllowlistRepository {
	return &allowlistRepo{db: db}
}

func (r *allowlistRepo) Upsert(ctx context.Context, phone string, requestedHandle *string) error {
	q := `
        INSERT INTO allowlist (id, phone, requested_handle, invited_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (phone) DO UPDATE
        SET requested_handle = EXCLUDED.requested_handle,
            invited_at       = NOW()
    `
	_, err := r.db.Exec(ctx, q, uuid.New(), phone, requestedHandle)
	return err
}

func (r *allowlistRepo) GetByPhone(ctx context.Context, phone string) (*models.AllowlistEntry, error) {
	q := `
        SELECT id, phone, requested_handle, invited_at
        FROM allowlist
        WHERE phone = $1
    `
	row := r.db.QueryRow(ctx, q, phone)
	var rec models.AllowlistEntry
	err := row.Scan(&rec.ID, &rec.Phone, &rec.RequestedHandle, &rec.InvitedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *allowlistRepo) DeleteByPhone(ctx context.Context, phone string) error {
	q := `DELETE FROM allowlist WHERE phone = $1`
	_, err := r.db.Exec(ctx, q, phone)
	return err
}

func (r *allowlistRepo) CleanupOlderThan(ctx context.Context, days int) error {
	q := `DELETE FROM allowlist WHERE invited_at < NOW() - make_interval(days => $1)`
	_, err := r.db.Exec(ctx, q, days)
	return err
}
