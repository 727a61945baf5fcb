package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/trustedgroup/enrollment-service/internal/models"
)

// PendingSessionRepository manages in-flight verification challenges,
// at most one per phone.
type PendingSessionRepository interface {
	// Upsert records a challenge handle for a phone. A reply that
	// arrives while a challenge is already outstanding replaces it.
	Upsert(ctx context.Context, phone, challengeSID string) error
	GetByPhone(ctx context.Context, phone string) (*models.PendingSession, error)
	DeleteByPhone(ctx context.Context, phone string) error
	CleanupOlderThan(ctx context.Context, hours int) error
}

type pendingSessionRepo struct {
	db DB
}

func NewPendingSessionRepository(db DB) PendingSessionRepository {
	return &pendingSessionRepo{db: db}
}

func (r *pendingSessionRepo) Upsert(ctx context.Context, phone, challengeSID string) error {
	q := `
        INSERT INTO pending_sessions (id, phone, challenge_sid, created_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (phone) DO UPDATE
        SET challenge_sid = EXCLUDED.challenge_sid,
            created_at    = NOW()
    `
	_, err := r.db.Exec(ctx, q, uuid.New(), phone, challengeSID)
	return err
}

func (r *pendingSessionRepo) GetByPhone(ctx context.Context, phone string) (*models.PendingSession, error) {
	q := `
        SELECT id, phone, challenge_sid, created_at
        FROM pending_sessions
        WHERE phone = $1
    `
	row := r.db.QueryRow(ctx, q, phone)
	var rec models.PendingSession
	err := row.Scan(&rec.ID, &rec.Phone, &rec.ChallengeSID, &rec.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *pendingSessionRepo) DeleteByPhone(ctx context.Context, phone string) error {
	q := `DELETE FROM pending_sessions WHERE phone = $1`
	_, err := r.db.Exec(ctx, q, phone)
	return err
}

func (r *pendingSessionRepo) CleanupOlderThan(ctx context.Context, hours int) error {
	q := `DELETE FROM pending_sessions WHERE created_at < NOW() - make_interval(hours => $1)`
	_, err := r.db.Exec(ctx, q, hours)
	return err
}
