package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/trustedgroup/enrollment-service/internal/models"
)

// ErrHandleExists is returned by Promote when the identities handle
// unique constraint rejects the insert (a racer claimed it first).
var ErrHandleExists = errors.New("handle already exists")

// IdentityRepository manages enrolled members.
type IdentityRepository interface {
	GetByHandle(ctx context.Context, handle string) (*models.Identity, error)
	DeleteByHandle(ctx context.Context, handle string) error

	// Promote performs the enrollment write atomically: it consumes
	// the phone's pending session (conditional delete keyed on the
	// challenge handle), inserts the identity, and removes the
	// allowlist row. All three succeed or none are visible.
	//
	// consumed == false means the pending session was already gone —
	// a concurrent enrollment won the race — and nothing was written.
	//
	// reclaim == true rebinds an existing identity row to this phone
	// instead of failing on the handle constraint. Callers set it only
	// after proving the allowlist reserved the handle for this phone.
	Promote(ctx context.Context, phone, challengeSID, handle string, reclaim bool) (consumed bool, err error)
}

type identityRepo struct {
	db DB
}

func NewIdentityRepository(db DB) IdentityRepository {
	return &identityRepo{db: db}
}

func (r *identityRepo) GetByHandle(ctx context.Context, handle string) (*models.Identity, error) {
	q := `
        SELECT id, handle, phone, enrolled_at
        FROM identities
        WHERE handle = $1
    `
	row := r.db.QueryRow(ctx, q, handle)
	var rec models.Identity
	err := row.Scan(&rec.ID, &rec.Handle, &rec.Phone, &rec.EnrolledAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *identityRepo) DeleteByHandle(ctx context.Context, handle string) error {
	q := `DELETE FROM identities WHERE handle = $1`
	_, err := r.db.Exec(ctx, q, handle)
	return err
}

func (r *identityRepo) Promote(ctx context.Context, phone, challengeSID, handle string, reclaim bool) (consumed bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Conditional delete: the row must still carry the challenge we
	// verified. RowsAffected 0 means another enrollment consumed it.
	tag, err := tx.Exec(ctx,
		`DELETE FROM pending_sessions WHERE phone = $1 AND challenge_sid = $2`,
		phone, challengeSID,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		return false, nil
	}

	insert := `INSERT INTO identities (id, handle, phone, enrolled_at) VALUES ($1, $2, $3, NOW())`
	if reclaim {
		insert += ` ON CONFLICT (handle) DO UPDATE SET phone = EXCLUDED.phone, enrolled_at = NOW()`
	}
	_, err = tx.Exec(ctx, insert, uuid.New(), handle, phone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			err = ErrHandleExists
		}
		return false, err
	}

	_, err = tx.Exec(ctx, `DELETE FROM allowlist WHERE phone = $1`, phone)
	if err != nil {
		return false, err
	}

	// The commit error must reach the caller: a session issued for an
	// identity that never became durable would be a phantom login.
	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
