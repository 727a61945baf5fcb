package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/require"
)

// stubTx fakes the transaction edge of Promote. Embedding pgx.Tx
// satisfies the interface; only the methods Promote touches are real.
type stubTx struct {
	pgx.Tx

	execTags  []pgconn.CommandTag
	execCalls int

	commitErr error
	commits   int
	rollbacks int
}

func (t *stubTx) Exec(_ context.Context, _ string, _ ...interface{}) (pgconn.CommandTag, error) {
	tag := t.execTags[t.execCalls]
	t.execCalls++
	return tag, nil
}

func (t *stubTx) Commit(_ context.Context) error {
	t.commits++
	return t.commitErr
}

func (t *stubTx) Rollback(_ context.Context) error {
	t.rollbacks++
	return nil
}

// stubDB hands out the one stub transaction; Promote never touches the
// pool outside Begin.
type stubDB struct {
	DB
	tx pgx.Tx
}

func (d *stubDB) Begin(_ context.Context) (pgx.Tx, error) { return d.tx, nil }

func promoteTags() []pgconn.CommandTag {
	return []pgconn.CommandTag{
		pgconn.CommandTag("DELETE 1"),     // pending session consumed
		pgconn.CommandTag("INSERT 0 1"),   // identity row
		pgconn.CommandTag("DELETE 1"),     // allowlist row
	}
}

func TestPromoteCommitsOnSuccess(t *testing.T) {
	tx := &stubTx{execTags: promoteTags()}
	repo := NewIdentityRepository(&stubDB{tx: tx})

	consumed, err := repo.Promote(context.Background(), "441234567890", "VE-abc", "alice", false)
	require.NoError(t, err)
	require.True(t, consumed)
	require.Equal(t, 1, tx.commits)
	require.Zero(t, tx.rollbacks)
}

func TestPromoteSurfacesCommitFailure(t *testing.T) {
	commitErr := errors.New("connection reset during commit")
	tx := &stubTx{execTags: promoteTags(), commitErr: commitErr}
	repo := NewIdentityRepository(&stubDB{tx: tx})

	consumed, err := repo.Promote(context.Background(), "441234567890", "VE-abc", "alice", false)
	require.ErrorIs(t, err, commitErr, "a failed commit must reach the caller")
	require.False(t, consumed, "nothing became durable, so nothing was consumed")
	require.Equal(t, 1, tx.commits)
}

func TestPromoteRollsBackWhenSessionAlreadyConsumed(t *testing.T) {
	tx := &stubTx{execTags: []pgconn.CommandTag{pgconn.CommandTag("DELETE 0")}}
	repo := NewIdentityRepository(&stubDB{tx: tx})

	consumed, err := repo.Promote(context.Background(), "441234567890", "VE-abc", "alice", false)
	require.NoError(t, err)
	require.False(t, consumed)
	require.Zero(t, tx.commits)
	require.Equal(t, 1, tx.rollbacks)
}
