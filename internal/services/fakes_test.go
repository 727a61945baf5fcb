package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trustedgroup/enrollment-service/internal/models"
	"github.com/trustedgroup/enrollment-service/internal/repositories"
)

// memStore backs all three repositories with maps under one mutex, so
// Promote is atomic the same way the real transaction is.
type memStore struct {
	mu         sync.Mutex
	allowlist  map[string]*models.AllowlistEntry
	pending    map[string]*models.PendingSession
	identities map[string]*models.Identity
}

func newMemStore() *memStore {
	return &memStore{
		allowlist:  make(map[string]*models.AllowlistEntry),
		pending:    make(map[string]*models.PendingSession),
		identities: make(map[string]*models.Identity),
	}
}

// ----- AllowlistRepository -----

func (s *memStore) Upsert(_ context.Context, phone string, requestedHandle *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowlist[phone] = &models.AllowlistEntry{
		ID:              uuid.New(),
		Phone:           phone,
		RequestedHandle: requestedHandle,
		InvitedAt:       time.Now(),
	}
	return nil
}

func (s *memStore) GetByPhone(_ context.Context, phone string) (*models.AllowlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowlist[phone], nil
}

func (s *memStore) DeleteByPhone(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.allowlist, phone)
	return nil
}

func (s *memStore) CleanupOlderThan(_ context.Context, _ int) error { return nil }

// pendingRepo wraps memStore so both repository interfaces can hang off
// one store without method-name collisions.
type pendingRepo struct{ s *memStore }

func (r pendingRepo) Upsert(_ context.Context, phone, challengeSID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.pending[phone] = &models.PendingSession{
		ID:           uuid.New(),
		Phone:        phone,
		ChallengeSID: challengeSID,
		CreatedAt:    time.Now(),
	}
	return nil
}

func (r pendingRepo) GetByPhone(_ context.Context, phone string) (*models.PendingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.pending[phone], nil
}

func (r pendingRepo) DeleteByPhone(_ context.Context, phone string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.pending, phone)
	return nil
}

func (r pendingRepo) CleanupOlderThan(_ context.Context, _ int) error { return nil }

type identityRepo struct{ s *memStore }

func (r identityRepo) GetByHandle(_ context.Context, handle string) (*models.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.identities[handle], nil
}

func (r identityRepo) DeleteByHandle(_ context.Context, handle string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.identities, handle)
	return nil
}

func (r identityRepo) Promote(_ context.Context, phone, challengeSID, handle string, reclaim bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ps, ok := r.s.pending[phone]
	if !ok || ps.ChallengeSID != challengeSID {
		return false, nil
	}
	if _, exists := r.s.identities[handle]; exists && !reclaim {
		return false, repositories.ErrHandleExists
	}
	delete(r.s.pending, phone)
	r.s.identities[handle] = &models.Identity{
		ID:         uuid.New(),
		Handle:     handle,
		Phone:      phone,
		EnrolledAt: time.Now(),
	}
	delete(r.s.allowlist, phone)
	return true, nil
}

func (s *memStore) allowlistRepo() repositories.AllowlistRepository { return s }
func (s *memStore) pendingRepo() repositories.PendingSessionRepository {
	return pendingRepo{s: s}
}
func (s *memStore) identityRepo() repositories.IdentityRepository { return identityRepo{s: s} }

// ----- VerificationChannel fake -----

type sentMessage struct {
	Body string
	To   string
}

type fakeChannel struct {
	mu sync.Mutex

	sendErr  error
	startErr error
	checkErr error

	challengeSID string
	checkResult  bool

	sent       []sentMessage
	startCalls int
	checkCalls int

	// closed-over signal for the fire-and-forget invite message
	sendDone chan struct{}
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		challengeSID: "VE-test-challenge",
		checkResult:  true,
		sendDone:     make(chan struct{}, 8),
	}
}

func (c *fakeChannel) SendMessage(_ context.Context, body, to string) error {
	c.mu.Lock()
	c.sent = append(c.sent, sentMessage{Body: body, To: to})
	err := c.sendErr
	c.mu.Unlock()
	c.sendDone <- struct{}{}
	return err
}

func (c *fakeChannel) StartChallenge(_ context.Context, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startCalls++
	if c.startErr != nil {
		return "", c.startErr
	}
	return c.challengeSID, nil
}

func (c *fakeChannel) CheckChallenge(_ context.Context, _, _ string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkCalls++
	return c.checkResult, c.checkErr
}

func (c *fakeChannel) sentMessages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sentMessage, len(c.sent))
	copy(out, c.sent)
	return out
}
