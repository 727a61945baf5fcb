package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustedgroup/enrollment-service/internal/config"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		OrganizationName: config.OrganizationName,
		AppName:          "enrollment-service-test",
		InvitePhrase:     "open sesame",
		SessionSecret:    []byte("unit-test-session-secret"),
		SessionTTL:       time.Hour,
		ChannelTimeout:   time.Second,
	}
}

func waitForSend(t *testing.T, ch *fakeChannel) {
	t.Helper()
	select {
	case <-ch.sendDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for invite message delivery")
	}
}

func TestInviteRejectsMalformedPhones(t *testing.T) {
	store := newMemStore()
	channel := newFakeChannel()
	svc := NewInvitationService(store.allowlistRepo(), store.pendingRepo(), channel, testConfig())

	for _, phone := range []string{
		"",
		"+441234567890", // no plus allowed
		"44 1234 567890",
		"44-1234-567890",
		"notaphone",
		"44123x567890",
		"0441234567890", // leading zero
	} {
		err := svc.Invite(context.Background(), phone, nil)
		require.ErrorIs(t, err, utils.ErrInvalidPhoneFormat, "phone %q", phone)
	}

	require.Empty(t, store.allowlist, "no rows may be written for rejected phones")
	require.Empty(t, channel.sentMessages())
}

func TestInviteWritesRowAndSendsInvitePhrase(t *testing.T) {
	store := newMemStore()
	channel := newFakeChannel()
	cfg := testConfig()
	svc := NewInvitationService(store.allowlistRepo(), store.pendingRepo(), channel, cfg)

	err := svc.Invite(context.Background(), "441234567890", nil)
	require.NoError(t, err)

	entry, err := store.allowlistRepo().GetByPhone(context.Background(), "441234567890")
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Nil(t, entry.RequestedHandle)

	waitForSend(t, channel)
	msgs := channel.sentMessages()
	require.Len(t, msgs, 1)
	require.Equal(t, "441234567890", msgs[0].To)
	require.Contains(t, msgs[0].Body, cfg.InvitePhrase)
}

func TestInviteSucceedsWhenDeliveryFails(t *testing.T) {
	store := newMemStore()
	channel := newFakeChannel()
	channel.sendErr = errors.New("carrier rejected message")
	svc := NewInvitationService(store.allowlistRepo(), store.pendingRepo(), channel, testConfig())

	err := svc.Invite(context.Background(), "441234567890", nil)
	require.NoError(t, err, "delivery failure must not surface to the admin")

	entry, _ := store.allowlistRepo().GetByPhone(context.Background(), "441234567890")
	require.NotNil(t, entry, "the allowlist row is durable regardless of delivery")
	waitForSend(t, channel)
}

func TestReinviteReplacesExistingEntry(t *testing.T) {
	store := newMemStore()
	channel := newFakeChannel()
	svc := NewInvitationService(store.allowlistRepo(), store.pendingRepo(), channel, testConfig())

	alice := "alice"
	require.NoError(t, svc.Invite(context.Background(), "441234567890", &alice))
	waitForSend(t, channel)

	bob := "bob"
	require.NoError(t, svc.Invite(context.Background(), "441234567890", &bob))
	waitForSend(t, channel)

	require.Len(t, store.allowlist, 1, "re-inviting must not accumulate rows")
	entry, _ := store.allowlistRepo().GetByPhone(context.Background(), "441234567890")
	require.NotNil(t, entry.RequestedHandle)
	require.Equal(t, "bob", *entry.RequestedHandle)
}

func TestUninviteClearsAllowlistAndPendingSession(t *testing.T) {
	store := newMemStore()
	channel := newFakeChannel()
	svc := NewInvitationService(store.allowlistRepo(), store.pendingRepo(), channel, testConfig())

	require.NoError(t, store.allowlistRepo().Upsert(context.Background(), "441234567890", nil))
	require.NoError(t, store.pendingRepo().Upsert(context.Background(), "441234567890", "VE-abc"))

	require.NoError(t, svc.Uninvite(context.Background(), "441234567890"))

	require.Empty(t, store.allowlist)
	require.Empty(t, store.pending)
}

func TestUninviteRejectsMalformedPhone(t *testing.T) {
	store := newMemStore()
	svc := NewInvitationService(store.allowlistRepo(), store.pendingRepo(), newFakeChannel(), testConfig())

	err := svc.Uninvite(context.Background(), "+441234567890")
	require.ErrorIs(t, err, utils.ErrInvalidPhoneFormat)
}
