package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/trustedgroup/enrollment-service/internal/config"
	"github.com/trustedgroup/enrollment-service/internal/repositories"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

var handleRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// EnrollmentService runs the challenge/verify half of the state
// machine: inbound invite-phrase replies start a challenge, and a
// correct code plus a valid handle promotes the phone to an identity.
type EnrollmentService interface {
	// HandleInboundReply processes a text received from a phone. Replies
	// that don't match the invite phrase, or come from numbers that were
	// never invited, are dropped without effect.
	HandleInboundReply(ctx context.Context, fromPhone, text string) error

	// Enroll checks the one-time code for the phone's outstanding
	// challenge and, on success, atomically claims the handle.
	Enroll(ctx context.Context, phone, desiredHandle, code string) error

	// RemoveIdentity deletes an enrolled member (admin operation).
	RemoveIdentity(ctx context.Context, handle string) error
}

type enrollmentService struct {
	allowlistRepo repositories.AllowlistRepository
	pendingRepo   repositories.PendingSessionRepository
	identityRepo  repositories.IdentityRepository
	channel       VerificationChannel
	cfg           *config.Config
}

func NewEnrollmentService(
	allowlistRepo repositories.AllowlistRepository,
	pendingRepo repositories.PendingSessionRepository,
	identityRepo repositories.IdentityRepository,
	channel VerificationChannel,
	cfg *config.Config,
) EnrollmentService {
	return &enrollmentService{
		allowlistRepo: allowlistRepo,
		pendingRepo:   pendingRepo,
		identityRepo:  identityRepo,
		channel:       channel,
		cfg:           cfg,
	}
}

func (s *enrollmentService) HandleInboundReply(ctx context.Context, fromPhone, text string) error {
	if text != s.cfg.InvitePhrase {
		utils.Logger.Debugf("Dropping inbound reply from %s: not the invite phrase", fromPhone)
		return nil
	}

	entry, err := s.allowlistRepo.GetByPhone(ctx, fromPhone)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Allowlist lookup failed for inbound reply from %s", fromPhone)
		return err
	}
	if entry == nil {
		utils.Logger.Debugf("Dropping inbound reply from %s: not on the allowlist", fromPhone)
		return nil
	}

	challengeCtx, cancel := context.WithTimeout(ctx, s.cfg.ChannelTimeout)
	defer cancel()

	challengeSID, err := s.channel.StartChallenge(challengeCtx, fromPhone)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to start verification challenge for %s", fromPhone)
		return fmt.Errorf("start challenge for %s: %w", fromPhone, err)
	}

	if err := s.pendingRepo.Upsert(ctx, fromPhone, challengeSID); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to record pending session for %s", fromPhone)
		return err
	}

	utils.Logger.Infof("Started verification challenge for %s", fromPhone)
	return nil
}

func (s *enrollmentService) Enroll(ctx context.Context, phone, desiredHandle, code string) error {
	if !handleRegex.MatchString(desiredHandle) {
		return utils.ErrInvalidHandleFormat
	}

	pending, err := s.pendingRepo.GetByPhone(ctx, phone)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Pending session lookup failed for %s", phone)
		return err
	}
	if pending == nil {
		return utils.ErrNoPendingChallenge
	}

	// A handle another identity already owns blocks enrollment unless
	// the allowlist reserved exactly that handle for this phone (the
	// lost-credential recovery path).
	reclaim := false
	existing, err := s.identityRepo.GetByHandle(ctx, desiredHandle)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Identity lookup failed for handle %s", desiredHandle)
		return err
	}
	if existing != nil {
		entry, err := s.allowlistRepo.GetByPhone(ctx, phone)
		if err != nil {
			utils.Logger.WithError(err).Errorf("Allowlist lookup failed for %s", phone)
			return err
		}
		if entry == nil || entry.RequestedHandle == nil || *entry.RequestedHandle != desiredHandle {
			return utils.ErrHandleTaken
		}
		reclaim = true
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.cfg.ChannelTimeout)
	defer cancel()

	verified, err := s.channel.CheckChallenge(checkCtx, pending.ChallengeSID, code)
	if err != nil {
		if errors.Is(err, utils.ErrChannelTimeout) {
			utils.Logger.WithError(err).Errorf("Challenge check timed out for %s", phone)
			return utils.ErrChannelTimeout
		}
		utils.Logger.WithError(err).Errorf("Challenge check errored for %s", phone)
		return utils.ErrVerificationFailed
	}
	if !verified {
		// The pending session stays; the caller may retry with a
		// corrected code against the same challenge.
		return utils.ErrVerificationFailed
	}

	consumed, err := s.identityRepo.Promote(ctx, phone, pending.ChallengeSID, desiredHandle, reclaim)
	if err != nil {
		if errors.Is(err, repositories.ErrHandleExists) {
			return utils.ErrHandleTaken
		}
		utils.Logger.WithError(err).Errorf("Enrollment write failed for %s as %s", phone, desiredHandle)
		return err
	}
	if !consumed {
		// A concurrent enrollment for this phone won the race.
		return utils.ErrNoPendingChallenge
	}

	utils.Logger.Infof("Enrolled %s as %s", phone, desiredHandle)
	return nil
}

func (s *enrollmentService) RemoveIdentity(ctx context.Context, handle string) error {
	if !handleRegex.MatchString(handle) {
		return utils.ErrInvalidHandleFormat
	}
	if err := s.identityRepo.DeleteByHandle(ctx, handle); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to remove identity %s", handle)
		return err
	}
	utils.Logger.Infof("Removed identity %s", handle)
	return nil
}
