package services

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"

	"github.com/trustedgroup/enrollment-service/internal/config"
	"github.com/trustedgroup/enrollment-service/internal/repositories"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

// InvitationService records phone numbers into the allowlist and
// delivers the instruction message carrying the invite phrase.
type InvitationService interface {
	Invite(ctx context.Context, phone string, requestedHandle *string) error
	Uninvite(ctx context.Context, phone string) error
}

type invitationService struct {
	allowlistRepo repositories.AllowlistRepository
	pendingRepo   repositories.PendingSessionRepository
	channel       VerificationChannel

	cfg          *config.Config
	twilioClient *twilio.RestClient
}

func NewInvitationService(
	allowlistRepo repositories.AllowlistRepository,
	pendingRepo repositories.PendingSessionRepository,
	channel VerificationChannel,
	cfg *config.Config,
) InvitationService {
	var twClient *twilio.RestClient
	if cfg.ValidatePhoneWithTwilio {
		twClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}

	return &invitationService{
		allowlistRepo: allowlistRepo,
		pendingRepo:   pendingRepo,
		channel:       channel,
		cfg:           cfg,
		twilioClient:  twClient,
	}
}

// Invite writes the allowlist row, then fires the instruction message
// without waiting on it. The admin's call succeeds once the row is
// durable; a failed delivery only ever shows up in the logs.
func (s *invitationService) Invite(ctx context.Context, phone string, requestedHandle *string) error {
	ok, err := utils.ValidatePhoneNumber(ctx, phone, s.cfg.ValidatePhoneWithTwilio, s.twilioClient)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Phone lookup failed during invite for %s", phone)
		return err
	}
	if !ok {
		return utils.ErrInvalidPhoneFormat
	}

	if err := s.allowlistRepo.Upsert(ctx, phone, requestedHandle); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to write allowlist entry for %s", phone)
		return err
	}

	body := fmt.Sprintf(
		"Please reply to this message with %q to get your PIN.",
		s.cfg.InvitePhrase,
	)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ChannelTimeout)
		defer cancel()
		if err := s.channel.SendMessage(sendCtx, body, phone); err != nil {
			utils.Logger.WithError(err).Errorf(
				"Failed to deliver invite message to %s: %v", phone, utils.ErrChannelDeliveryFailed,
			)
		}
	}()

	utils.Logger.Infof("Invited phone %s", phone)
	return nil
}

// Uninvite removes a pending number before it enrolls, clearing any
// in-flight challenge along with the allowlist row.
func (s *invitationService) Uninvite(ctx context.Context, phone string) error {
	if !utils.IsInternationalNumeric(phone) {
		return utils.ErrInvalidPhoneFormat
	}

	if err := s.pendingRepo.DeleteByPhone(ctx, phone); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to delete pending session for %s during uninvite", phone)
		return err
	}
	if err := s.allowlistRepo.DeleteByPhone(ctx, phone); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to delete allowlist entry for %s during uninvite", phone)
		return err
	}

	utils.Logger.Infof("Uninvited phone %s", phone)
	return nil
}
