package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	verifyv2 "github.com/twilio/twilio-go/rest/verify/v2"

	"github.com/trustedgroup/enrollment-service/internal/config"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

// twilioChannel implements VerificationChannel on Twilio: the Messages
// API for outbound texts and Verify V2 for challenge start/check.
type twilioChannel struct {
	client           *twilio.RestClient
	verifyServiceSID string
	fromPhone        string
}

func NewTwilioChannel(cfg *config.Config) VerificationChannel {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &twilioChannel{
		client:           client,
		verifyServiceSID: cfg.TwilioVerifyServiceSID,
		fromPhone:        cfg.TwilioFromPhone,
	}
}

func (c *twilioChannel) SendMessage(ctx context.Context, body, to string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("+" + to)
	params.SetFrom(c.fromPhone)
	params.SetBody(body)

	return runBounded(ctx, func() error {
		_, err := c.client.Api.CreateMessage(params)
		return err
	})
}

func (c *twilioChannel) StartChallenge(ctx context.Context, number string) (string, error) {
	params := &verifyv2.CreateVerificationParams{}
	params.SetTo("+" + number)
	params.SetChannel("sms")

	var sid string
	err := runBounded(ctx, func() error {
		resp, err := c.client.VerifyV2.CreateVerification(c.verifyServiceSID, params)
		if err != nil {
			return err
		}
		if resp.Sid == nil {
			return errors.New("twilio verification response missing sid")
		}
		sid = *resp.Sid
		return nil
	})
	if err != nil {
		return "", err
	}
	return sid, nil
}

func (c *twilioChannel) CheckChallenge(ctx context.Context, challengeSID, code string) (bool, error) {
	params := &verifyv2.CreateVerificationCheckParams{}
	params.SetVerificationSid(challengeSID)
	params.SetCode(code)

	var approved bool
	err := runBounded(ctx, func() error {
		resp, err := c.client.VerifyV2.CreateVerificationCheck(c.verifyServiceSID, params)
		if err != nil {
			return err
		}
		approved = resp.Status != nil && *resp.Status == "approved"
		return nil
	})
	if err != nil {
		return false, err
	}
	return approved, nil
}

// runBounded executes a blocking Twilio SDK call while honoring the
// caller's context deadline. The SDK call itself cannot be cancelled;
// an abandoned call finishes in the background and its result is
// dropped.
func runBounded(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", utils.ErrChannelTimeout, ctx.Err())
		}
		return ctx.Err()
	}
}
