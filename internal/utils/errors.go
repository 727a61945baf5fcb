package utils

import (
	"errors"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrInvalidPhoneFormat  = errors.New("invalid_phone_format")
	ErrInvalidHandleFormat = errors.New("invalid_handle_format")
	ErrHandleTaken         = errors.New("handle_taken")
	ErrNoPendingChallenge  = errors.New("no_pending_challenge")
	ErrVerificationFailed  = errors.New("verification_failed")
	ErrChannelTimeout      = errors.New("channel_timeout")

	// Non-fatal: the invite row was written but the instruction
	// message never left the building. Logged, not surfaced.
	ErrChannelDeliveryFailed = errors.New("channel_delivery_failed")

	ErrInvalidSession = errors.New("invalid_session")
)
