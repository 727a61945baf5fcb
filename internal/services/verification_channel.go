package services

import "context"

// VerificationChannel is the out-of-band delivery and one-time-code
// collaborator. The enrollment state machine only ever talks to the
// outside world through these three operations.
type VerificationChannel interface {
	// SendMessage delivers a text to a bare-digits international number.
	SendMessage(ctx context.Context, body, to string) error

	// StartChallenge begins a one-time-code verification for the number
	// and returns the opaque challenge handle identifying the attempt.
	StartChallenge(ctx context.Context, number string) (string, error)

	// CheckChallenge verifies a code against an outstanding challenge.
	CheckChallenge(ctx context.Context, challengeSID, code string) (bool, error)
}
