package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingSession for the pending_sessions table: one in-flight
// verification challenge per phone. ChallengeSID is the opaque handle
// the verification channel issued for this attempt.
type PendingSession struct {
	ID           uuid.UUID
	Phone        string
	ChallengeSID string
	CreatedAt    time.Time
}
