package models

import (
	"time"

	"github.com/google/uuid"
)

// AllowlistEntry for the allowlist table: a phone number an admin has
// invited but which has not yet enrolled. RequestedHandle, when set,
// reserves that handle for this phone.
type AllowlistEntry struct {
	ID              uuid.UUID
	Phone           string
	RequestedHandle *string
	InvitedAt       time.Time
}
