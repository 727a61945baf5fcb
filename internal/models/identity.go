package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity for the identities table: an enrolled, uniquely-handled
// member. The handle unique constraint is the anti-squatting guarantee.
type Identity struct {
	ID         uuid.UUID
	Handle     string
	Phone      string
	EnrolledAt time.Time
}
