package routes

const (
	// Health
	Health = "/health"

	// Admin operations
	Invite   = "/invite"
	Uninvite = "/uninvite"
	Remove   = "/remove"

	// Verification channel webhook
	Answer = "/answer"

	// Enrollment finalization / session
	Login  = "/login"
	Logout = "/logout"
)
