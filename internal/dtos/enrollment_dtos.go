package dtos

// ----------------------
// Invitation
// ----------------------

type InviteRequest struct {
	Phone string `json:"phone" validate:"required"`
	// Username optionally reserves a handle for this phone, so a member
	// who lost their cookie can re-claim an existing name.
	Username *string `json:"username,omitempty"`
}
type InviteResponse struct {
	Message string `json:"message"`
}

// ----------------------
// Inbound reply webhook
// ----------------------

type AnswerRequest struct {
	From string `json:"from" validate:"required"`
	Text string `json:"text"`
}

// ----------------------
// Enrollment (login)
// ----------------------

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Username string `json:"username" validate:"required"`
	Pin      string `json:"pin" validate:"required,numeric"`
}
type LoginResponse struct {
	Message string `json:"message"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
