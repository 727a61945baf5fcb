package dtos

type UninviteRequest struct {
	Phone string `json:"phone" validate:"required"`
}
type UninviteResponse struct {
	Message string `json:"message"`
}

type RemoveRequest struct {
	Username string `json:"username" validate:"required"`
}
type RemoveResponse struct {
	Message string `json:"message"`
}
