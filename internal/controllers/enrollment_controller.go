package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/trustedgroup/enrollment-service/internal/config"
	"github.com/trustedgroup/enrollment-service/internal/dtos"
	"github.com/trustedgroup/enrollment-service/internal/services"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

type EnrollmentController struct {
	invitations services.InvitationService
	enrollments services.EnrollmentService
	sessions    services.SessionService
	cfg         *config.Config
}

func NewEnrollmentController(
	invitations services.InvitationService,
	enrollments services.EnrollmentService,
	sessions services.SessionService,
	cfg *config.Config,
) *EnrollmentController {
	return &EnrollmentController{
		invitations: invitations,
		enrollments: enrollments,
		sessions:    sessions,
		cfg:         cfg,
	}
}

var validate = validator.New()

// ---------------------------------------------------------------------
// POST /invite (admin)
// ---------------------------------------------------------------------
func (c *EnrollmentController) Invite(w http.ResponseWriter, r *http.Request) {
	var req dtos.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Phone number is required", nil, err,
		)
		return
	}

	if err := c.invitations.Invite(r.Context(), req.Phone, req.Username); err != nil {
		respondEnrollmentError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.InviteResponse{Message: "Invitation sent!"})
}

// ---------------------------------------------------------------------
// POST /answer (verification-channel webhook)
//
// Inbound traffic is whatever the channel delivers; anything that isn't
// a correct invite-phrase reply from an invited number is dropped
// silently. The webhook always gets a 204 so the channel never retries.
// ---------------------------------------------------------------------
func (c *EnrollmentController) Answer(w http.ResponseWriter, r *http.Request) {
	var req dtos.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Logger.WithError(err).Debug("Ignoring malformed inbound-message webhook payload")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := c.enrollments.HandleInboundReply(r.Context(), req.From, req.Text); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to process inbound reply from %s", req.From)
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------
// POST /login
// ---------------------------------------------------------------------
func (c *EnrollmentController) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Phone, username and pin are required", nil, err,
		)
		return
	}

	if err := c.enrollments.Enroll(r.Context(), req.Phone, req.Username, req.Pin); err != nil {
		respondEnrollmentError(w, err)
		return
	}

	token, err := c.sessions.Issue(req.Username)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to issue session", nil, err,
		)
		return
	}

	utils.SetSessionCookie(w, token, c.cfg.SessionTTL)
	utils.RespondWithJSON(w, http.StatusOK, dtos.LoginResponse{Message: "Success"})
}

// ---------------------------------------------------------------------
// POST /logout
// ---------------------------------------------------------------------
func (c *EnrollmentController) Logout(w http.ResponseWriter, r *http.Request) {
	utils.ClearSessionCookie(w)
	utils.RespondWithJSON(w, http.StatusOK, dtos.LogoutResponse{Message: "Logged out"})
}
