package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/trustedgroup/enrollment-service/internal/dtos"
	"github.com/trustedgroup/enrollment-service/internal/services"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

// AdminController handles the manual-remediation endpoints: pulling a
// pending invite and removing an enrolled member.
type AdminController struct {
	invitations services.InvitationService
	enrollments services.EnrollmentService
}

func NewAdminController(
	invitations services.InvitationService,
	enrollments services.EnrollmentService,
) *AdminController {
	return &AdminController{
		invitations: invitations,
		enrollments: enrollments,
	}
}

// ---------------------------------------------------------------------
// POST /uninvite (admin)
// ---------------------------------------------------------------------
func (c *AdminController) Uninvite(w http.ResponseWriter, r *http.Request) {
	var req dtos.UninviteRequest
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

	if err := c.invitations.Uninvite(r.Context(), req.Phone); err != nil {
		respondEnrollmentError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.UninviteResponse{Message: "Invitation revoked"})
}

// ---------------------------------------------------------------------
// POST /remove (admin)
// ---------------------------------------------------------------------
func (c *AdminController) Remove(w http.ResponseWriter, r *http.Request) {
	var req dtos.RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Username is required", nil, err,
		)
		return
	}

	if err := c.enrollments.RemoveIdentity(r.Context(), req.Username); err != nil {
		respondEnrollmentError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.RemoveResponse{Message: "Member removed"})
}
