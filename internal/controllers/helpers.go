package controllers

import (
	"errors"
	"net/http"

	"github.com/trustedgroup/enrollment-service/internal/utils"
)

// respondEnrollmentError maps a service-layer failure onto the error
// taxonomy: status, code, and a message fit for display.
func respondEnrollmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrInvalidPhoneFormat):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPhone,
			"Please use the format 441234567890 for phone numbers", nil, err,
		)
	case errors.Is(err, utils.ErrInvalidHandleFormat):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidHandle,
			"Please use basic characters for your username", nil, err,
		)
	case errors.Is(err, utils.ErrHandleTaken):
		utils.RespondErrorWithCode(
			w, http.StatusConflict, utils.ErrCodeHandleTaken,
			"Please choose a different username", nil, err,
		)
	case errors.Is(err, utils.ErrNoPendingChallenge):
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNoPendingChallenge,
			"No verification in progress for this number", nil, err,
		)
	case errors.Is(err, utils.ErrVerificationFailed):
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeVerificationFailed,
			"Error verifying your info", nil, err,
		)
	case errors.Is(err, utils.ErrChannelTimeout):
		utils.RespondErrorWithCode(
			w, http.StatusGatewayTimeout, utils.ErrCodeChannelTimeout,
			"Verification service did not respond in time", nil, err,
		)
	default:
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"An unexpected error occurred", nil, err,
		)
	}
}
