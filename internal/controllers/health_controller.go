package controllers

import (
	"context"
	"net/http"

	"github.com/trustedgroup/enrollment-service/internal/app"
	"github.com/trustedgroup/enrollment-service/internal/dtos"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{
		app: app,
	}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	// Check database connectivity
	if err := c.app.DB.Ping(context.Background()); err != nil {
		utils.Logger.WithError(err).Error("Database unreachable")
		utils.RespondErrorWithCode(
			w,
			http.StatusServiceUnavailable,
			utils.ErrCodeInternal,
			"Database unreachable",
			nil,
			err,
		)
		return
	}

	resp := dtos.HealthCheckResponse{
		Status: "OK",
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
