package controllers

import (
	"context"
	"net/http"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/app"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{app: app}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := c.app.DB.Ping(context.Background()); err != nil {
		utils.Logger.WithError(err).Error("Database unreachable")
		utils.RespondErrorWithCode(
			w,
			http.StatusServiceUnavailable,
			utils.ErrCodeInternal,
			"Database unreachable",
			err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
