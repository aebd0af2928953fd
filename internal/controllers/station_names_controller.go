package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SFillip/el-backend/internal/middleware"
	"github.com/SFillip/el-backend/internal/services"
)

type stationNamesController struct{ svc services.StatisticsService }

func NewStationNamesController(svc services.StatisticsService) *stationNamesController {
	return &stationNamesController{svc: svc}
}

func (h *stationNamesController) Handle(c *gin.Context) {
	start := time.Now()
	authCtx := middleware.AuthContextFrom(c)

	names, err := h.svc.StationNames(c.Request.Context(), authCtx.Subject)
	if err != nil {
		observe("station_names", "error", start)
		conflict(c, "station_names", err)
		return
	}
	if len(names) == 0 {
		observe("station_names", "no_data", start)
		notFound(c, msgNoStations)
		return
	}
	observe("station_names", "ok", start)
	c.JSON(http.StatusOK, names)
}
