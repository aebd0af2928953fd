package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SFillip/el-backend/internal/headers"
	"github.com/SFillip/el-backend/internal/middleware"
	"github.com/SFillip/el-backend/internal/services"
)

type brightnessController struct{ svc services.StatisticsService }

func NewBrightnessController(svc services.StatisticsService) *brightnessController {
	return &brightnessController{svc: svc}
}

// Handle serves the per-hour mean brightness chart; window derivation is
// identical to the images-per-hour variant.
func (h *brightnessController) Handle(c *gin.Context) {
	start := time.Now()
	authCtx := middleware.AuthContextFrom(c)

	window, err := headers.OffsetWindow(headers.FromHTTP(c.Request.Header))
	if err != nil {
		observe("brightness", "bad_headers", start)
		notFound(c, msgMissingHeaders)
		return
	}

	buckets, err := h.svc.BrightnessPerHour(c.Request.Context(), authCtx.Subject, window)
	if err != nil {
		observe("brightness", "error", start)
		conflict(c, "brightness", err)
		return
	}
	if len(buckets) == 0 {
		observe("brightness", "no_data", start)
		notFound(c, msgNoData)
		return
	}
	observe("brightness", "ok", start)
	c.JSON(http.StatusOK, buckets)
}
