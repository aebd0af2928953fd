package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SFillip/el-backend/internal/headers"
	"github.com/SFillip/el-backend/internal/middleware"
	"github.com/SFillip/el-backend/internal/services"
)

type imagesPerHourController struct{ svc services.StatisticsService }

func NewImagesPerHourController(svc services.StatisticsService) *imagesPerHourController {
	return &imagesPerHourController{svc: svc}
}

// Handle serves the per-hour image counts. This variant derives the window
// from referencedatetime plus a numeric timezoneoffset (minutes).
func (h *imagesPerHourController) Handle(c *gin.Context) {
	start := time.Now()
	authCtx := middleware.AuthContextFrom(c)

	window, err := headers.OffsetWindow(headers.FromHTTP(c.Request.Header))
	if err != nil {
		observe("images_per_hour", "bad_headers", start)
		notFound(c, msgMissingHeaders)
		return
	}

	buckets, err := h.svc.ImagesPerHour(c.Request.Context(), authCtx.Subject, window)
	if err != nil {
		observe("images_per_hour", "error", start)
		conflict(c, "images_per_hour", err)
		return
	}
	if len(buckets) == 0 {
		observe("images_per_hour", "no_data", start)
		notFound(c, msgNoData)
		return
	}
	observe("images_per_hour", "ok", start)
	c.JSON(http.StatusOK, buckets)
}
