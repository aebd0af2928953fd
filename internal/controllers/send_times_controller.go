package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SFillip/el-backend/internal/headers"
	"github.com/SFillip/el-backend/internal/middleware"
	"github.com/SFillip/el-backend/internal/services"
)

type sendTimesController struct{ svc services.StatisticsService }

func NewSendTimesController(svc services.StatisticsService) *sendTimesController {
	return &sendTimesController{svc: svc}
}

// Handle serves the send-times chart. The time window comes from the
// referencedatetime/clientdatetime headers; a missing or malformed header
// fails closed before the statistics backend is consulted.
func (h *sendTimesController) Handle(c *gin.Context) {
	start := time.Now()
	authCtx := middleware.AuthContextFrom(c)

	window, err := headers.ClientWindow(headers.FromHTTP(c.Request.Header))
	if err != nil {
		observe("send_times", "bad_headers", start)
		notFound(c, msgMissingHeaders)
		return
	}

	rows, err := h.svc.SendTimes(c.Request.Context(), authCtx.Subject, window)
	if err != nil {
		observe("send_times", "error", start)
		conflict(c, "send_times", err)
		return
	}
	if len(rows) == 0 {
		observe("send_times", "no_data", start)
		notFound(c, msgNoData)
		return
	}
	observe("send_times", "ok", start)
	c.JSON(http.StatusOK, rows)
}
