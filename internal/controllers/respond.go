package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SFillip/el-backend/internal/metrics"
	"github.com/SFillip/el-backend/internal/middleware"
)

// External messages for the NotFound-with-message taxonomy. The exact
// wording is part of the contract ("missing Headers" is asserted by
// callers), so keep it verbatim.
const (
	msgMissingHeaders = "missing Headers"
	msgNoData         = "no data found"
	msgNoStations     = "no stations found"
)

// Generic text used for the conflict-style catch-all. Raw collaborator
// error text is logged with the request id, never forwarded to callers.
const msgBackendError = "statistics backend error"

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, msg)
}

// conflict handles the catch-all branch: any failure that is not one of
// the typed outcomes. It must always produce a response, never a panic.
func conflict(c *gin.Context, operation string, err error) {
	middleware.LoggerFrom(c).Error("statistics request failed",
		"operation", operation, "err", err)
	c.JSON(http.StatusConflict, gin.H{"error": msgBackendError})
}

// observe records the per-operation outcome counter and latency.
func observe(operation, outcome string, start time.Time) {
	metrics.StatisticsRequestsTotal.WithLabelValues(operation, outcome).Inc()
	metrics.RequestDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
