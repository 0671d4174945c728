package handlers

import (
	"net/http"
	"strconv"

	"apptdesk/utils"

	"github.com/gin-gonic/gin"
)

// DiagnosticsHandler returns the journal's error analysis for ?days= (default 7).
func DiagnosticsHandler(journal Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if journal == nil {
			utils.JSONError(c, http.StatusServiceUnavailable, "diagnostics journal is not configured", "")
			return
		}
		days := 7
		if raw := c.Query("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				utils.JSONError(c, http.StatusBadRequest, "invalid days", "days must be a positive integer")
				return
			}
			days = n
		}
		analysis, err := journal.Analyze(days)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "failed to analyze journal", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": days, "analysis": analysis})
	}
}

// HealthHandler reports dependency reachability and the journal's error rate.
func HealthHandler(journal Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"message": "Hi, I'm the appointment desk",
			"checks":  utils.GetHealthStatus(),
		}
		if journal != nil {
			h := journal.Health()
			body["journal"] = h
			if h.Status == "degraded" {
				body["status"] = "degraded"
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
