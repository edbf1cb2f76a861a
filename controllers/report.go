// controllers/report.go
package controllers

import (
	"net/http"

	"spa-booking-backend/config"
	"spa-booking-backend/services"

	"github.com/gin-gonic/gin"
)

// ReportController handles the admin business-day reports
type ReportController struct {
	Close *services.DailyClose
	Log   *config.Logger
}

// GetDailyReport summarizes one business day, today's by default
func (rc *ReportController) GetDailyReport(c *gin.Context) {
	date := c.DefaultQuery("date", rc.Close.CurrentBusinessDay())
	summary, err := rc.Close.Summarize(c.Request.Context(), date)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": summary})
}

// RunDailyClose closes the previous business day on demand, the same job the
// scheduler runs at the cutoff hour.
func (rc *ReportController) RunDailyClose(c *gin.Context) {
	report, err := rc.Close.Run(c.Request.Context())
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}
