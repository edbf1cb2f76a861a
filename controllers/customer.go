package controllers

import (
	"net/http"
	"strings"

	"spa-booking-backend/config"
	"spa-booking-backend/services"
	"spa-booking-backend/utils"

	"github.com/gin-gonic/gin"
)

type CustomerController struct {
	History *services.HistoryService
	Log     *config.Logger
}

// CheckEmail reports whether the email has booked before and returns the
// customer details from their latest booking.
func (cc *CustomerController) CheckEmail(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "email is required")
		return
	}
	res, err := cc.History.CheckUserEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "exists": res.Exists, "customer": res.Customer})
}
