package controllers

import (
	"errors"
	"net/http"

	"spa-booking-backend/cart"
	"spa-booking-backend/config"
	"spa-booking-backend/repository"
	"spa-booking-backend/services"
	"spa-booking-backend/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to status codes. Anything unrecognized is
// logged in full and answered with a generic message.
func respondError(c *gin.Context, log *config.Logger, err error) {
	var lnf *services.LineNotFoundError
	var verr *services.ValidationError
	switch {
	case errors.As(err, &lnf):
		utils.RespondWithErrorData(c, http.StatusUnprocessableEntity,
			"Some services are no longer available", gin.H{"missing": lnf.Missing})
	case errors.As(err, &verr):
		utils.RespondWithErrorData(c, http.StatusBadRequest, verr.Error(), gin.H{"field": verr.Field})
	case errors.Is(err, services.ErrInsufficientPayment),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrUnknownArea),
		errors.Is(err, cart.ErrAreaNotOffered),
		errors.Is(err, cart.ErrStrengthNotOffered),
		errors.Is(err, cart.ErrInvalidKind):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, repository.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, cart.ErrLineNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrRequestInFlight):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	default:
		log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func sessionID(c *gin.Context) (string, bool) {
	claims, ok := utils.SessionFromContext(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Session required")
		return "", false
	}
	return claims.SessionID, true
}

// requestLang resolves the response language from the query, the session
// and the Accept-Language header in that order.
func requestLang(c *gin.Context) string {
	explicit := c.Query("lang")
	if explicit == "" {
		if claims, ok := utils.SessionFromContext(c); ok {
			explicit = claims.Lang
		}
	}
	return utils.ResolveLang(explicit, c.GetHeader("Accept-Language"))
}
