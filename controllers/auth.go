package controllers

import (
	"net/http"
	"strings"

	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/services"
	"spa-booking-backend/utils"

	"github.com/gin-gonic/gin"
)

// AuthController issues storefront sessions and admin tokens
type AuthController struct {
	Tokens            *utils.TokenIssuer
	Carts             *services.CartService
	History           *services.HistoryService
	AdminPasswordHash string
	Log               *config.Logger
}

type SessionInput struct {
	Lang     string `json:"lang"`
	MenuType string `json:"menuType"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type AdminLoginInput struct {
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token     string                   `json:"token"`
	SessionID string                   `json:"sessionId"`
	Lang      string                   `json:"lang"`
	MenuType  string                   `json:"menuType"`
	Customer  *models.CustomerSnapshot `json:"customer,omitempty"`
	ExpiresAt int64                    `json:"expiresAt"`
}

// CreateSession starts a browsing session. A known email pre-fills the
// customer from their most recent booking.
func (ac *AuthController) CreateSession(c *gin.Context) {
	var input SessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	claims := utils.SessionClaims{
		Lang:     utils.ResolveLang(input.Lang, c.GetHeader("Accept-Language")),
		MenuType: strings.ToUpper(strings.TrimSpace(input.MenuType)),
	}
	if claims.MenuType == "" {
		claims.MenuType = models.MenuStandard
	}
	// keep the current session id so the cart survives a language switch
	if prev, ok := utils.SessionFromContext(c); ok {
		claims.SessionID = prev.SessionID
	}

	if input.Email != "" {
		lookup, err := ac.History.CheckUserEmail(c.Request.Context(), input.Email)
		if err != nil {
			respondError(c, ac.Log, err)
			return
		}
		if lookup.Exists {
			claims.Customer = lookup.Customer
		} else {
			claims.Customer = &models.CustomerSnapshot{Email: strings.ToLower(strings.TrimSpace(input.Email))}
		}
	}

	token, issued, err := ac.Tokens.IssueSession(claims)
	if err != nil {
		ac.Log.Error("failed to sign session", "error", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"session": sessionResponse{
			Token:     token,
			SessionID: issued.SessionID,
			Lang:      issued.Lang,
			MenuType:  issued.MenuType,
			Customer:  issued.Customer,
			ExpiresAt: issued.ExpiresAt.Unix(),
		},
	})
}

func (ac *AuthController) GetSession(c *gin.Context) {
	claims, ok := utils.SessionFromContext(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Session required")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": sessionResponse{
			SessionID: claims.SessionID,
			Lang:      claims.Lang,
			MenuType:  claims.MenuType,
			Customer:  claims.Customer,
			ExpiresAt: claims.ExpiresAt.Unix(),
		},
	})
}

// EndSession empties the session cart to start a new booking
func (ac *AuthController) EndSession(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	if err := ac.Carts.Clear(c.Request.Context(), sid); err != nil {
		respondError(c, ac.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ac *AuthController) AdminLogin(c *gin.Context) {
	var input AdminLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	if ac.AdminPasswordHash == "" {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Admin login is disabled")
		return
	}
	if !utils.CheckPasswordHash(input.Password, ac.AdminPasswordHash) {
		ac.Log.Warn("admin login failed", "client_ip", c.ClientIP())
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := ac.Tokens.IssueAdmin()
	if err != nil {
		ac.Log.Error("failed to sign admin token", "error", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}
