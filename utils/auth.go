package utils

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"spa-booking-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionKey = "session"
	adminRole  = "admin"
)

var ErrInvalidToken = errors.New("invalid token")

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SessionClaims is the browsing session carried by the storefront client
type SessionClaims struct {
	SessionID string                   `json:"sid"`
	Lang      string                   `json:"lang"`
	MenuType  string                   `json:"menu"`
	Customer  *models.CustomerSnapshot `json:"customer,omitempty"`
	jwt.RegisteredClaims
}

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret     []byte
	sessionTTL time.Duration
	adminTTL   time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, sessionTTL, adminTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		adminTTL:   adminTTL,
		now:        time.Now,
	}
}

// IssueSession signs claims, minting a session id when none is set
func (t *TokenIssuer) IssueSession(claims SessionClaims) (string, *SessionClaims, error) {
	if claims.SessionID == "" {
		claims.SessionID = uuid.NewString()
	}
	now := t.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.SessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.sessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, err
	}
	return token, &claims, nil
}

func (t *TokenIssuer) ParseSession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := t.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (t *TokenIssuer) IssueAdmin() (string, error) {
	now := t.now()
	claims := adminClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminRole,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.adminTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	tokenString := c.GetHeader("Authorization")
	if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
		tokenString = tokenString[7:]
	}
	return strings.TrimSpace(tokenString)
}

// SessionMiddleware requires a valid session token
func (t *TokenIssuer) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}
		claims, err := t.ParseSession(tokenString)
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid session token")
			return
		}
		c.Set(sessionKey, claims)
		c.Next()
	}
}

// OptionalSession attaches a session when a valid token is present
func (t *TokenIssuer) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := t.ParseSession(tokenString); err == nil {
				c.Set(sessionKey, claims)
			}
		}
		c.Next()
	}
}

func (t *TokenIssuer) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}
		claims := &adminClaims{}
		if err := t.parse(tokenString, claims); err != nil || claims.Role != adminRole {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		c.Next()
	}
}

func SessionFromContext(c *gin.Context) (*SessionClaims, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*SessionClaims)
	return claims, ok
}
