package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/counterworks/counterlog/internal/auth"
)

// AdminCookieName is the session cookie the dashboard uses.
const AdminCookieName = "admin_session"

// AuthHandler exposes admin login, logout and session verification.
type AuthHandler struct {
	sessions     *auth.Manager
	throttle     *auth.LoginThrottle
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandler creates an AuthHandler. secureCookie should be true whenever
// the service is reached over HTTPS.
func NewAuthHandler(sessions *auth.Manager, throttle *auth.LoginThrottle, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, throttle: throttle, secureCookie: secureCookie, logger: logger}
}

// Register mounts the auth routes on the given router group.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	{
		a.POST("/login", h.Login)
		a.POST("/logout", h.Logout)
		a.GET("/verify", h.Verify)
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	if ok, remaining := h.throttle.Allow(ip); !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success":       false,
			"message":       "too many failed attempts, try again later",
			"retry_after_s": int(remaining.Seconds()) + 1,
		})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "password is required"})
		return
	}

	token, err := h.sessions.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			h.throttle.RecordFailure(ip)
			recordLogin(false)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
			return
		}
		h.logger.Error("admin login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "temporary system error, please retry"})
		return
	}

	h.throttle.Clear(ip)
	recordLogin(true)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AdminCookieName, token, int(h.sessions.TTL().Seconds()), "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged in"})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := h.sessionToken(c); token != "" {
		h.sessions.Logout(token)
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AdminCookieName, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

// Verify handles GET /auth/verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	token := h.sessionToken(c)
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"authenticated": token != "" && h.sessions.Validate(token),
	})
}

// RequireAdmin returns a middleware guarding admin-only routes.
func (h *AuthHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := h.sessionToken(c)
		if token == "" || !h.sessions.Validate(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authorized"})
			return
		}
		c.Next()
	}
}

// sessionToken pulls the session token from the cookie, or from a bearer
// header for CLI callers.
func (h *AuthHandler) sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AdminCookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
