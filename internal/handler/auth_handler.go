package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neomnia/content-mania-sub004/internal/auth"
	"github.com/neomnia/content-mania-sub004/internal/service/user"
)

type AuthHandler struct {
	userService  *user.Service
	secureCookie bool
	logger       *zap.Logger
}

func NewAuthHandler(userService *user.Service, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
		CompanyID int    `json:"company_id"`
		IsOwner   bool   `json:"is_owner"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.userService.Register(c.Request.Context(), req.Email, req.Password, req.CompanyID, req.IsOwner)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    u.ID,
		"email": u.Email,
	})
}

// Login handles POST /login. On success the credential is both set as the
// session cookie and returned for API clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, u, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	auth.SetSessionCookie(c.Writer, token, h.secureCookie)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":         u.ID,
			"email":      u.Email,
			"company_id": u.CompanyID,
			"is_owner":   u.IsOwner,
		},
	})
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c.Writer, h.secureCookie)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
