package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neomnia/content-mania-sub004/internal/repository"
	"github.com/neomnia/content-mania-sub004/pkg/rbac"
)

type AdminHandler struct {
	roleRepo *repository.RoleRepository
	logger   *zap.Logger
}

func NewAdminHandler(roleRepo *repository.RoleRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		roleRepo: roleRepo,
		logger:   logger,
	}
}

func userIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}

// ListRoles handles GET /admin/users/:id/roles
func (h *AdminHandler) ListRoles(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	roles, err := h.roleRepo.ListRoles(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list roles",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list roles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"roles":   roles.Names(),
	})
}

// AssignRole handles POST /admin/users/:id/roles
func (h *AdminHandler) AssignRole(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	role := rbac.Parse(req.Role)
	if role == rbac.RoleInvalid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	if err := h.roleRepo.AssignRole(c.Request.Context(), userID, role); err != nil {
		h.logger.Error("Failed to assign role",
			zap.Int("user_id", userID),
			zap.String("role", role.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"role":    role.String(),
		"status":  "assigned",
	})
}

// RevokeRole handles DELETE /admin/users/:id/roles/:role
func (h *AdminHandler) RevokeRole(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	role := rbac.Parse(c.Param("role"))
	if role == rbac.RoleInvalid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	if err := h.roleRepo.RevokeRole(c.Request.Context(), userID, role); err != nil {
		h.logger.Error("Failed to revoke role",
			zap.Int("user_id", userID),
			zap.String("role", role.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"role":    role.String(),
		"status":  "revoked",
	})
}
