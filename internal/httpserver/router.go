package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/neomnia/content-mania-sub004/internal/handler"
	"github.com/neomnia/content-mania-sub004/internal/repository"
	"github.com/neomnia/content-mania-sub004/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	emailHandler *handler.EmailHandler,
	historyHandler *handler.HistoryHandler,
	adminHandler *handler.AdminHandler,
	roleRepo *repository.RoleRepository,
	jwtSecret string,
	db *pgxpool.Pool,
	logger *zap.Logger,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	// Health and observability
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	// Authenticated
	authed := r.Group("/")
	authed.Use(AuthMiddleware(jwtSecret, logger))
	{
		authed.POST("/email/send", emailHandler.SendEmail)
		authed.POST("/email/enqueue", emailHandler.EnqueueEmail)
	}

	// Admin: history audit surface
	admin := r.Group("/")
	admin.Use(AuthMiddleware(jwtSecret, logger), RequireRole(roleRepo, rbac.RoleAdmin, logger))
	{
		admin.GET("/email/history", historyHandler.Search)
		admin.GET("/email/history/stats", historyHandler.Stats)
		admin.GET("/admin/users/:id/roles", adminHandler.ListRoles)
	}

	// Super admin: role management (granting elevation)
	super := r.Group("/")
	super.Use(AuthMiddleware(jwtSecret, logger), RequireRole(roleRepo, rbac.RoleSuperAdmin, logger))
	{
		super.POST("/admin/users/:id/roles", adminHandler.AssignRole)
		super.DELETE("/admin/users/:id/roles/:role", adminHandler.RevokeRole)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
