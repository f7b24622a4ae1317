package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/neomnia/content-mania-sub004/internal/config"
	"github.com/neomnia/content-mania-sub004/internal/handler"
	"github.com/neomnia/content-mania-sub004/internal/httpserver"
	"github.com/neomnia/content-mania-sub004/internal/repository"
	emailsvc "github.com/neomnia/content-mania-sub004/internal/service/email"
	usersvc "github.com/neomnia/content-mania-sub004/internal/service/user"
	"github.com/neomnia/content-mania-sub004/pkg/db"
	"github.com/neomnia/content-mania-sub004/pkg/logger"
	"github.com/neomnia/content-mania-sub004/pkg/mq"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Config load failed", zap.Error(err))
	}

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	userRepo := repository.NewUserRepository(dbConn)
	roleRepo := repository.NewRoleRepository(dbConn)
	historyRepo := repository.NewEmailHistoryRepository(dbConn)

	// Delivery core: registry built lazily on first send, injected into
	// the router rather than held as a global.
	lazyRegistry := emailsvc.NewLazyRegistry(func() (*emailsvc.Registry, error) {
		return emailsvc.BuildRegistry(cfg.Email)
	})
	deliveryRouter := emailsvc.NewRouter(lazyRegistry, log)
	dispatcher := emailsvc.NewDispatcher(deliveryRouter, historyRepo, log)

	// Services
	userService := usersvc.NewService(userRepo, roleRepo, cfg.JWT.Secret)

	// Handlers
	secureCookie := cfg.Server.Env == "production"
	authHandler := handler.NewAuthHandler(userService, secureCookie, log)
	emailHandler := handler.NewEmailHandler(dispatcher, historyRepo, publisher, log)
	historyHandler := handler.NewHistoryHandler(historyRepo)
	adminHandler := handler.NewAdminHandler(roleRepo, log)

	router := httpserver.NewRouter(
		authHandler,
		emailHandler,
		historyHandler,
		adminHandler,
		roleRepo,
		cfg.JWT.Secret,
		dbConn,
		log,
	)

	log.Info("Starting API server", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("Server start failed", zap.Error(err))
	}
}
