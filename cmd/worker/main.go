package main

import (
	"os"
	"time"

	"go.uber.org/zap"

	mqcontracts "github.com/neomnia/content-mania-sub004/contracts/mq"
	"github.com/neomnia/content-mania-sub004/internal/config"
	"github.com/neomnia/content-mania-sub004/internal/mqhandler"
	"github.com/neomnia/content-mania-sub004/internal/repository"
	emailsvc "github.com/neomnia/content-mania-sub004/internal/service/email"
	"github.com/neomnia/content-mania-sub004/internal/util"
	"github.com/neomnia/content-mania-sub004/pkg/db"
	"github.com/neomnia/content-mania-sub004/pkg/logger"
	"github.com/neomnia/content-mania-sub004/pkg/mq"
	redisclient "github.com/neomnia/content-mania-sub004/pkg/redis"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Config load failed", zap.Error(err))
	}

	log.Info("Starting email worker...")

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour, log)

	historyRepo := repository.NewEmailHistoryRepository(dbConn)

	lazyRegistry := emailsvc.NewLazyRegistry(func() (*emailsvc.Registry, error) {
		return emailsvc.BuildRegistry(cfg.Email)
	})
	deliveryRouter := emailsvc.NewRouter(lazyRegistry, log)
	dispatcher := emailsvc.NewDispatcher(deliveryRouter, historyRepo, log)

	dlqPublisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init DLQ publisher", zap.Error(err))
	}
	defer dlqPublisher.Close()
	if err := dlqPublisher.EnsureDLQ(mqcontracts.RoutingKeyEmailRequested); err != nil {
		log.Fatal("Failed to declare DLQ", zap.Error(err))
	}

	requestedHandler := mqhandler.NewEmailRequestedHandler(dispatcher, deduper, dlqPublisher, log)

	consumer, err := mq.NewConsumer(
		cfg.MQ.URL,
		"email.requested.worker.q",
		mqcontracts.RoutingKeyEmailRequested,
		log,
	)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(requestedHandler.HandleEmailRequested)

	log.Info("Worker ready, consuming email.requested")
	if err := consumer.StartConsuming(); err != nil {
		log.Fatal("Consumer failed", zap.Error(err))
	}
}
