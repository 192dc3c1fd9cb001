package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"sop-platform/agg-svc/internal/service"
	"sop-platform/agg-svc/internal/storage"
	"sop-platform/config"
	"sop-platform/logger"
)

const serviceName = "agg-svc"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if err := logger.InitLogger(cfg.LogLevel, cfg.Env, serviceName); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting aggregation service", cfg.LogFields()...)

	if cfg.Kafka.Broker == "" || cfg.Redis.Addr() == "" {
		log.Fatal("KAFKA_BROKER and REDIS_HOST are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.MustInitRedis(cfg.Redis)
	defer rdb.Close()

	reader := config.NewKafkaReader(cfg.Kafka)
	defer reader.Close()

	consumer := service.NewConsumer(reader, storage.NewStore(rdb), cfg.Location)
	if err := consumer.Start(logger.WithContext(ctx, log)); err != nil {
		log.Error("Consumer stopped", zap.Error(err))
	}
	log.Info("Shutting down")
}
