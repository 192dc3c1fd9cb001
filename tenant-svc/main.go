package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"sop-platform/config"
	"sop-platform/logger"
	"sop-platform/metrics"
	httpapi "sop-platform/tenant-svc/internal/api/http"
	"sop-platform/tenant-svc/internal/assistant"
	"sop-platform/tenant-svc/internal/domain"
	"sop-platform/tenant-svc/internal/service"
	"sop-platform/tenant-svc/internal/storage"
)

const serviceName = "tenant-svc"

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
	log.Info("Starting tenant service", cfg.LogFields()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, memory := openStore(ctx, cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := service.Options{
		Metrics:  metrics.NewBusiness(reg),
		Location: cfg.Location,
	}
	var stats service.StatsReader
	if cfg.Redis.Addr() != "" {
		rdb := config.MustInitRedis(cfg.Redis)
		defer rdb.Close()
		stats = storage.NewRedisStats(rdb, cfg.Location)
	}
	if cfg.Kafka.Broker != "" {
		writer := config.NewKafkaWriter(cfg.Kafka)
		defer writer.Close()
		opts.Events = storage.NewKafkaPublisher(writer)
	}
	var assistantClient service.Assistant
	if cfg.AssistantURL != "" {
		assistantClient = assistant.NewClient(cfg.AssistantURL)
	}

	gate := service.NewGate(domain.DefaultPlans())
	handler := httpapi.NewHandler(
		service.NewRestaurantService(store, gate, stats, service.DefaultQRGenerator{BaseURL: cfg.PublicBaseURL}, opts),
		service.NewMenuService(store, gate),
		service.NewOrderService(store, gate, opts),
		service.NewReservationService(store, gate, opts),
		service.NewRatingService(store, gate, opts),
		service.NewAssistantService(assistantClient),
		cfg.AdminKey,
	)
	if cfg.AdminKey == "" {
		log.Warn("ADMIN_KEY is empty, admin routes are disabled")
	}

	srv := httpapi.NewServer(":"+cfg.Port, httpapi.NewRouter(handler, metrics.NewHTTPMetrics(serviceName, reg), reg))
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	if memory != nil && cfg.SnapshotFile != "" {
		if err := memory.SaveFile(cfg.SnapshotFile); err != nil {
			log.Error("Failed to save snapshot", zap.String("file", cfg.SnapshotFile), zap.Error(err))
		} else {
			log.Info("Snapshot saved", zap.String("file", cfg.SnapshotFile))
		}
	}
}

// openStore returns the configured entity store. The memory store is also
// returned on its own so it can be snapshotted on shutdown.
func openStore(ctx context.Context, cfg *config.Config) (service.Store, *storage.MemoryStore) {
	log := logger.GetLogger()
	if cfg.StoreDriver == "postgres" {
		db := config.MustInitPostgres(cfg.DB)
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to ensure schema", zap.Error(err))
		}
		return repo, nil
	}

	if cfg.SeedFile == "" {
		memory := storage.NewMemoryStore()
		return memory, memory
	}
	memory, err := storage.LoadFile(cfg.SeedFile)
	if err != nil {
		log.Fatal("Failed to load seed file", zap.String("file", cfg.SeedFile), zap.Error(err))
	}
	log.Info("Seed data loaded", zap.String("file", cfg.SeedFile))
	return memory, memory
}
