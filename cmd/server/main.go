// @title           Noticeboard HTTP Service API
// @version         1.0
// @description     Multi-tenant noticeboard: building complexes publish PDF notices to their occupants.

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/app/routes"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/infrastructure/config"
	"noticeboard-http-service/internal/infrastructure/database"
	"noticeboard-http-service/internal/infrastructure/email"
	"noticeboard-http-service/internal/infrastructure/logger"
	"noticeboard-http-service/internal/infrastructure/mqtt"
	"noticeboard-http-service/internal/infrastructure/search"
	"noticeboard-http-service/internal/infrastructure/storage"
)

const serviceName = "noticeboard-http-service"

func main() {
	envErr := godotenv.Load()

	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, serviceName, cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if envErr != nil {
		log.Warn("no .env file loaded, using process environment", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	pool, err := database.NewConnectionPool(cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(pool.GetDB(), cfg.DBMigrationMode, log); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	infra, cleanup, err := buildInfrastructure(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	serviceContainer := container.NewServiceContainer(pool.GetDB(), cfg, infra, log)
	if cfg.DBMigrationMode == database.MigrationDrop {
		// A shared cache would keep serving rows the drop just removed.
		if err := serviceContainer.PurgeCache(ctx); err != nil {
			log.Warn("failed to purge response cache", zap.Error(err))
		} else {
			log.Info("response cache purged after schema rebuild")
		}
	}
	router := routes.SetupRouter(serviceContainer)

	searchSync := serviceContainer.GetService(container.ServiceSearchSync).(services.InterfaceSearchSyncService)
	go searchSync.Run(ctx)

	printSystemInfo(pool, log)

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildInfrastructure connects the external adapters. The returned cleanup releases them.
func buildInfrastructure(ctx context.Context, cfg *config.Config, log *zap.Logger) (container.Infrastructure, func(), error) {
	var infra container.Infrastructure
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.RedisEnabled() {
		client, err := services.NewRedisClient(ctx, cfg)
		if err != nil {
			return infra, cleanup, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		infra.Cache = services.NewRedisService(client, log)
		log.Info("response cache: redis", zap.String("addr", cfg.GetRedisAddr()))
	} else {
		memory := services.NewMemoryCacheService()
		go memory.RunCleanup(ctx)
		infra.Cache = memory
		log.Info("response cache: in-memory")
	}

	fileStorage, err := storage.NewS3FileStorage(ctx, cfg)
	if err != nil {
		cleanup()
		return infra, func() {}, fmt.Errorf("configure object storage: %w", err)
	}
	infra.Storage = fileStorage
	infra.Index = search.NewHostedIndex(cfg, log)
	infra.Mailer = email.NewAPISender(cfg, log)

	publisher, err := mqtt.NewPublisher(cfg, log)
	if err != nil {
		// Display clients fall back to polling.
		log.Warn("mqtt unavailable, display events disabled", zap.Error(err))
		publisher = mqtt.NopPublisher{Topics: mqtt.Topics{Prefix: cfg.MQTTTopicPrefix}}
	}
	closers = append(closers, publisher.Close)
	infra.Publisher = publisher

	return infra, cleanup, nil
}

func printSystemInfo(pool *database.ConnectionPool, log *zap.Logger) {
	if stats, err := pool.Stats(); err == nil {
		log.Info("database pool", zap.Any("stats", stats))
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Info("system",
		zap.Int("cpus", runtime.NumCPU()),
		zap.Int("goroutines", runtime.NumGoroutine()),
		zap.Uint64("alloc_mib", m.Alloc/1024/1024),
		zap.Uint64("sys_mib", m.Sys/1024/1024))
}
