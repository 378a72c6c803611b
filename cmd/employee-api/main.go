package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/employee-admin/api/swagger"
	"github.com/noah-isme/employee-admin/internal/handler"
	"github.com/noah-isme/employee-admin/internal/middleware"
	"github.com/noah-isme/employee-admin/internal/repository"
	"github.com/noah-isme/employee-admin/internal/service"
	"github.com/noah-isme/employee-admin/pkg/cache"
	"github.com/noah-isme/employee-admin/pkg/config"
	"github.com/noah-isme/employee-admin/pkg/database"
	"github.com/noah-isme/employee-admin/pkg/jobs"
	"github.com/noah-isme/employee-admin/pkg/logger"
	"github.com/noah-isme/employee-admin/pkg/messaging"
	corsmiddleware "github.com/noah-isme/employee-admin/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/employee-admin/pkg/middleware/requestid"
	"github.com/noah-isme/employee-admin/pkg/server"
)

// @title Employee Admin API
// @version 1.0.0
// @description CRUD and search over employee records
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "employee-api")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("employee api stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logr.Info("schema ready", zap.Strings("migrations", applied))

	metrics := service.NewMetricsService()
	repo := repository.NewEmployeeRepository(db).WithMetrics(metrics)
	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	opts := []service.EmployeeServiceOption{service.WithServiceMetrics(metrics)}

	if cfg.Cache.Enabled {
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			cacheSvc := service.NewCacheService(repository.NewCacheRepository(rdb), metrics, cfg.Cache.TTL, logr.Named("cache"), true)
			opts = append(opts, service.WithEmployeeCache(cacheSvc))
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	if writer := messaging.NewKafkaWriter(cfg.Events); writer != nil {
		events := service.NewQueuedEventPublisher(service.NewKafkaEventPublisher(writer), jobs.QueueConfig{
			Workers:    cfg.Events.Workers,
			MaxRetries: cfg.Events.Retries,
			Logger:     logr,
		})
		events.Start(context.Background())
		defer func() {
			events.Stop()
			if err := writer.Close(); err != nil {
				logr.Warn("kafka writer close failed", zap.Error(err))
			}
		}()
		opts = append(opts, service.WithEventPublisher(events))
		logr.Info("publishing employee events", zap.Strings("brokers", cfg.Events.Brokers), zap.String("topic", cfg.Events.Topic))
	}

	employees := service.NewEmployeeService(repo, validator.New(), logr.Named("employees"), opts...)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics, "/health", "/ready"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.NewMetricsHandler(metrics, checks).Register(r)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	handler.NewEmployeeHandler(employees).Register(r.Group(cfg.APIPrefix + "/employees"))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: r}
	return server.Run(ctx, srv, logr)
}
