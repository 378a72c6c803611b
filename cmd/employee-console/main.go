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
	"go.uber.org/zap"

	"github.com/noah-isme/employee-admin/internal/client"
	"github.com/noah-isme/employee-admin/internal/console"
	"github.com/noah-isme/employee-admin/internal/handler"
	"github.com/noah-isme/employee-admin/internal/middleware"
	"github.com/noah-isme/employee-admin/internal/service"
	"github.com/noah-isme/employee-admin/pkg/config"
	"github.com/noah-isme/employee-admin/pkg/logger"
	reqidmiddleware "github.com/noah-isme/employee-admin/pkg/middleware/requestid"
	"github.com/noah-isme/employee-admin/pkg/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "employee-console")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	api := client.New(cfg.Console.APIBaseURL,
		client.WithLogger(logr.Named("client")),
		client.WithObserver(metrics),
	)
	validate := validator.New()
	sessions := console.NewSessions(cfg.Console.SessionTTL, func() *console.View {
		return console.NewView(api, console.WithViewLogger(logr.Named("console")), console.WithValidator(validate))
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics, "/health", "/ready"))

	handler.NewMetricsHandler(metrics, nil).Register(r)
	handler.NewConsoleHandler(sessions, logr, cfg.Env == config.EnvProduction).Register(r)

	logr.Info("console using employee api", zap.String("base_url", api.BaseURL()))
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Console.Port), Handler: r}
	if err := server.Run(ctx, srv, logr); err != nil {
		logr.Fatal("employee console stopped", zap.Error(err))
	}
}
