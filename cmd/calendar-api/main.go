package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/event-calendar-api/api/swagger"
	"github.com/noah-isme/event-calendar-api/internal/handler"
	"github.com/noah-isme/event-calendar-api/internal/middleware"
	"github.com/noah-isme/event-calendar-api/internal/models"
	"github.com/noah-isme/event-calendar-api/internal/repository"
	"github.com/noah-isme/event-calendar-api/internal/resolver"
	"github.com/noah-isme/event-calendar-api/internal/service"
	"github.com/noah-isme/event-calendar-api/pkg/config"
	"github.com/noah-isme/event-calendar-api/pkg/database"
	"github.com/noah-isme/event-calendar-api/pkg/export"
	"github.com/noah-isme/event-calendar-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/event-calendar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/event-calendar-api/pkg/middleware/requestid"
)

// @title Event Calendar API
// @version 1.0.0
// @description Events with fixed, nth-weekday and relative dates.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type eventStore interface {
	List(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	CreateMany(ctx context.Context, events []*models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	UpdateBaseYear(ctx context.Context, year int) (int64, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, checks, closeStore, err := openStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open event store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := validator.New()
	res := resolver.New(resolver.WithWorkers(cfg.Resolver.Workers))
	eventSvc := service.NewEventService(store, res, validate, metricsSvc, logr)
	importSvc := service.NewImportService(eventSvc, metricsSvc, logr)
	exportSvc := service.NewExportService(
		eventSvc,
		export.NewICSEncoder(cfg.ICS.ProductID, cfg.ICS.CalendarName, cfg.ICS.UIDDomain),
		service.ExportConfig{CalendarName: cfg.ICS.CalendarName},
		metricsSvc,
		logr,
		export.NewCSVExporter(),
		export.NewPDFExporter(),
	)
	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.Auth.Secret,
		AccessTokenExpiry: cfg.Auth.Expiration,
		Issuer:            cfg.Auth.Issuer,
	})

	if cfg.Rollover.Enabled {
		rollover, err := service.NewRolloverService(eventSvc, service.RolloverConfig{
			Schedule: cfg.Rollover.Schedule,
			Retries:  cfg.Rollover.Retries,
		}, logr)
		if err != nil {
			logr.Fatal("invalid rollover configuration", zap.Error(err))
		}
		if err := rollover.Start(ctx); err != nil {
			logr.Fatal("failed to start rollover", zap.Error(err))
		}
		defer rollover.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Auth.Enabled && cfg.Env == config.EnvProduction && cfg.Auth.Secret == "dev_secret" {
		logr.Fatal("JWT_SECRET must be set in production")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ExposedHeaders: []string{handler.SkippedEventsHeader, "Content-Disposition"},
	}))
	if metricsSvc != nil {
		r.Use(middleware.Metrics(metricsSvc))
	}

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	eventHandler := handler.NewEventHandler(eventSvc)
	transferHandler := handler.NewTransferHandler(importSvc, exportSvc, cfg.Import.MaxFileSizeBytes)
	guard := middleware.WriteGuard(cfg.Auth.Enabled, authSvc)
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), h)
	}

	api := r.Group(cfg.APIPrefix)
	events := api.Group("/events")
	events.GET("", eventHandler.List)
	events.GET("/export.ics", transferHandler.ExportICS)
	events.GET("/export.csv", transferHandler.ExportCSV)
	events.GET("/export.pdf", transferHandler.ExportPDF)
	events.GET("/:id", eventHandler.Get)
	events.POST("/preview", eventHandler.Preview)
	events.POST("", write(eventHandler.Create)...)
	events.PUT("/:id", write(eventHandler.Update)...)
	events.DELETE("/:id", write(eventHandler.Delete)...)
	events.POST("/rebase-year", write(eventHandler.RebaseYear)...)
	events.POST("/import", write(transferHandler.Import)...)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("auth", cfg.Auth.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// openStore connects the configured event store and returns its readiness
// checks and a close function.
func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (eventStore, map[string]handler.ReadinessCheck, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
		return repository.NewEventRepository(db), checks, func() { _ = db.Close() }, nil
	case config.StorageRedis:
		client, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		checks := map[string]handler.ReadinessCheck{
			"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}
		store := repository.NewEventKVRepository(client, cfg.Redis.KeyPrefix, logr)
		return store, checks, func() { _ = store.Close() }, nil
	case config.StorageMemory, "":
		logr.Warn("using in-memory event store; data is lost on restart")
		return repository.NewMemoryEventRepository(), nil, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
