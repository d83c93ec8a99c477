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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/maganghub/maganghub-api/api/swagger"
	"github.com/maganghub/maganghub-api/internal/handler"
	"github.com/maganghub/maganghub-api/internal/middleware"
	"github.com/maganghub/maganghub-api/internal/notification"
	"github.com/maganghub/maganghub-api/internal/repository"
	"github.com/maganghub/maganghub-api/internal/service"
	"github.com/maganghub/maganghub-api/pkg/cache"
	"github.com/maganghub/maganghub-api/pkg/config"
	"github.com/maganghub/maganghub-api/pkg/database"
	"github.com/maganghub/maganghub-api/pkg/export"
	"github.com/maganghub/maganghub-api/pkg/imaging"
	"github.com/maganghub/maganghub-api/pkg/logger"
	corsmiddleware "github.com/maganghub/maganghub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/maganghub/maganghub-api/pkg/middleware/requestid"
	"github.com/maganghub/maganghub-api/pkg/response"
	"github.com/maganghub/maganghub-api/pkg/storage"
)

// @title MagangHub API
// @version 1.0.0
// @description Internship (PKL) management for vocational schools
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Notification de-dup degrades to the in-process fallback.
		logr.Warn("redis unavailable, continuing without it", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare uploads storage", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()

	hub := notification.NewHub(logr, metricsSvc, cfg.Notifications.WriteTimeout, cfg.Notifications.PingInterval)
	deduper := notification.NewDeduper(redisClient, cfg.Notifications.DedupTTL, logr)
	relay := notification.NewRelay(hub, deduper, metricsSvc, logr, cfg.Notifications.Enabled)

	userRepo := repository.NewUserRepository(db)
	siswaRepo := repository.NewSiswaRepository(db)
	guruRepo := repository.NewGuruRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	realizationRepo := repository.NewRealizationRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)

	processor := imaging.NewProcessor(cfg.Uploads.MaxPhotoEdge, cfg.Uploads.JPEGQuality)
	uploader := service.NewPhotoUploader(processor, uploads, logr, 0)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "maganghub-api",
	})
	appSvc := service.NewApplicationService(appRepo, siswaRepo, groupRepo, referenceRepo, relay, metricsSvc, nil, logr, response.PageSize)
	groupSvc := service.NewGroupService(groupRepo, siswaRepo, appRepo, nil, logr)
	transferSvc := service.NewTransferService(transferRepo, appRepo, siswaRepo, referenceRepo, uploads, relay, metricsSvc, nil, logr, response.PageSize)
	leaveSvc := service.NewLeaveService(leaveRepo, appRepo, uploader, nil, logr, response.PageSize)
	issueSvc := service.NewIssueService(issueRepo, siswaRepo, nil, logr, response.PageSize)
	realizationSvc := service.NewRealizationService(realizationRepo, uploader, nil, logr, response.PageSize)
	referenceSvc := service.NewReferenceService(referenceRepo, siswaRepo, guruRepo, nil, logr, response.PageSize)
	letterSvc := service.NewLetterService(appRepo, groupRepo, siswaRepo, referenceRepo, export.NewLetterRenderer(), cfg.Letters, cfg.SchoolName, cfg.SchoolAddress, logr)

	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Application:  handler.NewApplicationHandler(appSvc, letterSvc),
		Group:        handler.NewGroupHandler(groupSvc),
		Transfer:     handler.NewTransferHandler(transferSvc, guruRepo, signer, cfg.Uploads.MaxFileSizeBytes),
		Leave:        handler.NewLeaveHandler(leaveSvc, cfg.Uploads.MaxFileSizeBytes),
		Issue:        handler.NewIssueHandler(issueSvc, guruRepo),
		Realization:  handler.NewRealizationHandler(realizationSvc, cfg.Uploads.MaxFileSizeBytes),
		Reference:    handler.NewReferenceHandler(referenceSvc),
		Notification: handler.NewNotificationHandler(hub, logr),
		Files:        handler.NewFileHandler(signer, uploads),
		Metrics:      handler.NewMetricsHandler(metricsSvc, hub),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay.Start(ctx)

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	relay.Close()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
