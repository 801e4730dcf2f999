package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	exportapp "github.com/buildium/backend/internal/application/export"
	invoiceapp "github.com/buildium/backend/internal/application/invoice"
	reportapp "github.com/buildium/backend/internal/application/report"
	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/infrastructure/auth"
	"github.com/buildium/backend/internal/infrastructure/cache"
	"github.com/buildium/backend/internal/infrastructure/config"
	"github.com/buildium/backend/internal/infrastructure/logger"
	"github.com/buildium/backend/internal/infrastructure/pdf"
	"github.com/buildium/backend/internal/infrastructure/persistence"
	"github.com/buildium/backend/internal/infrastructure/storage"
	"github.com/buildium/backend/internal/interfaces/http/handler"
	"github.com/buildium/backend/internal/interfaces/http/middleware"
	"github.com/buildium/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting facturation backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	allocator := persistence.NewGormSequenceAllocator(db.DB)

	// Artifact storage
	artifactStorage, err := newArtifactStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize artifact storage", zap.Error(err))
	}
	log.Info("Artifact storage ready", zap.String("driver", cfg.Storage.Driver))

	// Optional Redis artifact cache, the system runs without it
	var artifactCache invoiceapp.ArtifactCache
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewArtifactCache(cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable, serving artifacts without cache", zap.Error(err))
		} else {
			defer func() {
				_ = redisCache.Close()
			}()
			artifactCache = redisCache
			log.Info("Artifact cache connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	// Document renderer and issuer identity
	renderer := pdf.NewRenderer(cfg.Invoice.LogoPath)
	issuer := invoice.Party{
		Name:    cfg.Invoice.IssuerName,
		Address: cfg.Invoice.IssuerAddress,
		ICE:     cfg.Invoice.IssuerICE,
		RC:      cfg.Invoice.IssuerRC,
		TaxID:   cfg.Invoice.IssuerTaxID,
		Phone:   cfg.Invoice.IssuerPhone,
		Email:   cfg.Invoice.IssuerEmail,
	}
	if err := issuer.Validate(); err != nil {
		log.Fatal("Invalid issuer configuration", zap.Error(err))
	}

	// Application services
	issuanceService := invoiceapp.NewIssuanceService(invoiceRepo, allocator, renderer, artifactStorage, issuer, log)
	queryService := invoiceapp.NewQueryService(invoiceRepo, renderer, artifactStorage, artifactCache, log)
	exportService := exportapp.NewService(invoiceRepo, log)
	reportService := reportapp.NewService(invoiceRepo, log)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// Handlers
	invoiceHandler := handler.NewInvoiceHandler(issuanceService, queryService)
	exportHandler := handler.NewExportHandler(exportService)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(jwtService, cfg.Auth)
	systemHandler := handler.NewSystemHandler(cfg.App.Name)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSFromConfig(cfg.HTTP))

	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine)
	r.Use(middleware.JWTAuthMiddleware(jwtService))

	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)

	invoiceRoutes := router.NewDomainGroup("invoices", "/invoices")
	invoiceRoutes.POST("", invoiceHandler.Issue)
	invoiceRoutes.GET("", invoiceHandler.List)
	invoiceRoutes.GET("/statistics", invoiceHandler.Statistics)
	invoiceRoutes.GET("/export", exportHandler.Export)
	invoiceRoutes.GET("/number/:number", invoiceHandler.GetByNumber)
	invoiceRoutes.GET("/:id", invoiceHandler.Get)
	invoiceRoutes.GET("/:id/pdf", invoiceHandler.Artifact)
	invoiceRoutes.PATCH("/:id/status", invoiceHandler.UpdateStatus)

	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/revenue", reportHandler.Revenue)
	reportRoutes.GET("/analytics", reportHandler.Analytics)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(authRoutes).
		Register(invoiceRoutes).
		Register(reportRoutes).
		Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// newArtifactStorage selects the configured artifact storage driver
func newArtifactStorage(cfg *config.Config, log *zap.Logger) (invoice.ArtifactStorage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		s3Storage, err := storage.NewS3ArtifactStorage(&cfg.Storage, log)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Storage, nil
	default:
		return storage.NewLocalArtifactStorage(cfg.Storage.LocalPath, log)
	}
}
