package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	catalogapp "github.com/scentpos/backend/internal/application/catalog"
	financeapp "github.com/scentpos/backend/internal/application/finance"
	inventoryapp "github.com/scentpos/backend/internal/application/inventory"
	reportapp "github.com/scentpos/backend/internal/application/report"
	salesapp "github.com/scentpos/backend/internal/application/sales"
	storeapp "github.com/scentpos/backend/internal/application/store"
	"github.com/scentpos/backend/internal/infrastructure/cache"
	"github.com/scentpos/backend/internal/infrastructure/config"
	"github.com/scentpos/backend/internal/infrastructure/logger"
	"github.com/scentpos/backend/internal/infrastructure/migration"
	"github.com/scentpos/backend/internal/infrastructure/persistence"
	"github.com/scentpos/backend/internal/infrastructure/telemetry"
	"github.com/scentpos/backend/internal/interfaces/http/handler"
	"github.com/scentpos/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ScentPOS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Schema migrations
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	migrator, err := migration.New(sqlDB, "migrations", log)
	if err != nil {
		log.Fatal("Failed to initialize migrator", zap.Error(err))
	}
	if err := migrator.Up(); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// Telemetry
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	if err := telemetry.RegisterOtelGorm(db.DB, telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled,
		DBName:  cfg.Database.DBName,
	}, log); err != nil {
		log.Error("Failed to register database tracing", zap.Error(err))
	}

	var posMetrics *telemetry.POSMetrics
	if cfg.Telemetry.Enabled {
		posMetrics, err = telemetry.NewPOSMetrics(telemetry.POSMetricsConfig{
			Meter:         meterProvider.Meter(telemetry.TracerName),
			Logger:        log,
			StockProvider: persistence.NewGormStockAlertProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize POS metrics", zap.Error(err))
		}
		defer posMetrics.Stop()
	}

	// Repositories and transaction scopes
	productRepo := persistence.NewGormProductRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	financeReportRepo := persistence.NewGormFinanceReportRepository(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	salesScope := persistence.NewGormSalesTransactionScope(db.DB)

	// Report cache
	reportCache, err := cache.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize report cache", zap.Error(err))
	}
	log.Info("Report cache initialized", zap.String("backend", cfg.Cache.Backend))

	// Application services
	catalogService := catalogapp.NewCatalogService(productRepo, variantRepo)
	storeService := storeapp.NewStoreService(storeRepo)
	receivingService := inventoryapp.NewReceivingService(inventoryScope, variantRepo, storeRepo)
	settlementService := salesapp.NewSettlementService(salesScope, variantRepo, storeRepo)
	expenseService := financeapp.NewExpenseService(expenseRepo)
	reportService := reportapp.NewReportService(financeReportRepo, reportCache, log)

	// HTTP engine and routes
	engine, err := router.NewEngine(cfg, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}
	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler(db)).
		Register(handler.NewCatalogHandler(catalogService)).
		Register(handler.NewStoreHandler(storeService)).
		Register(handler.NewInventoryHandler(receivingService, posMetrics)).
		Register(handler.NewCheckoutHandler(settlementService, posMetrics)).
		Register(handler.NewExpenseHandler(expenseService)).
		Register(handler.NewReportHandler(reportService))
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
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}
