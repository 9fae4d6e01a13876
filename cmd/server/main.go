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

	"github.com/mamadbah2/harvestguard/internal/config"
	"github.com/mamadbah2/harvestguard/internal/metrics"
	"github.com/mamadbah2/harvestguard/internal/repository/mongodb"
	"github.com/mamadbah2/harvestguard/internal/repository/sheets"
	"github.com/mamadbah2/harvestguard/internal/scheduler"
	"github.com/mamadbah2/harvestguard/internal/server/handlers"
	"github.com/mamadbah2/harvestguard/internal/server/router"
	alertsvc "github.com/mamadbah2/harvestguard/internal/service/alerts"
	commandsvc "github.com/mamadbah2/harvestguard/internal/service/commands"
	dashboardsvc "github.com/mamadbah2/harvestguard/internal/service/dashboard"
	reportingsvc "github.com/mamadbah2/harvestguard/internal/service/reporting"
	"github.com/mamadbah2/harvestguard/internal/service/spoilage"
	whatsappsvc "github.com/mamadbah2/harvestguard/internal/service/whatsapp"
	weatherclient "github.com/mamadbah2/harvestguard/pkg/clients/weather"
	whatsappclient "github.com/mamadbah2/harvestguard/pkg/clients/whatsapp"
	"github.com/mamadbah2/harvestguard/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	metrics.Init()

	table, err := spoilage.LoadShelfLifeTable(cfg.Spoilage.ShelfLifePath)
	if err != nil {
		baseLogger.Fatal("failed to load shelf-life table", zap.Error(err))
	}
	estimator, err := spoilage.NewEstimator(table, spoilage.PenaltyConfig{
		HumidityThresholdPct: cfg.Spoilage.HumidityThresholdPct,
		RainThresholdPct:     cfg.Spoilage.RainThresholdPct,
		StepPoints:           cfg.Spoilage.PenaltyStepPoints,
		FractionPerStep:      cfg.Spoilage.PenaltyPerStep,
	})
	if err != nil {
		baseLogger.Fatal("invalid spoilage configuration", zap.Error(err))
	}
	baseLogger.Info("loss estimator ready", zap.Int("profiles", table.Len()))

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	cancelConnect()
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var (
		ledgerMirror  dashboardsvc.LedgerMirror
		summaryMirror reportingsvc.SummaryMirror
	)
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger)
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		mirror := sheets.NewLedgerMirror(sheetsRepo)
		ledgerMirror, summaryMirror = mirror, mirror
		baseLogger.Info("sheets ledger mirror enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, ledger mirror disabled")
	}

	weatherClient := weatherclient.NewClient(cfg.Weather)
	whatsClient := whatsappclient.NewClient(cfg.WhatsApp)

	alerts := alertsvc.NewService(alertsvc.NewSessionStore(), whatsClient, baseLogger)
	dashboard := dashboardsvc.NewService(mongoRepo, weatherClient, estimator, alerts, ledgerMirror, baseLogger)
	reporting := reportingsvc.NewService(mongoRepo, weatherClient, whatsClient, summaryMirror, mustLocation(cfg.Reporting.Timezone), baseLogger)
	commandDispatcher := commandsvc.NewService(dashboard, baseLogger)
	messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, mongoRepo, commandDispatcher, baseLogger)

	engine := router.New(
		handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp")),
		handlers.NewAPIHandler(dashboard, estimator, baseLogger.Named("handlers.api")),
		logger.Named(baseLogger, "router"),
	)

	sched, err := scheduler.NewScheduler(cfg.Reporting, dashboard, reporting, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// mustLocation is safe after config validation.
func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
