package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/config"
	"github.com/Alisjj/farmPilot-sub001/internal/controller"
	"github.com/Alisjj/farmPilot-sub001/internal/model"
	"github.com/Alisjj/farmPilot-sub001/internal/repository"
	"github.com/Alisjj/farmPilot-sub001/internal/router"
	"github.com/Alisjj/farmPilot-sub001/internal/scheduler"
	"github.com/Alisjj/farmPilot-sub001/internal/service"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Error("failed to connect to database", "error", err.Error())
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&model.ActivityRecord{},
		&model.FinancialTransaction{},
		&model.DailyKpiSummary{},
		&model.KpiTrend{},
		&model.Alert{},
		&model.ThresholdConfig{},
		&model.InventoryItem{},
	); err != nil {
		logger.Error("failed to run migrations", "error", err.Error())
		os.Exit(1)
	}

	if cfg.Seed {
		if err := repository.NewSeedRepository(db).SeedDatabase(); err != nil {
			logger.Error("failed to seed database", "error", err.Error())
			os.Exit(1)
		}
	}

	store := repository.NewStore(db)
	flocks := service.FlockSizes{
		Default:  cfg.Flock.DefaultSize,
		Sections: cfg.Flock.SectionSizes,
	}

	kpiService := service.NewKpiService(store, flocks, logger.With("component", "kpi"))
	alertService := service.NewAlertService(store, logger.With("component", "alerts"))
	dashboardService := service.NewDashboardService(store, kpiService, logger.With("component", "dashboard"))

	kpiController := controller.NewKpiController(kpiService, logger.With("component", "kpi_controller"))
	dashboardController := controller.NewDashboardController(dashboardService, logger.With("component", "dashboard_controller"))
	alertController := controller.NewAlertController(alertService, logger.With("component", "alert_controller"))

	engine := router.New(kpiController, dashboardController, alertController, logger.With("component", "http"))

	sched := scheduler.New(cfg.Scheduler, cfg.Flock, kpiService, alertService, logger.With("component", "scheduler"))
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err.Error())
		os.Exit(1)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server crashed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err.Error())
	}
}
