package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/n3t-leo/miamicondos/config"
	"github.com/n3t-leo/miamicondos/internal/api"
	"github.com/n3t-leo/miamicondos/internal/bridge"
	"github.com/n3t-leo/miamicondos/internal/database"
	"github.com/n3t-leo/miamicondos/internal/processor"
	"github.com/n3t-leo/miamicondos/internal/scheduler"
	"github.com/n3t-leo/miamicondos/internal/search"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	gin.SetMode(cfg.Server.GinMode)

	if cfg.MarketsFile != "" {
		if err := config.LoadMarkets(cfg.MarketsFile); err != nil {
			logger.WithError(err).Fatal("Failed to load markets file")
		}
	}

	// Initialize database
	logger.WithFields(logrus.Fields{
		"driver": cfg.Database.Driver,
	}).Info("Opening listings store")
	db, err := database.NewDatabase(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	client := bridge.NewClient(cfg.Bridge, logger)
	if !cfg.Bridge.UseMock && cfg.Bridge.ServerToken == "" {
		logger.Warn("BRIDGE_SERVER_TOKEN is empty, upstream requests will be rejected")
	}
	if cfg.Server.AdminToken == "" {
		logger.Warn("BRIDGE_ADMIN_TOKEN is empty, /admin/refresh is disabled")
	}

	reconciler := processor.NewReconciler(db, logger)
	planner := search.NewPlanner(db, client, reconciler, cfg.Cache, logger)
	refresher := search.NewRefresher(client, reconciler, logger)

	if cfg.Refresh.Enabled {
		sched := scheduler.NewScheduler(refresher, cfg.Refresh, config.Markets(), logger)
		sched.Start()
		defer sched.Stop()
		logger.WithFields(logrus.Fields{
			"interval": cfg.Refresh.Interval.String(),
			"markets":  config.GetMarketNames(),
		}).Info("Scheduled refresh enabled")
	}

	handler := api.NewHandler(planner, client, refresher, db, logger)
	router := api.NewRouter(handler, cfg.Server, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":   cfg.Server.Port,
			"source": client.Source(),
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
}
