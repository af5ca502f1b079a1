package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yeremiapane/queue-app/config"
	"github.com/yeremiapane/queue-app/controllers"
	"github.com/yeremiapane/queue-app/database"
	"github.com/yeremiapane/queue-app/hub"
	"github.com/yeremiapane/queue-app/router"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/store"
	"github.com/yeremiapane/queue-app/utils"
)

func init() {
	// Load .env file di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
}

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	queueHub := hub.New()
	queueStore := store.New(
		store.WithListener(queueHub),
		store.WithListener(services.NewQueueMetrics(prometheus.DefaultRegisterer)),
	)

	var activity controllers.ActivityLog
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if db != nil {
		if err := database.Migrate(db); err != nil {
			utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
		}
		recorder := services.NewActivityRecorder(db, cfg.ActivityBuffer)
		recorder.Start()
		defer recorder.Stop()

		queueStore.AddListener(recorder)
		activity = recorder
	} else {
		utils.InfoLogger.Info("Activity log disabled (DB_DRIVER=none)")
	}

	if cfg.SeedDemoData {
		created := queueStore.EnsureDemoData()
		utils.InfoLogger.WithField("created", created).Info("Demo data initialized")
	}

	r := router.SetupRouter(router.Deps{
		Config:   cfg,
		Store:    queueStore,
		Hub:      queueHub,
		Activity: activity,
		Gatherer: prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Errorf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Graceful shutdown failed: %v", err)
	}
}
