package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/spacefarm/agrorisk/internal/api"
	"github.com/spacefarm/agrorisk/internal/climate"
	"github.com/spacefarm/agrorisk/internal/config"
	"github.com/spacefarm/agrorisk/internal/logging"
	"github.com/spacefarm/agrorisk/internal/monitor"
	"github.com/spacefarm/agrorisk/internal/observability"
	"github.com/spacefarm/agrorisk/internal/repository"
	"github.com/spacefarm/agrorisk/internal/risk"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	store := repository.NewStore()
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	powerClient := climate.NewClient(
		cfg.Power.BaseURL,
		cfg.Power.Parameter,
		cfg.Power.Community,
		cfg.Power.Timeout,
		slog.Default(),
		metrics,
	)
	defer powerClient.Close()

	orchestrator := monitor.NewOrchestrator(
		store,
		powerClient,
		risk.SimulatedEstimator{},
		clock,
		metrics,
		slog.Default(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !cfg.Scheduler.DisableDemoFields {
		seedDemoFields(store)
	}

	// Prime an initial assessment before the first scheduled cycle.
	orchestrator.RunCycle(ctx)

	scheduler := monitor.NewScheduler(orchestrator, cfg.Scheduler.Interval, cfg.Scheduler.Jitter, clock, slog.Default())
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(store, orchestrator)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	<-schedulerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

// seedDemoFields registers two demo locations so a fresh instance has data to
// monitor. Skipped when fields already exist or DISABLE_DEMO_FIELDS is set.
func seedDemoFields(store *repository.Store) {
	if store.CountFields() > 0 {
		return
	}

	demo := []struct {
		name     string
		lat, lon float64
	}{
		{"Demo North Farm", 38.5816, -121.4944},
		{"Demo Rift Valley", -0.0236, 37.9062},
	}
	for _, d := range demo {
		if _, err := store.CreateField(d.name, d.lat, d.lon); err != nil {
			slog.Error("failed to seed demo field", "name", d.name, "error", err)
		}
	}
}
