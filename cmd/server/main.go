package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/config"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/infra"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/metrics"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository/memstore"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/router"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/service"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid business timezone")
	}
	resolver, err := jornada.NewResolver(loc, cfg.CommercialDayStartHour)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid commercial day")
	}

	metrics.InitMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Storage ──────────────────────────────────────────────────────────────
	var (
		db    *gorm.DB
		store repository.Store
	)
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL empty, running on the in-memory store (data is lost on exit)")
		store = memstore.New()
	} else {
		db, err = infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
		store = repository.NewStore(db)
	}

	// ── Async closing reports ────────────────────────────────────────────────
	// Report jobs need Redis; without it closings are still recorded but no
	// report is mailed.
	var (
		rdb         *redis.Client
		notificador service.NotificadorCierre
	)
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		notificador = worker.NewDispatcher(rdb)
	} else {
		log.Warn().Msg("REDIS_URL empty, closing reports disabled")
	}

	// Worker handlers are wired here (composition root) so the pool has the
	// services and infrastructure it needs.
	inventarioSvc := service.NewInventarioService(store)
	ventaSvc := service.NewVentaService(store, inventarioSvc, resolver)
	cierreSvc := service.NewCierreService(store, ventaSvc, resolver, nil)

	if rdb != nil {
		smtpCB := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "smtp"})
		handlers := &worker.WorkerHandlers{
			ReporteCierre: worker.NewReporteCierreWorker(cierreSvc, infra.NewMailer(cfg), smtpCB, worker.NewRedisDLQ(rdb), cfg.PDFStoragePath),
		}
		worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
	}

	if cfg.CierreWatchdogEnabled {
		watchdog := worker.NewCierreWatchdog(cierreSvc, resolver)
		if err := watchdog.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start closing watchdog")
		}
		defer watchdog.Stop()
	}

	r := router.New(cfg, router.Deps{
		Store:       store,
		Jornada:     resolver,
		Notificador: notificador,
		DB:          db,
		Redis:       rdb,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Int("port", cfg.Port).Str("timezone", loc.String()).Int("day_start", cfg.CommercialDayStartHour).
			Msg("San Roque ledger listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
