package worker

import (
	"context"
	"fmt"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/metrics"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

// PendienteChecker reports the previous commercial day when it was not closed.
type PendienteChecker interface {
	JornadaPendiente(ctx context.Context) (*jornada.Dia, error)
}

// CierreWatchdog runs daily a few minutes after the commercial-day boundary
// and flags a missing closing. It only reads; closing stays a manual action.
type CierreWatchdog struct {
	checker   PendienteChecker
	scheduler *gocron.Scheduler
	at        string
}

func NewCierreWatchdog(checker PendienteChecker, resolver *jornada.Resolver) *CierreWatchdog {
	return &CierreWatchdog{
		checker:   checker,
		scheduler: gocron.NewScheduler(resolver.Location()),
		at:        fmt.Sprintf("%02d:05", resolver.HoraInicio()),
	}
}

// Start schedules the daily check and runs the scheduler in the background.
func (w *CierreWatchdog) Start(ctx context.Context) error {
	if _, err := w.scheduler.Every(1).Day().At(w.at).Do(w.Check, ctx); err != nil {
		return fmt.Errorf("watchdog: schedule: %w", err)
	}
	w.scheduler.StartAsync()
	log.Info().Str("worker", "cierre_watchdog").Str("at", w.at).Msg("watchdog scheduled")
	return nil
}

func (w *CierreWatchdog) Stop() { w.scheduler.Stop() }

// Check updates the cierres_pendientes gauge and warns when the previous day is open.
func (w *CierreWatchdog) Check(ctx context.Context) {
	dia, err := w.checker.JornadaPendiente(ctx)
	if err != nil {
		log.Error().Err(err).Str("worker", "cierre_watchdog").Msg("pending check failed")
		return
	}
	if dia == nil {
		metrics.CierresPendientes.Set(0)
		return
	}
	metrics.CierresPendientes.Set(1)
	log.Warn().Str("worker", "cierre_watchdog").Str("fecha", dia.String()).Msg("commercial day without closing")
}
