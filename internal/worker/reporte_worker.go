package worker

// reporte_worker.go
// Processes closing-report jobs from QueueReportes: renders the closing PDF
// and mails it to the owner through the SMTP circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/infra"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxReporteAttempts = 3

// CierreLoader reads a persisted closing.
type CierreLoader interface {
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CierreResponse, error)
}

// ReporteMailer delivers the rendered report.
type ReporteMailer interface {
	Enabled() bool
	SendReporteCierre(subject, body, pdfPath string) error
}

type ReporteCierreWorker struct {
	cierres        CierreLoader
	mailer         ReporteMailer
	cb             *infra.CircuitBreaker
	dlq            DeadLetters
	pdfStoragePath string
	backoff        func(attempt int) time.Duration
}

func NewReporteCierreWorker(cierres CierreLoader, mailer ReporteMailer, cb *infra.CircuitBreaker, dlq DeadLetters, pdfStoragePath string) *ReporteCierreWorker {
	return &ReporteCierreWorker{
		cierres:        cierres,
		mailer:         mailer,
		cb:             cb,
		dlq:            dlq,
		pdfStoragePath: pdfStoragePath,
		backoff:        exponentialBackoff,
	}
}

// Process handles a single report job:
//  1. Load the closing
//  2. Render the PDF
//  3. Mail it through the breaker, up to 3 attempts
//  4. Park the job in the DLQ when every attempt failed
func (w *ReporteCierreWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReporteCierrePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Str("worker", "reporte_cierre").Msg("invalid payload")
		return
	}
	logger := log.With().Str("worker", "reporte_cierre").Str("job_type", JobReporteCierre).Str("cierre_id", payload.CierreID).Logger()

	id, err := uuid.Parse(payload.CierreID)
	if err != nil {
		logger.Error().Msg("invalid cierre_id")
		return
	}

	cierre, err := w.cierres.ObtenerPorID(ctx, id)
	if err != nil {
		w.fail(ctx, raw, fmt.Sprintf("load cierre: %v", err), 0)
		return
	}

	pdfPath, err := infra.GenerateCierrePDF(cierre, w.pdfStoragePath)
	if err != nil {
		w.fail(ctx, raw, fmt.Sprintf("pdf: %v", err), 0)
		return
	}
	logger.Info().Str("pdf", pdfPath).Msg("closing report rendered")

	if !w.mailer.Enabled() {
		logger.Info().Msg("smtp not configured, report kept on disk only")
		return
	}

	subject := fmt.Sprintf("Cierre de caja %s", cierre.FechaComercial)
	body := fmt.Sprintf("Total bruto: $%s\nEfectivo: $%s\nElectronico: $%s\nEgresos: $%s\nSaldo neto: $%s\n",
		cierre.TotalBruto.StringFixed(2), cierre.TotalEfectivo.StringFixed(2), cierre.TotalElectronico.StringFixed(2),
		cierre.TotalEgresos.StringFixed(2), cierre.SaldoNeto.StringFixed(2))

	attempts, err := withRetry(ctx, maxReporteAttempts, w.backoff, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.mailer.SendReporteCierre(subject, body, pdfPath)
		})
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt+1).Msg("report delivery failed")
		}
		return err
	})
	if err != nil {
		w.fail(ctx, raw, err.Error(), attempts)
		return
	}
	logger.Info().Msg("closing report sent")
}

func (w *ReporteCierreWorker) fail(ctx context.Context, raw json.RawMessage, reason string, attempts int) {
	metrics.ReportesFallidos.Inc()
	sendToDLQ(ctx, w.dlq, DLQEntry{
		OriginalQueue: QueueReportes,
		JobType:       JobReporteCierre,
		Payload:       raw,
		Reason:        reason,
		Attempts:      attempts,
	})
}

// exponentialBackoff waits 1s before the second attempt, 2s before the third.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

// withRetry calls fn up to maxAttempts times, sleeping backoff(i) before attempt i.
// It returns the number of attempts made and the last error.
func withRetry(ctx context.Context, maxAttempts int, backoff func(int) time.Duration, fn func(attempt int) error) (int, error) {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return i, ctx.Err()
			case <-time.After(backoff(i)):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return i + 1, nil
	}
	return maxAttempts, lastErr
}
