package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReportes = "jobs:reportes"

	JobReporteCierre = "reporte_cierre"
)

// pausaReintento is how long a worker waits after a failed BRPOP before polling again.
var pausaReintento = 2 * time.Second

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ReporteCierrePayload identifies the closing to report.
type ReporteCierrePayload struct {
	CierreID string `json:"cierre_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarReporteCierre pushes a closing-report job to Redis.
func (d *Dispatcher) EncolarReporteCierre(ctx context.Context, cierreID uuid.UUID) error {
	encoded, err := encodeJob(JobReporteCierre, ReporteCierrePayload{CierreID: cierreID.String()})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueReportes, encoded).Err()
}

func encodeJob(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}

// JobHandler processes one decoded payload.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// WorkerHandlers routes job types to their handlers. Nil handlers drop the job.
type WorkerHandlers struct {
	ReporteCierre JobHandler
}

// StartWorkerPool launches numWorkers goroutines consuming the report queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Int("workers", numWorkers).Str("queue", QueueReportes).Msg("worker pool started")
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueReportes).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				log.Warn().Err(err).Int("worker", id).Str("queue", QueueReportes).Msg("brpop fallido, reintentando")
				select {
				case <-ctx.Done():
				case <-time.After(pausaReintento):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var h JobHandler
	switch job.Type {
	case JobReporteCierre:
		h = handlers.ReporteCierre
	}
	if h == nil {
		log.Warn().Str("queue", queue).Str("job_type", job.Type).Msg("no handler for job, dropping")
		return
	}

	log.Info().Str("queue", queue).Str("job_type", job.Type).Msg("processing job")
	h.Process(ctx, job.Payload)
}
