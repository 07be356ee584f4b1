package worker

// Dead letter queue: jobs that exhaust their retries are parked in a Redis
// list per source queue, dlq:{original_queue}, for manual inspection.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // RFC 3339
	Attempts      int             `json:"attempts"`
}

// DeadLetters receives jobs that will not be retried again.
type DeadLetters interface {
	Send(ctx context.Context, entry DLQEntry) error
}

// RedisDLQ stores dead letters in Redis lists.
type RedisDLQ struct {
	rdb *redis.Client
}

func NewRedisDLQ(rdb *redis.Client) *RedisDLQ { return &RedisDLQ{rdb: rdb} }

func (q *RedisDLQ) Send(ctx context.Context, entry DLQEntry) error {
	if entry.FailedAt == "" {
		entry.FailedAt = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, DLQPrefix+entry.OriginalQueue, data).Err()
}

// Length returns the number of entries parked for queue.
func (q *RedisDLQ) Length(ctx context.Context, queue string) (int64, error) {
	return q.rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// sendToDLQ parks a job and logs the outcome. Failures to park are logged only.
func sendToDLQ(ctx context.Context, dlq DeadLetters, entry DLQEntry) {
	if dlq == nil {
		log.Error().Str("queue", entry.OriginalQueue).Str("job_type", entry.JobType).Str("reason", entry.Reason).
			Msg("dlq: no dead letter sink, job dropped")
		return
	}
	if err := dlq.Send(ctx, entry); err != nil {
		log.Error().Err(err).Str("queue", entry.OriginalQueue).Msg("dlq: failed to push entry")
		return
	}
	log.Warn().
		Str("queue", entry.OriginalQueue).
		Str("job_type", entry.JobType).
		Str("reason", entry.Reason).
		Int("attempts", entry.Attempts).
		Msg("dlq: job moved to dead letter queue")
}
