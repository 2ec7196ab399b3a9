package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/tokenwallet/internal/metrics"
)

// Job is the payload stored on the mail queue.
type Job struct {
	ID          string      `json:"id"`
	Credentials Credentials `json:"credentials"`
	EnqueuedAt  time.Time   `json:"enqueued_at"`
}

type QueueDispatcher struct {
	client  *redis.Client
	key     string
	metrics *metrics.Metrics

	newID func() string
	now   func() time.Time
}

func NewQueueDispatcher(client *redis.Client, m *metrics.Metrics) *QueueDispatcher {
	return &QueueDispatcher{
		client:  client,
		key:     QueueKey,
		metrics: m,
		newID:   func() string { return uuid.NewString() },
		now:     time.Now,
	}
}

// Dispatch enqueues exactly one job per call. Delivery happens in a Consumer.
func (d *QueueDispatcher) Dispatch(ctx context.Context, c Credentials) error {
	job := Job{ID: d.newID(), Credentials: c, EnqueuedAt: d.now().UTC()}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode mail job: %w", err)
	}
	if err := d.client.LPush(ctx, d.key, payload).Err(); err != nil {
		d.metrics.MailDispatched.WithLabelValues("queue", "failed").Inc()
		zap.L().Error("failed to enqueue credential mail", zap.String("username", c.Username), zap.Error(err))
		return fmt.Errorf("enqueue mail job: %w", err)
	}
	d.metrics.MailDispatched.WithLabelValues("queue", "enqueued").Inc()
	zap.L().Info("credential mail queued", zap.String("username", c.Username), zap.String("job_id", job.ID))
	return nil
}
