package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/GlebRadaev/tokenwallet/internal/metrics"
)

const (
	popTimeout      = time.Second
	deliveryTimeout = 2 * time.Minute
	requeueTimeout  = 5 * time.Second
)

// Consumer drains the mail queue into a worker pool of senders.
type Consumer struct {
	client        *redis.Client
	key           string
	sender        Sender
	workers       int
	metrics       *metrics.Metrics
	retryInterval time.Duration
	pool          WorkerPoolI
}

func NewConsumer(client *redis.Client, sender Sender, workers int, m *metrics.Metrics) *Consumer {
	return &Consumer{
		client:        client,
		key:           QueueKey,
		sender:        sender,
		workers:       workers,
		metrics:       m,
		retryInterval: retryInterval,
	}
}

// Run blocks until ctx is cancelled, then waits for in-flight mails.
func (c *Consumer) Run(ctx context.Context) {
	zap.L().Info("mail consumer started", zap.Int("workers", c.workers))
	pool := c.pool
	if pool == nil {
		pool = NewWorkerPool(c.workers)
	}
	defer pool.Close()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping mail consumer")
			return
		default:
		}

		job, err := c.next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				zap.L().Error("failed to read mail queue", zap.Error(err))
				time.Sleep(popTimeout)
			}
			continue
		}
		if job == nil {
			continue
		}

		j := *job
		err = pool.AddTask(ctx, func() error {
			// popped jobs are finished even when shutdown starts
			dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
			defer cancel()
			return c.handle(dctx, j)
		})
		if err != nil {
			c.requeue(ctx, j)
		}
	}
}

// requeue pushes a popped job back to the consuming end of the list.
func (c *Consumer) requeue(ctx context.Context, job Job) {
	payload, err := json.Marshal(job)
	if err != nil {
		zap.L().Error("failed to encode mail job", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueTimeout)
	defer cancel()
	if err := c.client.RPush(rctx, c.key, payload).Err(); err != nil {
		zap.L().Error("mail job lost on shutdown", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	zap.L().Info("mail job returned to queue", zap.String("job_id", job.ID))
}

// next pops one job, returning nil when the queue stayed empty.
func (c *Consumer) next(ctx context.Context) (*Job, error) {
	res, err := c.client.BRPop(ctx, popTimeout, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		zap.L().Error("discarding malformed mail job", zap.String("payload", res[1]), zap.Error(err))
		return nil, nil
	}
	return &job, nil
}

func (c *Consumer) handle(ctx context.Context, job Job) error {
	if err := deliver(ctx, c.sender, job.Credentials, c.retryInterval); err != nil {
		c.metrics.MailDispatched.WithLabelValues("queue", "failed").Inc()
		return err
	}
	c.metrics.MailDispatched.WithLabelValues("queue", "sent").Inc()
	zap.L().Info("credential mail sent", zap.String("job_id", job.ID), zap.String("username", job.Credentials.Username))
	return nil
}
