// Package mailer delivers generated account credentials to new users.
//
// Two Dispatcher implementations exist. SyncDispatcher sends inline through
// a Sender. QueueDispatcher pushes a job onto a Redis list that a Consumer
// drains with a worker pool. The mode is chosen by configuration.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/GlebRadaev/tokenwallet/internal/config"
	"github.com/GlebRadaev/tokenwallet/internal/metrics"
)

const (
	Subject  = "Your Account Credentials"
	QueueKey = "wallet:mail"

	maxRetries    = 3
	retryInterval = time.Second
)

type Credentials struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Sender interface {
	Send(ctx context.Context, c Credentials) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, c Credentials) error
}

func Body(c Credentials) string {
	return fmt.Sprintf("Please find your credentials\n\nusername: %s\npassword: %s\n", c.Username, c.Password)
}

// New wires the dispatcher selected by cfg.MailMode. The returned Consumer is
// nil in sync mode.
func New(cfg *config.Config, client *redis.Client, m *metrics.Metrics) (Dispatcher, *Consumer, error) {
	sender := NewSMTPSender(cfg)
	switch cfg.MailMode {
	case config.MailModeSync:
		return NewSyncDispatcher(sender, m), nil, nil
	case config.MailModeQueue:
		if client == nil {
			return nil, nil, fmt.Errorf("mail mode %q requires redis", cfg.MailMode)
		}
		return NewQueueDispatcher(client, m), NewConsumer(client, sender, cfg.MailWorkers, m), nil
	default:
		return nil, nil, fmt.Errorf("unsupported mail mode: %s", cfg.MailMode)
	}
}

// deliver retries a failed send with a linearly growing pause.
func deliver(ctx context.Context, sender Sender, c Credentials, interval time.Duration) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = sender.Send(ctx, c); err == nil {
			return nil
		}
		zap.L().Warn("credential mail failed, retrying",
			zap.String("username", c.Username),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("send credentials to %s after %d attempts: %w", c.Email, maxRetries, err)
}
