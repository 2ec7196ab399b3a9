package mailer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/tokenwallet/internal/metrics"
)

type SyncDispatcher struct {
	sender        Sender
	metrics       *metrics.Metrics
	retryInterval time.Duration
}

func NewSyncDispatcher(sender Sender, m *metrics.Metrics) *SyncDispatcher {
	return &SyncDispatcher{
		sender:        sender,
		metrics:       m,
		retryInterval: retryInterval,
	}
}

func (d *SyncDispatcher) Dispatch(ctx context.Context, c Credentials) error {
	if err := deliver(ctx, d.sender, c, d.retryInterval); err != nil {
		d.metrics.MailDispatched.WithLabelValues("sync", "failed").Inc()
		zap.L().Error("credential mail not delivered", zap.String("username", c.Username), zap.Error(err))
		return err
	}
	d.metrics.MailDispatched.WithLabelValues("sync", "sent").Inc()
	zap.L().Info("credential mail sent", zap.String("username", c.Username))
	return nil
}
