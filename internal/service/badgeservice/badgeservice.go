package badgeservice

import (
	"context"
	"fmt"

	"github.com/GlebRadaev/tokenwallet/internal/badgecache"
	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/metrics"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const DefaultSize = 256

type Cache interface {
	Get(ctx context.Context, userID int) (*badgecache.Entry, error)
	Set(ctx context.Context, userID int, e badgecache.Entry) error
}

type Service struct {
	cache   Cache
	size    int
	metrics *metrics.Metrics
}

func New(cache Cache, size int, m *metrics.Metrics) *Service {
	if size <= 0 {
		size = DefaultSize
	}
	return &Service{
		cache:   cache,
		size:    size,
		metrics: m,
	}
}

// Badge returns the PNG QR code encoding the user's username. The image
// depends on the username alone, so a cached copy is reused until the
// username it was rendered for no longer matches.
func (s *Service) Badge(ctx context.Context, user *domain.User) ([]byte, error) {
	entry, err := s.cache.Get(ctx, user.ID)
	if err != nil {
		zap.L().Warn("badge cache read failed", zap.Int("user_id", user.ID), zap.Error(err))
	}
	if entry != nil && entry.Username == user.Username {
		s.metrics.BadgeLookups.WithLabelValues("hit").Inc()
		return entry.PNG, nil
	}
	s.metrics.BadgeLookups.WithLabelValues("miss").Inc()

	png, err := Render(user.Username, s.size)
	if err != nil {
		zap.L().Error("failed to render badge", zap.Int("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	if err := s.cache.Set(ctx, user.ID, badgecache.Entry{Username: user.Username, PNG: png}); err != nil {
		zap.L().Warn("badge cache write failed", zap.Int("user_id", user.ID), zap.Error(err))
	}
	return png, nil
}

func Render(username string, size int) ([]byte, error) {
	png, err := qrcode.Encode(username, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
