package auditservice

import (
	"context"
	"fmt"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"go.uber.org/zap"
)

const (
	ActionWalletChange   = "wallet_change"
	ActionSetRole        = "admin_set_role"
	ActionBulkImport     = "admin_bulk_import"
	ActionLogin          = "auth_login"
	ActionLoginFailed    = "auth_login_failed"
	ActionRegister       = "auth_register"
	ActionLogout         = "auth_logout"
	ActionBadgeGenerated = "qr_generated"
)

type Repo interface {
	Create(ctx context.Context, entry *domain.AuditEntry) (*domain.AuditEntry, error)
}

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{
		repo: repo,
	}
}

// Record appends one audit entry. When ctx carries a transaction the entry
// commits or rolls back with it, so a failed write aborts the caller.
func (s *Service) Record(ctx context.Context, action, resource string, actor domain.Actor, meta string) error {
	entry := &domain.AuditEntry{
		Action:   action,
		Resource: resource,
	}
	if !actor.IsSystem() {
		id, name := actor.ID, actor.Username
		entry.ActorID = &id
		entry.ActorUsername = &name
	}
	if meta != "" {
		entry.Meta = &meta
	}

	if _, err := s.repo.Create(ctx, entry); err != nil {
		zap.L().Error("failed to record audit entry", zap.String("action", action), zap.Error(err))
		return fmt.Errorf("record %s audit: %w", action, err)
	}
	return nil
}
