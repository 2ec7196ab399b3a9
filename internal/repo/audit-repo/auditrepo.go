package auditrepo

import (
	"context"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, entry *domain.AuditEntry) (*domain.AuditEntry, error) {
	query := `
		INSERT INTO audit_logs (actor_id, actor_username, action, resource, meta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, entry.ActorID, entry.ActorUsername, entry.Action, entry.Resource, entry.Meta).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		zap.L().Error("can't save audit entry", zap.Error(err))
		return nil, err
	}
	return entry, nil
}
