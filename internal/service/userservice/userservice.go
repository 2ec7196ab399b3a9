package userservice

import (
	"context"

	"github.com/GlebRadaev/tokenwallet/internal/access"
	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/pg"
	"github.com/GlebRadaev/tokenwallet/internal/service/auditservice"
	"go.uber.org/zap"
)

type Repo interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateRole(ctx context.Context, id int, role domain.Role) error
	List(ctx context.Context) ([]domain.User, error)
}

type Auditor interface {
	Record(ctx context.Context, action, resource string, actor domain.Actor, meta string) error
}

type Service struct {
	repo      Repo
	audit     Auditor
	txManager pg.TXManager
}

func New(repo Repo, audit Auditor, txManager pg.TXManager) *Service {
	return &Service{
		repo:      repo,
		audit:     audit,
		txManager: txManager,
	}
}

// SetRole promotes or demotes a user between user and manager. Nobody may
// change their own role and the admin role can't be granted this way.
func (s *Service) SetRole(ctx context.Context, actor domain.Actor, username, roleName string) (*domain.User, error) {
	if err := access.Require(actor, access.OpChangeRole); err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(roleName)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleUser && role != domain.RoleManager {
		return nil, domain.ErrValidation("Invalid role: %q", roleName)
	}

	target, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrNotFound("User not found")
	}
	if target.ID == actor.ID {
		if err := access.Require(actor, access.OpChangeOwnRole); err != nil {
			return nil, err
		}
	}
	if target.Role == domain.RoleAdmin {
		return nil, domain.ErrAccessDenied("Administrator roles can't be changed")
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateRole(ctx, target.ID, role); err != nil {
			return err
		}
		return s.audit.Record(ctx, auditservice.ActionSetRole, target.Username, actor, "role="+string(role))
	})
	if err != nil {
		zap.L().Error("failed to change role", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	zap.L().Info("role updated", zap.String("username", username), zap.String("role", string(role)))
	target.Role = role
	return target, nil
}

func (s *Service) List(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := access.Require(actor, access.OpListUsers); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		zap.L().Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}
