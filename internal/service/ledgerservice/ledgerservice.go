package ledgerservice

import (
	"context"
	"fmt"
	"math"

	"github.com/GlebRadaev/tokenwallet/internal/access"
	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/metrics"
	"github.com/GlebRadaev/tokenwallet/internal/pg"
	"github.com/GlebRadaev/tokenwallet/internal/service/auditservice"
	"go.uber.org/zap"
)

const (
	ReasonAdminUpdate = "admin_update"
	ReasonAccountInit = "account_init"

	ActionAdd      = "add"
	ActionSubtract = "subtract"
)

type UserRepo interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	LockByID(ctx context.Context, id int) (*domain.User, error)
	UpdateBalance(ctx context.Context, id int, balance int64) error
}

type TransactionRepo interface {
	Create(ctx context.Context, tr *domain.Transaction) (*domain.Transaction, error)
	ListByUserID(ctx context.Context, userID int) ([]domain.Transaction, error)
}

type Auditor interface {
	Record(ctx context.Context, action, resource string, actor domain.Actor, meta string) error
}

// Rejection classifies an expected failure of ApplyDelta.
type Rejection string

const (
	RejectUserNotFound      Rejection = "user_not_found"
	RejectInsufficientFunds Rejection = "insufficient_funds"
	RejectBalanceOverflow   Rejection = "balance_overflow"
)

// Result is the outcome of a balance change. A rejected change is reported
// here with Success false, never as an error.
type Result struct {
	Transaction *domain.Transaction
	Success     bool
	Rejection   Rejection
	Message     string
}

type Service struct {
	users        UserRepo
	transactions TransactionRepo
	audit        Auditor
	txManager    pg.TXManager
	metrics      *metrics.Metrics
	maxAmount    int64
}

func New(users UserRepo, transactions TransactionRepo, audit Auditor, txManager pg.TXManager, m *metrics.Metrics, managerMaxAmount int64) *Service {
	return &Service{
		users:        users,
		transactions: transactions,
		audit:        audit,
		txManager:    txManager,
		metrics:      m,
		maxAmount:    managerMaxAmount,
	}
}

// ApplyDelta is the only writer of user balances. The row lock, the balance
// update, the history row and the audit entry share one transaction. A zero
// actor attributes the change to the target user.
func (s *Service) ApplyDelta(ctx context.Context, targetID int, delta int64, reason string, actor domain.Actor) (*Result, error) {
	var result *Result
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		target, err := s.users.LockByID(ctx, targetID)
		if err != nil {
			return fmt.Errorf("lock user %d: %w", targetID, err)
		}
		if target == nil {
			result = &Result{Rejection: RejectUserNotFound, Message: "User not found"}
			return nil
		}

		if delta > 0 && target.Balance > math.MaxInt64-delta {
			result = &Result{
				Rejection: RejectBalanceOverflow,
				Message:   fmt.Sprintf("Balance limit exceeded. Current balance: %d, attempted credit: %d", target.Balance, delta),
			}
			return nil
		}
		newBalance := target.Balance + delta
		if newBalance < 0 {
			result = &Result{
				Rejection: RejectInsufficientFunds,
				Message:   fmt.Sprintf("Insufficient funds. Current balance: %d, attempted deduction: %d", target.Balance, magnitude(delta)),
			}
			return nil
		}

		if err := s.users.UpdateBalance(ctx, target.ID, newBalance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		performedBy := actor.ID
		if actor.IsSystem() {
			performedBy = target.ID
		}
		tr, err := s.transactions.Create(ctx, &domain.Transaction{
			UserID:        target.ID,
			ChangeAmount:  delta,
			BalanceAfter:  newBalance,
			PerformedByID: performedBy,
			Reason:        reason,
		})
		if err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		meta := fmt.Sprintf("delta=%d;after=%d", delta, newBalance)
		if err := s.audit.Record(ctx, auditservice.ActionWalletChange, target.Username, actor, meta); err != nil {
			return err
		}

		result = &Result{
			Transaction: tr,
			Success:     true,
			Message:     fmt.Sprintf("Balance updated successfully. New balance: %d", newBalance),
		}
		return nil
	})
	if err != nil {
		zap.L().Error("balance change failed", zap.Int("user_id", targetID), zap.Int64("delta", delta), zap.Error(err))
		s.metrics.BalanceChanges.WithLabelValues("failed").Inc()
		return nil, err
	}

	if result.Success {
		s.metrics.BalanceChanges.WithLabelValues("applied").Inc()
		zap.L().Info("balance changed",
			zap.Int("user_id", targetID),
			zap.Int64("delta", delta),
			zap.Int64("balance_after", result.Transaction.BalanceAfter),
			zap.String("reason", reason))
	} else {
		s.metrics.BalanceChanges.WithLabelValues("rejected").Inc()
		zap.L().Info("balance change rejected", zap.Int("user_id", targetID), zap.String("rejection", string(result.Rejection)))
	}
	return result, nil
}

// Adjust applies an arbitrary signed delta on behalf of an administrator.
func (s *Service) Adjust(ctx context.Context, actor domain.Actor, username string, delta int64) (*Result, error) {
	if err := access.Require(actor, access.OpSetBalance); err != nil {
		return nil, err
	}
	return s.applyTo(ctx, actor, username, delta, ReasonAdminUpdate)
}

// AdjustBounded adds or subtracts at most the configured manager amount.
func (s *Service) AdjustBounded(ctx context.Context, actor domain.Actor, username, action string, amount int64) (*Result, error) {
	if err := access.Require(actor, access.OpAdjustBalance); err != nil {
		return nil, err
	}
	if amount < 1 || amount > s.maxAmount {
		return nil, domain.ErrValidation("Amount must be between 1 and %d", s.maxAmount)
	}

	var delta int64
	switch action {
	case ActionAdd:
		delta = amount
	case ActionSubtract:
		delta = -amount
	default:
		return nil, domain.ErrValidation("Invalid action: %q", action)
	}
	return s.applyTo(ctx, actor, username, delta, "manager_"+action)
}

func (s *Service) applyTo(ctx context.Context, actor domain.Actor, username string, delta int64, reason string) (*Result, error) {
	target, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return &Result{Rejection: RejectUserNotFound, Message: "User not found"}, nil
	}
	return s.ApplyDelta(ctx, target.ID, delta, reason, actor)
}

func (s *Service) Balance(ctx context.Context, userID int) (int64, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return 0, err
	}
	if user == nil {
		return 0, domain.ErrNotFound("User not found")
	}
	return user.Balance, nil
}

func (s *Service) History(ctx context.Context, userID int) ([]domain.Transaction, error) {
	history, err := s.transactions.ListByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get wallet history", zap.Error(err))
		return nil, err
	}
	return history, nil
}

// magnitude is |v| without overflowing on math.MinInt64.
func magnitude(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
