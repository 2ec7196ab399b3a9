package transactionrepo

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

func (r *Repository) Create(ctx context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO wallet_transactions (user_id, change_amount, balance_after, performed_by_id, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, tr.UserID, tr.ChangeAmount, tr.BalanceAfter, tr.PerformedByID, tr.Reason).
		Scan(&tr.ID, &tr.CreatedAt)
	if err != nil {
		zap.L().Error("can't save wallet transaction", zap.Error(err))
		return nil, err
	}
	return tr, nil
}

// ListByUserID returns the user's history, newest first.
func (r *Repository) ListByUserID(ctx context.Context, userID int) ([]domain.Transaction, error) {
	query := `
        SELECT id, user_id, change_amount, balance_after, performed_by_id, reason, created_at
        FROM wallet_transactions
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to fetch wallet transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var tr domain.Transaction
		err := rows.Scan(&tr.ID, &tr.UserID, &tr.ChangeAmount, &tr.BalanceAfter, &tr.PerformedByID, &tr.Reason, &tr.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan wallet transaction row", zap.Error(err))
			return nil, err
		}
		transactions = append(transactions, tr)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	return transactions, nil
}
