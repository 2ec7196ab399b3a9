package memory

import (
	"context"
	"time"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
)

type TransactionRepo struct {
	store *Store
}

func (r *TransactionRepo) Create(ctx context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
	defer r.store.lock(ctx)()
	st := &r.store.st
	if _, ok := st.users[tr.UserID]; !ok {
		return nil, domain.ErrNotFound("User not found")
	}
	if tr.BalanceAfter < 0 {
		return nil, domain.ErrValidation("balance_after must not be negative")
	}
	st.lastTxID++
	tr.ID = st.lastTxID
	tr.CreatedAt = time.Now()
	st.transactions = append(st.transactions, *tr)
	return tr, nil
}

// ListByUserID returns the user's history, newest first.
func (r *TransactionRepo) ListByUserID(ctx context.Context, userID int) ([]domain.Transaction, error) {
	defer r.store.lock(ctx)()
	var out []domain.Transaction
	txs := r.store.st.transactions
	for i := len(txs) - 1; i >= 0; i-- {
		if txs[i].UserID == userID {
			out = append(out, txs[i])
		}
	}
	return out, nil
}

type AuditRepo struct {
	store *Store
}

func (r *AuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) (*domain.AuditEntry, error) {
	defer r.store.lock(ctx)()
	st := &r.store.st
	st.lastAuditID++
	entry.ID = st.lastAuditID
	entry.CreatedAt = time.Now()
	st.audit = append(st.audit, *entry)
	return entry, nil
}

// Entries returns a copy of the audit trail in insertion order.
func (r *AuditRepo) Entries(ctx context.Context) []domain.AuditEntry {
	defer r.store.lock(ctx)()
	return append([]domain.AuditEntry(nil), r.store.st.audit...)
}
