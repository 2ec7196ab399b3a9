// Package memory is an in-process storage backend used for local runs and
// concurrency tests. All transactions are serialised behind one mutex and a
// failed transaction restores the snapshot taken when it began.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/pg"
)

type state struct {
	users        map[int]domain.User
	byName       map[string]int
	transactions []domain.Transaction
	audit        []domain.AuditEntry
	lastUserID   int
	lastTxID     int
	lastAuditID  int
}

func (s *state) clone() state {
	c := *s
	c.users = maps.Clone(s.users)
	c.byName = maps.Clone(s.byName)
	// history slices are append-only, so the copied headers restore them
	return c
}

type Store struct {
	mu sync.Mutex
	st state

	Users        *UserRepo
	Transactions *TransactionRepo
	Audit        *AuditRepo
}

type txKey struct{ store *Store }

func New() *Store {
	s := &Store{
		st: state{
			users:  make(map[int]domain.User),
			byName: make(map[string]int),
		},
	}
	s.Users = &UserRepo{store: s}
	s.Transactions = &TransactionRepo{store: s}
	s.Audit = &AuditRepo{store: s}
	return s
}

func (s *Store) inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{store: s}).(bool)
	return ok
}

// lock acquires the store mutex unless ctx already runs inside one of its
// transactions. The returned func releases whatever was acquired.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Begin satisfies pg.TXManager.
func (s *Store) Begin(ctx context.Context, fn pg.TransactionalFn) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	rollback := func() { s.st = snapshot }

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{store: s}, true)); err != nil {
		rollback()
	}
	return err
}
