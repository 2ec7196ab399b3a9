package repo

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/tokenwallet/internal/pg"
	auditrepo "github.com/GlebRadaev/tokenwallet/internal/repo/audit-repo"
	"github.com/GlebRadaev/tokenwallet/internal/repo/memory"
	transactionrepo "github.com/GlebRadaev/tokenwallet/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/tokenwallet/internal/repo/user-repo"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	ctrl := gomock.NewController(t)
	mockDB, err := pgxmock.NewPool()
	mockTxManager := pg.NewMockTXManager(ctrl)
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	defer mockDB.Close()

	return repo, mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.NotNil(t, repo.TXManager)
	assert.IsType(t, &userrepo.Repository{}, repo.UserRepo)
	assert.IsType(t, &transactionrepo.Repository{}, repo.TransactionRepo)
	assert.IsType(t, &auditrepo.Repository{}, repo.AuditRepo)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}

func TestNewMemory(t *testing.T) {
	repo := NewMemory()

	assert.IsType(t, &memory.UserRepo{}, repo.UserRepo)
	assert.IsType(t, &memory.TransactionRepo{}, repo.TransactionRepo)
	assert.IsType(t, &memory.AuditRepo{}, repo.AuditRepo)
	assert.IsType(t, &memory.Store{}, repo.TXManager)
}
