package repo

import (
	"github.com/GlebRadaev/tokenwallet/internal/pg"
	auditrepo "github.com/GlebRadaev/tokenwallet/internal/repo/audit-repo"
	"github.com/GlebRadaev/tokenwallet/internal/repo/memory"
	transactionrepo "github.com/GlebRadaev/tokenwallet/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/tokenwallet/internal/repo/user-repo"
	"github.com/GlebRadaev/tokenwallet/internal/service/auditservice"
	"github.com/GlebRadaev/tokenwallet/internal/service/authservice"
	"github.com/GlebRadaev/tokenwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/tokenwallet/internal/service/provisionservice"
	"github.com/GlebRadaev/tokenwallet/internal/service/userservice"
)

// UserRepo is the union of what the services need from the users table.
type UserRepo interface {
	authservice.Repo
	ledgerservice.UserRepo
	userservice.Repo
	provisionservice.UserRepo
}

type Repositories struct {
	UserRepo        UserRepo
	TransactionRepo ledgerservice.TransactionRepo
	AuditRepo       auditservice.Repo
	TXManager       pg.TXManager
}

// New builds the postgres repositories. Queries issued inside
// TXManager.Begin run on that transaction.
func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	db := pg.New(conn)

	return &Repositories{
		UserRepo:        userrepo.New(db),
		TransactionRepo: transactionrepo.New(db),
		AuditRepo:       auditrepo.New(db),
		TXManager:       txManager,
	}
}

func NewMemory() *Repositories {
	store := memory.New()

	return &Repositories{
		UserRepo:        store.Users,
		TransactionRepo: store.Transactions,
		AuditRepo:       store.Audit,
		TXManager:       store,
	}
}
