package service

import (
	"time"

	"github.com/GlebRadaev/tokenwallet/internal/mailer"
	"github.com/GlebRadaev/tokenwallet/internal/metrics"
	"github.com/GlebRadaev/tokenwallet/internal/repo"
	"github.com/GlebRadaev/tokenwallet/internal/service/auditservice"
	"github.com/GlebRadaev/tokenwallet/internal/service/authservice"
	"github.com/GlebRadaev/tokenwallet/internal/service/badgeservice"
	"github.com/GlebRadaev/tokenwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/tokenwallet/internal/service/provisionservice"
	"github.com/GlebRadaev/tokenwallet/internal/service/userservice"
	"github.com/GlebRadaev/tokenwallet/pkg/auth"
)

// Deps are the collaborators that do not come from storage.
type Deps struct {
	Hasher           auth.HashServiceInterface
	Tokens           auth.JWTServiceInterface
	TokenTTL         time.Duration
	BadgeCache       badgeservice.Cache
	BadgeSize        int
	Dispatcher       mailer.Dispatcher
	Metrics          *metrics.Metrics
	ManagerMaxAmount int64
	ImportWorkers    int
}

type Services struct {
	AuditService     *auditservice.Service
	AuthService      *authservice.Service
	LedgerService    *ledgerservice.Service
	UserService      *userservice.Service
	BadgeService     *badgeservice.Service
	ProvisionService *provisionservice.Service
}

func New(repos *repo.Repositories, deps Deps) *Services {
	auditService := auditservice.New(repos.AuditRepo)
	authService := authservice.New(repos.UserRepo, auditService, repos.TXManager, deps.Hasher, deps.Tokens, deps.TokenTTL)
	ledgerService := ledgerservice.New(repos.UserRepo, repos.TransactionRepo, auditService, repos.TXManager, deps.Metrics, deps.ManagerMaxAmount)
	userService := userservice.New(repos.UserRepo, auditService, repos.TXManager)
	badgeService := badgeservice.New(deps.BadgeCache, deps.BadgeSize, deps.Metrics)
	provisionService := provisionservice.New(
		repos.UserRepo,
		ledgerService,
		badgeService,
		auditService,
		deps.Hasher,
		deps.Dispatcher,
		repos.TXManager,
		deps.Metrics,
		deps.ImportWorkers,
	)

	return &Services{
		AuditService:     auditService,
		AuthService:      authService,
		LedgerService:    ledgerService,
		UserService:      userService,
		BadgeService:     badgeService,
		ProvisionService: provisionService,
	}
}
