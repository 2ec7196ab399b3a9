package authservice

import (
	"context"
	"errors"
	"time"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/pg"
	"github.com/GlebRadaev/tokenwallet/internal/service/auditservice"
	"github.com/GlebRadaev/tokenwallet/pkg/auth"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Repo interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

type Auditor interface {
	Record(ctx context.Context, action, resource string, actor domain.Actor, meta string) error
}

type Service struct {
	userRepo    Repo
	audit       Auditor
	txManager   pg.TXManager
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
	tokenTTL    time.Duration
}

func New(repo Repo, audit Auditor, txManager pg.TXManager, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface, tokenTTL time.Duration) *Service {
	return &Service{
		userRepo:    repo,
		audit:       audit,
		txManager:   txManager,
		hashService: hashService,
		jwtService:  jwtService,
		tokenTTL:    tokenTTL,
	}
}

func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	existingUser, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if existingUser != nil {
		zap.L().Info("user already exists", zap.String("username", username))
		return nil, domain.ErrConflict("Username already exists")
	}
	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password: ", zap.Error(err))
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         domain.RoleUser,
	}
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.audit.Record(ctx, auditservice.ActionRegister, user.Username, domain.ActorOf(user), "")
	})
	if err != nil {
		zap.L().Error("can't create user: ", zap.Error(err))
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("username", username))
	return user, nil
}

// Authenticate checks the credentials and records the attempt either way.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if user == nil || !s.hashService.ComparePassword(user.PasswordHash, password) {
		zap.L().Info("invalid credentials", zap.String("username", username))
		if err := s.audit.Record(ctx, auditservice.ActionLoginFailed, username, domain.Actor{}, ""); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}
	if err := s.audit.Record(ctx, auditservice.ActionLogin, user.Username, domain.ActorOf(user), ""); err != nil {
		return nil, err
	}
	zap.L().Info("user successfully authenticated", zap.String("username", username))
	return user, nil
}

func (s *Service) Logout(ctx context.Context, actor domain.Actor) error {
	return s.audit.Record(ctx, auditservice.ActionLogout, actor.Username, actor, "")
}

func (s *Service) GenerateToken(userID int) (string, error) {
	expirationTime := time.Now().Add(s.tokenTTL)

	token, err := s.jwtService.GenerateJWT(userID, expirationTime)
	if err != nil {
		zap.L().Error("can't generate token: ", zap.Error(err))
		return "", err
	}
	return token, nil
}

func (s *Service) FindByID(ctx context.Context, id int) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// SeedAdmin creates the configured administrator unless the username is taken.
func (s *Service) SeedAdmin(ctx context.Context, username, password, email string) error {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         domain.RoleAdmin,
	}
	if email != "" {
		admin.Email = &email
	}
	if _, err := s.userRepo.Create(ctx, admin); err != nil {
		zap.L().Error("can't seed admin", zap.Error(err))
		return err
	}
	zap.L().Info("admin account created", zap.String("username", username))
	return nil
}
