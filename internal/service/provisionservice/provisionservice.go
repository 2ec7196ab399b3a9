package provisionservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/tokenwallet/internal/access"
	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/mailer"
	"github.com/GlebRadaev/tokenwallet/internal/metrics"
	"github.com/GlebRadaev/tokenwallet/internal/pg"
	"github.com/GlebRadaev/tokenwallet/internal/service/auditservice"
	"github.com/GlebRadaev/tokenwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/tokenwallet/pkg/auth"
)

const defaultWorkers = 4

type UserRepo interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	ExistingUsernames(ctx context.Context, usernames []string) (map[string]bool, error)
}

type Ledger interface {
	ApplyDelta(ctx context.Context, targetID int, delta int64, reason string, actor domain.Actor) (*ledgerservice.Result, error)
}

type Badges interface {
	Badge(ctx context.Context, user *domain.User) ([]byte, error)
}

type Auditor interface {
	Record(ctx context.Context, action, resource string, actor domain.Actor, meta string) error
}

// Report summarises one confirmed import.
type Report struct {
	Created    int      `json:"created"`
	EmailsSent int      `json:"emails_sent"`
	Warnings   []string `json:"warnings,omitempty"`
}

type Service struct {
	users      UserRepo
	ledger     Ledger
	badges     Badges
	audit      Auditor
	hasher     auth.HashServiceInterface
	dispatcher mailer.Dispatcher
	txManager  pg.TXManager
	metrics    *metrics.Metrics
	workers    int
	digits     func() string
}

func New(
	users UserRepo,
	ledger Ledger,
	badges Badges,
	audit Auditor,
	hasher auth.HashServiceInterface,
	dispatcher mailer.Dispatcher,
	txManager pg.TXManager,
	m *metrics.Metrics,
	workers int,
) *Service {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Service{
		users:      users,
		ledger:     ledger,
		badges:     badges,
		audit:      audit,
		hasher:     hasher,
		dispatcher: dispatcher,
		txManager:  txManager,
		metrics:    m,
		workers:    workers,
		digits:     RandomDigits,
	}
}

// Preview parses an upload and flags usernames that are already taken,
// including repeats inside the same file.
func (s *Service) Preview(ctx context.Context, actor domain.Actor, filename string, r io.Reader) ([]domain.Participant, error) {
	if err := access.Require(actor, access.OpBulkProvision); err != nil {
		return nil, err
	}
	participants, err := Parse(filename, r, s.digits)
	if err != nil {
		return nil, err
	}
	if err := s.markExisting(ctx, participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (s *Service) markExisting(ctx context.Context, participants []domain.Participant) error {
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.Username)
	}
	existing, err := s.users.ExistingUsernames(ctx, names)
	if err != nil {
		zap.L().Error("failed to check existing usernames", zap.Error(err))
		return err
	}

	seen := make(map[string]bool, len(participants))
	for i := range participants {
		name := participants[i].Username
		participants[i].Exists = existing[name] || seen[name]
		seen[name] = true
	}
	return nil
}

// Confirm creates every participant not flagged as existing. Failures for a
// single row become warnings; only the final audit write is fatal.
func (s *Service) Confirm(ctx context.Context, actor domain.Actor, participants []domain.Participant) (*Report, error) {
	if err := access.Require(actor, access.OpBulkProvision); err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, domain.ErrValidation("No participants data found")
	}

	pending := make([]domain.Participant, 0, len(participants))
	for _, p := range participants {
		if p.Username == "" || p.Password == "" {
			continue
		}
		p.Exists = false
		pending = append(pending, p)
	}
	// the preview may be stale, so existence is checked again
	if err := s.markExisting(ctx, pending); err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		report Report
	)
	warn := func(format string, args ...any) {
		mu.Lock()
		report.Warnings = append(report.Warnings, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, p := range pending {
		if p.Exists {
			continue
		}
		p := p
		g.Go(func() error {
			created, sent := s.provision(ctx, actor, p, warn)
			mu.Lock()
			if created {
				report.Created++
			}
			if sent {
				report.EmailsSent++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(report.Warnings)

	s.metrics.UsersProvisioned.Add(float64(report.Created))
	meta := fmt.Sprintf("created=%d, emails_sent=%d", report.Created, report.EmailsSent)
	if err := s.audit.Record(ctx, auditservice.ActionBulkImport, "users", actor, meta); err != nil {
		return nil, err
	}

	zap.L().Info("bulk import finished",
		zap.Int("created", report.Created),
		zap.Int("emails_sent", report.EmailsSent),
		zap.Int("warnings", len(report.Warnings)))
	return &report, nil
}

func (s *Service) provision(ctx context.Context, actor domain.Actor, p domain.Participant, warn func(string, ...any)) (created, sent bool) {
	hash, err := s.hasher.HashPassword(p.Password)
	if err != nil {
		zap.L().Error("failed to hash password", zap.String("username", p.Username), zap.Error(err))
		warn("Failed to create %s", p.Username)
		return false, false
	}

	user := &domain.User{Username: p.Username, PasswordHash: hash, Role: domain.RoleUser}
	if p.Email != "" {
		email := p.Email
		user.Email = &email
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.users.Create(ctx, user); err != nil {
			return err
		}
		res, err := s.ledger.ApplyDelta(ctx, user.ID, 0, ledgerservice.ReasonAccountInit, actor)
		if err != nil {
			return err
		}
		if !res.Success {
			return errors.New(res.Message)
		}
		return nil
	})
	if err != nil {
		zap.L().Error("failed to provision user", zap.String("username", p.Username), zap.Error(err))
		warn("Failed to create %s", p.Username)
		return false, false
	}

	if _, err := s.badges.Badge(ctx, user); err != nil {
		zap.L().Error("failed to generate badge", zap.String("username", p.Username), zap.Error(err))
		warn("Failed to generate badge for %s", p.Username)
	} else if err := s.audit.Record(ctx, auditservice.ActionBadgeGenerated, user.Username, actor, ""); err != nil {
		warn("Failed to generate badge for %s", p.Username)
	}

	if p.Email == "" {
		return true, false
	}
	err = s.dispatcher.Dispatch(ctx, mailer.Credentials{Email: p.Email, Username: p.Username, Password: p.Password})
	if err != nil {
		warn("Failed to send email to %s", p.Email)
		return true, false
	}
	return true, true
}
