package ledgerservice

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/metrics"
	"github.com/GlebRadaev/tokenwallet/internal/pg"
	"github.com/GlebRadaev/tokenwallet/internal/service/auditservice"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	users        *MockUserRepo
	transactions *MockTransactionRepo
	audit        *MockAuditor
	tx           *pg.MockTXManager
	metrics      *metrics.Metrics
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		users:        NewMockUserRepo(ctrl),
		transactions: NewMockTransactionRepo(ctrl),
		audit:        NewMockAuditor(ctrl),
		tx:           pg.NewMockTXManager(ctrl),
		metrics:      metrics.New(),
	}
	m.tx.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error { return fn(ctx) }).
		AnyTimes()
	return New(m.users, m.transactions, m.audit, m.tx, m.metrics, 100), m
}

var (
	admin   = domain.Actor{ID: 1, Username: "admin", Role: domain.RoleAdmin}
	manager = domain.Actor{ID: 2, Username: "manny", Role: domain.RoleManager}
	member  = domain.Actor{ID: 3, Username: "alice", Role: domain.RoleUser}
)

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name          string
		delta         int64
		actor         domain.Actor
		prepareMock   func(m *mocks)
		expectErr     bool
		expectSuccess bool
		expectMessage string
		rejection     Rejection
	}{
		{
			name:  "Deposit is applied",
			delta: 25,
			actor: admin,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice", Balance: 100}, nil)
				m.users.EXPECT().UpdateBalance(gomock.Any(), 3, int64(125)).Return(nil)
				m.transactions.EXPECT().Create(gomock.Any(), &domain.Transaction{
					UserID: 3, ChangeAmount: 25, BalanceAfter: 125, PerformedByID: 1, Reason: "test",
				}).DoAndReturn(func(_ context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
					tr.ID = 10
					return tr, nil
				})
				m.audit.EXPECT().Record(gomock.Any(), auditservice.ActionWalletChange, "alice", admin, "delta=25;after=125").Return(nil)
			},
			expectSuccess: true,
			expectMessage: "Balance updated successfully. New balance: 125",
		},
		{
			name:  "Overdraft is rejected without writes",
			delta: -150,
			actor: admin,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice", Balance: 100}, nil)
			},
			expectMessage: "Insufficient funds. Current balance: 100, attempted deduction: 150",
			rejection:     RejectInsufficientFunds,
		},
		{
			name:  "Credit past the balance limit is rejected",
			delta: math.MaxInt64,
			actor: admin,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice", Balance: 100}, nil)
			},
			expectMessage: "Balance limit exceeded. Current balance: 100, attempted credit: 9223372036854775807",
			rejection:     RejectBalanceOverflow,
		},
		{
			name:  "Credit up to the balance limit is applied",
			delta: math.MaxInt64 - 100,
			actor: admin,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice", Balance: 100}, nil)
				m.users.EXPECT().UpdateBalance(gomock.Any(), 3, int64(math.MaxInt64)).Return(nil)
				m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
					return tr, nil
				})
				m.audit.EXPECT().Record(gomock.Any(), auditservice.ActionWalletChange, "alice", admin, gomock.Any()).Return(nil)
			},
			expectSuccess: true,
			expectMessage: "Balance updated successfully. New balance: 9223372036854775807",
		},
		{
			name:  "Smallest deduction reports its magnitude",
			delta: math.MinInt64,
			actor: admin,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice"}, nil)
			},
			expectMessage: "Insufficient funds. Current balance: 0, attempted deduction: 9223372036854775808",
			rejection:     RejectInsufficientFunds,
		},
		{
			name:  "Unknown user is rejected",
			delta: 5,
			actor: admin,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(nil, nil)
			},
			expectMessage: "User not found",
			rejection:     RejectUserNotFound,
		},
		{
			name:  "System change is attributed to the target",
			delta: 0,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice"}, nil)
				m.users.EXPECT().UpdateBalance(gomock.Any(), 3, int64(0)).Return(nil)
				m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
					assert.Equal(t, 3, tr.PerformedByID)
					return tr, nil
				})
				m.audit.EXPECT().Record(gomock.Any(), auditservice.ActionWalletChange, "alice", domain.Actor{}, "delta=0;after=0").Return(nil)
			},
			expectSuccess: true,
			expectMessage: "Balance updated successfully. New balance: 0",
		},
		{
			name:  "Lock failure propagates",
			delta: 5,
			actor: admin,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(nil, errors.New("lock timeout"))
			},
			expectErr: true,
		},
		{
			name:  "Audit failure aborts the change",
			delta: 5,
			actor: admin,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice"}, nil)
				m.users.EXPECT().UpdateBalance(gomock.Any(), 3, int64(5)).Return(nil)
				m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
					return tr, nil
				})
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			expectErr: true,
		},
		{
			name:  "History insert failure propagates",
			delta: 5,
			actor: admin,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice"}, nil)
				m.users.EXPECT().UpdateBalance(gomock.Any(), 3, int64(5)).Return(nil)
				m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			result, err := service.ApplyDelta(context.Background(), 3, tt.delta, "test", tt.actor)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, result)
				assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.BalanceChanges.WithLabelValues("failed")))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectSuccess, result.Success)
			assert.Equal(t, tt.expectMessage, result.Message)
			assert.Equal(t, tt.rejection, result.Rejection)
			if tt.expectSuccess {
				assert.NotNil(t, result.Transaction)
			} else {
				assert.Nil(t, result.Transaction)
			}
		})
	}
}

func TestAdjust(t *testing.T) {
	t.Run("Admin adjusts by username", func(t *testing.T) {
		service, m := NewMock(t)
		m.users.EXPECT().FindByUsername(gomock.Any(), "alice").Return(&domain.User{ID: 3, Username: "alice"}, nil)
		m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice", Balance: 10}, nil)
		m.users.EXPECT().UpdateBalance(gomock.Any(), 3, int64(5)).Return(nil)
		m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
			assert.Equal(t, ReasonAdminUpdate, tr.Reason)
			return tr, nil
		})
		m.audit.EXPECT().Record(gomock.Any(), auditservice.ActionWalletChange, "alice", admin, "delta=-5;after=5").Return(nil)

		result, err := service.Adjust(context.Background(), admin, "alice", -5)
		require.NoError(t, err)
		assert.True(t, result.Success)
	})

	t.Run("Manager is denied", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Adjust(context.Background(), manager, "alice", 5)
		var denied *domain.AccessDeniedError
		assert.True(t, errors.As(err, &denied))
	})

	t.Run("Unknown username is a rejection", func(t *testing.T) {
		service, m := NewMock(t)
		m.users.EXPECT().FindByUsername(gomock.Any(), "ghost").Return(nil, nil)
		result, err := service.Adjust(context.Background(), admin, "ghost", 5)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, RejectUserNotFound, result.Rejection)
	})
}

func TestAdjustBounded(t *testing.T) {
	tests := []struct {
		name        string
		actor       domain.Actor
		action      string
		amount      int64
		prepareMock func(m *mocks)
		expectErr   interface{}
		expectDelta int64
	}{
		{
			name:   "Manager adds",
			actor:  manager,
			action: ActionAdd,
			amount: 40,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().FindByUsername(gomock.Any(), "alice").Return(&domain.User{ID: 3, Username: "alice"}, nil)
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice", Balance: 10}, nil)
				m.users.EXPECT().UpdateBalance(gomock.Any(), 3, int64(50)).Return(nil)
				m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
					assert.Equal(t, "manager_add", tr.Reason)
					assert.Equal(t, 2, tr.PerformedByID)
					return tr, nil
				})
				m.audit.EXPECT().Record(gomock.Any(), auditservice.ActionWalletChange, "alice", manager, "delta=40;after=50").Return(nil)
			},
		},
		{
			name:   "Admin subtracts",
			actor:  admin,
			action: ActionSubtract,
			amount: 10,
			prepareMock: func(m *mocks) {
				m.users.EXPECT().FindByUsername(gomock.Any(), "alice").Return(&domain.User{ID: 3, Username: "alice"}, nil)
				m.users.EXPECT().LockByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice", Balance: 10}, nil)
				m.users.EXPECT().UpdateBalance(gomock.Any(), 3, int64(0)).Return(nil)
				m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
					assert.Equal(t, "manager_subtract", tr.Reason)
					return tr, nil
				})
				m.audit.EXPECT().Record(gomock.Any(), auditservice.ActionWalletChange, "alice", admin, "delta=-10;after=0").Return(nil)
			},
		},
		{
			name:        "User is denied",
			actor:       member,
			action:      ActionAdd,
			amount:      1,
			prepareMock: func(m *mocks) {},
			expectErr:   &domain.AccessDeniedError{},
		},
		{
			name:        "Amount above bound",
			actor:       manager,
			action:      ActionAdd,
			amount:      101,
			prepareMock: func(m *mocks) {},
			expectErr:   &domain.ValidationError{},
		},
		{
			name:        "Zero amount",
			actor:       manager,
			action:      ActionSubtract,
			amount:      0,
			prepareMock: func(m *mocks) {},
			expectErr:   &domain.ValidationError{},
		},
		{
			name:        "Unknown action",
			actor:       manager,
			action:      "multiply",
			amount:      5,
			prepareMock: func(m *mocks) {},
			expectErr:   &domain.ValidationError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			result, err := service.AdjustBounded(context.Background(), tt.actor, "alice", tt.action, tt.amount)
			switch target := tt.expectErr.(type) {
			case *domain.AccessDeniedError:
				assert.True(t, errors.As(err, &target))
			case *domain.ValidationError:
				assert.True(t, errors.As(err, &target))
			default:
				require.NoError(t, err)
				assert.True(t, result.Success)
			}
		})
	}
}

func TestBalanceAndHistory(t *testing.T) {
	service, m := NewMock(t)
	ctx := context.Background()

	m.users.EXPECT().FindByID(ctx, 3).Return(&domain.User{ID: 3, Balance: 42}, nil)
	balance, err := service.Balance(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance)

	m.users.EXPECT().FindByID(ctx, 4).Return(nil, nil)
	_, err = service.Balance(ctx, 4)
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	history := []domain.Transaction{{ID: 2, UserID: 3}, {ID: 1, UserID: 3}}
	m.transactions.EXPECT().ListByUserID(ctx, 3).Return(history, nil)
	got, err := service.History(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, history, got)

	m.transactions.EXPECT().ListByUserID(ctx, 5).Return(nil, errors.New("database error"))
	_, err = service.History(ctx, 5)
	assert.Error(t, err)
}
