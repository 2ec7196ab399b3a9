package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	columns = []string{"id", "username", "email", "password_hash", "role", "balance", "created_at"}
	created = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func strPtr(s string) *string { return &s }

func TestRepository_FindByUsername(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta("SELECT id, username, email, password_hash, role, balance, created_at FROM users WHERE username = $1")

	tests := []struct {
		name      string
		username  string
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name:     "User found",
			username: "alice",
			mockSetup: func() {
				rows := pgxmock.NewRows(columns).
					AddRow(1, "alice", strPtr("alice@example.com"), "hash", domain.RoleUser, int64(40), created)
				mock.ExpectQuery(query).WithArgs("alice").WillReturnRows(rows)
			},
			result: &domain.User{
				ID:           1,
				Username:     "alice",
				Email:        strPtr("alice@example.com"),
				PasswordHash: "hash",
				Role:         domain.RoleUser,
				Balance:      40,
				CreatedAt:    created,
			},
		},
		{
			name:     "User not found",
			username: "ghost",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name:     "Database error",
			username: "alice",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("alice").WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByUsername(context.Background(), tt.username)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)

	rows := pgxmock.NewRows(columns).
		AddRow(3, "bob", nil, "hash", domain.RoleManager, int64(0), created)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs(3).WillReturnRows(rows)

	user, err := repo.FindByID(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Nil(t, user.Email)
	assert.Equal(t, domain.RoleManager, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LockByID(t *testing.T) {
	repo, mock := NewMock(t)

	rows := pgxmock.NewRows(columns).
		AddRow(5, "carol", nil, "hash", domain.RoleUser, int64(12), created)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR UPDATE")).WithArgs(5).WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR UPDATE")).WithArgs(6).WillReturnError(pgx.ErrNoRows)

	user, err := repo.LockByID(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), user.Balance)

	user, err = repo.LockByID(context.Background(), 6)
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	erinEmail := "erin@example.com"
	query := regexp.QuoteMeta(`
		INSERT INTO users (username, email, password_hash, role, balance)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id, created_at
	`)

	tests := []struct {
		name           string
		user           *domain.User
		mockSetup      func()
		expectErr      bool
		expectConflict string
	}{
		{
			name: "Create user successfully",
			user: &domain.User{Username: "dave", PasswordHash: "hash", Role: domain.RoleUser},
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("dave", (*string)(nil), "hash", "user").
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(9, created))
			},
		},
		{
			name: "Duplicate username",
			user: &domain.User{Username: "dave", PasswordHash: "hash", Role: domain.RoleUser},
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("dave", (*string)(nil), "hash", "user").
					WillReturnError(errors.New("duplicate key value violates unique constraint"))
			},
			expectErr: true,
		},
		{
			name: "Username taken by a concurrent insert",
			user: &domain.User{Username: "dave", PasswordHash: "hash", Role: domain.RoleUser},
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("dave", (*string)(nil), "hash", "user").
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
			},
			expectErr:      true,
			expectConflict: "Username already exists",
		},
		{
			name: "Email taken by a concurrent insert",
			user: &domain.User{Username: "erin", Email: &erinEmail, PasswordHash: "hash", Role: domain.RoleUser},
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("erin", &erinEmail, "hash", "user").
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
			},
			expectErr:      true,
			expectConflict: "Email already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Create(context.Background(), tt.user)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, result)
				var conflict *domain.ConflictError
				if tt.expectConflict != "" {
					require.True(t, errors.As(err, &conflict))
					assert.Equal(t, tt.expectConflict, conflict.Message)
				} else {
					assert.False(t, errors.As(err, &conflict))
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 9, result.ID)
				assert.Equal(t, created, result.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_UpdateBalance(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta("UPDATE users SET balance = $1 WHERE id = $2")

	mock.ExpectExec(query).WithArgs(int64(70), 1).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.UpdateBalance(context.Background(), 1, 70))

	mock.ExpectExec(query).WithArgs(int64(-1), 1).WillReturnError(errors.New("violates check constraint"))
	assert.Error(t, repo.UpdateBalance(context.Background(), 1, -1))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateRole(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = $1 WHERE id = $2")).
		WithArgs("manager", 4).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.UpdateRole(context.Background(), 4, domain.RoleManager))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta("SELECT id, username, email, password_hash, role, balance, created_at FROM users ORDER BY id")

	rows := pgxmock.NewRows(columns).
		AddRow(1, "admin", strPtr("admin@example.com"), "h1", domain.RoleAdmin, int64(0), created).
		AddRow(2, "alice", nil, "h2", domain.RoleUser, int64(15), created)
	mock.ExpectQuery(query).WillReturnRows(rows)

	users, err := repo.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "alice", users[1].Username)
	assert.Equal(t, int64(15), users[1].Balance)

	mock.ExpectQuery(query).WillReturnError(errors.New("database error"))
	_, err = repo.List(context.Background())
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ExistingUsernames(t *testing.T) {
	repo, mock := NewMock(t)

	existing, err := repo.ExistingUsernames(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, existing)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT username FROM users WHERE username = ANY($1)")).
		WithArgs([]string{"alice", "newbie"}).
		WillReturnRows(pgxmock.NewRows([]string{"username"}).AddRow("alice"))

	existing, err = repo.ExistingUsernames(context.Background(), []string{"alice", "newbie"})
	assert.NoError(t, err)
	assert.True(t, existing["alice"])
	assert.False(t, existing["newbie"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
