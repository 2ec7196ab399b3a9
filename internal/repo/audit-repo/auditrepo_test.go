package auditrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func TestRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()
	repo := New(mock)

	now := time.Now()
	actorID := 1
	actorName := "admin"
	meta := "delta=5;after=5"
	query := regexp.QuoteMeta(`INSERT INTO audit_logs (actor_id, actor_username, action, resource, meta) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`)

	tests := []struct {
		name      string
		entry     *domain.AuditEntry
		mockSetup func()
		expectErr bool
	}{
		{
			name:  "Actor entry",
			entry: &domain.AuditEntry{ActorID: &actorID, ActorUsername: &actorName, Action: "wallet_change", Resource: "alice", Meta: &meta},
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(&actorID, &actorName, "wallet_change", "alice", &meta).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))
			},
		},
		{
			name:  "System entry",
			entry: &domain.AuditEntry{Action: "auth_login_failed", Resource: "mallory"},
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs((*int)(nil), (*string)(nil), "auth_login_failed", "mallory", (*string)(nil)).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(2, now))
			},
		},
		{
			name:  "Database error",
			entry: &domain.AuditEntry{Action: "auth_logout", Resource: "alice"},
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "auth_logout", "alice", pgxmock.AnyArg()).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Create(context.Background(), tt.entry)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, result.ID)
				assert.Equal(t, now, result.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
