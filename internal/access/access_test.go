package access

import (
	"errors"
	"testing"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		op      Operation
		admin   bool
		manager bool
		user    bool
	}{
		{op: OpSetBalance, admin: true},
		{op: OpAdjustBalance, admin: true, manager: true},
		{op: OpChangeOwnRole},
		{op: OpChangeRole, admin: true},
		{op: OpBulkProvision, admin: true},
		{op: OpListUsers, admin: true},
		{op: Operation("unknown")},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.admin, Authorize(domain.RoleAdmin, tt.op))
			assert.Equal(t, tt.manager, Authorize(domain.RoleManager, tt.op))
			assert.Equal(t, tt.user, Authorize(domain.RoleUser, tt.op))
			assert.False(t, Authorize(domain.Role(""), tt.op))
		})
	}
}

func TestRequire(t *testing.T) {
	assert.NoError(t, Require(domain.Actor{ID: 1, Role: domain.RoleAdmin}, OpBulkProvision))

	err := Require(domain.Actor{ID: 2, Role: domain.RoleManager}, OpSetBalance)
	var denied *domain.AccessDeniedError
	assert.True(t, errors.As(err, &denied))
	assert.Equal(t, "Access denied", denied.Message)
}
