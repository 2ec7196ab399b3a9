// Package access holds the role policy for every privileged wallet operation.
package access

import "github.com/GlebRadaev/tokenwallet/internal/domain"

type Operation string

const (
	OpSetBalance    Operation = "set_balance"
	OpAdjustBalance Operation = "adjust_balance"
	OpChangeOwnRole Operation = "change_own_role"
	OpChangeRole    Operation = "change_role"
	OpBulkProvision Operation = "bulk_provision"
	OpListUsers     Operation = "list_users"
)

// policy maps each operation to the roles allowed to perform it.
// An operation with no entry is denied to everyone.
var policy = map[Operation][]domain.Role{
	OpSetBalance:    {domain.RoleAdmin},
	OpAdjustBalance: {domain.RoleAdmin, domain.RoleManager},
	OpChangeOwnRole: nil,
	OpChangeRole:    {domain.RoleAdmin},
	OpBulkProvision: {domain.RoleAdmin},
	OpListUsers:     {domain.RoleAdmin},
}

func Authorize(role domain.Role, op Operation) bool {
	for _, allowed := range policy[op] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Require returns an *domain.AccessDeniedError when the actor may not perform op.
func Require(actor domain.Actor, op Operation) error {
	if Authorize(actor.Role, op) {
		return nil
	}
	return domain.ErrAccessDenied("Access denied")
}
