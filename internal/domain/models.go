package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// ParseRole accepts the lower-case role names stored in the users table.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleManager, RoleUser:
		return r, nil
	default:
		return "", ErrValidation("Invalid role: %q", s)
	}
}

type User struct {
	ID           int       `db:"id"`
	Username     string    `db:"username"`
	Email        *string   `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	Balance      int64     `db:"balance"`
	CreatedAt    time.Time `db:"created_at"`
}

// Transaction is one immutable row of a user's wallet history.
type Transaction struct {
	ID            int       `db:"id"`
	UserID        int       `db:"user_id"`
	ChangeAmount  int64     `db:"change_amount"`
	BalanceAfter  int64     `db:"balance_after"`
	PerformedByID int       `db:"performed_by_id"`
	Reason        string    `db:"reason"`
	CreatedAt     time.Time `db:"created_at"`
}

type AuditEntry struct {
	ID            int       `db:"id"`
	ActorID       *int      `db:"actor_id"`
	ActorUsername *string   `db:"actor_username"`
	Action        string    `db:"action"`
	Resource      string    `db:"resource"`
	Meta          *string   `db:"meta"`
	CreatedAt     time.Time `db:"created_at"`
}

// Actor is the authenticated identity performing an operation.
// The zero value stands for the system itself.
type Actor struct {
	ID       int
	Username string
	Role     Role
}

func (a Actor) IsSystem() bool {
	return a.ID == 0
}

func ActorOf(u *User) Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}

// Participant is one parsed row of a bulk provisioning upload.
type Participant struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Exists   bool   `json:"exists"`
}
