package dto

import "time"

type SetBalanceRequestDTO struct {
	Username string `json:"username" validate:"required"`
	Delta    int64  `json:"delta"`
}

type ManagerBalanceRequestDTO struct {
	Username string `json:"username" validate:"required"`
	Action   string `json:"action"   validate:"required,oneof=add subtract"`
	Amount   int64  `json:"amount"   validate:"required"`
}

type SetRoleRequestDTO struct {
	Username string `json:"username" validate:"required"`
	Role     string `json:"role"     validate:"required"`
}

type UserResponseDTO struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email,omitempty"`
	Role      string    `json:"role"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}
