package dto

import "time"

type BalanceResponseDTO struct {
	Balance int64 `json:"balance"`
}

type TransactionResponseDTO struct {
	ID            int       `json:"id"`
	ChangeAmount  int64     `json:"change_amount"`
	BalanceAfter  int64     `json:"balance_after"`
	PerformedByID int       `json:"performed_by_id"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

type BalanceChangeResponseDTO struct {
	Message string `json:"message"`
	Balance int64  `json:"balance"`
}
