package wallet

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/dto"
	"github.com/GlebRadaev/tokenwallet/internal/handlers/respond"
	"github.com/GlebRadaev/tokenwallet/pkg/utils"
	"go.uber.org/zap"
)

type Ledger interface {
	Balance(ctx context.Context, userID int) (int64, error)
	History(ctx context.Context, userID int) ([]domain.Transaction, error)
}

type Badges interface {
	Badge(ctx context.Context, user *domain.User) ([]byte, error)
}

type WalletHandler struct {
	ledger Ledger
	badges Badges
}

func New(ledger Ledger, badges Badges) *WalletHandler {
	return &WalletHandler{
		ledger: ledger,
		badges: badges,
	}
}

// GetBalance godoc
//
//	@Summary		Get current balance
//	@Description	Return the token balance of the authenticated user.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	actor, _ := domain.ActorFromContext(r.Context())

	balance, err := h.ledger.Balance(r.Context(), actor.ID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{Balance: balance})
}

// GetTransactions godoc
//
//	@Summary		Get wallet history
//	@Description	Return every balance change of the authenticated user, newest first.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.TransactionResponseDTO
//	@Success		204	{string}	string			"No transactions"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/transactions [get]
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	actor, _ := domain.ActorFromContext(r.Context())

	history, err := h.ledger.History(r.Context(), actor.ID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if len(history) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]dto.TransactionResponseDTO, len(history))
	for i, tr := range history {
		resp[i] = dto.TransactionResponseDTO{
			ID:            tr.ID,
			ChangeAmount:  tr.ChangeAmount,
			BalanceAfter:  tr.BalanceAfter,
			PerformedByID: tr.PerformedByID,
			Reason:        tr.Reason,
			CreatedAt:     tr.CreatedAt,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GetBadge godoc
//
//	@Summary		Get identity badge
//	@Description	Return a PNG QR code encoding the username of the authenticated user.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		png
//	@Success		200	{file}		binary
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet/badge [get]
func (h *WalletHandler) GetBadge(w http.ResponseWriter, r *http.Request) {
	actor, _ := domain.ActorFromContext(r.Context())

	png, err := h.badges.Badge(r.Context(), &domain.User{ID: actor.ID, Username: actor.Username})
	if err != nil {
		respond.Error(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		zap.L().Error("failed to write badge", zap.Error(err))
	}
}
