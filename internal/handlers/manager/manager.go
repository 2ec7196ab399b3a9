package manager

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/dto"
	"github.com/GlebRadaev/tokenwallet/internal/handlers/respond"
	"github.com/GlebRadaev/tokenwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/tokenwallet/pkg/utils"
	"github.com/GlebRadaev/tokenwallet/pkg/validate"
)

type Ledger interface {
	AdjustBounded(ctx context.Context, actor domain.Actor, username, action string, amount int64) (*ledgerservice.Result, error)
}

type ManagerHandler struct {
	ledger Ledger
}

func New(ledger Ledger) *ManagerHandler {
	return &ManagerHandler{ledger: ledger}
}

// AdjustBalance godoc
//
//	@Summary		Add or subtract tokens
//	@Description	Managers and admins move a user's balance by a bounded positive amount.
//	@Tags			Manager
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ManagerBalanceRequestDTO	true	"Target, action and amount"
//	@Success		200		{object}	dto.BalanceChangeResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		402		{object}	utils.Response	"Insufficient funds"
//	@Failure		403		{object}	utils.Response	"Access denied"
//	@Failure		404		{object}	utils.Response	"User not found"
//	@Failure		422		{object}	utils.Response	"Amount out of range"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/manager/balance [post]
func (h *ManagerHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	actor, _ := domain.ActorFromContext(r.Context())

	var req dto.ManagerBalanceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.ledger.AdjustBounded(r.Context(), actor, req.Username, req.Action, req.Amount)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Result(w, res)
}
