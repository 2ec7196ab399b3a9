package dashboard

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/dto"
	"github.com/GlebRadaev/tokenwallet/internal/handlers/admin"
	"github.com/GlebRadaev/tokenwallet/internal/handlers/respond"
	"github.com/GlebRadaev/tokenwallet/pkg/utils"
)

const badgeURL = "/api/wallet/badge"

type Ledger interface {
	Balance(ctx context.Context, userID int) (int64, error)
}

type Users interface {
	List(ctx context.Context, actor domain.Actor) ([]domain.User, error)
}

type DashboardHandler struct {
	ledger           Ledger
	users            Users
	managerMaxAmount int64
}

func New(ledger Ledger, users Users, managerMaxAmount int64) *DashboardHandler {
	return &DashboardHandler{
		ledger:           ledger,
		users:            users,
		managerMaxAmount: managerMaxAmount,
	}
}

// Show godoc
//
//	@Summary		Role based dashboard
//	@Description	Admins see every user, managers see their adjustment bound, users see their balance and badge link.
//	@Tags			Dashboard
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.DashboardResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/dashboard [get]
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	actor, _ := domain.ActorFromContext(r.Context())
	resp := dto.DashboardResponseDTO{
		Username: actor.Username,
		Role:     string(actor.Role),
	}

	switch actor.Role {
	case domain.RoleAdmin:
		users, err := h.users.List(r.Context(), actor)
		if err != nil {
			respond.Error(w, err)
			return
		}
		resp.Users = admin.ToUserDTOs(users)
	case domain.RoleManager:
		resp.ManagerMaxAmount = h.managerMaxAmount
	default:
		balance, err := h.ledger.Balance(r.Context(), actor.ID)
		if err != nil {
			respond.Error(w, err)
			return
		}
		resp.Balance = &balance
		resp.BadgeURL = badgeURL
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
