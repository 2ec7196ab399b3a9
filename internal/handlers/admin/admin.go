package admin

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
	Adjust(ctx context.Context, actor domain.Actor, username string, delta int64) (*ledgerservice.Result, error)
}

type Users interface {
	SetRole(ctx context.Context, actor domain.Actor, username, roleName string) (*domain.User, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.User, error)
}

type AdminHandler struct {
	ledger Ledger
	users  Users
}

func New(ledger Ledger, users Users) *AdminHandler {
	return &AdminHandler{
		ledger: ledger,
		users:  users,
	}
}

// SetBalance godoc
//
//	@Summary		Change a user's balance
//	@Description	Apply a signed delta to the balance of any user. Admin only.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.SetBalanceRequestDTO	true	"Target username and delta"
//	@Success		200		{object}	dto.BalanceChangeResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		402		{object}	utils.Response	"Insufficient funds"
//	@Failure		403		{object}	utils.Response	"Access denied"
//	@Failure		404		{object}	utils.Response	"User not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/balance [post]
func (h *AdminHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	actor, _ := domain.ActorFromContext(r.Context())

	var req dto.SetBalanceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.ledger.Adjust(r.Context(), actor, req.Username, req.Delta)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Result(w, res)
}

// SetRole godoc
//
//	@Summary		Change a user's role
//	@Description	Promote or demote a user between user and manager. Admin only, never on oneself.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.SetRoleRequestDTO	true	"Target username and role"
//	@Success		200		{object}	dto.UserResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		403		{object}	utils.Response	"Access denied"
//	@Failure		404		{object}	utils.Response	"User not found"
//	@Failure		422		{object}	utils.Response	"Invalid role"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/role [post]
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := domain.ActorFromContext(r.Context())

	var req dto.SetRoleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.SetRole(r.Context(), actor, req.Username, req.Role)
	if err != nil {
		respond.Error(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ToUserDTO(user))
}

// ListUsers godoc
//
//	@Summary		List users
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.UserResponseDTO
//	@Failure		403	{object}	utils.Response	"Access denied"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := domain.ActorFromContext(r.Context())

	users, err := h.users.List(r.Context(), actor)
	if err != nil {
		respond.Error(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ToUserDTOs(users))
}

func ToUserDTO(u *domain.User) dto.UserResponseDTO {
	return dto.UserResponseDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		Balance:   u.Balance,
		CreatedAt: u.CreatedAt,
	}
}

func ToUserDTOs(users []domain.User) []dto.UserResponseDTO {
	out := make([]dto.UserResponseDTO, len(users))
	for i := range users {
		out[i] = ToUserDTO(&users[i])
	}
	return out
}
