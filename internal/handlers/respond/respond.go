// Package respond maps service outcomes onto HTTP responses.
package respond

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/dto"
	"github.com/GlebRadaev/tokenwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/tokenwallet/pkg/utils"
)

// Error writes the status that matches a domain error. Anything unknown is
// logged and reported as a bare 500.
func Error(w http.ResponseWriter, err error) {
	var (
		validation *domain.ValidationError
		denied     *domain.AccessDeniedError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, validation.Message)
	case errors.As(err, &denied):
		utils.RespondWithError(w, http.StatusForbidden, denied.Message)
	case errors.As(err, &notFound):
		utils.RespondWithError(w, http.StatusNotFound, notFound.Message)
	case errors.As(err, &conflict):
		utils.RespondWithError(w, http.StatusConflict, conflict.Message)
	default:
		zap.L().Error("request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Result writes the outcome of a balance change.
func Result(w http.ResponseWriter, res *ledgerservice.Result) {
	switch {
	case res.Success:
		utils.RespondWithJSON(w, http.StatusOK, dto.BalanceChangeResponseDTO{
			Message: res.Message,
			Balance: res.Transaction.BalanceAfter,
		})
	case res.Rejection == ledgerservice.RejectUserNotFound:
		utils.RespondWithError(w, http.StatusNotFound, res.Message)
	case res.Rejection == ledgerservice.RejectInsufficientFunds:
		utils.RespondWithError(w, http.StatusPaymentRequired, res.Message)
	default:
		utils.RespondWithError(w, http.StatusBadRequest, res.Message)
	}
}
