package importer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/dto"
	"github.com/GlebRadaev/tokenwallet/internal/handlers/respond"
	"github.com/GlebRadaev/tokenwallet/internal/service/provisionservice"
	"github.com/GlebRadaev/tokenwallet/pkg/utils"
	"github.com/GlebRadaev/tokenwallet/pkg/validate"
)

const maxUploadSize = 10 << 20

type Service interface {
	Preview(ctx context.Context, actor domain.Actor, filename string, r io.Reader) ([]domain.Participant, error)
	Confirm(ctx context.Context, actor domain.Actor, participants []domain.Participant) (*provisionservice.Report, error)
}

type ImportHandler struct {
	service Service
}

func New(service Service) *ImportHandler {
	return &ImportHandler{service: service}
}

// Preview godoc
//
//	@Summary		Preview a participant upload
//	@Description	Parse a CSV or XLSX file with name and email columns and flag usernames that already exist.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"CSV or XLSX upload"
//	@Success		200		{object}	dto.ImportPreviewResponseDTO
//	@Failure		400		{object}	utils.Response	"No file uploaded"
//	@Failure		403		{object}	utils.Response	"Access denied"
//	@Failure		422		{object}	utils.Response	"Unreadable file"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/import/preview [post]
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	actor, _ := domain.ActorFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	participants, err := h.service.Preview(r.Context(), actor, header.Filename, file)
	if err != nil {
		respond.Error(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ImportPreviewResponseDTO{Participants: participants})
}

// Confirm godoc
//
//	@Summary		Create previewed participants
//	@Description	Create every participant not flagged as existing, initialise their wallets and mail their credentials.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ImportConfirmRequestDTO	true	"Participants from the preview"
//	@Success		200		{object}	provisionservice.Report
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		403		{object}	utils.Response	"Access denied"
//	@Failure		422		{object}	utils.Response	"No participants data found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/import/confirm [post]
func (h *ImportHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	actor, _ := domain.ActorFromContext(r.Context())

	var req dto.ImportConfirmRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Confirm(r.Context(), actor, req.Participants)
	if err != nil {
		respond.Error(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, report)
}
