package dto

import "github.com/GlebRadaev/tokenwallet/internal/domain"

type ImportPreviewResponseDTO struct {
	Participants []domain.Participant `json:"participants"`
}

type ImportConfirmRequestDTO struct {
	Participants []domain.Participant `json:"participants" validate:"required"`
}
