package dto

import "github.com/maganghub/maganghub-api/internal/models"

// CreateTransferRequest opens a pindah PKL chain against an approved
// application. Submitted as multipart together with a supporting document.
type CreateTransferRequest struct {
	ApplicationID    string `form:"application_id" validate:"required"`
	TargetIndustriID string `form:"target_industri_id" validate:"required"`
	Catatan          string `form:"catatan" validate:"required"`
}

// DecideTransferRequest is one link's decision. TanggalEfektif is required
// only for the koordinator's final approval.
type DecideTransferRequest struct {
	Status         string `json:"status" validate:"required"`
	Catatan        string `json:"catatan"`
	TanggalEfektif string `json:"tanggal_efektif"`
}

// TransferQuery mirrors the listing filters; the acting hat fixes which chain
// link the results sit at.
type TransferQuery struct {
	Statuses []models.TransferStatus
	Page     int
}
