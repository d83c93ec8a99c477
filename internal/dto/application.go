package dto

import "github.com/maganghub/maganghub-api/internal/models"

// SubmitApplicationRequest is the student-side submission payload.
type SubmitApplicationRequest struct {
	IndustriID string `json:"industri_id" validate:"required"`
	Catatan    string `json:"catatan"`
}

// DecideApplicationRequest carries the kaprog decision. Approval requires the
// supervisor assignment and both placement dates.
type DecideApplicationRequest struct {
	Status           string `json:"status" validate:"required"`
	KaprogNote       string `json:"catatan"`
	PembimbingGuruID string `json:"pembimbing_guru_id"`
	TanggalMulai     string `json:"tanggal_mulai"`
	TanggalSelesai   string `json:"tanggal_selesai"`
}

// ApplicationQuery mirrors the supported listing filters.
type ApplicationQuery struct {
	Statuses   []models.ApplicationStatus
	KelasID    string
	JurusanID  string
	IndustriID string
	Search     string
	Page       int
}
