package dto

// CreateLeaveRequest is a student's attendance exception, multipart alongside
// evidence photos.
type CreateLeaveRequest struct {
	Jenis      string `form:"jenis" validate:"required"`
	Tanggal    string `form:"tanggal" validate:"required"`
	Keterangan string `form:"keterangan" validate:"required"`
}

// UpdateLeaveRequest edits a pending request; only the owner may call it.
type UpdateLeaveRequest struct {
	Jenis      string `form:"jenis"`
	Tanggal    string `form:"tanggal"`
	Keterangan string `form:"keterangan"`
}

// DecideLeaveRequest is the pembimbing's one-shot decision.
type DecideLeaveRequest struct {
	Status          string `json:"status" validate:"required"`
	RejectionReason string `json:"rejection_reason"`
}
