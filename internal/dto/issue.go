package dto

// CreateIssueRequest raises a permasalahan about a student.
type CreateIssueRequest struct {
	Judul     string `json:"judul" validate:"required"`
	Deskripsi string `json:"deskripsi" validate:"required"`
	Kategori  string `json:"kategori" validate:"required"`
	SiswaID   string `json:"siswa_id" validate:"required"`
}

// UpdateIssueRequest progresses the follow-up state.
type UpdateIssueRequest struct {
	Status       string `json:"status"`
	TindakLanjut string `json:"tindak_lanjut"`
}
