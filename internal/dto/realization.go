package dto

// UploadResult is the phase-one outcome: stored URLs plus an explicit success
// flag record creation is gated on.
type UploadResult struct {
	URLs []string `json:"urls"`
}

// CreateRealizationRequest is the phase-two record creation referencing URLs
// returned by a prior successful upload in the same submission attempt.
type CreateRealizationRequest struct {
	KegiatanID       string   `json:"kegiatan_id" validate:"required"`
	IndustriID       string   `json:"industri_id" validate:"required"`
	Catatan          string   `json:"catatan"`
	TanggalRealisasi string   `json:"tanggal_realisasi"`
	BuktiFotoURLs    []string `json:"bukti_foto_urls" validate:"required,min=1"`
}

// UpdateRealizationPhotosRequest edits the photo list of an existing record.
type UpdateRealizationPhotosRequest struct {
	BuktiFotoURLs []string `json:"bukti_foto_urls" validate:"required,min=1"`
}
