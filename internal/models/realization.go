package models

import (
	"time"

	"github.com/lib/pq"
)

// Kegiatan is a scheduled supervision activity realizations are logged against.
type Kegiatan struct {
	ID         string    `db:"id" json:"id"`
	Nama       string    `db:"nama" json:"nama"`
	Deskripsi  string    `db:"deskripsi" json:"deskripsi"`
	Tanggal    time.Time `db:"tanggal" json:"tanggal"`
	IndustriID string    `db:"industri_id" json:"industri_id"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RealizationStatus marks whether the log entry has been verified.
type RealizationStatus string

const (
	RealizationStatusSubmitted RealizationStatus = "submitted"
	RealizationStatusVerified  RealizationStatus = "verified"
)

// Realization is one evidence-of-activity log entry. It exists only after its
// photos were stored by a prior successful upload: creation is gated on a
// non-empty URL list, and the upload step is all-or-nothing per attempt.
type Realization struct {
	ID               string            `db:"id" json:"id"`
	KegiatanID       string            `db:"kegiatan_id" json:"kegiatan_id"`
	IndustriID       string            `db:"industri_id" json:"industri_id"`
	PembimbingID     string            `db:"pembimbing_guru_id" json:"pembimbing_guru_id"`
	BuktiFotoURLs    pq.StringArray    `db:"bukti_foto_urls" json:"bukti_foto_urls"`
	Catatan          string            `db:"catatan" json:"catatan"`
	Status           RealizationStatus `db:"status" json:"status"`
	TanggalRealisasi time.Time         `db:"tanggal_realisasi" json:"tanggal_realisasi"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

// RealizationFilter constrains realization listing queries.
type RealizationFilter struct {
	KegiatanID   string
	IndustriID   string
	PembimbingID string
	Page         int
}
