package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// LeaveJenis classifies an attendance exception.
type LeaveJenis string

const (
	LeaveJenisSakit    LeaveJenis = "Sakit"
	LeaveJenisIzin     LeaveJenis = "Izin"
	LeaveJenisKeluarga LeaveJenis = "Keperluan Keluarga"
)

// ValidLeaveJenis checks the jenis enum (case-insensitive input).
func ValidLeaveJenis(raw string) (LeaveJenis, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sakit":
		return LeaveJenisSakit, true
	case "izin":
		return LeaveJenisIzin, true
	case "keperluan keluarga":
		return LeaveJenisKeluarga, true
	}
	return "", false
}

// LeaveStatus tracks the single-decision lifecycle of a leave request.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// Leave is an attendance exception request (izin) decided by the assigned
// supervising teacher exactly once.
type Leave struct {
	ID              string         `db:"id" json:"id"`
	SiswaID         string         `db:"siswa_id" json:"siswa_id"`
	Jenis           LeaveJenis     `db:"jenis" json:"jenis"`
	Tanggal         time.Time      `db:"tanggal" json:"tanggal"`
	Keterangan      string         `db:"keterangan" json:"keterangan"`
	BuktiFotoURLs   pq.StringArray `db:"bukti_foto_urls" json:"bukti_foto_urls"`
	Status          LeaveStatus    `db:"status" json:"status"`
	RejectionReason *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	PembimbingID    string         `db:"pembimbing_guru_id" json:"pembimbing_guru_id"`
	DecidedAt       *time.Time     `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// LeaveFilter constrains leave listing queries.
type LeaveFilter struct {
	SiswaID      string
	PembimbingID string
	Statuses     []LeaveStatus
	Page         int
}
