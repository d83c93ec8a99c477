package models

import (
	"strings"
	"time"
)

// ApplicationStatus is the lifecycle state of a placement request.
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "PENDING"
	ApplicationStatusApproved  ApplicationStatus = "APPROVED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
	ApplicationStatusCompleted ApplicationStatus = "COMPLETED"
	// Withdrawn is reached only through the group withdrawal path; it closes
	// the application without deleting submission history.
	ApplicationStatusWithdrawn ApplicationStatus = "WITHDRAWN"
)

// NormalizeApplicationStatus upper-cases status input at the boundary. The
// legacy data carries mixed casing ("Pending", "pending").
func NormalizeApplicationStatus(raw string) ApplicationStatus {
	return ApplicationStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

// Valid reports whether the status is a known lifecycle state.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected,
		ApplicationStatusCompleted, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// Terminalized reports whether the status blocks a new decision.
func (s ApplicationStatus) Terminalized() bool {
	return s != ApplicationStatusPending
}

// Application is one placement request of a student or a group.
type Application struct {
	ID                string            `db:"id" json:"id"`
	SiswaID           *string           `db:"siswa_id" json:"siswa_id,omitempty"`
	GroupID           *string           `db:"group_id" json:"group_id,omitempty"`
	IndustriID        string            `db:"industri_id" json:"industri_id"`
	Status            ApplicationStatus `db:"status" json:"status"`
	Catatan           string            `db:"catatan" json:"catatan"`
	KaprogNote        *string           `db:"kaprog_note" json:"kaprog_note,omitempty"`
	PembimbingGuruID  *string           `db:"pembimbing_guru_id" json:"pembimbing_guru_id,omitempty"`
	TanggalPermohonan time.Time         `db:"tanggal_permohonan" json:"tanggal_permohonan"`
	TanggalMulai      *time.Time        `db:"tanggal_mulai" json:"tanggal_mulai,omitempty"`
	TanggalSelesai    *time.Time        `db:"tanggal_selesai" json:"tanggal_selesai,omitempty"`
	DecidedAt         *time.Time        `db:"decided_at" json:"decided_at,omitempty"`
	ProcessedBy       *string           `db:"processed_by" json:"processed_by,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationFilter constrains listing queries. Statuses are multi-value sets
// composed from query parameters; totals feed pagination math server-side.
type ApplicationFilter struct {
	Statuses   []ApplicationStatus
	SiswaID    string
	GroupID    string
	KelasID    string
	JurusanID  string
	IndustriID string
	Search     string
	Page       int
}

// ApplicationDetail joins display context used by coordinator/kaprog views.
type ApplicationDetail struct {
	Application
	SiswaName    *string `db:"siswa_name" json:"siswa_name,omitempty"`
	SiswaNISN    *string `db:"siswa_nisn" json:"siswa_nisn,omitempty"`
	KelasName    *string `db:"kelas_name" json:"kelas_name,omitempty"`
	JurusanName  *string `db:"jurusan_name" json:"jurusan_name,omitempty"`
	IndustriName string  `db:"industri_name" json:"industri_name"`
}
