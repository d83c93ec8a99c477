package models

import (
	"strings"
	"time"
)

// IssueKategori classifies a student issue raised by a supervisor.
type IssueKategori string

const (
	IssueKategoriKedisiplinan IssueKategori = "kedisiplinan"
	IssueKategoriAbsensi      IssueKategori = "absensi"
	IssueKategoriPerforma     IssueKategori = "performa"
	IssueKategoriLainnya      IssueKategori = "lainnya"
)

// ValidIssueKategori checks the kategori enum.
func ValidIssueKategori(raw string) (IssueKategori, bool) {
	switch IssueKategori(strings.ToLower(strings.TrimSpace(raw))) {
	case IssueKategoriKedisiplinan:
		return IssueKategoriKedisiplinan, true
	case IssueKategoriAbsensi:
		return IssueKategoriAbsensi, true
	case IssueKategoriPerforma:
		return IssueKategoriPerforma, true
	case IssueKategoriLainnya:
		return IssueKategoriLainnya, true
	}
	return "", false
}

// IssueStatus tracks the follow-up state of an issue.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
)

// Issue is a disciplinary/performance note (permasalahan) about a student.
type Issue struct {
	ID           string        `db:"id" json:"id"`
	Judul        string        `db:"judul" json:"judul"`
	Deskripsi    string        `db:"deskripsi" json:"deskripsi"`
	Kategori     IssueKategori `db:"kategori" json:"kategori"`
	Status       IssueStatus   `db:"status" json:"status"`
	TindakLanjut *string       `db:"tindak_lanjut" json:"tindak_lanjut,omitempty"`
	SiswaID      string        `db:"siswa_id" json:"siswa_id"`
	PembimbingID string        `db:"pembimbing_guru_id" json:"pembimbing_guru_id"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
	ResolvedAt   *time.Time    `db:"resolved_at" json:"resolved_at,omitempty"`
}

// IssueFilter constrains issue listing queries. KelasID scopes the homeroom
// teacher's read path.
type IssueFilter struct {
	SiswaID      string
	PembimbingID string
	KelasID      string
	Kategori     IssueKategori
	Statuses     []IssueStatus
	Page         int
}
