package models

import "time"

// Kelas is a class master record.
type Kelas struct {
	ID        string    `db:"id" json:"id"`
	Nama      string    `db:"nama" json:"nama"`
	JurusanID *string   `db:"jurusan_id" json:"jurusan_id,omitempty"`
	WaliGuru  *string   `db:"wali_guru_id" json:"wali_guru_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Jurusan is a major/department master record.
type Jurusan struct {
	ID           string    `db:"id" json:"id"`
	Nama         string    `db:"nama" json:"nama"`
	KaprogGuruID *string   `db:"kaprog_guru_id" json:"kaprog_guru_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IndustriStatus marks whether a partner is accepting placements.
type IndustriStatus string

const (
	IndustriStatusPending  IndustriStatus = "pending"
	IndustriStatusApproved IndustriStatus = "approved"
	IndustriStatusInactive IndustriStatus = "inactive"
)

// Industri is an industry partner / placement host.
type Industri struct {
	ID            string         `db:"id" json:"id"`
	Nama          string         `db:"nama" json:"nama"`
	Alamat        string         `db:"alamat" json:"alamat"`
	ContactPerson string         `db:"contact_person" json:"contact_person"`
	Phone         string         `db:"phone" json:"phone"`
	Kuota         int            `db:"kuota" json:"kuota"`
	Status        IndustriStatus `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// TahunAjaran is an academic year master record.
type TahunAjaran struct {
	ID        string    `db:"id" json:"id"`
	Nama      string    `db:"nama" json:"nama"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ReferenceFilter is the shared filter shape for master-data listing.
type ReferenceFilter struct {
	Search string
	Page   int
}
