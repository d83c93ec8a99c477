package models

import "time"

// Siswa is a student master record.
type Siswa struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	NISN      string    `db:"nisn" json:"nisn"`
	FullName  string    `db:"full_name" json:"full_name"`
	KelasID   *string   `db:"kelas_id" json:"kelas_id,omitempty"`
	JurusanID *string   `db:"jurusan_id" json:"jurusan_id,omitempty"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SiswaDetail joins class and major names for display.
type SiswaDetail struct {
	Siswa
	KelasName   *string `db:"kelas_name" json:"kelas_name,omitempty"`
	JurusanName *string `db:"jurusan_name" json:"jurusan_name,omitempty"`
}

// SiswaFilter constrains student listing queries.
type SiswaFilter struct {
	KelasID   string
	JurusanID string
	Search    string
	Active    *bool
	Page      int
}
