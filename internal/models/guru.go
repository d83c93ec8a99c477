package models

import "time"

// Guru is a teacher master record. The role flags feed hat resolution.
type Guru struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	NIP       string    `db:"nip" json:"nip"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     string    `db:"phone" json:"phone"`
	JurusanID *string   `db:"jurusan_id" json:"jurusan_id,omitempty"`
	KelasID   *string   `db:"kelas_id" json:"kelas_id,omitempty"`
	RoleFlags RoleFlags `db:"-" json:"role_flags"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GuruRow flattens the role flag columns for sqlx scanning.
type GuruRow struct {
	Guru
	IsKaprog      bool `db:"is_kaprog"`
	IsKoordinator bool `db:"is_koordinator"`
	IsWaliKelas   bool `db:"is_wali_kelas"`
	IsPembimbing  bool `db:"is_pembimbing"`
}

// Unflatten moves the scanned flag columns into the nested struct.
func (r GuruRow) Unflatten() Guru {
	g := r.Guru
	g.RoleFlags = RoleFlags{
		IsKaprog:      r.IsKaprog,
		IsKoordinator: r.IsKoordinator,
		IsWaliKelas:   r.IsWaliKelas,
		IsPembimbing:  r.IsPembimbing,
	}
	return g
}

// GuruFilter constrains teacher listing queries.
type GuruFilter struct {
	JurusanID    string
	IsPembimbing *bool
	Search       string
	Active       *bool
	Page         int
}
