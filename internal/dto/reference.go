package dto

// Master-data payloads for the admin CRUD layer.

type UpsertSiswaRequest struct {
	NISN      string `json:"nisn" validate:"required"`
	FullName  string `json:"full_name" validate:"required"`
	KelasID   string `json:"kelas_id"`
	JurusanID string `json:"jurusan_id"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Active    *bool  `json:"active"`
}

type UpsertGuruRequest struct {
	NIP           string `json:"nip" validate:"required"`
	FullName      string `json:"full_name" validate:"required"`
	Phone         string `json:"phone"`
	JurusanID     string `json:"jurusan_id"`
	KelasID       string `json:"kelas_id"`
	IsKaprog      bool   `json:"is_kaprog"`
	IsKoordinator bool   `json:"is_koordinator"`
	IsWaliKelas   bool   `json:"is_wali_kelas"`
	IsPembimbing  bool   `json:"is_pembimbing"`
	Active        *bool  `json:"active"`
}

type UpsertKelasRequest struct {
	Nama       string `json:"nama" validate:"required"`
	JurusanID  string `json:"jurusan_id"`
	WaliGuruID string `json:"wali_guru_id"`
}

type UpsertJurusanRequest struct {
	Nama         string `json:"nama" validate:"required"`
	KaprogGuruID string `json:"kaprog_guru_id"`
}

type UpsertIndustriRequest struct {
	Nama          string `json:"nama" validate:"required"`
	Alamat        string `json:"alamat" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Kuota         int    `json:"kuota" validate:"gte=0"`
	Status        string `json:"status"`
}

type UpsertTahunAjaranRequest struct {
	Nama   string `json:"nama" validate:"required"`
	Active *bool  `json:"active"`
}

type UpsertKegiatanRequest struct {
	Nama       string `json:"nama" validate:"required"`
	Deskripsi  string `json:"deskripsi"`
	Tanggal    string `json:"tanggal" validate:"required"`
	IndustriID string `json:"industri_id" validate:"required"`
}
