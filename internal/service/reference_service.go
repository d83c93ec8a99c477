package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
)

type referenceStore interface {
	ListKelas(ctx context.Context, filter models.ReferenceFilter, pageSize int) ([]models.Kelas, int, error)
	GetKelas(ctx context.Context, id string) (*models.Kelas, error)
	UpsertKelas(ctx context.Context, row *models.Kelas) error
	DeleteKelas(ctx context.Context, id string) error
	ListJurusan(ctx context.Context, filter models.ReferenceFilter, pageSize int) ([]models.Jurusan, int, error)
	GetJurusan(ctx context.Context, id string) (*models.Jurusan, error)
	UpsertJurusan(ctx context.Context, row *models.Jurusan) error
	DeleteJurusan(ctx context.Context, id string) error
	ListIndustri(ctx context.Context, filter models.ReferenceFilter, pageSize int) ([]models.Industri, int, error)
	GetIndustri(ctx context.Context, id string) (*models.Industri, error)
	UpsertIndustri(ctx context.Context, row *models.Industri) error
	DeleteIndustri(ctx context.Context, id string) error
	ListTahunAjaran(ctx context.Context, filter models.ReferenceFilter, pageSize int) ([]models.TahunAjaran, int, error)
	UpsertTahunAjaran(ctx context.Context, row *models.TahunAjaran) error
	DeleteTahunAjaran(ctx context.Context, id string) error
	ListKegiatan(ctx context.Context, industriID string, activeOnly bool) ([]models.Kegiatan, error)
	CreateKegiatan(ctx context.Context, row *models.Kegiatan) error
}

type referenceSiswaStore interface {
	List(ctx context.Context, filter models.SiswaFilter, pageSize int) ([]models.SiswaDetail, int, error)
	GetByID(ctx context.Context, id string) (*models.Siswa, error)
	Create(ctx context.Context, siswa *models.Siswa) error
	Update(ctx context.Context, siswa *models.Siswa) error
	Deactivate(ctx context.Context, id string) error
}

type referenceGuruStore interface {
	List(ctx context.Context, filter models.GuruFilter, pageSize int) ([]models.Guru, int, error)
	GetByID(ctx context.Context, id string) (*models.Guru, error)
	Create(ctx context.Context, guru *models.Guru) error
	Update(ctx context.Context, guru *models.Guru) error
	Deactivate(ctx context.Context, id string) error
}

// ReferenceService is the admin-facing master data layer: students, teachers,
// classes, majors, industry partners, academic years, and activities.
type ReferenceService struct {
	refs      referenceStore
	siswa     referenceSiswaStore
	guru      referenceGuruStore
	validator *validator.Validate
	logger    *zap.Logger
	pageSize  int
}

// NewReferenceService constructs the service.
func NewReferenceService(refs referenceStore, siswa referenceSiswaStore, guru referenceGuruStore, validate *validator.Validate, logger *zap.Logger, pageSize int) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &ReferenceService{refs: refs, siswa: siswa, guru: guru, validator: validate, logger: logger, pageSize: pageSize}
}

// ListSiswa returns students with display context.
func (s *ReferenceService) ListSiswa(ctx context.Context, filter models.SiswaFilter) ([]models.SiswaDetail, int, error) {
	rows, total, err := s.siswa.List(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return rows, total, nil
}

// UpsertSiswa creates or updates a student record.
func (s *ReferenceService) UpsertSiswa(ctx context.Context, id string, req dto.UpsertSiswaRequest) (*models.Siswa, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid siswa payload")
	}

	siswa := &models.Siswa{
		NISN:     req.NISN,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		Active:   true,
	}
	if req.KelasID != "" {
		siswa.KelasID = &req.KelasID
	}
	if req.JurusanID != "" {
		siswa.JurusanID = &req.JurusanID
	}
	if req.Active != nil {
		siswa.Active = *req.Active
	}

	if id == "" {
		if err := s.siswa.Create(ctx, siswa); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
		}
		return siswa, nil
	}

	existing, err := s.siswa.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	siswa.ID = existing.ID
	siswa.UserID = existing.UserID
	if err := s.siswa.Update(ctx, siswa); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return siswa, nil
}

// DeactivateSiswa soft-deletes a student; history stays intact.
func (s *ReferenceService) DeactivateSiswa(ctx context.Context, id string) error {
	if err := s.siswa.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}
	return nil
}

// ListGuru returns teachers with their role flags.
func (s *ReferenceService) ListGuru(ctx context.Context, filter models.GuruFilter) ([]models.Guru, int, error) {
	rows, total, err := s.guru.List(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return rows, total, nil
}

// UpsertGuru creates or updates a teacher record including role flags.
func (s *ReferenceService) UpsertGuru(ctx context.Context, id string, req dto.UpsertGuruRequest) (*models.Guru, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid guru payload")
	}

	guru := &models.Guru{
		NIP:      req.NIP,
		FullName: req.FullName,
		Phone:    req.Phone,
		Active:   true,
		RoleFlags: models.RoleFlags{
			IsKaprog:      req.IsKaprog,
			IsKoordinator: req.IsKoordinator,
			IsWaliKelas:   req.IsWaliKelas,
			IsPembimbing:  req.IsPembimbing,
		},
	}
	if req.JurusanID != "" {
		guru.JurusanID = &req.JurusanID
	}
	if req.KelasID != "" {
		guru.KelasID = &req.KelasID
	}
	if req.Active != nil {
		guru.Active = *req.Active
	}

	if id == "" {
		if err := s.guru.Create(ctx, guru); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
		}
		return guru, nil
	}

	existing, err := s.guru.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	guru.ID = existing.ID
	guru.UserID = existing.UserID
	if err := s.guru.Update(ctx, guru); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return guru, nil
}

// DeactivateGuru soft-deletes a teacher.
func (s *ReferenceService) DeactivateGuru(ctx context.Context, id string) error {
	if err := s.guru.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate teacher")
	}
	return nil
}

// ListKelas returns classes.
func (s *ReferenceService) ListKelas(ctx context.Context, filter models.ReferenceFilter) ([]models.Kelas, int, error) {
	rows, total, err := s.refs.ListKelas(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list kelas")
	}
	return rows, total, nil
}

// UpsertKelas creates or updates a class.
func (s *ReferenceService) UpsertKelas(ctx context.Context, id string, req dto.UpsertKelasRequest) (*models.Kelas, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid kelas payload")
	}
	row := &models.Kelas{ID: id, Nama: req.Nama}
	if req.JurusanID != "" {
		row.JurusanID = &req.JurusanID
	}
	if req.WaliGuruID != "" {
		row.WaliGuru = &req.WaliGuruID
	}
	if err := s.refs.UpsertKelas(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save kelas")
	}
	return row, nil
}

// DeleteKelas removes a class.
func (s *ReferenceService) DeleteKelas(ctx context.Context, id string) error {
	return s.mapDelete(s.refs.DeleteKelas(ctx, id), "kelas")
}

// ListJurusan returns majors.
func (s *ReferenceService) ListJurusan(ctx context.Context, filter models.ReferenceFilter) ([]models.Jurusan, int, error) {
	rows, total, err := s.refs.ListJurusan(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jurusan")
	}
	return rows, total, nil
}

// UpsertJurusan creates or updates a major.
func (s *ReferenceService) UpsertJurusan(ctx context.Context, id string, req dto.UpsertJurusanRequest) (*models.Jurusan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid jurusan payload")
	}
	row := &models.Jurusan{ID: id, Nama: req.Nama}
	if req.KaprogGuruID != "" {
		row.KaprogGuruID = &req.KaprogGuruID
	}
	if err := s.refs.UpsertJurusan(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save jurusan")
	}
	return row, nil
}

// DeleteJurusan removes a major.
func (s *ReferenceService) DeleteJurusan(ctx context.Context, id string) error {
	return s.mapDelete(s.refs.DeleteJurusan(ctx, id), "jurusan")
}

// ListIndustri returns industry partners. Students only see approved partners.
func (s *ReferenceService) ListIndustri(ctx context.Context, claims *models.JWTClaims, filter models.ReferenceFilter) ([]models.Industri, int, error) {
	rows, total, err := s.refs.ListIndustri(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list industri")
	}
	if claims != nil && claims.Role == models.RoleSiswa {
		visible := rows[:0]
		for _, row := range rows {
			if row.Status == models.IndustriStatusApproved {
				visible = append(visible, row)
			}
		}
		rows = visible
		total = len(rows)
	}
	return rows, total, nil
}

// UpsertIndustri creates or updates an industry partner.
func (s *ReferenceService) UpsertIndustri(ctx context.Context, id string, req dto.UpsertIndustriRequest) (*models.Industri, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid industri payload")
	}
	row := &models.Industri{
		ID:            id,
		Nama:          req.Nama,
		Alamat:        req.Alamat,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Kuota:         req.Kuota,
	}
	if req.Status != "" {
		switch models.IndustriStatus(req.Status) {
		case models.IndustriStatusPending, models.IndustriStatusApproved, models.IndustriStatusInactive:
			row.Status = models.IndustriStatus(req.Status)
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown industri status")
		}
	}
	if err := s.refs.UpsertIndustri(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save industri")
	}
	return row, nil
}

// DeleteIndustri removes an industry partner.
func (s *ReferenceService) DeleteIndustri(ctx context.Context, id string) error {
	return s.mapDelete(s.refs.DeleteIndustri(ctx, id), "industri")
}

// ListTahunAjaran returns academic years.
func (s *ReferenceService) ListTahunAjaran(ctx context.Context, filter models.ReferenceFilter) ([]models.TahunAjaran, int, error) {
	rows, total, err := s.refs.ListTahunAjaran(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tahun ajaran")
	}
	return rows, total, nil
}

// UpsertTahunAjaran creates or updates an academic year.
func (s *ReferenceService) UpsertTahunAjaran(ctx context.Context, id string, req dto.UpsertTahunAjaranRequest) (*models.TahunAjaran, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tahun ajaran payload")
	}
	row := &models.TahunAjaran{ID: id, Nama: req.Nama}
	if req.Active != nil {
		row.Active = *req.Active
	}
	if err := s.refs.UpsertTahunAjaran(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save tahun ajaran")
	}
	return row, nil
}

// DeleteTahunAjaran removes an academic year.
func (s *ReferenceService) DeleteTahunAjaran(ctx context.Context, id string) error {
	return s.mapDelete(s.refs.DeleteTahunAjaran(ctx, id), "tahun ajaran")
}

// ListKegiatan returns scheduled activities.
func (s *ReferenceService) ListKegiatan(ctx context.Context, industriID string, activeOnly bool) ([]models.Kegiatan, error) {
	rows, err := s.refs.ListKegiatan(ctx, industriID, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list kegiatan")
	}
	return rows, nil
}

// CreateKegiatan schedules an activity.
func (s *ReferenceService) CreateKegiatan(ctx context.Context, req dto.UpsertKegiatanRequest) (*models.Kegiatan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid kegiatan payload")
	}
	tanggal, err := parseDate(req.Tanggal)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid tanggal")
	}
	row := &models.Kegiatan{
		Nama:       req.Nama,
		Deskripsi:  req.Deskripsi,
		Tanggal:    tanggal,
		IndustriID: req.IndustriID,
	}
	if err := s.refs.CreateKegiatan(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create kegiatan")
	}
	return row, nil
}

func (s *ReferenceService) mapDelete(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete "+what)
}
