package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/maganghub/maganghub-api/internal/models"
)

// ReferenceRepository manages the small master tables consumed by the
// workflow: kelas, jurusan, industri, tahun ajaran, kegiatan.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs the repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) listTotal(ctx context.Context, table, searchColumn string, filter models.ReferenceFilter) (string, []interface{}, int, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 1)
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(%s) LIKE $%d", searchColumn, len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE %s", table, where), args...); err != nil {
		return "", nil, 0, fmt.Errorf("count %s: %w", table, err)
	}
	return where, args, total, nil
}

func pageClause(page, pageSize int) string {
	if pageSize <= 0 {
		pageSize = 10
	}
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
}

// ListKelas returns classes and the unpaginated total.
func (r *ReferenceRepository) ListKelas(ctx context.Context, filter models.ReferenceFilter, pageSize int) ([]models.Kelas, int, error) {
	where, args, total, err := r.listTotal(ctx, "kelas", "nama", filter)
	if err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT id, nama, jurusan_id, wali_guru_id, created_at, updated_at
	FROM kelas WHERE %s ORDER BY nama %s`, where, pageClause(filter.Page, pageSize))
	var rows []models.Kelas
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list kelas: %w", err)
	}
	return rows, total, nil
}

// GetKelas fetches a class.
func (r *ReferenceRepository) GetKelas(ctx context.Context, id string) (*models.Kelas, error) {
	var row models.Kelas
	if err := r.db.GetContext(ctx, &row, `SELECT id, nama, jurusan_id, wali_guru_id, created_at, updated_at FROM kelas WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertKelas inserts or rewrites a class row.
func (r *ReferenceRepository) UpsertKelas(ctx context.Context, row *models.Kelas) error {
	now := time.Now().UTC()
	if row.ID == "" {
		row.ID = uuid.NewString()
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	const query = `INSERT INTO kelas (id, nama, jurusan_id, wali_guru_id, created_at, updated_at)
	VALUES (:id, :nama, :jurusan_id, :wali_guru_id, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE SET nama = :nama, jurusan_id = :jurusan_id, wali_guru_id = :wali_guru_id, updated_at = :updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert kelas: %w", err)
	}
	return nil
}

// DeleteKelas removes a class row.
func (r *ReferenceRepository) DeleteKelas(ctx context.Context, id string) error {
	return r.deleteRow(ctx, "kelas", id)
}

// ListJurusan returns majors and the unpaginated total.
func (r *ReferenceRepository) ListJurusan(ctx context.Context, filter models.ReferenceFilter, pageSize int) ([]models.Jurusan, int, error) {
	where, args, total, err := r.listTotal(ctx, "jurusan", "nama", filter)
	if err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT id, nama, kaprog_guru_id, created_at, updated_at
	FROM jurusan WHERE %s ORDER BY nama %s`, where, pageClause(filter.Page, pageSize))
	var rows []models.Jurusan
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list jurusan: %w", err)
	}
	return rows, total, nil
}

// GetJurusan fetches a major.
func (r *ReferenceRepository) GetJurusan(ctx context.Context, id string) (*models.Jurusan, error) {
	var row models.Jurusan
	if err := r.db.GetContext(ctx, &row, `SELECT id, nama, kaprog_guru_id, created_at, updated_at FROM jurusan WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertJurusan inserts or rewrites a major row.
func (r *ReferenceRepository) UpsertJurusan(ctx context.Context, row *models.Jurusan) error {
	now := time.Now().UTC()
	if row.ID == "" {
		row.ID = uuid.NewString()
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	const query = `INSERT INTO jurusan (id, nama, kaprog_guru_id, created_at, updated_at)
	VALUES (:id, :nama, :kaprog_guru_id, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE SET nama = :nama, kaprog_guru_id = :kaprog_guru_id, updated_at = :updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert jurusan: %w", err)
	}
	return nil
}

// DeleteJurusan removes a major row.
func (r *ReferenceRepository) DeleteJurusan(ctx context.Context, id string) error {
	return r.deleteRow(ctx, "jurusan", id)
}

// ListIndustri returns industry partners and the unpaginated total.
func (r *ReferenceRepository) ListIndustri(ctx context.Context, filter models.ReferenceFilter, pageSize int) ([]models.Industri, int, error) {
	where, args, total, err := r.listTotal(ctx, "industri", "nama", filter)
	if err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT id, nama, alamat, contact_person, phone, kuota, status, created_at, updated_at
	FROM industri WHERE %s ORDER BY nama %s`, where, pageClause(filter.Page, pageSize))
	var rows []models.Industri
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list industri: %w", err)
	}
	return rows, total, nil
}

// GetIndustri fetches an industry partner.
func (r *ReferenceRepository) GetIndustri(ctx context.Context, id string) (*models.Industri, error) {
	var row models.Industri
	if err := r.db.GetContext(ctx, &row, `SELECT id, nama, alamat, contact_person, phone, kuota, status, created_at, updated_at FROM industri WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertIndustri inserts or rewrites an industry partner.
func (r *ReferenceRepository) UpsertIndustri(ctx context.Context, row *models.Industri) error {
	now := time.Now().UTC()
	if row.ID == "" {
		row.ID = uuid.NewString()
		row.CreatedAt = now
	}
	if row.Status == "" {
		row.Status = models.IndustriStatusPending
	}
	row.UpdatedAt = now
	const query = `INSERT INTO industri (id, nama, alamat, contact_person, phone, kuota, status, created_at, updated_at)
	VALUES (:id, :nama, :alamat, :contact_person, :phone, :kuota, :status, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE SET nama = :nama, alamat = :alamat, contact_person = :contact_person,
	phone = :phone, kuota = :kuota, status = :status, updated_at = :updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert industri: %w", err)
	}
	return nil
}

// DeleteIndustri removes an industry partner.
func (r *ReferenceRepository) DeleteIndustri(ctx context.Context, id string) error {
	return r.deleteRow(ctx, "industri", id)
}

// ListTahunAjaran returns academic years and the unpaginated total.
func (r *ReferenceRepository) ListTahunAjaran(ctx context.Context, filter models.ReferenceFilter, pageSize int) ([]models.TahunAjaran, int, error) {
	where, args, total, err := r.listTotal(ctx, "tahun_ajaran", "nama", filter)
	if err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT id, nama, active, created_at, updated_at
	FROM tahun_ajaran WHERE %s ORDER BY nama DESC %s`, where, pageClause(filter.Page, pageSize))
	var rows []models.TahunAjaran
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tahun ajaran: %w", err)
	}
	return rows, total, nil
}

// UpsertTahunAjaran inserts or rewrites an academic year.
func (r *ReferenceRepository) UpsertTahunAjaran(ctx context.Context, row *models.TahunAjaran) error {
	now := time.Now().UTC()
	if row.ID == "" {
		row.ID = uuid.NewString()
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	const query = `INSERT INTO tahun_ajaran (id, nama, active, created_at, updated_at)
	VALUES (:id, :nama, :active, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE SET nama = :nama, active = :active, updated_at = :updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert tahun ajaran: %w", err)
	}
	return nil
}

// DeleteTahunAjaran removes an academic year.
func (r *ReferenceRepository) DeleteTahunAjaran(ctx context.Context, id string) error {
	return r.deleteRow(ctx, "tahun_ajaran", id)
}

// ListKegiatan returns scheduled activities, optionally only active ones.
func (r *ReferenceRepository) ListKegiatan(ctx context.Context, industriID string, activeOnly bool) ([]models.Kegiatan, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 2)
	if industriID != "" {
		args = append(args, industriID)
		conditions = append(conditions, fmt.Sprintf("industri_id = $%d", len(args)))
	}
	if activeOnly {
		conditions = append(conditions, "active = TRUE")
	}
	query := fmt.Sprintf(`SELECT id, nama, deskripsi, tanggal, industri_id, active, created_at
	FROM kegiatan WHERE %s ORDER BY tanggal DESC`, strings.Join(conditions, " AND "))
	var rows []models.Kegiatan
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list kegiatan: %w", err)
	}
	return rows, nil
}

// CreateKegiatan inserts a scheduled activity.
func (r *ReferenceRepository) CreateKegiatan(ctx context.Context, row *models.Kegiatan) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	row.CreatedAt = time.Now().UTC()
	row.Active = true
	const query = `INSERT INTO kegiatan (id, nama, deskripsi, tanggal, industri_id, active, created_at)
	VALUES (:id, :nama, :deskripsi, :tanggal, :industri_id, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create kegiatan: %w", err)
	}
	return nil
}

func (r *ReferenceRepository) deleteRow(ctx context.Context, table, id string) error {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s delete rows: %w", table, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
