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

// SiswaRepository manages student master records.
type SiswaRepository struct {
	db *sqlx.DB
}

// NewSiswaRepository constructs the repository.
func NewSiswaRepository(db *sqlx.DB) *SiswaRepository {
	return &SiswaRepository{db: db}
}

// List returns students matching the filter and the unpaginated total.
func (r *SiswaRepository) List(ctx context.Context, filter models.SiswaFilter, pageSize int) ([]models.SiswaDetail, int, error) {
	base := `FROM siswa s LEFT JOIN kelas k ON k.id = s.kelas_id LEFT JOIN jurusan j ON j.id = s.jurusan_id`
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 4)

	if filter.KelasID != "" {
		args = append(args, filter.KelasID)
		conditions = append(conditions, fmt.Sprintf("s.kelas_id = $%d", len(args)))
	}
	if filter.JurusanID != "" {
		args = append(args, filter.JurusanID)
		conditions = append(conditions, fmt.Sprintf("s.jurusan_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("s.active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR s.nisn LIKE $%d)", len(args), len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(1) %s WHERE %s", base, where), args...); err != nil {
		return nil, 0, fmt.Errorf("count siswa: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT s.id, s.user_id, s.nisn, s.full_name, s.kelas_id, s.jurusan_id,
	s.phone, s.address, s.active, s.created_at, s.updated_at,
	k.nama AS kelas_name, j.nama AS jurusan_name
	%s WHERE %s ORDER BY s.full_name LIMIT %d OFFSET %d`, base, where, pageSize, (page-1)*pageSize)

	var rows []models.SiswaDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list siswa: %w", err)
	}
	return rows, total, nil
}

// GetByID fetches a student.
func (r *SiswaRepository) GetByID(ctx context.Context, id string) (*models.Siswa, error) {
	const query = `SELECT id, user_id, nisn, full_name, kelas_id, jurusan_id, phone, address, active, created_at, updated_at
	FROM siswa WHERE id = $1`
	var siswa models.Siswa
	if err := r.db.GetContext(ctx, &siswa, query, id); err != nil {
		return nil, err
	}
	return &siswa, nil
}

// FindByNISN resolves invitation identifiers to student rows.
func (r *SiswaRepository) FindByNISN(ctx context.Context, nisn string) (*models.Siswa, error) {
	const query = `SELECT id, user_id, nisn, full_name, kelas_id, jurusan_id, phone, address, active, created_at, updated_at
	FROM siswa WHERE nisn = $1`
	var siswa models.Siswa
	if err := r.db.GetContext(ctx, &siswa, query, nisn); err != nil {
		return nil, err
	}
	return &siswa, nil
}

// Create inserts a new student record.
func (r *SiswaRepository) Create(ctx context.Context, siswa *models.Siswa) error {
	if siswa.ID == "" {
		siswa.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	siswa.CreatedAt = now
	siswa.UpdatedAt = now
	const query = `INSERT INTO siswa (id, user_id, nisn, full_name, kelas_id, jurusan_id, phone, address, active, created_at, updated_at)
	VALUES (:id, :user_id, :nisn, :full_name, :kelas_id, :jurusan_id, :phone, :address, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, siswa); err != nil {
		return fmt.Errorf("create siswa: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a student record.
func (r *SiswaRepository) Update(ctx context.Context, siswa *models.Siswa) error {
	siswa.UpdatedAt = time.Now().UTC()
	const query = `UPDATE siswa SET nisn = :nisn, full_name = :full_name, kelas_id = :kelas_id,
	jurusan_id = :jurusan_id, phone = :phone, address = :address, active = :active, updated_at = :updated_at
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, siswa)
	if err != nil {
		return fmt.Errorf("update siswa: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check siswa update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes a student record.
func (r *SiswaRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE siswa SET active = FALSE, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate siswa: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check siswa deactivate rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
