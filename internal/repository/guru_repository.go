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

const guruColumns = `id, user_id, nip, full_name, phone, jurusan_id, kelas_id,
       is_kaprog, is_koordinator, is_wali_kelas, is_pembimbing, active, created_at, updated_at`

// GuruRepository manages teacher master records, including the role flags
// feeding hat resolution.
type GuruRepository struct {
	db *sqlx.DB
}

// NewGuruRepository constructs the repository.
func NewGuruRepository(db *sqlx.DB) *GuruRepository {
	return &GuruRepository{db: db}
}

// List returns teachers matching the filter and the unpaginated total.
func (r *GuruRepository) List(ctx context.Context, filter models.GuruFilter, pageSize int) ([]models.Guru, int, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 4)

	if filter.JurusanID != "" {
		args = append(args, filter.JurusanID)
		conditions = append(conditions, fmt.Sprintf("jurusan_id = $%d", len(args)))
	}
	if filter.IsPembimbing != nil {
		args = append(args, *filter.IsPembimbing)
		conditions = append(conditions, fmt.Sprintf("is_pembimbing = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR nip LIKE $%d)", len(args), len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(1) FROM guru WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count guru: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf("SELECT %s FROM guru WHERE %s ORDER BY full_name LIMIT %d OFFSET %d",
		guruColumns, where, pageSize, (page-1)*pageSize)

	var rows []models.GuruRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list guru: %w", err)
	}
	gurus := make([]models.Guru, len(rows))
	for i, row := range rows {
		gurus[i] = row.Unflatten()
	}
	return gurus, total, nil
}

// GetByID fetches a teacher.
func (r *GuruRepository) GetByID(ctx context.Context, id string) (*models.Guru, error) {
	query := fmt.Sprintf(`SELECT %s FROM guru WHERE id = $1`, guruColumns)
	var row models.GuruRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	guru := row.Unflatten()
	return &guru, nil
}

// Create inserts a new teacher record.
func (r *GuruRepository) Create(ctx context.Context, guru *models.Guru) error {
	if guru.ID == "" {
		guru.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	guru.CreatedAt = now
	guru.UpdatedAt = now
	const query = `INSERT INTO guru
	(id, user_id, nip, full_name, phone, jurusan_id, kelas_id, is_kaprog, is_koordinator, is_wali_kelas, is_pembimbing, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	if _, err := r.db.ExecContext(ctx, query,
		guru.ID, guru.UserID, guru.NIP, guru.FullName, guru.Phone, guru.JurusanID, guru.KelasID,
		guru.RoleFlags.IsKaprog, guru.RoleFlags.IsKoordinator, guru.RoleFlags.IsWaliKelas, guru.RoleFlags.IsPembimbing,
		guru.Active, guru.CreatedAt, guru.UpdatedAt); err != nil {
		return fmt.Errorf("create guru: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns, role flags included.
func (r *GuruRepository) Update(ctx context.Context, guru *models.Guru) error {
	guru.UpdatedAt = time.Now().UTC()
	const query = `UPDATE guru SET nip = $1, full_name = $2, phone = $3, jurusan_id = $4, kelas_id = $5,
	is_kaprog = $6, is_koordinator = $7, is_wali_kelas = $8, is_pembimbing = $9, active = $10, updated_at = $11
	WHERE id = $12`
	result, err := r.db.ExecContext(ctx, query,
		guru.NIP, guru.FullName, guru.Phone, guru.JurusanID, guru.KelasID,
		guru.RoleFlags.IsKaprog, guru.RoleFlags.IsKoordinator, guru.RoleFlags.IsWaliKelas, guru.RoleFlags.IsPembimbing,
		guru.Active, guru.UpdatedAt, guru.ID)
	if err != nil {
		return fmt.Errorf("update guru: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check guru update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes a teacher record.
func (r *GuruRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE guru SET active = FALSE, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate guru: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check guru deactivate rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
