package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/maganghub/maganghub-api/internal/models"
)

const realizationColumns = `id, kegiatan_id, industri_id, pembimbing_guru_id, bukti_foto_urls,
       catatan, status, tanggal_realisasi, created_at, updated_at`

// RealizationRepository persists activity realization records.
type RealizationRepository struct {
	db *sqlx.DB
}

// NewRealizationRepository constructs the repository.
func NewRealizationRepository(db *sqlx.DB) *RealizationRepository {
	return &RealizationRepository{db: db}
}

// Create inserts a new realization record.
func (r *RealizationRepository) Create(ctx context.Context, rec *models.Realization) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = models.RealizationStatusSubmitted
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	const query = `INSERT INTO realizations
	(id, kegiatan_id, industri_id, pembimbing_guru_id, bukti_foto_urls, catatan, status,
	 tanggal_realisasi, created_at, updated_at)
	VALUES (:id, :kegiatan_id, :industri_id, :pembimbing_guru_id, :bukti_foto_urls, :catatan, :status,
	 :tanggal_realisasi, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create realization: %w", err)
	}
	return nil
}

// GetByID fetches a realization record.
func (r *RealizationRepository) GetByID(ctx context.Context, id string) (*models.Realization, error) {
	query := fmt.Sprintf(`SELECT %s FROM realizations WHERE id = $1`, realizationColumns)
	var rec models.Realization
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns realization records matching the filter and the total.
func (r *RealizationRepository) List(ctx context.Context, filter models.RealizationFilter, pageSize int) ([]models.Realization, int, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 3)

	if filter.KegiatanID != "" {
		args = append(args, filter.KegiatanID)
		conditions = append(conditions, fmt.Sprintf("kegiatan_id = $%d", len(args)))
	}
	if filter.IndustriID != "" {
		args = append(args, filter.IndustriID)
		conditions = append(conditions, fmt.Sprintf("industri_id = $%d", len(args)))
	}
	if filter.PembimbingID != "" {
		args = append(args, filter.PembimbingID)
		conditions = append(conditions, fmt.Sprintf("pembimbing_guru_id = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(1) FROM realizations WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count realizations: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf("SELECT %s FROM realizations WHERE %s ORDER BY tanggal_realisasi DESC LIMIT %d OFFSET %d",
		realizationColumns, where, pageSize, (page-1)*pageSize)

	var rows []models.Realization
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list realizations: %w", err)
	}
	return rows, total, nil
}

// UpdatePhotos replaces the photo URL list; the rest of the record is
// immutable history.
func (r *RealizationRepository) UpdatePhotos(ctx context.Context, id string, urls []string) error {
	const query = `UPDATE realizations SET bukti_foto_urls = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, pq.StringArray(urls), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update realization photos: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check photo update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetKegiatan fetches a scheduled activity used as the record anchor.
func (r *RealizationRepository) GetKegiatan(ctx context.Context, id string) (*models.Kegiatan, error) {
	const query = `SELECT id, nama, deskripsi, tanggal, industri_id, active, created_at FROM kegiatan WHERE id = $1`
	var k models.Kegiatan
	if err := r.db.GetContext(ctx, &k, query, id); err != nil {
		return nil, err
	}
	return &k, nil
}
