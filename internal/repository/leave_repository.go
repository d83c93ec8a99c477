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

const leaveColumns = `id, siswa_id, jenis, tanggal, keterangan, bukti_foto_urls, status,
       rejection_reason, pembimbing_guru_id, decided_at, created_at, updated_at`

// LeaveRepository persists leave requests (izin).
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a new leave request.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.Leave) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	if leave.Status == "" {
		leave.Status = models.LeaveStatusPending
	}
	now := time.Now().UTC()
	leave.CreatedAt = now
	leave.UpdatedAt = now
	const query = `INSERT INTO leaves
	(id, siswa_id, jenis, tanggal, keterangan, bukti_foto_urls, status, rejection_reason,
	 pembimbing_guru_id, decided_at, created_at, updated_at)
	VALUES (:id, :siswa_id, :jenis, :tanggal, :keterangan, :bukti_foto_urls, :status, :rejection_reason,
	 :pembimbing_guru_id, :decided_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, leave); err != nil {
		return fmt.Errorf("create leave: %w", err)
	}
	return nil
}

// GetByID fetches a leave request.
func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*models.Leave, error) {
	query := fmt.Sprintf(`SELECT %s FROM leaves WHERE id = $1`, leaveColumns)
	var leave models.Leave
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		return nil, err
	}
	return &leave, nil
}

// List returns leave requests matching the filter and the unpaginated total.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter, pageSize int) ([]models.Leave, int, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 4)

	if filter.SiswaID != "" {
		args = append(args, filter.SiswaID)
		conditions = append(conditions, fmt.Sprintf("siswa_id = $%d", len(args)))
	}
	if filter.PembimbingID != "" {
		args = append(args, filter.PembimbingID)
		conditions = append(conditions, fmt.Sprintf("pembimbing_guru_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(1) FROM leaves WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count leaves: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf("SELECT %s FROM leaves WHERE %s ORDER BY tanggal DESC LIMIT %d OFFSET %d",
		leaveColumns, where, pageSize, (page-1)*pageSize)

	var rows []models.Leave
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leaves: %w", err)
	}
	return rows, total, nil
}

// Decide persists the pembimbing's one-shot decision, guarded on pending.
func (r *LeaveRepository) Decide(ctx context.Context, id string, status models.LeaveStatus, reason *string, decidedAt time.Time) error {
	const query = `UPDATE leaves SET status = $1, rejection_reason = $2, decided_at = $3, updated_at = $3
	WHERE id = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, status, reason, decidedAt, id, models.LeaveStatusPending)
	if err != nil {
		return fmt.Errorf("decide leave: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check leave decision rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePending edits a request while it is still pending.
func (r *LeaveRepository) UpdatePending(ctx context.Context, leave *models.Leave) error {
	const query = `UPDATE leaves SET jenis = $1, tanggal = $2, keterangan = $3, bukti_foto_urls = $4, updated_at = $5
	WHERE id = $6 AND status = $7`
	result, err := r.db.ExecContext(ctx, query,
		leave.Jenis, leave.Tanggal, leave.Keterangan, pq.StringArray(leave.BuktiFotoURLs),
		time.Now().UTC(), leave.ID, models.LeaveStatusPending)
	if err != nil {
		return fmt.Errorf("update leave: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check leave update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeletePending removes a request while it is still pending.
func (r *LeaveRepository) DeletePending(ctx context.Context, id string) error {
	const query = `DELETE FROM leaves WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, models.LeaveStatusPending)
	if err != nil {
		return fmt.Errorf("delete leave: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check leave delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
