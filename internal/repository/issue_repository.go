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

const issueColumns = `id, judul, deskripsi, kategori, status, tindak_lanjut, siswa_id,
       pembimbing_guru_id, created_at, updated_at, resolved_at`

// IssueRepository persists student issues (permasalahan).
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository constructs the repository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create inserts a new issue.
func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	if issue.Status == "" {
		issue.Status = models.IssueStatusOpen
	}
	now := time.Now().UTC()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	const query = `INSERT INTO issues
	(id, judul, deskripsi, kategori, status, tindak_lanjut, siswa_id, pembimbing_guru_id, created_at, updated_at, resolved_at)
	VALUES (:id, :judul, :deskripsi, :kategori, :status, :tindak_lanjut, :siswa_id, :pembimbing_guru_id, :created_at, :updated_at, :resolved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, issue); err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	return nil
}

// GetByID fetches an issue.
func (r *IssueRepository) GetByID(ctx context.Context, id string) (*models.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id = $1`, issueColumns)
	var issue models.Issue
	if err := r.db.GetContext(ctx, &issue, query, id); err != nil {
		return nil, err
	}
	return &issue, nil
}

// List returns issues matching the filter and the unpaginated total. KelasID
// scopes the homeroom teacher's read path through the siswa join.
func (r *IssueRepository) List(ctx context.Context, filter models.IssueFilter, pageSize int) ([]models.Issue, int, error) {
	base := "FROM issues i"
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 5)

	if filter.SiswaID != "" {
		args = append(args, filter.SiswaID)
		conditions = append(conditions, fmt.Sprintf("i.siswa_id = $%d", len(args)))
	}
	if filter.PembimbingID != "" {
		args = append(args, filter.PembimbingID)
		conditions = append(conditions, fmt.Sprintf("i.pembimbing_guru_id = $%d", len(args)))
	}
	if filter.KelasID != "" {
		args = append(args, filter.KelasID)
		conditions = append(conditions, fmt.Sprintf("i.siswa_id IN (SELECT id FROM siswa WHERE kelas_id = $%d)", len(args)))
	}
	if filter.Kategori != "" {
		args = append(args, filter.Kategori)
		conditions = append(conditions, fmt.Sprintf("i.kategori = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("i.status IN (%s)", strings.Join(placeholders, ",")))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(1) %s WHERE %s", base, where), args...); err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT i.id, i.judul, i.deskripsi, i.kategori, i.status, i.tindak_lanjut,
	i.siswa_id, i.pembimbing_guru_id, i.created_at, i.updated_at, i.resolved_at
	%s WHERE %s ORDER BY i.created_at DESC LIMIT %d OFFSET %d`, base, where, pageSize, (page-1)*pageSize)

	var rows []models.Issue
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list issues: %w", err)
	}
	return rows, total, nil
}

// Update progresses status and follow-up notes.
func (r *IssueRepository) Update(ctx context.Context, id string, status models.IssueStatus, tindakLanjut *string, resolvedAt *time.Time) error {
	const query = `UPDATE issues SET status = $1, tindak_lanjut = COALESCE($2, tindak_lanjut),
	resolved_at = $3, updated_at = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, status, tindakLanjut, resolvedAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check issue update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
