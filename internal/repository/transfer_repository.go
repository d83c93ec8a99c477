package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/maganghub/maganghub-api/internal/models"
)

const transferColumns = `id, application_id, siswa_id, target_industri_id, status, catatan,
       document_url, tanggal_efektif, decision_notes, created_at, updated_at`

// TransferRepository persists pindah PKL chain state.
type TransferRepository struct {
	db *sqlx.DB
}

// NewTransferRepository constructs the repository.
func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// Create opens a new chain at pending_pembimbing.
func (r *TransferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	if transfer.Status == "" {
		transfer.Status = models.TransferPendingPembimbing
	}
	if len(transfer.DecisionNotes) == 0 {
		transfer.DecisionNotes = []byte("[]")
	}
	now := time.Now().UTC()
	transfer.CreatedAt = now
	transfer.UpdatedAt = now
	const query = `INSERT INTO transfers
	(id, application_id, siswa_id, target_industri_id, status, catatan, document_url,
	 tanggal_efektif, decision_notes, created_at, updated_at)
	VALUES (:id, :application_id, :siswa_id, :target_industri_id, :status, :catatan, :document_url,
	 :tanggal_efektif, :decision_notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, transfer); err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

// GetByID fetches a transfer by identifier.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE id = $1`, transferColumns)
	var transfer models.Transfer
	if err := r.db.GetContext(ctx, &transfer, query, id); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// HasOpen reports whether the student already has a chain in flight.
func (r *TransferRepository) HasOpen(ctx context.Context, siswaID string) (bool, error) {
	const query = `SELECT COUNT(1) FROM transfers WHERE siswa_id = $1 AND status NOT IN ($2, $3)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, siswaID, models.TransferApproved, models.TransferRejected); err != nil {
		return false, fmt.Errorf("check open transfer: %w", err)
	}
	return count > 0, nil
}

// List returns transfers matching the filter and the unpaginated total.
// PembimbingID and JurusanID scope "list mine" to the acting role's students;
// the status set pins the chain link the caller is allowed to act on.
func (r *TransferRepository) List(ctx context.Context, filter models.TransferFilter, pageSize int) ([]models.Transfer, int, error) {
	base := `FROM transfers t`
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 6)

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SiswaID != "" {
		args = append(args, filter.SiswaID)
		conditions = append(conditions, fmt.Sprintf("t.siswa_id = $%d", len(args)))
	}
	if filter.PembimbingID != "" {
		args = append(args, filter.PembimbingID)
		conditions = append(conditions, fmt.Sprintf(
			"t.application_id IN (SELECT id FROM applications WHERE pembimbing_guru_id = $%d)", len(args)))
	}
	if filter.JurusanID != "" {
		args = append(args, filter.JurusanID)
		conditions = append(conditions, fmt.Sprintf(
			"t.siswa_id IN (SELECT id FROM siswa WHERE jurusan_id = $%d)", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(1) %s WHERE %s", base, where), args...); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT t.id, t.application_id, t.siswa_id, t.target_industri_id, t.status, t.catatan,
	t.document_url, t.tanggal_efektif, t.decision_notes, t.created_at, t.updated_at
	%s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`, base, where, pageSize, (page-1)*pageSize)

	var rows []models.Transfer
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	return rows, total, nil
}

// AdvanceParams groups one chain decision.
type AdvanceParams struct {
	ID             string
	Expected       models.TransferStatus
	Next           models.TransferStatus
	Decision       models.TransferDecision
	TanggalEfektif *time.Time
}

// Advance moves the chain one link. The UPDATE is guarded on the expected
// current status: out-of-turn or repeated decisions affect zero rows and
// surface sql.ErrNoRows, which the service maps to a conflict.
func (r *TransferRepository) Advance(ctx context.Context, params AdvanceParams) error {
	note, err := json.Marshal(params.Decision)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	const query = `UPDATE transfers SET
	status = $1,
	tanggal_efektif = COALESCE($2, tanggal_efektif),
	decision_notes = decision_notes || $3::jsonb,
	updated_at = $4
	WHERE id = $5 AND status = $6`
	result, err := r.db.ExecContext(ctx, query,
		params.Next, params.TanggalEfektif, string(note), time.Now().UTC(), params.ID, params.Expected)
	if err != nil {
		return fmt.Errorf("advance transfer: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check advance rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
