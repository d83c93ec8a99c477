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

const applicationColumns = `id, siswa_id, group_id, industri_id, status, catatan, kaprog_note,
       pembimbing_guru_id, tanggal_permohonan, tanggal_mulai, tanggal_selesai,
       decided_at, processed_by, created_at, updated_at`

// ApplicationRepository persists placement requests.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application row.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}
	now := time.Now().UTC()
	if app.TanggalPermohonan.IsZero() {
		app.TanggalPermohonan = now
	}
	app.CreatedAt = now
	app.UpdatedAt = now
	const query = `INSERT INTO applications
	(id, siswa_id, group_id, industri_id, status, catatan, kaprog_note, pembimbing_guru_id,
	 tanggal_permohonan, tanggal_mulai, tanggal_selesai, decided_at, processed_by, created_at, updated_at)
	VALUES (:id, :siswa_id, :group_id, :industri_id, :status, :catatan, :kaprog_note, :pembimbing_guru_id,
	 :tanggal_permohonan, :tanggal_mulai, :tanggal_selesai, :decided_at, :processed_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// GetByID fetches an application by identifier.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// HasActive reports whether a student or group already owns an application in
// a non-terminal state (PENDING or APPROVED). For students this counts group
// applications too: an accepted group member is as bound as a solo applicant.
func (r *ApplicationRepository) HasActive(ctx context.Context, siswaID, groupID string) (bool, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if siswaID != "" {
		args = append(args, siswaID)
		conditions = append(conditions, fmt.Sprintf("siswa_id = $%d", len(args)))
		args = append(args, siswaID)
		conditions = append(conditions, fmt.Sprintf(`group_id IN (
			SELECT g.id FROM pkl_groups g
			LEFT JOIN pkl_group_members m ON m.group_id = g.id AND m.status = 'ACCEPTED'
			WHERE g.owner_siswa_id = $%[1]d OR m.siswa_id = $%[1]d)`, len(args)))
	}
	if groupID != "" {
		args = append(args, groupID)
		conditions = append(conditions, fmt.Sprintf("group_id = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return false, fmt.Errorf("siswa or group id required")
	}
	query := fmt.Sprintf(
		`SELECT COUNT(1) FROM applications WHERE (%s) AND status IN ('%s', '%s')`,
		strings.Join(conditions, " OR "),
		models.ApplicationStatusPending,
		models.ApplicationStatusApproved,
	)
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check active application: %w", err)
	}
	return count > 0, nil
}

// FindApprovedBySiswa returns the student's current approved placement,
// whether issued solo or through a group they belong to.
func (r *ApplicationRepository) FindApprovedBySiswa(ctx context.Context, siswaID string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications
	WHERE status = '%s' AND (siswa_id = $1 OR group_id IN (
		SELECT g.id FROM pkl_groups g
		LEFT JOIN pkl_group_members m ON m.group_id = g.id AND m.status = 'ACCEPTED'
		WHERE g.owner_siswa_id = $1 OR m.siswa_id = $1))
	ORDER BY decided_at DESC LIMIT 1`, applicationColumns, models.ApplicationStatusApproved)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, siswaID); err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns applications with display context and the unpaginated total.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter, pageSize int) ([]models.ApplicationDetail, int, error) {
	base := `FROM applications a
	JOIN industri i ON i.id = a.industri_id
	LEFT JOIN siswa s ON s.id = a.siswa_id
	LEFT JOIN kelas k ON k.id = s.kelas_id
	LEFT JOIN jurusan j ON j.id = s.jurusan_id`

	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 8)

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("a.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SiswaID != "" {
		args = append(args, filter.SiswaID)
		conditions = append(conditions, fmt.Sprintf("a.siswa_id = $%d", len(args)))
	}
	if filter.GroupID != "" {
		args = append(args, filter.GroupID)
		conditions = append(conditions, fmt.Sprintf("a.group_id = $%d", len(args)))
	}
	if filter.KelasID != "" {
		args = append(args, filter.KelasID)
		conditions = append(conditions, fmt.Sprintf("s.kelas_id = $%d", len(args)))
	}
	if filter.JurusanID != "" {
		args = append(args, filter.JurusanID)
		conditions = append(conditions, fmt.Sprintf("s.jurusan_id = $%d", len(args)))
	}
	if filter.IndustriID != "" {
		args = append(args, filter.IndustriID)
		conditions = append(conditions, fmt.Sprintf("a.industri_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.nisn) LIKE $%d OR LOWER(i.nama) LIKE $%d)", len(args), len(args), len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(1) %s WHERE %s", base, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT a.id, a.siswa_id, a.group_id, a.industri_id, a.status, a.catatan,
	a.kaprog_note, a.pembimbing_guru_id, a.tanggal_permohonan, a.tanggal_mulai, a.tanggal_selesai,
	a.decided_at, a.processed_by, a.created_at, a.updated_at,
	s.full_name AS siswa_name, s.nisn AS siswa_nisn, k.nama AS kelas_name,
	j.nama AS jurusan_name, i.nama AS industri_name
	%s WHERE %s ORDER BY a.tanggal_permohonan DESC LIMIT %d OFFSET %d`, base, where, pageSize, offset)

	var rows []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	return rows, total, nil
}

// DecideApplicationParams groups the mutable columns of a kaprog decision.
type DecideApplicationParams struct {
	ID               string
	Status           models.ApplicationStatus
	KaprogNote       *string
	PembimbingGuruID *string
	TanggalMulai     *time.Time
	TanggalSelesai   *time.Time
	ProcessedBy      string
	DecidedAt        time.Time
}

// Decide persists a decision. The UPDATE is guarded on the PENDING status so a
// repeated or racing decision affects zero rows and surfaces sql.ErrNoRows.
func (r *ApplicationRepository) Decide(ctx context.Context, params DecideApplicationParams) error {
	query := fmt.Sprintf(`UPDATE applications SET
	status = :status, kaprog_note = :kaprog_note, pembimbing_guru_id = :pembimbing_guru_id,
	tanggal_mulai = :tanggal_mulai, tanggal_selesai = :tanggal_selesai,
	decided_at = :decided_at, processed_by = :processed_by, updated_at = :decided_at
	WHERE id = :id AND status = '%s'`, models.ApplicationStatusPending)
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":                 params.ID,
		"status":             params.Status,
		"kaprog_note":        params.KaprogNote,
		"pembimbing_guru_id": params.PembimbingGuruID,
		"tanggal_mulai":      params.TanggalMulai,
		"tanggal_selesai":    params.TanggalSelesai,
		"decided_at":         params.DecidedAt,
		"processed_by":       params.ProcessedBy,
	})
	if err != nil {
		return fmt.Errorf("decide application: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check decision rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Reassign points an approved application at a new industry partner. Used by
// the transfer flow after the final chain approval; the APPROVED guard keeps a
// late reassignment from resurrecting a completed or withdrawn placement.
func (r *ApplicationRepository) Reassign(ctx context.Context, id, industriID string, effective time.Time) error {
	const query = `UPDATE applications SET industri_id = $1, tanggal_mulai = $2, updated_at = $3
	WHERE id = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, industriID, effective, time.Now().UTC(), id, models.ApplicationStatusApproved)
	if err != nil {
		return fmt.Errorf("reassign application: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check reassign rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetStatus moves an application between lifecycle states outside the
// decision path (COMPLETED by the external lifecycle, WITHDRAWN by the group
// withdrawal flow). The expected current status guards the transition.
func (r *ApplicationRepository) SetStatus(ctx context.Context, id string, from, to models.ApplicationStatus) error {
	const query = `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("set application status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check status rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
