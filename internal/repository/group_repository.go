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

// GroupRepository persists group formation state.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts the group and its invited members in one transaction. The
// owner holds no member row; ownership lives on the group itself.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.Status == "" {
		group.Status = models.GroupStatusOpen
	}
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin group tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const groupQuery = `INSERT INTO pkl_groups (id, owner_siswa_id, status, application_id, created_at, updated_at)
	VALUES (:id, :owner_siswa_id, :status, :application_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, groupQuery, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}

	for i := range group.Members {
		member := &group.Members[i]
		if member.ID == "" {
			member.ID = uuid.NewString()
		}
		member.GroupID = group.ID
		if member.InvitedAt.IsZero() {
			member.InvitedAt = now
		}
		const memberQuery = `INSERT INTO pkl_group_members (id, group_id, siswa_id, status, invited_at, responded_at)
		VALUES (:id, :group_id, :siswa_id, :status, :invited_at, :responded_at)`
		if _, err := tx.NamedExecContext(ctx, memberQuery, member); err != nil {
			return fmt.Errorf("create group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit group tx: %w", err)
	}
	return nil
}

// GetByID fetches a group with its member roster.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, owner_siswa_id, status, application_id, created_at, updated_at
	FROM pkl_groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}

	const memberQuery = `SELECT m.id, m.group_id, m.siswa_id, m.status, m.invited_at, m.responded_at,
	s.full_name AS siswa_name, s.nisn AS siswa_nisn
	FROM pkl_group_members m JOIN siswa s ON s.id = m.siswa_id
	WHERE m.group_id = $1 ORDER BY m.invited_at`
	if err := r.db.SelectContext(ctx, &group.Members, memberQuery, id); err != nil {
		return nil, fmt.Errorf("load group members: %w", err)
	}
	return &group, nil
}

// FindOpenBySiswa returns the open group a student participates in, if any.
// "Open" means not yet withdrawn; a submitted group still binds its members.
func (r *GroupRepository) FindOpenBySiswa(ctx context.Context, siswaID string) (*models.Group, error) {
	const query = `SELECT DISTINCT g.id, g.owner_siswa_id, g.status, g.application_id, g.created_at, g.updated_at
	FROM pkl_groups g LEFT JOIN pkl_group_members m ON m.group_id = g.id
	WHERE (g.owner_siswa_id = $1 OR (m.siswa_id = $1 AND m.status <> $2)) AND g.status IN ($3, $4)
	LIMIT 1`
	var group models.Group
	err := r.db.GetContext(ctx, &group, query, siswaID, models.InvitationDeclined,
		models.GroupStatusOpen, models.GroupStatusSubmitted)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// SearchAvailableSiswa lists invitation candidates: active students not bound
// to any open group, whether as member or owner, and not holding an active
// solo application; the provided ids are additionally excluded.
func (r *GroupRepository) SearchAvailableSiswa(ctx context.Context, search string, excludeIDs []string, limit int) ([]models.SiswaDetail, error) {
	conditions := []string{
		"s.active = TRUE",
		`NOT EXISTS (
			SELECT 1 FROM pkl_group_members m
			JOIN pkl_groups g ON g.id = m.group_id
			WHERE m.siswa_id = s.id AND m.status <> 'DECLINED' AND g.status IN ('OPEN', 'SUBMITTED')
		)`,
		`NOT EXISTS (
			SELECT 1 FROM pkl_groups g2
			WHERE g2.owner_siswa_id = s.id AND g2.status IN ('OPEN', 'SUBMITTED')
		)`,
		`NOT EXISTS (
			SELECT 1 FROM applications a
			WHERE a.siswa_id = s.id AND a.status IN ('PENDING', 'APPROVED')
		)`,
	}
	args := make([]interface{}, 0, 4)

	if search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR s.nisn LIKE $%d)", len(args), len(args)))
	}
	for _, id := range excludeIDs {
		args = append(args, id)
		conditions = append(conditions, fmt.Sprintf("s.id <> $%d", len(args)))
	}

	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT s.id, s.user_id, s.nisn, s.full_name, s.kelas_id, s.jurusan_id,
	s.phone, s.address, s.active, s.created_at, s.updated_at,
	k.nama AS kelas_name, j.nama AS jurusan_name
	FROM siswa s LEFT JOIN kelas k ON k.id = s.kelas_id LEFT JOIN jurusan j ON j.id = s.jurusan_id
	WHERE %s ORDER BY s.full_name LIMIT %d`, strings.Join(conditions, " AND "), limit)

	var rows []models.SiswaDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search available siswa: %w", err)
	}
	return rows, nil
}

// RespondInvitation records a member's accept/decline. Guarded on the pending
// invitation so repeated responses affect zero rows.
func (r *GroupRepository) RespondInvitation(ctx context.Context, groupID, siswaID string, status models.InvitationStatus) error {
	const query = `UPDATE pkl_group_members SET status = $1, responded_at = $2
	WHERE group_id = $3 AND siswa_id = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), groupID, siswaID, models.InvitationPending)
	if err != nil {
		return fmt.Errorf("respond invitation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check invitation rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceMembers swaps the invited member set of an open group, keeping the
// owner row intact.
func (r *GroupRepository) ReplaceMembers(ctx context.Context, groupID, ownerSiswaID string, members []models.GroupMember) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin members tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const deleteQuery = `DELETE FROM pkl_group_members WHERE group_id = $1 AND siswa_id <> $2`
	if _, err := tx.ExecContext(ctx, deleteQuery, groupID, ownerSiswaID); err != nil {
		return fmt.Errorf("clear group members: %w", err)
	}

	now := time.Now().UTC()
	for i := range members {
		member := &members[i]
		if member.ID == "" {
			member.ID = uuid.NewString()
		}
		member.GroupID = groupID
		if member.InvitedAt.IsZero() {
			member.InvitedAt = now
		}
		const memberQuery = `INSERT INTO pkl_group_members (id, group_id, siswa_id, status, invited_at, responded_at)
		VALUES (:id, :group_id, :siswa_id, :status, :invited_at, :responded_at)`
		if _, err := tx.NamedExecContext(ctx, memberQuery, member); err != nil {
			return fmt.Errorf("insert group member: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE pkl_groups SET updated_at = $1 WHERE id = $2`, now, groupID); err != nil {
		return fmt.Errorf("touch group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit members tx: %w", err)
	}
	return nil
}

// SetStatus transitions the group between lifecycle states, optionally
// binding the created application. Guarded by the expected current status.
func (r *GroupRepository) SetStatus(ctx context.Context, id string, from, to models.GroupStatus, applicationID *string) error {
	var (
		result sql.Result
		err    error
	)
	if applicationID != nil {
		const query = `UPDATE pkl_groups SET status = $1, application_id = $2, updated_at = $3 WHERE id = $4 AND status = $5`
		result, err = r.db.ExecContext(ctx, query, to, *applicationID, time.Now().UTC(), id, from)
	} else {
		const query = `UPDATE pkl_groups SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
		result, err = r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	}
	if err != nil {
		return fmt.Errorf("set group status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check group status rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an open group and its membership rows. Submission makes the
// group undeletable; withdrawal only reverts status.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM pkl_group_members WHERE group_id = $1`, id); err != nil {
		return fmt.Errorf("delete group members: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM pkl_groups WHERE id = $1 AND status = $2`, id, models.GroupStatusOpen)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}
